package server

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/dijkstraviz/board"
	"github.com/TFMV/dijkstraviz/config"
	"github.com/TFMV/dijkstraviz/loop"
)

type harness struct {
	board *board.Board
	url   string
}

func newHarness(t *testing.T) harness {
	t.Helper()
	return newHarnessStepping(t, 50*time.Millisecond)
}

// newHarnessStepping serves an 8 node board whose animated searches settle
// one node per step.
func newHarnessStepping(t *testing.T, step time.Duration) harness {
	t.Helper()

	cfg := config.Default().WithStepInterval(step)
	l := loop.New()
	b, err := board.New(cfg, board.WithScheduler(l), board.WithRand(rand.New(rand.NewSource(11))))
	require.NoError(t, err)
	bounds, err := cfg.Bounds()
	require.NoError(t, err)
	_, err = b.CreateGraph(8, bounds)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	ts := httptest.NewServer(New(b, l, nil).Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return harness{board: b, url: ts.URL}
}

func (h harness) post(t *testing.T, path string, form url.Values) (int, Status) {
	t.Helper()
	resp, err := http.PostForm(h.url+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()

	var st Status
	if resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	}
	return resp.StatusCode, st
}

func (h harness) status(t *testing.T) Status {
	t.Helper()
	resp, err := http.Get(h.url + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	var st Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	return st
}

func get(t *testing.T, u string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestIndex(t *testing.T) {
	h := newHarness(t)

	resp, body := get(t, h.url+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `src="/scene.svg"`)
	assert.Contains(t, body, `width="1280"`)

	resp, _ = get(t, h.url+"/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFrames(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		path, contentType, prefix string
	}{
		{"/scene.svg", "image/svg+xml", "<?xml"},
		{"/scene.png", "image/png", "\x89PNG"},
		{"/scene.txt", "text/plain; charset=utf-8", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, h.url+tt.path)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
			assert.True(t, strings.HasPrefix(body, tt.prefix))
			assert.NotEmpty(t, body)
		})
	}

	_, first := get(t, h.url+"/scene.svg")
	_, second := get(t, h.url+"/scene.svg")
	assert.Equal(t, first, second)
}

func TestExport(t *testing.T) {
	h := newHarness(t)

	resp, body := get(t, h.url+"/api/graph")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var doc struct {
		Nodes []json.RawMessage `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	assert.Len(t, doc.Nodes, 8)

	resp, body = get(t, h.url+"/api/graph.dot")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(body, "graph G"))
}

func TestSelectAndSearch(t *testing.T) {
	h := newHarness(t)

	code, _ := h.post(t, "/api/search", nil)
	assert.Equal(t, http.StatusBadRequest, code, "nothing selected")

	code, st := h.post(t, "/api/select", url.Values{"label": {"0"}})
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, st.Source)
	assert.Equal(t, 0, *st.Source)
	assert.Nil(t, st.Target)

	code, st = h.post(t, "/api/select", url.Values{"label": {"7"}})
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, st.Target)
	assert.Equal(t, 7, *st.Target)

	code, st = h.post(t, "/api/search", nil)
	require.Equal(t, http.StatusOK, code)
	if st.Distance != nil {
		assert.Equal(t, 0, st.Path[0])
		assert.Equal(t, 7, st.Path[len(st.Path)-1])
	}

	code, _ = h.post(t, "/api/select", url.Values{"label": {"99"}})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = h.post(t, "/api/select", url.Values{"label": {"x"}})
	assert.Equal(t, http.StatusBadRequest, code)

	code, st = h.post(t, "/api/reset", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, st.Source)
	assert.Empty(t, st.Path)
}

func TestAnimatedSearch(t *testing.T) {
	h := newHarness(t)
	h.post(t, "/api/select", url.Values{"label": {"1"}})
	h.post(t, "/api/select", url.Values{"label": {"5"}})

	code, st := h.post(t, "/api/search", url.Values{"animate": {"1"}})
	require.Equal(t, http.StatusAccepted, code)
	assert.True(t, st.Searching)

	code, _ = h.post(t, "/api/search", url.Values{"animate": {"1"}})
	assert.Equal(t, http.StatusConflict, code)

	assert.Eventually(t, func() bool { return !h.status(t).Searching }, 5*time.Second, 10*time.Millisecond)
}

func TestMouseDrag(t *testing.T) {
	h := newHarness(t)
	// The loop is idle until the first request.
	c := h.board.CircleFor(2)
	x, y := c.X, c.Y

	code, st := h.post(t, "/api/mouse", url.Values{"type": {"down"}, "x": {ftoa(x)}, "y": {ftoa(y)}})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "dragging", st.State)
	assert.Equal(t, "move", st.Cursor)

	h.post(t, "/api/mouse", url.Values{"type": {"move"}, "x": {ftoa(x + 40)}, "y": {ftoa(y)}})
	code, st = h.post(t, "/api/mouse", url.Values{"type": {"up"}, "x": {ftoa(x + 40)}, "y": {ftoa(y)}})
	require.Equal(t, http.StatusOK, code)

	assert.Eventually(t, func() bool { return h.status(t).State == "idle" }, 5*time.Second, 10*time.Millisecond)
	st = h.status(t)
	require.NotNil(t, st.Source, "starting a drag selects the source")
}

func TestMouse_BadRequests(t *testing.T) {
	h := newHarness(t)

	resp, _ := get(t, h.url+"/api/mouse")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	code, _ := h.post(t, "/api/mouse", url.Values{"type": {"wheel"}, "x": {"1"}, "y": {"1"}})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.post(t, "/api/mouse", url.Values{"type": {"down"}, "x": {"left"}, "y": {"1"}})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestNewGraph(t *testing.T) {
	h := newHarness(t)

	code, st := h.post(t, "/api/new", url.Values{"nodes": {"3"}})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "idle", st.State)

	_, body := get(t, h.url+"/api/graph")
	var doc struct {
		Nodes []json.RawMessage `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	assert.Len(t, doc.Nodes, 3)

	code, _ = h.post(t, "/api/new", url.Values{"nodes": {"-2"}})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestNewGraph_NodeLimit(t *testing.T) {
	h := newHarness(t)
	limit := h.board.Config().Graph.MaxNodes

	code, _ := h.post(t, "/api/new", url.Values{"nodes": {"200000"}})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = h.post(t, "/api/new", url.Values{"nodes": {strconv.Itoa(limit + 1)}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, 8, h.status(t).Nodes, "the current graph is kept")

	code, st := h.post(t, "/api/new", url.Values{"nodes": {strconv.Itoa(limit)}})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, limit, st.Nodes)
}

func TestInputRejectedWhileSearching(t *testing.T) {
	h := newHarnessStepping(t, time.Hour)
	h.post(t, "/api/select", url.Values{"label": {"0"}})
	h.post(t, "/api/select", url.Values{"label": {"7"}})
	code, _ := h.post(t, "/api/search", url.Values{"animate": {"1"}})
	require.Equal(t, http.StatusAccepted, code)

	_, body := get(t, h.url+"/api/graph")
	var doc struct {
		Nodes []struct {
			X, Y float64
		} `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	require.Len(t, doc.Nodes, 8)
	c := doc.Nodes[3]
	down := url.Values{"type": {"down"}, "x": {ftoa(c.X)}, "y": {ftoa(c.Y)}}

	code, _ = h.post(t, "/api/mouse", down)
	assert.Equal(t, http.StatusConflict, code)
	code, _ = h.post(t, "/api/select", url.Values{"label": {"3"}})
	assert.Equal(t, http.StatusConflict, code)

	st := h.status(t)
	assert.Equal(t, "idle", st.State)
	assert.True(t, st.Searching)
	require.NotNil(t, st.Source)
	assert.Equal(t, 0, *st.Source, "selection is untouched")

	code, _ = h.post(t, "/api/reset", nil)
	require.Equal(t, http.StatusOK, code)
	code, st = h.post(t, "/api/mouse", down)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "dragging", st.State, "input is accepted once the search is abandoned")
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
