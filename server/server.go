// Package server hosts a board over HTTP. The page shows the current frame
// and forwards mouse events back, so nodes can be dragged and searched from a
// browser. Every request that touches the board runs on the loop.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/TFMV/dijkstraviz/board"
	"github.com/TFMV/dijkstraviz/loop"
	"github.com/TFMV/dijkstraviz/pathfind"
	"github.com/TFMV/dijkstraviz/render"
)

// Server serves one board.
type Server struct {
	board  *board.Board
	loop   *loop.Loop
	logger *log.Logger

	// loop goroutine only
	frames     map[string]*frame
	generation int
}

type frame struct {
	canvas     render.Canvas
	bytes      []byte
	generation int
}

// New creates a server for b. Callbacks are posted to l, which must also be
// the board's scheduler and must be running for requests to complete.
func New(b *board.Board, l *loop.Loop, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{
		board:  b,
		loop:   l,
		logger: logger,
		frames: make(map[string]*frame),
	}
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/scene.svg", s.handleFrame("svg", "image/svg+xml"))
	mux.HandleFunc("/scene.png", s.handleFrame("png", "image/png"))
	mux.HandleFunc("/scene.txt", s.handleFrame("ascii", "text/plain; charset=utf-8"))
	mux.HandleFunc("/api/graph", s.handleExport("json", "application/json"))
	mux.HandleFunc("/api/graph.dot", s.handleExport("dot", "text/vnd.graphviz"))
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/mouse", s.handleMouse)
	mux.HandleFunc("/api/select", s.handleSelect)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/reset", s.handleReset)
	mux.HandleFunc("/api/new", s.handleNew)
	return mux
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			return err
		}
		return nil
	}
}

// do runs fn on the loop and waits for it.
func (s *Server) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	s.loop.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// render returns the encoded frame for format, redrawing only when the scene
// changed since that format was last produced. Runs on the loop.
func (s *Server) render(format string) ([]byte, error) {
	sc := s.board.Scene()
	if sc == nil {
		return nil, board.ErrNoGraph
	}
	if sc.Dirty() {
		s.generation++
	}

	f := s.frames[format]
	if f == nil {
		cfg := s.board.Config()
		canvas, err := render.NewCanvas(format, render.Options{
			Width:      cfg.Surface.Width,
			Height:     cfg.Surface.Height,
			Background: cfg.BackgroundColor(),
		})
		if err != nil {
			return nil, err
		}
		f = &frame{canvas: canvas, generation: -1}
		s.frames[format] = f
	}
	if f.generation == s.generation {
		return f.bytes, nil
	}

	s.board.MarkDirty()
	s.board.RedrawIfDirty(f.canvas)
	var buf bytes.Buffer
	if err := f.canvas.Encode(&buf); err != nil {
		return nil, err
	}
	f.bytes = buf.Bytes()
	f.generation = s.generation
	return f.bytes, nil
}

func (s *Server) handleFrame(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			out []byte
			err error
		)
		if werr := s.do(r.Context(), func() { out, err = s.render(format) }); werr != nil {
			return
		}
		if err != nil {
			httpError(w, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-store")
		w.Write(out)
	}
}

func (s *Server) handleExport(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exp, err := render.NewExporter(format)
		if err != nil {
			httpError(w, err)
			return
		}
		var buf bytes.Buffer
		if werr := s.do(r.Context(), func() {
			if s.board.Graph() == nil {
				err = board.ErrNoGraph
				return
			}
			err = exp.Export(&buf, s.board.Snapshot())
		}); werr != nil {
			return
		}
		if err != nil {
			httpError(w, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Write(buf.Bytes())
	}
}

// Status is returned by the interaction endpoints.
type Status struct {
	State     string   `json:"state"`
	Cursor    string   `json:"cursor"`
	Dirty     bool     `json:"dirty"`
	Nodes     int      `json:"nodes"`
	Source    *int     `json:"source"`
	Target    *int     `json:"target"`
	Searching bool     `json:"searching"`
	Path      []int    `json:"path,omitempty"`
	Distance  *float64 `json:"distance,omitempty"`
}

// status snapshots the board. Runs on the loop.
func (s *Server) status() Status {
	var st Status
	if sc := s.board.Scene(); sc != nil {
		st.State = sc.State().String()
		st.Cursor = string(sc.Cursor())
		st.Dirty = sc.Dirty()
	}
	if g := s.board.Graph(); g != nil {
		st.Nodes = len(g.Nodes)
	}
	if src, ok := s.board.Source(); ok {
		st.Source = &src
	}
	if tgt, ok := s.board.Target(); ok {
		st.Target = &tgt
	}
	st.Searching = s.board.Searching()
	if res := s.board.LastResult(); res != nil && res.Reachable {
		d := res.Distance()
		st.Path = res.Path
		st.Distance = &d
	}
	return st
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var st Status
	if werr := s.do(r.Context(), func() { st = s.status() }); werr != nil {
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleMouse(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	x, errX := strconv.ParseFloat(r.FormValue("x"), 64)
	y, errY := strconv.ParseFloat(r.FormValue("y"), 64)
	if err := errors.Join(errX, errY); err != nil {
		http.Error(w, "Invalid coordinates: "+err.Error(), http.StatusBadRequest)
		return
	}
	kind := r.FormValue("type")
	if kind != "down" && kind != "move" && kind != "up" {
		http.Error(w, fmt.Sprintf("Unknown mouse event %q", kind), http.StatusBadRequest)
		return
	}

	var (
		st  Status
		err error
	)
	if werr := s.do(r.Context(), func() {
		sc := s.board.Scene()
		if sc == nil {
			err = board.ErrNoGraph
			return
		}
		switch kind {
		case "down":
			if s.board.Searching() {
				err = board.ErrSearchRunning
				return
			}
			sc.MouseDown(x, y)
		case "move":
			sc.MouseMove(x, y)
		case "up":
			sc.MouseUp(x, y)
		}
		st = s.status()
	}); werr != nil {
		return
	}
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	label, err := strconv.Atoi(r.FormValue("label"))
	if err != nil {
		http.Error(w, "Invalid label: "+err.Error(), http.StatusBadRequest)
		return
	}

	var st Status
	if werr := s.do(r.Context(), func() {
		if err = s.board.Select(label); err == nil {
			st = s.status()
		}
	}); werr != nil {
		return
	}
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleSearch runs a search between the selected nodes. With animate set
// the search is stepped on the loop and the request returns immediately.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	animate := r.FormValue("animate") != ""

	var (
		st  Status
		err error
	)
	if werr := s.do(r.Context(), func() {
		src, _ := s.board.Source()
		tgt, ok := s.board.Target()
		switch {
		case !ok:
			err = board.ErrInvalidSelection
		case animate:
			err = s.board.AnimateShortestPath(src, tgt, s.board.Config().StepInterval(), func(res pathfind.Result) {
				s.logger.Printf("animated search %d -> %d finished", res.Source, res.Target)
			})
		default:
			_, err = s.board.RunShortestPath(src, tgt)
		}
		st = s.status()
	}); werr != nil {
		return
	}
	if err != nil {
		httpError(w, err)
		return
	}
	code := http.StatusOK
	if animate {
		code = http.StatusAccepted
	}
	writeJSON(w, code, st)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var st Status
	if werr := s.do(r.Context(), func() {
		s.board.ResetColors()
		st = s.status()
	}); werr != nil {
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	nodes := s.board.Config().Graph.Nodes
	if v := r.FormValue("nodes"); v != "" {
		n, err := strconv.Atoi(v)
		if limit := s.board.Config().Graph.MaxNodes; err != nil || n < 0 || n > limit {
			http.Error(w, fmt.Sprintf("Invalid node count: want 0 to %d", limit), http.StatusBadRequest)
			return
		}
		nodes = n
	}

	var (
		st  Status
		err error
	)
	if werr := s.do(r.Context(), func() {
		bounds, berr := s.board.Config().Bounds()
		if berr != nil {
			err = berr
			return
		}
		if _, err = s.board.CreateGraph(nodes, bounds); err == nil {
			st = s.status()
		}
	}); werr != nil {
		return
	}
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func httpError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, board.ErrInvalidSelection), errors.Is(err, board.ErrNoGraph),
		errors.Is(err, board.ErrTooManyNodes):
		code = http.StatusBadRequest
	case errors.Is(err, board.ErrSearchRunning):
		code = http.StatusConflict
	}
	http.Error(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.Encode(v)
}
