package board

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/dijkstraviz/config"
	"github.com/TFMV/dijkstraviz/gesture"
	"github.com/TFMV/dijkstraviz/graph"
	"github.com/TFMV/dijkstraviz/loop"
	"github.com/TFMV/dijkstraviz/pathfind"
	"github.com/TFMV/dijkstraviz/scene"
)

func newBoard(t *testing.T, nodes int) (*Board, *loop.Manual) {
	t.Helper()

	cfg := config.Default()
	clock := loop.NewManual()
	b, err := New(cfg, WithScheduler(clock), WithRand(rand.New(rand.NewSource(42))))
	require.NoError(t, err)

	bounds, err := cfg.Bounds()
	require.NoError(t, err)
	_, err = b.CreateGraph(nodes, bounds)
	require.NoError(t, err)
	return b, clock
}

func TestCreateGraph_BuildsDrawables(t *testing.T) {
	b, _ := newBoard(t, 10)
	g := b.Graph()

	require.NoError(t, g.Validate())
	assert.Len(t, b.Scene().Circles(), 10)
	assert.Len(t, b.Scene().Lines(), len(g.Edges))
	assert.Len(t, b.Scene().Texts(), 10+len(g.Edges))
	assert.True(t, b.Scene().Dirty())

	for _, n := range g.Nodes {
		c := b.CircleFor(n.Label)
		require.NotNil(t, c)
		assert.Equal(t, n.X, c.X)
		assert.Equal(t, n.Y, c.Y)
		assert.Equal(t, n, b.NodeFor(c))
		assert.Equal(t, b.Colors().NodeDefault, c.Color)
	}
	for _, e := range g.Edges {
		l := b.LineFor(e)
		require.NotNil(t, l)
		assert.Equal(t, e, b.EdgeFor(l))
		assert.Equal(t, FormatWeight(e.Weight), l.Text.String)
		assert.Equal(t, e.Out().Label, l.CircleOut.Key)
		assert.Equal(t, e.In().Label, l.CircleIn.Key)
	}
}

func TestCreateGraph_Replaces(t *testing.T) {
	b, clock := newBoard(t, 6)
	first := b.Graph()
	c := b.CircleFor(0)
	b.Scene().MouseDown(c.X, c.Y)
	require.Equal(t, 1, clock.Active())

	bounds, err := b.Config().Bounds()
	require.NoError(t, err)
	g, err := b.CreateGraph(4, bounds)

	require.NoError(t, err)
	assert.NotSame(t, first, g)
	assert.NotEqual(t, first.ID, g.ID)
	assert.Len(t, b.Scene().Circles(), 4)
	assert.Zero(t, clock.Active(), "the old drag timer is stopped")
}

func TestCreateGraph_Errors(t *testing.T) {
	b, err := New(config.Default())
	require.NoError(t, err)

	_, err = b.CreateGraph(-1, graph.Bounds{X2: 10, Y2: 10})
	assert.ErrorIs(t, err, graph.ErrBadBounds)

	_, err = b.RunShortestPath(0, 1)
	assert.ErrorIs(t, err, ErrNoGraph)

	bad := config.Default()
	bad.Drag.Factor = 0
	_, err = New(bad)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestCreateGraph_FailureKeepsBoard(t *testing.T) {
	b, clock := newBoard(t, 6)
	g, sc := b.Graph(), b.Scene()
	bounds, err := b.Config().Bounds()
	require.NoError(t, err)

	_, err = b.CreateGraph(-1, bounds)
	require.Error(t, err)
	_, err = b.CreateGraph(b.Config().Graph.MaxNodes+1, bounds)
	assert.ErrorIs(t, err, ErrTooManyNodes)

	assert.Same(t, g, b.Graph())
	assert.Same(t, sc, b.Scene())

	c := b.CircleFor(2)
	hit := sc.HitTest(c.X, c.Y)
	require.NotNil(t, hit)
	sc.MouseDown(hit.X, hit.Y)
	sc.MouseMove(hit.X+200, hit.Y)
	sc.MouseUp(hit.X+200, hit.Y)
	clock.Advance(time.Second)

	n := b.NodeFor(hit)
	assert.Equal(t, hit.X, n.X, "the node still follows its circle")
	assert.Equal(t, hit.Y, n.Y)
	require.NoError(t, g.Validate())
	src, ok := b.Source()
	assert.True(t, ok)
	assert.Equal(t, hit.Key, src)
}

func TestCreateGraph_Spread(t *testing.T) {
	cfg := config.Default()
	cfg.Graph.Spread = true
	b, err := New(cfg, WithRand(rand.New(rand.NewSource(3))))
	require.NoError(t, err)
	bounds, err := cfg.Bounds()
	require.NoError(t, err)

	g, err := b.CreateGraph(12, bounds)

	require.NoError(t, err)
	require.NoError(t, g.Validate())
	for _, n := range g.Nodes {
		assert.True(t, bounds.Contains(n.Position()))
		assert.Equal(t, n.X, b.CircleFor(n.Label).X)
	}
}

func TestDrag_SyncsGraph(t *testing.T) {
	b, clock := newBoard(t, 8)
	sc := b.Scene()
	start := b.CircleFor(3)
	hit := sc.HitTest(start.X, start.Y)
	require.NotNil(t, hit)

	_, err := gesture.Replay(sc, gesture.Path{
		From:  graph.Point{X: hit.X, Y: hit.Y},
		To:    graph.Point{X: hit.X + 60, Y: hit.Y - 40},
		Steps: 6, Wobble: 8, Seed: 5,
	}, 1)
	require.NoError(t, err)

	n := b.NodeFor(hit)
	assert.Equal(t, hit.X, n.X)
	assert.Equal(t, hit.Y, n.Y)
	require.NoError(t, b.Graph().Validate())
	for _, e := range append(append([]*graph.Edge(nil), n.EdgesOut...), n.EdgesIn...) {
		assert.Equal(t, FormatWeight(e.Weight), b.LineFor(e).Text.String)
	}

	// Replay ticks the scene itself; the scheduled timer is gone once idle.
	assert.Zero(t, clock.Active())
}

func TestDrag_OnScheduler(t *testing.T) {
	b, clock := newBoard(t, 5)
	sc := b.Scene()
	c := b.CircleFor(0)
	hit := sc.HitTest(c.X, c.Y)
	require.NotNil(t, hit)

	sc.MouseDown(hit.X, hit.Y)
	sc.MouseMove(hit.X+100, hit.Y)
	sc.MouseUp(hit.X+100, hit.Y)
	clock.Advance(time.Second)

	assert.Equal(t, scene.Idle, sc.State())
	assert.Equal(t, hit.X, b.NodeFor(hit).X)
	require.NoError(t, b.Graph().Validate())
}

func TestSelection_Cycle(t *testing.T) {
	b, _ := newBoard(t, 5)
	colors := b.Colors()

	require.NoError(t, b.Select(1))
	src, ok := b.Source()
	assert.True(t, ok)
	assert.Equal(t, 1, src)
	assert.False(t, b.Ready())
	assert.Equal(t, colors.Source, b.CircleFor(1).Color)

	require.NoError(t, b.Select(3))
	tgt, ok := b.Target()
	assert.True(t, ok)
	assert.Equal(t, 3, tgt)
	assert.True(t, b.Ready())
	assert.Equal(t, colors.Target, b.CircleFor(3).Color)

	require.NoError(t, b.Select(2))
	src, _ = b.Source()
	_, ok = b.Target()
	assert.Equal(t, 2, src)
	assert.False(t, ok)
	assert.Equal(t, colors.NodeDefault, b.CircleFor(1).Color)
	assert.Equal(t, colors.NodeDefault, b.CircleFor(3).Color)
	assert.Equal(t, colors.Source, b.CircleFor(2).Color)

	require.NoError(t, b.Select(2))
	src, _ = b.Source()
	_, ok = b.Target()
	assert.Equal(t, 2, src)
	assert.False(t, ok, "picking the source again leaves only the source")
	assert.Equal(t, colors.Source, b.CircleFor(2).Color)

	assert.ErrorIs(t, b.Select(99), ErrInvalidSelection)

	b.ClearSelection()
	_, ok = b.Source()
	assert.False(t, ok)
	assert.Equal(t, colors.NodeDefault, b.CircleFor(2).Color)
}

func TestSelection_ByDragging(t *testing.T) {
	b, _ := newBoard(t, 5)
	sc := b.Scene()

	press := func(label int) int {
		c := b.CircleFor(label)
		hit := sc.HitTest(c.X, c.Y)
		require.NotNil(t, hit)
		sc.MouseDown(hit.X, hit.Y)
		sc.MouseUp(hit.X, hit.Y)
		for sc.State() != scene.Idle {
			sc.Tick()
		}
		return hit.Key
	}

	first := press(0)
	second := press(4)

	src, _ := b.Source()
	assert.Equal(t, first, src)
	if first != second {
		tgt, ok := b.Target()
		assert.True(t, ok)
		assert.Equal(t, second, tgt)
	}
}

func TestRunShortestPath(t *testing.T) {
	b, _ := newBoard(t, 10)

	_, err := b.RunShortestPath(2, 2)
	assert.ErrorIs(t, err, ErrInvalidSelection)
	_, err = b.RunShortestPath(0, 10)
	assert.ErrorIs(t, err, ErrInvalidSelection)
	_, err = b.RunSelected()
	assert.ErrorIs(t, err, ErrInvalidSelection)

	require.NoError(t, b.Select(0))
	require.NoError(t, b.Select(9))
	res, err := b.RunSelected()
	require.NoError(t, err)

	assert.Equal(t, 0, res.Source)
	assert.Equal(t, 9, res.Target)
	assert.Equal(t, res, *b.LastResult())

	want := bellmanFord(b.Graph(), 0)
	for i, d := range res.Distances {
		if math.IsInf(want[i], 1) {
			assert.True(t, math.IsInf(d, 1), "node %d", i)
			continue
		}
		assert.InDelta(t, want[i], d, 1e-9, "node %d", i)
	}
	if res.Reachable {
		require.NotEmpty(t, res.Path)
		assert.Equal(t, 0, res.Path[0])
		assert.Equal(t, 9, res.Path[len(res.Path)-1])
		for _, label := range res.Path {
			assert.Equal(t, b.Colors().ShortestPath, b.CircleFor(label).Color)
		}
	} else {
		assert.Empty(t, res.Path)
	}

	b.ResetColors()
	assert.Nil(t, b.LastResult())
	assert.False(t, b.Ready())
	for _, c := range b.Scene().Circles() {
		assert.Equal(t, b.Colors().NodeDefault, c.Color)
	}
	for _, l := range b.Lines() {
		assert.Equal(t, b.Colors().EdgeDefault, l.Color)
	}
}

func TestAnimateShortestPath(t *testing.T) {
	b, clock := newBoard(t, 10)
	want, err := b.RunShortestPath(1, 7)
	require.NoError(t, err)
	b.ResetColors()

	var got *pathfind.Result
	err = b.AnimateShortestPath(1, 7, 250*time.Millisecond, func(r pathfind.Result) { got = &r })
	require.NoError(t, err)
	assert.True(t, b.Searching())

	assert.ErrorIs(t, b.AnimateShortestPath(1, 7, time.Millisecond, nil), ErrSearchRunning)
	_, err = b.RunShortestPath(1, 7)
	assert.ErrorIs(t, err, ErrSearchRunning)

	clock.Advance(250 * time.Millisecond)
	if b.Graph().Node(1).Degree() > 0 {
		assert.Nil(t, got, "one node settles per tick")
		assert.Equal(t, b.Colors().NodeVisited, b.CircleFor(1).Color)
	}

	clock.Advance(time.Duration(len(b.Graph().Edges)+2) * 250 * time.Millisecond)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
	assert.False(t, b.Searching())
	assert.Zero(t, clock.Active())
}

func TestAnimateShortestPath_RejectsInput(t *testing.T) {
	b, clock := newBoard(t, 10)
	sc := b.Scene()
	var got *pathfind.Result
	require.NoError(t, b.AnimateShortestPath(0, 9, 250*time.Millisecond, func(r pathfind.Result) { got = &r }))
	assert.True(t, sc.Locked())

	c := b.CircleFor(9)
	x, y := c.X, c.Y
	sc.MouseDown(x, y)
	sc.MouseMove(x-400, y-150)
	assert.Equal(t, scene.Idle, sc.State(), "the press is ignored")
	assert.ErrorIs(t, b.Select(4), ErrSearchRunning)
	src, _ := b.Source()
	assert.Equal(t, unselected, src, "selection is untouched")

	clock.Advance(500 * time.Millisecond)
	sc.MouseUp(x-400, y-150)
	clock.Advance(250 * time.Millisecond)
	assert.Equal(t, x, c.X)
	assert.Equal(t, y, c.Y)

	clock.Advance(time.Duration(len(b.Graph().Edges)+2) * 250 * time.Millisecond)
	require.NotNil(t, got)
	assert.False(t, sc.Locked())

	b.ResetColors()
	fresh, err := b.RunShortestPath(0, 9)
	require.NoError(t, err)
	assert.Equal(t, fresh, *got, "the animated result holds for the graph on the board")

	sc.MouseDown(x, y)
	assert.Equal(t, scene.Dragging, sc.State(), "input is accepted again")
}

func TestAnimateShortestPath_SettlesDragFirst(t *testing.T) {
	b, clock := newBoard(t, 10)
	sc := b.Scene()
	c := b.CircleFor(4)
	hit := sc.HitTest(c.X, c.Y)
	require.NotNil(t, hit)

	sc.MouseDown(hit.X, hit.Y)
	sc.MouseMove(hit.X-120, hit.Y+60)
	clock.Advance(20 * time.Millisecond)
	b.ClearSelection()

	var got *pathfind.Result
	require.NoError(t, b.AnimateShortestPath(0, 9, 250*time.Millisecond, func(r pathfind.Result) { got = &r }))

	assert.Equal(t, scene.Idle, sc.State())
	n := b.NodeFor(hit)
	assert.Equal(t, hit.X, n.X)
	assert.Equal(t, hit.Y, n.Y)

	clock.Advance(time.Duration(len(b.Graph().Edges)+2) * 250 * time.Millisecond)
	require.NotNil(t, got)
	want := bellmanFord(b.Graph(), 0)
	if math.IsInf(want[9], 1) {
		assert.False(t, got.Reachable)
	} else {
		assert.InDelta(t, want[9], got.Distance(), 1e-9)
	}
}

func TestAnimateShortestPath_ResetAbandons(t *testing.T) {
	b, clock := newBoard(t, 10)

	called := false
	require.NoError(t, b.AnimateShortestPath(0, 5, 10*time.Millisecond, func(pathfind.Result) { called = true }))
	clock.Advance(10 * time.Millisecond)

	b.ResetColors()
	clock.Advance(time.Second)

	assert.False(t, called)
	assert.False(t, b.Searching())
	assert.False(t, b.Scene().Locked())
	assert.Zero(t, clock.Active())
	assert.Equal(t, b.Colors().NodeDefault, b.CircleFor(0).Color)
}

func TestReset_Detaches(t *testing.T) {
	b, clock := newBoard(t, 6)
	sc := b.Scene()
	c := b.CircleFor(2)
	hit := sc.HitTest(c.X, c.Y)
	require.NotNil(t, hit)
	sc.MouseDown(hit.X, hit.Y)

	b.Reset()

	assert.Equal(t, scene.Idle, sc.State())
	assert.Zero(t, clock.Active())

	before := b.NodeFor(hit).X
	sc.MouseDown(hit.X, hit.Y)
	sc.MouseMove(hit.X+50, hit.Y)
	sc.Tick()
	assert.Equal(t, before, b.NodeFor(hit).X, "events no longer reach the graph")
	_, ok := b.Source()
	assert.False(t, ok)
}

func TestSnapshot(t *testing.T) {
	b, _ := newBoard(t, 4)
	_, err := b.RunShortestPath(0, 3)
	require.NoError(t, err)

	s := b.Snapshot()

	assert.Same(t, b.Graph(), s.Graph)
	assert.Same(t, b.Scene(), s.Scene)
	assert.Same(t, b.LastResult(), s.Result)
	assert.Equal(t, 1280.0, s.Width)
}

func TestFormatWeight(t *testing.T) {
	tests := map[float64]string{
		7:        "7",
		12.5:     "12.5",
		3.14159:  "3.14",
		99.999:   "100",
		0:        "0",
		141.4213: "141.42",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatWeight(in), "%v", in)
	}
}

func bellmanFord(g *graph.Graph, source int) []float64 {
	n := len(g.Nodes)
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[source] = 0
	for k := 0; k < n; k++ {
		for _, e := range g.Edges {
			u, v := e.Out().Label, e.In().Label
			if dist[u]+e.Weight < dist[v] {
				dist[v] = dist[u] + e.Weight
			}
			if dist[v]+e.Weight < dist[u] {
				dist[u] = dist[v] + e.Weight
			}
		}
	}
	return dist
}
