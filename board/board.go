// Package board ties a graph to the scene that shows it. It builds one
// circle per node and one line per edge, keeps node positions and edge
// labels in sync while circles are dragged, tracks which nodes the user
// selected and runs shortest-path searches over the result.
package board

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"strconv"

	"github.com/TFMV/dijkstraviz/config"
	"github.com/TFMV/dijkstraviz/graph"
	"github.com/TFMV/dijkstraviz/ident"
	"github.com/TFMV/dijkstraviz/loop"
	"github.com/TFMV/dijkstraviz/pathfind"
	"github.com/TFMV/dijkstraviz/physics"
	"github.com/TFMV/dijkstraviz/render"
	"github.com/TFMV/dijkstraviz/scene"
)

var (
	// ErrInvalidSelection is returned when a search is requested without two
	// distinct, existing nodes.
	ErrInvalidSelection = errors.New("board: source and target must be two distinct nodes")

	// ErrSearchRunning is returned when a search is requested while an
	// animated search is still in progress.
	ErrSearchRunning = errors.New("board: a search is already running")

	// ErrNoGraph is returned by operations that need a graph before
	// CreateGraph was called.
	ErrNoGraph = errors.New("board: no graph")

	// ErrTooManyNodes is returned by CreateGraph for more nodes than
	// graph.max_nodes allows.
	ErrTooManyNodes = errors.New("board: too many nodes")
)

// Board composes a graph and its scene.
type Board struct {
	cfg         config.Config
	colors      config.Colors
	shapeShadow scene.Shadow
	textShadow  scene.Shadow

	scheduler loop.Scheduler
	rng       *rand.Rand
	logger    *log.Logger

	graph *graph.Graph
	scene *scene.Scene

	circles    map[int]*scene.Circle      // node label to circle
	lineByEdge map[ident.ID]*scene.Line   // edge id to line
	edgeByLine map[*scene.Line]*graph.Edge // line to edge
	unsubs     []func()

	sel  selection
	anim *animation
	last *pathfind.Result
}

// Option configures a Board.
type Option func(*Board)

// WithScheduler sets the scheduler for drag ticks and search animation.
func WithScheduler(s loop.Scheduler) Option {
	return func(b *Board) { b.scheduler = s }
}

// WithRand sets the random source used for generation.
func WithRand(r *rand.Rand) Option {
	return func(b *Board) { b.rng = r }
}

// WithLogger sets the logger. Boards log nothing by default.
func WithLogger(l *log.Logger) Option {
	return func(b *Board) { b.logger = l }
}

// New creates a board without a graph.
func New(cfg config.Config, opts ...Option) (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	colors, err := cfg.Palette.Resolve()
	if err != nil {
		return nil, err
	}
	shape, text, err := cfg.Shadows()
	if err != nil {
		return nil, err
	}

	b := &Board{
		cfg:         cfg,
		colors:      colors,
		shapeShadow: shape,
		textShadow:  text,
		sel:         emptySelection(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.scheduler == nil {
		b.scheduler = loop.NewManual()
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewSource(1))
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard, "", 0)
	}
	return b, nil
}

// CreateGraph builds a new random graph of nodeCount nodes inside bounds and
// replaces the current graph and scene with it, cancelling any drag or
// search in progress. On error the current graph and scene are left as they
// were.
func (b *Board) CreateGraph(nodeCount int, bounds graph.Bounds) (*graph.Graph, error) {
	if nodeCount > b.cfg.Graph.MaxNodes {
		return nil, fmt.Errorf("%w: %d nodes, at most %d", ErrTooManyNodes, nodeCount, b.cfg.Graph.MaxNodes)
	}

	g := graph.New(ident.New())
	if err := g.Generate(nodeCount, bounds, b.rng); err != nil {
		return nil, fmt.Errorf("board: create graph: %w", err)
	}
	g.Connect(b.rng)

	if b.cfg.Graph.Spread {
		spread := physics.NewSpread(2*b.cfg.Graph.Radius+8, 300)
		iterations := spread.Run(g, bounds)
		b.logger.Printf("spread %d nodes in %d iterations", nodeCount, iterations)
	}

	b.Reset()
	b.graph = g
	b.scene = scene.New(
		scene.WithScheduler(b.scheduler),
		scene.WithTickInterval(b.cfg.TickInterval()),
		scene.WithEasing(physics.Easing{Factor: b.cfg.Drag.Factor, SnapDistance: b.cfg.Drag.Snap}),
	)
	b.build()

	for _, n := range g.Nodes {
		b.AddCircleToScene(b.circles[n.Label])
	}
	if len(b.scene.Circles()) != len(g.Nodes) {
		panic(fmt.Sprintf("board: %d circles for %d nodes", len(b.scene.Circles()), len(g.Nodes)))
	}

	b.unsubs = append(b.unsubs,
		b.scene.Subscribe(scene.DraggingStarted, b.onDragStarted),
		b.scene.Subscribe(scene.DraggingContinuing, b.onDragged),
		b.scene.Subscribe(scene.DraggingStopped, b.onDragged),
	)

	b.logger.Printf("created graph %s: %d nodes, %d edges", g.ID, len(g.Nodes), len(g.Edges))
	return g, nil
}

// build creates the drawables for the current graph: one circle per node and
// one line per connected pair.
func (b *Board) build() {
	g := b.graph
	ids := g.IDs()

	b.circles = make(map[int]*scene.Circle, len(g.Nodes))
	b.lineByEdge = make(map[ident.ID]*scene.Line, len(g.Edges))
	b.edgeByLine = make(map[*scene.Line]*graph.Edge, len(g.Edges))

	for _, n := range g.Nodes {
		label := scene.NewText(ids, strconv.Itoa(n.Label), n.X, n.Y, b.cfg.NodeFont(), b.colors.Text)
		label.Shadow = b.shapeShadow
		c := scene.NewCircle(ids, n.Label, n.X, n.Y, b.cfg.Graph.Radius, b.colors.NodeDefault, label)
		c.Shadow = b.shapeShadow
		b.circles[n.Label] = c
	}

	size := g.Adjacency.Size()
	for i := 0; i < size; i++ {
		for j := i + 1; j < size; j++ {
			w, ok := g.Adjacency.Weight(i, j)
			if !ok {
				continue
			}
			e := g.EdgeBetween(i, j)
			text := scene.NewText(ids, FormatWeight(w), 0, 0, b.cfg.EdgeFont(), b.colors.Text)
			text.Shadow = b.textShadow
			l := scene.NewLine(ids, b.circles[i], b.circles[j], b.cfg.Graph.EdgeWidth, b.colors.EdgeDefault, text)
			l.Shadow = b.shapeShadow

			b.lineByEdge[e.ID] = l
			b.edgeByLine[l] = e
		}
	}
}

// Graph returns the current graph, or nil before CreateGraph.
func (b *Board) Graph() *graph.Graph { return b.graph }

// Scene returns the current scene, or nil before CreateGraph.
func (b *Board) Scene() *scene.Scene { return b.scene }

// Config returns the board's configuration.
func (b *Board) Config() config.Config { return b.cfg }

// Colors returns the resolved palette.
func (b *Board) Colors() config.Colors { return b.colors }

// CircleFor returns the circle drawn for a node label, or nil.
func (b *Board) CircleFor(label int) *scene.Circle { return b.circles[label] }

// LineFor returns the line drawn for an edge, or nil.
func (b *Board) LineFor(e *graph.Edge) *scene.Line { return b.lineByEdge[e.ID] }

// EdgeFor returns the edge a line represents, or nil.
func (b *Board) EdgeFor(l *scene.Line) *graph.Edge { return b.edgeByLine[l] }

// NodeFor returns the node a circle represents, or nil.
func (b *Board) NodeFor(c *scene.Circle) *graph.Node {
	if b.graph == nil || b.circles[c.Key] != c {
		return nil
	}
	return b.graph.Node(c.Key)
}

// Lines returns every line in the scene.
func (b *Board) Lines() []*scene.Line {
	if b.scene == nil {
		return nil
	}
	return b.scene.Lines()
}

// MarkDirty schedules a redraw.
func (b *Board) MarkDirty() {
	if b.scene != nil {
		b.scene.MarkDirty()
	}
}

// AddCircleToScene adds c with its lines and texts to the scene.
func (b *Board) AddCircleToScene(c *scene.Circle) {
	b.scene.AddCircle(c)
}

// RedrawIfDirty repaints the scene onto s when anything changed.
func (b *Board) RedrawIfDirty(s scene.Surface) bool {
	if b.scene == nil {
		return false
	}
	return b.scene.RedrawIfDirty(s)
}

// ResetColors restores default colors, clears the selection and the last
// search result, and stops a running search animation.
func (b *Board) ResetColors() {
	b.stopAnimation()
	b.paintDefaults()
	b.sel = emptySelection()
	b.last = nil
	b.MarkDirty()
}

// Reset cancels any drag and search in progress and detaches from the
// scene's events. The graph and scene stay readable.
func (b *Board) Reset() {
	if b.scene != nil {
		b.scene.Cancel()
	}
	b.stopAnimation()
	for _, unsub := range b.unsubs {
		unsub()
	}
	b.unsubs = nil
	b.sel = emptySelection()
	b.last = nil
}

// LastResult returns the most recent completed search, or nil.
func (b *Board) LastResult() *pathfind.Result { return b.last }

// Snapshot captures the board for an exporter.
func (b *Board) Snapshot() render.Snapshot {
	return render.Snapshot{
		Graph:  b.graph,
		Scene:  b.scene,
		Result: b.last,
		Width:  float64(b.cfg.Surface.Width),
		Height: float64(b.cfg.Surface.Height),
	}
}

func (b *Board) paintDefaults() {
	for _, c := range b.circles {
		c.Color = b.colors.NodeDefault
	}
	for l := range b.edgeByLine {
		l.Color = b.colors.EdgeDefault
	}
}

// onDragged moves the dragged node and relabels its edges.
func (b *Board) onDragged(e scene.Event) {
	c := e.Circle
	if err := b.graph.Move(c.Key, c.X, c.Y); err != nil {
		panic(fmt.Sprintf("board: circle %d has no node: %v", c.Key, err))
	}

	n := b.graph.Node(c.Key)
	for _, edges := range [][]*graph.Edge{n.EdgesOut, n.EdgesIn} {
		for _, edge := range edges {
			if l := b.lineByEdge[edge.ID]; l != nil && l.Text != nil {
				l.Text.String = FormatWeight(edge.Weight)
			}
		}
	}
	b.scene.MarkDirty()
}

func (b *Board) onDragStarted(e scene.Event) {
	b.onDragged(e)

	// A painted search goes stale as soon as a node moves.
	b.last = nil
	b.sel.pick(e.Circle.Key)
	b.paintDefaults()
	b.paintSelection()
	b.logger.Printf("selection: %s", b.sel)
}

// FormatWeight renders a weight rounded to two decimals without trailing
// zeros, e.g. 12.5 or 7.
func FormatWeight(w float64) string {
	return strconv.FormatFloat(math.Round(w*100)/100, 'f', -1, 64)
}
