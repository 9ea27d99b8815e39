// Package graph holds the undirected weighted graph that the visualizer
// draws and searches. Edge weights are always the Euclidean distance between
// the endpoints; the adjacency matrix mirrors them for O(1) lookup.
package graph

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/TFMV/dijkstraviz/ident"
)

var (
	// ErrSelfLoop is returned when an edge would join a node to itself.
	ErrSelfLoop = errors.New("graph: self-loops are not allowed")

	// ErrDuplicateEdge is returned when a pair of nodes is already joined.
	ErrDuplicateEdge = errors.New("graph: nodes are already connected")

	// ErrUnknownNode is returned for a label outside the node list.
	ErrUnknownNode = errors.New("graph: unknown node label")

	// ErrNoEdge is returned when two nodes are not connected.
	ErrNoEdge = errors.New("graph: nodes are not connected")

	// ErrNegativeWeight is returned for a weight below zero.
	ErrNegativeWeight = errors.New("graph: negative weight")

	// ErrBadBounds is returned when generation bounds are inverted or the
	// node count is negative.
	ErrBadBounds = errors.New("graph: invalid generation bounds")

	// ErrInconsistent is returned by Validate when a structural invariant
	// does not hold.
	ErrInconsistent = errors.New("graph: inconsistent state")
)

// weightTolerance absorbs floating point noise when comparing a cached
// weight with a freshly computed distance.
const weightTolerance = 1e-9

// Bounds is the rectangle nodes are generated in.
type Bounds struct {
	X1, X2 float64
	Y1, Y2 float64
}

// Contains reports whether p lies inside the bounds, edges included.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.X1 && p.X <= b.X2 && p.Y >= b.Y1 && p.Y <= b.Y2
}

// Graph is a collection of nodes and undirected edges.
type Graph struct {
	ID        string
	Nodes     []*Node
	Edges     []*Edge
	Adjacency *Matrix

	ids *ident.Allocator
}

// New creates an empty graph whose entities draw ids from ids.
func New(ids *ident.Allocator) *Graph {
	if ids == nil {
		ids = ident.New()
	}
	return &Graph{
		ID:        ids.Scope(),
		Adjacency: newMatrix(0),
		ids:       ids,
	}
}

// IDs returns the allocator shared by the graph's entities.
func (g *Graph) IDs() *ident.Allocator {
	return g.ids
}

// Generate discards the current contents and places nodeCount nodes at
// uniformly random integer positions inside bounds. x and y are drawn
// independently for every node.
func (g *Graph) Generate(nodeCount int, bounds Bounds, rng *rand.Rand) error {
	if nodeCount < 0 || bounds.X2 < bounds.X1 || bounds.Y2 < bounds.Y1 {
		return fmt.Errorf("%w: %d nodes in [%g,%g]x[%g,%g]",
			ErrBadBounds, nodeCount, bounds.X1, bounds.X2, bounds.Y1, bounds.Y2)
	}

	g.Nodes = make([]*Node, 0, nodeCount)
	g.Edges = nil
	for i := 0; i < nodeCount; i++ {
		x := randomInteger(rng, bounds.X1, bounds.X2)
		y := randomInteger(rng, bounds.Y1, bounds.Y2)
		g.Nodes = append(g.Nodes, &Node{ID: g.ids.Next(), Label: i, X: x, Y: y})
	}
	g.Adjacency = newMatrix(nodeCount)
	return nil
}

// Connect flips a fair coin for every unordered pair of nodes and joins the
// pair when it lands heads. The result may be disconnected.
func (g *Graph) Connect(rng *rand.Rand) {
	for i := 0; i < len(g.Nodes); i++ {
		for j := i + 1; j < len(g.Nodes); j++ {
			if rng.Intn(2) == 1 {
				g.link(g.Nodes[i], g.Nodes[j])
			}
		}
	}
}

// AddNode appends a node with the next label. The matrix is rebuilt since
// its dimensions change.
func (g *Graph) AddNode(x, y float64) *Node {
	n := &Node{ID: g.ids.Next(), Label: len(g.Nodes), X: x, Y: y}
	g.Nodes = append(g.Nodes, n)
	g.rebuild()
	return n
}

// AddEdge joins the nodes labelled i and j.
func (g *Graph) AddEdge(i, j int) (*Edge, error) {
	if !g.has(i) || !g.has(j) {
		return nil, fmt.Errorf("%w: %d-%d", ErrUnknownNode, i, j)
	}
	if i == j {
		return nil, fmt.Errorf("%w: %d", ErrSelfLoop, i)
	}
	if _, ok := g.Adjacency.Weight(i, j); ok {
		return nil, fmt.Errorf("%w: %d-%d", ErrDuplicateEdge, i, j)
	}
	return g.link(g.Nodes[i], g.Nodes[j]), nil
}

// link creates an edge from out to in and records it everywhere.
func (g *Graph) link(out, in *Node) *Edge {
	e := &Edge{ID: g.ids.Next()}
	e.SetOut(out)
	e.SetIn(in)
	e.Weight = e.Length()

	out.AddEdgeOut(e)
	in.AddEdgeIn(e)
	g.Edges = append(g.Edges, e)
	g.Adjacency.patch(e)
	return e
}

// Node returns the node with the given label or nil.
func (g *Graph) Node(label int) *Node {
	if !g.has(label) {
		return nil
	}
	return g.Nodes[label]
}

// Move repositions a node and patches the weights of its incident edges.
func (g *Graph) Move(label int, x, y float64) error {
	n := g.Node(label)
	if n == nil {
		return fmt.Errorf("%w: %d", ErrUnknownNode, label)
	}
	n.SetPosition(x, y)
	g.RecomputeNode(n)
	return nil
}

// RecomputeNode refreshes the weights of n's edges and their matrix cells.
func (g *Graph) RecomputeNode(n *Node) {
	n.UpdateEdges()
	for _, e := range n.EdgesOut {
		g.Adjacency.patch(e)
	}
	for _, e := range n.EdgesIn {
		g.Adjacency.patch(e)
	}
}

// RecomputeWeights refreshes every edge weight and rewrites the matrix.
func (g *Graph) RecomputeWeights() {
	for _, e := range g.Edges {
		e.Weight = e.Length()
		g.Adjacency.patch(e)
	}
}

// SetWeight overrides the weight of the edge joining i and j. The override
// lasts until the next recompute touches the edge, and Validate reports it
// as inconsistent in the meantime.
func (g *Graph) SetWeight(i, j int, w float64) error {
	e := g.EdgeBetween(i, j)
	if e == nil {
		return fmt.Errorf("%w: %d-%d", ErrNoEdge, i, j)
	}
	if w < 0 {
		return fmt.Errorf("%w: %d-%d weight %.4f", ErrNegativeWeight, i, j, w)
	}
	e.Weight = w
	g.Adjacency.patch(e)
	return nil
}

// EdgeBetween returns the edge joining labels i and j, or nil.
func (g *Graph) EdgeBetween(i, j int) *Edge {
	n := g.Node(i)
	if n == nil {
		return nil
	}
	for _, e := range n.EdgesOut {
		if e.Joins(i, j) {
			return e
		}
	}
	for _, e := range n.EdgesIn {
		if e.Joins(i, j) {
			return e
		}
	}
	return nil
}

// Neighbors returns the labels adjacent to label in ascending order.
func (g *Graph) Neighbors(label int) []int {
	var out []int
	if !g.has(label) {
		return out
	}
	for v := 0; v < g.Adjacency.Size(); v++ {
		if _, ok := g.Adjacency.Weight(label, v); ok {
			out = append(out, v)
		}
	}
	return out
}

// Validate checks the structural invariants: a symmetric matrix with an
// absent diagonal, at most one edge per pair, matrix cells matching edge
// weights and weights matching live distances.
func (g *Graph) Validate() error {
	if g.Adjacency.Size() != len(g.Nodes) {
		return fmt.Errorf("%w: matrix is %d wide for %d nodes", ErrInconsistent, g.Adjacency.Size(), len(g.Nodes))
	}
	if !g.Adjacency.Symmetric() {
		return fmt.Errorf("%w: adjacency matrix is not symmetric", ErrInconsistent)
	}
	for i, n := range g.Nodes {
		if n.Label != i {
			return fmt.Errorf("%w: node at index %d has label %d", ErrInconsistent, i, n.Label)
		}
	}

	seen := make(map[[2]int]bool, len(g.Edges))
	for _, e := range g.Edges {
		a, b := e.Out().Label, e.In().Label
		if a > b {
			a, b = b, a
		}
		if seen[[2]int{a, b}] {
			return fmt.Errorf("%w: parallel edges between %d and %d", ErrInconsistent, a, b)
		}
		seen[[2]int{a, b}] = true

		if math.Abs(e.Weight-e.Length()) > weightTolerance {
			return fmt.Errorf("%w: edge %d-%d weight %.4f, distance %.4f", ErrInconsistent, a, b, e.Weight, e.Length())
		}
		if w, _ := g.Adjacency.Weight(a, b); w != e.Weight {
			return fmt.Errorf("%w: matrix %d-%d holds %.4f, edge holds %.4f", ErrInconsistent, a, b, w, e.Weight)
		}
	}

	present := 0
	for i := 0; i < g.Adjacency.Size(); i++ {
		for j := i + 1; j < g.Adjacency.Size(); j++ {
			if _, ok := g.Adjacency.Weight(i, j); ok {
				present++
			}
		}
	}
	if present != len(g.Edges) {
		return fmt.Errorf("%w: matrix has %d edges, edge list has %d", ErrInconsistent, present, len(g.Edges))
	}
	return nil
}

// rebuild reallocates the matrix and writes every edge into it.
func (g *Graph) rebuild() {
	g.Adjacency = newMatrix(len(g.Nodes))
	for _, e := range g.Edges {
		g.Adjacency.patch(e)
	}
}

func (g *Graph) has(label int) bool {
	return label >= 0 && label < len(g.Nodes)
}

// randomInteger returns an integer-valued float in [min, max].
func randomInteger(rng *rand.Rand, min, max float64) float64 {
	lo := math.Ceil(min)
	hi := math.Floor(max)
	if hi < lo {
		return min
	}
	return lo + float64(rng.Int63n(int64(hi-lo)+1))
}
