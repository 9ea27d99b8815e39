package graph

import (
	"math"

	"github.com/TFMV/dijkstraviz/ident"
)

// Point is a position on the drawing surface.
type Point struct {
	X, Y float64
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Node is a graph vertex. Label is its row/column in the adjacency matrix
// and never changes after creation.
type Node struct {
	ID    ident.ID
	Label int
	X, Y  float64 // position on the drawing surface

	EdgesOut []*Edge
	EdgesIn  []*Edge
}

// Position returns the node's current position.
func (n *Node) Position() Point {
	return Point{X: n.X, Y: n.Y}
}

// SetPosition moves the node without touching its edges. Callers that need
// consistent weights use Graph.Move instead.
func (n *Node) SetPosition(x, y float64) {
	n.X = x
	n.Y = y
}

// AddEdgeOut records an edge that leaves this node.
func (n *Node) AddEdgeOut(e *Edge) {
	n.EdgesOut = append(n.EdgesOut, e)
}

// AddEdgeIn records an edge that arrives at this node.
func (n *Node) AddEdgeIn(e *Edge) {
	n.EdgesIn = append(n.EdgesIn, e)
}

// Degree returns the number of incident edges.
func (n *Node) Degree() int {
	return len(n.EdgesOut) + len(n.EdgesIn)
}

// UpdateEdges recomputes the weight of every edge incident to n.
func (n *Node) UpdateEdges() {
	for _, e := range n.EdgesOut {
		e.Weight = e.Length()
	}
	for _, e := range n.EdgesIn {
		e.Weight = e.Length()
	}
}

// Edge connects two nodes. Its endpoints are bound once; its weight is the
// cached distance between them.
type Edge struct {
	ID     ident.ID
	Weight float64

	out *Node
	in  *Node
}

// SetOut binds the out endpoint. Later calls are ignored.
func (e *Edge) SetOut(n *Node) {
	if e.out == nil {
		e.out = n
	}
}

// SetIn binds the in endpoint. Later calls are ignored.
func (e *Edge) SetIn(n *Node) {
	if e.in == nil {
		e.in = n
	}
}

// Out returns the out endpoint.
func (e *Edge) Out() *Node { return e.out }

// In returns the in endpoint.
func (e *Edge) In() *Node { return e.in }

// Other returns the endpoint opposite n, or nil if n is not an endpoint.
func (e *Edge) Other(n *Node) *Node {
	switch n {
	case e.out:
		return e.in
	case e.in:
		return e.out
	}
	return nil
}

// Joins reports whether the edge connects the nodes labelled a and b in
// either direction.
func (e *Edge) Joins(a, b int) bool {
	if e.out == nil || e.in == nil {
		return false
	}
	return (e.out.Label == a && e.in.Label == b) || (e.out.Label == b && e.in.Label == a)
}

// Length returns the live distance between the endpoints.
func (e *Edge) Length() float64 {
	if e.out == nil || e.in == nil {
		return 0
	}
	return e.out.Position().Distance(e.in.Position())
}
