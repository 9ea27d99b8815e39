// Package pathfind runs Dijkstra's algorithm over a graph and paints the
// progress onto the scene: visited nodes, untouched nodes and finally the
// shortest path. It never draws; it only changes drawable colors and marks
// the scene dirty.
package pathfind

import (
	"fmt"
	"image/color"
	"math"

	"github.com/TFMV/dijkstraviz/graph"
	"github.com/TFMV/dijkstraviz/scene"
)

// NoPredecessor marks a node with no predecessor in Result.Predecessors.
const NoPredecessor = -1

// Painter gives the search write access to the drawables of a graph.
type Painter interface {
	// CircleFor returns the circle drawn for the node label, or nil.
	CircleFor(label int) *scene.Circle
	// Lines returns every line in the scene.
	Lines() []*scene.Line
	MarkDirty()
}

// Colors are the colors a search paints with.
type Colors struct {
	NodeVisited    color.Color
	NodeNotVisited color.Color
	EdgeNotVisited color.Color
	ShortestPath   color.Color
}

// Result is the outcome of a search.
type Result struct {
	Source, Target int
	// Distances holds the shortest distance from the source per label;
	// +Inf for unreachable nodes.
	Distances    []float64
	Predecessors []int
	// Visited lists labels in the order they were settled.
	Visited []int
	// Path runs from source to target. It is empty when the target is
	// unreachable.
	Path      []int
	Reachable bool
}

// Distance returns the shortest distance to the target.
func (r Result) Distance() float64 {
	return r.Distances[r.Target]
}

// Search is one run of Dijkstra's algorithm that can be advanced a step at a
// time.
type Search struct {
	g       *graph.Graph
	painter Painter
	colors  Colors

	source, target int

	dist    []float64
	prev    []int
	visited []bool
	order   []int

	queue queue
	seq   int

	path        []int
	backtracked bool
}

// NewSearch prepares a search from source to target: every distance is
// infinite except the source's, and every node and line is painted as not
// visited. source and target must be valid, distinct labels.
func NewSearch(g *graph.Graph, source, target int, painter Painter, colors Colors) *Search {
	n := len(g.Nodes)
	s := &Search{
		g:       g,
		painter: painter,
		colors:  colors,
		source:  source,
		target:  target,
		dist:    make([]float64, n),
		prev:    make([]int, n),
		visited: make([]bool, n),
	}

	for i := range s.dist {
		s.dist[i] = math.Inf(1)
		s.prev[i] = NoPredecessor
		s.circle(i).Color = colors.NodeNotVisited
	}
	for _, l := range painter.Lines() {
		l.Color = colors.EdgeNotVisited
	}

	s.dist[source] = 0
	s.enqueue(source)
	painter.MarkDirty()
	return s
}

// Step settles the closest unvisited node and relaxes its edges. Stale queue
// entries are skipped. Step reports whether the queue is drained.
func (s *Search) Step() bool {
	for s.queue.Len() > 0 {
		e := s.queue.pop()
		u := e.label
		if s.visited[u] {
			continue
		}

		s.visited[u] = true
		s.order = append(s.order, u)
		s.circle(u).Color = s.colors.NodeVisited

		for v := 0; v < s.g.Adjacency.Size(); v++ {
			w, ok := s.g.Adjacency.Weight(u, v)
			if !ok {
				continue
			}
			if d := s.dist[u] + w; d < s.dist[v] {
				s.dist[v] = d
				s.prev[v] = u
				if !s.visited[v] {
					s.enqueue(v)
				}
			}
		}

		s.painter.MarkDirty()
		break
	}
	return s.queue.Len() == 0
}

// Done reports whether every reachable node is settled.
func (s *Search) Done() bool {
	return s.queue.Len() == 0
}

// Backtrack paints the path from target back to source, including the line
// joining each node to its predecessor, and returns it source first. It
// returns nil and paints nothing when the target is unreachable.
func (s *Search) Backtrack() []int {
	if s.backtracked {
		return s.path
	}
	s.backtracked = true

	if s.prev[s.target] == NoPredecessor && s.target != s.source {
		return nil
	}

	cur := s.target
	c := s.circle(cur)
	c.Color = s.colors.ShortestPath
	path := []int{cur}

	for cur != s.source {
		p := s.prev[cur]
		pc := s.circle(p)

		l := incident(c, pc)
		if l == nil {
			panic(fmt.Sprintf("pathfind: no line between nodes %d and %d", cur, p))
		}
		l.Color = s.colors.ShortestPath
		pc.Color = s.colors.ShortestPath

		path = append(path, p)
		cur, c = p, pc
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	s.path = path
	s.painter.MarkDirty()
	return path
}

// Result returns the distances and predecessors computed so far and the
// backtracked path, if any.
func (s *Search) Result() Result {
	return Result{
		Source:       s.source,
		Target:       s.target,
		Distances:    append([]float64(nil), s.dist...),
		Predecessors: append([]int(nil), s.prev...),
		Visited:      append([]int(nil), s.order...),
		Path:         append([]int(nil), s.path...),
		Reachable:    !math.IsInf(s.dist[s.target], 1),
	}
}

// Run performs a complete search in one call.
func Run(g *graph.Graph, source, target int, painter Painter, colors Colors) Result {
	s := NewSearch(g, source, target, painter, colors)
	for !s.Step() {
	}
	s.Backtrack()
	return s.Result()
}

func (s *Search) enqueue(label int) {
	s.queue.push(entry{label: label, dist: s.dist[label], seq: s.seq})
	s.seq++
}

// circle panics when the painter has no circle for label: every node must be
// drawn by exactly one circle.
func (s *Search) circle(label int) *scene.Circle {
	c := s.painter.CircleFor(label)
	if c == nil {
		panic(fmt.Sprintf("pathfind: no circle for node %d", label))
	}
	return c
}

// incident returns the first line of a that joins it to b, in either
// direction.
func incident(a, b *scene.Circle) *scene.Line {
	for _, l := range a.Lines() {
		if l.Other(a) == b {
			return l
		}
	}
	return nil
}
