// Package render provides the surfaces a scene is drawn onto and exporters
// that serialize the final state of a board.
//
// Surfaces implement scene.Surface:
//
//	RasterSurface  PNG images through gg and the bundled Go fonts
//	SVGSurface     standalone SVG documents
//	ASCIISurface   a coarse character-grid preview for terminals
//
// Exporters (JSON and Graphviz DOT) write the graph itself, with the colors
// and weights currently shown.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/TFMV/dijkstraviz/graph"
	"github.com/TFMV/dijkstraviz/pathfind"
	"github.com/TFMV/dijkstraviz/scene"
)

// Canvas is a surface that can be written out.
type Canvas interface {
	scene.Surface
	Encode(w io.Writer) error
}

// Options configures a canvas.
type Options struct {
	Width      float64
	Height     float64
	Background color.Color
}

// NewCanvas returns a surface for format: "png", "svg" or "ascii".
func NewCanvas(format string, opts Options) (Canvas, error) {
	switch strings.ToLower(format) {
	case "png":
		return NewRasterSurface(int(math.Ceil(opts.Width)), int(math.Ceil(opts.Height)), opts.Background), nil
	case "svg":
		return NewSVGSurface(opts.Width, opts.Height, opts.Background), nil
	case "ascii", "txt":
		return NewASCIISurface(opts.Width, opts.Height), nil
	}
	return nil, fmt.Errorf("render: unsupported canvas format %q", format)
}

// Snapshot is everything an exporter writes.
type Snapshot struct {
	Graph  *graph.Graph
	Scene  *scene.Scene
	Result *pathfind.Result // nil when no search has run
	Width  float64
	Height float64
}

// Exporter serializes a snapshot.
type Exporter interface {
	Export(w io.Writer, s Snapshot) error
}

// NewExporter returns the exporter for format: "json" or "dot".
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "json":
		return JSONExporter{}, nil
	case "dot", "gv":
		return DOTExporter{}, nil
	}
	return nil, fmt.Errorf("render: unsupported export format %q", format)
}

// IsExport reports whether format names an exporter rather than a canvas.
func IsExport(format string) bool {
	_, err := NewExporter(format)
	return err == nil
}

// JSONExporter writes the graph as indented JSON.
type JSONExporter struct{}

type jsonNode struct {
	Label int     `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color,omitempty"`
}

type jsonEdge struct {
	Source int     `json:"source"`
	Target int     `json:"target"`
	Weight float64 `json:"weight"`
	Color  string  `json:"color,omitempty"`
	OnPath bool    `json:"onPath,omitempty"`
}

type jsonSearch struct {
	Source    int        `json:"source"`
	Target    int        `json:"target"`
	Reachable bool       `json:"reachable"`
	Distance  *float64   `json:"distance"`
	Path      []int      `json:"path"`
	Distances []*float64 `json:"distances"`
}

type jsonGraph struct {
	ID     string         `json:"id"`
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
	Nodes  []jsonNode     `json:"nodes"`
	Edges  []jsonEdge     `json:"edges"`
	Search *jsonSearch    `json:"search,omitempty"`
	Matrix [][]float64    `json:"matrix"`
	Extra  map[string]any `json:"metadata,omitempty"`
}

// Export writes s as JSON. Infinite distances are written as null.
func (JSONExporter) Export(w io.Writer, s Snapshot) error {
	circles, lines := drawablesOf(s.Scene)
	onPath := pathEdges(s.Result)

	out := jsonGraph{
		ID:     s.Graph.ID,
		Width:  s.Width,
		Height: s.Height,
		Nodes:  make([]jsonNode, 0, len(s.Graph.Nodes)),
		Edges:  make([]jsonEdge, 0, len(s.Graph.Edges)),
		Matrix: make([][]float64, s.Graph.Adjacency.Size()),
		Extra: map[string]any{
			"nodeCount": len(s.Graph.Nodes),
			"edgeCount": len(s.Graph.Edges),
		},
	}

	for _, n := range s.Graph.Nodes {
		node := jsonNode{Label: n.Label, X: n.X, Y: n.Y}
		if c, ok := circles[n.Label]; ok {
			node.Color, _ = hexString(c.Color)
		}
		out.Nodes = append(out.Nodes, node)
	}
	for _, e := range s.Graph.Edges {
		a, b := e.Out().Label, e.In().Label
		edge := jsonEdge{Source: a, Target: b, Weight: e.Weight, OnPath: onPath[pairKey(a, b)]}
		if l, ok := lines[pairKey(a, b)]; ok {
			edge.Color, _ = hexString(l.Color)
		}
		out.Edges = append(out.Edges, edge)
	}
	for i := range out.Matrix {
		out.Matrix[i] = s.Graph.Adjacency.Row(i)
	}

	if r := s.Result; r != nil {
		search := &jsonSearch{
			Source:    r.Source,
			Target:    r.Target,
			Reachable: r.Reachable,
			Distance:  finite(r.Distance()),
			Path:      append([]int{}, r.Path...),
		}
		for _, d := range r.Distances {
			search.Distances = append(search.Distances, finite(d))
		}
		out.Search = search
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("render: encode json: %w", err)
	}
	return nil
}

// DOTExporter writes the graph in Graphviz DOT with pinned positions.
type DOTExporter struct{}

// Export writes s as an undirected DOT graph. Positions are in points with
// the y axis flipped, ready for `neato -n`.
func (DOTExporter) Export(w io.Writer, s Snapshot) error {
	circles, lines := drawablesOf(s.Scene)
	onPath := pathEdges(s.Result)

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  graph [size=\"%g,%g\"];\n", s.Width/72, s.Height/72)
	buf.WriteString("  node [shape=circle, style=filled, fontname=\"monospace\"];\n")
	buf.WriteString("  edge [fontname=\"monospace\"];\n")

	for _, n := range s.Graph.Nodes {
		fill := "#1fb4ff"
		if c, ok := circles[n.Label]; ok {
			fill, _ = hexString(c.Color)
		}
		fmt.Fprintf(&buf, "  %d [label=\"%d\", fillcolor=\"%s\", pos=\"%g,%g!\"];\n",
			n.Label, n.Label, fill, n.X, s.Height-n.Y)
	}

	edges := append([]*graph.Edge(nil), s.Graph.Edges...)
	sort.SliceStable(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Out().Label != b.Out().Label {
			return a.Out().Label < b.Out().Label
		}
		return a.In().Label < b.In().Label
	})
	for _, e := range edges {
		a, b := e.Out().Label, e.In().Label
		stroke := "#d0c7d6"
		if l, ok := lines[pairKey(a, b)]; ok {
			stroke, _ = hexString(l.Color)
		}
		style := "solid"
		if onPath[pairKey(a, b)] {
			style = "bold"
		}
		fmt.Fprintf(&buf, "  %d -- %d [label=\"%.2f\", color=\"%s\", style=%s];\n", a, b, e.Weight, stroke, style)
	}

	buf.WriteString("}\n")
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("render: write dot: %w", err)
	}
	return nil
}

func drawablesOf(sc *scene.Scene) (map[int]*scene.Circle, map[[2]int]*scene.Line) {
	circles := make(map[int]*scene.Circle)
	lines := make(map[[2]int]*scene.Line)
	if sc == nil {
		return circles, lines
	}
	for _, c := range sc.Circles() {
		circles[c.Key] = c
	}
	for _, l := range sc.Lines() {
		lines[pairKey(l.CircleOut.Key, l.CircleIn.Key)] = l
	}
	return circles, lines
}

func pathEdges(r *pathfind.Result) map[[2]int]bool {
	on := make(map[[2]int]bool)
	if r == nil {
		return on
	}
	for i := 1; i < len(r.Path); i++ {
		on[pairKey(r.Path[i-1], r.Path[i])] = true
	}
	return on
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func finite(d float64) *float64 {
	if math.IsInf(d, 0) || math.IsNaN(d) {
		return nil
	}
	return &d
}
