package config

import (
	"fmt"
	"image/color"

	"github.com/TFMV/dijkstraviz/pathfind"
	"github.com/TFMV/dijkstraviz/render"
)

// Colors is a palette with every entry parsed.
type Colors struct {
	NodeDefault     color.RGBA
	EdgeDefault     color.RGBA
	ShortestPath    color.RGBA
	NotShortestPath color.RGBA
	NodeVisited     color.RGBA
	NodeNotVisited  color.RGBA
	Source          color.RGBA
	Target          color.RGBA
	Text            color.RGBA
}

// Resolve parses every palette entry.
func (p Palette) Resolve() (Colors, error) {
	var c Colors
	for _, f := range []struct {
		name string
		in   string
		out  *color.RGBA
	}{
		{"node_default", p.NodeDefault, &c.NodeDefault},
		{"edge_default", p.EdgeDefault, &c.EdgeDefault},
		{"shortest_path", p.ShortestPath, &c.ShortestPath},
		{"not_shortest_path", p.NotShortestPath, &c.NotShortestPath},
		{"node_visited", p.NodeVisited, &c.NodeVisited},
		{"node_not_visited", p.NodeNotVisited, &c.NodeNotVisited},
		{"source", p.Source, &c.Source},
		{"target", p.Target, &c.Target},
		{"text", p.Text, &c.Text},
	} {
		v, err := render.ParseHexColor(f.in)
		if err != nil {
			return Colors{}, fmt.Errorf("%w: palette.%s: %v", ErrInvalid, f.name, err)
		}
		*f.out = v
	}
	return c, nil
}

// Search returns the colors a shortest-path search paints with.
func (c Colors) Search() pathfind.Colors {
	return pathfind.Colors{
		NodeVisited:    c.NodeVisited,
		NodeNotVisited: c.NodeNotVisited,
		EdgeNotVisited: c.NotShortestPath,
		ShortestPath:   c.ShortestPath,
	}
}
