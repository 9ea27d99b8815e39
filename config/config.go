// Package config holds every tunable of the visualizer: graph size, surface
// geometry, palette, fonts and timings. Values load from TOML on top of the
// defaults.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/TFMV/dijkstraviz/graph"
	"github.com/TFMV/dijkstraviz/render"
	"github.com/TFMV/dijkstraviz/scene"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// NodeLimit caps graph.max_nodes. The adjacency matrix holds NodeLimit²
// weights at most.
const NodeLimit = 1000

// Config is the full configuration.
type Config struct {
	Graph   GraphConfig   `toml:"graph"`
	Surface SurfaceConfig `toml:"surface"`
	Palette Palette       `toml:"palette"`
	Shadow  ShadowConfig  `toml:"shadow"`
	Fonts   FontsConfig   `toml:"fonts"`
	Drag    DragConfig    `toml:"drag"`
	Search  SearchConfig  `toml:"search"`
}

// GraphConfig controls generation.
type GraphConfig struct {
	Nodes int `toml:"nodes"`
	// MaxNodes bounds the node count of any generated graph, including ones
	// requested by hosts at run time.
	MaxNodes  int     `toml:"max_nodes"`
	Radius    float64 `toml:"radius"`
	EdgeWidth float64 `toml:"edge_width"`
	// Spread pushes overlapping nodes apart after generation.
	Spread bool `toml:"spread"`
}

// SurfaceConfig describes the drawing area. Nodes are kept out of the top
// and bottom margins, which the host uses for controls.
type SurfaceConfig struct {
	Width        float64 `toml:"width"`
	Height       float64 `toml:"height"`
	TopMargin    float64 `toml:"top_margin"`
	BottomMargin float64 `toml:"bottom_margin"`
	Background   string  `toml:"background"`
}

// Palette holds colors as CSS-style strings.
type Palette struct {
	NodeDefault     string `toml:"node_default"`
	EdgeDefault     string `toml:"edge_default"`
	ShortestPath    string `toml:"shortest_path"`
	NotShortestPath string `toml:"not_shortest_path"`
	NodeVisited     string `toml:"node_visited"`
	NodeNotVisited  string `toml:"node_not_visited"`
	Source          string `toml:"source"`
	Target          string `toml:"target"`
	Text            string `toml:"text"`
}

// ShadowConfig describes the drop shadows under shapes and under edge
// labels.
type ShadowConfig struct {
	Color     string  `toml:"color"`
	Blur      float64 `toml:"blur"`
	OffsetX   float64 `toml:"offset_x"`
	OffsetY   float64 `toml:"offset_y"`
	TextColor string  `toml:"text_color"`
	TextBlur  float64 `toml:"text_blur"`
}

// FontConfig is one font.
type FontConfig struct {
	Weight string  `toml:"weight"`
	Size   float64 `toml:"size"`
	Family string  `toml:"family"`
}

// FontsConfig holds the node and edge label fonts.
type FontsConfig struct {
	Node FontConfig `toml:"node"`
	Edge FontConfig `toml:"edge"`
}

// DragConfig controls the drag easing.
type DragConfig struct {
	TickHz float64 `toml:"tick_hz"`
	Factor float64 `toml:"factor"`
	Snap   float64 `toml:"snap"`
}

// SearchConfig controls the animated search.
type SearchConfig struct {
	StepInterval duration `toml:"step_interval"`
}

// duration reads Go duration strings such as "250ms" from TOML.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q", ErrInvalid, text)
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Graph: GraphConfig{
			Nodes:     10,
			MaxNodes:  100,
			Radius:    28,
			EdgeWidth: 10,
		},
		Surface: SurfaceConfig{
			Width:        1280,
			Height:       800,
			TopMargin:    80,
			BottomMargin: 180,
			Background:   "#ffffff",
		},
		Palette: Palette{
			NodeDefault:     "#1FB4FF",
			EdgeDefault:     "#fb2",
			ShortestPath:    "#BC69F0",
			NotShortestPath: "#D0C7D6",
			NodeVisited:     "#555",
			NodeNotVisited:  "#D0C7D6",
			Source:          "#28ED56",
			Target:          "#FF3D44",
			Text:            "#fff",
		},
		Shadow: ShadowConfig{
			Color:     "rgba(1, 1, 1, 0.9)",
			Blur:      15,
			TextColor: "rgba(1, 1, 1, 1.0)",
			TextBlur:  5,
		},
		Fonts: FontsConfig{
			Node: FontConfig{Weight: "bold", Size: 20, Family: "monospace"},
			Edge: FontConfig{Weight: "bold", Size: 15, Family: "monospace"},
		},
		Drag: DragConfig{
			TickHz: 60,
			Factor: 0.6,
			Snap:   3,
		},
		Search: SearchConfig{
			StepInterval: duration{250 * time.Millisecond},
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as TOML.
func Save(path string, cfg Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Validate checks ranges and that every color parses.
func (c Config) Validate() error {
	switch {
	case c.Graph.Nodes < 0:
		return fmt.Errorf("%w: graph.nodes must not be negative", ErrInvalid)
	case c.Graph.MaxNodes < 1 || c.Graph.MaxNodes > NodeLimit:
		return fmt.Errorf("%w: graph.max_nodes must be in [1, %d]", ErrInvalid, NodeLimit)
	case c.Graph.Nodes > c.Graph.MaxNodes:
		return fmt.Errorf("%w: graph.nodes %d exceeds graph.max_nodes %d", ErrInvalid, c.Graph.Nodes, c.Graph.MaxNodes)
	case c.Graph.Radius <= 0:
		return fmt.Errorf("%w: graph.radius must be positive", ErrInvalid)
	case c.Graph.EdgeWidth <= 0:
		return fmt.Errorf("%w: graph.edge_width must be positive", ErrInvalid)
	case c.Drag.TickHz <= 0:
		return fmt.Errorf("%w: drag.tick_hz must be positive", ErrInvalid)
	case c.Drag.Factor <= 0 || c.Drag.Factor > 1:
		return fmt.Errorf("%w: drag.factor must be in (0, 1]", ErrInvalid)
	case c.Drag.Snap <= 0:
		return fmt.Errorf("%w: drag.snap must be positive", ErrInvalid)
	case c.Search.StepInterval.Duration <= 0:
		return fmt.Errorf("%w: search.step_interval must be positive", ErrInvalid)
	case c.Fonts.Node.Size <= 0 || c.Fonts.Edge.Size <= 0:
		return fmt.Errorf("%w: font sizes must be positive", ErrInvalid)
	}

	if _, err := c.Bounds(); err != nil {
		return err
	}
	if _, err := c.Palette.Resolve(); err != nil {
		return err
	}
	for name, s := range map[string]string{
		"surface.background": c.Surface.Background,
		"shadow.color":       c.Shadow.Color,
		"shadow.text_color":  c.Shadow.TextColor,
	} {
		if _, err := render.ParseHexColor(s); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, name, err)
		}
	}
	return nil
}

// Bounds returns the rectangle nodes are generated in: two radii from the
// sides, and one radius inside the top and bottom margins.
func (c Config) Bounds() (graph.Bounds, error) {
	r := c.Graph.Radius
	b := graph.Bounds{
		X1: r * 2,
		X2: c.Surface.Width - r*2,
		Y1: c.Surface.TopMargin + r,
		Y2: c.Surface.Height - c.Surface.BottomMargin - r,
	}
	if b.X2 < b.X1 || b.Y2 < b.Y1 {
		return b, fmt.Errorf("%w: %gx%g surface leaves no room for nodes of radius %g",
			ErrInvalid, c.Surface.Width, c.Surface.Height, r)
	}
	return b, nil
}

// TickInterval returns the drag tick period.
func (c Config) TickInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.Drag.TickHz)
}

// StepInterval returns the animated search step period.
func (c Config) StepInterval() time.Duration {
	return c.Search.StepInterval.Duration
}

// WithStepInterval returns a copy of c with a different search step period.
func (c Config) WithStepInterval(d time.Duration) Config {
	c.Search.StepInterval = duration{d}
	return c
}

// NodeFont returns the node label font.
func (c Config) NodeFont() scene.Font { return c.Fonts.Node.font() }

// EdgeFont returns the edge label font.
func (c Config) EdgeFont() scene.Font { return c.Fonts.Edge.font() }

func (f FontConfig) font() scene.Font {
	return scene.Font{Weight: f.Weight, Size: f.Size, Family: f.Family}
}

// Shadows returns the shape shadow and the edge label shadow.
func (c Config) Shadows() (shape, text scene.Shadow, err error) {
	sc, err := render.ParseHexColor(c.Shadow.Color)
	if err != nil {
		return shape, text, fmt.Errorf("%w: shadow.color: %v", ErrInvalid, err)
	}
	tc, err := render.ParseHexColor(c.Shadow.TextColor)
	if err != nil {
		return shape, text, fmt.Errorf("%w: shadow.text_color: %v", ErrInvalid, err)
	}
	shape = scene.Shadow{Color: sc, Blur: c.Shadow.Blur, OffsetX: c.Shadow.OffsetX, OffsetY: c.Shadow.OffsetY}
	text = scene.Shadow{Color: tc, Blur: c.Shadow.TextBlur, OffsetX: c.Shadow.OffsetX, OffsetY: c.Shadow.OffsetY}
	return shape, text, nil
}

// BackgroundColor returns the parsed surface background.
func (c Config) BackgroundColor() color.Color {
	bg, err := render.ParseHexColor(c.Surface.Background)
	if err != nil {
		return color.White
	}
	return bg
}
