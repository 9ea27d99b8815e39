package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/dijkstraviz/graph"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.Graph.Nodes)
	assert.Equal(t, 250*time.Millisecond, cfg.StepInterval())
	assert.Equal(t, time.Second/60, cfg.TickInterval())
	assert.Equal(t, "bold 20pt monospace", cfg.NodeFont().String())
	assert.Equal(t, "bold 15pt monospace", cfg.EdgeFont().String())
}

func TestDefault_Bounds(t *testing.T) {
	b, err := Default().Bounds()

	require.NoError(t, err)
	assert.Equal(t, graph.Bounds{X1: 56, X2: 1280 - 56, Y1: 108, Y2: 800 - 180 - 28}, b)
}

func TestPalette_Resolve(t *testing.T) {
	c, err := Default().Palette.Resolve()
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{0x1f, 0xb4, 0xff, 0xff}, c.NodeDefault)
	assert.Equal(t, color.RGBA{0xff, 0xbb, 0x22, 0xff}, c.EdgeDefault)
	assert.Equal(t, color.RGBA{0x55, 0x55, 0x55, 0xff}, c.NodeVisited)

	search := c.Search()
	assert.Equal(t, c.NotShortestPath, search.EdgeNotVisited)
	assert.Equal(t, c.ShortestPath, search.ShortestPath)

	p := Default().Palette
	p.Target = "crimson"
	_, err = p.Resolve()
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestShadows(t *testing.T) {
	shape, text, err := Default().Shadows()
	require.NoError(t, err)

	assert.Equal(t, 15.0, shape.Blur)
	assert.Equal(t, color.RGBA{1, 1, 1, 230}, shape.Color)
	assert.Equal(t, 5.0, text.Blur)
	assert.False(t, text.None())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative nodes", func(c *Config) { c.Graph.Nodes = -1 }},
		{"nodes above max", func(c *Config) { c.Graph.Nodes = c.Graph.MaxNodes + 1 }},
		{"zero max nodes", func(c *Config) { c.Graph.MaxNodes = 0 }},
		{"max nodes above limit", func(c *Config) { c.Graph.MaxNodes = NodeLimit + 1 }},
		{"zero radius", func(c *Config) { c.Graph.Radius = 0 }},
		{"factor above one", func(c *Config) { c.Drag.Factor = 1.5 }},
		{"no tick", func(c *Config) { c.Drag.TickHz = 0 }},
		{"tiny surface", func(c *Config) { c.Surface.Height = 200 }},
		{"bad background", func(c *Config) { c.Surface.Background = "#xyz" }},
		{"bad shadow", func(c *Config) { c.Shadow.Color = "black" }},
		{"zero step", func(c *Config) { *c = c.WithStepInterval(0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viz.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[graph]
nodes = 14
spread = true

[palette]
shortest_path = "#00ff00"

[search]
step_interval = "40ms"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 14, cfg.Graph.Nodes)
	assert.True(t, cfg.Graph.Spread)
	assert.Equal(t, 28.0, cfg.Graph.Radius, "untouched keys keep their defaults")
	assert.Equal(t, "#00ff00", cfg.Palette.ShortestPath)
	assert.Equal(t, "#FF3D44", cfg.Palette.Target)
	assert.Equal(t, 40*time.Millisecond, cfg.StepInterval())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[search]\nstep_interval = \"soon\"\n"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("[drag]\nfactor = 2.0\n"), 0o644))
	_, err = Load(invalid)
	assert.ErrorIs(t, err, ErrInvalid)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	cfg := Default()
	cfg.Graph.Nodes = 7
	cfg = cfg.WithStepInterval(90 * time.Millisecond)

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
