package gesture

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/dijkstraviz/graph"
	"github.com/TFMV/dijkstraviz/ident"
	"github.com/TFMV/dijkstraviz/scene"
)

func TestPoints_EndsOnTarget(t *testing.T) {
	p := Path{From: graph.Point{X: 10, Y: 10}, To: graph.Point{X: 310, Y: 210}, Steps: 12, Wobble: 20, Seed: 7}

	pts := p.Points()

	require.Len(t, pts, 12)
	assert.Equal(t, p.To, pts[len(pts)-1])
	for _, pt := range pts {
		assert.False(t, math.IsNaN(pt.X) || math.IsNaN(pt.Y))
	}
}

func TestPoints_Deterministic(t *testing.T) {
	p := Path{From: graph.Point{}, To: graph.Point{X: 100}, Steps: 8, Wobble: 15, Seed: 3}

	assert.Equal(t, p.Points(), p.Points())
}

func TestPoints_WobbleStaysBounded(t *testing.T) {
	p := Path{From: graph.Point{}, To: graph.Point{X: 400}, Steps: 40, Wobble: 10, Seed: 99}

	for _, pt := range p.Points() {
		assert.LessOrEqual(t, math.Abs(pt.Y), 10.0+1e-9)
		assert.GreaterOrEqual(t, pt.X, -1e-9)
		assert.LessOrEqual(t, pt.X, 400+1e-9)
	}

	straight := Path{From: graph.Point{}, To: graph.Point{X: 400}, Steps: 5}
	for _, pt := range straight.Points() {
		assert.Zero(t, pt.Y)
	}
}

func TestPoints_ZeroLengthAndSteps(t *testing.T) {
	p := Path{From: graph.Point{X: 5, Y: 5}, To: graph.Point{X: 5, Y: 5}, Wobble: 30}

	pts := p.Points()

	require.Len(t, pts, 1)
	assert.Equal(t, p.To, pts[0])
}

func TestReplay_MovesCircle(t *testing.T) {
	ids := ident.New()
	c := scene.NewCircle(ids, 0, 100, 100, 28, color.Black, nil)
	sc := scene.New()
	sc.AddCircle(c)

	var stopped int
	sc.Subscribe(scene.DraggingStopped, func(scene.Event) { stopped++ })

	ticks, err := Replay(sc, Path{
		From:  graph.Point{X: 110, Y: 100},
		To:    graph.Point{X: 410, Y: 300},
		Steps: 10, Wobble: 12, Seed: 1,
	}, 2)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, ticks, 20)
	assert.Equal(t, scene.Idle, sc.State())
	assert.Equal(t, 400.0, c.X, "grab offset is preserved")
	assert.Equal(t, 300.0, c.Y)
	assert.Equal(t, 1, stopped)
}

func TestReplay_Missed(t *testing.T) {
	sc := scene.New()

	_, err := Replay(sc, Path{From: graph.Point{X: 1, Y: 1}, To: graph.Point{X: 2, Y: 2}}, 1)

	assert.ErrorIs(t, err, ErrMissed)
}

func TestReplay_DroppedPress(t *testing.T) {
	ids := ident.New()
	a := scene.NewCircle(ids, 0, 100, 100, 28, color.Black, nil)
	b := scene.NewCircle(ids, 1, 300, 100, 28, color.Black, nil)
	sc := scene.New()
	sc.AddCircle(a)
	sc.AddCircle(b)
	path := Path{From: graph.Point{X: 300, Y: 100}, To: graph.Point{X: 300, Y: 300}, Steps: 3}

	sc.MouseDown(100, 100)
	sc.MouseUp(100, 400)
	sc.Tick()
	require.Equal(t, scene.Settling, sc.State())

	_, err := Replay(sc, path, 1)
	assert.ErrorIs(t, err, ErrBusy)
	assert.NotErrorIs(t, err, ErrMissed)
	assert.Same(t, a, sc.Dragged())

	sc.Lock()
	_, err = Replay(sc, path, 1)
	assert.ErrorIs(t, err, ErrLocked)
	assert.Equal(t, 100.0, b.Y)

	sc.Unlock()
	_, err = Replay(sc, path, 1)
	require.NoError(t, err)
	assert.Equal(t, 300.0, b.Y)
}
