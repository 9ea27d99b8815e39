// Package gesture synthesizes mouse input for driving a scene without a
// pointing device. Drags follow a smooth, slightly wandering path so they
// exercise the easing the way a hand would.
package gesture

import (
	"errors"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/TFMV/dijkstraviz/graph"
	"github.com/TFMV/dijkstraviz/scene"
)

var (
	// ErrMissed is returned when the drag does not start on a circle.
	ErrMissed = errors.New("gesture: no circle under the start point")

	// ErrBusy is returned when the press is dropped because another drag
	// is still ticking.
	ErrBusy = errors.New("gesture: another drag is still in progress")

	// ErrLocked is returned when the press is dropped because the scene is
	// locked.
	ErrLocked = errors.New("gesture: scene is locked")

	// ErrNotSettled is returned when the dragged circle keeps moving after
	// the tick budget is spent.
	ErrNotSettled = errors.New("gesture: drag did not settle")
)

// maxSettleTicks bounds the ticks spent waiting for a release to settle.
const maxSettleTicks = 1000

// Path is a pointer trajectory from From to To.
type Path struct {
	From, To graph.Point
	Steps    int     // number of pointer moves; at least 1
	Wobble   float64 // maximum sideways deviation in pixels
	Seed     int64
}

// Points returns Steps positions along the path, excluding From and ending
// exactly at To. Progress eases in and out; the sideways wobble comes from
// simplex noise and fades to zero at both ends.
func (p Path) Points() []graph.Point {
	steps := max(p.Steps, 1)
	noise := opensimplex.New(p.Seed)

	dx := p.To.X - p.From.X
	dy := p.To.Y - p.From.Y
	length := math.Hypot(dx, dy)
	var nx, ny float64
	if length > 0 {
		nx, ny = -dy/length, dx/length
	}

	points := make([]graph.Point, 0, steps)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		s := t * t * (3 - 2*t)
		n := math.Max(-1, math.Min(1, noise.Eval2(t*3, float64(p.Seed%1000))))
		offset := n * p.Wobble * math.Sin(math.Pi*t)

		points = append(points, graph.Point{
			X: p.From.X + dx*s + nx*offset,
			Y: p.From.Y + dy*s + ny*offset,
		})
	}
	points[len(points)-1] = p.To
	return points
}

// Replay drags the circle under p.From along the path: a press, one move per
// point with ticksPerMove scene ticks after each, a release at p.To, then
// ticks until the circle settles. It returns the number of ticks spent.
func Replay(sc *scene.Scene, p Path, ticksPerMove int) (int, error) {
	switch {
	case sc.Dragged() != nil:
		return 0, ErrBusy
	case sc.Locked():
		return 0, ErrLocked
	}

	sc.MouseDown(p.From.X, p.From.Y)
	if sc.State() != scene.Dragging {
		return 0, ErrMissed
	}

	ticks := 0
	for _, pt := range p.Points() {
		sc.MouseMove(pt.X, pt.Y)
		for i := 0; i < ticksPerMove; i++ {
			sc.Tick()
			ticks++
		}
	}
	sc.MouseUp(p.To.X, p.To.Y)

	for i := 0; sc.State() != scene.Idle; i++ {
		if i >= maxSettleTicks {
			return ticks, ErrNotSettled
		}
		sc.Tick()
		ticks++
	}
	return ticks, nil
}
