// Package physics provides the motion models used by the visualizer: the
// fixed-ratio easing that carries a dragged node toward the cursor, and a
// repulsion layout that spreads freshly generated nodes apart.
package physics

import (
	"math"

	"github.com/TFMV/dijkstraviz/graph"
)

// Easing moves a point a fixed fraction of the way to its target on every
// step. The fraction does not depend on elapsed time, so the motion feels the
// same regardless of frame jitter.
type Easing struct {
	Factor       float64 // fraction of the remaining gap closed per step
	SnapDistance float64 // per-axis distance under which a settling point snaps
}

// DefaultEasing returns the easing used for node dragging.
func DefaultEasing() Easing {
	return Easing{Factor: 0.6, SnapDistance: 3}
}

// Step advances pos one step toward target.
func (e Easing) Step(pos, target graph.Point) graph.Point {
	return graph.Point{
		X: pos.X + e.Factor*(target.X-pos.X),
		Y: pos.Y + e.Factor*(target.Y-pos.Y),
	}
}

// Near reports whether pos is within SnapDistance of target on both axes.
func (e Easing) Near(pos, target graph.Point) bool {
	return math.Abs(pos.X-target.X) < e.SnapDistance && math.Abs(pos.Y-target.Y) < e.SnapDistance
}

// StepsToSettle returns how many steps it takes for a point starting at
// distance d (on one axis) to come within SnapDistance.
func (e Easing) StepsToSettle(d float64) int {
	d = math.Abs(d)
	if d < e.SnapDistance {
		return 0
	}
	if e.Factor <= 0 || e.Factor >= 1 {
		return 1
	}
	steps := 0
	for d >= e.SnapDistance {
		d *= 1 - e.Factor
		steps++
	}
	return steps
}
