package physics

import (
	"math"
	"sort"

	"github.com/TFMV/dijkstraviz/graph"
)

// Spread is a repulsion-only relaxation that pushes nodes apart until no two
// are closer than MinGap. It is the force-directed layout with the springs
// removed: edges carry distances here, so pulling connected nodes together
// would distort exactly what the user is meant to see.
type Spread struct {
	MinGap        float64 // desired minimum center distance
	Temperature   float64 // maximum displacement per step
	Cooling       float64 // temperature multiplier applied after each step
	MaxIterations int

	bounds     graph.Bounds
	positions  map[int]graph.Point
	labels     []int
	iterations int
	stable     bool
}

// NewSpread creates a spread layout keeping nodes at least minGap apart.
func NewSpread(minGap float64, maxIterations int) *Spread {
	return &Spread{
		MinGap:        minGap,
		Temperature:   minGap,
		Cooling:       0.95,
		MaxIterations: maxIterations,
		positions:     make(map[int]graph.Point),
	}
}

// Initialize captures node positions from g.
func (s *Spread) Initialize(g *graph.Graph, bounds graph.Bounds) {
	s.bounds = bounds
	s.positions = make(map[int]graph.Point, len(g.Nodes))
	s.labels = s.labels[:0]
	for _, n := range g.Nodes {
		s.positions[n.Label] = n.Position()
		s.labels = append(s.labels, n.Label)
	}
	sort.Ints(s.labels)
	s.iterations = 0
	s.stable = len(s.labels) < 2
}

// Step performs one relaxation pass. It returns true once no pair overlaps
// or the iteration budget is spent.
func (s *Spread) Step() bool {
	if s.stable || s.iterations >= s.MaxIterations {
		return true
	}

	forces := make(map[int]graph.Point, len(s.labels))
	overlaps := 0

	for i, a := range s.labels {
		pa := s.positions[a]
		for _, b := range s.labels[i+1:] {
			pb := s.positions[b]

			dx := pa.X - pb.X
			dy := pa.Y - pb.Y
			distance := math.Hypot(dx, dy)
			if distance >= s.MinGap {
				continue
			}
			overlaps++

			// Coincident nodes get pushed apart along a label-dependent axis
			// so the step stays deterministic.
			if distance < 1e-6 {
				angle := float64(a*31+b*17) * 0.618
				dx, dy, distance = math.Cos(angle), math.Sin(angle), 1
			}

			push := (s.MinGap - distance) / 2
			fa := forces[a]
			fb := forces[b]
			forces[a] = graph.Point{X: fa.X + dx/distance*push, Y: fa.Y + dy/distance*push}
			forces[b] = graph.Point{X: fb.X - dx/distance*push, Y: fb.Y - dy/distance*push}
		}
	}

	if overlaps == 0 {
		s.stable = true
		return true
	}

	for _, label := range s.labels {
		f := forces[label]
		magnitude := math.Hypot(f.X, f.Y)
		if magnitude == 0 {
			continue
		}

		// Limit displacement by temperature (simulated annealing).
		scale := math.Min(magnitude, s.Temperature) / magnitude
		p := s.positions[label]
		p.X = clamp(p.X+f.X*scale, s.bounds.X1, s.bounds.X2)
		p.Y = clamp(p.Y+f.Y*scale, s.bounds.Y1, s.bounds.Y2)
		s.positions[label] = p
	}

	s.Temperature = math.Max(s.Temperature*s.Cooling, 1)
	s.iterations++
	return false
}

// Apply moves the graph's nodes to the relaxed positions. Weights are kept
// consistent through graph.Move.
func (s *Spread) Apply(g *graph.Graph) {
	for _, label := range s.labels {
		p := s.positions[label]
		_ = g.Move(label, math.Round(p.X), math.Round(p.Y))
	}
}

// Run steps until stable or out of iterations and applies the result.
func (s *Spread) Run(g *graph.Graph, bounds graph.Bounds) int {
	s.Initialize(g, bounds)
	for !s.Step() {
	}
	s.Apply(g)
	return s.iterations
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
