package graph

import (
	"fmt"

	"github.com/katalvlaran/lvlath/matrix"
)

// Absent marks a matrix cell with no edge. A zero-weight edge is stored as 0.
const Absent = -1.0

// Matrix is a square label × label cache of edge weights. It is derived from
// the edge set: structural changes rebuild it, position changes patch it.
type Matrix struct {
	size  int
	cells *matrix.Dense // nil when size is 0
}

func newMatrix(size int) *Matrix {
	m := &Matrix{size: size}
	if size == 0 {
		return m
	}
	d, err := matrix.NewDense(size, size)
	if err != nil {
		panic(fmt.Sprintf("graph: %d×%d matrix: %v", size, size, err))
	}
	m.cells = d
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			m.set(i, j, Absent)
		}
	}
	return m
}

// Size returns the number of rows.
func (m *Matrix) Size() int {
	return m.size
}

// At returns the raw cell value, Absent when there is no edge. It panics when
// i or j is not a label of the graph.
func (m *Matrix) At(i, j int) float64 {
	if m.cells == nil {
		panic(fmt.Sprintf("graph: matrix cell (%d, %d) of an empty graph", i, j))
	}
	v, err := m.cells.At(i, j)
	if err != nil {
		panic(fmt.Sprintf("graph: %v", err))
	}
	return v
}

// Weight returns the edge weight between i and j and whether an edge exists.
func (m *Matrix) Weight(i, j int) (float64, bool) {
	w := m.At(i, j)
	return w, w != Absent
}

// Symmetric reports whether M[i][j] == M[j][i] for every pair and the
// diagonal is Absent.
func (m *Matrix) Symmetric() bool {
	for i := 0; i < m.size; i++ {
		if m.At(i, i) != Absent {
			return false
		}
		for j := i + 1; j < m.size; j++ {
			if m.At(i, j) != m.At(j, i) {
				return false
			}
		}
	}
	return true
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	row := make([]float64, m.size)
	for j := range row {
		row[j] = m.At(i, j)
	}
	return row
}

// patch writes the weight of e in both directions. e.Weight must already be
// current.
func (m *Matrix) patch(e *Edge) {
	i, j := e.out.Label, e.in.Label
	m.set(i, j, e.Weight)
	m.set(j, i, e.Weight)
}

func (m *Matrix) set(i, j int, w float64) {
	if err := m.cells.Set(i, j, w); err != nil {
		panic(fmt.Sprintf("graph: %v", err))
	}
}
