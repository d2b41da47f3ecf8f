package hk

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	defaultHMin, defaultHMax = 20.0, 70.0
	defaultHCount            = 251
	defaultKMin, defaultKMax = 1.4, 2.0
	defaultKCount            = 301
)

// Grid is the set of (H, k) candidates. H varies along rows, k along columns.
type Grid struct {
	H []float64
	K []float64
}

// DefaultGrid returns 251 thicknesses over [20, 70] km and 301 Vp/Vs ratios
// over [1.4, 2.0].
func DefaultGrid() Grid {
	return Grid{H: DefaultHRange(), K: DefaultKRange()}
}

// DefaultHRange returns 251 evenly spaced thicknesses over [20, 70] km.
func DefaultHRange() []float64 {
	return floats.Span(make([]float64, defaultHCount), defaultHMin, defaultHMax)
}

// DefaultKRange returns 301 evenly spaced Vp/Vs ratios over [1.4, 2.0].
func DefaultKRange() []float64 {
	return floats.Span(make([]float64, defaultKCount), defaultKMin, defaultKMax)
}

// Dims returns the grid shape (len(H), len(K)).
func (g Grid) Dims() (rows, cols int) {
	return len(g.H), len(g.K)
}

// Mesh returns the k and H coordinate grids, both shaped (len(H), len(K)).
// Panics if either range is empty.
func (g Grid) Mesh() (kGrid, hGrid *mat.Dense) {
	rows, cols := g.Dims()
	kData := make([]float64, rows*cols)
	hData := make([]float64, rows*cols)
	for i, h := range g.H {
		row := i * cols
		copy(kData[row:row+cols], g.K)
		for j := 0; j < cols; j++ {
			hData[row+j] = h
		}
	}
	return mat.NewDense(rows, cols, kData), mat.NewDense(rows, cols, hData)
}

// denseData returns the row-major elements of m without copying when m is
// not a strided view.
func denseData(m *mat.Dense) []float64 {
	raw := m.RawMatrix()
	if raw.Stride == raw.Cols {
		return raw.Data[:raw.Rows*raw.Cols]
	}
	out := make([]float64, 0, raw.Rows*raw.Cols)
	for i := 0; i < raw.Rows; i++ {
		out = append(out, raw.Data[i*raw.Stride:i*raw.Stride+raw.Cols]...)
	}
	return out
}
