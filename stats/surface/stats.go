// Package surface computes NaN-aware summary statistics of 2-D amplitude
// surfaces such as H-k stacks.
//
// NaN cells mark grid points with no data and are skipped by every
// statistic.
package surface

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Stats holds summary statistics of a surface.
type Stats struct {
	Rows, Cols int
	Valid      int // non-NaN cells
	NaN        int

	Mean   float64
	StdDev float64 // population standard deviation of valid cells

	Max            float64
	MaxRow, MaxCol int
	Min            float64
	MinRow, MinCol int
}

func emptyStats(rows, cols int) Stats {
	nan := math.NaN()
	return Stats{
		Rows:   rows,
		Cols:   cols,
		NaN:    rows * cols,
		Mean:   nan,
		StdDev: nan,
		Max:    nan,
		MaxRow: -1,
		MaxCol: -1,
		Min:    nan,
		MinRow: -1,
		MinCol: -1,
	}
}

// Calculate computes all statistics in a single pass, using Welford's
// algorithm for the variance. Ties for max and min keep the first cell in
// row-major order.
func Calculate(m mat.Matrix) Stats {
	rows, cols := m.Dims()
	s := emptyStats(rows, cols)

	var mean, m2 float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x := m.At(i, j)
			if math.IsNaN(x) {
				continue
			}

			s.Valid++
			delta := x - mean
			mean += delta / float64(s.Valid)
			m2 += delta * (x - mean)

			if s.Valid == 1 || x > s.Max {
				s.Max, s.MaxRow, s.MaxCol = x, i, j
			}
			if s.Valid == 1 || x < s.Min {
				s.Min, s.MinRow, s.MinCol = x, i, j
			}
		}
	}

	if s.Valid == 0 {
		return s
	}

	s.NaN = rows*cols - s.Valid
	s.Mean = mean
	s.StdDev = math.Sqrt(m2 / float64(s.Valid))
	return s
}

// Normalize returns a copy of m scaled so that its largest absolute valid
// value is 1. NaN cells stay NaN; an all-zero or all-NaN surface is returned
// unscaled.
func Normalize(m mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(m)
	rows, cols := out.Dims()

	peak := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := math.Abs(out.At(i, j)); v > peak {
				peak = v
			}
		}
	}
	if peak == 0 {
		return out
	}

	out.Scale(1/peak, out)
	return out
}
