package interp

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrLengthMismatch = errors.New("interp: x and y must have the same length")
	ErrEmpty          = errors.New("interp: no samples")
	ErrNotIncreasing  = errors.New("interp: x must be strictly increasing")
)

// Linear is a piecewise-linear interpolator that returns NaN outside the
// sampled range. The sample slices are referenced, not copied.
type Linear struct {
	x []float64
	y []float64
}

// NewLinear creates an interpolator through the points (x[i], y[i]).
func NewLinear(x, y []float64) (*Linear, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(x), len(y))
	}
	if len(x) == 0 {
		return nil, ErrEmpty
	}
	for i := 1; i < len(x); i++ {
		if !(x[i] > x[i-1]) {
			return nil, fmt.Errorf("%w: x[%d]=%v, x[%d]=%v", ErrNotIncreasing, i-1, x[i-1], i, x[i])
		}
	}
	return &Linear{x: x, y: y}, nil
}

// Bounds returns the first and last abscissa.
func (l *Linear) Bounds() (lo, hi float64) {
	return l.x[0], l.x[len(l.x)-1]
}

// Eval returns the interpolated value at q, or NaN when q is NaN or lies
// outside the sampled range.
func (l *Linear) Eval(q float64) float64 {
	n := len(l.x)
	if math.IsNaN(q) || q < l.x[0] || q > l.x[n-1] {
		return math.NaN()
	}
	if n == 1 {
		return l.y[0]
	}

	// First index with x[i] >= q; the segment is [i-1, i].
	i := sort.SearchFloat64s(l.x, q)
	if i == 0 {
		return l.y[0]
	}
	if l.x[i] == q {
		return l.y[i]
	}

	x0, x1 := l.x[i-1], l.x[i]
	y0, y1 := l.y[i-1], l.y[i]
	slope := (y1 - y0) / (x1 - x0)
	return slope*(q-x0) + y0
}

// EvalBlock writes Eval(query[i]) into dst[i].
// Slices must have equal length. Panics if lengths differ.
func (l *Linear) EvalBlock(dst, query []float64) {
	if len(dst) != len(query) {
		panic("interp: slice length mismatch")
	}
	for i, q := range query {
		dst[i] = l.Eval(q)
	}
}
