package testutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance). NaN matches NaN.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if math.IsNaN(got[i]) && math.IsNaN(want[i]) {
			continue
		}
		diff := math.Abs(got[i] - want[i])
		if !(diff <= eps) {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireDenseEqual fails t unless a and b have the same shape and
// bit-identical elements (NaN matches NaN).
func RequireDenseEqual(t *testing.T, a, b mat.Matrix) {
	t.Helper()
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		t.Fatalf("shape mismatch: %dx%d vs %dx%d", ar, ac, br, bc)
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			x, y := a.At(i, j), b.At(i, j)
			if math.IsNaN(x) && math.IsNaN(y) {
				continue
			}
			if math.Float64bits(x) != math.Float64bits(y) {
				t.Fatalf("(%d,%d): %v != %v", i, j, x, y)
			}
		}
	}
}

// CountNaN returns the number of NaN elements of m.
func CountNaN(m mat.Matrix) int {
	r, c := m.Dims()
	n := 0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.IsNaN(m.At(i, j)) {
				n++
			}
		}
	}
	return n
}
