// Package core holds the physical constants and scalar helpers shared by the
// receiver-function packages.
package core

import "math"

// KMPerDeg is the length in kilometers of one degree of great-circle arc on
// the reference Earth (radius 6371 km).
const KMPerDeg = 6371.0 * math.Pi / 180.0

const defaultEpsilon = 1e-12

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// IsClose reports whether |a-b| <= atol + rtol*|b|.
// NaN is never close to anything.
func IsClose(a, b, rtol, atol float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	if a == b {
		return true
	}

	return math.Abs(a-b) <= atol+rtol*math.Abs(b)
}

// AllClosePairwise reports whether every ordered pair of values satisfies
// [IsClose]. Empty and single-element slices are trivially consistent.
func AllClosePairwise(values []float64, rtol, atol float64) bool {
	for i := range values {
		for j := range values {
			if i == j {
				continue
			}
			if !IsClose(values[i], values[j], rtol, atol) {
				return false
			}
		}
	}

	return true
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// SignedNthRoot returns sign(x) * |x|^(1/n).
// NaN stays NaN and zero stays zero. n == 1 returns x unchanged.
func SignedNthRoot(x, n float64) float64 {
	if n == 1 || x == 0 || math.IsNaN(x) {
		return x
	}

	r := math.Pow(math.Abs(x), 1/n)
	if x < 0 {
		return -r
	}

	return r
}

// SignedNthPower returns sign(x) * |x|^n, the inverse of [SignedNthRoot].
func SignedNthPower(x, n float64) float64 {
	if n == 1 || x == 0 || math.IsNaN(x) {
		return x
	}

	r := math.Pow(math.Abs(x), n)
	if x < 0 {
		return -r
	}

	return r
}

// SignedNthRootBlock applies [SignedNthRoot] to every element of buf in place.
func SignedNthRootBlock(buf []float64, n float64) {
	if n == 1 {
		return
	}
	for i, v := range buf {
		buf[i] = SignedNthRoot(v, n)
	}
}

// SignedNthPowerBlock applies [SignedNthPower] to every element of buf in place.
func SignedNthPowerBlock(buf []float64, n float64) {
	if n == 1 {
		return
	}
	for i, v := range buf {
		buf[i] = SignedNthPower(v, n)
	}
}
