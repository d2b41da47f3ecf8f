// Package vecmath provides block kernels over float64 slices used by the
// stacking code: NaN-aware accumulation and mean.
//
// All kernels panic on slice length mismatch, matching the convention of
// the public vector-math library the rest of the module uses.
package vecmath
