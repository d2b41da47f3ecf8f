// Package interp provides 1-D interpolation over sampled time series.
//
// [Linear] evaluates a piecewise-linear function through (x, y) samples with
// strictly increasing x. Queries outside [x[0], x[n-1]] return NaN instead of
// extrapolating, which lets callers scan parameter grids whose predicted
// times can fall outside a trace's window:
//
//	li, err := interp.NewLinear(times, data)
//	li.EvalBlock(dst, query)  // NaN where query is out of range
package interp
