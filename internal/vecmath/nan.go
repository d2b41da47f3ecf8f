package vecmath

import "math"

// NaNAccumulateBlock adds every non-NaN src[i] to sum[i] and increments
// count[i]. NaN samples are skipped.
// Slices must have equal length. Panics if lengths differ.
func NaNAccumulateBlock(sum []float64, count []int, src []float64) {
	if len(sum) != len(src) || len(count) != len(src) {
		panic("vecmath: slice length mismatch")
	}
	for i, v := range src {
		if math.IsNaN(v) {
			continue
		}
		sum[i] += v
		count[i]++
	}
}

// NaNMeanBlock writes sum[i]/count[i] into dst, or NaN where count[i] is zero.
// Slices must have equal length. Panics if lengths differ.
func NaNMeanBlock(dst, sum []float64, count []int) {
	if len(dst) != len(sum) || len(count) != len(sum) {
		panic("vecmath: slice length mismatch")
	}
	for i, s := range sum {
		if count[i] == 0 {
			dst[i] = math.NaN()
			continue
		}
		dst[i] = s / float64(count[i])
	}
}
