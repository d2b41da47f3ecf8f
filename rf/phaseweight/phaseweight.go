// Package phaseweight measures how consistent the instantaneous phase of a
// set of aligned traces is, sample by sample.
//
// For each trace the analytic signal is formed with an FFT Hilbert
// transform and reduced to unit phasors exp(iφ). The weight of a sample is
// the magnitude of the mean phasor across traces: 1 where all traces share
// the same phase, near 0 where phases are random. Multiplying traces by the
// weights suppresses incoherent energy while keeping coherent arrivals.
package phaseweight

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-rf/rf/trace"
)

var (
	ErrNoSignals      = errors.New("phaseweight: no signals")
	ErrEmptySignal    = errors.New("phaseweight: signal is empty")
	ErrLengthMismatch = errors.New("phaseweight: signals must have the same length")
)

// Weights returns one weight in [0, 1] per sample for equally long signals.
func Weights(signals [][]float64) ([]float64, error) {
	if len(signals) == 0 {
		return nil, ErrNoSignals
	}
	n := len(signals[0])
	if n == 0 {
		return nil, ErrEmptySignal
	}
	for i, s := range signals[1:] {
		if len(s) != n {
			return nil, fmt.Errorf("%w: signal 0 has %d samples, signal %d has %d", ErrLengthMismatch, n, i+1, len(s))
		}
	}

	fftSize := nextPowerOf2(n)
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("phaseweight: failed to create FFT plan: %w", err)
	}

	timeBuf := make([]complex128, fftSize)
	freqBuf := make([]complex128, fftSize)
	cosSum := make([]float64, n)
	sinSum := make([]float64, n)

	for _, s := range signals {
		if err := analytic(plan, timeBuf, freqBuf, s); err != nil {
			return nil, err
		}
		for j := 0; j < n; j++ {
			phi := cmplx.Phase(timeBuf[j])
			cosSum[j] += math.Cos(phi)
			sinSum[j] += math.Sin(phi)
		}
	}

	inv := 1 / float64(len(signals))
	vecmath.ScaleBlockInPlace(cosSum, inv)
	vecmath.ScaleBlockInPlace(sinSum, inv)

	weights := make([]float64, n)
	vecmath.Magnitude(weights, cosSum, sinSum)
	return weights, nil
}

// analytic writes the analytic signal of s, zero padded to len(timeBuf),
// into timeBuf.
func analytic(plan *algofft.Plan[complex128], timeBuf, freqBuf []complex128, s []float64) error {
	for i := range timeBuf {
		timeBuf[i] = 0
	}
	for i, v := range s {
		timeBuf[i] = complex(v, 0)
	}

	if err := plan.Forward(freqBuf, timeBuf); err != nil {
		return fmt.Errorf("phaseweight: forward FFT failed: %w", err)
	}

	// Keep DC and Nyquist, double positive frequencies, drop negative ones.
	size := len(freqBuf)
	half := size / 2
	for k := 1; k < half; k++ {
		freqBuf[k] *= 2
	}
	for k := half + 1; k < size; k++ {
		freqBuf[k] = 0
	}

	if err := plan.Inverse(timeBuf, freqBuf); err != nil {
		return fmt.Errorf("phaseweight: inverse FFT failed: %w", err)
	}
	return nil
}

// Apply writes src[i] * weights[i] into dst.
func Apply(dst, src, weights []float64) error {
	if len(dst) != len(src) || len(src) != len(weights) {
		return fmt.Errorf("%w: dst %d, src %d, weights %d", ErrLengthMismatch, len(dst), len(src), len(weights))
	}
	vecmath.MulBlock(dst, src, weights)
	return nil
}

// WeightStream returns a copy of s whose trace data are multiplied by the
// phase weights of the whole stream. Metadata are shared with s.
func WeightStream(s trace.Stream) (trace.Stream, []float64, error) {
	weights, err := Weights(s.Data())
	if err != nil {
		return nil, nil, err
	}

	out := make(trace.Stream, len(s))
	for i, tr := range s {
		weighted := *tr
		weighted.Data = make([]float64, len(tr.Data))
		vecmath.MulBlock(weighted.Data, tr.Data, weights)
		out[i] = &weighted
	}
	return out, weights, nil
}

func nextPowerOf2(n int) int {
	p := 2
	for p < n {
		p <<= 1
	}
	return p
}
