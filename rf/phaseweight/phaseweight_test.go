package phaseweight

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-rf/internal/testutil"
	"github.com/cwbudde/algo-rf/rf/trace"
)

func sineWithNoise(n int, seed int64) []float64 {
	out := testutil.DeterministicNoise(seed, 0.2, n)
	for i := range out {
		out[i] += math.Sin(2 * math.Pi * float64(i) / 17)
	}
	return out
}

func TestWeightsIdenticalSignals(t *testing.T) {
	s := sineWithNoise(100, 1)
	w, err := Weights([][]float64{s, s, s})
	if err != nil {
		t.Fatalf("Weights: %v", err)
	}
	if len(w) != len(s) {
		t.Fatalf("len = %d, want %d", len(w), len(s))
	}
	for i, v := range w {
		if math.Abs(v-1) > 1e-9 {
			t.Fatalf("w[%d] = %v, want 1", i, v)
		}
	}
}

func TestWeightsOppositeSignals(t *testing.T) {
	s := sineWithNoise(64, 2)
	neg := make([]float64, len(s))
	for i, v := range s {
		neg[i] = -v
	}

	w, err := Weights([][]float64{s, neg})
	if err != nil {
		t.Fatalf("Weights: %v", err)
	}
	for i, v := range w {
		if v > 1e-9 {
			t.Fatalf("w[%d] = %v, want ~0 for opposite phases", i, v)
		}
	}
}

func TestWeightsAverageOverSignals(t *testing.T) {
	s := sineWithNoise(80, 4)
	neg := make([]float64, len(s))
	for i, v := range s {
		neg[i] = -v
	}

	// Two aligned phasors and one opposite: |(2 - 1) / 3| = 1/3.
	w, err := Weights([][]float64{s, s, neg})
	if err != nil {
		t.Fatalf("Weights: %v", err)
	}
	for i, v := range w {
		if math.Abs(v-1.0/3) > 1e-9 {
			t.Fatalf("w[%d] = %v, want 1/3", i, v)
		}
	}
}

func mean(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

func TestWeightsSuppressIncoherentSections(t *testing.T) {
	const (
		n = 30
		l = 100
	)
	rng := rand.New(rand.NewSource(20200219))

	signals := make([][]float64, n)
	for i := range signals {
		sig := make([]float64, l)
		for j := range sig {
			phase := rng.Float64()*2*math.Pi - math.Pi
			if j >= l/4 && j < l/2 {
				phase = -math.Pi + 2*math.Pi*float64(j-l/4)/float64(l/4-1)
			}
			amp := 2 * float64(j) / float64(l/2-1)
			if j >= l/2 {
				amp = 2 - 2*float64(j-l/2)/float64(l-l/2-1)
			}
			sig[j] = amp * math.Cos(phase)
		}
		signals[i] = sig
	}

	w, err := Weights(signals)
	if err != nil {
		t.Fatalf("Weights: %v", err)
	}
	for i, v := range w {
		if v < 0 || v > 1+1e-12 {
			t.Fatalf("w[%d] = %v outside [0, 1]", i, v)
		}
	}

	coherent := mean(w[l/4+2 : l/2-2])
	incoherent := mean(w[l/2+5 : 3*l/4])
	if coherent < 0.8 {
		t.Fatalf("coherent section mean weight = %v, want > 0.8", coherent)
	}
	if incoherent > 0.5 {
		t.Fatalf("incoherent section mean weight = %v, want < 0.5", incoherent)
	}
}

func TestWeightsErrors(t *testing.T) {
	if _, err := Weights(nil); !errors.Is(err, ErrNoSignals) {
		t.Fatalf("expected ErrNoSignals, got %v", err)
	}
	if _, err := Weights([][]float64{{}}); !errors.Is(err, ErrEmptySignal) {
		t.Fatalf("expected ErrEmptySignal, got %v", err)
	}
	if _, err := Weights([][]float64{{1, 2}, {1}}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestApply(t *testing.T) {
	dst := make([]float64, 3)
	if err := Apply(dst, []float64{2, 4, 6}, []float64{0.5, 0, 1}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, dst, []float64{1, 0, 6}, 1e-15)

	if err := Apply(dst, []float64{1}, []float64{1}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestWeightStream(t *testing.T) {
	s := sineWithNoise(50, 3)
	stream := trace.Stream{
		{Channel: "HHR", Data: s, Delta: 0.1},
		{Channel: "HHR", Data: append([]float64(nil), s...), Delta: 0.1},
	}

	out, w, err := WeightStream(stream)
	if err != nil {
		t.Fatalf("WeightStream: %v", err)
	}
	if len(out) != 2 || len(w) != 50 {
		t.Fatalf("got %d traces and %d weights", len(out), len(w))
	}
	if &out[0].Data[0] == &stream[0].Data[0] {
		t.Fatal("weighted data must not alias the input")
	}
	testutil.RequireSliceNearlyEqual(t, out[0].Data, s, 1e-9)
	if out[1].Channel != "HHR" || out[1].Delta != 0.1 {
		t.Fatal("metadata not preserved")
	}
}
