// Package testutil provides deterministic synthetic receiver functions and
// tolerance assertions shared by the package tests.
package testutil

import (
	"math"
	"math/rand"
	"time"

	"github.com/cwbudde/algo-rf/rf/core"
	"github.com/cwbudde/algo-rf/rf/trace"
)

// Epoch is the start time of every synthetic trace.
var Epoch = time.Date(2020, 2, 19, 0, 0, 0, 0, time.UTC)

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// AddGaussian adds a Gaussian pulse of the given amplitude and width sigma
// (seconds) centered at time center to samples spaced delta seconds apart,
// the first sample being at time t0.
func AddGaussian(dst []float64, t0, delta, center, sigma, amplitude float64) {
	for i := range dst {
		d := t0 + float64(i)*delta - center
		dst[i] += amplitude * math.Exp(-d*d/(2*sigma*sigma))
	}
}

// Arrival is a pulse at a time relative to the P onset.
type Arrival struct {
	Time      float64
	Amplitude float64
}

// ReceiverFunction describes a synthetic trace.
type ReceiverFunction struct {
	Channel string
	// Lead is the time from the first sample to the P onset in seconds.
	Lead float64
	// Duration is the trace length in seconds.
	Duration float64
	Delta    float64
	// Sigma is the pulse width in seconds.
	Sigma float64

	// RayParameter in s/km and Vp in km/s set slowness and inclination
	// consistently.
	RayParameter float64
	Vp           float64

	Arrivals []Arrival
	Noise    []float64
}

// Build renders the synthetic trace.
func (rf ReceiverFunction) Build() *trace.Trace {
	n := int(math.Round(rf.Duration/rf.Delta)) + 1
	data := make([]float64, n)
	for _, a := range rf.Arrivals {
		AddGaussian(data, -rf.Lead, rf.Delta, a.Time, rf.Sigma, a.Amplitude)
	}
	for i := 0; i < len(rf.Noise) && i < n; i++ {
		data[i] += rf.Noise[i]
	}

	channel := rf.Channel
	if channel == "" {
		channel = "HHR"
	}

	return &trace.Trace{
		Network:     "XX",
		Station:     "SYN",
		Channel:     channel,
		Data:        data,
		Delta:       rf.Delta,
		StartTime:   Epoch,
		Onset:       Epoch.Add(time.Duration(rf.Lead * float64(time.Second))),
		Slowness:    rf.RayParameter * core.KMPerDeg,
		Inclination: math.Asin(rf.RayParameter*rf.Vp) * 180 / math.Pi,
	}
}
