package trace

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrEmptyData       = errors.New("trace: data is empty")
	ErrInvalidDelta    = errors.New("trace: sample interval must be positive and finite")
	ErrChannelMismatch = errors.New("trace: mismatching channel data")
	ErrNoTraces        = errors.New("trace: no traces")
)

// Trace is a single uniformly sampled receiver function together with the
// ray-geometry metadata computed upstream.
type Trace struct {
	Network string
	Station string
	Channel string

	// Data holds the amplitude samples.
	Data []float64
	// Delta is the sample interval in seconds.
	Delta float64

	// StartTime is the absolute time of Data[0].
	StartTime time.Time
	// Onset is the absolute time of the primary P arrival.
	Onset time.Time

	// Slowness is the ray parameter at the station in s/deg.
	Slowness float64
	// Inclination is the ray inclination at the station in degrees.
	Inclination float64
}

// ID returns the NET.STA.CHA identifier of the trace.
func (t *Trace) ID() string {
	return t.Network + "." + t.Station + "." + t.Channel
}

// Len returns the number of samples.
func (t *Trace) Len() int {
	return len(t.Data)
}

// Validate checks that the trace can be sampled in time.
func (t *Trace) Validate() error {
	if len(t.Data) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyData, t.ID())
	}
	if !(t.Delta > 0) || math.IsInf(t.Delta, 0) {
		return fmt.Errorf("%w: %s has delta %v", ErrInvalidDelta, t.ID(), t.Delta)
	}
	return nil
}

// Times returns the sample times in seconds relative to StartTime.
func (t *Trace) Times() []float64 {
	out := make([]float64, len(t.Data))
	for i := range out {
		out[i] = float64(i) * t.Delta
	}
	return out
}

// LeadTime returns Onset - StartTime in seconds.
func (t *Trace) LeadTime() float64 {
	return t.Onset.Sub(t.StartTime).Seconds()
}

// OnsetTimes returns the sample times shifted so that the onset is at zero.
func (t *Trace) OnsetTimes() []float64 {
	times := t.Times()
	lead := t.LeadTime()
	for i := range times {
		times[i] -= lead
	}
	return times
}
