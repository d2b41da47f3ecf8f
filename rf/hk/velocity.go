package hk

import (
	"fmt"
	"math"

	"github.com/go-logr/logr"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-rf/rf/core"
	"github.com/cwbudde/algo-rf/rf/trace"
)

// Tolerances for the consistency check of inferred velocities.
const (
	VelocityRTol = 1e-3
	VelocityATol = 1e-4
)

// VelocityMode tells where the P velocity of a stack came from.
type VelocityMode int

const (
	// VelocityInferred means Vp was derived from slowness and inclination.
	VelocityInferred VelocityMode = iota
	// VelocityExplicit means Vp was supplied by the caller.
	VelocityExplicit
)

func (m VelocityMode) String() string {
	switch m {
	case VelocityInferred:
		return "inferred"
	case VelocityExplicit:
		return "explicit"
	default:
		return "unknown"
	}
}

// RayParameter returns the ray parameter of tr in s/km.
func RayParameter(tr *trace.Trace) float64 {
	return tr.Slowness / core.KMPerDeg
}

// InferVelocity returns the P velocity consistent with the slowness and
// inclination of tr: sin(i)/p.
func InferVelocity(tr *trace.Trace) float64 {
	return math.Sin(core.DegToRad(tr.Inclination)) / RayParameter(tr)
}

// velocityModel is the velocity decision for one stack, made once before the
// per-trace loop.
type velocityModel struct {
	mode       VelocityMode
	vp         float64
	consistent bool
	// rayParams[i] is the ray parameter of trace i in s/km.
	rayParams []float64
}

func resolveVelocity(traces []*trace.Trace, cfg Config) (velocityModel, error) {
	if cfg.ExplicitVp {
		return explicitVelocity(traces, cfg.Vp)
	}
	return inferredVelocity(traces, cfg.Logger)
}

func explicitVelocity(traces []*trace.Trace, vp float64) (velocityModel, error) {
	if !(vp > 0) || math.IsInf(vp, 0) {
		return velocityModel{}, fmt.Errorf("%w: %v", ErrInvalidVelocity, vp)
	}

	rp := make([]float64, len(traces))
	for i, tr := range traces {
		rp[i] = math.Sin(core.DegToRad(tr.Inclination)) / vp
	}

	return velocityModel{mode: VelocityExplicit, vp: vp, consistent: true, rayParams: rp}, nil
}

func inferredVelocity(traces []*trace.Trace, logger logr.Logger) (velocityModel, error) {
	values := make([]float64, len(traces))
	rp := make([]float64, len(traces))
	for i, tr := range traces {
		rp[i] = RayParameter(tr)
		values[i] = InferVelocity(tr)
	}

	vp := floats.Sum(values) / float64(len(values))
	if !(vp > 0) || math.IsInf(vp, 0) {
		return velocityModel{}, fmt.Errorf("%w: inferred mean %v", ErrInvalidVelocity, vp)
	}

	consistent := core.AllClosePairwise(values, VelocityRTol, VelocityATol)
	if !consistent {
		logger.Error(ErrInconsistentVelocity, "H-k stacking results may be unreliable",
			"traces", len(values),
			"vpMin", floats.Min(values),
			"vpMax", floats.Max(values),
			"vpMean", vp)
	}

	return velocityModel{mode: VelocityInferred, vp: vp, consistent: consistent, rayParams: rp}, nil
}
