package hk

import "math"

// Phase identifies one layer of an H-k stack.
type Phase int

const (
	PhasePs Phase = iota
	PhasePpPs
	PhasePpSsPsPs
)

func (p Phase) String() string {
	switch p {
	case PhasePs:
		return "Ps"
	case PhasePpPs:
		return "PpPs"
	case PhasePpSsPsPs:
		return "PpSs+PsPs"
	default:
		return "unknown"
	}
}

// phasesFor returns the layer order of a stack.
func phasesFor(includePpSs bool) []Phase {
	if includePpSs {
		return []Phase{PhasePs, PhasePpPs, PhasePpSsPsPs}
	}
	return []Phase{PhasePs, PhasePpPs}
}

// TravelTimes returns the arrival times in seconds after the direct P of
// Ps, PpPs and PpSs+PsPs for a layer of thickness h (km) and Vp/Vs ratio k
// over a half space, given the crustal P velocity vp (km/s) and the ray
// parameter p (s/km). Unphysical combinations yield NaN.
func TravelTimes(h, k, vp, p float64) (ps, ppps, ppss float64) {
	p2vp2 := p * p * vp * vp
	return phaseTimes(h/vp, k*k, p2vp2, math.Sqrt(1-p2vp2))
}

// phaseTimes evaluates the travel-time model from precomputed grid terms.
// sqrtP is sqrt(1 - p²Vp²), shared by all grid points of one trace.
func phaseTimes(hOnVp, k2, p2vp2, sqrtP float64) (t1, t2, t3 float64) {
	term1 := hOnVp * math.Sqrt(k2-p2vp2)
	term2 := hOnVp * sqrtP
	return term1 - term2, term1 + term2, 2 * term1
}
