// Package hk computes H-k stacks of receiver functions.
//
// For every candidate crustal thickness H and Vp/Vs ratio k on a grid, the
// arrival times of the converted phases Ps, PpPs and PpSs+PsPs are predicted
// from the ray parameter and the crustal P velocity:
//
//	term1 = H/Vp * sqrt(k² - p²Vp²)
//	term2 = H/Vp * sqrt(1 - p²Vp²)
//	t(Ps) = term1 - term2,  t(PpPs) = term1 + term2,  t(PpSs+PsPs) = 2*term1
//
// Each trace is sampled at those times by linear interpolation and the
// samples are averaged across traces per phase, giving one layer per phase.
// Grid points where a square root goes negative or a predicted time falls
// outside a trace's window are NaN for that trace; the average ignores NaN,
// so a cell is NaN in the result only if it is NaN for every trace.
//
// # Nth-root stacking
//
// With a root order n > 1 every sample is replaced by sign(x)*|x|^(1/n)
// before averaging, and the averaged layer is raised back with
// sign(x)*|x|^n. Incoherent noise is damped while coherent arrivals keep
// their amplitude, which sharpens the peak of the stacked surface. The
// PpSs+PsPs layer is negated after the root because that phase arrives with
// inverted polarity.
//
// # Velocity
//
// With [WithVelocity] the ray parameter of each trace is sin(i)/Vp. Without
// it, Vp is inferred per trace as sin(i)/p with p = slowness/[core.KMPerDeg],
// checked for consistency across traces and averaged; the ray parameter then
// comes straight from the slowness.
//
// # Usage
//
//	stack, err := hk.Compute(rfs, hk.WithRootOrder(2))
//	if err != nil {
//		return err
//	}
//	surface, err := stack.Weighted(0.5, 0.3, 0.2)
package hk
