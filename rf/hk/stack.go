package hk

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-rf/internal/vecmath"
	"github.com/cwbudde/algo-rf/rf/core"
	"github.com/cwbudde/algo-rf/rf/interp"
	"github.com/cwbudde/algo-rf/rf/trace"
)

// Stack is the per-phase H-k amplitude surface of one channel.
type Stack struct {
	// KGrid and HGrid hold the coordinates of every cell.
	KGrid *mat.Dense
	HGrid *mat.Dense

	// Layers[i] is the stacked amplitude of Phases[i].
	Layers []*mat.Dense
	Phases []Phase

	Channel string
	Traces  int

	Vp                 float64
	VelocityMode       VelocityMode
	VelocityConsistent bool
	RootOrder          float64
}

// Dims returns the grid shape.
func (s *Stack) Dims() (rows, cols int) {
	return s.KGrid.Dims()
}

// Layer returns the layer of phase p, or nil if the stack does not hold it.
func (s *Stack) Layer(p Phase) *mat.Dense {
	for i, ph := range s.Phases {
		if ph == p {
			return s.Layers[i]
		}
	}
	return nil
}

// Weighted combines the layers with the given weights, one per layer.
// Without weights [DefaultWeights] is used.
func (s *Stack) Weighted(weights ...float64) (*mat.Dense, error) {
	if len(weights) == 0 {
		weights = DefaultWeights()
	}
	return Weighted(s.Layers, weights)
}

// Compute stacks traces of one channel over the (H, k) grid.
//
// All traces must share a channel. Inconsistent inferred velocities are
// logged at error level and do not fail the call.
func Compute(traces []*trace.Trace, opts ...Option) (*Stack, error) {
	cfg := ApplyOptions(opts...)

	if len(traces) == 0 {
		return nil, ErrNoTraces
	}
	channel, err := trace.Stream(traces).CheckChannel()
	if err != nil {
		return nil, fmt.Errorf("hk: %w", err)
	}
	for _, tr := range traces {
		if err := tr.Validate(); err != nil {
			return nil, fmt.Errorf("hk: %w", err)
		}
	}
	if !(cfg.RootOrder > 0) || math.IsInf(cfg.RootOrder, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRootOrder, cfg.RootOrder)
	}
	if len(cfg.H) == 0 || len(cfg.K) == 0 {
		return nil, fmt.Errorf("%w: len(H)=%d, len(K)=%d", ErrEmptyRange, len(cfg.H), len(cfg.K))
	}

	vel, err := resolveVelocity(traces, cfg)
	if err != nil {
		return nil, err
	}

	grid := Grid{H: cfg.H, K: cfg.K}
	kGrid, hGrid := grid.Mesh()
	rows, cols := grid.Dims()

	cfg.Logger.V(1).Info("computing H-k stack",
		"channel", channel,
		"traces", len(traces),
		"vp", vel.vp,
		"velocityMode", vel.mode.String(),
		"rows", rows,
		"cols", cols,
		"rootOrder", cfg.RootOrder)

	s := newSampler(denseData(hGrid), denseData(kGrid), vel.vp, cfg.RootOrder, phasesFor(cfg.IncludePpSs))
	acc := newAccumulator(len(s.phases), rows*cols)
	if err := s.run(traces, vel.rayParams, cfg.Workers, acc); err != nil {
		return nil, err
	}

	layers := make([]*mat.Dense, len(s.phases))
	for i := range layers {
		data := make([]float64, rows*cols)
		vecmath.NaNMeanBlock(data, acc.sum[i], acc.count[i])
		core.SignedNthPowerBlock(data, cfg.RootOrder)
		layers[i] = mat.NewDense(rows, cols, data)
	}

	return &Stack{
		KGrid:              kGrid,
		HGrid:              hGrid,
		Layers:             layers,
		Phases:             s.phases,
		Channel:            channel,
		Traces:             len(traces),
		Vp:                 vel.vp,
		VelocityMode:       vel.mode,
		VelocityConsistent: vel.consistent,
		RootOrder:          cfg.RootOrder,
	}, nil
}

// sampler holds the grid terms shared by every trace of a stack.
type sampler struct {
	hOnVp     []float64
	k2        []float64
	vp        float64
	rootOrder float64
	phases    []Phase
}

func newSampler(h, k []float64, vp, rootOrder float64, phases []Phase) *sampler {
	hOnVp := make([]float64, len(h))
	k2 := make([]float64, len(k))
	for i := range h {
		hOnVp[i] = h[i] / vp
		k2[i] = k[i] * k[i]
	}
	return &sampler{hOnVp: hOnVp, k2: k2, vp: vp, rootOrder: rootOrder, phases: phases}
}

func (s *sampler) newLayers() [][]float64 {
	layers := make([][]float64, len(s.phases))
	for i := range layers {
		layers[i] = make([]float64, len(s.hOnVp))
	}
	return layers
}

// sample writes the root-transformed amplitudes of tr at the predicted phase
// times into dst, one slice per phase.
func (s *sampler) sample(dst [][]float64, tr *trace.Trace, p float64) error {
	li, err := interp.NewLinear(tr.OnsetTimes(), tr.Data)
	if err != nil {
		return fmt.Errorf("hk: %s: %w", tr.ID(), err)
	}

	p2vp2 := p * p * s.vp * s.vp
	sqrtP := math.Sqrt(1 - p2vp2)
	withPpSs := len(dst) > 2

	for i, hv := range s.hOnVp {
		t1, t2, t3 := phaseTimes(hv, s.k2[i], p2vp2, sqrtP)
		dst[0][i] = core.SignedNthRoot(li.Eval(t1), s.rootOrder)
		dst[1][i] = core.SignedNthRoot(li.Eval(t2), s.rootOrder)
		if withPpSs {
			// PpSs+PsPs arrives with negative polarity.
			dst[2][i] = -core.SignedNthRoot(li.Eval(t3), s.rootOrder)
		}
	}
	return nil
}

// run samples every trace and accumulates the result in trace order.
// Traces are processed in batches of workers; each batch is accumulated
// sequentially after it completes so the sums do not depend on scheduling.
func (s *sampler) run(traces []*trace.Trace, rayParams []float64, workers int, acc *accumulator) error {
	if workers < 1 {
		workers = 1
	}
	if workers > len(traces) {
		workers = len(traces)
	}

	slots := make([][][]float64, workers)
	for i := range slots {
		slots[i] = s.newLayers()
	}

	if workers == 1 {
		for i, tr := range traces {
			if err := s.sample(slots[0], tr, rayParams[i]); err != nil {
				return err
			}
			acc.add(slots[0])
		}
		return nil
	}

	for start := 0; start < len(traces); start += workers {
		end := min(start+workers, len(traces))

		var g errgroup.Group
		for i := start; i < end; i++ {
			slot := slots[i-start]
			tr, p := traces[i], rayParams[i]
			g.Go(func() error {
				return s.sample(slot, tr, p)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for i := start; i < end; i++ {
			acc.add(slots[i-start])
		}
	}
	return nil
}

// accumulator keeps NaN-ignoring running sums per phase layer.
type accumulator struct {
	sum   [][]float64
	count [][]int
}

func newAccumulator(layers, cells int) *accumulator {
	acc := &accumulator{
		sum:   make([][]float64, layers),
		count: make([][]int, layers),
	}
	for i := 0; i < layers; i++ {
		acc.sum[i] = make([]float64, cells)
		acc.count[i] = make([]int, cells)
	}
	return acc
}

func (a *accumulator) add(layers [][]float64) {
	for i, layer := range layers {
		vecmath.NaNAccumulateBlock(a.sum[i], a.count[i], layer)
	}
}
