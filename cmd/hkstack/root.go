package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-rf/internal/logging"
	"github.com/cwbudde/algo-rf/internal/store"
	"github.com/cwbudde/algo-rf/internal/tracefile"
	"github.com/cwbudde/algo-rf/rf/hk"
	"github.com/cwbudde/algo-rf/rf/phaseweight"
	"github.com/cwbudde/algo-rf/rf/trace"
	"github.com/cwbudde/algo-rf/stats/surface"
)

type options struct {
	configFile string
	logLevel   string

	channel     string
	vp          float64
	hMin, hMax  float64
	hN          int
	kMin, kMax  float64
	kN          int
	rootOrder   float64
	noPpSs      bool
	workers     int
	weights     []float64
	phaseWeight bool
	normalize   bool

	out string
	db  string
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "hkstack [flags] TRACEFILE",
		Short: "Estimate crustal thickness and Vp/Vs by H-k stacking of receiver functions",
		Args:  cobra.ExactArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindViper(cmd, o.configFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, flush, err := logging.New(o.logLevel)
			if err != nil {
				return err
			}
			defer flush()
			return runStack(cmd.Context(), o, args[0], stdout, logger)
		},
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.configFile, "config", "", "YAML config file (default ./hkstack.yaml, also HKSTACK_CONFIG)")
	pf.StringVar(&o.logLevel, "log-level", "info", "log level: debug, info, warn, or error")
	pf.StringVar(&o.db, "db", "", "SQLite file to archive runs in")

	grid := hk.DefaultGrid()
	f := cmd.Flags()
	f.StringVar(&o.channel, "channel", "", "channel to stack (default: first channel in the file)")
	f.Float64Var(&o.vp, "vp", 0, "crustal P velocity in km/s; 0 infers it from inclination and slowness")
	f.Float64Var(&o.hMin, "h-min", grid.H[0], "smallest crustal thickness in km")
	f.Float64Var(&o.hMax, "h-max", grid.H[len(grid.H)-1], "largest crustal thickness in km")
	f.IntVar(&o.hN, "h-n", len(grid.H), "number of thickness grid points")
	f.Float64Var(&o.kMin, "k-min", grid.K[0], "smallest Vp/Vs ratio")
	f.Float64Var(&o.kMax, "k-max", grid.K[len(grid.K)-1], "largest Vp/Vs ratio")
	f.IntVar(&o.kN, "k-n", len(grid.K), "number of Vp/Vs grid points")
	f.Float64Var(&o.rootOrder, "root-order", 1, "nth-root stacking order")
	f.BoolVar(&o.noPpSs, "no-ppss", false, "skip the PpSs+PsPs phase")
	f.IntVar(&o.workers, "workers", 1, "number of traces sampled concurrently")
	f.Float64SliceVar(&o.weights, "weights", nil, "phase weights (default 0.5,0.5,0)")
	f.BoolVar(&o.phaseWeight, "phase-weight", false, "multiply traces by their phase coherence before stacking")
	f.BoolVar(&o.normalize, "normalize", false, "scale the weighted surface to a peak of 1")
	f.StringVar(&o.out, "out", "", "write the weighted surface as CSV (h,k,amplitude)")

	cmd.AddCommand(newRunsCommand(o, stdout))
	return cmd
}

func span(lo, hi float64, n int, name string) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("--%s-n must be at least 2, got %d", name, n)
	}
	if !(hi > lo) {
		return nil, fmt.Errorf("--%s-max (%v) must be larger than --%s-min (%v)", name, hi, name, lo)
	}
	return floats.Span(make([]float64, n), lo, hi), nil
}

func (o *options) stackOptions(logger logr.Logger) ([]hk.Option, error) {
	h, err := span(o.hMin, o.hMax, o.hN, "h")
	if err != nil {
		return nil, err
	}
	k, err := span(o.kMin, o.kMax, o.kN, "k")
	if err != nil {
		return nil, err
	}

	opts := []hk.Option{
		hk.WithGrid(hk.Grid{H: h, K: k}),
		hk.WithRootOrder(o.rootOrder),
		hk.WithWorkers(o.workers),
		hk.WithLogger(logger),
	}
	if o.vp != 0 {
		opts = append(opts, hk.WithVelocity(o.vp))
	}
	if o.noPpSs {
		opts = append(opts, hk.WithoutPpSs())
	}
	return opts, nil
}

// layerWeights returns the configured weights, or the defaults truncated to
// the number of layers.
func (o *options) layerWeights(layers int) []float64 {
	if len(o.weights) > 0 {
		return o.weights
	}
	w := hk.DefaultWeights()
	if layers < len(w) {
		w = w[:layers]
	}
	return w
}

func selectTraces(all trace.Stream, channel string) (trace.Stream, error) {
	if channel == "" {
		channel = all.Channels()[0]
	}
	selected := all.Select(channel)
	if len(selected) == 0 {
		return nil, fmt.Errorf("no traces for channel %q (available: %s)", channel, strings.Join(all.Channels(), ", "))
	}
	return selected, nil
}

func runStack(ctx context.Context, o *options, path string, stdout io.Writer, logger logr.Logger) error {
	all, err := tracefile.ReadFile(path)
	if err != nil {
		return err
	}
	traces, err := selectTraces(all, o.channel)
	if err != nil {
		return err
	}

	if o.phaseWeight {
		weighted, _, err := phaseweight.WeightStream(traces)
		if err != nil {
			return fmt.Errorf("phase weighting: %w", err)
		}
		traces = weighted
	}

	opts, err := o.stackOptions(logger)
	if err != nil {
		return err
	}

	start := time.Now()
	stack, err := hk.Compute(traces, opts...)
	if err != nil {
		return err
	}
	weights := o.layerWeights(len(stack.Layers))
	result, err := stack.Weighted(weights...)
	if err != nil {
		return err
	}
	if o.normalize {
		result = surface.Normalize(result)
	}
	logger.V(1).Info("stack finished", "traces", stack.Traces, "elapsed", time.Since(start).String())

	h, k := gridAxes(stack)
	stats := surface.Calculate(result)
	printSummary(stdout, stack, weights, h, k, stats)

	if o.out != "" {
		if err := writeCSV(o.out, h, k, result); err != nil {
			return err
		}
		logger.Info("wrote surface", "path", o.out)
	}

	if o.db != "" {
		id, err := archive(ctx, o.db, stack, weights, h, k, result)
		if err != nil {
			return err
		}
		logger.Info("archived run", "db", o.db, "id", id)
	}
	return nil
}

func gridAxes(s *hk.Stack) (h, k []float64) {
	return mat.Col(nil, 0, s.HGrid), mat.Row(nil, 0, s.KGrid)
}

func printSummary(w io.Writer, s *hk.Stack, weights, h, k []float64, st surface.Stats) {
	phases := make([]string, len(s.Phases))
	for i, p := range s.Phases {
		phases[i] = p.String()
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "channel\t%s\n", s.Channel)
	fmt.Fprintf(tw, "traces\t%d\n", s.Traces)
	consistency := ""
	if !s.VelocityConsistent {
		consistency = ", inconsistent"
	}
	fmt.Fprintf(tw, "vp\t%.3f km/s (%s%s)\n", s.Vp, s.VelocityMode, consistency)
	fmt.Fprintf(tw, "phases\t%s\n", strings.Join(phases, ", "))
	fmt.Fprintf(tw, "weights\t%v\n", weights)
	fmt.Fprintf(tw, "root order\t%g\n", s.RootOrder)
	fmt.Fprintf(tw, "grid\t%d x %d (H %g-%g km, k %g-%g)\n", len(h), len(k), h[0], h[len(h)-1], k[0], k[len(k)-1])
	fmt.Fprintf(tw, "valid cells\t%d of %d\n", st.Valid, st.Rows*st.Cols)
	if st.Valid > 0 {
		fmt.Fprintf(tw, "peak\tH=%.1f km  k=%.3f  amplitude=%.4g\n", h[st.MaxRow], k[st.MaxCol], st.Max)
		fmt.Fprintf(tw, "mean\t%.4g (std %.4g)\n", st.Mean, st.StdDev)
	} else {
		fmt.Fprintf(tw, "peak\tnone\n")
	}
	_ = tw.Flush()
}

func writeCSV(path string, h, k []float64, m *mat.Dense) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"h", "k", "amplitude"}); err != nil {
		return err
	}
	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for i, hv := range h {
		for j, kv := range k {
			if err := cw.Write([]string{format(hv), format(kv), format(m.At(i, j))}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func archive(ctx context.Context, path string, s *hk.Stack, weights, h, k []float64, m *mat.Dense) (int64, error) {
	db, err := store.Open(ctx, path)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	phases := make([]string, len(s.Phases))
	for i, p := range s.Phases {
		phases[i] = p.String()
	}
	return db.SaveRun(ctx, store.Run{
		Channel:            s.Channel,
		Traces:             s.Traces,
		Vp:                 s.Vp,
		VelocityMode:       s.VelocityMode.String(),
		VelocityConsistent: s.VelocityConsistent,
		RootOrder:          s.RootOrder,
		Phases:             phases,
		Weights:            weights,
		H:                  h,
		K:                  k,
		Surface:            m,
	})
}

func newRunsCommand(o *options, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List the runs archived with --db",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if o.db == "" {
				return errors.New("--db is required")
			}
			db, err := store.Open(cmd.Context(), o.db)
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := db.Runs(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tCHANNEL\tTRACES\tVP\tROOT\tPEAK H\tPEAK K\tAMPLITUDE")
			for _, r := range runs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.3f\t%g\t%.1f\t%.3f\t%.4g\n",
					r.ID, r.CreatedAt.Format(time.RFC3339), r.Channel, r.Traces, r.Vp, r.RootOrder,
					r.PeakH, r.PeakK, r.PeakAmplitude)
			}
			return tw.Flush()
		},
	}
}
