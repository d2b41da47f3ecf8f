package hk

import "github.com/go-logr/logr"

// Config holds the settings of one [Compute] call.
type Config struct {
	// Vp is the crustal P velocity in km/s, used only when ExplicitVp is
	// set. Otherwise Vp is inferred from the trace metadata.
	Vp         float64
	ExplicitVp bool

	H []float64
	K []float64

	RootOrder   float64
	IncludePpSs bool

	// Workers bounds how many traces are processed concurrently.
	Workers int

	Logger logr.Logger
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the settings used when no options are given:
// inferred Vp, the default H and k ranges, root order 1, all three phases.
func DefaultConfig() Config {
	return Config{
		H:           DefaultHRange(),
		K:           DefaultKRange(),
		RootOrder:   1,
		IncludePpSs: true,
		Workers:     1,
		Logger:      logr.Discard(),
	}
}

// ApplyOptions applies opts on top of [DefaultConfig].
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithVelocity sets an explicit crustal P velocity in km/s. It must match the
// shallowest layer of the velocity model used to compute the inclinations.
func WithVelocity(vp float64) Option {
	return func(cfg *Config) {
		cfg.Vp = vp
		cfg.ExplicitVp = true
	}
}

// WithHRange sets the candidate crustal thicknesses in km.
func WithHRange(h []float64) Option {
	return func(cfg *Config) {
		cfg.H = h
	}
}

// WithKRange sets the candidate Vp/Vs ratios.
func WithKRange(k []float64) Option {
	return func(cfg *Config) {
		cfg.K = k
	}
}

// WithGrid sets both ranges from g.
func WithGrid(g Grid) Option {
	return func(cfg *Config) {
		cfg.H = g.H
		cfg.K = g.K
	}
}

// WithRootOrder sets the nth-root stacking order. 1 disables it.
func WithRootOrder(n float64) Option {
	return func(cfg *Config) {
		cfg.RootOrder = n
	}
}

// WithoutPpSs drops the PpSs+PsPs layer from the stack.
func WithoutPpSs() Option {
	return func(cfg *Config) {
		cfg.IncludePpSs = false
	}
}

// WithWorkers processes up to n traces concurrently. The result does not
// depend on n.
func WithWorkers(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.Workers = n
		}
	}
}

// WithLogger sets the logger used for stacking diagnostics.
func WithLogger(logger logr.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = logger
	}
}
