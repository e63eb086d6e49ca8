package engine

// ============================================================================
// ENGINE OPTIONS — Functional options for Solve()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Recorder      Recorder
	MaxIterations int     // Newton fallback iteration cap
	Tolerance     float64 // numeric convergence threshold
	RewriteLimit  int     // simplify/expand fixed-point ceiling
	GraphLo       float64 // default sampling range when the request has none
	GraphHi       float64
	GraphSamples  int
}

// WithRecorder installs a step recorder. Without one the solver runs the
// same derivation but keeps no steps.
func WithRecorder(r Recorder) Option {
	return func(c *config) {
		c.Recorder = r
	}
}

// WithMaxIterations caps the Newton fallback per starting point.
func WithMaxIterations(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.MaxIterations = n
		}
	}
}

// WithTolerance sets the numeric convergence threshold.
func WithTolerance(t float64) Option {
	return func(c *config) {
		if t > 0 {
			c.Tolerance = t
		}
	}
}

// WithRewriteLimit caps rewrite passes in simplify and expand.
func WithRewriteLimit(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.RewriteLimit = n
		}
	}
}

// WithGraphRange sets the default sampling range used when a graph request
// carries no bounds of its own.
func WithGraphRange(lo, hi float64) Option {
	return func(c *config) {
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo != hi {
			c.GraphLo, c.GraphHi = lo, hi
		}
	}
}

// WithGraphSamples sets how many points a graph series carries.
func WithGraphSamples(n int) Option {
	return func(c *config) {
		if n >= 2 {
			c.GraphSamples = n
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Recorder:      nopRecorder{},
		MaxIterations: 100,
		Tolerance:     1e-9,
		RewriteLimit:  64,
		GraphLo:       -10,
		GraphHi:       10,
		GraphSamples:  200,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
