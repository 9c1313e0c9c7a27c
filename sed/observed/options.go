package observed

// Config holds per-call reconstruction settings.
type Config struct {
	// Resolution resamples the rest-frame table onto a uniform grid with this
	// step in nm. Zero keeps the native delta grid.
	Resolution float64
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the native-grid configuration.
func DefaultConfig() Config {
	return Config{}
}

// WithResolution resamples created spectra onto a uniform wavelength grid
// with the given step in nm. Non-positive values keep the native grid.
func WithResolution(nm float64) Option {
	return func(cfg *Config) {
		if nm > 0 {
			cfg.Resolution = nm
		} else {
			cfg.Resolution = 0
		}
	}
}

// ApplyOptions applies opts on top of base.
func ApplyOptions(base Config, opts ...Option) Config {
	cfg := base
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
