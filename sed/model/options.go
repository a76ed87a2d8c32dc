package model

import (
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-sed/sed/calib"
	"github.com/cwbudde/algo-sed/sed/config"
	"github.com/cwbudde/algo-sed/sed/cosmo"
	"github.com/cwbudde/algo-sed/sed/eline"
	"github.com/cwbudde/algo-sed/sed/smooth"
)

// SkyFunc returns an additive sky spectrum on the observation grid, or nil
// for no sky.
type SkyFunc func(obs *Observation) ([]float64, error)

// Config collects the collaborators of a Model.
type Config struct {
	Calibration calib.Strategy
	Smoother    smooth.Smoother
	Lines       *eline.Table
	Cosmology   cosmo.Cosmology
	NSigma      float64
	Logger      *logrus.Logger
	Sky         SkyFunc

	err error
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns identity calibration, Gaussian smoothing, WMAP9
// distances and a discarding logger.
func DefaultConfig() Config {
	return Config{
		Calibration: calib.Identity{},
		Smoother:    smooth.Gaussian{},
		Cosmology:   cosmo.WMAP9,
		NSigma:      eline.DefaultNSigma,
		Logger:      config.Discard(),
	}
}

// WithCalibration sets the calibration strategy.
func WithCalibration(s calib.Strategy) Option {
	return func(cfg *Config) {
		if s != nil {
			cfg.Calibration = s
		}
	}
}

// WithSmoother replaces the smoothing implementation.
func WithSmoother(s smooth.Smoother) Option {
	return func(cfg *Config) {
		if s != nil {
			cfg.Smoother = s
		}
	}
}

// WithLineTable sets the emission-line table used for selection by name.
func WithLineTable(t *eline.Table) Option {
	return func(cfg *Config) {
		cfg.Lines = t
	}
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(cfg *Config) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// WithSky sets the additive sky model of the direct-synthesis variant.
func WithSky(f SkyFunc) Option {
	return func(cfg *Config) {
		cfg.Sky = f
	}
}

// WithCosmology sets the cosmology used for luminosity distances.
func WithCosmology(c cosmo.Cosmology) Option {
	return func(cfg *Config) {
		if c.H0 > 0 {
			cfg.Cosmology = c
		}
	}
}

// WithNSigma sets the emission-line window half-width in line widths.
func WithNSigma(n float64) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.NSigma = n
		}
	}
}

// WithConfig applies loaded settings: calibration strategy by name, line
// window, cosmology, log level and, when a data path is configured, the line
// table from the shared registry.
func WithConfig(c *config.Config) Option {
	return func(cfg *Config) {
		if c == nil {
			return
		}
		if c.Calibration != "" {
			s, err := calib.Lookup(c.Calibration)
			if err != nil {
				cfg.err = err
				return
			}
			cfg.Calibration = s
		}
		WithNSigma(c.NSigma)(cfg)
		WithCosmology(c.Cosmo())(cfg)
		cfg.Logger = config.NewLogger(c.LogLevel)

		path, err := c.LineTablePath()
		if err != nil {
			return
		}
		t, err := eline.Shared().Load(path)
		if err != nil {
			cfg.err = err
			return
		}
		cfg.Lines = t
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	return applyOptions(DefaultConfig(), opts)
}

func applyOptions(cfg Config, opts []Option) Config {
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
