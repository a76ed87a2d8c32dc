// Package config loads runtime settings for the prediction pipeline from a
// YAML file and the environment, and builds the shared logger.
package config

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/cwbudde/algo-sed/sed/cosmo"
)

// ErrNoDataPath is returned when neither line_table nor sps_home is set.
var ErrNoDataPath = errors.New("config: no reference data path (set line_table or SPS_HOME)")

// Config holds the pipeline settings.
type Config struct {
	Calibration string          `mapstructure:"calibration"`
	NSigma      float64         `mapstructure:"nsigma"`
	LineTable   string          `mapstructure:"line_table"`
	SPSHome     string          `mapstructure:"sps_home"`
	LogLevel    string          `mapstructure:"log_level"`
	Cosmology   CosmologyConfig `mapstructure:"cosmology"`
}

// CosmologyConfig mirrors cosmo.Cosmology.
type CosmologyConfig struct {
	H0    float64 `mapstructure:"h0"`
	Om0   float64 `mapstructure:"om0"`
	Tcmb0 float64 `mapstructure:"tcmb0"`
	Neff  float64 `mapstructure:"neff"`
}

// Cosmo returns the configured cosmology.
func (c *Config) Cosmo() cosmo.Cosmology {
	return cosmo.Cosmology{
		H0:    c.Cosmology.H0,
		Om0:   c.Cosmology.Om0,
		Tcmb0: c.Cosmology.Tcmb0,
		Neff:  c.Cosmology.Neff,
	}
}

// LineTablePath returns line_table, or <sps_home>/data/emlines_info.dat.
func (c *Config) LineTablePath() (string, error) {
	if c.LineTable != "" {
		return c.LineTable, nil
	}
	if c.SPSHome == "" {
		return "", ErrNoDataPath
	}
	return filepath.Join(c.SPSHome, "data", "emlines_info.dat"), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("calibration", "identity")
	v.SetDefault("nsigma", 5.0)
	v.SetDefault("line_table", "")
	v.SetDefault("sps_home", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("cosmology.h0", cosmo.WMAP9.H0)
	v.SetDefault("cosmology.om0", cosmo.WMAP9.Om0)
	v.SetDefault("cosmology.tcmb0", cosmo.WMAP9.Tcmb0)
	v.SetDefault("cosmology.neff", cosmo.WMAP9.Neff)
}

// Default returns the configuration with no file and no environment applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads the YAML file at path on top of the defaults; an empty path
// skips the file. Environment variables prefixed with SED_ override any key
// (SED_COSMOLOGY_H0 for cosmology.h0), and SPS_HOME sets sps_home.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("sps_home", "SED_SPS_HOME", "SPS_HOME"); err != nil {
		return nil, fmt.Errorf("config: bind SPS_HOME: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &cfg, nil
}

// NewLogger returns a text logger at level (debug, info, warn, error);
// unknown levels fall back to info.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// Discard returns a logger that writes nowhere.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
