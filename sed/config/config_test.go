package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-sed/sed/cosmo"
)

func TestDefaults(t *testing.T) {
	t.Setenv("SPS_HOME", "")
	t.Setenv("SED_SPS_HOME", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "identity", cfg.Calibration)
	assert.Equal(t, 5.0, cfg.NSigma)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, cosmo.WMAP9, cfg.Cosmo())

	_, err = cfg.LineTablePath()
	require.ErrorIs(t, err, ErrNoDataPath)

	assert.Equal(t, cfg, Default())
}

func TestLoadYAMLAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sed.yaml")
	yaml := `calibration: chebyshev_fit
nsigma: 4
log_level: debug
cosmology:
  h0: 70
  om0: 0.3
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("SPS_HOME", "/opt/fsps")
	t.Setenv("SED_NSIGMA", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "chebyshev_fit", cfg.Calibration)
	assert.Equal(t, 3.0, cfg.NSigma)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 70.0, cfg.Cosmology.H0)
	assert.Equal(t, 0.3, cfg.Cosmology.Om0)
	assert.Equal(t, cosmo.WMAP9.Tcmb0, cfg.Cosmology.Tcmb0)

	p, err := cfg.LineTablePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/opt/fsps", "data", "emlines_info.dat"), p)

	cfg.LineTable = "/data/lines.dat.zst"
	p, err = cfg.LineTablePath()
	require.NoError(t, err)
	assert.Equal(t, "/data/lines.dat.zst", p)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("DEBUG").GetLevel())
	assert.Equal(t, logrus.WarnLevel, NewLogger("warn").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("chatty").GetLevel())
}
