package source

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-sed/internal/testutil"
	"github.com/cwbudde/algo-sed/sed/filter"
	"github.com/cwbudde/algo-sed/sed/params"
)

func TestStaticReturnsCopies(t *testing.T) {
	s := &Static{
		Wave:     []float64{4000, 5000, 6000},
		Spec:     []float64{1, 2, 3},
		MFrac:    0.6,
		LineWave: []float64{4862.71},
		LineLum:  []float64{1e-3},
	}
	wave, spec, mfrac, err := s.GalaxySpectrum(params.Set{})
	require.NoError(t, err)
	assert.Equal(t, 0.6, mfrac)
	spec[0] = 100
	wave[0] = 100
	assert.Equal(t, 1.0, s.Spec[0])
	assert.Equal(t, 4000.0, s.Wave[0])

	_, lum, err := s.GalaxyLines(params.Set{})
	require.NoError(t, err)
	lum[0] = 5
	assert.Equal(t, 1e-3, s.LineLum[0])
}

func TestStaticErrors(t *testing.T) {
	boom := errors.New("isochrones unavailable")
	s := &Static{Err: boom}
	_, _, _, err := s.GalaxySpectrum(nil)
	require.ErrorIs(t, err, boom)
	_, _, err = s.GalaxyLines(nil)
	require.ErrorIs(t, err, boom)

	s = &Static{Wave: []float64{1, 2}, Spec: []float64{1}}
	_, _, _, err = s.GalaxySpectrum(nil)
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestDirectResamplesAndProjects(t *testing.T) {
	wave := testutil.Linspace(3000, 9000, 6001)
	d := &Direct{Wave: wave, Spec: testutil.Constant(len(wave), 1e-8), MFrac: 0.5}

	fw := testutil.Linspace(5000, 6000, 1001)
	ft := testutil.Constant(len(fw), 1)
	ft[0], ft[len(ft)-1] = 0, 0
	box, err := filter.New("box", fw, ft)
	require.NoError(t, err)

	spec, phot, mfrac, err := d.Spectrum(nil, []float64{2000, 4000.5, 10000}, []*filter.Filter{box})
	require.NoError(t, err)
	assert.Equal(t, 0.5, mfrac)
	testutil.RequireSliceNearlyEqual(t, spec, []float64{1e-8, 1e-8, 1e-8}, 1e-20)
	require.Len(t, phot, 1)
	assert.InDelta(t, 1e-8, phot[0], 1e-8*1e-6)

	spec, phot, _, err = d.Spectrum(nil, nil, nil)
	require.NoError(t, err)
	assert.Len(t, spec, len(wave))
	assert.Nil(t, phot)
}
