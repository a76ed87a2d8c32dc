package model

import (
	"errors"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-sed/internal/testutil"
	"github.com/cwbudde/algo-sed/sed/filter"
	"github.com/cwbudde/algo-sed/sed/params"
	"github.com/cwbudde/algo-sed/sed/source"
)

func newSed(t *testing.T, src DirectSource, opts ...Option) *Model {
	t.Helper()
	m, err := NewSedModel(src, opts...)
	require.NoError(t, err)
	return m
}

func rampSource() *source.Direct {
	return &source.Direct{
		Wave:  []float64{1, 2, 3, 4},
		Spec:  []float64{1, 2, 3, 4},
		MFrac: 0.5,
	}
}

func TestDirectSpecNorm(t *testing.T) {
	m := newSed(t, rampSource())
	assert.Equal(t, VariantSed, m.Variant())
	assert.Equal(t, "spec_norm", m.Calibration().Name())

	obs := &Observation{Wavelength: []float64{1, 2, 3, 4}}
	pred, err := m.Predict(params.Set{"spec_norm": 2.0}, obs)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4, 6, 8}, pred.Spectrum)
	assert.Equal(t, []float64{0}, pred.Photometry)
	assert.Equal(t, 0.5, pred.MFrac)

	st, err := m.State()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, st.SED)
	assert.Equal(t, []float64{2, 2, 2, 2}, st.Calibration)
}

func TestDirectNormalizationGuess(t *testing.T) {
	m := newSed(t, rampSource())
	obs := &Observation{Wavelength: []float64{1, 2, 3, 4}, NormalizationGuess: 3}
	pred, err := m.Predict(params.Set{}, obs)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 6, 9, 12}, pred.Spectrum)
}

func TestDirectFloorsNonPositiveFlux(t *testing.T) {
	src := rampSource()
	src.Spec = []float64{-1, 0, 2, 4}
	m := newSed(t, src)

	pred, err := m.Predict(params.Set{}, &Observation{Wavelength: []float64{1, 2, 3, 4}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5, 2, 4}, pred.Spectrum)
}

func TestDirectFloorWarning(t *testing.T) {
	logger, hook := test.NewNullLogger()
	src := rampSource()
	src.Spec = []float64{-1, 0, -2, 0}
	m := newSed(t, src, WithLogger(logger))

	pred, err := m.Predict(params.Set{}, &Observation{Wavelength: []float64{1, 2, 3, 4}})
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 0, -2, 0}, pred.Spectrum)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "spectrum flooring skipped", entry.Message)
	assert.Equal(t, m.ID(), entry.Data["model_id"])
	assert.Equal(t, "sed", entry.Data["variant"])
}

func TestDirectSky(t *testing.T) {
	sky := func(obs *Observation) ([]float64, error) {
		return testutil.Constant(len(obs.Wavelength), 1), nil
	}
	m := newSed(t, rampSource(), WithSky(sky))
	obs := &Observation{Wavelength: []float64{1, 2, 3, 4}}

	pred, err := m.Predict(params.Set{"spec_norm": 2.0}, obs)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 6, 8, 10}, pred.Spectrum)

	short := newSed(t, rampSource(), WithSky(func(*Observation) ([]float64, error) {
		return []float64{1}, nil
	}))
	_, err = short.Predict(params.Set{}, obs)
	require.ErrorIs(t, err, ErrDimension)

	boom := errors.New("sky unavailable")
	failing := newSed(t, rampSource(), WithSky(func(*Observation) ([]float64, error) {
		return nil, boom
	}))
	_, err = failing.Predict(params.Set{}, obs)
	require.ErrorIs(t, err, boom)
}

func TestDirectLogify(t *testing.T) {
	m := newSed(t, rampSource())
	obs := &Observation{Wavelength: []float64{1, 2, 3, 4}, LogifySpectrum: true}

	pred, err := m.Predict(params.Set{"spec_norm": 2.0}, obs)
	require.NoError(t, err)
	want := make([]float64, 4)
	for i, s := range []float64{1, 2, 3, 4} {
		want[i] = math.Log(s) + math.Log(2)
	}
	testutil.RequireSliceNearlyEqual(t, pred.Spectrum, want, 1e-12)
}

func TestDirectWithoutGrid(t *testing.T) {
	m := newSed(t, rampSource())
	pred, err := m.Predict(params.Set{"spec_norm": 2.0}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4, 6, 8}, pred.Spectrum)

	st, err := m.State()
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 2, 2}, st.Calibration)
	assert.Equal(t, []float64{1, 2, 3, 4}, st.SED)

	logged, err := m.Predict(params.Set{"spec_norm": 2.0}, &Observation{LogifySpectrum: true})
	require.NoError(t, err)
	assert.InDelta(t, math.Log(8), logged.Spectrum[3], 1e-12)
}

func TestDirectResamplesOntoObservation(t *testing.T) {
	m := newSed(t, rampSource())
	obs := &Observation{Wavelength: []float64{0, 1.5, 2.5, 5}}
	pred, err := m.Predict(params.Set{}, obs)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1.5, 2.5, 4}, pred.Spectrum)
}

func TestDirectPhotometry(t *testing.T) {
	wave := testutil.Linspace(3000, 9000, 6001)
	src := &source.Direct{Wave: wave, Spec: testutil.Constant(len(wave), 1)}
	filters := []*filter.Filter{boxFilter(t, 4000, 5000), boxFilter(t, 6000, 7000)}

	_, want, _, err := src.Spectrum(nil, nil, filters)
	require.NoError(t, err)

	m := newSed(t, src)
	pred, err := m.Predict(params.Set{}, &Observation{Filters: filters})
	require.NoError(t, err)
	assert.Equal(t, want, pred.Photometry)
	for _, v := range pred.Photometry {
		assert.InDelta(t, 1, v, 1e-3)
	}
}

func TestDirectSourceFailure(t *testing.T) {
	src := rampSource()
	src.Err = errors.New("grid not loaded")
	m := newSed(t, src)

	_, err := m.Predict(params.Set{}, nil)
	var mee *ModelEvaluationError
	require.ErrorAs(t, err, &mee)
	require.ErrorIs(t, err, src.Err)

	_, err = m.PredictSpectrum(nil)
	require.ErrorIs(t, err, ErrNotPredicted)
	_, err = m.FluxNorm()
	require.ErrorIs(t, err, ErrNotPredicted)
}
