package calib

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-sed/internal/testutil"
	"github.com/cwbudde/algo-sed/sed/params"
)

func TestVanderMatchesCosineDefinition(t *testing.T) {
	x := testutil.Linspace(-1, 1, 9)
	v := Vander(x, 5)
	for i, xi := range x {
		theta := math.Acos(xi)
		for k := 0; k <= 5; k++ {
			assert.InDelta(t, math.Cos(float64(k)*theta), v.At(i, k), 1e-12, "x=%v k=%d", xi, k)
		}
	}
}

func TestEvalMatchesVander(t *testing.T) {
	x := testutil.Linspace(-1.2, 1.2, 13)
	c := []float64{0.3, -1.1, 0.5, 0.02}
	got := Eval(x, c)
	v := Vander(x, 3)
	for i := range x {
		want := 0.0
		for k, ck := range c {
			want += ck * v.At(i, k)
		}
		assert.InDelta(t, want, got[i], 1e-12)
	}
	assert.Equal(t, []float64{0, 0}, Eval([]float64{1, 2}, nil))
}

func TestWaveToX(t *testing.T) {
	wave := []float64{4000, 4500, 5000, 5500, 6000}

	x, err := WaveToX(wave, nil)
	require.NoError(t, err)
	testutil.RequireSliceNearlyEqual(t, x, []float64{-1, -0.5, 0, 0.5, 1}, 1e-12)

	x, err = WaveToX(wave, []bool{false, true, true, true, false})
	require.NoError(t, err)
	testutil.RequireSliceNearlyEqual(t, x, []float64{-2, -1, 0, 1, 2}, 1e-12)

	_, err = WaveToX(wave, make([]bool, 5))
	require.ErrorIs(t, err, ErrNoValidPixels)
	_, err = WaveToX(wave, make([]bool, 2))
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestFitChebyshevRecoversCoefficients(t *testing.T) {
	x := testutil.Linspace(-1, 1, 50)
	want := []float64{0.2, -0.4, 0.1}
	y := Eval(x, want)
	yvar := testutil.Constant(len(x), 0.01)

	c, err := FitChebyshev(x, y, yvar, 2, nil, false)
	require.NoError(t, err)
	testutil.RequireSliceNearlyEqual(t, c, want, 1e-9)

	c, err = FitChebyshev(x, Eval(x, []float64{0, 0.7, -0.3}), yvar, 2, nil, true)
	require.NoError(t, err)
	testutil.RequireSliceNearlyEqual(t, c, []float64{0.7, -0.3}, 1e-9)
}

func TestFitChebyshevRegularizationShrinks(t *testing.T) {
	x := testutil.Linspace(-1, 1, 30)
	y := Eval(x, []float64{0, 1})
	yvar := testutil.Constant(len(x), 1)

	free, err := FitChebyshev(x, y, yvar, 1, nil, false)
	require.NoError(t, err)
	damped, err := FitChebyshev(x, y, yvar, 1, []float64{100}, false)
	require.NoError(t, err)
	assert.Less(t, math.Abs(damped[1]), math.Abs(free[1]))

	_, err = FitChebyshev(x, y, yvar, 1, []float64{1, 2, 3}, false)
	require.ErrorIs(t, err, ErrRegularization)

	perCoeff, err := FitChebyshev(x, y, yvar, 1, []float64{0, 0}, false)
	require.NoError(t, err)
	testutil.RequireSliceNearlyEqual(t, perCoeff, free, 1e-12)
}

func spectrumInput(obs, model []float64) Input {
	n := len(model)
	return Input{
		Wavelength: testutil.Linspace(4000, 6000, n),
		Observed:   obs,
		Unc:        testutil.Constant(n, 1),
		Model:      model,
	}
}

func TestChebyshevFitOrderZeroIsMeanRatio(t *testing.T) {
	obs := []float64{1.1, 0.9, 1.3, 1.2, 1.0}
	model := testutil.Constant(len(obs), 1)
	res, err := ChebyshevFit{}.Calibrate(params.Set{"polyorder": 0}, spectrumInput(obs, model))
	require.NoError(t, err)

	mean := 0.0
	for _, o := range obs {
		mean += o
	}
	mean /= float64(len(obs))
	testutil.RequireSliceNearlyEqual(t, res.Vector, testutil.Constant(len(obs), mean), 1e-12)
	require.Len(t, res.Coeffs, 1)
}

func TestChebyshevFitRecoversSmoothResponse(t *testing.T) {
	n := 200
	in := spectrumInput(nil, testutil.PowerLaw(testutil.Linspace(4000, 6000, n), 2, 5000, -1))
	x, err := WaveToX(in.Wavelength, nil)
	require.NoError(t, err)
	response := Eval(x, []float64{1.05, 0.1, -0.03})
	in.Observed = make([]float64, n)
	in.Unc = make([]float64, n)
	for i := range in.Observed {
		in.Observed[i] = in.Model[i] * response[i]
		in.Unc[i] = 0.01 * in.Model[i]
	}

	res, err := ChebyshevFit{}.Calibrate(params.Set{"polyorder": 2}, in)
	require.NoError(t, err)
	testutil.RequireSliceNearlyEqual(t, res.Vector, response, 1e-9)
}

func TestChebyshevFitExcludesMarginalizedLines(t *testing.T) {
	obs := []float64{1, 1, 50, 1, 1}
	in := spectrumInput(obs, testutil.Constant(5, 1))
	in.LineMask = []bool{false, false, true, false, false}

	p := params.Set{"polyorder": 0, "marginalize_elines": true}
	res, err := ChebyshevFit{}.Calibrate(p, in)
	require.NoError(t, err)
	testutil.RequireSliceNearlyEqual(t, res.Vector, testutil.Constant(5, 1), 1e-12)

	p["marginalize_elines"] = false
	res, err = ChebyshevFit{}.Calibrate(p, in)
	require.NoError(t, err)
	assert.InDelta(t, 54.0/5, res.Vector[0], 1e-12)
}

func TestChebyshevFitWithoutSpectrumIsOnes(t *testing.T) {
	in := Input{Wavelength: testutil.Linspace(4000, 6000, 4), Model: testutil.Constant(4, 3)}
	for _, p := range []params.Set{{}, {"polyorder": 3}, {"polyorder": -1}} {
		res, err := ChebyshevFit{}.Calibrate(p, in)
		require.NoError(t, err)
		assert.Equal(t, testutil.Constant(4, 1), res.Vector)
	}
}

func TestNormalizedChebyshevFit(t *testing.T) {
	n := 100
	in := spectrumInput(nil, testutil.Constant(n, 2))
	x, err := WaveToX(in.Wavelength, nil)
	require.NoError(t, err)
	shape := Eval(x, []float64{0, 0.2})
	in.Observed = make([]float64, n)
	for i := range in.Observed {
		in.Observed[i] = 2 * 3 * (1 + shape[i])
	}

	res, err := NormalizedChebyshevFit{}.Calibrate(params.Set{"polyorder": 1, "spec_norm": 3.0}, in)
	require.NoError(t, err)
	testutil.RequireSliceNearlyEqual(t, res.Coeffs, []float64{0.2}, 1e-9)
	for i, v := range res.Vector {
		assert.InDelta(t, 3*(1+shape[i]), v, 1e-9)
	}

	res, err = NormalizedChebyshevFit{}.Calibrate(params.Set{"spec_norm": 3.0}, in)
	require.NoError(t, err)
	assert.Equal(t, testutil.Constant(n, 3), res.Vector)
}

func TestChebyshevCoeffs(t *testing.T) {
	wave := []float64{4000, 5000, 6000}
	in := Input{Wavelength: wave}

	res, err := ChebyshevCoeffs{}.Calibrate(params.Set{"spec_norm": 2.0}, in)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 2}, res.Vector)

	p := params.Set{"poly_coeffs": []float64{0.5}, "cal_type": "poly", "spec_norm": 2.0}
	res, err = ChebyshevCoeffs{}.Calibrate(p, in)
	require.NoError(t, err)
	testutil.RequireSliceNearlyEqual(t, res.Vector, []float64{1, 2, 3}, 1e-12)

	p = params.Set{"poly_coeffs": []float64{0.5}}
	res, err = ChebyshevCoeffs{}.Calibrate(p, in)
	require.NoError(t, err)
	testutil.RequireSliceNearlyEqual(t, res.Vector,
		[]float64{math.Exp(-0.5), 1, math.Exp(0.5)}, 1e-12)
}

func TestScalarAndIdentity(t *testing.T) {
	in := Input{Wavelength: []float64{1, 2}}
	res, err := Scalar{}.Calibrate(params.Set{"spec_norm": 4}, in)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 4}, res.Vector)

	res, err = Identity{}.Calibrate(params.Set{"spec_norm": 4}, in)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, res.Vector)
}

func TestCalibrationSizedFromModelWithoutGrid(t *testing.T) {
	in := Input{Model: []float64{5, 6, 7}}
	assert.Equal(t, 3, in.Len())
	assert.False(t, in.HasSpectrum())

	p := params.Set{"spec_norm": 2.0, "polyorder": 2}
	for _, s := range []Strategy{Scalar{}, NormalizedChebyshevFit{}, ChebyshevCoeffs{}} {
		res, err := s.Calibrate(p, in)
		require.NoError(t, err, s.Name())
		assert.Equal(t, []float64{2, 2, 2}, res.Vector, s.Name())
	}
	for _, s := range []Strategy{Identity{}, ChebyshevFit{}} {
		res, err := s.Calibrate(p, in)
		require.NoError(t, err, s.Name())
		assert.Equal(t, []float64{1, 1, 1}, res.Vector, s.Name())
	}
}

func TestEmptyObservedIsNoSpectrum(t *testing.T) {
	in := Input{
		Wavelength: []float64{4000, 5000, 6000},
		Model:      []float64{1, 1, 1},
		Observed:   []float64{},
		Unc:        []float64{},
	}
	assert.False(t, in.HasSpectrum())
	res, err := ChebyshevFit{}.Calibrate(params.Set{"polyorder": 1}, in)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1}, res.Vector)
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		s, err := Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
	}
	_, err := Lookup("spline")
	require.ErrorIs(t, err, ErrUnknownStrategy)
}
