package gauss

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/cwbudde/algo-sed/internal/testutil"
)

func TestLnMVNMatchesDistmv(t *testing.T) {
	mean := []float64{1, -2, 0.5}
	cov := mat.NewSymDense(3, []float64{
		2.0, 0.3, 0.1,
		0.3, 1.0, 0.2,
		0.1, 0.2, 0.5,
	})
	normal, ok := distmv.NewNormal(mean, cov, nil)
	require.True(t, ok)

	for _, x := range [][]float64{
		{1, -2, 0.5},
		{0, 0, 0},
		{3, -1, 2},
	} {
		got, err := LnMVN(x, mean, cov)
		require.NoError(t, err)
		assert.InDelta(t, normal.LogProb(x), got, 1e-10)
	}
}

func TestLnMVNAtMeanIsNormalization(t *testing.T) {
	// At x = mean only the determinant term survives.
	cov := mat.NewDiagDense(2, []float64{4, 9})
	got, err := LnMVN([]float64{5, 5}, []float64{5, 5}, cov)
	require.NoError(t, err)
	want := -0.5 * (2*math.Log(2*math.Pi) + math.Log(36))
	assert.InDelta(t, want, got, 1e-12)
}

func TestLnMVNDimensionMismatch(t *testing.T) {
	_, err := LnMVN([]float64{1}, []float64{1, 2}, mat.NewDiagDense(2, []float64{1, 1}))
	assert.ErrorIs(t, err, ErrDimension)

	_, err = LnMVN(nil, nil, mat.NewDiagDense(1, []float64{1}))
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestSumOfGaussiansArea(t *testing.T) {
	x := testutil.Linspace(-50, 50, 20001)
	y, err := SumOfGaussians(x, []float64{-5, 10}, []float64{2, 3}, []float64{1.5, 2})
	require.NoError(t, err)

	area := 0.0
	for i := 1; i < len(x); i++ {
		area += 0.5 * (y[i] + y[i-1]) * (x[i] - x[i-1])
	}
	assert.InDelta(t, 5.0, area, 1e-8)
}

func TestSumOfGaussiansPeak(t *testing.T) {
	y, err := SumOfGaussians([]float64{0}, []float64{0}, []float64{1}, []float64{1})
	require.NoError(t, err)
	assert.InDelta(t, 1/math.Sqrt(2*math.Pi), y[0], 1e-15)

	_, err = SumOfGaussians([]float64{0}, []float64{0, 1}, []float64{1}, []float64{1})
	assert.ErrorIs(t, err, ErrDimension)
}
