package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-sed/sed/params"
	"github.com/cwbudde/algo-sed/sed/source"
)

func TestPredictAllScalesWithMass(t *testing.T) {
	wave := []float64{4000, 5000, 6000}
	const n = 8
	models := make([]*Model, n)
	sets := make([]params.Set, n)
	for i := range models {
		models[i] = newSpec(t, flatSource(wave))
		sets[i] = params.Set{"mass": float64(i + 1), "lumdist": 1e-5, "sigma_smooth": 0.0}
	}

	preds, err := PredictAll(context.Background(), models, sets, nil)
	require.NoError(t, err)
	require.Len(t, preds, n)
	for i, pred := range preds {
		want := float64(i+1) * tenParsecNorm
		for _, v := range pred.Spectrum {
			assert.InDelta(t, want, v, want*1e-12)
		}
		norm, err := models[i].FluxNorm()
		require.NoError(t, err)
		assert.InDelta(t, want, norm, want*1e-12)
	}
}

func TestPredictAllValidation(t *testing.T) {
	wave := []float64{4000, 5000, 6000}
	a := newSpec(t, flatSource(wave))
	b := newSpec(t, flatSource(wave))
	ctx := context.Background()

	_, err := PredictAll(ctx, []*Model{a, b}, []params.Set{{}}, nil)
	require.ErrorIs(t, err, ErrDimension)

	_, err = PredictAll(ctx, []*Model{a, a}, []params.Set{{}, {}}, nil)
	require.ErrorIs(t, err, ErrSharedModel)

	_, err = PredictAll(ctx, []*Model{a, nil}, []params.Set{{}, {}}, nil)
	require.ErrorIs(t, err, ErrNilModel)

	preds, err := PredictAll(ctx, nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, preds)
}

func TestPredictAllPropagatesErrors(t *testing.T) {
	wave := []float64{4000, 5000, 6000}
	boom := errors.New("isochrone missing")
	good := newSpec(t, flatSource(wave))
	bad := newSpec(t, &source.Static{Err: boom})

	_, err := PredictAll(context.Background(), []*Model{good, bad}, []params.Set{{}, {}}, nil)
	require.ErrorIs(t, err, boom)
	var mee *ModelEvaluationError
	require.ErrorAs(t, err, &mee)
}

func TestPredictAllCancelled(t *testing.T) {
	wave := []float64{4000, 5000, 6000}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := PredictAll(ctx, []*Model{newSpec(t, flatSource(wave))}, []params.Set{{}}, nil)
	require.ErrorIs(t, err, context.Canceled)
}
