package model

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-sed/sed/params"
)

// PredictAll runs models[i].Predict(sets[i], obs) concurrently. Every model
// must be a distinct instance. The first error cancels the remaining work
// that has not started and is returned.
func PredictAll(ctx context.Context, models []*Model, sets []params.Set, obs *Observation) ([]*Prediction, error) {
	if len(models) != len(sets) {
		return nil, fmt.Errorf("%w: %d models for %d parameter sets", ErrDimension, len(models), len(sets))
	}
	seen := make(map[*Model]struct{}, len(models))
	for _, m := range models {
		if m == nil {
			return nil, ErrNilModel
		}
		if _, dup := seen[m]; dup {
			return nil, ErrSharedModel
		}
		seen[m] = struct{}{}
	}

	out := make([]*Prediction, len(models))
	g, ctx := errgroup.WithContext(ctx)
	for i := range models {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pred, err := models[i].Predict(sets[i], obs)
			if err != nil {
				return fmt.Errorf("model %d: %w", i, err)
			}
			out[i] = pred
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
