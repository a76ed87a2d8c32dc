package interp

import (
	"errors"
	"sort"
)

var (
	ErrLengthMismatch = errors.New("interp: xp and fp length mismatch")
	ErrEmpty          = errors.New("interp: empty sample grid")
)

// LinearAt interpolates the samples (xp, fp) at x. Values left of xp[0] return
// left and values right of xp[n-1] return right. xp must be increasing.
func LinearAt(x float64, xp, fp []float64, left, right float64) float64 {
	n := len(xp)
	if x < xp[0] {
		return left
	}
	if x > xp[n-1] {
		return right
	}
	if n == 1 {
		return fp[0]
	}
	// First index with xp[j] >= x.
	j := sort.SearchFloat64s(xp, x)
	if j < n && xp[j] == x {
		return fp[j]
	}
	i := j - 1
	frac := (x - xp[i]) / (xp[j] - xp[i])
	return fp[i] + frac*(fp[j]-fp[i])
}

// Linear interpolates (xp, fp) at every x.
func Linear(x, xp, fp []float64, left, right float64) ([]float64, error) {
	out := make([]float64, len(x))
	if err := LinearTo(out, x, xp, fp, left, right); err != nil {
		return nil, err
	}
	return out, nil
}

// LinearTo is like Linear but writes into dst, which must have len(x).
func LinearTo(dst, x, xp, fp []float64, left, right float64) error {
	if len(xp) != len(fp) {
		return ErrLengthMismatch
	}
	if len(xp) == 0 {
		return ErrEmpty
	}
	if len(dst) != len(x) {
		return ErrLengthMismatch
	}
	for i, v := range x {
		dst[i] = LinearAt(v, xp, fp, left, right)
	}
	return nil
}

// Edges interpolates (xp, fp) at x, holding the end values constant outside
// the sampled range.
func Edges(x, xp, fp []float64) ([]float64, error) {
	if len(fp) == 0 {
		return nil, ErrEmpty
	}
	return Linear(x, xp, fp, fp[0], fp[len(fp)-1])
}
