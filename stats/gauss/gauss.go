// Package gauss provides the Gaussian density helpers used by the emission
// line marginalization: the multivariate-normal log density and sums of
// area-normalized one-dimensional Gaussians.
package gauss

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-sed/internal/linalg"
)

// PinvRcond is the singular-value cutoff used when inverting the covariance
// inside LnMVN.
const PinvRcond = 1e-12

var (
	ErrDimension = errors.New("gauss: dimension mismatch")
	ErrEmpty     = errors.New("gauss: empty input")
)

// LnMVN returns the natural log of the multivariate normal density with the
// given mean and covariance, evaluated at x:
//
//	-0.5 * (k*ln(2π) + ln|det(cov)| + (x-mean)ᵀ pinv(cov) (x-mean))
//
// The covariance is inverted with a pseudo-inverse, so rank-deficient
// covariances do not fail; their log determinant is -Inf and the result +Inf.
func LnMVN(x, mean []float64, cov mat.Matrix) (float64, error) {
	k := len(mean)
	if k == 0 {
		return 0, ErrEmpty
	}
	r, c := cov.Dims()
	if len(x) != k || r != k || c != k {
		return 0, ErrDimension
	}

	dev := make([]float64, k)
	for i := range dev {
		dev[i] = x[i] - mean[i]
	}

	logDet, err := linalg.LogAbsDet(cov)
	if err != nil {
		return 0, err
	}
	inv, err := linalg.Pinv(cov, PinvRcond)
	if err != nil {
		return 0, err
	}
	q, err := linalg.QuadForm(dev, inv)
	if err != nil {
		return 0, err
	}

	return -0.5 * (float64(k)*math.Log(2*math.Pi) + logDet + q), nil
}

// SumOfGaussians evaluates Σ_j amp[j]/(σ_j√2π)·exp(-(x-μ_j)²/2σ_j²) at each x.
// Amplitudes are total areas. mu, amp and sigma must have equal length.
func SumOfGaussians(x, mu, amp, sigma []float64) ([]float64, error) {
	if len(mu) != len(amp) || len(mu) != len(sigma) {
		return nil, ErrDimension
	}
	out := make([]float64, len(x))
	norm := math.Sqrt(2 * math.Pi)
	for j := range mu {
		s := sigma[j]
		a := amp[j] / (s * norm)
		for i, xi := range x {
			d := (xi - mu[j]) / s
			out[i] += a * math.Exp(-0.5*d*d)
		}
	}
	return out, nil
}
