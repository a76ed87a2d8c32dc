package eline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-sed/internal/linalg"
	"github.com/cwbudde/algo-sed/stats/gauss"
)

// DefaultPriorWidth is the fractional prior width on line amplitudes.
const DefaultPriorWidth = 0.2

// SolveInput holds the restricted problem for the amplitude solve. Basis is
// pixels×lines on the masked output pixels; Delta is observed minus model on
// the same pixels. Noise is either Var (per-pixel variance) or Cov (a
// pixels×pixels covariance, used in preference to Var when set).
//
// Lum are the source line luminosities of the fitted lines and LineCal the
// factor taking them to calibrated flux units; their product is the prior
// mean.
type SolveInput struct {
	Basis *mat.Dense
	Delta []float64
	Var   []float64
	Cov   mat.Matrix

	Lum     []float64
	LineCal []float64

	UsePrior   bool
	PriorWidth float64

	LinesInSpectrum bool
	NebularEnabled  bool
}

// SolveResult is the outcome of Solve. Spectrum is the maximum-likelihood
// line spectrum, Basis with column j scaled by AlphaHat[j]. Lum holds the
// posterior amplitudes converted back through LineCal.
type SolveResult struct {
	AlphaHat  []float64
	AlphaBar  []float64
	AlphaPri  []float64
	SigmaHat  *mat.Dense
	SigmaBar  *mat.Dense
	LnPenalty float64
	Spectrum  *mat.Dense
	Lum       []float64
}

// Solve computes maximum-likelihood (and with UsePrior, maximum a posteriori)
// line amplitudes and the log-likelihood penalty from marginalizing over
// them:
//
//	Σ̂ = pinv(GᵀΣ⁻¹G)    α̂ = Σ̂GᵀΣ⁻¹Δ
//
// With a prior of mean ᾰ and covariance Σ̆ = diag(width·|ᾰ|)²,
//
//	M = pinv(Σ̂+Σ̆)   ᾱ = Σ̆Mα̂ + Σ̂Mᾰ   Σ̄ = Σ̂MΣ̆
//	K = ln N(α̂; ᾰ, Σ̆+Σ̂) − ln N(α̂; α̂, Σ̂)
//
// and without it ᾱ = α̂ and K = ln N(α̂; α̂, Σ̂). Singular systems go through
// the pseudo-inverse.
//
// Solve panics when lines are already part of the source spectrum or nebular
// emission is disabled; callers must check those settings first.
func Solve(in SolveInput) (SolveResult, error) {
	if in.LinesInSpectrum {
		panic("eline: Solve called with emission lines already in the spectrum")
	}
	if !in.NebularEnabled {
		panic("eline: Solve called with nebular emission disabled")
	}
	if in.Basis == nil {
		return SolveResult{}, fmt.Errorf("%w: empty basis", ErrDimension)
	}
	npix, nline := in.Basis.Dims()
	if len(in.Delta) != npix || len(in.Lum) != nline || len(in.LineCal) != nline {
		return SolveResult{}, ErrDimension
	}

	sinv, err := inverseNoise(in, npix)
	if err != nil {
		return SolveResult{}, err
	}

	// GᵀΣ⁻¹ is reused for both the normal matrix and the projection of Δ.
	var gts mat.Dense
	gts.Mul(in.Basis.T(), sinv)
	var normal mat.Dense
	normal.Mul(&gts, in.Basis)

	sigmaHat, err := linalg.Pinv(&normal, 0)
	if err != nil {
		return SolveResult{}, fmt.Errorf("eline: alpha covariance: %w", err)
	}
	proj, err := linalg.MulVec(&gts, in.Delta)
	if err != nil {
		return SolveResult{}, err
	}
	alphaHat, err := linalg.MulVec(sigmaHat, proj)
	if err != nil {
		return SolveResult{}, err
	}

	breve := make([]float64, nline)
	for j := range breve {
		breve[j] = in.Lum[j] * in.LineCal[j]
	}

	res := SolveResult{
		AlphaHat: alphaHat,
		AlphaPri: breve,
		SigmaHat: sigmaHat,
	}

	if in.UsePrior {
		width := in.PriorWidth
		d := make([]float64, nline)
		for j, b := range breve {
			s := width * math.Abs(b)
			d[j] = s * s
		}
		sigmaBreve := linalg.Diag(d)

		var sum mat.Dense
		sum.Add(sigmaHat, sigmaBreve)
		m, err := linalg.Pinv(&sum, 0)
		if err != nil {
			return SolveResult{}, fmt.Errorf("eline: prior combination: %w", err)
		}

		var bm, hm mat.Dense
		bm.Mul(sigmaBreve, m)
		hm.Mul(sigmaHat, m)
		a1, err := linalg.MulVec(&bm, alphaHat)
		if err != nil {
			return SolveResult{}, err
		}
		a2, err := linalg.MulVec(&hm, breve)
		if err != nil {
			return SolveResult{}, err
		}
		res.AlphaBar = make([]float64, nline)
		for j := range res.AlphaBar {
			res.AlphaBar[j] = a1[j] + a2[j]
		}

		res.SigmaBar = mat.NewDense(nline, nline, nil)
		res.SigmaBar.Mul(&hm, sigmaBreve)

		lnPrior, err := gauss.LnMVN(alphaHat, breve, &sum)
		if err != nil {
			return SolveResult{}, err
		}
		lnPeak, err := gauss.LnMVN(alphaHat, alphaHat, sigmaHat)
		if err != nil {
			return SolveResult{}, err
		}
		res.LnPenalty = lnPrior - lnPeak
	} else {
		res.AlphaBar = append([]float64(nil), alphaHat...)
		res.SigmaBar = mat.DenseCopyOf(sigmaHat)
		k, err := gauss.LnMVN(alphaHat, alphaHat, sigmaHat)
		if err != nil {
			return SolveResult{}, err
		}
		res.LnPenalty = k
	}

	res.Spectrum = mat.DenseCopyOf(in.Basis)
	for j, a := range alphaHat {
		for i := 0; i < npix; i++ {
			res.Spectrum.Set(i, j, res.Spectrum.At(i, j)*a)
		}
	}

	res.Lum = make([]float64, nline)
	for j, a := range res.AlphaBar {
		if in.LineCal[j] == 0 {
			res.Lum[j] = in.Lum[j]
			continue
		}
		res.Lum[j] = a / in.LineCal[j]
	}
	return res, nil
}

func inverseNoise(in SolveInput, npix int) (mat.Matrix, error) {
	if in.Cov != nil {
		r, c := in.Cov.Dims()
		if r != npix || c != npix {
			return nil, fmt.Errorf("%w: covariance %dx%d for %d pixels", ErrDimension, r, c, npix)
		}
		inv, err := linalg.Pinv(in.Cov, 0)
		if err != nil {
			return nil, fmt.Errorf("eline: noise covariance: %w", err)
		}
		return inv, nil
	}
	if len(in.Var) != npix {
		return nil, fmt.Errorf("%w: %d variances for %d pixels", ErrDimension, len(in.Var), npix)
	}
	w := make([]float64, npix)
	for i, v := range in.Var {
		w[i] = 1 / v
	}
	return linalg.Diag(w), nil
}
