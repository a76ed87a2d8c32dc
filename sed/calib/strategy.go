package calib

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-sed/sed/params"
)

// Input is the spectral context a strategy calibrates against. Wavelength is
// the output grid; Model is the uncalibrated model on that grid. Observed and
// Unc are nil when no spectrum was observed. LineMask marks pixels whose
// emission lines are marginalized analytically.
type Input struct {
	Wavelength []float64
	Mask       []bool
	Observed   []float64
	Unc        []float64
	Model      []float64
	LineMask   []bool
}

// HasSpectrum reports whether an observed spectrum is present.
func (in Input) HasSpectrum() bool {
	return len(in.Observed) > 0
}

// Len returns the number of output pixels: the length of Wavelength, or of
// Model when no grid is given.
func (in Input) Len() int {
	if in.Wavelength != nil {
		return len(in.Wavelength)
	}
	return len(in.Model)
}

// Result is a calibration vector and, for fitted polynomials, the
// coefficients found.
type Result struct {
	Vector []float64
	Coeffs []float64
}

// Strategy produces a per-pixel multiplicative calibration vector.
type Strategy interface {
	Name() string
	Calibrate(p params.Set, in Input) (Result, error)
}

func filled(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// Identity applies no calibration.
type Identity struct{}

// Name implements Strategy.
func (Identity) Name() string { return "identity" }

// Calibrate implements Strategy.
func (Identity) Calibrate(_ params.Set, in Input) (Result, error) {
	return Result{Vector: filled(in.Len(), 1)}, nil
}

// Scalar scales the spectrum by spec_norm (default 1).
type Scalar struct{}

// Name implements Strategy.
func (Scalar) Name() string { return "spec_norm" }

// Calibrate implements Strategy.
func (Scalar) Calibrate(p params.Set, in Input) (Result, error) {
	norm, err := p.Float("spec_norm", 1)
	if err != nil {
		return Result{}, err
	}
	return Result{Vector: filled(in.Len(), norm)}, nil
}

// polyOrder returns the requested order and whether a fit should run.
func polyOrder(p params.Set, in Input) (int, bool, error) {
	if !p.Has("polyorder") || !in.HasSpectrum() {
		return 0, false, nil
	}
	order, err := p.Float("polyorder", 0)
	if err != nil {
		return 0, false, err
	}
	if order < 0 {
		return 0, false, nil
	}
	return int(order), true, nil
}

func validate(in Input) error {
	n := len(in.Wavelength)
	if len(in.Model) != n || len(in.Observed) != n || len(in.Unc) != n {
		return fmt.Errorf("%w: wavelength %d, model %d, observed %d, unc %d",
			ErrLengthMismatch, n, len(in.Model), len(in.Observed), len(in.Unc))
	}
	if in.Mask != nil && len(in.Mask) != n {
		return ErrLengthMismatch
	}
	return nil
}

// fitData collects the residual ratio and its variance over usable pixels.
// Pixels with a zero model, zero uncertainty or non-finite ratio are skipped.
func fitData(in Input, mask []bool, norm float64) (xmask []bool, y, yvar []float64) {
	xmask = make([]bool, len(mask))
	for i, ok := range mask {
		if !ok || in.Model[i] == 0 {
			continue
		}
		r := in.Observed[i]/in.Model[i]/norm - 1
		e := in.Unc[i] / in.Model[i] / norm
		v := e * e
		if math.IsNaN(r) || math.IsInf(r, 0) || !(v > 0) || math.IsInf(v, 0) {
			continue
		}
		xmask[i] = true
		y = append(y, r)
		yvar = append(yvar, v)
	}
	return xmask, y, yvar
}

func baseMask(in Input) []bool {
	mask := make([]bool, len(in.Wavelength))
	for i := range mask {
		mask[i] = in.Mask == nil || in.Mask[i]
	}
	return mask
}

func regularization(p params.Set) ([]float64, error) {
	return p.Floats("poly_regularization")
}

func selectX(x []float64, mask []bool) []float64 {
	out := make([]float64, 0, len(x))
	for i, ok := range mask {
		if ok {
			out = append(out, x[i])
		}
	}
	return out
}

// ChebyshevFit refits, on every call, the maximum-likelihood Chebyshev
// polynomial of order polyorder to observed/model - 1 and returns 1 + poly.
// When marginalize_elines is set, pixels in Input.LineMask are excluded from
// the fit. The constant term is part of the fit.
type ChebyshevFit struct{}

// Name implements Strategy.
func (ChebyshevFit) Name() string { return "chebyshev_fit" }

// Calibrate implements Strategy.
func (ChebyshevFit) Calibrate(p params.Set, in Input) (Result, error) {
	n := in.Len()
	order, ok, err := polyOrder(p, in)
	if err != nil || !ok {
		return Result{Vector: filled(n, 1)}, err
	}
	if err := validate(in); err != nil {
		return Result{}, err
	}

	mask := baseMask(in)
	marg, err := p.Bool("marginalize_elines", false)
	if err != nil {
		return Result{}, err
	}
	if marg && in.LineMask != nil {
		if len(in.LineMask) != n {
			return Result{}, ErrLengthMismatch
		}
		for i, l := range in.LineMask {
			if l {
				mask[i] = false
			}
		}
	}

	fitMask, y, yvar := fitData(in, mask, 1)
	x, err := WaveToX(in.Wavelength, fitMask)
	if err != nil {
		return Result{}, err
	}
	reg, err := regularization(p)
	if err != nil {
		return Result{}, err
	}
	c, err := FitChebyshev(selectX(x, fitMask), y, yvar, order, reg, false)
	if err != nil {
		return Result{}, err
	}

	poly := Eval(x, c)
	for i := range poly {
		poly[i]++
	}
	return Result{Vector: poly, Coeffs: c}, nil
}

// NormalizedChebyshevFit fits T_1..T_n to observed/(model·spec_norm) - 1 and
// returns (1 + poly)·spec_norm, leaving the overall level to spec_norm.
type NormalizedChebyshevFit struct{}

// Name implements Strategy.
func (NormalizedChebyshevFit) Name() string { return "normalized_chebyshev_fit" }

// Calibrate implements Strategy.
func (NormalizedChebyshevFit) Calibrate(p params.Set, in Input) (Result, error) {
	n := in.Len()
	norm, err := p.Float("spec_norm", 1)
	if err != nil {
		return Result{}, err
	}
	order, ok, err := polyOrder(p, in)
	if err != nil || !ok {
		return Result{Vector: filled(n, norm)}, err
	}
	if err := validate(in); err != nil {
		return Result{}, err
	}

	fitMask, y, yvar := fitData(in, baseMask(in), norm)
	x, err := WaveToX(in.Wavelength, fitMask)
	if err != nil {
		return Result{}, err
	}
	reg, err := regularization(p)
	if err != nil {
		return Result{}, err
	}
	c, err := FitChebyshev(selectX(x, fitMask), y, yvar, order, reg, true)
	if err != nil {
		return Result{}, err
	}

	full := append([]float64{0}, c...)
	poly := Eval(x, full)
	for i := range poly {
		poly[i] = (1 + poly[i]) * norm
	}
	return Result{Vector: poly, Coeffs: c}, nil
}

// ChebyshevCoeffs evaluates a Chebyshev polynomial whose T_1..T_n
// coefficients are the poly_coeffs parameter. With cal_type "poly" the vector
// is (1 + poly)·spec_norm; otherwise it is exp(spec_norm + poly). Without
// poly_coeffs the vector is spec_norm everywhere.
type ChebyshevCoeffs struct{}

// Name implements Strategy.
func (ChebyshevCoeffs) Name() string { return "chebyshev_coeffs" }

// Calibrate implements Strategy.
func (ChebyshevCoeffs) Calibrate(p params.Set, in Input) (Result, error) {
	n := in.Len()
	if !p.Has("poly_coeffs") {
		norm, err := p.Float("spec_norm", 1)
		if err != nil {
			return Result{}, err
		}
		return Result{Vector: filled(n, norm)}, nil
	}

	coeffs, err := p.Floats("poly_coeffs")
	if err != nil {
		return Result{}, err
	}
	x, err := WaveToX(in.Wavelength, in.Mask)
	if err != nil {
		return Result{}, err
	}
	poly := Eval(x, append([]float64{0}, coeffs...))

	calType, err := p.String("cal_type", "exp_poly")
	if err != nil {
		return Result{}, err
	}
	if calType == "poly" {
		norm, err := p.Float("spec_norm", 1)
		if err != nil {
			return Result{}, err
		}
		for i := range poly {
			poly[i] = (1 + poly[i]) * norm
		}
	} else {
		norm, err := p.Float("spec_norm", 0)
		if err != nil {
			return Result{}, err
		}
		for i := range poly {
			poly[i] = math.Exp(norm + poly[i])
		}
	}
	return Result{Vector: poly, Coeffs: append([]float64(nil), coeffs...)}, nil
}

var registry = map[string]func() Strategy{
	Identity{}.Name():               func() Strategy { return Identity{} },
	Scalar{}.Name():                 func() Strategy { return Scalar{} },
	ChebyshevFit{}.Name():           func() Strategy { return ChebyshevFit{} },
	NormalizedChebyshevFit{}.Name(): func() Strategy { return NormalizedChebyshevFit{} },
	ChebyshevCoeffs{}.Name():        func() Strategy { return ChebyshevCoeffs{} },
}

// ErrUnknownStrategy is returned by Lookup for unregistered names.
var ErrUnknownStrategy = errors.New("calib: unknown strategy")

// Lookup returns the strategy registered under name.
func Lookup(name string) (Strategy, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return f(), nil
}

// Names lists the registered strategy names.
func Names() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
