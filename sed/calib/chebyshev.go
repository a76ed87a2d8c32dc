package calib

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-sed/internal/linalg"
)

var (
	ErrNoValidPixels  = errors.New("calib: no unmasked pixels")
	ErrLengthMismatch = errors.New("calib: length mismatch")
	ErrOrder          = errors.New("calib: polynomial order must be >= 0")
	ErrRegularization = errors.New("calib: regularization length does not match coefficients")
)

// Vander returns the n×(order+1) Chebyshev Vandermonde matrix, column k
// holding T_k(x).
func Vander(x []float64, order int) *mat.Dense {
	m := order + 1
	v := mat.NewDense(len(x), m, nil)
	for i, xi := range x {
		v.Set(i, 0, 1)
		if m > 1 {
			v.Set(i, 1, xi)
		}
		for k := 2; k < m; k++ {
			v.Set(i, k, 2*xi*v.At(i, k-1)-v.At(i, k-2))
		}
	}
	return v
}

// Eval evaluates Σ c_k T_k(x) at every x using Clenshaw's recurrence.
func Eval(x, coeffs []float64) []float64 {
	out := make([]float64, len(x))
	n := len(coeffs)
	if n == 0 {
		return out
	}
	for i, xi := range x {
		var b1, b2 float64
		for k := n - 1; k >= 1; k-- {
			b1, b2 = 2*xi*b1-b2+coeffs[k], b1
		}
		out[i] = xi*b1 - b2 + coeffs[0]
	}
	return out
}

// WaveToX maps the unmasked wavelengths linearly onto [-1, 1]. Masked
// wavelengths outside the unmasked range land outside that interval. A nil
// mask selects every pixel.
func WaveToX(wave []float64, mask []bool) ([]float64, error) {
	if mask != nil && len(mask) != len(wave) {
		return nil, ErrLengthMismatch
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, w := range wave {
		if mask != nil && !mask[i] {
			continue
		}
		lo = math.Min(lo, w)
		hi = math.Max(hi, w)
	}
	if math.IsInf(lo, 1) {
		return nil, ErrNoValidPixels
	}
	span := hi - lo
	x := make([]float64, len(wave))
	for i, w := range wave {
		if span == 0 {
			x[i] = -1
			continue
		}
		x[i] = 2*(w-lo)/span - 1
	}
	return x, nil
}

// FitChebyshev returns the weighted least-squares Chebyshev coefficients of
// order `order` for data y with variances yvar:
//
//	c = (AᵀWA + diag(reg²))⁻¹ AᵀW y,   W = diag(1/yvar)
//
// reg may be nil, a single value applied to every coefficient, or one value
// per coefficient. With skipConstant the T_0 column is omitted and the
// returned slice holds the coefficients of T_1..T_order. Rank-deficient
// normal equations are solved with the pseudo-inverse.
func FitChebyshev(x, y, yvar []float64, order int, reg []float64, skipConstant bool) ([]float64, error) {
	if order < 0 {
		return nil, ErrOrder
	}
	if len(x) != len(y) || len(x) != len(yvar) {
		return nil, ErrLengthMismatch
	}
	if len(x) == 0 {
		return nil, ErrNoValidPixels
	}

	a := Vander(x, order)
	if skipConstant {
		if order == 0 {
			return []float64{}, nil
		}
		a = mat.DenseCopyOf(a.Slice(0, len(x), 1, order+1))
	}
	_, m := a.Dims()

	// Rows of A scaled by 1/yvar give WA.
	wa := mat.DenseCopyOf(a)
	wy := make([]float64, len(y))
	for i, v := range yvar {
		w := 1 / v
		row := wa.RawRowView(i)
		for k := range row {
			row[k] *= w
		}
		wy[i] = y[i] * w
	}

	ata := mat.NewDense(m, m, nil)
	ata.Mul(a.T(), wa)

	if len(reg) > 0 {
		if len(reg) != 1 && len(reg) != m {
			return nil, ErrRegularization
		}
		active := false
		for _, r := range reg {
			active = active || r > 0
		}
		if active {
			for k := 0; k < m; k++ {
				r := reg[0]
				if len(reg) == m {
					r = reg[k]
				}
				ata.Set(k, k, ata.At(k, k)+r*r)
			}
		}
	}

	inv, err := linalg.Pinv(ata, 0)
	if err != nil {
		return nil, err
	}
	var aty mat.VecDense
	aty.MulVec(a.T(), mat.NewVecDense(len(wy), wy))
	var c mat.VecDense
	c.MulVec(inv, &aty)

	out := make([]float64, m)
	for k := range out {
		out[k] = c.AtVec(k)
	}
	return out, nil
}
