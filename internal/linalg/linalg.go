// Package linalg collects the small dense linear-algebra helpers shared by the
// calibration and emission-line solvers. Everything is expressed on top of
// gonum/mat; rank-deficient systems are handled through the pseudo-inverse
// rather than reported as errors.
package linalg

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// DefaultRcond is the relative singular-value cutoff used by Pinv when the
// caller does not supply one.
const DefaultRcond = 1e-15

var (
	ErrEmpty        = errors.New("linalg: empty matrix")
	ErrNotSquare    = errors.New("linalg: matrix is not square")
	ErrNoConverge   = errors.New("linalg: SVD did not converge")
	ErrLengthVector = errors.New("linalg: vector length mismatch")
)

// Pinv returns the Moore-Penrose pseudo-inverse of a. Singular values smaller
// than rcond times the largest singular value are treated as zero.
func Pinv(a mat.Matrix, rcond float64) (*mat.Dense, error) {
	r, c := a.Dims()
	if r == 0 || c == 0 {
		return nil, ErrEmpty
	}
	if rcond <= 0 {
		rcond = DefaultRcond
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, ErrNoConverge
	}
	s := svd.Values(nil)

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	smax := 0.0
	for _, sv := range s {
		if sv > smax {
			smax = sv
		}
	}
	cutoff := rcond * smax

	// Scale the columns of V by 1/s, dropping the null space.
	for j, sv := range s {
		f := 0.0
		if sv > cutoff {
			f = 1 / sv
		}
		for i := 0; i < c; i++ {
			v.Set(i, j, v.At(i, j)*f)
		}
	}

	out := mat.NewDense(c, r, nil)
	out.Mul(&v, u.T())
	return out, nil
}

// LogAbsDet returns ln|det(a)|. A singular matrix yields -Inf.
func LogAbsDet(a mat.Matrix) (float64, error) {
	r, c := a.Dims()
	if r == 0 || c == 0 {
		return 0, ErrEmpty
	}
	if r != c {
		return 0, ErrNotSquare
	}
	ld, _ := mat.LogDet(a)
	return ld, nil
}

// Diag returns a dense n×n matrix with d on the diagonal.
func Diag(d []float64) *mat.Dense {
	n := len(d)
	out := mat.NewDense(n, n, nil)
	for i, v := range d {
		out.Set(i, i, v)
	}
	return out
}

// QuadForm returns xᵀ·a·x.
func QuadForm(x []float64, a mat.Matrix) (float64, error) {
	r, c := a.Dims()
	if r != c {
		return 0, ErrNotSquare
	}
	if len(x) != r {
		return 0, ErrLengthVector
	}
	xv := mat.NewVecDense(len(x), append([]float64(nil), x...))
	var ax mat.VecDense
	ax.MulVec(a, xv)
	return mat.Dot(xv, &ax), nil
}

// MulVec returns a·x as a plain slice.
func MulVec(a mat.Matrix, x []float64) ([]float64, error) {
	_, c := a.Dims()
	if len(x) != c {
		return nil, ErrLengthVector
	}
	xv := mat.NewVecDense(len(x), append([]float64(nil), x...))
	var out mat.VecDense
	out.MulVec(a, xv)
	return vecData(&out), nil
}

func vecData(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
