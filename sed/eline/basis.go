package eline

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-sed/sed/filter"
	"github.com/cwbudde/algo-sed/sed/units"
)

// ErrNotIncreasing is returned when a basis grid is not strictly increasing.
var ErrNotIncreasing = errors.New("eline: wavelength grid must be strictly increasing")

// Gaussians returns the len(wave)×len(obsWave) line basis. Column j is a
// Gaussian in velocity about obsWave[j] with dispersion sigmaKMS[j], carried
// into frequency density and normalized so that its trapezoidal integral over
// ν = 3e18/λ is one in magnitude. Columns whose integral vanishes, for
// instance lines far from every pixel, are left zero.
//
// The result is nil when there are no lines or no pixels.
func Gaussians(obsWave, sigmaKMS, wave []float64) (*mat.Dense, error) {
	if len(obsWave) != len(sigmaKMS) {
		return nil, ErrDimension
	}
	nw, nl := len(wave), len(obsWave)
	if nw == 0 || nl == 0 {
		return nil, nil
	}
	for i := 1; i < nw; i++ {
		if !(wave[i] > wave[i-1]) {
			return nil, ErrNotIncreasing
		}
	}

	// Frequency and column buffers in ascending-ν order.
	nu := make([]float64, nw)
	for i, w := range wave {
		nu[nw-1-i] = units.FreqProxy / w
	}
	col := make([]float64, nw)

	g := mat.NewDense(nw, nl, nil)
	root2pi := math.Sqrt(2 * math.Pi)
	for j, mu := range obsWave {
		s := sigmaKMS[j]
		for i, w := range wave {
			dv := units.CKMS * (w/mu - 1)
			dvdnu := units.CKMS * w * w / (units.Lightspeed * mu)
			v := math.Exp(-dv*dv/(2*s*s)) / (s * root2pi) * dvdnu
			g.Set(i, j, v)
			col[nw-1-i] = v
		}
		area := 0.0
		if nw > 1 {
			area = integrate.Trapezoidal(nu, col)
		}
		if area == 0 || math.IsNaN(area) {
			for i := 0; i < nw; i++ {
				g.Set(i, j, 0)
			}
			continue
		}
		for i := 0; i < nw; i++ {
			g.Set(i, j, g.At(i, j)/area)
		}
	}
	return g, nil
}

// Render returns the per-line emission spectrum on wave: each basis column
// scaled by lum·unitsFactor. sel chooses the lines to render; nil renders all.
func Render(obsWave, sigmaKMS, lum, wave []float64, unitsFactor float64, sel []bool) (*mat.Dense, error) {
	if len(lum) != len(obsWave) || (sel != nil && len(sel) != len(obsWave)) {
		return nil, ErrDimension
	}
	if sel != nil {
		obsWave, sigmaKMS, lum = Pick(obsWave, sel), Pick(sigmaKMS, sel), Pick(lum, sel)
	}
	g, err := Gaussians(obsWave, sigmaKMS, wave)
	if err != nil || g == nil {
		return nil, err
	}
	for j, l := range lum {
		f := l * unitsFactor
		for i := range wave {
			g.Set(i, j, g.At(i, j)*f)
		}
	}
	return g, nil
}

// RowSums returns the per-pixel sum across lines of a rendered spectrum.
// A nil matrix yields nil.
func RowSums(m *mat.Dense) []float64 {
	if m == nil {
		return nil
	}
	r, _ := m.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = mat.Sum(m.RowView(i))
	}
	return out
}

// FilterFluxes returns the line flux through each filter:
// Σ T(λ)·λ·L / ABZeroCounts over lines with positive transmission. obsWave
// are line centres in Å and lum line fluxes in erg/s/cm².
func FilterFluxes(obsWave, lum []float64, filters []*filter.Filter) ([]float64, error) {
	if len(obsWave) != len(lum) {
		return nil, ErrDimension
	}
	out := make([]float64, len(filters))
	for i, f := range filters {
		var sum float64
		for j, w := range obsWave {
			t := f.TransmissionAt(w)
			if t > 0 {
				sum += t * w * lum[j]
			}
		}
		out[i] = sum / f.ABZeroCounts
	}
	return out, nil
}
