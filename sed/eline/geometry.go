package eline

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-sed/sed/params"
	"github.com/cwbudde/algo-sed/sed/units"
)

const (
	// DefaultNSigma is the half-width, in line widths, of the region around
	// each line used for selection and fitting.
	DefaultNSigma = 5.0
	// DefaultSigmaKMS is the line velocity dispersion used when eline_sigma
	// is not given.
	DefaultSigmaKMS = 100.0
)

// ErrDimension is returned when per-line inputs disagree in length.
var ErrDimension = errors.New("eline: dimension mismatch")

// Geometry is the per-prediction emission-line layout on an output grid.
// ToFit and WaveMask are nil when no observed spectrum is present.
type Geometry struct {
	ObsWave  []float64
	SigmaKMS []float64
	ToFit    []bool
	WaveMask []bool
}

// Fitted returns the indices of the lines selected for fitting.
func (g Geometry) Fitted() []int {
	var idx []int
	for i, ok := range g.ToFit {
		if ok {
			idx = append(idx, i)
		}
	}
	return idx
}

// Masked reports whether any output pixel lies near a fitted line.
func (g Geometry) Masked() bool {
	for _, m := range g.WaveMask {
		if m {
			return true
		}
	}
	return false
}

// MaskedWave returns the output wavelengths flagged in WaveMask.
func (g Geometry) MaskedWave(outwave []float64) []float64 {
	return Pick(outwave, g.WaveMask)
}

// Pick returns the elements of v whose mask entry is set.
func Pick(v []float64, mask []bool) []float64 {
	out := make([]float64, 0, len(v))
	for i, ok := range mask {
		if ok {
			out = append(out, v[i])
		}
	}
	return out
}

// SigmaLambda converts a velocity dispersion at an observed wavelength into
// a wavelength dispersion.
func SigmaLambda(obsWave, sigmaKMS float64) float64 {
	return obsWave / units.CKMS * sigmaKMS
}

// Cache computes the line geometry for one prediction.
//
// Observed centres are lineWave·(1 + zred + eline_delta_zred). Widths come
// from eline_sigma (scalar or one per line, default 100 km/s). Without an
// observed spectrum the selection is skipped. Otherwise a line is fitted when
// it is named in elines_to_fit (alias lines_to_fit; empty means all lines)
// and at least one output pixel lies within nsigma widths of its centre; the
// wavelength mask is the union of those windows over fitted lines.
//
// table is only consulted when lines are selected by name.
func Cache(lineWave []float64, zred float64, p params.Set, outwave []float64, haveSpectrum bool, table *Table, nsigma float64) (Geometry, error) {
	if nsigma <= 0 {
		nsigma = DefaultNSigma
	}
	dz, err := p.Float("eline_delta_zred", 0)
	if err != nil {
		return Geometry{}, err
	}

	n := len(lineWave)
	g := Geometry{
		ObsWave:  make([]float64, n),
		SigmaKMS: make([]float64, n),
	}
	for i, w := range lineWave {
		g.ObsWave[i] = (1 + dz + zred) * w
	}

	sig, err := p.Floats("eline_sigma")
	if err != nil {
		return Geometry{}, err
	}
	switch len(sig) {
	case 0:
		fill(g.SigmaKMS, DefaultSigmaKMS)
	case 1:
		fill(g.SigmaKMS, sig[0])
	case n:
		copy(g.SigmaKMS, sig)
	default:
		return Geometry{}, fmt.Errorf("%w: eline_sigma has %d values for %d lines", ErrDimension, len(sig), n)
	}

	if !haveSpectrum {
		return g, nil
	}

	selected, err := selectNames(p, table, n)
	if err != nil {
		return Geometry{}, err
	}

	g.ToFit = make([]bool, n)
	g.WaveMask = make([]bool, len(outwave))
	near := make([]bool, len(outwave))
	for i := range lineWave {
		if !selected[i] {
			continue
		}
		half := nsigma * SigmaLambda(g.ObsWave[i], g.SigmaKMS[i])
		hit := false
		for j, w := range outwave {
			near[j] = math.Abs(w-g.ObsWave[i]) < half
			hit = hit || near[j]
		}
		if !hit {
			continue
		}
		g.ToFit[i] = true
		for j, ok := range near {
			if ok {
				g.WaveMask[j] = true
			}
		}
	}
	return g, nil
}

func selectNames(p params.Set, table *Table, n int) ([]bool, error) {
	names, err := p.Strings("elines_to_fit")
	if err != nil {
		return nil, err
	}
	if names == nil {
		if names, err = p.Strings("lines_to_fit"); err != nil {
			return nil, err
		}
	}
	if len(names) == 0 {
		sel := make([]bool, n)
		for i := range sel {
			sel[i] = true
		}
		return sel, nil
	}
	if table == nil {
		return nil, ErrNoTable
	}
	if table.Len() != n {
		return nil, fmt.Errorf("%w: table %d, source %d", ErrTableMismatch, table.Len(), n)
	}
	return table.Select(names), nil
}

func fill(v []float64, x float64) {
	for i := range v {
		v[i] = x
	}
}
