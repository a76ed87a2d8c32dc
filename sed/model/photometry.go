package model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-sed/sed/eline"
	"github.com/cwbudde/algo-sed/sed/filter"
	"github.com/cwbudde/algo-sed/sed/units"
)

// noPhotometry is returned when no filters are requested.
func noPhotometry() []float64 { return []float64{0} }

// photometryLines reports whether line fluxes are added to photometry. The
// photometric stages read nebemlineinspec with a default of false, unlike
// the spectral stage: a source that does not declare the flag is assumed to
// leave its lines out of the continuum.
func photometryLines(st *State) (bool, error) {
	inSpec, err := st.Params.Bool("nebemlineinspec", false)
	return !inSpec, err
}

func (m *Model) predictPhotometry(st *State, filters []*filter.Filter) ([]float64, error) {
	if len(filters) == 0 {
		return noPhotometry(), nil
	}

	wave := ObservedWave(st.RestWave, st.Zred)
	flambda := make([]float64, len(wave))
	for i, w := range wave {
		flambda[i] = units.FnuToFlambda(st.NormSpec[i], w)
	}
	phot, err := maggiesThrough(wave, flambda, filters)
	if err != nil {
		return nil, err
	}

	addLines, err := photometryLines(st)
	if err != nil {
		return nil, err
	}
	if addLines {
		// Line fluxes carry no (1+z) stretch.
		scale := st.FluxNorm / (1 + st.Zred) * units.MaggieCGS
		if err := addLineFluxes(phot, st.Lines.ObsWave, st.LineLum, scale, filters); err != nil {
			return nil, err
		}
	}
	return phot, nil
}

// AbsoluteRestMaggies returns the last spectrum's maggies through filters
// as if it were observed at rest from 10 pc, lines included when the source
// does not embed them. M = -2.5·log10(maggies).
func (m *Model) AbsoluteRestMaggies(filters []*filter.Filter) ([]float64, error) {
	st := m.st
	if st == nil || m.variant != VariantSpec {
		return nil, ErrNotPredicted
	}
	if len(filters) == 0 {
		return noPhotometry(), nil
	}

	ldMpc, err := m.lumDistMpc(st)
	if err != nil {
		return nil, err
	}
	// (d / 10 pc)²
	toAbs := (ldMpc * 1e5) * (ldMpc * 1e5)

	flambda := make([]float64, len(st.RestWave))
	for i, w := range st.RestWave {
		fmaggies := st.NormSpec[i] / (1 + st.Zred) * toAbs
		flambda[i] = units.FnuToFlambda(fmaggies, w)
	}
	out, err := maggiesThrough(st.RestWave, flambda, filters)
	if err != nil {
		return nil, err
	}

	addLines, err := photometryLines(st)
	if err != nil {
		return nil, err
	}
	if addLines {
		dz, err := st.Params.Float("eline_delta_zred", 0)
		if err != nil {
			return nil, err
		}
		restLines := make([]float64, len(st.LineWave))
		for i, w := range st.LineWave {
			restLines[i] = (1 + dz) * w
		}
		scale := st.FluxNorm / (1 + st.Zred) * units.MaggieCGS * toAbs
		if err := addLineFluxes(out, restLines, st.LineLum, scale, filters); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func maggiesThrough(wave, flambda []float64, filters []*filter.Filter) ([]float64, error) {
	mags, err := filter.GetSED(wave, flambda, filters)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(mags))
	for i, mag := range mags {
		out[i] = units.MagToMaggies(mag)
	}
	return out, nil
}

func addLineFluxes(phot, lineWave, lineLum []float64, scale float64, filters []*filter.Filter) error {
	lum := make([]float64, len(lineLum))
	for i, l := range lineLum {
		lum[i] = l * scale
	}
	flux, err := eline.FilterFluxes(lineWave, lum, filters)
	if err != nil {
		return err
	}
	for i, f := range flux {
		phot[i] += f
	}
	return nil
}

// ElineSpectrum renders every emission line of the last prediction on wave
// (the output grid when nil) in maggies. The result is pixels×lines, nil when
// the source reported no lines.
func (m *Model) ElineSpectrum(wave []float64) (*mat.Dense, error) {
	st := m.st
	if st == nil || m.variant != VariantSpec {
		return nil, ErrNotPredicted
	}
	if wave == nil {
		wave = st.OutWave
	}
	return eline.Render(st.Lines.ObsWave, st.Lines.SigmaKMS, st.LineLum, wave, st.FluxNorm/(1+st.Zred), nil)
}
