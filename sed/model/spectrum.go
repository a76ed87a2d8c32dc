package model

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-sed/dsp/interp"
	"github.com/cwbudde/algo-sed/sed/calib"
	"github.com/cwbudde/algo-sed/sed/eline"
	"github.com/cwbudde/algo-sed/sed/smooth"
)

func (m *Model) lineTable() *eline.Table {
	if m.cfg.Lines != nil {
		return m.cfg.Lines
	}
	if t, err := eline.Default(); err == nil {
		return t
	}
	return nil
}

// predictSpectrum redshifts, smooths and calibrates the normalized spectrum
// onto the output grid and applies the emission-line treatment.
func (m *Model) predictSpectrum(st *State, obs *Observation) ([]float64, error) {
	st.ObsWave = ObservedWave(st.RestWave, st.Zred)
	if obs.Wavelength != nil {
		st.OutWave = cloneFloats(obs.Wavelength)
	} else {
		st.OutWave = cloneFloats(st.ObsWave)
	}

	geo, err := eline.Cache(st.LineWave, st.Zred, st.Params, st.OutWave, obs.HasSpectrum(), m.lineTable(), m.cfg.NSigma)
	if err != nil {
		return nil, err
	}
	st.Lines = geo

	opt, err := smooth.OptionsFromParams(st.Params)
	if err != nil {
		return nil, err
	}
	smoothed, err := m.cfg.Smoother.Smooth(st.ObsWave, st.NormSpec, st.OutWave, opt)
	if err != nil {
		return nil, fmt.Errorf("model: smooth: %w", err)
	}

	cal, err := m.cfg.Calibration.Calibrate(st.Params, calib.Input{
		Wavelength: st.OutWave,
		Mask:       obs.Mask,
		Observed:   obs.Spectrum,
		Unc:        obs.uncertainty(),
		Model:      smoothed,
		LineMask:   geo.WaveMask,
	})
	if err != nil {
		return nil, fmt.Errorf("model: calibration %s: %w", m.cfg.Calibration.Name(), err)
	}
	if len(cal.Vector) != len(smoothed) {
		return nil, fmt.Errorf("model: calibration %s returned %d values for %d pixels",
			m.cfg.Calibration.Name(), len(cal.Vector), len(smoothed))
	}
	st.Calibration = cal.Vector
	st.PolyCoeffs = cal.Coeffs

	spec := make([]float64, len(smoothed))
	vecmath.MulBlock(spec, smoothed, cal.Vector)

	marg, err := st.Params.Bool("marginalize_elines", false)
	if err != nil {
		return nil, err
	}
	inSpec, err := st.Params.Bool("nebemlineinspec", true)
	if err != nil {
		return nil, err
	}

	st.ElineSpec, st.AlphaHat, st.AlphaBar, st.LnElinePenalty = nil, nil, nil, 0
	switch {
	case marg && geo.Masked():
		if err := m.fitLines(st, obs, spec); err != nil {
			return nil, err
		}
		addMasked(spec, geo.WaveMask, eline.RowSums(st.ElineSpec))
	case !inSpec && geo.Masked():
		els, err := eline.Render(geo.ObsWave, geo.SigmaKMS, st.LineLum, geo.MaskedWave(st.OutWave),
			st.FluxNorm/(1+st.Zred), nil)
		if err != nil {
			return nil, fmt.Errorf("model: render lines: %w", err)
		}
		st.ElineSpec = els
		addMasked(spec, geo.WaveMask, eline.RowSums(els))
	}

	st.SED = make([]float64, len(spec))
	for i, s := range spec {
		st.SED[i] = s / cal.Vector[i]
	}
	st.Spectrum = spec
	return cloneFloats(spec), nil
}

// fitLines solves for the fitted line amplitudes against the observed
// spectrum and writes the posterior luminosities back into st.LineLum.
func (m *Model) fitLines(st *State, obs *Observation, calibrated []float64) error {
	geo := st.Lines
	idx := geo.ToFit
	emask := geo.WaveMask
	nebwave := geo.MaskedWave(st.OutWave)
	lineWave := eline.Pick(geo.ObsWave, idx)

	basis, err := eline.Gaussians(lineWave, eline.Pick(geo.SigmaKMS, idx), nebwave)
	if err != nil {
		return fmt.Errorf("model: line basis: %w", err)
	}

	observed := eline.Pick(obs.Spectrum, emask)
	predicted := eline.Pick(calibrated, emask)
	delta := make([]float64, len(observed))
	for i := range delta {
		delta[i] = observed[i] - predicted[i]
	}

	// Prior amplitudes in calibrated flux units, using the calibration at
	// each line centre.
	calAt, err := interp.Edges(lineWave, nebwave, eline.Pick(st.Calibration, emask))
	if err != nil {
		return err
	}
	unitsFactor := st.FluxNorm / (1 + st.Zred)
	linecal := make([]float64, len(calAt))
	for j, c := range calAt {
		linecal[j] = unitsFactor * c
	}

	usePrior, err := st.Params.Bool("use_eline_prior", false)
	if err != nil {
		return err
	}
	width, err := st.Params.Float("eline_prior_width", eline.DefaultPriorWidth)
	if err != nil {
		return err
	}
	inSpec, err := st.Params.Bool("nebemlineinspec", true)
	if err != nil {
		return err
	}
	neb, err := st.Params.Bool("add_neb_emission", true)
	if err != nil {
		return err
	}

	in := eline.SolveInput{
		Basis:           basis,
		Delta:           delta,
		Lum:             eline.Pick(st.LineLum, idx),
		LineCal:         linecal,
		UsePrior:        usePrior,
		PriorWidth:      width,
		LinesInSpectrum: inSpec,
		NebularEnabled:  neb,
	}
	if obs.Cov != nil {
		in.Cov = subBlock(obs.Cov, emask)
	} else {
		unc := eline.Pick(obs.Unc, emask)
		in.Var = make([]float64, len(unc))
		vecmath.MulBlock(in.Var, unc, unc)
	}

	res, err := eline.Solve(in)
	if err != nil {
		return fmt.Errorf("model: line fit: %w", err)
	}

	k := 0
	for i, ok := range idx {
		if ok {
			st.LineLum[i] = res.Lum[k]
			k++
		}
	}
	st.ElineSpec = res.Spectrum
	st.AlphaHat = res.AlphaHat
	st.AlphaBar = res.AlphaBar
	st.LnElinePenalty = res.LnPenalty

	m.log.WithFields(logrus.Fields{
		"lines":      len(res.AlphaHat),
		"pixels":     len(delta),
		"ln_penalty": res.LnPenalty,
	}).Debug("fitted emission lines")
	return nil
}

func subBlock(cov mat.Matrix, mask []bool) *mat.Dense {
	var rows []int
	for i, ok := range mask {
		if ok {
			rows = append(rows, i)
		}
	}
	out := mat.NewDense(len(rows), len(rows), nil)
	for a, i := range rows {
		for b, j := range rows {
			out.Set(a, b, cov.At(i, j))
		}
	}
	return out
}

func addMasked(dst []float64, mask []bool, v []float64) {
	k := 0
	for i, ok := range mask {
		if ok {
			dst[i] += v[k]
			k++
		}
	}
}
