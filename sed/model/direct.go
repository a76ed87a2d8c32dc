package model

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-sed/sed/calib"
	"github.com/cwbudde/algo-sed/sed/params"
)

// predictDirect runs the direct-synthesis variant: the source spectrum is
// scaled by the normalization guess, floored, given the sky, then calibrated
// (or, with LogifySpectrum, returned as ln(spectrum) + ln(calibration)).
func (m *Model) predictDirect(p params.Set, obs *Observation) (*Prediction, error) {
	st := &State{Params: p.Clone()}
	spec, phot, mfrac, err := m.direct.Spectrum(st.Params, obs.Wavelength, obs.Filters)
	if err != nil {
		return nil, &ModelEvaluationError{Op: "direct spectrum", Err: err}
	}
	if obs.Wavelength != nil && len(spec) != len(obs.Wavelength) {
		return nil, &ModelEvaluationError{Op: "direct spectrum", Err: ErrDimension}
	}
	st.MFrac = mfrac

	guess := obs.NormalizationGuess
	if guess == 0 {
		guess = 1
	}
	floats.Scale(guess, spec)

	if err := floorSpectrum(spec); err != nil {
		m.log.WithError(err).Warn("spectrum flooring skipped")
	}

	if m.cfg.Sky != nil {
		sky, err := m.cfg.Sky(obs)
		if err != nil {
			return nil, fmt.Errorf("model: sky: %w", err)
		}
		if sky != nil {
			if len(sky) != len(spec) {
				return nil, fmt.Errorf("model: sky has %d values for %d pixels: %w", len(sky), len(spec), ErrDimension)
			}
			floats.Add(spec, sky)
		}
	}
	st.SED = cloneFloats(spec)
	st.OutWave = cloneFloats(obs.Wavelength)

	cal, err := m.directCalibration(st, obs, spec)
	if err != nil {
		return nil, err
	}
	st.Calibration = cal.Vector
	st.PolyCoeffs = cal.Coeffs

	if obs.LogifySpectrum {
		for i := range spec {
			spec[i] = math.Log(spec[i]) + math.Log(cal.Vector[i])
		}
	} else {
		vecmath.MulBlockInPlace(spec, cal.Vector)
	}
	st.Spectrum = cloneFloats(spec)

	if len(obs.Filters) == 0 {
		phot = noPhotometry()
	}
	m.st = st

	m.log.WithFields(logrus.Fields{
		"pixels":  len(spec),
		"filters": len(obs.Filters),
	}).Debug("direct prediction")
	return &Prediction{Spectrum: spec, Photometry: phot, MFrac: mfrac}, nil
}

// directCalibration calibrates against the observation grid. Without a grid
// the strategy sizes its vector from the source's native sampling.
func (m *Model) directCalibration(st *State, obs *Observation, spec []float64) (calib.Result, error) {
	cal, err := m.cfg.Calibration.Calibrate(st.Params, calib.Input{
		Wavelength: obs.Wavelength,
		Mask:       obs.Mask,
		Observed:   obs.Spectrum,
		Unc:        obs.uncertainty(),
		Model:      spec,
	})
	if err != nil {
		return calib.Result{}, fmt.Errorf("model: calibration %s: %w", m.cfg.Calibration.Name(), err)
	}
	if len(cal.Vector) != len(spec) {
		return calib.Result{}, fmt.Errorf("model: calibration %s returned %d values for %d pixels",
			m.cfg.Calibration.Name(), len(cal.Vector), len(spec))
	}
	return cal, nil
}

// floorSpectrum raises every value below min(positive)/len to that floor.
// The spectrum is left untouched when it has no positive value.
func floorSpectrum(spec []float64) error {
	minPos := math.Inf(1)
	for _, v := range spec {
		if v > 0 && v < minPos {
			minPos = v
		}
	}
	if math.IsInf(minPos, 1) {
		return errNoPositiveFlux
	}
	tiny := minPos / float64(len(spec))
	for i, v := range spec {
		if v < tiny {
			spec[i] = tiny
		}
	}
	return nil
}
