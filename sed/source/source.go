// Package source provides in-memory synthesis sources for the prediction
// pipeline: a rest-frame source returning a fixed spectrum and line list, and
// a direct source that resamples a fixed observed-frame spectrum and projects
// it through filters.
package source

import (
	"errors"

	"github.com/cwbudde/algo-sed/dsp/interp"
	"github.com/cwbudde/algo-sed/sed/filter"
	"github.com/cwbudde/algo-sed/sed/params"
	"github.com/cwbudde/algo-sed/sed/units"
)

// ErrLengthMismatch is returned when a source's arrays disagree in length.
var ErrLengthMismatch = errors.New("source: length mismatch")

// Static is a rest-frame source: wavelengths in Å, spectrum in Lsun/Hz per
// solar mass formed, line luminosities in Lsun per solar mass formed. Err, if
// set, is returned from every call.
type Static struct {
	Wave     []float64
	Spec     []float64
	MFrac    float64
	LineWave []float64
	LineLum  []float64
	Err      error
}

// GalaxySpectrum returns copies of the stored spectrum.
func (s *Static) GalaxySpectrum(_ params.Set) (wave, spec []float64, mfrac float64, err error) {
	if s.Err != nil {
		return nil, nil, 0, s.Err
	}
	if len(s.Wave) != len(s.Spec) {
		return nil, nil, 0, ErrLengthMismatch
	}
	return clone(s.Wave), clone(s.Spec), s.MFrac, nil
}

// GalaxyLines returns copies of the stored line list.
func (s *Static) GalaxyLines(_ params.Set) (wave, lum []float64, err error) {
	if s.Err != nil {
		return nil, nil, s.Err
	}
	if len(s.LineWave) != len(s.LineLum) {
		return nil, nil, ErrLengthMismatch
	}
	return clone(s.LineWave), clone(s.LineLum), nil
}

// Direct is an observed-frame source whose spectrum is in maggies. It is
// resampled linearly onto the requested grid (held at the end values outside
// it) and integrated through filters for photometry.
type Direct struct {
	Wave  []float64
	Spec  []float64
	MFrac float64
	Err   error
}

// Spectrum returns the spectrum on outwave (the stored grid when nil) and the
// maggies through each filter. phot is nil without filters.
func (d *Direct) Spectrum(_ params.Set, outwave []float64, filters []*filter.Filter) (spec, phot []float64, mfrac float64, err error) {
	if d.Err != nil {
		return nil, nil, 0, d.Err
	}
	if len(d.Wave) != len(d.Spec) {
		return nil, nil, 0, ErrLengthMismatch
	}

	if outwave == nil {
		spec = clone(d.Spec)
	} else if spec, err = interp.Edges(outwave, d.Wave, d.Spec); err != nil {
		return nil, nil, 0, err
	}

	if len(filters) > 0 {
		flambda := make([]float64, len(d.Wave))
		for i, w := range d.Wave {
			flambda[i] = units.FnuToFlambda(d.Spec[i], w)
		}
		mags, err := filter.GetSED(d.Wave, flambda, filters)
		if err != nil {
			return nil, nil, 0, err
		}
		phot = make([]float64, len(mags))
		for i, m := range mags {
			phot[i] = units.MagToMaggies(m)
		}
	}
	return spec, phot, d.MFrac, nil
}

func clone(v []float64) []float64 {
	if v == nil {
		return nil
	}
	return append([]float64(nil), v...)
}
