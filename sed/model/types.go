package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-sed/sed/eline"
	"github.com/cwbudde/algo-sed/sed/filter"
	"github.com/cwbudde/algo-sed/sed/params"
)

// SpectrumSource produces rest-frame spectra for NewSpecModel. Wavelengths
// are in Å, the spectrum in Lsun/Hz per solar mass formed and line
// luminosities in Lsun per solar mass formed. The returned line luminosities
// are owned by the caller.
type SpectrumSource interface {
	GalaxySpectrum(p params.Set) (wave, spec []float64, mfrac float64, err error)
	GalaxyLines(p params.Set) (wave, lum []float64, err error)
}

// DirectSource produces observed-frame spectra and photometry, both in
// maggies, for NewSedModel. A nil outwave asks for the source's native grid.
// The returned slices are owned by the caller.
type DirectSource interface {
	Spectrum(p params.Set, outwave []float64, filters []*filter.Filter) (spec, phot []float64, mfrac float64, err error)
}

// Observation describes what is to be predicted. All fields are optional.
// Spectrum, Unc, Mask and the rows and columns of Cov run over Wavelength, so
// a spectrum needs a wavelength grid. The noise is Unc, Cov or both; Cov,
// when set, replaces Unc² as the noise model for line fitting and supplies
// the uncertainties for calibration fits when Unc is nil.
type Observation struct {
	Wavelength []float64
	Mask       []bool
	Spectrum   []float64
	Unc        []float64
	Cov        mat.Matrix
	Filters    []*filter.Filter

	// LogifySpectrum returns ln(spectrum·calibration) from the direct
	// variant.
	LogifySpectrum bool
	// NormalizationGuess scales the direct variant's spectrum; zero means 1.
	NormalizationGuess float64
}

// HasSpectrum reports whether an observed spectrum is present. An empty
// spectrum counts as none.
func (o *Observation) HasSpectrum() bool {
	return o != nil && len(o.Spectrum) > 0
}

func (o *Observation) validate() error {
	n := len(o.Wavelength)
	if o.Mask != nil && len(o.Mask) != n {
		return fmt.Errorf("%w: mask has %d elements for %d wavelengths", ErrObservation, len(o.Mask), n)
	}
	if !o.HasSpectrum() {
		return nil
	}
	if n == 0 {
		return fmt.Errorf("%w: spectrum of %d pixels without a wavelength grid", ErrObservation, len(o.Spectrum))
	}
	if len(o.Spectrum) != n {
		return fmt.Errorf("%w: spectrum has %d elements for %d wavelengths", ErrObservation, len(o.Spectrum), n)
	}
	if o.Unc == nil && o.Cov == nil {
		return fmt.Errorf("%w: spectrum without unc or covariance", ErrObservation)
	}
	if o.Unc != nil && len(o.Unc) != n {
		return fmt.Errorf("%w: unc has %d elements for %d wavelengths", ErrObservation, len(o.Unc), n)
	}
	if o.Cov != nil {
		r, c := o.Cov.Dims()
		if r != n || c != n {
			return fmt.Errorf("%w: covariance is %dx%d for %d wavelengths", ErrObservation, r, c, n)
		}
	}
	return nil
}

// uncertainty returns Unc, or the square root of the diagonal of Cov when
// only a covariance was given.
func (o *Observation) uncertainty() []float64 {
	if o.Unc != nil || o.Cov == nil {
		return o.Unc
	}
	out := make([]float64, len(o.Wavelength))
	for i := range out {
		out[i] = math.Sqrt(o.Cov.At(i, i))
	}
	return out
}

// Prediction is the result of one Predict call. Spectrum and Photometry are
// in maggies; Photometry is {0} when no filters were requested.
type Prediction struct {
	Spectrum   []float64
	Photometry []float64
	MFrac      float64
}

// State is the prediction context of the most recent Predict call.
type State struct {
	Params params.Set

	RestWave []float64
	RestSpec []float64
	MFrac    float64
	Zred     float64
	FluxNorm float64
	// NormSpec is RestSpec·FluxNorm, in maggies on ObsWave.
	NormSpec []float64
	ObsWave  []float64
	OutWave  []float64

	Calibration []float64
	PolyCoeffs  []float64
	Spectrum    []float64
	// SED is the spectrum with the calibration divided out.
	SED []float64

	LineWave       []float64
	LineLum        []float64
	Lines          eline.Geometry
	ElineSpec      *mat.Dense
	AlphaHat       []float64
	AlphaBar       []float64
	LnElinePenalty float64
}

func (s *State) clone() State {
	out := *s
	out.Params = s.Params.Clone()
	out.RestWave = cloneFloats(s.RestWave)
	out.RestSpec = cloneFloats(s.RestSpec)
	out.NormSpec = cloneFloats(s.NormSpec)
	out.ObsWave = cloneFloats(s.ObsWave)
	out.OutWave = cloneFloats(s.OutWave)
	out.Calibration = cloneFloats(s.Calibration)
	out.PolyCoeffs = cloneFloats(s.PolyCoeffs)
	out.Spectrum = cloneFloats(s.Spectrum)
	out.SED = cloneFloats(s.SED)
	out.LineWave = cloneFloats(s.LineWave)
	out.LineLum = cloneFloats(s.LineLum)
	out.AlphaHat = cloneFloats(s.AlphaHat)
	out.AlphaBar = cloneFloats(s.AlphaBar)
	out.Lines = eline.Geometry{
		ObsWave:  cloneFloats(s.Lines.ObsWave),
		SigmaKMS: cloneFloats(s.Lines.SigmaKMS),
		ToFit:    cloneBools(s.Lines.ToFit),
		WaveMask: cloneBools(s.Lines.WaveMask),
	}
	if s.ElineSpec != nil {
		out.ElineSpec = mat.DenseCopyOf(s.ElineSpec)
	}
	return out
}

func cloneFloats(v []float64) []float64 {
	if v == nil {
		return nil
	}
	return append([]float64(nil), v...)
}

func cloneBools(v []bool) []bool {
	if v == nil {
		return nil
	}
	return append([]bool(nil), v...)
}
