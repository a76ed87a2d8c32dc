package model

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-sed/sed/calib"
	"github.com/cwbudde/algo-sed/sed/filter"
	"github.com/cwbudde/algo-sed/sed/params"
	"github.com/cwbudde/algo-sed/sed/units"
)

// Variant names the prediction pipeline a Model runs.
type Variant string

const (
	// VariantSpec predicts from a rest-frame source with full line handling.
	VariantSpec Variant = "spec"
	// VariantSed passes through a direct-synthesis source.
	VariantSed Variant = "sed"
)

// Model predicts spectra and photometry for parameter sets.
type Model struct {
	id       string
	variant  Variant
	spectral SpectrumSource
	direct   DirectSource
	cfg      Config
	log      *logrus.Entry
	st       *State
}

// NewSpecModel returns a model that predicts from a rest-frame source. The
// calibration defaults to calib.Identity.
func NewSpecModel(src SpectrumSource, opts ...Option) (*Model, error) {
	if src == nil {
		return nil, ErrNoSource
	}
	return newModel(VariantSpec, DefaultConfig(), opts, func(m *Model) { m.spectral = src })
}

// NewSedModel returns a direct-synthesis model. The calibration defaults to
// calib.Scalar.
func NewSedModel(src DirectSource, opts ...Option) (*Model, error) {
	if src == nil {
		return nil, ErrNoSource
	}
	base := DefaultConfig()
	base.Calibration = calib.Scalar{}
	return newModel(VariantSed, base, opts, func(m *Model) { m.direct = src })
}

func newModel(v Variant, base Config, opts []Option, bind func(*Model)) (*Model, error) {
	cfg := applyOptions(base, opts)
	if cfg.err != nil {
		return nil, cfg.err
	}
	m := &Model{
		id:      uuid.NewString(),
		variant: v,
		cfg:     cfg,
	}
	bind(m)
	m.log = cfg.Logger.WithFields(logrus.Fields{
		"model_id": m.id,
		"variant":  string(v),
	})
	return m, nil
}

// ID returns the model's instance identifier.
func (m *Model) ID() string { return m.id }

// Variant returns the pipeline the model runs.
func (m *Model) Variant() Variant { return m.variant }

// Calibration returns the configured calibration strategy.
func (m *Model) Calibration() calib.Strategy { return m.cfg.Calibration }

// Predict runs the full pipeline for p against obs; obs may be nil.
// Source failures are returned as *ModelEvaluationError.
func (m *Model) Predict(p params.Set, obs *Observation) (*Prediction, error) {
	if obs == nil {
		obs = &Observation{}
	}
	if err := obs.validate(); err != nil {
		return nil, err
	}
	if m.variant == VariantSed {
		return m.predictDirect(p, obs)
	}
	if err := checkLineSettings(p); err != nil {
		return nil, err
	}

	st := &State{Params: p.Clone()}
	var err error
	st.RestWave, st.RestSpec, st.MFrac, err = m.spectral.GalaxySpectrum(st.Params)
	if err != nil {
		return nil, &ModelEvaluationError{Op: "spectrum", Err: err}
	}
	st.LineWave, st.LineLum, err = m.spectral.GalaxyLines(st.Params)
	if err != nil {
		return nil, &ModelEvaluationError{Op: "emission lines", Err: err}
	}
	if len(st.RestWave) != len(st.RestSpec) {
		return nil, &ModelEvaluationError{Op: "spectrum", Err: ErrDimension}
	}
	if len(st.LineWave) != len(st.LineLum) {
		return nil, &ModelEvaluationError{Op: "emission lines", Err: ErrDimension}
	}

	if st.Zred, err = st.Params.Float("zred", 0); err != nil {
		return nil, err
	}
	if st.FluxNorm, err = m.fluxNorm(st); err != nil {
		return nil, err
	}
	st.NormSpec = make([]float64, len(st.RestSpec))
	floats.ScaleTo(st.NormSpec, st.FluxNorm, st.RestSpec)
	m.log.WithFields(logrus.Fields{
		"zred":      st.Zred,
		"flux_norm": st.FluxNorm,
	}).Debug("normalized rest-frame spectrum")

	// Photometry reads the line geometry and luminosities left by the
	// spectral stage.
	spec, err := m.predictSpectrum(st, obs)
	if err != nil {
		return nil, err
	}
	phot, err := m.predictPhotometry(st, obs.Filters)
	if err != nil {
		return nil, err
	}
	m.st = st

	return &Prediction{Spectrum: spec, Photometry: phot, MFrac: st.MFrac}, nil
}

// MeanModel is an alias of Predict.
func (m *Model) MeanModel(p params.Set, obs *Observation) (*Prediction, error) {
	return m.Predict(p, obs)
}

// PredictSpectrum reruns the spectral stage of the last prediction against
// obs. With line marginalization it refits, and updates, the cached line
// luminosities.
func (m *Model) PredictSpectrum(obs *Observation) ([]float64, error) {
	if m.st == nil || m.variant != VariantSpec {
		return nil, ErrNotPredicted
	}
	if obs == nil {
		obs = &Observation{}
	}
	if err := obs.validate(); err != nil {
		return nil, err
	}
	return m.predictSpectrum(m.st, obs)
}

// PredictPhotometry synthesizes photometry from the last prediction.
func (m *Model) PredictPhotometry(filters []*filter.Filter) ([]float64, error) {
	if m.st == nil || m.variant != VariantSpec {
		return nil, ErrNotPredicted
	}
	return m.predictPhotometry(m.st, filters)
}

// State returns a copy of the last prediction context.
func (m *Model) State() (State, error) {
	if m.st == nil {
		return State{}, ErrNotPredicted
	}
	return m.st.clone(), nil
}

// FluxNorm returns the flux normalization of the last prediction.
func (m *Model) FluxNorm() (float64, error) {
	if m.st == nil || m.variant != VariantSpec {
		return 0, ErrNotPredicted
	}
	return m.st.FluxNorm, nil
}

// LnElinePenalty returns the line marginalization log-likelihood term of the
// last prediction, zero when lines were not marginalized.
func (m *Model) LnElinePenalty() (float64, error) {
	if m.st == nil {
		return 0, ErrNotPredicted
	}
	return m.st.LnElinePenalty, nil
}

// ObservedWave redshifts wave with the last prediction's redshift.
func (m *Model) ObservedWave(wave []float64) ([]float64, error) {
	if m.st == nil || m.variant != VariantSpec {
		return nil, ErrNotPredicted
	}
	return ObservedWave(wave, m.st.Zred), nil
}

// ObservedWave returns wave·(1+zred).
func ObservedWave(wave []float64, zred float64) []float64 {
	out := make([]float64, len(wave))
	floats.ScaleTo(out, 1+zred, wave)
	return out
}

// lumDistMpc returns lumdist when set or at zero redshift (1e-5 Mpc, i.e.
// 10 pc, by default) and the cosmological luminosity distance otherwise.
func (m *Model) lumDistMpc(st *State) (float64, error) {
	if st.Zred == 0 || st.Params.Has("lumdist") {
		return st.Params.Float("lumdist", 1e-5)
	}
	return m.cfg.Cosmology.LuminosityDistance(st.Zred), nil
}

// fluxNorm converts Lsun/Hz per solar mass into maggies, including the
// (1+z) stretch of a flux density.
func (m *Model) fluxNorm(st *State) (float64, error) {
	ld, err := m.lumDistMpc(st)
	if err != nil {
		return 0, err
	}
	// Distance in units of 10 pc.
	dfactor := (ld * 1e5) * (ld * 1e5)
	mass, err := st.Params.Sum("mass", 1)
	if err != nil {
		return 0, err
	}
	conv := units.ToCGSAt10pc / units.MaggieCGS * (1 + st.Zred)
	return mass * conv / dfactor, nil
}

func checkLineSettings(p params.Set) error {
	marg, err := p.Bool("marginalize_elines", false)
	if err != nil || !marg {
		return err
	}
	inSpec, err := p.Bool("nebemlineinspec", true)
	if err != nil {
		return err
	}
	if inSpec {
		return ErrLinesEmbedded
	}
	neb, err := p.Bool("add_neb_emission", true)
	if err != nil {
		return err
	}
	if !neb {
		return ErrNebularDisabled
	}
	return nil
}
