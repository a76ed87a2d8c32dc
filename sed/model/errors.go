package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotPredicted is returned by accessors before the first Predict.
	ErrNotPredicted = errors.New("model: no prediction has been made")
	// ErrLinesEmbedded is returned when line marginalization is requested
	// but the source already includes lines in its spectrum.
	ErrLinesEmbedded = errors.New("model: marginalize_elines requires nebemlineinspec=false")
	// ErrNebularDisabled is returned when line marginalization is requested
	// with nebular emission turned off.
	ErrNebularDisabled = errors.New("model: marginalize_elines requires add_neb_emission=true")
	// ErrObservation is returned for inconsistent observation arrays.
	ErrObservation = errors.New("model: invalid observation")
	// ErrNoSource is returned when a model is built without a source.
	ErrNoSource = errors.New("model: nil synthesis source")
	// ErrDimension is returned when batch inputs disagree in length.
	ErrDimension = errors.New("model: dimension mismatch")
	// ErrNilModel is returned when PredictAll receives a nil model.
	ErrNilModel = errors.New("model: nil model")
	// ErrSharedModel is returned when PredictAll receives the same model twice.
	ErrSharedModel = errors.New("model: model instance used more than once")

	errNoPositiveFlux = errors.New("model: spectrum has no positive flux")
)

// ModelEvaluationError reports a synthesis source failure.
type ModelEvaluationError struct {
	Op  string
	Err error
}

func (e *ModelEvaluationError) Error() string {
	return fmt.Sprintf("model: evaluate %s: %v", e.Op, e.Err)
}

func (e *ModelEvaluationError) Unwrap() error { return e.Err }
