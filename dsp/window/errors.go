package window

import (
	"errors"
	"fmt"
)

var errEmptyCoeffs = errors.New("window coefficients must not be empty")

func validateLength(size int) error {
	if size <= 0 {
		return fmt.Errorf("window size must be > 0: %d", size)
	}

	return nil
}

func validateGauss(size int, alpha float64) error {
	if size <= 0 {
		return validateLength(size)
	}

	if alpha <= 0 {
		return fmt.Errorf("gauss alpha must be > 0: %f", alpha)
	}

	return nil
}

func validateSigma(half int, sigma float64) error {
	if half < 0 {
		return fmt.Errorf("window half-width must be >= 0: %d", half)
	}

	if sigma <= 0 {
		return fmt.Errorf("gauss sigma must be > 0: %f", sigma)
	}

	return nil
}
