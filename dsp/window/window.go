package window

import "math"

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeGauss
)

// Option configures window generation.
type Option func(*config)

type config struct {
	alpha     float64
	periodic  bool
	normalize bool
}

func defaultConfig() config {
	return config{
		alpha: 1,
	}
}

// WithAlpha configures the width parameter of the Gaussian window.
func WithAlpha(v float64) Option {
	return func(c *config) {
		if v >= 0 {
			c.alpha = v
		}
	}
}

// WithPeriodic configures periodic form instead of symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// WithUnitSum scales the coefficients to sum to one.
func WithUnitSum() Option {
	return func(c *config) {
		c.normalize = true
	}
}

// Generate returns window coefficients of the given length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	cfg := defaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)
	for i := range out {
		x := samplePosition(i, length, cfg.periodic)
		out[i] = evalWindow(t, x, cfg)
	}

	postProcess(out, cfg)

	return out
}

// Gaussian returns Gaussian window coefficients.
func Gaussian(size int, alpha float64, opts ...Option) ([]float64, error) {
	if size <= 0 || alpha <= 0 {
		return nil, validateGauss(size, alpha)
	}

	return Generate(TypeGauss, size, append(opts, WithAlpha(alpha))...), nil
}

// GaussianSigma returns the symmetric Gaussian window of 2·half+1 samples
// whose k-th coefficient from the centre is exp(-½·(k/sigma)²), with sigma
// in samples. half 0 gives the single coefficient 1.
func GaussianSigma(half int, sigma float64, opts ...Option) ([]float64, error) {
	if half < 0 || sigma <= 0 {
		return nil, validateSigma(half, sigma)
	}

	if half == 0 {
		return Generate(TypeRectangular, 1, opts...), nil
	}

	alpha := float64(half) / (sigma * math.Sqrt(2*math.Ln2))

	return Gaussian(2*half+1, alpha, opts...)
}

// Sum returns the sum of the coefficients.
func Sum(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmptyCoeffs
	}

	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}

	return sum, nil
}

func evalWindow(t Type, x float64, cfg config) float64 {
	if x < 0 {
		x = 0
	}

	if x > 1 {
		x = 1
	}

	switch t {
	case TypeGauss:
		v := (2*x - 1) * cfg.alpha
		return math.Exp(-math.Ln2 * v * v)
	default:
		return 1
	}
}

func postProcess(coeffs []float64, cfg config) {
	if cfg.normalize {
		sum, err := Sum(coeffs)
		if err != nil || sum == 0 {
			return
		}

		for i := range coeffs {
			coeffs[i] /= sum
		}
	}
}

func samplePosition(n, size int, periodic bool) float64 {
	if size <= 1 {
		return 0
	}

	den := float64(size - 1)
	if periodic {
		den = float64(size)
	}

	return float64(n) / den
}
