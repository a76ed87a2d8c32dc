// Package smooth broadens model spectra with a Gaussian line-spread function
// and resamples them onto an output wavelength grid.
//
// The kernel width is given either as a velocity dispersion (km/s), as a
// resolving power R = c/σ_v, or as a wavelength dispersion (Å). Velocity and
// resolving-power smoothing operate in ln λ, wavelength smoothing in λ. Two
// equivalent algorithms are provided: a direct per-pixel weighted integral
// and an FFT convolution on a uniformly resampled grid.
package smooth

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate"

	"github.com/cwbudde/algo-sed/dsp/conv"
	"github.com/cwbudde/algo-sed/dsp/interp"
	"github.com/cwbudde/algo-sed/dsp/window"
	"github.com/cwbudde/algo-sed/sed/params"
	"github.com/cwbudde/algo-sed/sed/units"
)

// Type selects how Options.Resolution is interpreted.
type Type string

const (
	Velocity   Type = "vel"
	Resolving  Type = "R"
	Wavelength Type = "lambda"
)

// maxGrid bounds the length of the uniform resampling grid used by the FFT path.
const maxGrid = 1 << 20

var (
	ErrLengthMismatch = errors.New("smooth: wave and spec length mismatch")
	ErrTooShort       = errors.New("smooth: need at least two input pixels")
	ErrResolution     = errors.New("smooth: instrumental resolution exceeds target resolution")
	ErrUnknownType    = errors.New("smooth: unknown smoothing type")
)

// Options configures a smoothing call.
type Options struct {
	Resolution float64 // km/s (vel), R (R) or Å (lambda)
	Type       Type
	FFT        bool
	MinWave    float64 // input pixels bluer than this are ignored
	MaxWave    float64 // input pixels redder than this are ignored
	NSigma     float64 // kernel truncation in units of its dispersion
	InRes      float64 // resolution already present in the input, same units
}

// DefaultOptions returns 100 km/s velocity smoothing using the FFT path.
func DefaultOptions() Options {
	return Options{
		Resolution: 100,
		Type:       Velocity,
		FFT:        true,
		MinWave:    0,
		MaxWave:    math.Inf(1),
		NSigma:     10,
	}
}

// OptionsFromParams reads sigma_smooth, smoothtype, fftsmooth,
// min_wave_smooth, max_wave_smooth and inres from p on top of the defaults.
func OptionsFromParams(p params.Set) (Options, error) {
	opt := DefaultOptions()
	var err error
	if opt.Resolution, err = p.Float("sigma_smooth", opt.Resolution); err != nil {
		return opt, err
	}
	typ, err := p.String("smoothtype", string(opt.Type))
	if err != nil {
		return opt, err
	}
	opt.Type = Type(typ)
	if opt.FFT, err = p.Bool("fftsmooth", opt.FFT); err != nil {
		return opt, err
	}
	if opt.MinWave, err = p.Float("min_wave_smooth", opt.MinWave); err != nil {
		return opt, err
	}
	if opt.MaxWave, err = p.Float("max_wave_smooth", opt.MaxWave); err != nil {
		return opt, err
	}
	if opt.InRes, err = p.Float("inres", opt.InRes); err != nil {
		return opt, err
	}
	return opt, nil
}

// Smoother resamples a spectrum onto outwave with instrumental broadening.
type Smoother interface {
	Smooth(wave, spec, outwave []float64, opt Options) ([]float64, error)
}

// Gaussian is the default Smoother.
type Gaussian struct{}

// Smooth implements Smoother.
func (Gaussian) Smooth(wave, spec, outwave []float64, opt Options) ([]float64, error) {
	return Smooth(wave, spec, outwave, opt)
}

// Smooth broadens (wave, spec) and returns one flux per outwave element. A nil
// outwave means the input grid. wave must be increasing.
func Smooth(wave, spec, outwave []float64, opt Options) ([]float64, error) {
	if len(wave) != len(spec) {
		return nil, ErrLengthMismatch
	}
	if len(wave) < 2 {
		return nil, ErrTooShort
	}
	if outwave == nil {
		outwave = wave
	}
	if opt.NSigma <= 0 {
		opt.NSigma = DefaultOptions().NSigma
	}
	if opt.MaxWave == 0 {
		opt.MaxWave = math.Inf(1)
	}

	width, logSpace, err := kernelWidth(opt)
	if err != nil {
		return nil, err
	}
	if width <= 0 {
		return interp.Edges(outwave, wave, spec)
	}

	x, s := restrict(wave, spec, outwave, width, logSpace, opt)
	if len(x) < 2 {
		// Nothing to smooth over; fall back to resampling the full input.
		return interp.Edges(outwave, wave, spec)
	}

	xout := make([]float64, len(outwave))
	for i, w := range outwave {
		xout[i] = toX(w, logSpace)
	}

	if opt.FFT {
		return smoothFFT(x, s, xout, width, opt.NSigma)
	}
	return smoothDirect(x, s, xout, width, opt.NSigma), nil
}

// kernelWidth returns the Gaussian dispersion in x units (ln λ or Å).
func kernelWidth(opt Options) (float64, bool, error) {
	var sigma, inres float64
	logSpace := true
	switch opt.Type {
	case Velocity, "":
		sigma, inres = opt.Resolution, opt.InRes
	case Resolving:
		if opt.Resolution <= 0 {
			return 0, true, nil
		}
		sigma = units.CKMS / opt.Resolution
		if opt.InRes > 0 {
			inres = units.CKMS / opt.InRes
		}
	case Wavelength:
		sigma, inres = opt.Resolution, opt.InRes
		logSpace = false
	default:
		return 0, false, fmt.Errorf("%w: %q", ErrUnknownType, opt.Type)
	}

	effSq := sigma*sigma - inres*inres
	if effSq < 0 {
		return 0, logSpace, ErrResolution
	}
	if sigma <= 0 {
		return 0, logSpace, nil
	}
	eff := math.Sqrt(effSq)
	if logSpace {
		eff /= units.CKMS
	}
	return eff, logSpace, nil
}

func toX(w float64, logSpace bool) float64 {
	if logSpace {
		return math.Log(w)
	}
	return w
}

// restrict drops input pixels that cannot contribute to any output pixel.
func restrict(wave, spec, outwave []float64, width float64, logSpace bool, opt Options) ([]float64, []float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, w := range outwave {
		x := toX(w, logSpace)
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	pad := opt.NSigma * width
	lo -= pad
	hi += pad

	x := make([]float64, 0, len(wave))
	s := make([]float64, 0, len(wave))
	for i, w := range wave {
		if w < opt.MinWave || w > opt.MaxWave || w <= 0 && logSpace {
			continue
		}
		xi := toX(w, logSpace)
		if xi < lo || xi > hi {
			continue
		}
		x = append(x, xi)
		s = append(s, spec[i])
	}
	return x, s
}

// smoothDirect evaluates ∫ G(x0-x) s(x) dx / ∫ G(x0-x) dx at every output point.
func smoothDirect(x, s, xout []float64, width, nsigma float64) []float64 {
	out := make([]float64, len(xout))
	xs := make([]float64, 0, len(x))
	fs := make([]float64, 0, len(x))
	gs := make([]float64, 0, len(x))
	for i, x0 := range xout {
		xs, fs, gs = xs[:0], fs[:0], gs[:0]
		for j, xj := range x {
			u := (x0 - xj) / width
			if math.Abs(u) >= nsigma {
				continue
			}
			g := math.Exp(-0.5 * u * u)
			xs = append(xs, xj)
			gs = append(gs, g)
			fs = append(fs, g*s[j])
		}
		if len(xs) < 2 {
			out[i] = interp.LinearAt(x0, x, s, s[0], s[len(s)-1])
			continue
		}
		den := integrate.Trapezoidal(xs, gs)
		if den == 0 {
			out[i] = interp.LinearAt(x0, x, s, s[0], s[len(s)-1])
			continue
		}
		out[i] = integrate.Trapezoidal(xs, fs) / den
	}
	return out
}

// smoothFFT resamples onto a uniform grid, convolves there, and interpolates
// back onto xout.
func smoothFFT(x, s, xout []float64, width, nsigma float64) ([]float64, error) {
	dxMin := math.Inf(1)
	for i := 1; i < len(x); i++ {
		if d := x[i] - x[i-1]; d > 0 && d < dxMin {
			dxMin = d
		}
	}
	span := x[len(x)-1] - x[0]
	n := nextPow2(int(math.Ceil(span/dxMin)) + 1)
	n = min(max(n, 2), maxGrid)
	dx := span / float64(n-1)

	grid := make([]float64, n)
	for i := range grid {
		grid[i] = x[0] + dx*float64(i)
	}
	grid[n-1] = x[len(x)-1]
	sg, err := interp.Edges(grid, x, s)
	if err != nil {
		return nil, err
	}

	half := int(math.Ceil(nsigma * width / dx))
	if half < 1 {
		return interp.Edges(xout, grid, sg)
	}
	kernel, err := window.GaussianSigma(half, width/dx, window.WithUnitSum())
	if err != nil {
		return nil, fmt.Errorf("smooth: kernel: %w", err)
	}

	smoothed, err := conv.SameNormalized(sg, nil, kernel, conv.MethodFFT)
	if err != nil {
		return nil, fmt.Errorf("smooth: %w", err)
	}
	return interp.Edges(xout, grid, smoothed)
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
