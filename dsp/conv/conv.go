package conv

import (
	"errors"
)

// Errors returned by convolution functions.
var (
	ErrEmptyInput       = errors.New("conv: empty input")
	ErrEmptyKernel      = errors.New("conv: empty kernel")
	ErrLengthMismatch   = errors.New("conv: buffer length mismatch")
	ErrInvalidBlockSize = errors.New("conv: invalid block size")
)

// Mode specifies the output mode for convolution.
type Mode int

const (
	// ModeFull returns the full convolution result with length len(a)+len(b)-1.
	ModeFull Mode = iota

	// ModeSame returns output with the same length as the first input,
	// centered on the kernel.
	ModeSame
)

// Method selects the convolution algorithm.
type Method int

const (
	// MethodAuto chooses by kernel length.
	MethodAuto Method = iota
	// MethodDirect forces time-domain convolution.
	MethodDirect
	// MethodFFT forces FFT overlap-add.
	MethodFFT
)

// directThreshold is the kernel length above which MethodAuto uses the FFT.
const directThreshold = 64

// Direct performs direct linear convolution of a and b.
// Returns a new slice of length len(a) + len(b) - 1.
func Direct(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}
	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	result := make([]float64, len(a)+len(b)-1)
	DirectTo(result, a, b)
	return result, nil
}

// DirectTo performs direct convolution, writing to a pre-allocated destination.
// dst must have length len(a) + len(b) - 1.
func DirectTo(dst, a, b []float64) {
	for i := range dst {
		dst[i] = 0
	}
	for i, av := range a {
		if av == 0 {
			continue
		}
		row := dst[i : i+len(b)]
		for j, bv := range b {
			row[j] += av * bv
		}
	}
}

// Convolve performs linear convolution with automatic algorithm selection.
func Convolve(a, b []float64) ([]float64, error) {
	return ConvolveWith(a, b, MethodAuto)
}

// ConvolveWith performs full linear convolution using the requested method.
func ConvolveWith(a, b []float64, method Method) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}
	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	// Ensure a is the longer signal for efficient processing
	if len(b) > len(a) {
		a, b = b, a
	}

	switch method {
	case MethodDirect:
		return Direct(a, b)
	case MethodFFT:
		return OverlapAddConvolve(a, b)
	default:
		if len(b) <= directThreshold {
			return Direct(a, b)
		}
		return OverlapAddConvolve(a, b)
	}
}

// ConvolveMode performs convolution with specified output mode.
func ConvolveMode(a, b []float64, mode Mode, method Method) ([]float64, error) {
	full, err := ConvolveWith(a, b, method)
	if err != nil {
		return nil, err
	}
	return trimToMode(full, len(a), len(b), mode), nil
}

// trimToMode extracts the appropriate portion of a full convolution result.
func trimToMode(full []float64, lenA, lenB int, mode Mode) []float64 {
	if mode != ModeSame {
		return full
	}
	start := (lenB - 1) / 2
	return full[start : start+lenA]
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
