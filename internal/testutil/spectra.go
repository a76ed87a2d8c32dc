package testutil

import (
	"math"
	"math/rand"
)

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	return out
}

// Logspace returns n wavelengths evenly spaced in ln(lambda) from lo to hi.
func Logspace(lo, hi float64, n int) []float64 {
	ln := Linspace(math.Log(lo), math.Log(hi), n)
	for i, v := range ln {
		ln[i] = math.Exp(v)
	}
	return ln
}

// Constant returns a slice of length n filled with v.
func Constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// PowerLaw returns a smooth continuum amp*(wave/pivot)^slope.
func PowerLaw(wave []float64, amp, pivot, slope float64) []float64 {
	out := make([]float64, len(wave))
	for i, w := range wave {
		out[i] = amp * math.Pow(w/pivot, slope)
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}
