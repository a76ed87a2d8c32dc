// Package conv provides the linear convolution routines behind spectral
// smoothing.
//
// Two strategies are available:
//
//   - Direct convolution: simple O(N*M) time-domain convolution, best for short kernels
//   - Overlap-add (OLA): FFT-based block convolution, efficient for long spectra
//     convolved with broad line-spread kernels
//
// [Convolve] picks between them by kernel length; [ConvolveWith] lets the caller
// force one (the smoothing layer exposes this as its FFT switch).
//
// # Weight-normalized convolution
//
// Smoothing a spectrum that is truncated at the grid edges, or that carries
// masked pixels, must not lose flux near those edges. [SameNormalized] divides
// the convolution of weight·signal by the convolution of the weights, so a
// constant input stays exactly constant everywhere the kernel touches a
// weighted sample:
//
//	out, err := conv.SameNormalized(spec, nil, kernel, conv.MethodFFT)
package conv
