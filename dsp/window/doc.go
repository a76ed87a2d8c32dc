// Package window generates sampled window functions used as convolution
// kernels.
//
// Windows are evaluated on a normalized position x in [0, 1] across the
// window, symmetric by default or periodic with [WithPeriodic]. The Gaussian
// window is exp(-ln2·((2x-1)·α)²); [GaussianSigma] parameterizes it by a
// dispersion in samples instead of α, which is the form line-spread kernels
// need.
package window
