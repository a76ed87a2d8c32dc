// Package calib generates the multiplicative calibration vector that maps an
// intrinsic model spectrum onto the instrumental response of an observed
// spectrum.
//
// Strategies are interchangeable through the [Strategy] interface:
//
//   - [Identity]: no calibration, a vector of ones
//   - [Scalar]: an overall normalization from the spec_norm parameter
//   - [ChebyshevFit]: the maximum-likelihood Chebyshev polynomial describing
//     observed/model - 1, refit on every call
//   - [NormalizedChebyshevFit]: as ChebyshevFit but without the constant term,
//     scaled by spec_norm
//   - [ChebyshevCoeffs]: a polynomial whose coefficients are model parameters
//
// Every strategy degrades to its zero-polynomial (or scalar) form when no
// observed spectrum is available.
package calib
