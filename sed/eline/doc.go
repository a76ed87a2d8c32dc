// Package eline implements the emission-line engine: the reference line
// table, per-prediction line geometry (observed centres, widths, the lines
// eligible for fitting and the output pixels they touch), the unit-area
// Gaussian line basis, and the analytic maximum-likelihood / maximum a
// posteriori amplitude solve used to marginalize over line amplitudes.
//
// Line amplitudes are flux densities integrated over frequency. Every basis
// column therefore integrates to one in magnitude against ν = 3e18/λ, so a
// line of amplitude α contributes α·g(λ) to a spectrum sampled on λ.
package eline
