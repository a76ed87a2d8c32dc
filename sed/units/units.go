// Package units holds the physical constants and conversions used to turn
// intrinsic luminosity densities into observed fluxes.
package units

import "math"

const (
	// LSun is the solar luminosity in erg/s.
	LSun = 3.846e33
	// Parsec in cm.
	Parsec = 3.085677581467192e18
	// JanskyCGS is one Jansky in erg/s/cm²/Hz.
	JanskyCGS = 1e-23
	// Lightspeed in Å/s.
	Lightspeed = 2.998e18
	// CKMS is the speed of light in km/s.
	CKMS = 2.998e5
	// MaggieCGS is the AB zero-point flux density (3631 Jy) in erg/s/cm²/Hz.
	MaggieCGS = 3631 * JanskyCGS
	// FreqProxy converts Å to Hz (ν = FreqProxy/λ) for the line basis
	// normalization.
	FreqProxy = 3e18
)

// ToCGSAt10pc converts Lsun/Hz to erg/s/cm²/Hz for a source at 10 pc.
var ToCGSAt10pc = LSun / (4 * math.Pi * (10 * Parsec) * (10 * Parsec))

// FnuToFlambda converts maggies at wavelength λ (Å) to erg/s/cm²/Å.
func FnuToFlambda(maggies, wave float64) float64 {
	return maggies * Lightspeed / (wave * wave) * MaggieCGS
}

// MagToMaggies converts an AB magnitude to maggies.
func MagToMaggies(mag float64) float64 {
	return math.Pow(10, -0.4*mag)
}

// MaggiesToMag converts maggies to an AB magnitude.
func MaggiesToMag(maggies float64) float64 {
	return -2.5 * math.Log10(maggies)
}
