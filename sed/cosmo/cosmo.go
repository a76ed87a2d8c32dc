// Package cosmo computes luminosity distances in a flat ΛCDM universe. The
// default parameters follow the WMAP 9-year cosmology.
package cosmo

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// SpeedOfLight in km/s (exact SI value, used for the Hubble distance).
const SpeedOfLight = 299792.458

// Photon density parameter times h² for Tcmb = 1 K, scaled by Tcmb⁴.
const omegaGammaH2PerK4 = 2.4711e-5 / (2.725 * 2.725 * 2.725 * 2.725)

// Massless neutrino energy density per effective species relative to photons.
const nuPerSpecies = 0.22710731766

// quadPoints is the Gauss-Legendre order used for the distance integral.
const quadPoints = 128

// Cosmology describes a flat ΛCDM model.
type Cosmology struct {
	H0    float64 // km/s/Mpc
	Om0   float64 // matter density today
	Tcmb0 float64 // K; zero disables radiation
	Neff  float64 // effective neutrino species (massless)
}

// WMAP9 is the default cosmology.
var WMAP9 = Cosmology{H0: 69.32, Om0: 0.2865, Tcmb0: 2.725, Neff: 3.04}

// OmegaRadiation returns the photon + massless-neutrino density today.
func (c Cosmology) OmegaRadiation() float64 {
	if c.Tcmb0 <= 0 {
		return 0
	}
	h := c.H0 / 100
	t2 := c.Tcmb0 * c.Tcmb0
	og := omegaGammaH2PerK4 * t2 * t2 / (h * h)
	return og * (1 + nuPerSpecies*c.Neff)
}

// E returns H(z)/H0.
func (c Cosmology) E(z float64) float64 {
	or := c.OmegaRadiation()
	ode := 1 - c.Om0 - or
	zp1 := 1 + z
	return math.Sqrt(c.Om0*zp1*zp1*zp1 + or*zp1*zp1*zp1*zp1 + ode)
}

// HubbleDistance returns c/H0 in Mpc.
func (c Cosmology) HubbleDistance() float64 {
	return SpeedOfLight / c.H0
}

// ComovingDistance returns the line-of-sight comoving distance to z in Mpc.
func (c Cosmology) ComovingDistance(z float64) float64 {
	if z <= 0 {
		return 0
	}
	integral := quad.Fixed(func(x float64) float64 {
		return 1 / c.E(x)
	}, 0, z, quadPoints, nil, 0)
	return c.HubbleDistance() * integral
}

// LuminosityDistance returns the luminosity distance to z in Mpc.
func (c Cosmology) LuminosityDistance(z float64) float64 {
	return (1 + z) * c.ComovingDistance(z)
}
