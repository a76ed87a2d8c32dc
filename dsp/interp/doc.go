// Package interp provides piecewise-linear interpolation on irregular grids,
// the workhorse used to resample spectra, filter curves and calibration
// vectors between wavelength grids.
//
//   - [Linear]:   interpolate a whole grid with explicit left/right fill values
//   - [LinearAt]: a single point
//   - [Edges]:    convenience fill using the first/last sample values
//
// The abscissa xp must be increasing. Points outside [xp[0], xp[n-1]] take the
// supplied fill values, which lets callers treat a filter curve as zero
// outside its definition.
package interp
