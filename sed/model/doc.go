// Package model turns astrophysical parameters into predicted observables.
//
// A Model binds a synthesis source and a calibration strategy. Each call to
// Predict runs the pipeline in a fixed order and records every intermediate
// product in a State:
//
//  1. the source is asked for a rest-frame spectrum and emission lines
//  2. the spectrum is scaled by the flux normalization (mass, distance, 1+z)
//  3. the spectrum is redshifted, smoothed onto the output grid and calibrated
//  4. emission lines are either fitted and marginalized, injected, or left
//     to the source
//  5. photometry is synthesized through the requested filters, reusing the
//     normalization and any corrected line luminosities from step 4
//
// The direct-synthesis variant (NewSedModel) instead asks the source for an
// observed-frame spectrum and photometry and only applies normalization,
// flooring, sky and calibration.
//
// A Model is not safe for concurrent use; run independent instances in
// parallel with PredictAll.
package model
