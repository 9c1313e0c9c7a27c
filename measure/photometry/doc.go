// Package photometry integrates spectra through bandpasses and converts
// band fluxes to AB magnitudes.
//
// Band fluxes are photon counts: ∫ N(λ) T(λ) dλ with N the photon flux
// density. Zero points are the band fluxes of a flat 3631 Jy fnu
// spectrum, so a source with the reference spectrum has magnitude 0 in
// every band.
package photometry
