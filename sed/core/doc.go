// Package core holds the physical constants, unit conversions and small
// numeric helpers shared by the SED packages.
//
// Wavelengths are in nanometres unless a name says otherwise. Flux densities
// are cgs: erg/s/cm²/nm for flambda and erg/s/cm²/Hz for fnu.
package core
