// Package spectrum provides an immutable flux-density spectrum.
//
// A [Spectrum] is a rest-frame function of wavelength (nm), either a
// tabulated lookup with nearest-neighbour or linear interpolation or an
// analytic function, tagged with a [FluxType] and a redshift. Every
// transformation ([Spectrum.AtRedshift], [Spectrum.Multiply],
// [Spectrum.Scale]) returns a new value, so spectra can be shared freely
// between goroutines.
//
// Evaluation happens in the observer frame: the flux at λ is the rest-frame
// flux at λ/(1+z), times any multiplicative factors. Tabulated spectra are
// zero outside their support.
package spectrum
