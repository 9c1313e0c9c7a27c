// Package dust provides parametric Milky Way extinction laws and an
// extinguisher that multiplies their transmission into spectra.
//
// Laws are evaluated in inverse microns. Each family has a validity range;
// the transmission is zero outside it, which truncates extinguished spectra
// to the law's range. Every family here is valid over 0.3 to 10 µm⁻¹, so
// extinguished spectra end at 100 nm in the blue. This reaches further
// into the UV than the F19 law's 8.7 µm⁻¹ edge at about 115 nm.
//
// Supported families:
//   - F99: Fitzpatrick (1999), spline in the optical/IR and the
//     Fitzpatrick & Massa (1990) parametrization in the UV. Default.
//   - CCM89: Cardelli, Clayton & Mathis (1989).
//   - OD94: CCM89 with the O'Donnell (1994) optical coefficients.
package dust
