// Package bins derives the wavelength grids used by the SED engine from a
// catalog's coarse tophat bins.
//
// A [Geometry] holds the N+1 bin boundaries in nanometres and hertz, the
// index of the bin containing 500 nm, and a fine "delta" grid. The delta grid
// repeats each boundary pair with the right edge pulled in by deltaWL so a
// nearest-neighbour lookup steps between bins without duplicate abscissae. It
// is prefixed with integer-nanometre points from 0 up to the first bin edge
// so that strongly redshifted sources still evaluate to zero there.
//
// A Geometry is built once per catalog configuration and is safe for
// concurrent use.
package bins
