// Package observed reconstructs observer-frame SEDs from catalog tophat
// luminosity densities.
//
// A Factory is built once per catalog configuration from a bin geometry and
// a distance model. Create converts per-bin Lnu values into a piecewise
// constant flambda spectrum on the geometry's delta grid, dims it by the
// luminosity distance at the Hubble-flow redshift and shifts it to the
// observed redshift. A Factory is never mutated after construction and is
// safe for concurrent use.
//
// Library loads tabulated point-source SEDs from an injected file system.
package observed
