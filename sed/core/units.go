package core

// Physical constants.
const (
	SpeedOfLight = 299792458.0    // m/s
	Planck       = 6.62607015e-27 // erg s
	Jansky       = 1e-26          // W/m²/Hz
	MpcToMeter   = 3.085677581491367e+22
	ABZeroPoint  = 3631e-23 // erg/s/cm²/Hz, 3631 Jy
)

// Catalog and unit conversion factors.
const (
	// TophatToWPerHz converts cosmoDC2-style tophat Lnu values to W/Hz.
	TophatToWPerHz = 4.4659e13

	// SIToCGSFlux converts W/m²/nm to erg/s/cm²/nm:
	// (1e7 erg/J) * (1e-4 m²/cm²).
	SIToCGSFlux = 1e7 / 1e4

	// FloatResolution is the float64 resolution (numpy finfo(float).resolution).
	// Tophat arrays whose largest value is below it carry no measurable emission.
	FloatResolution = 1e-15

	// PivotWavelengthAngstrom is the wavelength used to pick the
	// normalization bin.
	PivotWavelengthAngstrom = 5000.0

	// ABOffsetJy is the AB magnitude of a 1 Jy source.
	ABOffsetJy = 8.90
)

// SpeedOfLightNM is the speed of light in nm/s.
const SpeedOfLightNM = SpeedOfLight * 1e9

// HC is Planck's constant times the speed of light in erg nm.
const HC = Planck * SpeedOfLightNM

// AngstromToNM converts a wavelength in Ångström to nanometres.
func AngstromToNM(a float64) float64 {
	return a / 10
}

// NMToHz converts a vacuum wavelength in nanometres to a frequency in Hz.
// Returns +Inf for zero wavelength.
func NMToHz(nm float64) float64 {
	return SpeedOfLight / (nm * 1e-9)
}

// InverseMicronToNM converts a wavenumber in 1/µm to a wavelength in nm.
func InverseMicronToNM(x float64) float64 {
	return 1e3 / x
}

// NMToInverseMicron converts a wavelength in nm to a wavenumber in 1/µm.
func NMToInverseMicron(nm float64) float64 {
	return 1e3 / nm
}
