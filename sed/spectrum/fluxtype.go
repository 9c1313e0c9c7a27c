package spectrum

// FluxType identifies the unit family of a spectrum.
type FluxType int

const (
	// FluxPerWavelength is flambda in erg/s/cm²/nm.
	FluxPerWavelength FluxType = iota

	// FluxPerFrequency is fnu in erg/s/cm²/Hz.
	FluxPerFrequency

	// Dimensionless is a pure multiplier such as a dust transmission curve.
	Dimensionless
)

// String returns a short name for the flux type.
func (f FluxType) String() string {
	switch f {
	case FluxPerWavelength:
		return "flambda"
	case FluxPerFrequency:
		return "fnu"
	case Dimensionless:
		return "1"
	default:
		return "unknown"
	}
}

// Interpolant selects how tabulated values are evaluated between points.
type Interpolant int

const (
	// Nearest returns the value of the closest tabulated point.
	Nearest Interpolant = iota

	// Linear interpolates linearly between neighbouring points.
	Linear
)

// String returns the interpolant name.
func (i Interpolant) String() string {
	switch i {
	case Nearest:
		return "nearest"
	case Linear:
		return "linear"
	default:
		return "unknown"
	}
}
