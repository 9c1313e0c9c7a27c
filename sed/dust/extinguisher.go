package dust

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-sed/sed/core"
	"github.com/cwbudde/algo-sed/sed/spectrum"
)

var (
	// ErrNegativeAv is returned for negative or non-finite Av.
	ErrNegativeAv = errors.New("dust: Av must be finite and >= 0")
	// ErrGridTooSmall is returned when fewer than two grid points fall
	// inside the law's range.
	ErrGridTooSmall = errors.New("dust: fewer than two grid points inside the law's range")
)

// Extinguisher applies a fixed law on a fixed wavelength sub-grid. It is
// immutable and safe for concurrent use.
type Extinguisher struct {
	law  Law
	wave []float64
	alav []float64
}

// NewExtinguisher keeps the points of grid (nm, increasing) strictly
// inside the law's wavelength range and precomputes A/Av on them.
func NewExtinguisher(grid []float64, law Law) (*Extinguisher, error) {
	if law == nil {
		return nil, fmt.Errorf("%w: nil law", ErrUnknownFamily)
	}
	lo, hi := law.WaveRange()
	wave := make([]float64, 0, len(grid))
	for _, w := range grid {
		if w > lo && w < hi {
			wave = append(wave, w)
		}
	}
	if len(wave) < 2 {
		return nil, fmt.Errorf("%w: %d points in (%g, %g) nm", ErrGridTooSmall, len(wave), lo, hi)
	}

	alav := make([]float64, len(wave))
	for i, w := range wave {
		alav[i] = law.AlAv(1e3 / w)
	}
	return &Extinguisher{law: law, wave: wave, alav: alav}, nil
}

// Law returns the extinction law.
func (e *Extinguisher) Law() Law { return e.law }

// Wavelengths returns a copy of the restricted grid in nm.
func (e *Extinguisher) Wavelengths() []float64 {
	out := make([]float64, len(e.wave))
	copy(out, e.wave)
	return out
}

// Curve returns the dimensionless transmission at av on the restricted
// grid, with nearest-neighbour interpolation.
func (e *Extinguisher) Curve(av float64) (*spectrum.Spectrum, error) {
	if !(av >= 0) || math.IsInf(av, 0) {
		return nil, fmt.Errorf("%w: %v", ErrNegativeAv, av)
	}
	trans := make([]float64, len(e.alav))
	for i, a := range e.alav {
		trans[i] = core.MagToFluxRatio(av * a)
	}
	return spectrum.New(e.wave, trans, spectrum.Dimensionless)
}

// Extinguish returns s multiplied by the transmission at av. The result is
// zero outside the restricted grid.
func (e *Extinguisher) Extinguish(s *spectrum.Spectrum, av float64) (*spectrum.Spectrum, error) {
	curve, err := e.Curve(av)
	if err != nil {
		return nil, err
	}
	return s.Multiply(curve)
}
