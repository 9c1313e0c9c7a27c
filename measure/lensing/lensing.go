package lensing

import (
	"errors"
	"fmt"
	"math"
)

// ErrSingular is returned when κ = 1 or the magnification denominator is
// not positive, i.e. the source is on or inside a critical curve.
var ErrSingular = errors.New("lensing: singular lensing configuration")

// Params are the weak-lensing observables for one source.
type Params struct {
	G1, G2 float64 // reduced shear
	Mu     float64 // magnification
}

// FromShear returns g = γ/(1-κ) and μ = 1/((1-κ)² - |γ|²).
func FromShear(gamma1, gamma2, kappa float64) (Params, error) {
	for _, v := range []float64{gamma1, gamma2, kappa} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Params{}, fmt.Errorf("%w: non-finite input %v", ErrSingular, v)
		}
	}
	if kappa == 1 {
		return Params{}, fmt.Errorf("%w: kappa = 1", ErrSingular)
	}
	oneMinus := 1 - kappa
	det := oneMinus*oneMinus - (gamma1*gamma1 + gamma2*gamma2)
	if !(det > 0) {
		return Params{}, fmt.Errorf("%w: (1-kappa)^2 - |gamma|^2 = %v", ErrSingular, det)
	}
	return Params{
		G1: gamma1 / oneMinus,
		G2: gamma2 / oneMinus,
		Mu: 1 / det,
	}, nil
}

// Identity returns the unlensed parameters.
func Identity() Params { return Params{Mu: 1} }

// G returns the reduced-shear magnitude.
func (p Params) G() float64 { return math.Hypot(p.G1, p.G2) }

// MagnitudeShift returns the magnitude change -2.5 log10(μ).
func (p Params) MagnitudeShift() float64 { return -2.5 * math.Log10(p.Mu) }
