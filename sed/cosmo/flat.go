package cosmo

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-sed/sed/core"
	"gonum.org/v1/gonum/integrate/quad"
)

// quadraturePoints is the Gauss–Legendre order used for the distance
// integral. The integrand is smooth and monotone, so 64 points reach double
// precision well past z = 10.
const quadraturePoints = 64

var (
	// ErrNegativeRedshift is returned for z < 0 or NaN.
	ErrNegativeRedshift = errors.New("cosmo: redshift must be >= 0")
	// ErrInvalidParams is wrapped by parameter validation errors.
	ErrInvalidParams = errors.New("cosmo: invalid cosmological parameters")
)

// DistanceModel is what the SED engine needs from a cosmology.
type DistanceModel interface {
	// LuminosityDistance returns d_L(z) in metres.
	LuminosityDistance(z float64) (float64, error)
}

// Params are the named parameters of a flat ΛCDM model.
type Params struct {
	H0    float64 // Hubble constant, km/s/Mpc
	Om0   float64 // matter density today
	Ob0   float64 // baryon density today; carried for reference, not used
	Tcmb0 float64 // CMB temperature today, K; must be 0
}

// Validate checks that p describes a supported model.
func (p Params) Validate() error {
	switch {
	case !(p.H0 > 0) || math.IsInf(p.H0, 0):
		return fmt.Errorf("%w: H0 must be > 0: %v", ErrInvalidParams, p.H0)
	case !(p.Om0 > 0) || p.Om0 > 1:
		return fmt.Errorf("%w: Om0 must be in (0, 1]: %v", ErrInvalidParams, p.Om0)
	case !(p.Ob0 >= 0) || p.Ob0 > p.Om0:
		return fmt.Errorf("%w: Ob0 must be in [0, Om0]: %v", ErrInvalidParams, p.Ob0)
	case p.Tcmb0 != 0:
		return fmt.Errorf("%w: radiation is not modelled, Tcmb0 must be 0: %v", ErrInvalidParams, p.Tcmb0)
	}
	return nil
}

// FlatLambdaCDM is an immutable flat matter + Λ cosmology.
type FlatLambdaCDM struct {
	params Params
	ode0   float64
	dh     float64 // Hubble distance, Mpc
}

var _ DistanceModel = (*FlatLambdaCDM)(nil)

// NewFlatLambdaCDM validates p and returns the model.
func NewFlatLambdaCDM(p Params) (*FlatLambdaCDM, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &FlatLambdaCDM{
		params: p,
		ode0:   1 - p.Om0,
		dh:     core.SpeedOfLight / 1e3 / p.H0,
	}, nil
}

// Params returns the model parameters.
func (c *FlatLambdaCDM) Params() Params { return c.params }

// Ode0 returns the dark-energy density today, 1 - Om0.
func (c *FlatLambdaCDM) Ode0() float64 { return c.ode0 }

// HubbleDistance returns c/H0 in Mpc.
func (c *FlatLambdaCDM) HubbleDistance() float64 { return c.dh }

// E returns H(z)/H0.
func (c *FlatLambdaCDM) E(z float64) float64 {
	zp1 := 1 + z
	return math.Sqrt(c.params.Om0*zp1*zp1*zp1 + c.ode0)
}

// ComovingDistance returns the line-of-sight comoving distance in Mpc.
func (c *FlatLambdaCDM) ComovingDistance(z float64) (float64, error) {
	if err := checkRedshift(z); err != nil {
		return 0, err
	}
	if z == 0 {
		return 0, nil
	}
	inv := func(x float64) float64 { return 1 / c.E(x) }
	return c.dh * quad.Fixed(inv, 0, z, quadraturePoints, quad.Legendre{}, 0), nil
}

// LuminosityDistance returns d_L(z) in metres.
func (c *FlatLambdaCDM) LuminosityDistance(z float64) (float64, error) {
	dc, err := c.ComovingDistance(z)
	if err != nil {
		return 0, err
	}
	return (1 + z) * dc * core.MpcToMeter, nil
}

// LuminosityDistanceMpc returns d_L(z) in Mpc.
func (c *FlatLambdaCDM) LuminosityDistanceMpc(z float64) (float64, error) {
	dc, err := c.ComovingDistance(z)
	if err != nil {
		return 0, err
	}
	return (1 + z) * dc, nil
}

func checkRedshift(z float64) error {
	if !(z >= 0) || math.IsInf(z, 1) {
		return fmt.Errorf("%w: %v", ErrNegativeRedshift, z)
	}
	return nil
}
