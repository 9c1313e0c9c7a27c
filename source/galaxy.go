package source

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-sed/measure/lensing"
	"github.com/cwbudde/algo-sed/sed/observed"
	"github.com/cwbudde/algo-sed/sed/spectrum"
)

// Galaxy is a multi-component catalog galaxy.
type Galaxy struct {
	id      string
	attrs   Attributes
	session *Session
}

var _ Object = (*Galaxy)(nil)

// NewGalaxy wraps attrs.
func NewGalaxy(id string, attrs Attributes, s *Session) *Galaxy {
	return &Galaxy{id: id, attrs: attrs, session: s}
}

func (g *Galaxy) ID() string { return g.id }
func (g *Galaxy) Kind() Kind { return KindGalaxy }

// Subcomponents returns the components with SED values in the catalog.
func (g *Galaxy) Subcomponents() []Component {
	var out []Component
	for _, c := range Components {
		if _, ok := g.attrs.Floats(sedAttr(c)); ok {
			out = append(out, c)
		}
	}
	return out
}

func sedAttr(c Component) string { return "sed_val_" + c.String() }

// SED returns the unextinguished observer-frame SED of c and its mag_norm.
// Components without measurable emission return (nil, 0, nil).
func (g *Galaxy) SED(c Component) (*spectrum.Spectrum, float64, error) {
	if !c.valid() {
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownComponent, int(c))
	}
	lnu, ok := g.attrs.Floats(sedAttr(c))
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrComponentUnavailable, c)
	}
	zH, err := requireFloat(g.attrs, "redshift_hubble")
	if err != nil {
		return nil, 0, err
	}
	z, err := requireFloat(g.attrs, "redshift")
	if err != nil {
		return nil, 0, err
	}

	var opts []observed.Option
	if r := g.session.opts.Resolution; r > 0 {
		opts = append(opts, observed.WithResolution(r))
	}
	return g.session.factory.Create(lnu, zH, z, opts...)
}

// ObserverSED returns the SED of c after extinction, or nil when the
// component has no measurable emission.
func (g *Galaxy) ObserverSED(c Component) (*spectrum.Spectrum, error) {
	sed, _, err := g.SED(c)
	if err != nil || sed == nil {
		return nil, err
	}
	return g.session.applyDust(g.attrs, sed)
}

// Emissions returns the extinguished SED of every emitting subcomponent.
func (g *Galaxy) Emissions() ([]Emission, error) {
	var out []Emission
	for _, c := range g.Subcomponents() {
		sed, magNorm, err := g.SED(c)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", g.id, c, err)
		}
		if sed == nil {
			continue
		}
		if sed, err = g.session.applyDust(g.attrs, sed); err != nil {
			return nil, fmt.Errorf("%s %s: %w", g.id, c, err)
		}
		out = append(out, Emission{Component: c.String(), SED: sed, MagNorm: magNorm})
	}
	return out, nil
}

// Lensing returns the reduced shear and magnification from shear_1,
// shear_2 and convergence.
func (g *Galaxy) Lensing() (lensing.Params, error) {
	var v [3]float64
	for i, name := range []string{"shear_1", "shear_2", "convergence"} {
		f, err := requireFloat(g.attrs, name)
		if err != nil {
			return lensing.Params{}, err
		}
		v[i] = f
	}
	return lensing.FromShear(v[0], v[1], v[2])
}

// ProfileKind is the light-profile family of a component.
type ProfileKind int

const (
	ProfileSersic ProfileKind = iota
	ProfileKnots
)

func (k ProfileKind) String() string {
	switch k {
	case ProfileSersic:
		return "sersic"
	case ProfileKnots:
		return "knots"
	default:
		return "unknown"
	}
}

// Profile describes one component's light profile for a renderer.
type Profile struct {
	Component Component
	Kind      ProfileKind
	// SersicIndex is quantized to 0.05. Zero for knots.
	SersicIndex float64
	// NKnots is the knot count. Zero for Sersic profiles.
	NKnots          int
	HalfLightRadius float64
	// Intrinsic shear (g1, g2) = (-e1, -e2).
	Shear1, Shear2 float64
	Lensing        lensing.Params
}

// Profiles describes each requested component. With no arguments every
// subcomponent in the catalog is described.
func (g *Galaxy) Profiles(components ...Component) (map[Component]Profile, error) {
	if len(components) == 0 {
		components = g.Subcomponents()
	}
	lens, err := g.Lensing()
	if err != nil {
		return nil, err
	}

	out := make(map[Component]Profile, len(components))
	for _, c := range components {
		p, err := g.profile(c)
		if err != nil {
			return nil, err
		}
		p.Lensing = lens
		out[c] = p
	}
	return out, nil
}

func (g *Galaxy) profile(c Component) (Profile, error) {
	if !c.valid() {
		return Profile{}, fmt.Errorf("%w: %d", ErrUnknownComponent, int(c))
	}
	shape := c.shapeSource()
	a, err := requireFloat(g.attrs, "size_"+shape.String()+"_true")
	if err != nil {
		return Profile{}, err
	}
	b, err := requireFloat(g.attrs, "size_minor_"+shape.String()+"_true")
	if err != nil {
		return Profile{}, err
	}
	if !(a >= b) || b < 0 {
		return Profile{}, fmt.Errorf("%w: %s: major %v < minor %v", ErrInvalidShape, c, a, b)
	}
	e1, err := requireFloat(g.attrs, "ellipticity_1_"+shape.String()+"_true")
	if err != nil {
		return Profile{}, err
	}
	e2, err := requireFloat(g.attrs, "ellipticity_2_"+shape.String()+"_true")
	if err != nil {
		return Profile{}, err
	}

	p := Profile{
		Component:       c,
		HalfLightRadius: math.Sqrt(a * b),
		Shear1:          -e1,
		Shear2:          -e2,
	}
	if c == Knots {
		n, err := requireFloat(g.attrs, "n_knots")
		if err != nil {
			return Profile{}, err
		}
		if !(n > 0) {
			return Profile{}, fmt.Errorf("%w: n_knots = %v", ErrInvalidShape, n)
		}
		p.Kind = ProfileKnots
		p.NKnots = int(math.Round(n))
		return p, nil
	}

	n, err := requireFloat(g.attrs, "sersic_"+c.String())
	if err != nil {
		return Profile{}, err
	}
	p.Kind = ProfileSersic
	p.SersicIndex = QuantizeSersic(n)
	return p, nil
}

// QuantizeSersic rounds n to the nearest 0.05.
func QuantizeSersic(n float64) float64 {
	return math.Round(n*20) / 20
}
