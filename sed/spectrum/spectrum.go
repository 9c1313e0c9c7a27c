package spectrum

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-sed/sed/core"
	"github.com/cwbudde/algo-vecmath"
)

var (
	// ErrInvalidTable is wrapped by construction errors for tabulated spectra.
	ErrInvalidTable = errors.New("spectrum: invalid table")
	// ErrIncompatibleFluxTypes is returned when multiplying two flux densities.
	ErrIncompatibleFluxTypes = errors.New("spectrum: incompatible flux types")
	// ErrInvalidRedshift is returned for z <= -1 or non-finite z.
	ErrInvalidRedshift = errors.New("spectrum: redshift must be finite and > -1")
	// ErrInvalidScale is returned for negative or non-finite scale factors.
	ErrInvalidScale = errors.New("spectrum: scale must be finite and >= 0")
	// ErrNoPhotons is returned when a photon flux is requested from a
	// dimensionless spectrum.
	ErrNoPhotons = errors.New("spectrum: dimensionless spectrum has no photon flux")
)

// factor is a multiplicative spectrum fixed to this spectrum's rest frame.
// At rest wavelength x it contributes t.Flux(x * stretch).
type factor struct {
	t       *Spectrum
	stretch float64
}

// Spectrum is an immutable flux density (or multiplier) as a function of
// wavelength in nm.
type Spectrum struct {
	fluxType FluxType
	redshift float64
	scale    float64

	tab *table                   // tabulated rest-frame values, nil for analytic
	fn  func(nm float64) float64 // analytic rest-frame values, nil for tabulated

	factors []factor
}

// Option configures a tabulated spectrum at construction.
type Option func(*options)

type options struct {
	interp   Interpolant
	redshift float64
}

// WithInterpolant selects the table interpolant. The default is Nearest.
func WithInterpolant(i Interpolant) Option {
	return func(o *options) { o.interp = i }
}

// WithRedshift sets the initial redshift.
func WithRedshift(z float64) Option {
	return func(o *options) { o.redshift = z }
}

// New builds a tabulated rest-frame spectrum. wave must be strictly
// increasing (nm) and values finite and non-negative.
func New(wave, values []float64, fluxType FluxType, opts ...Option) (*Spectrum, error) {
	cfg := options{interp: Nearest}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if err := checkRedshift(cfg.redshift); err != nil {
		return nil, err
	}

	tab, err := newTable(wave, values, cfg.interp)
	if err != nil {
		return nil, err
	}

	return &Spectrum{
		fluxType: fluxType,
		redshift: cfg.redshift,
		scale:    1,
		tab:      tab,
	}, nil
}

// FromFunc wraps an analytic rest-frame function with unbounded support.
// fn must return finite, non-negative values for positive wavelengths.
func FromFunc(fn func(nm float64) float64, fluxType FluxType) *Spectrum {
	return &Spectrum{
		fluxType: fluxType,
		scale:    1,
		fn:       fn,
	}
}

// FluxType returns the unit family.
func (s *Spectrum) FluxType() FluxType { return s.fluxType }

// Redshift returns the redshift applied to the rest-frame function.
func (s *Spectrum) Redshift() float64 { return s.redshift }

// Tabulated reports whether the spectrum has a finite wave list.
func (s *Spectrum) Tabulated() bool { return s.tab != nil }

// AtRedshift returns a copy observed at redshift z. The redshift replaces
// the current one; flux amplitudes are unchanged.
func (s *Spectrum) AtRedshift(z float64) (*Spectrum, error) {
	if err := checkRedshift(z); err != nil {
		return nil, err
	}
	out := s.clone()
	out.redshift = z
	return out, nil
}

// Scale returns a copy with every flux value multiplied by f.
func (s *Spectrum) Scale(f float64) (*Spectrum, error) {
	if !(f >= 0) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScale, f)
	}
	out := s.clone()
	out.scale *= f
	return out, nil
}

// Multiply returns s × t. At least one operand must be Dimensionless; the
// result takes the other operand's flux type. t is evaluated in its own
// observer frame, so a transmission curve with zero redshift applies at
// observed wavelengths. The result is zero wherever either operand is.
func (s *Spectrum) Multiply(t *Spectrum) (*Spectrum, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil operand", ErrIncompatibleFluxTypes)
	}
	if s.fluxType != Dimensionless && t.fluxType != Dimensionless {
		return nil, fmt.Errorf("%w: %s × %s", ErrIncompatibleFluxTypes, s.fluxType, t.fluxType)
	}
	if s.fluxType == Dimensionless && t.fluxType != Dimensionless {
		return t.Multiply(s)
	}

	out := s.clone()
	out.factors = append(out.factors, factor{t: t, stretch: 1 + s.redshift})
	return out, nil
}

// Flux returns the observer-frame value at wavelength nm.
func (s *Spectrum) Flux(nm float64) float64 {
	return s.restFlux(nm / (1 + s.redshift))
}

func (s *Spectrum) restFlux(x float64) float64 {
	var v float64
	if s.tab != nil {
		v = s.tab.eval(x)
	} else {
		v = s.fn(x)
	}
	v *= s.scale
	for _, f := range s.factors {
		if v == 0 {
			return 0
		}
		v *= f.t.Flux(x * f.stretch)
	}
	return v
}

// Sample evaluates the spectrum at each observer-frame wavelength. If dst
// has enough capacity it is reused.
func (s *Spectrum) Sample(dst, waves []float64) []float64 {
	dst = core.EnsureLen(dst, len(waves))
	zp1 := 1 + s.redshift

	var rest []float64
	if len(s.factors) > 0 {
		rest = make([]float64, len(waves))
	}
	for i, w := range waves {
		x := w / zp1
		if rest != nil {
			rest[i] = x
		}
		if s.tab != nil {
			dst[i] = s.tab.eval(x)
		} else {
			dst[i] = s.fn(x)
		}
	}
	if s.scale != 1 {
		vecmath.ScaleBlockInPlace(dst, s.scale)
	}

	if len(s.factors) > 0 {
		buf := make([]float64, len(waves))
		obs := make([]float64, len(waves))
		for _, f := range s.factors {
			vecmath.ScaleBlock(obs, rest, f.stretch)
			buf = f.t.Sample(buf, obs)
			vecmath.MulBlockInPlace(dst, buf)
		}
	}
	return dst
}

// PhotonFlux returns the photon flux density at observer-frame wavelength
// nm in photons/s/cm²/nm.
func (s *Spectrum) PhotonFlux(nm float64) (float64, error) {
	return photons(s.fluxType, nm, s.Flux(nm))
}

// SamplePhotons evaluates the photon flux density at each wavelength.
func (s *Spectrum) SamplePhotons(dst, waves []float64) ([]float64, error) {
	if s.fluxType == Dimensionless {
		return nil, ErrNoPhotons
	}
	dst = s.Sample(dst, waves)
	for i, w := range waves {
		dst[i], _ = photons(s.fluxType, w, dst[i])
	}
	return dst, nil
}

func photons(ft FluxType, nm, v float64) (float64, error) {
	switch ft {
	case FluxPerWavelength:
		// flambda λ / hc
		return v * nm / core.HC, nil
	case FluxPerFrequency:
		// fnu c/λ² converts to flambda per nm; times λ/hc gives fnu/(hλ).
		if nm == 0 {
			return 0, nil
		}
		return v / (core.Planck * nm), nil
	default:
		return 0, ErrNoPhotons
	}
}

// Support returns the observer-frame wavelength range over which the
// spectrum can be non-zero. Analytic spectra without tabulated factors
// return (0, +Inf).
func (s *Spectrum) Support() (blue, red float64) {
	zp1 := 1 + s.redshift
	blue, red = 0, math.Inf(1)
	if s.tab != nil {
		blue, red = s.tab.lo()*zp1, s.tab.hi()*zp1
	}
	for _, f := range s.factors {
		fb, fr := f.t.Support()
		// f.t is evaluated at rest*stretch, i.e. observed*stretch/zp1.
		k := zp1 / f.stretch
		blue = math.Max(blue, fb*k)
		red = math.Min(red, fr*k)
	}
	return blue, red
}

// EffectiveSupport is like Support but ignores leading and trailing runs of
// zero-valued table points. The bounds are the last zero point before the
// first non-zero value and the first zero point after the last one, so the
// flux is 0 outside them. A spectrum with no non-zero points returns
// blue >= red.
func (s *Spectrum) EffectiveSupport() (blue, red float64) {
	zp1 := 1 + s.redshift
	blue, red = 0, math.Inf(1)
	if s.tab != nil {
		lo, hi := s.tab.nonZero()
		blue, red = lo*zp1, hi*zp1
	}
	for _, f := range s.factors {
		fb, fr := f.t.EffectiveSupport()
		k := zp1 / f.stretch
		blue = math.Max(blue, fb*k)
		red = math.Min(red, fr*k)
	}
	return blue, red
}

// WaveList returns the sorted observer-frame breakpoints inside the
// support: every tabulated point of the spectrum and of its factors. It
// returns nil for analytic spectra without tabulated factors.
func (s *Spectrum) WaveList() []float64 {
	blue, red := s.Support()
	if !(red > blue) {
		return nil
	}
	zp1 := 1 + s.redshift

	var out []float64
	if s.tab != nil {
		out = make([]float64, 0, len(s.tab.x))
		for _, x := range s.tab.x {
			out = append(out, x*zp1)
		}
	}
	for _, f := range s.factors {
		k := zp1 / f.stretch
		for _, w := range f.t.WaveList() {
			out = append(out, w*k)
		}
	}
	if len(out) == 0 {
		return nil
	}

	sort.Float64s(out)
	kept := out[:0]
	for _, w := range out {
		if w < blue || w > red {
			continue
		}
		if len(kept) > 0 && w == kept[len(kept)-1] {
			continue
		}
		kept = append(kept, w)
	}
	return kept
}

func (s *Spectrum) clone() *Spectrum {
	out := *s
	out.factors = append([]factor(nil), s.factors...)
	return &out
}

func checkRedshift(z float64) error {
	if !(z > -1) || math.IsInf(z, 1) {
		return fmt.Errorf("%w: %v", ErrInvalidRedshift, z)
	}
	return nil
}
