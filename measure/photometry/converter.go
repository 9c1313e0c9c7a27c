package photometry

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-sed/sed/core"
	"github.com/cwbudde/algo-sed/sed/spectrum"
)

var (
	// ErrUnknownBand is returned for band names the converter was not
	// built with.
	ErrUnknownBand = errors.New("photometry: unknown band")
	// ErrNonPositiveFlux is returned when a magnitude is requested for a
	// flux <= 0 or NaN.
	ErrNonPositiveFlux = errors.New("photometry: flux must be > 0")
)

// Converter maps band fluxes to AB magnitudes. It is immutable after
// construction and safe for concurrent use.
type Converter struct {
	bands map[string]*Bandpass
	zp    map[string]float64
}

// ABSpectrum returns the flat 3631 Jy fnu reference spectrum.
func ABSpectrum() *spectrum.Spectrum {
	return spectrum.FromFunc(func(float64) float64 { return core.ABZeroPoint }, spectrum.FluxPerFrequency)
}

// NewConverter computes the AB zero point of every band.
func NewConverter(bands map[string]*Bandpass) (*Converter, error) {
	if len(bands) == 0 {
		return nil, ErrNoBandpasses
	}
	ref := ABSpectrum()
	c := &Converter{
		bands: make(map[string]*Bandpass, len(bands)),
		zp:    make(map[string]float64, len(bands)),
	}
	for name, bp := range bands {
		if bp == nil {
			return nil, fmt.Errorf("%w: %s: nil", ErrInvalidBandpass, name)
		}
		zp, err := Flux(ref, bp)
		if err != nil {
			return nil, fmt.Errorf("photometry: zero point %s: %w", name, err)
		}
		if !(zp > 0) {
			return nil, fmt.Errorf("%w: %s: zero point %v", ErrInvalidBandpass, name, zp)
		}
		c.bands[name] = bp
		c.zp[name] = zp
	}
	return c, nil
}

// Bands returns the band names in sorted order.
func (c *Converter) Bands() []string {
	out := make([]string, 0, len(c.bands))
	for name := range c.bands {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Bandpass returns the named bandpass.
func (c *Converter) Bandpass(band string) (*Bandpass, bool) {
	bp, ok := c.bands[band]
	return bp, ok
}

// ZeroPoint returns the AB reference flux of band.
func (c *Converter) ZeroPoint(band string) (float64, error) {
	zp, ok := c.zp[band]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBand, band)
	}
	return zp, nil
}

// Magnitude returns -2.5 log10(flux / ZeroPoint(band)).
func (c *Converter) Magnitude(flux float64, band string) (float64, error) {
	zp, err := c.ZeroPoint(band)
	if err != nil {
		return 0, err
	}
	if !(flux > 0) || math.IsInf(flux, 0) {
		return 0, fmt.Errorf("%w: %v in band %s", ErrNonPositiveFlux, flux, band)
	}
	return -2.5 * math.Log10(flux/zp), nil
}

// SpectrumMagnitude integrates s through band and converts the result.
func (c *Converter) SpectrumMagnitude(s *spectrum.Spectrum, band string) (float64, error) {
	bp, ok := c.bands[band]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBand, band)
	}
	flux, err := Flux(s, bp)
	if err != nil {
		return 0, err
	}
	return c.Magnitude(flux, band)
}
