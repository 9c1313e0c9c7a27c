package observed

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-sed/sed/bins"
	"github.com/cwbudde/algo-sed/sed/core"
	"github.com/cwbudde/algo-sed/sed/cosmo"
	"github.com/cwbudde/algo-sed/sed/spectrum"
	"github.com/cwbudde/algo-vecmath"
)

var (
	// ErrTophatLength is returned when the tophat array does not match the
	// geometry's bin count.
	ErrTophatLength = errors.New("observed: tophat length does not match bin count")
	// ErrInvalidTophat is returned for negative or non-finite tophat values.
	ErrInvalidTophat = errors.New("observed: tophat values must be finite and >= 0")
	// ErrZeroDistance is returned when the luminosity distance is zero and
	// the flux would be unbounded.
	ErrZeroDistance = errors.New("observed: zero luminosity distance")
	// ErrNoPivot is returned by MagNorm when no bin starts at or below 500 nm.
	ErrNoPivot = errors.New("observed: no tophat bin contains 500 nm")
)

// Factory converts tophat luminosity densities to observed spectra.
type Factory struct {
	geom *bins.Geometry
	dist cosmo.DistanceModel
	cfg  Config

	deltas []float64
	prefix int
	// lnuToLlambda[i] converts bin i from native Lnu to W/nm.
	lnuToLlambda []float64
	lo, hi       float64
}

// NewFactory builds a factory over geom using dist for luminosity
// distances. opts set the defaults for every Create call.
func NewFactory(geom *bins.Geometry, dist cosmo.DistanceModel, opts ...Option) (*Factory, error) {
	if geom == nil {
		return nil, fmt.Errorf("%w: nil geometry", bins.ErrInvalidGeometry)
	}
	if dist == nil {
		return nil, fmt.Errorf("%w: nil distance model", cosmo.ErrInvalidParams)
	}

	wl := geom.Wavelengths()
	nu := geom.Frequencies()
	n := geom.Len()
	conv := make([]float64, n)
	for i := range conv {
		conv[i] = core.TophatToWPerHz * (nu[i] - nu[i+1]) / (wl[i+1] - wl[i])
	}
	lo, hi := geom.Range()

	return &Factory{
		geom:         geom,
		dist:         dist,
		cfg:          ApplyOptions(DefaultConfig(), opts...),
		deltas:       geom.Deltas(),
		prefix:       geom.PrefixCount(),
		lnuToLlambda: conv,
		lo:           lo,
		hi:           hi,
	}, nil
}

// Geometry returns the bin geometry.
func (f *Factory) Geometry() *bins.Geometry { return f.geom }

// Create reconstructs the observed spectrum for one set of tophat values.
// zH sets the luminosity distance and z the observed wavelength shift.
//
// Tophat values whose maximum is below core.FloatResolution carry no
// measurable emission: Create returns (nil, 0, nil). When the geometry has
// no 500 nm pivot the returned magNorm is NaN.
func (f *Factory) Create(lnu []float64, zH, z float64, opts ...Option) (*spectrum.Spectrum, float64, error) {
	if err := f.checkTophat(lnu); err != nil {
		return nil, 0, err
	}
	if vecmath.MaxAbs(lnu) < core.FloatResolution {
		return nil, 0, nil
	}
	if err := checkRedshift("redshift", z); err != nil {
		return nil, 0, err
	}
	norm, err := f.fluxNorm(zH)
	if err != nil {
		return nil, 0, err
	}
	cfg := ApplyOptions(f.cfg, opts...)

	// Llambda in W/nm, then flambda in erg/s/cm²/nm.
	llambda := make([]float64, len(lnu))
	vecmath.MulBlock(llambda, lnu, f.lnuToLlambda)
	vecmath.ScaleBlockInPlace(llambda, norm)

	var sed *spectrum.Spectrum
	if cfg.Resolution > 0 {
		sed, err = f.resampled(llambda, z, cfg.Resolution)
	} else {
		sed, err = f.native(llambda, z)
	}
	if err != nil {
		return nil, 0, err
	}

	magNorm := math.NaN()
	if _, ok := f.geom.Pivot500(); ok {
		magNorm, err = f.MagNorm(lnu, zH)
		if err != nil {
			return nil, 0, err
		}
	}
	return sed, magNorm, nil
}

// native lays each bin value on its delta-grid pair after the zero prefix.
func (f *Factory) native(flambda []float64, z float64) (*spectrum.Spectrum, error) {
	values := make([]float64, len(f.deltas))
	for i, v := range flambda {
		values[f.prefix+2*i] = v
		values[f.prefix+2*i+1] = v
	}
	return spectrum.New(f.deltas, values, spectrum.FluxPerWavelength, spectrum.WithRedshift(z))
}

// resampled evaluates the piecewise-constant rest-frame SED on a uniform
// grid from the first to the last bin edge and interpolates linearly
// between samples.
func (f *Factory) resampled(flambda []float64, z, step float64) (*spectrum.Spectrum, error) {
	rest, err := f.native(flambda, 0)
	if err != nil {
		return nil, err
	}
	n := int(math.Floor((f.hi-f.lo)/step)) + 1
	if n < 2 {
		n = 2
	}
	wave := make([]float64, 0, n+1)
	for i := 0; i < n; i++ {
		wave = append(wave, f.lo+float64(i)*step)
	}
	if last := wave[len(wave)-1]; f.hi-last > step*1e-9 {
		wave = append(wave, f.hi)
	}
	// The last edge belongs to no bin; sample just inside it.
	probe := core.Clone(wave)
	probe[len(probe)-1] = f.hi - f.geom.DeltaWL()
	values := rest.Sample(nil, probe)

	return spectrum.New(wave, values, spectrum.FluxPerWavelength,
		spectrum.WithInterpolant(spectrum.Linear), spectrum.WithRedshift(z))
}

// PivotFlux returns the rest-frame flux density Fnu (W/m²/Hz) of the
// 500 nm pivot bin at the luminosity distance of zH.
func (f *Factory) PivotFlux(lnu []float64, zH float64) (float64, error) {
	if err := f.checkTophat(lnu); err != nil {
		return 0, err
	}
	ix, ok := f.geom.Pivot500()
	if !ok {
		return 0, ErrNoPivot
	}
	dl, err := f.distance(zH)
	if err != nil {
		return 0, err
	}
	return lnu[ix] * core.TophatToWPerHz / (4 * math.Pi * dl * dl), nil
}

// MagNorm returns the normalization magnitude -2.5 log10(Fnu/Jy) + 8.90 of
// the pivot bin. A zero pivot value gives +Inf.
func (f *Factory) MagNorm(lnu []float64, zH float64) (float64, error) {
	fnu, err := f.PivotFlux(lnu, zH)
	if err != nil {
		return 0, err
	}
	return core.FluxRatioToMag(fnu/core.Jansky) + core.ABOffsetJy, nil
}

// fluxNorm returns the factor taking W/nm of luminosity to erg/s/cm²/nm of
// flux at the luminosity distance of zH.
func (f *Factory) fluxNorm(zH float64) (float64, error) {
	dl, err := f.distance(zH)
	if err != nil {
		return 0, err
	}
	return core.SIToCGSFlux / (4 * math.Pi * dl * dl), nil
}

func (f *Factory) distance(zH float64) (float64, error) {
	if err := checkRedshift("redshift_hubble", zH); err != nil {
		return 0, err
	}
	dl, err := f.dist.LuminosityDistance(zH)
	if err != nil {
		return 0, err
	}
	if dl == 0 {
		return 0, fmt.Errorf("%w at redshift_hubble %v", ErrZeroDistance, zH)
	}
	return dl, nil
}

func (f *Factory) checkTophat(lnu []float64) error {
	if len(lnu) != f.geom.Len() {
		return fmt.Errorf("%w: got %d, want %d", ErrTophatLength, len(lnu), f.geom.Len())
	}
	for i, v := range lnu {
		if !(v >= 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: index %d is %v", ErrInvalidTophat, i, v)
		}
	}
	return nil
}

func checkRedshift(name string, z float64) error {
	if !(z >= 0) || math.IsInf(z, 0) {
		return fmt.Errorf("%w: %s %v", cosmo.ErrNegativeRedshift, name, z)
	}
	return nil
}
