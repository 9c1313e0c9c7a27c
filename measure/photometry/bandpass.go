package photometry

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"path"
	"sort"
	"strings"

	"github.com/cwbudde/algo-sed/sed/spectrum"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/interp"
)

var (
	// ErrInvalidBandpass wraps bandpass construction errors.
	ErrInvalidBandpass = errors.New("photometry: invalid bandpass")
	// ErrNoBandpasses is returned when a bandpass pattern matches nothing.
	ErrNoBandpasses = errors.New("photometry: no bandpass files found")
)

// Bandpass is a throughput curve on wavelengths in nm, linear between
// points and zero outside them.
type Bandpass struct {
	name string
	wave []float64
	thr  []float64
	lin  interp.PiecewiseLinear
}

// NewBandpass validates and copies the curve. wave must be strictly
// increasing; throughput finite and non-negative with at least one
// positive value.
func NewBandpass(name string, wave, throughput []float64) (*Bandpass, error) {
	if len(wave) < 2 || len(wave) != len(throughput) {
		return nil, fmt.Errorf("%w: %s: need >= 2 points of equal length, got %d/%d",
			ErrInvalidBandpass, name, len(wave), len(throughput))
	}
	positive := false
	for i := range wave {
		if math.IsNaN(wave[i]) || math.IsInf(wave[i], 0) || wave[i] <= 0 {
			return nil, fmt.Errorf("%w: %s: wavelength at %d: %v", ErrInvalidBandpass, name, i, wave[i])
		}
		if i > 0 && !(wave[i] > wave[i-1]) {
			return nil, fmt.Errorf("%w: %s: wavelengths not increasing at %d", ErrInvalidBandpass, name, i)
		}
		if !(throughput[i] >= 0) || math.IsInf(throughput[i], 0) {
			return nil, fmt.Errorf("%w: %s: throughput at %d: %v", ErrInvalidBandpass, name, i, throughput[i])
		}
		if throughput[i] > 0 {
			positive = true
		}
	}
	if !positive {
		return nil, fmt.Errorf("%w: %s: throughput is zero everywhere", ErrInvalidBandpass, name)
	}

	b := &Bandpass{
		name: name,
		wave: append([]float64(nil), wave...),
		thr:  append([]float64(nil), throughput...),
	}
	// Fit only panics on the conditions checked above.
	_ = b.lin.Fit(b.wave, b.thr)
	return b, nil
}

// ReadBandpass parses a two-column (nm, throughput) table.
func ReadBandpass(r io.Reader, name string) (*Bandpass, error) {
	wave, thr, err := spectrum.ReadColumns(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidBandpass, name, err)
	}
	return NewBandpass(name, wave, thr)
}

// LoadBandpasses reads every file in fsys matching pattern (see fs.Glob).
// The band name is the file's base name without extension and without
// anything up to the last underscore, so "total_r.dat" is band "r".
func LoadBandpasses(fsys fs.FS, pattern string) (map[string]*Bandpass, error) {
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("photometry: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoBandpasses, pattern)
	}
	sort.Strings(matches)

	out := make(map[string]*Bandpass, len(matches))
	for _, m := range matches {
		name := BandName(m)
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("%w: duplicate band %q (%s)", ErrInvalidBandpass, name, m)
		}
		bp, err := readBandpassFile(fsys, m, name)
		if err != nil {
			return nil, err
		}
		out[name] = bp
	}
	return out, nil
}

func readBandpassFile(fsys fs.FS, file, name string) (*Bandpass, error) {
	f, err := fsys.Open(file)
	if err != nil {
		return nil, fmt.Errorf("photometry: %w", err)
	}
	defer f.Close()
	return ReadBandpass(f, name)
}

// BandName derives a band name from a throughput file path.
func BandName(file string) string {
	base := path.Base(file)
	base = strings.TrimSuffix(base, path.Ext(base))
	if i := strings.LastIndexByte(base, '_'); i >= 0 && i < len(base)-1 {
		base = base[i+1:]
	}
	return base
}

// Name returns the band name.
func (b *Bandpass) Name() string { return b.name }

// Range returns the first and last wavelength in nm.
func (b *Bandpass) Range() (blue, red float64) { return b.wave[0], b.wave[len(b.wave)-1] }

// Wavelengths returns a copy of the tabulated wavelengths.
func (b *Bandpass) Wavelengths() []float64 { return append([]float64(nil), b.wave...) }

// Throughput returns T(nm), zero outside Range.
func (b *Bandpass) Throughput(nm float64) float64 {
	if !(nm >= b.wave[0]) || nm > b.wave[len(b.wave)-1] {
		return 0
	}
	return b.lin.Predict(nm)
}

// EffectiveWavelength returns ∫λT dλ / ∫T dλ in nm.
func (b *Bandpass) EffectiveWavelength() float64 {
	lt := make([]float64, len(b.wave))
	for i, w := range b.wave {
		lt[i] = w * b.thr[i]
	}
	return integrate.Trapezoidal(b.wave, lt) / integrate.Trapezoidal(b.wave, b.thr)
}
