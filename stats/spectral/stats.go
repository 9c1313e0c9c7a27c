// Package spectral computes shape descriptors of sampled SEDs: extent,
// peak, integrated flux, flux-weighted centroid and widths.
package spectral

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/integrate"

	"github.com/cwbudde/algo-sed/sed/core"
	"github.com/cwbudde/algo-sed/sed/spectrum"
)

// ErrInvalidSamples is returned for mismatched or unsorted inputs.
var ErrInvalidSamples = errors.New("spectral: invalid samples")

// RolloffFraction is the integrated-flux fraction used for Stats.Rolloff.
const RolloffFraction = 0.85

// Stats holds descriptors of a spectrum sampled at increasing wavelengths
// in nm. Integrals use the trapezoidal rule.
type Stats struct {
	Points         int
	Blue, Red      float64 // sampled extent (nm)
	Peak           float64
	PeakWavelength float64
	Min            float64
	Mean           float64 // sample mean
	Integrated     float64 // ∫ f dλ
	Centroid       float64 // ∫ λ f dλ / ∫ f dλ (nm)
	Width          float64 // flux-weighted RMS width about Centroid (nm)
	Rolloff        float64 // wavelength below which RolloffFraction of Integrated lies (nm)
	FWHM           float64 // full width at half Peak around PeakWavelength (nm)
}

// Calculate computes all descriptors. wave must be strictly increasing and
// as long as flux. Fewer than two samples yield only the point statistics.
func Calculate(wave, flux []float64) (Stats, error) {
	if len(wave) != len(flux) {
		return Stats{}, fmt.Errorf("%w: %d wavelengths, %d values", ErrInvalidSamples, len(wave), len(flux))
	}
	if i := core.StrictlyIncreasing(wave); i >= 0 {
		return Stats{}, fmt.Errorf("%w: wavelengths not increasing at index %d", ErrInvalidSamples, i)
	}
	n := len(wave)
	if n == 0 {
		return Stats{}, nil
	}

	s := Stats{
		Points: n,
		Blue:   wave[0],
		Red:    wave[n-1],
		Peak:   flux[0],
		Min:    flux[0],
	}
	s.PeakWavelength = wave[0]
	for i, v := range flux {
		if v > s.Peak {
			s.Peak = v
			s.PeakWavelength = wave[i]
		}
		s.Min = math.Min(s.Min, v)
	}
	s.Mean = vecmath.Sum(flux) / float64(n)
	if n < 2 {
		return s, nil
	}

	s.Integrated = integrate.Trapezoidal(wave, flux)
	if s.Integrated == 0 {
		return s, nil
	}

	weighted := make([]float64, n)
	vecmath.MulBlock(weighted, wave, flux)
	s.Centroid = integrate.Trapezoidal(wave, weighted) / s.Integrated

	vecmath.MulBlockInPlace(weighted, wave)
	second := integrate.Trapezoidal(wave, weighted) / s.Integrated
	s.Width = math.Sqrt(math.Max(second-s.Centroid*s.Centroid, 0))

	s.Rolloff = rolloff(wave, flux, RolloffFraction*s.Integrated)
	s.FWHM = fwhm(wave, flux, s.Peak)
	return s, nil
}

// FromSpectrum samples s and calculates its Stats. Tabulated spectra are
// sampled at their breakpoints, refined so that no step exceeds step nm
// when step > 0. Analytic spectra need step > 0 and a finite support.
func FromSpectrum(s *spectrum.Spectrum, step float64) (Stats, error) {
	wave := s.WaveList()
	if len(wave) == 0 || step > 0 {
		blue, red := s.Support()
		if !(step > 0) || math.IsInf(red, 0) || !(red > blue) {
			return Stats{}, fmt.Errorf("%w: cannot sample support [%v, %v] with step %v", ErrInvalidSamples, blue, red, step)
		}
		wave = refine(wave, blue, red, step)
	}
	return Calculate(wave, s.Sample(nil, wave))
}

// refine merges breakpoints with a uniform grid over [blue, red].
func refine(breaks []float64, blue, red, step float64) []float64 {
	n := int(math.Ceil((red-blue)/step)) + 1
	grid := core.Linspace(blue, red, n)
	out := make([]float64, 0, len(grid)+len(breaks))
	i, j := 0, 0
	for i < len(grid) || j < len(breaks) {
		var w float64
		switch {
		case j >= len(breaks) || (i < len(grid) && grid[i] <= breaks[j]):
			w = grid[i]
			i++
		default:
			w = breaks[j]
			j++
		}
		if len(out) == 0 || w > out[len(out)-1] {
			out = append(out, w)
		}
	}
	return out
}

// rolloff returns the wavelength where the cumulative trapezoidal integral
// reaches target, interpolating linearly inside the crossing segment.
func rolloff(wave, flux []float64, target float64) float64 {
	cum := 0.0
	for i := 1; i < len(wave); i++ {
		seg := 0.5 * (flux[i-1] + flux[i]) * (wave[i] - wave[i-1])
		if cum+seg >= target && seg > 0 {
			t := (target - cum) / seg
			return wave[i-1] + t*(wave[i]-wave[i-1])
		}
		cum += seg
	}
	return wave[len(wave)-1]
}

// fwhm locates the half-maximum crossings on each side of the first peak
// sample. Crossings that do not occur inside the samples are clamped to the
// sampled extent.
func fwhm(wave, flux []float64, peak float64) float64 {
	if !(peak > 0) {
		return 0
	}
	half := peak / 2
	ix := 0
	for i, v := range flux {
		if v == peak {
			ix = i
			break
		}
	}

	lower := wave[0]
	for i := ix; i >= 1; i-- {
		if flux[i-1] <= half && flux[i] > half {
			lower = crossing(wave[i-1], wave[i], flux[i-1], flux[i], half)
			break
		}
	}
	upper := wave[len(wave)-1]
	for i := ix; i < len(wave)-1; i++ {
		if flux[i+1] <= half && flux[i] > half {
			upper = crossing(wave[i], wave[i+1], flux[i], flux[i+1], half)
			break
		}
	}
	return math.Max(upper-lower, 0)
}

func crossing(x0, x1, y0, y1, level float64) float64 {
	if y1 == y0 {
		return (x0 + x1) / 2
	}
	return x0 + (level-y0)/(y1-y0)*(x1-x0)
}
