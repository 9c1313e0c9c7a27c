package photometry

import (
	"math"
	"sort"

	"github.com/cwbudde/algo-sed/sed/spectrum"
	"gonum.org/v1/gonum/integrate"
)

// maxGridStep is the widest integration interval in nm. Wider gaps in the
// merged grid are subdivided.
const maxGridStep = 1.0

// Flux returns the photon flux of s through bp in photons/s/cm². The
// integrand is sampled on the union of the spectrum's and the bandpass's
// breakpoints inside their common support (the bandpass grid alone for
// analytic spectra), with gaps wider than maxGridStep subdivided.
func Flux(s *spectrum.Spectrum, bp *Bandpass) (float64, error) {
	if s.FluxType() == spectrum.Dimensionless {
		return 0, spectrum.ErrNoPhotons
	}
	blue, red := bp.Range()
	sBlue, sRed := s.Support()
	if sBlue > blue {
		blue = sBlue
	}
	if sRed < red {
		red = sRed
	}
	if !(red > blue) {
		return 0, nil
	}

	grid := densify(mergeGrid(bp.wave, s.WaveList(), blue, red), maxGridStep)
	if len(grid) < 2 {
		return 0, nil
	}
	photons, err := s.SamplePhotons(nil, grid)
	if err != nil {
		return 0, err
	}
	for i, w := range grid {
		photons[i] *= bp.Throughput(w)
	}
	return integrate.Trapezoidal(grid, photons), nil
}

// mergeGrid returns the sorted, de-duplicated union of a and b clipped to
// [lo, hi], with lo and hi included.
func mergeGrid(a, b []float64, lo, hi float64) []float64 {
	out := make([]float64, 0, len(a)+len(b)+2)
	out = append(out, lo, hi)
	for _, src := range [][]float64{a, b} {
		for _, w := range src {
			if w > lo && w < hi {
				out = append(out, w)
			}
		}
	}
	sort.Float64s(out)
	kept := out[:1]
	for _, w := range out[1:] {
		if w != kept[len(kept)-1] {
			kept = append(kept, w)
		}
	}
	return kept
}

// densify inserts evenly spaced points into every interval wider than step.
func densify(grid []float64, step float64) []float64 {
	extra := 0
	for i := 1; i < len(grid); i++ {
		if n := int(math.Ceil((grid[i] - grid[i-1]) / step)); n > 1 {
			extra += n - 1
		}
	}
	if extra == 0 {
		return grid
	}
	out := make([]float64, 0, len(grid)+extra)
	out = append(out, grid[0])
	for i := 1; i < len(grid); i++ {
		lo, hi := grid[i-1], grid[i]
		if n := int(math.Ceil((hi - lo) / step)); n > 1 {
			h := (hi - lo) / float64(n)
			for k := 1; k < n; k++ {
				out = append(out, lo+float64(k)*h)
			}
		}
		out = append(out, hi)
	}
	return out
}
