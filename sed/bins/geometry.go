package bins

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-sed/sed/core"
	"gonum.org/v1/gonum/floats"
)

// DefaultDeltaWL is the default right-edge offset in nm.
const DefaultDeltaWL = 0.001

// contiguityTolerance is the relative tolerance for bin edges to meet.
const contiguityTolerance = 1e-9

// ErrInvalidGeometry is wrapped by every construction error.
var ErrInvalidGeometry = errors.New("bins: invalid tophat geometry")

// Bin is one tophat interval [Start, Start+Width) in Ångström.
type Bin struct {
	Start float64
	Width float64
}

// End returns the exclusive upper edge in Ångström.
func (b Bin) End() float64 { return b.Start + b.Width }

// FromPairs converts (start, width) pairs, the catalog config layout, to bins.
func FromPairs(pairs [][2]float64) []Bin {
	out := make([]Bin, len(pairs))
	for i, p := range pairs {
		out[i] = Bin{Start: p[0], Width: p[1]}
	}
	return out
}

// Geometry is the immutable grid set derived from a tophat bin list.
type Geometry struct {
	wl      []float64 // N+1 boundaries, nm
	nu      []float64 // N+1 boundaries, Hz
	deltas  []float64 // prefix + 2N paired points, nm
	prefix  int
	pivot   int
	deltaWL float64
}

// New builds a Geometry from bins sorted by wavelength and a right-edge offset
// deltaWL in nm. Bins must be contiguous and deltaWL must be smaller than the
// narrowest bin, otherwise the fine grid would not be strictly increasing.
func New(bins []Bin, deltaWL float64) (*Geometry, error) {
	if len(bins) == 0 {
		return nil, fmt.Errorf("%w: no bins", ErrInvalidGeometry)
	}
	if !(deltaWL > 0) || math.IsInf(deltaWL, 0) {
		return nil, fmt.Errorf("%w: delta_wl must be > 0: %v", ErrInvalidGeometry, deltaWL)
	}

	widths := make([]float64, len(bins))
	for i, b := range bins {
		if !core.IsFinite(b.Start) || b.Start < 0 {
			return nil, fmt.Errorf("%w: bin %d start must be finite and >= 0: %v", ErrInvalidGeometry, i, b.Start)
		}
		if !(b.Width > 0) || math.IsInf(b.Width, 0) {
			return nil, fmt.Errorf("%w: bin %d width must be > 0: %v", ErrInvalidGeometry, i, b.Width)
		}
		if i > 0 {
			prev := bins[i-1]
			if !(b.Start > prev.Start) {
				return nil, fmt.Errorf("%w: bin starts must be strictly increasing at index %d", ErrInvalidGeometry, i)
			}
			if !core.NearlyEqual(prev.End(), b.Start, contiguityTolerance) {
				return nil, fmt.Errorf("%w: bin %d starts at %v, previous bin ends at %v",
					ErrInvalidGeometry, i, b.Start, prev.End())
			}
		}
		widths[i] = b.Width
	}

	if minNM := core.AngstromToNM(floats.Min(widths)); !(deltaWL < minNM) {
		return nil, fmt.Errorf("%w: delta_wl %v nm must be smaller than the narrowest bin (%v nm)",
			ErrInvalidGeometry, deltaWL, minNM)
	}

	n := len(bins)
	wl := make([]float64, n+1)
	for i, b := range bins {
		wl[i] = core.AngstromToNM(b.Start)
	}
	wl[n] = core.AngstromToNM(bins[n-1].End())

	nu := make([]float64, n+1)
	for i, w := range wl {
		nu[i] = core.NMToHz(w)
	}

	prefix := prefixCount(wl[0])
	deltas := make([]float64, prefix+2*n)
	for i := 0; i < prefix; i++ {
		deltas[i] = float64(i)
	}
	for i := 0; i < n; i++ {
		deltas[prefix+2*i] = wl[i]
		deltas[prefix+2*i+1] = wl[i+1] - deltaWL
	}
	if i := core.StrictlyIncreasing(deltas); i >= 0 {
		return nil, fmt.Errorf("%w: fine grid not strictly increasing at index %d (%v <= %v)",
			ErrInvalidGeometry, i, deltas[i], deltas[i-1])
	}

	return &Geometry{
		wl:      wl,
		nu:      nu,
		deltas:  deltas,
		prefix:  prefix,
		pivot:   pivotIndex(bins),
		deltaWL: deltaWL,
	}, nil
}

// prefixCount returns the number of zero-valued integer-nm points placed
// below the first bin edge. Edges below 2 nm get none.
func prefixCount(firstNM float64) int {
	n := int(math.Floor(firstNM)) - 1
	if n < 0 {
		return 0
	}
	return n
}

// pivotIndex returns the last bin whose start is <= 5000 Å, or -1.
func pivotIndex(bins []Bin) int {
	ix := -1
	for i, b := range bins {
		if b.Start > core.PivotWavelengthAngstrom {
			break
		}
		ix = i
	}
	return ix
}

// Len returns the number of tophat bins N.
func (g *Geometry) Len() int { return len(g.wl) - 1 }

// DeltaWL returns the right-edge offset in nm.
func (g *Geometry) DeltaWL() float64 { return g.deltaWL }

// Wavelengths returns a copy of the N+1 bin boundaries in nm.
func (g *Geometry) Wavelengths() []float64 { return core.Clone(g.wl) }

// Frequencies returns a copy of the N+1 bin boundaries in Hz.
func (g *Geometry) Frequencies() []float64 { return core.Clone(g.nu) }

// Deltas returns a copy of the fine grid in nm, of length 2N+PrefixCount.
func (g *Geometry) Deltas() []float64 { return core.Clone(g.deltas) }

// PrefixCount returns the number of zero-valued points before the first bin.
func (g *Geometry) PrefixCount() int { return g.prefix }

// Pivot500 returns the index of the bin containing 500 nm. ok is false when
// every bin starts above 500 nm.
func (g *Geometry) Pivot500() (ix int, ok bool) { return g.pivot, g.pivot >= 0 }

// Range returns the first and last bin edges in nm.
func (g *Geometry) Range() (lo, hi float64) { return g.wl[0], g.wl[len(g.wl)-1] }

// MinWidth returns the narrowest bin width in nm.
func (g *Geometry) MinWidth() float64 {
	widths := make([]float64, g.Len())
	floats.SubTo(widths, g.wl[1:], g.wl[:len(g.wl)-1])
	return floats.Min(widths)
}
