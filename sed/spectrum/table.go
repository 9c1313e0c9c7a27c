package spectrum

import (
	"fmt"
	"math"
	"sort"
)

// table is a tabulated function on strictly increasing abscissae.
type table struct {
	x      []float64
	y      []float64
	interp Interpolant
}

func newTable(x, y []float64, interp Interpolant) (*table, error) {
	if len(x) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidTable, len(x))
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: wave/flux length mismatch: %d != %d", ErrInvalidTable, len(x), len(y))
	}
	if interp != Nearest && interp != Linear {
		return nil, fmt.Errorf("%w: unknown interpolant %d", ErrInvalidTable, interp)
	}
	for i := range x {
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) || x[i] < 0 {
			return nil, fmt.Errorf("%w: wavelength at index %d must be finite and >= 0: %v", ErrInvalidTable, i, x[i])
		}
		if i > 0 && !(x[i] > x[i-1]) {
			return nil, fmt.Errorf("%w: wavelengths must be strictly increasing at index %d", ErrInvalidTable, i)
		}
		if !(y[i] >= 0) || math.IsInf(y[i], 0) {
			return nil, fmt.Errorf("%w: value at index %d must be finite and >= 0: %v", ErrInvalidTable, i, y[i])
		}
	}

	t := &table{
		x:      make([]float64, len(x)),
		y:      make([]float64, len(y)),
		interp: interp,
	}
	copy(t.x, x)
	copy(t.y, y)
	return t, nil
}

func (t *table) lo() float64 { return t.x[0] }
func (t *table) hi() float64 { return t.x[len(t.x)-1] }

// nonZero returns the tightest pair of breakpoints outside of which the
// table evaluates to 0. An all-zero table returns lo == hi.
func (t *table) nonZero() (lo, hi float64) {
	first, last := -1, -1
	for i, v := range t.y {
		if v > 0 {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return t.lo(), t.lo()
	}
	if first > 0 {
		first--
	}
	if last < len(t.y)-1 {
		last++
	}
	return t.x[first], t.x[last]
}

// eval returns the interpolated value at x, or 0 outside [lo, hi].
func (t *table) eval(x float64) float64 {
	n := len(t.x)
	if !(x >= t.x[0]) || x > t.x[n-1] {
		return 0
	}

	j := sort.SearchFloat64s(t.x, x)
	if j < n && t.x[j] == x {
		return t.y[j]
	}
	x0, x1 := t.x[j-1], t.x[j]
	frac := (x - x0) / (x1 - x0)

	if t.interp == Linear {
		return t.y[j-1] + frac*(t.y[j]-t.y[j-1])
	}
	if frac < 0.5 {
		return t.y[j-1]
	}
	return t.y[j]
}
