package core

import "math"

const defaultEpsilon = 1e-12

// NearlyEqual reports whether a and b are equal within eps.
// The comparison is absolute for small values and relative otherwise.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// MagToFluxRatio converts a magnitude difference to a flux ratio
// (-2.5*log10 convention).
func MagToFluxRatio(mag float64) float64 {
	return math.Pow(10, -0.4*mag)
}

// FluxRatioToMag converts a flux ratio to a magnitude difference.
// Returns +Inf for zero and NaN for negative ratios.
func FluxRatioToMag(ratio float64) float64 {
	if ratio < 0 {
		return math.NaN()
	}

	if ratio == 0 {
		return math.Inf(1)
	}

	return -2.5 * math.Log10(ratio)
}

// StrictlyIncreasing returns the first index i > 0 with xs[i] <= xs[i-1],
// or -1 if xs is strictly increasing.
func StrictlyIncreasing(xs []float64) int {
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return i
		}
	}

	return -1
}
