package dust

import "math"

// ccm is the Cardelli, Clayton & Mathis (1989) law with a pluggable
// optical polynomial.
type ccm struct {
	base
	optical func(y float64) (a, b float64)
}

func (c *ccm) AlAv(x float64) float64 {
	if !c.inRange(x) {
		return 0
	}
	var a, b float64
	switch {
	case x < 1.1:
		p := math.Pow(x, 1.61)
		a, b = 0.574*p, -0.527*p
	case x < 3.3:
		a, b = c.optical(x - 1.82)
	case x < 8:
		var fa, fb float64
		if x >= 5.9 {
			y := x - 5.9
			fa = -0.04473*y*y - 0.009779*y*y*y
			fb = 0.2130*y*y + 0.1207*y*y*y
		}
		a = 1.752 - 0.316*x - 0.104/((x-4.67)*(x-4.67)+0.341) + fa
		b = -3.090 + 1.825*x + 1.206/((x-4.62)*(x-4.62)+0.263) + fb
	default:
		y := x - 8
		a = -1.073 - 0.628*y + 0.137*y*y - 0.070*y*y*y
		b = 13.670 + 4.257*y - 0.420*y*y + 0.374*y*y*y
	}
	return a + b/c.rv
}

// Optical coefficients in y = x - 1.82, lowest order first.
var (
	ccmA = []float64{1, 0.17699, -0.50447, -0.02427, 0.72085, 0.01979, -0.77530, 0.32999}
	ccmB = []float64{0, 1.41338, 2.28305, 1.07233, -5.38434, -0.62251, 5.30260, -2.09002}

	od94A = []float64{1, 0.104, -0.609, 0.701, 1.137, -1.718, -0.827, 1.647, -0.505}
	od94B = []float64{0, 1.952, 2.908, -3.989, -7.985, 11.102, 5.491, -10.805, 3.347}
)

func ccmOptical(y float64) (float64, float64) { return poly(ccmA, y), poly(ccmB, y) }

func od94Optical(y float64) (float64, float64) { return poly(od94A, y), poly(od94B, y) }

// poly evaluates c[0] + c[1]·y + ... by Horner's rule.
func poly(c []float64, y float64) float64 {
	v := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		v = v*y + c[i]
	}
	return v
}
