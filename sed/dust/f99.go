package dust

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// FM90 UV bump and far-UV parameters used by F99.
const (
	fmX0    = 4.596
	fmGamma = 0.99
	fmC3    = 3.23
	fmC4    = 0.41
)

// f99UVCut is the wavenumber (µm⁻¹) above which the FM90 form is used
// directly instead of the spline.
const f99UVCut = 1e4 / 2700.0

// f99 is the Fitzpatrick (1999) law: a natural cubic spline through
// optical/IR anchor points and two FM90 UV points, and the FM90 curve
// itself shortward of 2700 Å.
type f99 struct {
	base
	c1, c2 float64
	spline interp.NaturalCubic
}

func newF99(rv float64) (*f99, error) {
	l := &f99{base: base{name: "F99", rv: rv, xMin: 0.3, xMax: 10}}
	l.c2 = -0.824 + 4.717/rv
	l.c1 = 2.030 - 3.007*l.c2

	xs := []float64{
		0,
		1e4 / 26500.0,
		1e4 / 12200.0,
		1e4 / 6000.0,
		1e4 / 5470.0,
		1e4 / 4670.0,
		1e4 / 4110.0,
		1e4 / 2700.0,
		1e4 / 2600.0,
	}
	rv2 := rv * rv
	// A(λ)/E(B-V) at the anchors.
	ys := []float64{
		0,
		0.26469 * rv / 3.1,
		0.82925 * rv / 3.1,
		-0.422809 + 1.00270*rv + 2.13572e-4*rv2,
		-0.0513540 + 1.00216*rv - 7.35778e-5*rv2,
		0.700127 + 1.00184*rv - 3.32598e-5*rv2,
		1.19456 + 1.01707*rv - 5.46959e-3*rv2 + 7.97809e-4*rv2*rv - 4.45636e-5*rv2*rv2,
		l.fm90(xs[7]) + rv,
		l.fm90(xs[8]) + rv,
	}
	if err := l.spline.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("dust: F99 spline: %w", err)
	}
	return l, nil
}

// fm90 returns E(λ-V)/E(B-V) from the Fitzpatrick & Massa (1990) form.
func (l *f99) fm90(x float64) float64 {
	x2 := x * x
	d := x2 / ((x2-fmX0*fmX0)*(x2-fmX0*fmX0) + x2*fmGamma*fmGamma)
	k := l.c1 + l.c2*x + fmC3*d
	if x >= 5.9 {
		y := x - 5.9
		k += fmC4 * (0.5392*y*y + 0.05644*y*y*y)
	}
	return k
}

func (l *f99) AlAv(x float64) float64 {
	if !l.inRange(x) {
		return 0
	}
	if x >= f99UVCut {
		return 1 + l.fm90(x)/l.rv
	}
	return l.spline.Predict(x) / l.rv
}
