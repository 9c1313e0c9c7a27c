package photometry_test

import (
	"fmt"

	"github.com/cwbudde/algo-sed/measure/photometry"
	"github.com/cwbudde/algo-sed/sed/core"
)

func ExampleConverter_SpectrumMagnitude() {
	r, _ := photometry.NewBandpass("r", []float64{540, 620, 700}, []float64{0, 1, 0})
	conv, _ := photometry.NewConverter(map[string]*photometry.Bandpass{"r": r})

	faint, _ := photometry.ABSpectrum().Scale(core.MagToFluxRatio(22.5))
	m, _ := conv.SpectrumMagnitude(faint, "r")
	fmt.Printf("%.3f\n", m)

	// Output:
	// 22.500
}
