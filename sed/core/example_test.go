package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-sed/sed/core"
)

func ExampleFluxRatioToMag() {
	fmt.Printf("%.1f\n", core.FluxRatioToMag(0.01))

	// Output:
	// 5.0
}

func ExampleLinspace() {
	fmt.Println(core.Linspace(0, 1, 5))

	// Output:
	// [0 0.25 0.5 0.75 1]
}
