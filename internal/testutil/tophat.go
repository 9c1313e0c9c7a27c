package testutil

import "math/rand"

// CosmoDC2Bins returns the 30 tophat bins of the cosmoDC2 catalog
// configuration as (start, width) pairs in Ångström.
func CosmoDC2Bins() [][2]float64 {
	return [][2]float64{
		{1000, 246}, {1246, 306}, {1552, 381}, {1933, 474}, {2407, 591},
		{2998, 186}, {3184, 197}, {3381, 209}, {3590, 222}, {3812, 236},
		{4048, 251}, {4299, 266}, {4565, 283}, {4848, 300}, {5148, 319},
		{5467, 339}, {5806, 360}, {6166, 382}, {6548, 406}, {6954, 431},
		{7385, 458}, {7843, 486}, {8329, 517}, {8846, 549}, {9395, 583},
		{9978, 620}, {10598, 658}, {11256, 699}, {11955, 743}, {12698, 789},
	}
}

// UniformBins returns n contiguous (start, width) pairs of equal width
// starting at start (Å).
func UniformBins(start, width float64, n int) [][2]float64 {
	out := make([][2]float64, n)
	for i := range out {
		out[i] = [2]float64{start + float64(i)*width, width}
	}
	return out
}

// FlatTophat returns n tophat values equal to value.
func FlatTophat(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// RandomTophat returns n non-negative tophat values drawn from a fixed seed.
// Roughly one in five values is exactly zero.
func RandomTophat(seed int64, scale float64, n int) []float64 {
	out := make([]float64, n)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		if rng.Intn(5) == 0 {
			continue
		}
		out[i] = rng.Float64() * scale
	}
	return out
}
