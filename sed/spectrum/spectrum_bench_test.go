package spectrum

import (
	"testing"

	"github.com/cwbudde/algo-sed/sed/core"
)

func BenchmarkSample(b *testing.B) {
	wave := core.Linspace(100, 1400, 2048)
	vals := make([]float64, len(wave))
	for i := range vals {
		vals[i] = float64(i % 7)
	}
	s, _ := New(wave, vals, FluxPerWavelength, WithRedshift(0.7))
	trans, _ := New(core.Linspace(115, 3333, 512), core.Linspace(0.2, 1, 512), Dimensionless)
	s, _ = s.Multiply(trans)
	query := core.Linspace(200, 2000, 4096)
	dst := make([]float64, len(query))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dst = s.Sample(dst, query)
	}
}
