package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveSource(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	c.ObserveSource("galaxy", OutcomeOK, 2*time.Millisecond)
	c.ObserveSource("galaxy", OutcomeOK, time.Millisecond)
	c.ObserveSource("star", OutcomeSkipped, 0)

	if got := testutil.ToFloat64(c.Sources.WithLabelValues("galaxy", OutcomeOK)); got != 2 {
		t.Fatalf("sed_sources_total{galaxy,ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Sources.WithLabelValues("star", OutcomeSkipped)); got != 1 {
		t.Fatalf("sed_sources_total{star,skipped} = %v, want 1", got)
	}
	if got := histogramSampleCount(t, reg, "sed_object_duration_seconds"); got != 2 {
		t.Fatalf("sed_object_duration_seconds sample_count = %d, want 2", got)
	}
}

func TestObserveSpectrumAndInFlight(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	c.ObserveSpectrum("disk")
	c.ObserveSpectrum("disk")
	c.ObserveSpectrum("bulge")
	c.Track(3)
	c.Track(-1)

	if got := testutil.ToFloat64(c.Spectra.WithLabelValues("disk")); got != 2 {
		t.Fatalf("sed_spectra_total{disk} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.InFlight); got != 2 {
		t.Fatalf("sed_objects_in_flight = %v, want 2", got)
	}
}

func TestRegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("first NewCollector: %v", err)
	}
	b, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("second NewCollector: %v", err)
	}
	a.ObserveSpectrum("knots")
	if got := testutil.ToFloat64(b.Spectra.WithLabelValues("knots")); got != 1 {
		t.Fatalf("shared counter = %v, want 1", got)
	}
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.ObserveSource("galaxy", OutcomeFailed, time.Second)
	c.ObserveSpectrum("disk")
	c.Track(1)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	c.ObserveSource("galaxy", OutcomeFailed, 0)
	c.ObserveSpectrum("bulge")

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`sed_sources_total{kind="galaxy",outcome="failed"} 1`,
		`sed_spectra_total{component="bulge"} 1`,
		"sed_objects_in_flight 0",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in /metrics output:\n%s", want, body)
		}
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string) uint64 {
	t.Helper()

	families, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if h := histogram(m); h != nil {
				return h.GetSampleCount()
			}
		}
	}
	return 0
}

func histogram(m *dto.Metric) *dto.Histogram { return m.GetHistogram() }
