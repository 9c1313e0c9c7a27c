// Package observability exposes Prometheus metrics for catalog batch runs.
package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for sed_sources_total.
const (
	OutcomeOK      = "ok"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Collector bundles the SED pipeline metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	Sources        *prometheus.CounterVec
	Spectra        *prometheus.CounterVec
	CreateDuration prometheus.Histogram
	InFlight       prometheus.Gauge
}

// NewCollector registers the pipeline metrics against reg, defaulting to
// the global registry when nil. Registering twice on the same registry
// returns the existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	sources, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sed_sources_total",
		Help: "Catalog objects processed, labeled by object kind and outcome.",
	}, []string{"kind", "outcome"}), "sed_sources_total")
	if err != nil {
		return nil, err
	}

	spectra, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sed_spectra_total",
		Help: "Observer-frame spectra produced, labeled by component.",
	}, []string{"component"}), "sed_spectra_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sed_object_duration_seconds",
		Help:    "Time spent building all emissions of one object.",
		Buckets: []float64{1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 0.01, 0.05, 0.1, 0.5},
	}), "sed_object_duration_seconds")
	if err != nil {
		return nil, err
	}

	inFlight, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sed_objects_in_flight",
		Help: "Objects currently being processed by batch workers.",
	}), "sed_objects_in_flight")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:       gatherer,
		Sources:        sources,
		Spectra:        spectra,
		CreateDuration: duration,
		InFlight:       inFlight,
	}, nil
}

// ObserveSource records one processed object. A nil collector is a no-op.
func (c *Collector) ObserveSource(kind, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.Sources.WithLabelValues(kind, outcome).Inc()
	if outcome == OutcomeOK {
		c.CreateDuration.Observe(elapsed.Seconds())
	}
}

// ObserveSpectrum counts one emitted spectrum.
func (c *Collector) ObserveSpectrum(component string) {
	if c == nil {
		return
	}
	c.Spectra.WithLabelValues(component).Inc()
}

// Track adjusts the in-flight gauge by delta.
func (c *Collector) Track(delta int) {
	if c == nil {
		return
	}
	c.InFlight.Add(float64(delta))
}

// Handler exposes a /metrics handler for the collector's gatherer.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
