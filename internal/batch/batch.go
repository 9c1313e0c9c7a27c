// Package batch runs catalog objects through a source.Session on a worker
// pool and summarises their emissions as AB magnitudes.
package batch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/cwbudde/algo-sed/internal/logging"
	"github.com/cwbudde/algo-sed/internal/observability"
	"github.com/cwbudde/algo-sed/measure/photometry"
	"github.com/cwbudde/algo-sed/source"
)

// ErrInvalidRecord is returned by ReadRecords for malformed lines.
var ErrInvalidRecord = errors.New("batch: invalid record")

// maxLine bounds a single JSONL record; tophat arrays make lines long.
const maxLine = 4 << 20

// Record is one catalog object: an identifier plus its attributes.
type Record struct {
	ID    string
	Attrs source.MapAttributes
}

// ReadRecords decodes one JSON object per line. The "id" key is removed
// from the attributes and used as the record ID; a missing id becomes the
// 1-based line number. Blank lines are skipped.
func ReadRecords(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLine)

	var out []Record
	for line := 1; sc.Scan(); line++ {
		raw := sc.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		var attrs map[string]any
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&attrs); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidRecord, line, err)
		}
		id := fmt.Sprint(line)
		if v, ok := attrs["id"]; ok {
			id = fmt.Sprint(v)
			delete(attrs, "id")
		}
		out = append(out, Record{ID: id, Attrs: source.MapAttributes(attrs)})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return out, nil
}

// Emission summarises one emitted spectrum.
type Emission struct {
	Component string
	// MagNorm is NaN when the tophat bins have no 500 nm pivot.
	MagNorm float64
	Mags    map[string]float64
}

// MarshalJSON writes a non-finite MagNorm as null.
func (e Emission) MarshalJSON() ([]byte, error) {
	var magNorm *float64
	if !math.IsNaN(e.MagNorm) && !math.IsInf(e.MagNorm, 0) {
		magNorm = &e.MagNorm
	}
	return json.Marshal(struct {
		Component string             `json:"component"`
		MagNorm   *float64           `json:"mag_norm"`
		Mags      map[string]float64 `json:"mags,omitempty"`
	}{e.Component, magNorm, e.Mags})
}

// Result is the outcome for one record, in input order.
type Result struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"`
	Emissions []Emission `json:"emissions"`
	Err       error      `json:"-"`
}

// Outcome reports the metrics label for r.
func (r Result) Outcome() string {
	switch {
	case r.Err != nil:
		return observability.OutcomeFailed
	case len(r.Emissions) == 0:
		return observability.OutcomeSkipped
	default:
		return observability.OutcomeOK
	}
}

// Runner processes records concurrently. Session is required; the other
// fields are optional.
type Runner struct {
	Session   *source.Session
	Converter *photometry.Converter
	Logger    logging.Logger
	Metrics   *observability.Collector
	// Workers defaults to GOMAXPROCS.
	Workers int
}

// Run processes every record and returns the results in input order.
// Per-object failures are recorded on the result and logged; Run itself
// fails only when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, records []Record) ([]Result, error) {
	if r.Session == nil {
		return nil, errors.New("batch: runner has no session")
	}
	log := r.Logger
	if log == nil {
		log = logging.FromContext(ctx)
	}
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, max(len(records), 1))

	results := make([]Result, len(records))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.process(ctx, log, records[i])
			}
		}()
	}

feed:
	for i := range records {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	log.Info(ctx, "batch complete",
		logging.Int("objects", len(records)),
		logging.Int("failed", failed),
		logging.Int("workers", workers))
	return results, nil
}

func (r *Runner) process(ctx context.Context, log logging.Logger, rec Record) Result {
	r.Metrics.Track(1)
	defer r.Metrics.Track(-1)
	start := time.Now()

	res := r.build(rec)
	r.Metrics.ObserveSource(res.Kind, res.Outcome(), time.Since(start))
	if res.Err != nil {
		log.Warn(ctx, "object skipped", logging.String("id", rec.ID), logging.Err(res.Err))
	}
	return res
}

func (r *Runner) build(rec Record) Result {
	res := Result{ID: rec.ID, Kind: "unknown"}
	obj, err := r.Session.New(rec.ID, rec.Attrs)
	if err != nil {
		res.Err = err
		return res
	}
	res.Kind = obj.Kind().String()

	emissions, err := obj.Emissions()
	if err != nil {
		res.Err = err
		return res
	}
	res.Emissions = make([]Emission, 0, len(emissions))
	for _, e := range emissions {
		out := Emission{Component: e.Component, MagNorm: e.MagNorm}
		if r.Converter != nil {
			out.Mags = make(map[string]float64, len(r.Converter.Bands()))
			for _, band := range r.Converter.Bands() {
				mag, err := r.Converter.SpectrumMagnitude(e.SED, band)
				if err != nil {
					// Spectra with no flux in a band have no magnitude.
					continue
				}
				out.Mags[band] = mag
			}
		}
		r.Metrics.ObserveSpectrum(e.Component)
		res.Emissions = append(res.Emissions, out)
	}
	return res
}

// WriteResults writes successful results as JSON lines.
func WriteResults(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		if err := enc.Encode(res); err != nil {
			return err
		}
	}
	return nil
}
