package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-sed/internal/logging"
	"github.com/cwbudde/algo-sed/internal/observability"
	sedtest "github.com/cwbudde/algo-sed/internal/testutil"
	"github.com/cwbudde/algo-sed/measure/photometry"
	"github.com/cwbudde/algo-sed/sed/bins"
	"github.com/cwbudde/algo-sed/sed/cosmo"
	"github.com/cwbudde/algo-sed/sed/dust"
	"github.com/cwbudde/algo-sed/sed/observed"
	"github.com/cwbudde/algo-sed/source"
)

func newSession(t *testing.T) *source.Session {
	t.Helper()
	geom, err := bins.New(bins.FromPairs(sedtest.CosmoDC2Bins()), bins.DefaultDeltaWL)
	require.NoError(t, err)
	dist, err := cosmo.NewFlatLambdaCDM(cosmo.Params{H0: 71, Om0: 0.2648, Ob0: 0.0448})
	require.NoError(t, err)
	factory, err := observed.NewFactory(geom, dist)
	require.NoError(t, err)
	law, err := dust.New(dust.FamilyF99, dust.DefaultRv)
	require.NoError(t, err)
	ext, err := dust.NewExtinguisher(geom.Deltas(), law)
	require.NoError(t, err)
	lib := observed.NewLibrary(fstest.MapFS{
		"starSED/flat.dat": {Data: []byte("200 1e-14\n1200 1e-14\n")},
	})
	s, err := source.NewSession(factory, ext, lib, source.Options{})
	require.NoError(t, err)
	return s
}

func newConverter(t *testing.T) *photometry.Converter {
	t.Helper()
	r, err := photometry.NewBandpass("r", []float64{550, 560, 690, 700}, []float64{0, 1, 1, 0})
	require.NoError(t, err)
	conv, err := photometry.NewConverter(map[string]*photometry.Bandpass{"r": r})
	require.NoError(t, err)
	return conv
}

func galaxy(id string, z float64) Record {
	return Record{ID: id, Attrs: source.MapAttributes{
		"sed_val_bulge":   sedtest.FlatTophat(1e40, 30),
		"sed_val_disk":    sedtest.FlatTophat(3e40, 30),
		"redshift_hubble": z,
		"redshift":        z,
		"MW_av":           0.1,
	}}
}

const catalog = `{"id": "g1", "sed_val_disk": [1, 2, 3], "redshift": 0.5, "MW_av": 0.02}

{"object_type": "star", "sed_filepath": "starSED/flat.dat", "magnorm": 21}
{"id": 42, "redshift": 1}
`

func TestReadRecords(t *testing.T) {
	recs, err := ReadRecords(strings.NewReader(catalog))
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "g1", recs[0].ID)
	assert.NotContains(t, recs[0].Attrs, "id")
	disk, ok := recs[0].Attrs.Floats("sed_val_disk")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, disk)

	assert.Equal(t, "3", recs[1].ID, "missing id falls back to the line number")
	magnorm, ok := recs[1].Attrs.Float("magnorm")
	require.True(t, ok)
	assert.Equal(t, 21.0, magnorm)

	assert.Equal(t, "42", recs[2].ID)
}

func TestReadRecordsRejectsBadLine(t *testing.T) {
	_, err := ReadRecords(strings.NewReader("{\"id\": 1}\n{not json\n"))
	require.ErrorIs(t, err, ErrInvalidRecord)
	assert.Contains(t, err.Error(), "line 2")
}

func TestRunPreservesOrder(t *testing.T) {
	records := make([]Record, 40)
	for i := range records {
		records[i] = galaxy(fmt.Sprintf("g%02d", i), 0.1+0.02*float64(i))
	}
	runner := &Runner{Session: newSession(t), Converter: newConverter(t), Workers: 4}

	results, err := runner.Run(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, results, len(records))

	prev := math.Inf(-1)
	for i, res := range results {
		require.NoError(t, res.Err)
		assert.Equal(t, records[i].ID, res.ID)
		assert.Equal(t, "galaxy", res.Kind)
		require.Len(t, res.Emissions, 2)
		assert.Equal(t, "bulge", res.Emissions[0].Component)
		assert.Equal(t, "disk", res.Emissions[1].Component)

		// Same luminosity further away is fainter.
		assert.Greater(t, res.Emissions[0].MagNorm, prev)
		prev = res.Emissions[0].MagNorm
		require.Contains(t, res.Emissions[0].Mags, "r")

		// The disk is three times brighter than the bulge.
		diff := res.Emissions[0].Mags["r"] - res.Emissions[1].Mags["r"]
		assert.InDelta(t, 2.5*math.Log10(3), diff, 1e-9)
		assert.InDelta(t, 2.5*math.Log10(3), res.Emissions[0].MagNorm-res.Emissions[1].MagNorm, 1e-9)
	}
}

func TestRunRecordsFailures(t *testing.T) {
	var logs bytes.Buffer
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewCollector(reg)
	require.NoError(t, err)

	bad := galaxy("bad", 0.3)
	delete(bad.Attrs, "redshift")
	records := []Record{
		galaxy("good", 0.3),
		bad,
		{ID: "alien", Attrs: source.MapAttributes{"object_type": "comet"}},
		{ID: "dark", Attrs: source.MapAttributes{"sed_val_disk": sedtest.FlatTophat(0, 30), "redshift_hubble": 0.2, "redshift": 0.2}},
		{ID: "star", Attrs: source.MapAttributes{"object_type": "star", "sed_filepath": "starSED/flat.dat", "magnorm": 20.0, "MW_av": 0.0}},
	}
	runner := &Runner{
		Session: newSession(t),
		Logger:  logging.New(logging.Config{Format: "json", Output: &logs}),
		Metrics: metrics,
		Workers: 2,
	}

	results, err := runner.Run(context.Background(), records)
	require.NoError(t, err)

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, source.ErrMissingAttribute)
	assert.ErrorIs(t, results[2].Err, source.ErrUnknownKind)
	assert.Equal(t, "unknown", results[2].Kind)
	assert.NoError(t, results[3].Err)
	assert.Empty(t, results[3].Emissions)
	require.NoError(t, results[4].Err)
	require.Len(t, results[4].Emissions, 1)
	assert.Equal(t, "point", results[4].Emissions[0].Component)
	assert.Equal(t, 20.0, results[4].Emissions[0].MagNorm)
	assert.Nil(t, results[4].Emissions[0].Mags)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Sources.WithLabelValues("galaxy", observability.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Sources.WithLabelValues("galaxy", observability.OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Sources.WithLabelValues("unknown", observability.OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Sources.WithLabelValues("galaxy", observability.OutcomeSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Sources.WithLabelValues("star", observability.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Spectra.WithLabelValues("disk")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Spectra.WithLabelValues("point")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.InFlight))

	out := logs.String()
	assert.Equal(t, 2, strings.Count(out, `"msg":"object skipped"`))
	assert.Contains(t, out, `"id":"bad"`)
	assert.Contains(t, out, `"msg":"batch complete"`)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := &Runner{Session: newSession(t), Workers: 2}
	_, err := runner.Run(ctx, []Record{galaxy("g", 0.2), galaxy("h", 0.3)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRequiresSession(t *testing.T) {
	_, err := (&Runner{}).Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestWriteResults(t *testing.T) {
	results := []Result{
		{ID: "a", Kind: "galaxy", Emissions: []Emission{{Component: "disk", MagNorm: 22.5, Mags: map[string]float64{"r": 23}}}},
		{ID: "b", Kind: "galaxy", Err: source.ErrMissingAttribute},
		{ID: "c", Kind: "galaxy", Emissions: []Emission{{Component: "bulge", MagNorm: math.NaN()}}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, results))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"id":"a","kind":"galaxy","emissions":[{"component":"disk","mag_norm":22.5,"mags":{"r":23}}]}`, lines[0])
	assert.JSONEq(t, `{"id":"c","kind":"galaxy","emissions":[{"component":"bulge","mag_norm":null}]}`, lines[1])

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &decoded))
	assert.NotContains(t, decoded, "Err")
}
