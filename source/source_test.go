package source

import (
	"encoding/json"
	"math"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-sed/internal/testutil"
	"github.com/cwbudde/algo-sed/sed/bins"
	"github.com/cwbudde/algo-sed/sed/cosmo"
	"github.com/cwbudde/algo-sed/sed/dust"
	"github.com/cwbudde/algo-sed/sed/observed"
)

func newSession(t *testing.T, opts Options) *Session {
	t.Helper()
	geom, err := bins.New(bins.FromPairs(testutil.CosmoDC2Bins()), bins.DefaultDeltaWL)
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
	s, err := NewSession(factory, ext, lib, opts)
	require.NoError(t, err)
	return s
}

func galaxyAttrs() MapAttributes {
	return MapAttributes{
		"sed_val_bulge":             testutil.FlatTophat(1e40, 30),
		"sed_val_disk":              testutil.FlatTophat(3e40, 30),
		"redshift_hubble":           0.5,
		"redshift":                  0.501,
		"shear_1":                   0.02,
		"shear_2":                   -0.01,
		"convergence":               0.05,
		"MW_av":                     0.1,
		"size_bulge_true":           0.8,
		"size_minor_bulge_true":     0.2,
		"size_disk_true":            2.0,
		"size_minor_disk_true":      0.5,
		"ellipticity_1_bulge_true":  0.1,
		"ellipticity_2_bulge_true":  -0.2,
		"ellipticity_1_disk_true":   0.3,
		"ellipticity_2_disk_true":   0.05,
		"sersic_bulge":              3.987,
		"sersic_disk":               1.0,
		"n_knots":                   12,
		"sed_val_knots":             testutil.FlatTophat(0, 30),
		"object_type":               "galaxy",
		"unrelated_catalog_column":  "ignored",
		"another_unrelated_numeric": 7,
	}
}

func TestMapAttributes(t *testing.T) {
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"a": 1.5, "arr": [1, 2.5], "s": "x", "bad": [1, "y"]}`), &decoded))
	attrs := MapAttributes(decoded)

	f, ok := attrs.Float("a")
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)

	arr, ok := attrs.Floats("arr")
	assert.True(t, ok)
	assert.Equal(t, []float64{1, 2.5}, arr)

	s, ok := attrs.String("s")
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	_, ok = attrs.Floats("bad")
	assert.False(t, ok)
	_, ok = attrs.Float("s")
	assert.False(t, ok)
	_, ok = attrs.String("a")
	assert.False(t, ok)
	_, ok = attrs.Float("missing")
	assert.False(t, ok)

	typed := MapAttributes{"i": 3, "n": json.Number("2.25"), "f32": []float32{0.5}}
	i, ok := typed.Float("i")
	assert.True(t, ok)
	assert.Equal(t, 3.0, i)
	n, ok := typed.Float("n")
	assert.True(t, ok)
	assert.Equal(t, 2.25, n)
	f32, ok := typed.Floats("f32")
	assert.True(t, ok)
	assert.Equal(t, []float64{0.5}, f32)
}

func TestParseComponent(t *testing.T) {
	for _, c := range Components {
		got, err := ParseComponent(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseComponent("halo")
	assert.ErrorIs(t, err, ErrUnknownComponent)
	assert.Equal(t, "unknown", Component(7).String())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindGalaxy, k)
	k, err = ParseKind("star")
	require.NoError(t, err)
	assert.Equal(t, KindStar, k)
	_, err = ParseKind("sn")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestGalaxySED(t *testing.T) {
	s := newSession(t, Options{})
	g := NewGalaxy("g1", galaxyAttrs(), s)

	assert.Equal(t, []Component{Bulge, Disk, Knots}, g.Subcomponents())

	sed, magNorm, err := g.SED(Disk)
	require.NoError(t, err)
	require.NotNil(t, sed)
	assert.InDelta(t, 0.501, sed.Redshift(), 1e-15)
	assert.False(t, math.IsNaN(magNorm))

	bulge, bulgeMag, err := g.SED(Bulge)
	require.NoError(t, err)
	// The disk is three times brighter than the bulge.
	assert.InDelta(t, 2.5*math.Log10(3), bulgeMag-magNorm, 1e-9)
	assert.InDelta(t, 3, sed.Flux(700)/bulge.Flux(700), 1e-12)

	knots, knotsMag, err := g.SED(Knots)
	require.NoError(t, err)
	assert.Nil(t, knots)
	assert.Equal(t, 0.0, knotsMag)
}

func TestGalaxySEDErrors(t *testing.T) {
	s := newSession(t, Options{})

	attrs := galaxyAttrs()
	delete(attrs, "sed_val_knots")
	g := NewGalaxy("g2", attrs, s)
	_, _, err := g.SED(Knots)
	assert.ErrorIs(t, err, ErrComponentUnavailable)

	_, _, err = g.SED(Component(5))
	assert.ErrorIs(t, err, ErrUnknownComponent)

	attrs = galaxyAttrs()
	delete(attrs, "redshift_hubble")
	_, _, err = NewGalaxy("g3", attrs, s).SED(Disk)
	assert.ErrorIs(t, err, ErrMissingAttribute)

	attrs = galaxyAttrs()
	attrs["redshift_hubble"] = -0.1
	_, _, err = NewGalaxy("g4", attrs, s).SED(Disk)
	assert.ErrorIs(t, err, cosmo.ErrNegativeRedshift)
}

func TestGalaxyObserverSED(t *testing.T) {
	s := newSession(t, Options{})
	g := NewGalaxy("g1", galaxyAttrs(), s)

	raw, _, err := g.SED(Disk)
	require.NoError(t, err)
	obs, err := g.ObserverSED(Disk)
	require.NoError(t, err)
	require.NotNil(t, obs)

	for _, nm := range []float64{400, 700, 1000} {
		assert.Less(t, obs.Flux(nm), raw.Flux(nm), "extinction must dim at %v nm", nm)
		assert.Greater(t, obs.Flux(nm), 0.0)
	}

	none, err := g.ObserverSED(Knots)
	require.NoError(t, err)
	assert.Nil(t, none)

	emissions, err := g.Emissions()
	require.NoError(t, err)
	require.Len(t, emissions, 2)
	assert.Equal(t, "bulge", emissions[0].Component)
	assert.Equal(t, "disk", emissions[1].Component)
}

func TestInternalDust(t *testing.T) {
	attrs := galaxyAttrs()
	attrs["internal_av"] = 0.3

	_, err := NewGalaxy("g", attrs, newSession(t, Options{})).ObserverSED(Disk)
	require.NoError(t, err, "internal dust is skipped when disabled")

	_, err = NewGalaxy("g", attrs, newSession(t, Options{InternalDust: true})).ObserverSED(Disk)
	assert.ErrorIs(t, err, ErrInternalDustUnsupported)

	attrs["internal_av"] = 0.0
	_, err = NewGalaxy("g", attrs, newSession(t, Options{InternalDust: true})).ObserverSED(Disk)
	assert.NoError(t, err)
}

func TestMilkyWayAvRequired(t *testing.T) {
	s := newSession(t, Options{})

	attrs := galaxyAttrs()
	delete(attrs, "MW_av")
	g := NewGalaxy("g", attrs, s)
	_, err := g.ObserverSED(Disk)
	assert.ErrorIs(t, err, ErrMissingAttribute)
	_, err = g.Emissions()
	assert.ErrorIs(t, err, ErrMissingAttribute)

	attrs["MW_av"] = "oops"
	_, err = NewGalaxy("g", attrs, s).ObserverSED(Disk)
	assert.ErrorIs(t, err, ErrMissingAttribute)

	attrs["MW_av"] = 0.0
	_, err = NewGalaxy("g", attrs, s).ObserverSED(Disk)
	assert.NoError(t, err, "zero extinction is explicit")
}

func TestResolutionOption(t *testing.T) {
	s := newSession(t, Options{Resolution: 5})
	sed, _, err := NewGalaxy("g", galaxyAttrs(), s).SED(Disk)
	require.NoError(t, err)
	waves := sed.WaveList()
	require.Greater(t, len(waves), 2)
	assert.InDelta(t, 5*1.501, waves[1]-waves[0], 1e-9)
}

func TestGalaxyLensing(t *testing.T) {
	g := NewGalaxy("g", galaxyAttrs(), newSession(t, Options{}))
	p, err := g.Lensing()
	require.NoError(t, err)
	assert.InDelta(t, 0.0211, p.G1, 1e-3)
	assert.InDelta(t, -0.0105, p.G2, 1e-3)
	assert.InDelta(t, 1.1086, p.Mu, 1e-3)

	attrs := galaxyAttrs()
	delete(attrs, "convergence")
	_, err = NewGalaxy("g", attrs, newSession(t, Options{})).Lensing()
	assert.ErrorIs(t, err, ErrMissingAttribute)
}

func TestGalaxyProfiles(t *testing.T) {
	g := NewGalaxy("g", galaxyAttrs(), newSession(t, Options{}))
	profiles, err := g.Profiles()
	require.NoError(t, err)
	require.Len(t, profiles, 3)

	bulge := profiles[Bulge]
	assert.Equal(t, ProfileSersic, bulge.Kind)
	assert.InDelta(t, 4.0, bulge.SersicIndex, 1e-12)
	assert.InDelta(t, 0.4, bulge.HalfLightRadius, 1e-12)
	assert.Equal(t, -0.1, bulge.Shear1)
	assert.Equal(t, 0.2, bulge.Shear2)

	disk := profiles[Disk]
	assert.InDelta(t, 1.0, disk.HalfLightRadius, 1e-12)
	assert.Equal(t, 1.0, disk.SersicIndex)

	knots := profiles[Knots]
	assert.Equal(t, ProfileKnots, knots.Kind)
	assert.Equal(t, 12, knots.NKnots)
	assert.Equal(t, disk.HalfLightRadius, knots.HalfLightRadius)
	assert.Equal(t, disk.Shear1, knots.Shear1)
	assert.InDelta(t, 1.1086, knots.Lensing.Mu, 1e-3)
}

func TestGalaxyProfileErrors(t *testing.T) {
	s := newSession(t, Options{})

	attrs := galaxyAttrs()
	attrs["size_minor_bulge_true"] = 0.9
	_, err := NewGalaxy("g", attrs, s).Profiles(Bulge)
	assert.ErrorIs(t, err, ErrInvalidShape)

	attrs = galaxyAttrs()
	attrs["n_knots"] = 0
	_, err = NewGalaxy("g", attrs, s).Profiles(Knots)
	assert.ErrorIs(t, err, ErrInvalidShape)

	attrs = galaxyAttrs()
	delete(attrs, "sersic_disk")
	_, err = NewGalaxy("g", attrs, s).Profiles(Disk)
	assert.ErrorIs(t, err, ErrMissingAttribute)
}

func TestQuantizeSersic(t *testing.T) {
	tests := map[float64]float64{0.5: 0.5, 0.524: 0.5, 0.526: 0.55, 3.987: 4.0, 1.0: 1.0}
	for in, want := range tests {
		assert.InDelta(t, want, QuantizeSersic(in), 1e-12, "n=%v", in)
	}
}

func TestStar(t *testing.T) {
	s := newSession(t, Options{})
	attrs := MapAttributes{
		"object_type":  "star",
		"sed_filepath": "starSED/flat.dat",
		"magnorm":      18.5,
		"MW_av":        0.2,
	}
	obj, err := s.New("s1", attrs)
	require.NoError(t, err)
	assert.Equal(t, KindStar, obj.Kind())
	assert.Equal(t, "s1", obj.ID())

	star := obj.(*Star)
	sed, magNorm, err := star.SED()
	require.NoError(t, err)
	assert.Equal(t, 18.5, magNorm)
	assert.InDelta(t, 1e-14, sed.Flux(500), 1e-26)

	obs, err := star.ObserverSED()
	require.NoError(t, err)
	assert.Less(t, obs.Flux(500), sed.Flux(500))

	emissions, err := obj.Emissions()
	require.NoError(t, err)
	require.Len(t, emissions, 1)
	assert.Equal(t, "point", emissions[0].Component)

	delete(attrs, "sed_filepath")
	_, _, err = NewStar("s2", attrs, s).SED()
	assert.ErrorIs(t, err, ErrMissingAttribute)

	noLib, err := NewSession(s.Factory(), s.Extinguisher(), nil, Options{})
	require.NoError(t, err)
	_, _, err = NewStar("s3", attrs, noLib).SED()
	assert.ErrorIs(t, err, ErrNoLibrary)
}

func TestSessionNew(t *testing.T) {
	s := newSession(t, Options{})
	obj, err := s.New("g", galaxyAttrs())
	require.NoError(t, err)
	assert.Equal(t, KindGalaxy, obj.Kind())

	_, err = s.New("x", MapAttributes{"object_type": "supernova"})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = NewSession(nil, s.Extinguisher(), nil, Options{})
	assert.Error(t, err)
	_, err = NewSession(s.Factory(), nil, nil, Options{})
	assert.Error(t, err)
}
