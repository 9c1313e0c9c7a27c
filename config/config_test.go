package config

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-sed/internal/testutil"
	"github.com/cwbudde/algo-sed/sed/bins"
	"github.com/cwbudde/algo-sed/sed/cosmo"
	"github.com/cwbudde/algo-sed/sed/dust"
	"github.com/cwbudde/algo-sed/source"
)

const minimal = `
SED_models:
  tophat:
    bins: [[3000, 1000], [4000, 1000], [5000, 1000]]
Cosmology: {H0: 70, Om0: 0.3}
`

func TestLoadCosmoDC2(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "cosmodc2.yaml"))
	require.NoError(t, err)

	assert.Equal(t, testutil.CosmoDC2Bins(), cfg.SEDModels.Tophat.Bins)
	assert.Equal(t, 71.0, cfg.Cosmology.H0)
	assert.Equal(t, 0.2648, cfg.Cosmology.Om0)
	assert.Equal(t, 0.0448, cfg.Cosmology.Ob0)

	geom, err := cfg.BuildGeometry()
	require.NoError(t, err)
	assert.Equal(t, 30, geom.Len())
	ix, ok := geom.Pivot500()
	assert.True(t, ok)
	assert.Equal(t, 13, ix)
}

func TestDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, bins.DefaultDeltaWL, cfg.SEDModels.Tophat.DeltaWL)
	assert.Equal(t, "F99", cfg.Extinction.Law)
	assert.Equal(t, 3.1, cfg.Extinction.Rv)
	assert.Zero(t, cfg.SEDModels.Tophat.Resolution)
	assert.False(t, cfg.InternalDust)
	assert.Empty(t, cfg.SEDLibraryDir)

	law, err := cfg.BuildLaw()
	require.NoError(t, err)
	assert.Equal(t, "F99", law.Name())
	assert.Equal(t, 3.1, law.Rv())
}

func TestExplicitFields(t *testing.T) {
	cfg, err := Parse([]byte(minimal + `
extinction: {law: ccm89, Rv: 3.6}
sed_library_dir: /data/sims_sed_library
internal_dust: true
`))
	require.NoError(t, err)

	law, err := cfg.BuildLaw()
	require.NoError(t, err)
	assert.Equal(t, "CCM89", law.Name())
	assert.Equal(t, 3.6, law.Rv())
	assert.True(t, cfg.InternalDust)
	assert.NotNil(t, cfg.Library())
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "no bins", yaml: `Cosmology: {H0: 70, Om0: 0.3}`},
		{name: "bad H0", yaml: `
SED_models: {tophat: {bins: [[3000, 1000]]}}
Cosmology: {H0: -1, Om0: 0.3}`},
		{name: "bad Om0", yaml: `
SED_models: {tophat: {bins: [[3000, 1000]]}}
Cosmology: {H0: 70, Om0: 1.5}`},
		{name: "radiation", yaml: `
SED_models: {tophat: {bins: [[3000, 1000]]}}
Cosmology: {H0: 70, Om0: 0.3, Tcmb0: 2.725}`},
		{name: "negative delta", yaml: `
SED_models: {tophat: {bins: [[3000, 1000]], delta_wl: -1}}
Cosmology: {H0: 70, Om0: 0.3}`},
		{name: "negative resolution", yaml: `
SED_models: {tophat: {bins: [[3000, 1000]], resolution: -1}}
Cosmology: {H0: 70, Om0: 0.3}`},
		{name: "unknown law", yaml: `
SED_models: {tophat: {bins: [[3000, 1000]]}}
Cosmology: {H0: 70, Om0: 0.3}
extinction: {law: F19}`},
		{name: "negative Rv", yaml: `
SED_models: {tophat: {bins: [[3000, 1000]]}}
Cosmology: {H0: 70, Om0: 0.3}
extinction: {Rv: -2}`},
		{name: "bin triple", yaml: `
SED_models: {tophat: {bins: [[3000, 1000, 5]]}}
Cosmology: {H0: 70, Om0: 0.3}`},
		{name: "not yaml", yaml: `SED_models: [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestBuildGeometryRejectsGaps(t *testing.T) {
	cfg, err := Parse([]byte(`
SED_models: {tophat: {bins: [[3000, 1000], [4500, 1000]]}}
Cosmology: {H0: 70, Om0: 0.3}
`))
	require.NoError(t, err)
	_, err = cfg.BuildGeometry()
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, bins.ErrInvalidGeometry)
}

func TestErrorsKeepEngineSentinels(t *testing.T) {
	_, err := Parse([]byte(`
SED_models: {tophat: {bins: [[3000, 1000]]}}
Cosmology: {H0: 70, Om0: 1.5}`))
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, cosmo.ErrInvalidParams)

	_, err = Parse([]byte(minimal + "extinction: {law: F19}\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, dust.ErrUnknownFamily)

	cfg, err := Parse([]byte(minimal))
	require.NoError(t, err)

	cfg.Extinction.Rv = -1
	_, err = cfg.BuildLaw()
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, dust.ErrInvalidRv)

	cfg.Extinction.Rv = 3.1
	cfg.Cosmology.H0 = 0
	_, err = cfg.BuildCosmology()
	assert.ErrorIs(t, err, cosmo.ErrInvalidParams)
	_, err = cfg.NewSession(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, cosmo.ErrInvalidParams)

	cfg.Cosmology.H0 = 70
	cfg.SEDModels.Tophat.DeltaWL = 500
	_, err = cfg.NewSession(nil)
	assert.ErrorIs(t, err, bins.ErrInvalidGeometry)
}

func TestResolve(t *testing.T) {
	env := map[string]string{LibraryDirEnv: "/env/seds"}
	lookup := func(k string) string { return env[k] }

	cfg, err := Parse([]byte(minimal))
	require.NoError(t, err)
	cfg.Resolve(lookup)
	assert.Equal(t, "/env/seds", cfg.SEDLibraryDir)

	cfg, err = Parse([]byte(minimal + "sed_library_dir: /file/seds\n"))
	require.NoError(t, err)
	cfg.Resolve(lookup)
	assert.Equal(t, "/file/seds", cfg.SEDLibraryDir, "file setting wins over the environment")

	cfg.SEDLibraryDir = ""
	cfg.Resolve(nil)
	assert.Empty(t, cfg.SEDLibraryDir)
	assert.Nil(t, cfg.Library())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Cosmology: {H0: 70}\n"), 0o600))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "bad.yaml")
}

func TestNewSession(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "cosmodc2.yaml"))
	require.NoError(t, err)

	libFS := fstest.MapFS{"flat.dat": {Data: []byte("300 1\n900 1\n")}}
	session, err := cfg.NewSession(libFS)
	require.NoError(t, err)
	assert.Equal(t, 30, session.Factory().Geometry().Len())
	assert.Equal(t, "F99", session.Extinguisher().Law().Name())

	star := source.NewStar("s", source.MapAttributes{"sed_filepath": "flat.dat", "magnorm": 20.0}, session)
	_, magNorm, err := star.SED()
	require.NoError(t, err)
	assert.Equal(t, 20.0, magNorm)
}
