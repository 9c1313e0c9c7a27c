package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-sed/sed/bins"
	"github.com/cwbudde/algo-sed/sed/cosmo"
	"github.com/cwbudde/algo-sed/sed/dust"
	"github.com/cwbudde/algo-sed/sed/observed"
	"github.com/cwbudde/algo-sed/source"
)

// LibraryDirEnv names the environment variable consulted by Resolve.
const LibraryDirEnv = "SIMS_SED_LIBRARY_DIR"

// ErrInvalidConfig wraps every load and validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the catalog configuration.
type Config struct {
	SEDModels     SEDModels  `yaml:"SED_models"`
	Cosmology     Cosmology  `yaml:"Cosmology"`
	Extinction    Extinction `yaml:"extinction"`
	SEDLibraryDir string     `yaml:"sed_library_dir"`
	InternalDust  bool       `yaml:"internal_dust"`
}

// SEDModels holds the SED model families.
type SEDModels struct {
	Tophat Tophat `yaml:"tophat"`
}

// Tophat describes the catalog's tophat bins.
type Tophat struct {
	Bins       [][2]float64 `yaml:"bins"`
	DeltaWL    float64      `yaml:"delta_wl"`
	Resolution float64      `yaml:"resolution"`
}

// Cosmology holds the flat ΛCDM parameters.
type Cosmology struct {
	H0    float64 `yaml:"H0"`
	Om0   float64 `yaml:"Om0"`
	Ob0   float64 `yaml:"Ob0"`
	Tcmb0 float64 `yaml:"Tcmb0"`
}

// Extinction selects the Milky Way dust law.
type Extinction struct {
	Law string  `yaml:"law"`
	Rv  float64 `yaml:"Rv"`
}

// Load reads and parses a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills unset optional fields.
func (c *Config) ApplyDefaults() {
	if c.SEDModels.Tophat.DeltaWL == 0 {
		c.SEDModels.Tophat.DeltaWL = bins.DefaultDeltaWL
	}
	if c.Extinction.Law == "" {
		c.Extinction.Law = dust.FamilyF99.String()
	}
	if c.Extinction.Rv == 0 {
		c.Extinction.Rv = dust.DefaultRv
	}
}

// Validate checks field ranges. Bin geometry is checked in full when it is
// built.
func (c *Config) Validate() error {
	t := c.SEDModels.Tophat
	if len(t.Bins) == 0 {
		return fmt.Errorf("%w: SED_models.tophat.bins is required", ErrInvalidConfig)
	}
	if !(t.DeltaWL > 0) {
		return fmt.Errorf("%w: SED_models.tophat.delta_wl must be > 0, got %v", ErrInvalidConfig, t.DeltaWL)
	}
	if !(t.Resolution >= 0) || math.IsInf(t.Resolution, 0) {
		return fmt.Errorf("%w: SED_models.tophat.resolution must be >= 0, got %v", ErrInvalidConfig, t.Resolution)
	}
	if err := c.CosmologyParams().Validate(); err != nil {
		return fmt.Errorf("%w: Cosmology: %w", ErrInvalidConfig, err)
	}
	if _, err := dust.ParseFamily(c.Extinction.Law); err != nil {
		return fmt.Errorf("%w: extinction.law: %w", ErrInvalidConfig, err)
	}
	if !(c.Extinction.Rv > 0) {
		return fmt.Errorf("%w: extinction.Rv must be > 0, got %v", ErrInvalidConfig, c.Extinction.Rv)
	}
	return nil
}

// Resolve fills SEDLibraryDir from LibraryDirEnv through lookup when it is
// not set in the file. Pass os.Getenv in production.
func (c *Config) Resolve(lookup func(string) string) {
	if c.SEDLibraryDir == "" && lookup != nil {
		c.SEDLibraryDir = lookup(LibraryDirEnv)
	}
}

// Bins returns the tophat bins.
func (c *Config) Bins() []bins.Bin {
	return bins.FromPairs(c.SEDModels.Tophat.Bins)
}

// CosmologyParams returns the cosmology parameters.
func (c *Config) CosmologyParams() cosmo.Params {
	return cosmo.Params{
		H0:    c.Cosmology.H0,
		Om0:   c.Cosmology.Om0,
		Ob0:   c.Cosmology.Ob0,
		Tcmb0: c.Cosmology.Tcmb0,
	}
}

// BuildGeometry builds the bin geometry.
func (c *Config) BuildGeometry() (*bins.Geometry, error) {
	g, err := bins.New(c.Bins(), c.SEDModels.Tophat.DeltaWL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return g, nil
}

// BuildCosmology builds the distance model.
func (c *Config) BuildCosmology() (*cosmo.FlatLambdaCDM, error) {
	m, err := cosmo.NewFlatLambdaCDM(c.CosmologyParams())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return m, nil
}

// BuildLaw builds the Milky Way dust law.
func (c *Config) BuildLaw() (dust.Law, error) {
	family, err := dust.ParseFamily(c.Extinction.Law)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	law, err := dust.New(family, c.Extinction.Rv)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return law, nil
}

// Library returns the point-source library rooted at SEDLibraryDir, or
// nil when no directory is configured.
func (c *Config) Library() *observed.Library {
	if c.SEDLibraryDir == "" {
		return nil
	}
	return observed.NewLibrary(os.DirFS(c.SEDLibraryDir))
}

// NewSession builds every engine and bundles them. libFS overrides the
// configured library directory when non-nil.
func (c *Config) NewSession(libFS fs.FS) (*source.Session, error) {
	geom, err := c.BuildGeometry()
	if err != nil {
		return nil, err
	}
	dist, err := c.BuildCosmology()
	if err != nil {
		return nil, err
	}
	factory, err := observed.NewFactory(geom, dist)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	law, err := c.BuildLaw()
	if err != nil {
		return nil, err
	}
	ext, err := dust.NewExtinguisher(geom.Deltas(), law)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	lib := c.Library()
	if libFS != nil {
		lib = observed.NewLibrary(libFS)
	}
	return source.NewSession(factory, ext, lib, source.Options{
		InternalDust: c.InternalDust,
		Resolution:   c.SEDModels.Tophat.Resolution,
	})
}
