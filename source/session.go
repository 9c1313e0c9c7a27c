package source

import (
	"errors"

	"github.com/cwbudde/algo-sed/sed/dust"
	"github.com/cwbudde/algo-sed/sed/observed"
	"github.com/cwbudde/algo-sed/sed/spectrum"
)

// Session holds the read-only engines shared by every object of a
// catalog. It is safe for concurrent use.
type Session struct {
	factory *observed.Factory
	ext     *dust.Extinguisher
	lib     *observed.Library
	opts    Options
}

// Options control object-level processing.
type Options struct {
	// InternalDust enables host-galaxy extinction. No model is
	// implemented, so objects with internal_av > 0 then fail with
	// ErrInternalDustUnsupported. When false internal dust is skipped.
	InternalDust bool
	// Resolution, when positive, resamples galaxy SEDs to this step in nm.
	Resolution float64
}

// NewSession validates and bundles the engines. lib may be nil when no
// point sources are processed.
func NewSession(factory *observed.Factory, ext *dust.Extinguisher, lib *observed.Library, opts Options) (*Session, error) {
	if factory == nil {
		return nil, errors.New("source: nil SED factory")
	}
	if ext == nil {
		return nil, errors.New("source: nil extinguisher")
	}
	return &Session{factory: factory, ext: ext, lib: lib, opts: opts}, nil
}

// Factory returns the tophat SED factory.
func (s *Session) Factory() *observed.Factory { return s.factory }

// Extinguisher returns the Milky Way extinguisher.
func (s *Session) Extinguisher() *dust.Extinguisher { return s.ext }

// Options returns the processing options.
func (s *Session) Options() Options { return s.opts }

// applyDust applies internal (if enabled) and Milky Way extinction.
func (s *Session) applyDust(attrs Attributes, sed *spectrum.Spectrum) (*spectrum.Spectrum, error) {
	if s.opts.InternalDust {
		if iav, ok := attrs.Float("internal_av"); ok && iav > 0 {
			return nil, ErrInternalDustUnsupported
		}
	}
	mwAv, err := requireFloat(attrs, "MW_av")
	if err != nil {
		return nil, err
	}
	return s.ext.Extinguish(sed, mwAv)
}

// Emission is one emitting component of an object.
type Emission struct {
	Component string
	// SED is the observer-frame SED after extinction.
	SED     *spectrum.Spectrum
	MagNorm float64
}

// Object is a catalog source that can produce its emissions.
type Object interface {
	ID() string
	Kind() Kind
	Emissions() ([]Emission, error)
}

// New builds the object described by attrs. The type comes from the
// object_type attribute and defaults to galaxy.
func (s *Session) New(id string, attrs Attributes) (Object, error) {
	name, _ := attrs.String("object_type")
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	if kind == KindStar {
		return NewStar(id, attrs, s), nil
	}
	return NewGalaxy(id, attrs, s), nil
}
