package source

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-sed/sed/spectrum"
)

// ErrNoLibrary is returned when a star is processed by a session without
// a point-source SED library.
var ErrNoLibrary = errors.New("source: no point-source SED library")

// Star is a point source with a tabulated SED file.
type Star struct {
	id      string
	attrs   Attributes
	session *Session
}

var _ Object = (*Star)(nil)

// NewStar wraps attrs.
func NewStar(id string, attrs Attributes, s *Session) *Star {
	return &Star{id: id, attrs: attrs, session: s}
}

func (s *Star) ID() string { return s.id }
func (s *Star) Kind() Kind { return KindStar }

// SED loads sed_filepath from the library and returns it with the
// catalog magnorm.
func (s *Star) SED() (*spectrum.Spectrum, float64, error) {
	if s.session.lib == nil {
		return nil, 0, ErrNoLibrary
	}
	path, ok := s.attrs.String("sed_filepath")
	if !ok || path == "" {
		return nil, 0, fmt.Errorf("%w: sed_filepath", ErrMissingAttribute)
	}
	magNorm, err := requireFloat(s.attrs, "magnorm")
	if err != nil {
		return nil, 0, err
	}
	sed, err := s.session.lib.Load(path, 0)
	if err != nil {
		return nil, 0, err
	}
	return sed, magNorm, nil
}

// ObserverSED returns the SED after Milky Way extinction.
func (s *Star) ObserverSED() (*spectrum.Spectrum, error) {
	sed, _, err := s.SED()
	if err != nil {
		return nil, err
	}
	return s.session.applyDust(s.attrs, sed)
}

// Emissions returns the single point-source emission.
func (s *Star) Emissions() ([]Emission, error) {
	sed, magNorm, err := s.SED()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.id, err)
	}
	if sed, err = s.session.applyDust(s.attrs, sed); err != nil {
		return nil, fmt.Errorf("%s: %w", s.id, err)
	}
	return []Emission{{Component: "point", SED: sed, MagNorm: magNorm}}, nil
}
