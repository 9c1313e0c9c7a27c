package dust

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-sed/sed/core"
)

// DefaultRv is the diffuse Milky Way total-to-selective extinction ratio.
const DefaultRv = 3.1

var (
	// ErrUnknownFamily is returned for unrecognised law names.
	ErrUnknownFamily = errors.New("dust: unknown extinction law")
	// ErrInvalidRv is returned for non-positive or non-finite Rv.
	ErrInvalidRv = errors.New("dust: Rv must be finite and > 0")
)

// Family identifies a dust-law shape family.
type Family int

const (
	// FamilyF99 is Fitzpatrick (1999). Valid for 0.3-10 µm⁻¹.
	FamilyF99 Family = iota
	// FamilyCCM89 is Cardelli, Clayton & Mathis (1989). Valid for 0.3-10 µm⁻¹.
	FamilyCCM89
	// FamilyOD94 is CCM89 with O'Donnell (1994) optical coefficients.
	FamilyOD94
)

// String returns the short law name.
func (f Family) String() string {
	switch f {
	case FamilyF99:
		return "F99"
	case FamilyCCM89:
		return "CCM89"
	case FamilyOD94:
		return "OD94"
	default:
		return "Unknown"
	}
}

// ParseFamily resolves a law name, case-insensitively. The empty string
// selects F99.
func ParseFamily(name string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "f99", "fitzpatrick99":
		return FamilyF99, nil
	case "ccm89", "cardelli89":
		return FamilyCCM89, nil
	case "od94", "odonnell94":
		return FamilyOD94, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFamily, name)
	}
}

// Law is an extinction curve A(λ)/A(V) at fixed Rv.
type Law interface {
	Name() string
	Rv() float64
	// Range returns the validity range in µm⁻¹.
	Range() (xMin, xMax float64)
	// WaveRange returns the validity range in nm.
	WaveRange() (nmMin, nmMax float64)
	// AlAv returns A(x)/A(V) at wavenumber x (µm⁻¹), or 0 outside Range.
	AlAv(x float64) float64
}

// New returns the law of the given family at rv.
func New(f Family, rv float64) (Law, error) {
	if !(rv > 0) || math.IsInf(rv, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRv, rv)
	}
	switch f {
	case FamilyF99:
		return newF99(rv)
	case FamilyCCM89:
		return &ccm{base: base{name: "CCM89", rv: rv, xMin: 0.3, xMax: 10}, optical: ccmOptical}, nil
	case FamilyOD94:
		return &ccm{base: base{name: "OD94", rv: rv, xMin: 0.3, xMax: 10}, optical: od94Optical}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFamily, int(f))
	}
}

// Transmission returns 10^(-0.4·av·A(λ)/A(V)) at waveNM, or 0 outside the
// law's range.
func Transmission(law Law, waveNM, av float64) float64 {
	x := core.NMToInverseMicron(waveNM)
	lo, hi := law.Range()
	if !(x >= lo && x <= hi) {
		return 0
	}
	return core.MagToFluxRatio(av * law.AlAv(x))
}

// base carries the shared Law bookkeeping.
type base struct {
	name       string
	rv         float64
	xMin, xMax float64
}

func (b *base) Name() string              { return b.name }
func (b *base) Rv() float64               { return b.rv }
func (b *base) Range() (float64, float64) { return b.xMin, b.xMax }
func (b *base) inRange(x float64) bool    { return x >= b.xMin && x <= b.xMax }
func (b *base) WaveRange() (float64, float64) {
	return core.InverseMicronToNM(b.xMax), core.InverseMicronToNM(b.xMin)
}
