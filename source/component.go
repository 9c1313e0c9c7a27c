package source

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownComponent is returned for component names other than
	// bulge, disk and knots.
	ErrUnknownComponent = errors.New("source: unknown component")
	// ErrComponentUnavailable is returned when the catalog has no SED
	// values for a requested component.
	ErrComponentUnavailable = errors.New("source: component not in catalog")
	// ErrMissingAttribute is returned when a required attribute is absent.
	ErrMissingAttribute = errors.New("source: missing attribute")
	// ErrInvalidShape is returned for inconsistent size or knot attributes.
	ErrInvalidShape = errors.New("source: invalid shape attributes")
	// ErrInternalDustUnsupported is returned when internal dust is enabled
	// and an object has positive internal extinction. No internal dust
	// model is implemented.
	ErrInternalDustUnsupported = errors.New("source: internal dust extinction not implemented")
	// ErrUnknownKind is returned for unrecognised object types.
	ErrUnknownKind = errors.New("source: unknown object type")
)

// Component is a galaxy subcomponent.
type Component int

const (
	Bulge Component = iota
	Disk
	Knots
)

// Components lists every galaxy subcomponent in catalog order.
var Components = []Component{Bulge, Disk, Knots}

func (c Component) String() string {
	switch c {
	case Bulge:
		return "bulge"
	case Disk:
		return "disk"
	case Knots:
		return "knots"
	default:
		return "unknown"
	}
}

// ParseComponent resolves a component name.
func ParseComponent(name string) (Component, error) {
	switch strings.ToLower(name) {
	case "bulge":
		return Bulge, nil
	case "disk":
		return Disk, nil
	case "knots":
		return Knots, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownComponent, name)
	}
}

func (c Component) valid() bool { return c >= Bulge && c <= Knots }

// shapeSource is the component whose size and ellipticity columns c uses.
// Knots follow the disk.
func (c Component) shapeSource() Component {
	if c == Bulge {
		return Bulge
	}
	return Disk
}

// Kind is the catalog object type.
type Kind int

const (
	KindGalaxy Kind = iota
	KindStar
)

func (k Kind) String() string {
	switch k {
	case KindGalaxy:
		return "galaxy"
	case KindStar:
		return "star"
	default:
		return "unknown"
	}
}

// ParseKind resolves an object type name. The empty string is a galaxy.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "", "galaxy":
		return KindGalaxy, nil
	case "star":
		return KindStar, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}
