package source

import (
	"encoding/json"
	"fmt"
)

// Attributes exposes an object's native catalog columns.
type Attributes interface {
	// Float returns a scalar numeric attribute.
	Float(name string) (float64, bool)
	// Floats returns an array attribute such as a tophat SED.
	Floats(name string) ([]float64, bool)
	// String returns a string attribute.
	String(name string) (string, bool)
}

// MapAttributes implements Attributes over decoded records, e.g. one JSON
// object. Numbers may be any Go numeric type or json.Number; arrays may be
// []float64 or []any of numbers.
type MapAttributes map[string]any

var _ Attributes = MapAttributes(nil)

func (m MapAttributes) Float(name string) (float64, bool) {
	v, ok := m[name]
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

func (m MapAttributes) Floats(name string) ([]float64, bool) {
	v, ok := m[name]
	if !ok {
		return nil, false
	}
	switch arr := v.(type) {
	case []float64:
		out := make([]float64, len(arr))
		copy(out, arr)
		return out, true
	case []float32:
		out := make([]float64, len(arr))
		for i, f := range arr {
			out[i] = float64(f)
		}
		return out, true
	case []any:
		out := make([]float64, len(arr))
		for i, e := range arr {
			f, ok := toFloat(e)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	default:
		return nil, false
	}
}

func (m MapAttributes) String(name string) (string, bool) {
	v, ok := m[name]
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case fmt.Stringer:
		return s.String(), true
	default:
		return "", false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// requireFloat reads a scalar that must be present.
func requireFloat(attrs Attributes, name string) (float64, error) {
	v, ok := attrs.Float(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingAttribute, name)
	}
	return v, nil
}
