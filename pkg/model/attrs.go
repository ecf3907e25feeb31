package model

import (
	"fmt"
	"maps"
	"slices"
)

// Attrs holds the attribute values of a node or mark.
type Attrs map[string]any

// AttrKind is the value domain of an attribute.
type AttrKind uint8

const (
	AttrString AttrKind = iota
	AttrBool
	AttrInt
)

// String returns a human-readable name for the kind.
func (k AttrKind) String() string {
	switch k {
	case AttrString:
		return "string"
	case AttrBool:
		return "bool"
	case AttrInt:
		return "int"
	default:
		return "unknown"
	}
}

// AttrSpec declares one attribute of a node or mark type.
type AttrSpec struct {
	// Kind is the value domain.
	Kind AttrKind

	// Default is used when the attribute is not given. A nil Default makes
	// the attribute required.
	Default any

	// Min and Max bound AttrInt values when Max > 0.
	Min int
	Max int

	// Enum restricts AttrString values when non-empty.
	Enum []string
}

// Required reports whether the attribute has no default.
func (s AttrSpec) Required() bool {
	return s.Default == nil
}

// Check reports whether value lies in the declared domain.
func (s AttrSpec) Check(value any) error {
	switch s.Kind {
	case AttrString:
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		if len(s.Enum) > 0 && !slices.Contains(s.Enum, str) {
			return fmt.Errorf("value %q not in %v", str, s.Enum)
		}
	case AttrBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
	case AttrInt:
		n, ok := value.(int)
		if !ok {
			return fmt.Errorf("expected int, got %T", value)
		}
		if s.Max > 0 && (n < s.Min || n > s.Max) {
			return fmt.Errorf("value %d outside [%d, %d]", n, s.Min, s.Max)
		}
	default:
		return fmt.Errorf("unknown attribute kind %d", s.Kind)
	}
	return nil
}

// Clamp forces an AttrInt value into [Min, Max]. Other kinds are returned
// unchanged.
func (s AttrSpec) Clamp(n int) int {
	if s.Kind != AttrInt || s.Max <= 0 {
		return n
	}
	return max(s.Min, min(n, s.Max))
}

// Get returns the attribute value, or nil when absent.
func (a Attrs) Get(name string) any {
	return a[name]
}

// String returns a string attribute, or "" when absent or not a string.
func (a Attrs) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Bool returns a bool attribute, or false when absent or not a bool.
func (a Attrs) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// Int returns an int attribute, or 0 when absent or not an int.
func (a Attrs) Int(name string) int {
	n, _ := a[name].(int)
	return n
}

// With returns a copy of a with name set to value.
func (a Attrs) With(name string, value any) Attrs {
	out := maps.Clone(a)
	if out == nil {
		out = Attrs{}
	}
	out[name] = value
	return out
}

// Eq reports whether both attribute sets hold equal values.
func (a Attrs) Eq(other Attrs) bool {
	if len(a) != len(other) {
		return false
	}
	for key, val := range a {
		ov, ok := other[key]
		if !ok || ov != val {
			return false
		}
	}
	return true
}

// computeAttrs fills defaults and checks every value against its spec.
func computeAttrs(owner string, specs map[string]AttrSpec, given Attrs) (Attrs, error) {
	built := make(Attrs, len(specs))
	for name, spec := range specs {
		val, ok := given[name]
		if !ok || val == nil {
			if spec.Required() {
				return nil, fmt.Errorf("%s: no value supplied for attribute %q", owner, name)
			}
			val = spec.Default
		}
		if err := spec.Check(val); err != nil {
			return nil, fmt.Errorf("%s: attribute %q: %w", owner, name, err)
		}
		built[name] = val
	}
	for name := range given {
		if _, ok := specs[name]; !ok {
			return nil, fmt.Errorf("%s: unknown attribute %q", owner, name)
		}
	}
	return built, nil
}
