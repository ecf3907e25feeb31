// Package transform implements document steps, position mapping and the
// Transform builder that applies steps atomically and records their
// inverses.
package transform

import "fmt"

// Assoc decides which side a position sticks to when content is inserted
// exactly at it.
type Assoc int

const (
	// AssocBefore keeps the position before inserted content.
	AssocBefore Assoc = -1
	// AssocAfter moves the position after inserted content.
	AssocAfter Assoc = 1
)

// span is one replaced range: oldSize positions at start became newSize.
type span struct {
	start   int
	oldSize int
	newSize int
}

// StepMap translates positions across a single step. It is a pure value.
type StepMap struct {
	spans []span
}

// EmptyMap maps every position to itself.
//
//nolint:gochecknoglobals // immutable identity map
var EmptyMap = StepMap{}

// NewStepMap builds a map for one replaced range.
func NewStepMap(start, oldSize, newSize int) StepMap {
	if oldSize == 0 && newSize == 0 {
		return EmptyMap
	}
	return StepMap{spans: []span{{start: start, oldSize: oldSize, newSize: newSize}}}
}

// Map translates pos. Positions inside a deleted range collapse to the
// side chosen by assoc.
func (m StepMap) Map(pos int, assoc Assoc) int {
	mapped, _ := m.MapResult(pos, assoc)
	return mapped
}

// MapResult translates pos and reports whether the content around it was
// deleted.
func (m StepMap) MapResult(pos int, assoc Assoc) (int, bool) {
	diff := 0
	for _, sp := range m.spans {
		if sp.start > pos {
			break
		}
		end := sp.start + sp.oldSize
		if pos <= end {
			side := assoc
			switch {
			case sp.oldSize == 0:
			case pos == sp.start:
				side = AssocBefore
			case pos == end:
				side = AssocAfter
			}
			result := sp.start + diff
			if side > 0 {
				result += sp.newSize
			}
			deleted := sp.oldSize > 0 && pos > sp.start && pos < end
			return result, deleted
		}
		diff += sp.newSize - sp.oldSize
	}
	return pos + diff, false
}

// Invert returns the map from the step's output back to its input.
func (m StepMap) Invert() StepMap {
	out := StepMap{spans: make([]span, len(m.spans))}
	diff := 0
	for i, sp := range m.spans {
		out.spans[i] = span{start: sp.start + diff, oldSize: sp.newSize, newSize: sp.oldSize}
		diff += sp.newSize - sp.oldSize
	}
	return out
}

// String renders the map for debugging.
func (m StepMap) String() string {
	return fmt.Sprint(m.spans)
}

// Mapping composes the maps of several steps.
type Mapping struct {
	maps []StepMap
}

// Append adds a step map to the end of the mapping.
func (m *Mapping) Append(sm StepMap) {
	m.maps = append(m.maps, sm)
}

// AppendMapping adds every map of other.
func (m *Mapping) AppendMapping(other Mapping) {
	m.maps = append(m.maps, other.maps...)
}

// Len returns the number of maps.
func (m Mapping) Len() int { return len(m.maps) }

// Maps returns the step maps in order.
func (m Mapping) Maps() []StepMap { return append([]StepMap(nil), m.maps...) }

// Slice returns the mapping of maps [from, len).
func (m Mapping) Slice(from int) Mapping {
	return Mapping{maps: append([]StepMap(nil), m.maps[from:]...)}
}

// Map translates pos through every map in order.
func (m Mapping) Map(pos int, assoc Assoc) int {
	for _, sm := range m.maps {
		pos = sm.Map(pos, assoc)
	}
	return pos
}

// Invert returns a mapping that translates positions backward.
func (m Mapping) Invert() Mapping {
	out := Mapping{maps: make([]StepMap, len(m.maps))}
	for i, sm := range m.maps {
		out.maps[len(m.maps)-1-i] = sm.Invert()
	}
	return out
}
