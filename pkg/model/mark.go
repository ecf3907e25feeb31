package model

import (
	"slices"
	"strings"
)

// Mark is an inline annotation (emphasis, link, code) applied to a run of
// text or an inline leaf.
type Mark struct {
	Type  *MarkType
	Attrs Attrs
}

// Eq reports whether both marks have the same type and attributes.
func (m Mark) Eq(other Mark) bool {
	return m.Type == other.Type && m.Attrs.Eq(other.Attrs)
}

// IsInSet reports whether an equal mark is in set.
func (m Mark) IsInSet(set MarkSet) bool {
	return slices.ContainsFunc(set, m.Eq)
}

// AddToSet returns set with m added in rank order. A mark of the same type
// is replaced. When m conflicts with a mark of another type, ok is false
// and set is returned unchanged.
func (m Mark) AddToSet(set MarkSet) (MarkSet, bool) {
	out := make(MarkSet, 0, len(set)+1)
	placed := false
	for _, other := range set {
		if other.Type == m.Type {
			continue
		}
		if m.Type.Excludes(other.Type) {
			return set, false
		}
		if !placed && other.Type.Rank > m.Type.Rank {
			out = append(out, m)
			placed = true
		}
		out = append(out, other)
	}
	if !placed {
		out = append(out, m)
	}
	return out, true
}

// RemoveFromSet returns set without marks of m's type.
func (m Mark) RemoveFromSet(set MarkSet) MarkSet {
	return RemoveTypeFromSet(set, m.Type)
}

// String renders the mark for debugging.
func (m Mark) String() string {
	if len(m.Attrs) == 0 {
		return m.Type.Name
	}
	var b strings.Builder
	b.WriteString(m.Type.Name)
	b.WriteByte('(')
	keys := make([]string, 0, len(m.Attrs))
	for k := range m.Attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(attrString(m.Attrs[k]))
	}
	b.WriteByte(')')
	return b.String()
}

// MarkSet is a set of marks sorted by MarkType.Rank, holding at most one mark
// per type.
type MarkSet []Mark

// NewMarkSet builds a sorted set. Later marks of the same type replace
// earlier ones; conflicting marks are dropped.
func NewMarkSet(marks ...Mark) MarkSet {
	var set MarkSet
	for _, m := range marks {
		set, _ = m.AddToSet(set)
	}
	return set
}

// Eq reports whether both sets hold equal marks.
func (s MarkSet) Eq(other MarkSet) bool {
	return slices.EqualFunc(s, other, Mark.Eq)
}

// Find returns the mark of type mt and whether it exists.
func (s MarkSet) Find(mt *MarkType) (Mark, bool) {
	for _, m := range s {
		if m.Type == mt {
			return m, true
		}
	}
	return Mark{}, false
}

// Has reports whether a mark of type mt is in the set.
func (s MarkSet) Has(mt *MarkType) bool {
	_, ok := s.Find(mt)
	return ok
}

// String renders the set for debugging.
func (s MarkSet) String() string {
	parts := make([]string, len(s))
	for i, m := range s {
		parts[i] = m.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// RemoveTypeFromSet returns set without marks of type mt.
func RemoveTypeFromSet(set MarkSet, mt *MarkType) MarkSet {
	idx := slices.IndexFunc(set, func(m Mark) bool { return m.Type == mt })
	if idx < 0 {
		return set
	}
	return slices.Delete(slices.Clone(set), idx, idx+1)
}

// InclusiveMarks returns the marks of set that extend over inserted text.
func InclusiveMarks(set MarkSet) MarkSet {
	var out MarkSet
	for _, m := range set {
		if m.Type.Inclusive() {
			out = append(out, m)
		}
	}
	return out
}
