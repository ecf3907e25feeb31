package transform

import (
	"fmt"

	"github.com/yaklabco/gomdedit/pkg/model"
)

// Transform accumulates steps over a document. A failing step leaves the
// Transform unchanged, so callers can abandon it and keep the starting
// document.
type Transform struct {
	// Doc is the document after every step applied so far.
	Doc *model.Node

	// Steps are the applied steps in order.
	Steps []Step

	// Docs holds the document each step was applied to.
	Docs []*model.Node

	// Mapping composes the maps of every step.
	Mapping Mapping
}

// New starts a transform over doc.
func New(doc *model.Node) *Transform {
	return &Transform{Doc: doc}
}

// Before returns the starting document.
func (tr *Transform) Before() *model.Node {
	if len(tr.Docs) > 0 {
		return tr.Docs[0]
	}
	return tr.Doc
}

// DocChanged reports whether any step was applied.
func (tr *Transform) DocChanged() bool { return len(tr.Steps) > 0 }

// Step applies step and records it.
func (tr *Transform) Step(step Step) error {
	doc, err := step.Apply(tr.Doc)
	if err != nil {
		return fmt.Errorf("%s: %w", step.Kind(), err)
	}
	tr.Docs = append(tr.Docs, tr.Doc)
	tr.Steps = append(tr.Steps, step)
	tr.Mapping.Append(step.Map())
	tr.Doc = doc
	return nil
}

// Rollback drops every step after the first n, restoring the document
// they were applied to.
func (tr *Transform) Rollback(n int) {
	if n < 0 || n >= len(tr.Steps) {
		return
	}
	tr.Doc = tr.Docs[n]
	tr.Steps = tr.Steps[:n]
	tr.Docs = tr.Docs[:n]
	tr.Mapping.maps = tr.Mapping.maps[:n]
}

// Inverted returns the steps that undo this transform, in application
// order.
func (tr *Transform) Inverted() ([]Step, error) {
	out := make([]Step, 0, len(tr.Steps))
	for i := len(tr.Steps) - 1; i >= 0; i-- {
		inv, err := tr.Steps[i].Invert(tr.Docs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}

// Replace replaces [from, to) with content.
func (tr *Transform) Replace(from, to int, content model.Fragment) error {
	if from == to && content.Size() == 0 {
		return nil
	}
	return tr.Step(&ReplaceRange{From: from, To: to, Content: content})
}

// ReplaceWith replaces [from, to) with nodes.
func (tr *Transform) ReplaceWith(from, to int, nodes ...*model.Node) error {
	return tr.Replace(from, to, model.NewFragment(nodes...))
}

// Insert inserts nodes at pos.
func (tr *Transform) Insert(pos int, nodes ...*model.Node) error {
	return tr.ReplaceWith(pos, pos, nodes...)
}

// Delete removes [from, to).
func (tr *Transform) Delete(from, to int) error {
	return tr.Replace(from, to, model.EmptyFragment)
}

// InsertText replaces [from, to) with text carrying marks.
func (tr *Transform) InsertText(text string, from, to int, marks model.MarkSet) error {
	if text == "" {
		return tr.Delete(from, to)
	}
	return tr.ReplaceWith(from, to, tr.Doc.Type.Schema.Text(text, marks...))
}

// AddMark adds mark over [from, to). Only ranges that lack the mark produce
// steps; marks of the same type with other attributes are removed first.
func (tr *Transform) AddMark(from, to int, mark model.Mark) error {
	if err := checkRange(tr.Doc, from, to); err != nil {
		return err
	}
	var (
		adds    []markRange
		removes []markRange
		err     error
	)
	tr.Doc.NodesBetween(from, to, func(node *model.Node, pos int, parent *model.Node, _ int) bool {
		if err != nil || !node.IsInline() {
			return err == nil
		}
		if !parent.Type.AllowsMarkType(mark.Type) || mark.IsInSet(node.Marks) {
			return false
		}
		start, end := max(pos, from), min(pos+node.NodeSize(), to)
		for _, other := range node.Marks {
			if other.Type == mark.Type {
				removes = appendRange(removes, markRange{from: start, to: end, mark: other})
				continue
			}
			if mark.Type.Excludes(other.Type) {
				err = &model.SchemaViolation{
					Path:   parent.Type.Name,
					Reason: fmt.Sprintf("mark %s cannot be combined with %s", mark.Type.Name, other.Type.Name),
				}
				return false
			}
		}
		adds = appendRange(adds, markRange{from: start, to: end, mark: mark})
		return false
	})
	if err != nil {
		return err
	}
	for _, r := range removes {
		if err := tr.Step(&RemoveMark{From: r.from, To: r.to, Mark: r.mark}); err != nil {
			return err
		}
	}
	for _, r := range adds {
		if err := tr.Step(&AddMark{From: r.from, To: r.to, Mark: r.mark}); err != nil {
			return err
		}
	}
	return nil
}

// RemoveMark removes marks of type mt over [from, to). Each distinct mark
// found yields its own steps so that inversion restores it exactly.
func (tr *Transform) RemoveMark(from, to int, mt *model.MarkType) error {
	if err := checkRange(tr.Doc, from, to); err != nil {
		return err
	}
	var removes []markRange
	tr.Doc.NodesBetween(from, to, func(node *model.Node, pos int, _ *model.Node, _ int) bool {
		if !node.IsInline() {
			return true
		}
		if m, ok := node.Marks.Find(mt); ok {
			start, end := max(pos, from), min(pos+node.NodeSize(), to)
			removes = appendRange(removes, markRange{from: start, to: end, mark: m})
		}
		return false
	})
	for _, r := range removes {
		if err := tr.Step(&RemoveMark{From: r.from, To: r.to, Mark: r.mark}); err != nil {
			return err
		}
	}
	return nil
}

// SetNodeAttrs merges attrs into the attributes of the node at pos.
func (tr *Transform) SetNodeAttrs(pos int, attrs model.Attrs) error {
	target, err := nodeAt(tr.Doc, pos)
	if err != nil {
		return err
	}
	merged := target.Attrs
	for k, v := range attrs {
		merged = merged.With(k, v)
	}
	if merged.Eq(target.Attrs) {
		return nil
	}
	return tr.Step(&SetNodeAttrs{Pos: pos, Attrs: merged})
}

// SetNodeType replaces the node at pos with a node of another type that
// keeps its content.
func (tr *Transform) SetNodeType(pos int, nt *model.NodeType, attrs model.Attrs) error {
	target, err := nodeAt(tr.Doc, pos)
	if err != nil {
		return err
	}
	replacement, err := nt.Create(attrs, target.Content.Children()...)
	if err != nil {
		return err
	}
	return tr.ReplaceWith(pos, pos+target.NodeSize(), replacement)
}

type markRange struct {
	from, to int
	mark     model.Mark
}

// appendRange merges r into the last range when they touch and carry the
// same mark.
func appendRange(ranges []markRange, r markRange) []markRange {
	if n := len(ranges); n > 0 {
		last := &ranges[n-1]
		if last.to == r.from && last.mark.Eq(r.mark) {
			last.to = r.to
			return ranges
		}
	}
	return append(ranges, r)
}
