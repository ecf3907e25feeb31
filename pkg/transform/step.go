package transform

import (
	"fmt"

	"github.com/yaklabco/gomdedit/pkg/model"
)

// Step is one atomic, invertible document edit.
type Step interface {
	// Apply returns the edited document. doc is never modified.
	Apply(doc *model.Node) (*model.Node, error)

	// Map returns the position map of the step.
	Map() StepMap

	// Invert returns the step that undoes this one, given the document the
	// step was applied to.
	Invert(before *model.Node) (Step, error)

	// Kind names the step variant.
	Kind() string

	fmt.Stringer
}

// ReplaceRange replaces [From, To) with Content. Both ends must share a
// parent node.
type ReplaceRange struct {
	From    int
	To      int
	Content model.Fragment
}

var _ Step = (*ReplaceRange)(nil)

// Apply implements Step.
func (s *ReplaceRange) Apply(doc *model.Node) (*model.Node, error) {
	return doc.Replace(s.From, s.To, s.Content)
}

// Map implements Step.
func (s *ReplaceRange) Map() StepMap {
	return NewStepMap(s.From, s.To-s.From, s.Content.Size())
}

// Invert implements Step.
func (s *ReplaceRange) Invert(before *model.Node) (Step, error) {
	removed, err := before.Slice(s.From, s.To)
	if err != nil {
		return nil, err
	}
	return &ReplaceRange{From: s.From, To: s.From + s.Content.Size(), Content: removed}, nil
}

// Kind implements Step.
func (s *ReplaceRange) Kind() string { return "replace" }

func (s *ReplaceRange) String() string {
	return fmt.Sprintf("replace(%d, %d, %s)", s.From, s.To, s.Content)
}

// SetNodeAttrs replaces the attributes of the node starting at Pos.
type SetNodeAttrs struct {
	Pos   int
	Attrs model.Attrs
}

var _ Step = (*SetNodeAttrs)(nil)

// Apply implements Step.
func (s *SetNodeAttrs) Apply(doc *model.Node) (*model.Node, error) {
	target, err := nodeAt(doc, s.Pos)
	if err != nil {
		return nil, err
	}
	attrs, err := target.Type.ComputeAttrs(s.Attrs)
	if err != nil {
		return nil, err
	}
	return doc.ReplaceWith(s.Pos, s.Pos+target.NodeSize(), target.WithAttrs(attrs))
}

// Map implements Step. Attribute changes never move positions.
func (s *SetNodeAttrs) Map() StepMap { return EmptyMap }

// Invert implements Step.
func (s *SetNodeAttrs) Invert(before *model.Node) (Step, error) {
	target, err := nodeAt(before, s.Pos)
	if err != nil {
		return nil, err
	}
	return &SetNodeAttrs{Pos: s.Pos, Attrs: target.Attrs}, nil
}

// Kind implements Step.
func (s *SetNodeAttrs) Kind() string { return "attrs" }

func (s *SetNodeAttrs) String() string {
	return fmt.Sprintf("attrs(%d, %v)", s.Pos, s.Attrs)
}

func nodeAt(doc *model.Node, pos int) (*model.Node, error) {
	if pos < 0 || pos >= doc.Content.Size() {
		return nil, &model.PositionError{Pos: pos, Size: doc.Content.Size()}
	}
	target := doc.NodeAt(pos)
	if target == nil || target.IsText() {
		return nil, &model.SchemaViolation{Reason: fmt.Sprintf("no node starts at position %d", pos)}
	}
	return target, nil
}
