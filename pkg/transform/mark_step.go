package transform

import (
	"fmt"

	"github.com/yaklabco/gomdedit/pkg/model"
)

// AddMark adds Mark to every inline node in [From, To) whose parent allows
// it. A conflict with an excluded mark fails the step.
type AddMark struct {
	From int
	To   int
	Mark model.Mark
}

var _ Step = (*AddMark)(nil)

// Apply implements Step.
func (s *AddMark) Apply(doc *model.Node) (*model.Node, error) {
	return mapInline(doc, s.From, s.To, func(node, parent *model.Node) (*model.Node, error) {
		if !parent.Type.AllowsMarkType(s.Mark.Type) {
			return node, nil
		}
		marks, ok := s.Mark.AddToSet(node.Marks)
		if !ok {
			return nil, &model.SchemaViolation{
				Path:   parent.Type.Name,
				Reason: fmt.Sprintf("mark %s cannot be combined with %s", s.Mark.Type.Name, node.Marks),
			}
		}
		return node.WithMarks(marks), nil
	})
}

// Map implements Step.
func (s *AddMark) Map() StepMap { return EmptyMap }

// Invert implements Step.
func (s *AddMark) Invert(*model.Node) (Step, error) {
	return &RemoveMark{From: s.From, To: s.To, Mark: s.Mark}, nil
}

// Kind implements Step.
func (s *AddMark) Kind() string { return "addMark" }

func (s *AddMark) String() string {
	return fmt.Sprintf("addMark(%d, %d, %s)", s.From, s.To, s.Mark)
}

// RemoveMark removes Mark from every inline node in [From, To).
type RemoveMark struct {
	From int
	To   int
	Mark model.Mark
}

var _ Step = (*RemoveMark)(nil)

// Apply implements Step.
func (s *RemoveMark) Apply(doc *model.Node) (*model.Node, error) {
	return mapInline(doc, s.From, s.To, func(node, _ *model.Node) (*model.Node, error) {
		if !s.Mark.IsInSet(node.Marks) {
			return node, nil
		}
		return node.WithMarks(s.Mark.RemoveFromSet(node.Marks)), nil
	})
}

// Map implements Step.
func (s *RemoveMark) Map() StepMap { return EmptyMap }

// Invert implements Step.
func (s *RemoveMark) Invert(*model.Node) (Step, error) {
	return &AddMark{From: s.From, To: s.To, Mark: s.Mark}, nil
}

// Kind implements Step.
func (s *RemoveMark) Kind() string { return "removeMark" }

func (s *RemoveMark) String() string {
	return fmt.Sprintf("removeMark(%d, %d, %s)", s.From, s.To, s.Mark)
}

type inlineFunc func(node, parent *model.Node) (*model.Node, error)

// mapInline rebuilds doc with fn applied to every inline node, or part of a
// text node, inside [from, to).
func mapInline(doc *model.Node, from, to int, fn inlineFunc) (*model.Node, error) {
	if err := checkRange(doc, from, to); err != nil {
		return nil, err
	}
	content, err := mapFragment(doc, from, to, 0, fn)
	if err != nil {
		return nil, err
	}
	return doc.Copy(content), nil
}

func mapFragment(parent *model.Node, from, to, offset int, fn inlineFunc) (model.Fragment, error) {
	var out []*model.Node
	pos := offset
	for i := range parent.ChildCount() {
		child := parent.Child(i)
		end := pos + child.NodeSize()
		switch {
		case end <= from || pos >= to:
			out = append(out, child)
		case child.IsText():
			cutFrom, cutTo := max(from, pos)-pos, min(end, to)-pos
			mid, err := fn(child.Cut(cutFrom, cutTo), parent)
			if err != nil {
				return model.EmptyFragment, err
			}
			out = append(out, child.Cut(0, cutFrom), mid, child.Cut(cutTo, child.NodeSize()))
		case child.IsInline():
			mapped, err := fn(child, parent)
			if err != nil {
				return model.EmptyFragment, err
			}
			out = append(out, mapped)
		case child.IsLeaf():
			out = append(out, child)
		default:
			inner, err := mapFragment(child, from, to, pos+1, fn)
			if err != nil {
				return model.EmptyFragment, err
			}
			out = append(out, child.Copy(inner))
		}
		pos = end
	}
	return model.NewFragment(out...), nil
}

func checkRange(doc *model.Node, from, to int) error {
	size := doc.Content.Size()
	if from < 0 || from > size {
		return &model.PositionError{Pos: from, Size: size}
	}
	if to < from || to > size {
		return &model.PositionError{Pos: to, Size: size}
	}
	return nil
}
