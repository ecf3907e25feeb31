package editor

import (
	"fmt"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/model"
	"github.com/yaklabco/gomdedit/pkg/schema"
	"github.com/yaklabco/gomdedit/pkg/transform"
)

// command builds a transaction from the current state with fn and
// dispatches it.
func (e *Editor) command(inputType string, fn func(tr *Transaction) error) error {
	tr := e.state.Tr(e.now())
	tr.SetMeta(MetaOrigin, OriginCommand).SetMeta(MetaInputType, inputType)
	if err := fn(tr); err != nil {
		e.logger.Debug("command rejected", logging.FieldInputType, inputType, logging.FieldError, err)
		return err
	}
	return e.Dispatch(tr)
}

// ToggleTask flips the checked state of the task item at or around pos.
func (e *Editor) ToggleTask(pos int) error {
	return e.command(InputFormat, func(tr *Transaction) error {
		itemPos, item, err := taskItemAt(tr.Doc, pos)
		if err != nil {
			return err
		}
		checked := item.Attrs.Bool(schema.AttrChecked)
		return tr.SetNodeAttrs(itemPos, model.Attrs{schema.AttrChecked: !checked})
	})
}

func taskItemAt(doc *model.Node, pos int) (int, *model.Node, error) {
	if n := doc.NodeAt(pos); n != nil && n.Type.Name == schema.TaskItem {
		return pos, n, nil
	}
	rp, err := doc.Resolve(pos)
	if err != nil {
		return 0, nil, err
	}
	d := rp.FindAncestor(func(n *model.Node) bool { return n.Type.Name == schema.TaskItem })
	if d < 1 {
		return 0, nil, &model.SchemaViolation{Path: rp.Path(), Reason: fmt.Sprintf("no task item at %d", pos)}
	}
	return rp.Before(d), rp.Node(d), nil
}

// ToggleMark adds the mark called name over the selection, or removes it
// when the whole selection already carries it. With an empty selection it
// toggles the stored marks for the next typed text.
func (e *Editor) ToggleMark(name string, attrs model.Attrs) error {
	mt := e.schema.Mark(name)
	if mt == nil {
		return fmt.Errorf("%w: mark %q", ErrUnknownType, name)
	}
	mark, err := mt.Create(attrs)
	if err != nil {
		return err
	}
	sel := e.state.Selection
	return e.command(InputFormat, func(tr *Transaction) error {
		if sel.Empty() {
			marks, ok := e.state.StoredMarks()
			if !ok {
				rp, err := tr.Doc.Resolve(sel.Head)
				if err != nil {
					return err
				}
				marks = rp.Marks()
			}
			if marks.Has(mt) {
				tr.SetStoredMarks(model.RemoveTypeFromSet(marks, mt))
				return nil
			}
			for _, m := range marks {
				if m.Type.Excludes(mt) {
					return &model.SchemaViolation{
						Path:   mt.Name,
						Reason: fmt.Sprintf("mark %s excludes %s", m.Type.Name, mt.Name),
					}
				}
			}
			added, _ := mark.AddToSet(marks)
			tr.SetStoredMarks(added)
			return nil
		}
		tr.SetSelection(sel)
		if rangeFullyMarked(tr.Doc, sel.From(), sel.To(), mt) {
			return tr.RemoveMark(sel.From(), sel.To(), mt)
		}
		return tr.AddMark(sel.From(), sel.To(), mark)
	})
}

// rangeFullyMarked reports whether every text node in [from, to) carries
// a mark of type mt.
func rangeFullyMarked(doc *model.Node, from, to int, mt *model.MarkType) bool {
	full, seen := true, false
	doc.NodesBetween(from, to, func(node *model.Node, _ int, _ *model.Node, _ int) bool {
		if node.IsText() {
			seen = true
			full = full && node.Marks.Has(mt)
		}
		return full
	})
	return seen && full
}

// SetBlockType turns every textblock the selection touches into type
// name. Content the new type cannot hold is converted or dropped.
func (e *Editor) SetBlockType(name string, attrs model.Attrs) error {
	nt := e.schema.Node(name)
	if nt == nil {
		return fmt.Errorf("%w: node %q", ErrUnknownType, name)
	}
	sel := e.state.Selection
	return e.command(InputFormat, func(tr *Transaction) error {
		var blocks []int
		tr.Doc.NodesBetween(sel.From(), max(sel.To(), sel.From()+1), func(node *model.Node, pos int, _ *model.Node, _ int) bool {
			if node.IsTextblock() {
				blocks = append(blocks, pos)
				return false
			}
			return true
		})
		for _, pos := range blocks {
			if err := tr.SetBlockType(tr.Mapping.Map(pos, transform.AssocAfter), nt, attrs); err != nil {
				return err
			}
		}
		tr.SetSelection(sel.Map(tr.Mapping))
		return nil
	})
}

// WrapIn wraps the blocks the selection touches in a node of type name.
// Lists get one item per block.
func (e *Editor) WrapIn(name string, attrs model.Attrs) error {
	nt := e.schema.Node(name)
	if nt == nil {
		return fmt.Errorf("%w: node %q", ErrUnknownType, name)
	}
	sel := e.state.Selection
	return e.command(InputFormat, func(tr *Transaction) error {
		mapPos, err := wrapBlocks(tr.Transform, sel.From(), sel.To(), nt, attrs)
		if err != nil {
			return err
		}
		tr.SetSelection(Range(mapPos(sel.Anchor), mapPos(sel.Head)))
		return nil
	})
}
