package editor

import (
	"fmt"

	"github.com/yaklabco/gomdedit/pkg/model"
	"github.com/yaklabco/gomdedit/pkg/transform"
)

// Selection is a text range. Anchor is the side that stays put when the
// selection is extended; Head is the side that moves.
type Selection struct {
	Anchor int
	Head   int
}

// Cursor returns an empty selection at pos.
func Cursor(pos int) Selection { return Selection{Anchor: pos, Head: pos} }

// Range returns a selection from anchor to head.
func Range(anchor, head int) Selection { return Selection{Anchor: anchor, Head: head} }

// From returns the lower end.
func (s Selection) From() int { return min(s.Anchor, s.Head) }

// To returns the upper end.
func (s Selection) To() int { return max(s.Anchor, s.Head) }

// Empty reports whether the selection is a cursor.
func (s Selection) Empty() bool { return s.Anchor == s.Head }

// Map carries the selection across m.
func (s Selection) Map(m transform.Mapping) Selection {
	return Selection{
		Anchor: m.Map(s.Anchor, transform.AssocAfter),
		Head:   m.Map(s.Head, transform.AssocAfter),
	}
}

func (s Selection) String() string {
	if s.Empty() {
		return fmt.Sprintf("cursor(%d)", s.Head)
	}
	return fmt.Sprintf("range(%d, %d)", s.Anchor, s.Head)
}

// check reports whether both ends are positions inside a textblock of doc.
func (s Selection) check(doc *model.Node) error {
	for _, pos := range []int{s.Anchor, s.Head} {
		rp, err := doc.Resolve(pos)
		if err != nil {
			return err
		}
		if !rp.Parent().IsTextblock() {
			return &model.SchemaViolation{
				Path:   rp.Path(),
				Reason: fmt.Sprintf("position %d is not inside a textblock", pos),
			}
		}
	}
	return nil
}

// near returns the selection with both ends moved into the nearest
// textblock of doc, looking forward first.
func (s Selection) near(doc *model.Node) Selection {
	return Selection{Anchor: textPosNear(doc, s.Anchor), Head: textPosNear(doc, s.Head)}
}

func textPosNear(doc *model.Node, pos int) int {
	pos = max(0, min(pos, doc.Content.Size()))
	if rp, err := doc.Resolve(pos); err == nil && rp.Parent().IsTextblock() {
		return pos
	}
	before, after := -1, -1
	doc.Descendants(func(node *model.Node, start int, _ *model.Node, _ int) bool {
		if !node.IsTextblock() {
			return after < 0
		}
		if end := start + 1 + node.Content.Size(); end <= pos {
			before = end
		} else if after < 0 {
			after = start + 1
		}
		return false
	})
	switch {
	case after >= 0:
		return after
	case before >= 0:
		return before
	default:
		return pos
	}
}

// AtStart returns a cursor at the first text position of doc.
func AtStart(doc *model.Node) Selection {
	return Cursor(textPosNear(doc, 0))
}

// AtEnd returns a cursor at the last text position of doc.
func AtEnd(doc *model.Node) Selection {
	return Cursor(textPosNear(doc, doc.Content.Size()))
}

// Move returns a cursor delta text positions away from the head of sel.
// Block boundaries are skipped; the cursor stops at the document edges.
func Move(doc *model.Node, sel Selection, delta int) Selection {
	pos := sel.Head
	dir := 1
	if delta < 0 {
		dir, delta = -1, -delta
	}
	for range delta {
		next := pos + dir
		for next >= 0 && next <= doc.Content.Size() && !inTextblock(doc, next) {
			next += dir
		}
		if next < 0 || next > doc.Content.Size() {
			break
		}
		pos = next
	}
	return Cursor(pos)
}

func inTextblock(doc *model.Node, pos int) bool {
	rp, err := doc.Resolve(pos)
	return err == nil && rp.Parent().IsTextblock()
}
