package editor

import (
	"github.com/yaklabco/gomdedit/pkg/model"
	"github.com/yaklabco/gomdedit/pkg/schema"
	"github.com/yaklabco/gomdedit/pkg/transform"
)

func isItem(n *model.Node) bool {
	return n.Type.Name == schema.ListItem || n.Type.Name == schema.TaskItem
}

func isCell(n *model.Node) bool {
	return n.Type.Name == schema.TableCell || n.Type.Name == schema.TableHeader
}

// itemAttrs returns the attributes of a fresh item of type nt.
func itemAttrs(nt *model.NodeType) model.Attrs {
	if nt.Name == schema.TaskItem {
		return model.Attrs{schema.AttrChecked: false}
	}
	return nil
}

// splitBlock handles a newline typed at pos and returns the new cursor.
// Code blocks get a newline character and table cells a hard break. An
// empty list item or an empty paragraph in a container is lifted out;
// list items split into two items; other textblocks split in two. A
// textblock split at its end continues as a paragraph.
func splitBlock(tr *transform.Transform, pos int) (int, error) {
	rp, err := tr.Doc.Resolve(pos)
	if err != nil {
		return pos, err
	}
	block, d := rp.Parent(), rp.Depth
	s := tr.Doc.Type.Schema

	switch {
	case block.Type.IsCode():
		return pos + 1, tr.InsertText("\n", pos, pos, nil)
	case isCell(block):
		br, err := s.Create(schema.HardBreak, nil)
		if err != nil {
			return pos, err
		}
		return pos + 1, tr.Insert(pos, br)
	}

	if d >= 2 && isItem(rp.Node(d-1)) {
		item := rp.Node(d - 1)
		if block.Content.Size() == 0 && item.ChildCount() == 1 {
			return liftItem(tr, rp)
		}
		spec := transform.NodeSpec{Type: item.Type, Attrs: itemAttrs(item.Type)}
		return pos + 4, tr.Split(pos, 2, spec)
	}
	if d >= 2 && block.Content.Size() == 0 {
		at, err := liftNode(tr, rp, d, block)
		return at + 1, err
	}

	var specs []transform.NodeSpec
	if rp.ParentOffset == block.Content.Size() && block.Type.Name != schema.Paragraph {
		specs = append(specs, transform.NodeSpec{Type: s.Node(schema.Paragraph)})
	}
	return pos + 2, tr.Split(pos, 1, specs...)
}

// liftNode moves the node at depth d of rp out of its parent, splitting the
// parent around it, and puts nodes in its place. It returns the position
// where nodes start.
func liftNode(tr *transform.Transform, rp *model.ResolvedPos, d int, nodes ...*model.Node) (int, error) {
	parent, index := rp.Node(d-1), rp.Index(d-1)
	children := parent.Content.Children()
	start := rp.Before(d - 1)

	var out []*model.Node
	if index > 0 {
		out = append(out, parent.Copy(model.NewFragment(children[:index]...)))
	}
	at := start
	for _, n := range out {
		at += n.NodeSize()
	}
	out = append(out, nodes...)
	if index+1 < len(children) {
		rest := parent.Copy(model.NewFragment(children[index+1:]...))
		if parent.Type.Name == schema.OrderedList {
			order := parent.Attrs.Int(schema.AttrOrder) + index + 1
			rest = rest.WithAttrs(parent.Attrs.With(schema.AttrOrder, order))
		}
		out = append(out, rest)
	}
	return at, tr.ReplaceWith(start, rp.After(d-1), out...)
}

// liftItem takes the item around rp out of its list. A nested item becomes
// an item of the outer list, carrying the items after it as a nested list;
// a top-level item is unwrapped into its content.
func liftItem(tr *transform.Transform, rp *model.ResolvedPos) (int, error) {
	d := rp.Depth
	item := rp.Node(d - 1)
	if d < 4 || !isItem(rp.Node(d-3)) {
		at, err := liftNode(tr, rp, d-1, item.Content.Children()...)
		return at + 1, err
	}

	list, index := rp.Node(d-2), rp.Index(d-2)
	outer := rp.Node(d - 3)
	items := list.Content.Children()

	content := item.Content
	if index+1 < len(items) {
		content = content.Append(model.NewFragment(list.Copy(model.NewFragment(items[index+1:]...))))
	}
	lifted, err := outer.Type.Create(itemAttrs(outer.Type), content.Children()...)
	if err != nil {
		return rp.Pos, err
	}

	outerContent := outer.Content
	listIndex := rp.Index(d - 3)
	if index > 0 {
		outerContent = outerContent.ReplaceChild(listIndex, list.Copy(model.NewFragment(items[:index]...)))
	} else {
		outerContent = outerContent.Remove(listIndex, listIndex+1)
	}
	kept := outer.Copy(outerContent)

	start := rp.Before(d - 3)
	if err := tr.ReplaceWith(start, rp.After(d-3), kept, lifted); err != nil {
		return rp.Pos, err
	}
	return start + kept.NodeSize() + 2, nil
}

// deleteBackward removes what lies before the cursor at pos and returns
// the new cursor. At the start of a textblock it lifts list items and
// quoted blocks, turns other textblocks into paragraphs, or joins the
// textblock with the one before it.
func deleteBackward(tr *transform.Transform, pos int) (int, error) {
	rp, err := tr.Doc.Resolve(pos)
	if err != nil {
		return pos, err
	}
	if rp.ParentOffset > 0 {
		return pos - 1, tr.Delete(pos-1, pos)
	}
	block, d := rp.Parent(), rp.Depth
	s := tr.Doc.Type.Schema

	switch {
	case d >= 2 && isItem(rp.Node(d-1)) && rp.Index(d-1) == 0:
		return liftItem(tr, rp)
	case block.Type.Name != schema.Paragraph && !isCell(block):
		return pos, tr.SetBlockType(rp.Before(d), s.Node(schema.Paragraph), nil)
	case d >= 2 && rp.Index(d-1) == 0 && !isCell(block):
		at, err := liftNode(tr, rp, d, block)
		return at + 1, err
	case isCell(block):
		return pos, nil
	}

	before := rp.Before(d)
	rb, err := tr.Doc.Resolve(before)
	if err != nil {
		return pos, err
	}
	prev := rb.NodeBefore()
	switch {
	case prev == nil:
		return pos, nil
	case prev.IsTextblock():
		return before - 1, tr.DeleteRange(before-1, pos)
	case prev.IsLeaf():
		return pos - prev.NodeSize(), tr.Delete(before-prev.NodeSize(), before)
	default:
		return pos, nil
	}
}

// blockRange returns the sibling blocks covering [from, to): their parent
// depth and the positions before the first and after the last.
func blockRange(doc *model.Node, from, to int) (*model.ResolvedPos, int, int, int, error) {
	rFrom, err := doc.Resolve(from)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	rTo, err := doc.Resolve(to)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	d := rFrom.SharedDepth(to)
	if d > 0 && rFrom.Node(d).IsTextblock() {
		d--
	}
	return rFrom, d, rFrom.Before(d + 1), rTo.After(d + 1), nil
}

// wrapBlocks wraps the blocks covering [from, to) in a node of type nt.
// List types get one item per block. It returns a function that maps
// positions inside the range to the wrapped document.
func wrapBlocks(tr *transform.Transform, from, to int, nt *model.NodeType, attrs model.Attrs) (func(int) int, error) {
	rFrom, d, start, end, err := blockRange(tr.Doc, from, to)
	if err != nil {
		return nil, err
	}
	item := listItemType(nt)
	if item == nil {
		if err := tr.Wrap(start, end, transform.NodeSpec{Type: nt, Attrs: attrs}); err != nil {
			return nil, err
		}
		return func(pos int) int { return pos + 1 }, nil
	}

	parent, first := rFrom.Node(d), rFrom.Index(d)
	var items []*model.Node
	for pos, i := start, first; pos < end; i++ {
		child := parent.Child(i)
		wrapped, err := item.Create(itemAttrs(item), child)
		if err != nil {
			return nil, err
		}
		items = append(items, wrapped)
		pos += child.NodeSize()
	}
	list, err := nt.Create(attrs, items...)
	if err != nil {
		return nil, err
	}
	if err := tr.ReplaceWith(start, end, list); err != nil {
		return nil, err
	}
	return func(pos int) int {
		offset := 0
		for i, pos0 := first, start; i < first+len(items); i++ {
			next := pos0 + parent.Child(i).NodeSize()
			if pos < next {
				break
			}
			offset++
			pos0 = next
		}
		return pos + 2 + 2*offset
	}, nil
}

// listItemType returns the item type a list type holds, or nil.
func listItemType(nt *model.NodeType) *model.NodeType {
	s := nt.Schema
	switch nt.Name {
	case schema.BulletList, schema.OrderedList:
		return s.Node(schema.ListItem)
	case schema.TaskList:
		return s.Node(schema.TaskItem)
	default:
		return nil
	}
}
