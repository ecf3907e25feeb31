package transform

import (
	"fmt"
	"strings"

	"github.com/yaklabco/gomdedit/pkg/model"
)

// NodeSpec names a node type and attributes for builders that create
// wrapper or replacement nodes. A nil Type keeps the existing node.
type NodeSpec struct {
	Type  *model.NodeType
	Attrs model.Attrs
}

// SetBlockType turns the textblock at pos into a textblock of type nt.
// Inline content is converted to fit: code blocks receive plain text,
// other types drop the marks they do not allow.
func (tr *Transform) SetBlockType(pos int, nt *model.NodeType, attrs model.Attrs) error {
	target, err := nodeAt(tr.Doc, pos)
	if err != nil {
		return err
	}
	if !target.IsTextblock() || !nt.IsTextblock() {
		return &model.SchemaViolation{
			Path:   target.Type.Name,
			Reason: fmt.Sprintf("cannot change %s into %s", target.Type.Name, nt.Name),
		}
	}
	replacement, err := nt.Create(attrs, ConvertInline(nt, target.Content).Children()...)
	if err != nil {
		return err
	}
	if replacement.Eq(target) {
		return nil
	}
	return tr.ReplaceWith(pos, pos+target.NodeSize(), replacement)
}

// ConvertInline fits inline content into a textblock of type nt.
func ConvertInline(nt *model.NodeType, content model.Fragment) model.Fragment {
	s := nt.Schema
	if nt.IsCode() {
		var b strings.Builder
		content.Descendants(func(node *model.Node, _ int, _ *model.Node, _ int) bool {
			switch {
			case node.IsText():
				b.WriteString(node.Text)
			case node.Type.Name == hardBreakName:
				b.WriteByte('\n')
			}
			return true
		})
		if b.Len() == 0 {
			return model.EmptyFragment
		}
		return model.NewFragment(s.Text(b.String()))
	}

	out := make([]*model.Node, 0, content.ChildCount())
	for _, child := range content.Children() {
		if child.IsText() && strings.Contains(child.Text, "\n") {
			if hb := s.Node(hardBreakName); hb != nil {
				for i, line := range strings.Split(child.Text, "\n") {
					if i > 0 {
						out = append(out, &model.Node{Type: hb, Attrs: model.Attrs{}})
					}
					out = append(out, child.WithText(line))
				}
				continue
			}
		}
		out = append(out, child)
	}
	for i, child := range out {
		if nt.AllowsMarks(child.Marks) {
			continue
		}
		kept := make(model.MarkSet, 0, len(child.Marks))
		for _, m := range child.Marks {
			if nt.AllowsMarkType(m.Type) {
				kept = append(kept, m)
			}
		}
		out[i] = child.WithMarks(kept)
	}
	return model.NewFragment(out...)
}

const hardBreakName = "hard_break"

// Split splits the depth innermost ancestors of pos in two. specs, ordered
// outer to inner, optionally replace the types of the nodes after the
// split.
func (tr *Transform) Split(pos, depth int, specs ...NodeSpec) error {
	rp, err := tr.Doc.Resolve(pos)
	if err != nil {
		return err
	}
	top := rp.Depth - depth + 1
	if depth < 1 || top < 1 {
		return &model.SchemaViolation{Path: rp.Path(), Reason: fmt.Sprintf("cannot split %d levels", depth)}
	}
	node := rp.Node(top)
	offset := pos - rp.Start(top)
	left := node.Cut(0, offset)
	right, err := retypeChain(node.Cut(offset, node.Content.Size()), specs)
	if err != nil {
		return err
	}
	return tr.ReplaceWith(rp.Before(top), rp.After(top), left, right)
}

// retypeChain applies specs along the first-child chain of node.
func retypeChain(node *model.Node, specs []NodeSpec) (*model.Node, error) {
	if len(specs) == 0 {
		return node, nil
	}
	content := node.Content
	if len(specs) > 1 && content.ChildCount() > 0 {
		first, err := retypeChain(content.Child(0), specs[1:])
		if err != nil {
			return nil, err
		}
		content = content.ReplaceChild(0, first)
	}
	spec := specs[0]
	if spec.Type == nil {
		return node.Copy(content), nil
	}
	if spec.Type.IsTextblock() {
		content = ConvertInline(spec.Type, content)
	}
	return spec.Type.Create(spec.Attrs, content.Children()...)
}

// Wrap wraps the sibling blocks in [from, to) in new nodes, outermost
// first.
func (tr *Transform) Wrap(from, to int, wrappers ...NodeSpec) error {
	content, err := tr.Doc.Slice(from, to)
	if err != nil {
		return err
	}
	for i := len(wrappers) - 1; i >= 0; i-- {
		node, err := wrappers[i].Type.Create(wrappers[i].Attrs, content.Children()...)
		if err != nil {
			return err
		}
		content = model.NewFragment(node)
	}
	return tr.Replace(from, to, content)
}

// Join merges the nodes on either side of pos, which must have the same
// type.
func (tr *Transform) Join(pos int) error {
	rp, err := tr.Doc.Resolve(pos)
	if err != nil {
		return err
	}
	before, after := rp.NodeBefore(), rp.NodeAfter()
	if before == nil || after == nil || before.IsText() || after.IsText() || before.Type != after.Type {
		return &model.SchemaViolation{Path: rp.Path(), Reason: "nodes around position cannot be joined"}
	}
	merged := before.Copy(before.Content.Append(after.Content))
	return tr.ReplaceWith(pos-before.NodeSize(), pos+after.NodeSize(), merged)
}

// CanJoin reports whether the nodes on either side of pos could be joined.
func CanJoin(doc *model.Node, pos int) bool {
	rp, err := doc.Resolve(pos)
	if err != nil {
		return false
	}
	before, after := rp.NodeBefore(), rp.NodeAfter()
	return before != nil && after != nil && !before.IsText() && !before.IsLeaf() &&
		before.Type == after.Type && before.Type.ValidContent(before.Content.Append(after.Content))
}

// DeleteRange removes [from, to), which may span several blocks. The
// blocks cut at either end are joined where their types allow it.
func (tr *Transform) DeleteRange(from, to int) error {
	if from == to {
		return nil
	}
	rFrom, err := tr.Doc.Resolve(from)
	if err != nil {
		return err
	}
	rTo, err := tr.Doc.Resolve(to)
	if err != nil {
		return err
	}
	if rFrom.SameParent(rTo) {
		return tr.Delete(from, to)
	}

	d := rFrom.SharedDepth(to)
	start, end := from, to
	var left, right *model.Node
	if rFrom.Depth > d {
		start = rFrom.Before(d + 1)
		child := rFrom.Node(d + 1)
		left = child.Cut(0, from-rFrom.Start(d+1))
	}
	if rTo.Depth > d {
		end = rTo.After(d + 1)
		child := rTo.Node(d + 1)
		right = child.Cut(to-rTo.Start(d+1), child.Content.Size())
	}
	if left != nil && right != nil {
		if joined, ok := joinNodes(left, right); ok {
			return tr.ReplaceWith(start, end, joined)
		}
	}
	return tr.ReplaceWith(start, end, left, right)
}

// joinNodes merges b into a along their touching edge.
func joinNodes(a, b *model.Node) (*model.Node, bool) {
	if a.IsTextblock() && b.IsTextblock() {
		return a.Copy(a.Content.Append(ConvertInline(a.Type, b.Content))), true
	}
	if a.Type != b.Type || a.IsLeaf() {
		return nil, false
	}
	last, first := a.LastChild(), b.FirstChild()
	content := a.Content.Append(b.Content)
	if last != nil && first != nil && !last.IsInline() && !first.IsInline() {
		if joined, ok := joinNodes(last, first); ok {
			content = a.Content.ReplaceChild(a.ChildCount()-1, joined).Append(b.Content.Remove(0, 1))
		}
	}
	if !a.Type.ValidContent(content) {
		return nil, false
	}
	return a.Copy(content), true
}
