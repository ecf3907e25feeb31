package model

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Node is an immutable document tree node. Text nodes carry Text and Marks;
// every other node carries Content.
type Node struct {
	Type    *NodeType
	Attrs   Attrs
	Content Fragment
	Text    string
	Marks   MarkSet
}

// IsText reports whether the node is a text node.
func (n *Node) IsText() bool { return n.Type.IsText() }

// IsInline reports whether the node is inline.
func (n *Node) IsInline() bool { return n.Type.IsInline() }

// IsBlock reports whether the node is a block.
func (n *Node) IsBlock() bool { return n.Type.IsBlock() }

// IsTextblock reports whether the node is a block with inline content.
func (n *Node) IsTextblock() bool { return n.Type.IsTextblock() }

// IsLeaf reports whether the node's type admits no content.
func (n *Node) IsLeaf() bool { return n.Type.IsLeaf() }

// NodeSize is the number of positions the node occupies in its parent:
// the rune count for text, 1 for other leaves, content size plus 2 otherwise.
func (n *Node) NodeSize() int {
	switch {
	case n.IsText():
		return utf8.RuneCountInString(n.Text)
	case n.IsLeaf():
		return 1
	default:
		return n.Content.Size() + 2
	}
}

// ContentSize is the size of the node's content.
func (n *Node) ContentSize() int {
	if n.IsText() {
		return utf8.RuneCountInString(n.Text)
	}
	return n.Content.Size()
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return n.Content.ChildCount() }

// Child returns the child at index i.
func (n *Node) Child(i int) *Node { return n.Content.Child(i) }

// MaybeChild returns the child at index i, or nil.
func (n *Node) MaybeChild(i int) *Node { return n.Content.MaybeChild(i) }

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node { return n.Content.FirstChild() }

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node { return n.Content.LastChild() }

// SameMarkup reports whether other has the same type, attributes and marks.
func (n *Node) SameMarkup(other *Node) bool {
	return n.Type == other.Type && n.Attrs.Eq(other.Attrs) && n.Marks.Eq(other.Marks)
}

// Eq reports structural equality of two trees.
func (n *Node) Eq(other *Node) bool {
	if n == other {
		return true
	}
	if n == nil || other == nil {
		return false
	}
	return n.SameMarkup(other) && n.Text == other.Text && n.Content.Eq(other.Content)
}

// Copy returns a node with the same markup and the given content.
func (n *Node) Copy(content Fragment) *Node {
	return &Node{Type: n.Type, Attrs: n.Attrs, Content: content, Marks: n.Marks}
}

// WithMarks returns a copy carrying marks.
func (n *Node) WithMarks(marks MarkSet) *Node {
	return &Node{Type: n.Type, Attrs: n.Attrs, Content: n.Content, Text: n.Text, Marks: marks}
}

// WithAttrs returns a copy carrying attrs. Attributes are not checked.
func (n *Node) WithAttrs(attrs Attrs) *Node {
	return &Node{Type: n.Type, Attrs: attrs, Content: n.Content, Text: n.Text, Marks: n.Marks}
}

// WithText returns a text node with the same marks and new text.
func (n *Node) WithText(text string) *Node {
	return &Node{Type: n.Type, Attrs: n.Attrs, Text: text, Marks: n.Marks}
}

// Cut returns the part of the node between two offsets into its content.
func (n *Node) Cut(from, to int) *Node {
	if n.IsText() {
		runes := []rune(n.Text)
		if from == 0 && to == len(runes) {
			return n
		}
		return n.WithText(string(runes[from:to]))
	}
	if from == 0 && to == n.Content.Size() {
		return n
	}
	return n.Copy(n.Content.Cut(from, to))
}

// TextContent concatenates all text in the node.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	return n.Content.TextBetween(0, n.Content.Size(), "", nil)
}

// TextBetween extracts text between two offsets into the node's content.
func (n *Node) TextBetween(from, to int, blockSep string, leafText func(*Node) string) string {
	return n.Content.TextBetween(from, to, blockSep, leafText)
}

// NodesBetween calls fn for every descendant overlapping [from, to).
// Positions passed to fn are offsets into n's content.
func (n *Node) NodesBetween(from, to int, fn VisitFunc) {
	n.Content.NodesBetween(from, to, fn, 0, n)
}

// Descendants calls fn for every descendant.
func (n *Node) Descendants(fn VisitFunc) {
	n.NodesBetween(0, n.Content.Size(), fn)
}

// ForEach calls fn for each direct child with its offset.
func (n *Node) ForEach(fn func(child *Node, offset, index int)) {
	pos := 0
	for i, child := range n.Content.nodes {
		fn(child, pos, i)
		pos += child.NodeSize()
	}
}

// NodeAt returns the node starting at pos, or nil.
func (n *Node) NodeAt(pos int) *Node {
	node := n
	for {
		index, offset, err := node.Content.FindIndex(pos)
		if err != nil {
			return nil
		}
		child := node.MaybeChild(index)
		if child == nil {
			return nil
		}
		if offset == pos || child.IsText() {
			return child
		}
		pos -= offset + 1
		node = child
	}
}

// RangeHasMark reports whether any inline node in [from, to) carries a mark
// of type mt.
func (n *Node) RangeHasMark(from, to int, mt *MarkType) bool {
	found := false
	if to > from {
		n.NodesBetween(from, to, func(node *Node, _ int, _ *Node, _ int) bool {
			if node.Marks.Has(mt) {
				found = true
			}
			return !found
		})
	}
	return found
}

// String renders the tree compactly, e.g. doc(paragraph("hi", strong("x"))).
func (n *Node) String() string {
	if n.IsText() {
		s := strconv.Quote(n.Text)
		for i := len(n.Marks) - 1; i >= 0; i-- {
			s = n.Marks[i].Type.Name + "(" + s + ")"
		}
		return s
	}
	var b strings.Builder
	b.WriteString(n.Type.Name)
	if len(n.Attrs) > 0 {
		keys := make([]string, 0, len(n.Attrs))
		for k := range n.Attrs {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		b.WriteByte('[')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%s=%s", k, attrString(n.Attrs[k]))
		}
		b.WriteByte(']')
	}
	if n.Content.ChildCount() > 0 {
		b.WriteByte('(')
		for i, child := range n.Content.nodes {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(child.String())
		}
		b.WriteByte(')')
	}
	return b.String()
}

func attrString(v any) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprint(v)
}
