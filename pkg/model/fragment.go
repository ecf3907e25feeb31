package model

import (
	"slices"
	"strings"
)

// Fragment is an immutable, normalized sequence of child nodes: adjacent
// text nodes with equal marks are merged and empty text nodes are dropped.
type Fragment struct {
	nodes []*Node
	size  int
}

// EmptyFragment holds no nodes.
//
//nolint:gochecknoglobals // immutable zero value
var EmptyFragment = Fragment{}

// NewFragment normalizes nodes into a fragment.
func NewFragment(nodes ...*Node) Fragment {
	if len(nodes) == 0 {
		return EmptyFragment
	}
	out := make([]*Node, 0, len(nodes))
	size := 0
	for _, node := range nodes {
		if node == nil {
			continue
		}
		if node.IsText() {
			if node.Text == "" {
				continue
			}
			if n := len(out); n > 0 && out[n-1].IsText() && out[n-1].Marks.Eq(node.Marks) {
				last := out[n-1]
				out[n-1] = last.WithText(last.Text + node.Text)
				size += node.NodeSize()
				continue
			}
		}
		out = append(out, node)
		size += node.NodeSize()
	}
	return Fragment{nodes: out, size: size}
}

// Size is the total position size of the children.
func (f Fragment) Size() int { return f.size }

// ChildCount returns the number of children.
func (f Fragment) ChildCount() int { return len(f.nodes) }

// Child returns the child at index i.
func (f Fragment) Child(i int) *Node { return f.nodes[i] }

// MaybeChild returns the child at index i, or nil.
func (f Fragment) MaybeChild(i int) *Node {
	if i < 0 || i >= len(f.nodes) {
		return nil
	}
	return f.nodes[i]
}

// Children returns a copy of the child slice.
func (f Fragment) Children() []*Node { return slices.Clone(f.nodes) }

// FirstChild returns the first child, or nil.
func (f Fragment) FirstChild() *Node { return f.MaybeChild(0) }

// LastChild returns the last child, or nil.
func (f Fragment) LastChild() *Node { return f.MaybeChild(len(f.nodes) - 1) }

// Eq reports structural equality.
func (f Fragment) Eq(other Fragment) bool {
	return slices.EqualFunc(f.nodes, other.nodes, (*Node).Eq)
}

// Append concatenates two fragments.
func (f Fragment) Append(other Fragment) Fragment {
	if other.size == 0 && len(other.nodes) == 0 {
		return f
	}
	if f.size == 0 && len(f.nodes) == 0 {
		return other
	}
	return NewFragment(append(slices.Clone(f.nodes), other.nodes...)...)
}

// ReplaceChild returns a copy with the child at index replaced by node.
func (f Fragment) ReplaceChild(index int, node *Node) Fragment {
	nodes := slices.Clone(f.nodes)
	nodes[index] = node
	return NewFragment(nodes...)
}

// Insert returns a copy with nodes inserted before index.
func (f Fragment) Insert(index int, nodes ...*Node) Fragment {
	return NewFragment(slices.Insert(slices.Clone(f.nodes), index, nodes...)...)
}

// Remove returns a copy without children [from, to).
func (f Fragment) Remove(from, to int) Fragment {
	return NewFragment(slices.Delete(slices.Clone(f.nodes), from, to)...)
}

// Cut returns the part of the fragment between the given offsets. Children
// that straddle a boundary are cut as well.
func (f Fragment) Cut(from, to int) Fragment {
	if from == 0 && to == f.size {
		return f
	}
	var result []*Node
	if to > from {
		pos := 0
		for _, child := range f.nodes {
			if pos >= to {
				break
			}
			end := pos + child.NodeSize()
			if end > from {
				if pos < from || end > to {
					if child.IsText() {
						child = child.Cut(max(0, from-pos), min(child.NodeSize(), to-pos))
					} else {
						child = child.Cut(max(0, from-pos-1), min(child.Content.Size(), to-pos-1))
					}
				}
				result = append(result, child)
			}
			pos = end
		}
	}
	return NewFragment(result...)
}

// FindIndex returns the index of the child at pos and that child's start
// offset. When pos falls on a boundary the index after it is returned.
func (f Fragment) FindIndex(pos int) (int, int, error) {
	if pos == 0 {
		return 0, 0, nil
	}
	if pos == f.size {
		return len(f.nodes), pos, nil
	}
	if err := checkPos(pos, f.size); err != nil {
		return 0, 0, err
	}
	cur := 0
	for i, child := range f.nodes {
		end := cur + child.NodeSize()
		if end >= pos {
			if end == pos {
				return i + 1, end, nil
			}
			return i, cur, nil
		}
		cur = end
	}
	return len(f.nodes), f.size, nil
}

// VisitFunc is called for each node by NodesBetween. Returning false skips
// the node's children.
type VisitFunc func(node *Node, pos int, parent *Node, index int) bool

// NodesBetween calls fn for every node overlapping [from, to), depth first.
// nodeStart is the absolute position of the fragment's start.
func (f Fragment) NodesBetween(from, to int, fn VisitFunc, nodeStart int, parent *Node) {
	pos := 0
	for i, child := range f.nodes {
		if pos >= to {
			break
		}
		end := pos + child.NodeSize()
		if end > from && fn(child, nodeStart+pos, parent, i) && child.Content.Size() > 0 {
			start := pos + 1
			child.Content.NodesBetween(max(0, from-start), min(child.Content.Size(), to-start), fn, nodeStart+start, child)
		}
		pos = end
	}
}

// Descendants calls fn for every node in the fragment.
func (f Fragment) Descendants(fn VisitFunc) {
	f.NodesBetween(0, f.size, fn, 0, nil)
}

// TextBetween extracts text between two offsets, writing blockSep between
// textblocks and leafText for inline leaves such as hard breaks.
func (f Fragment) TextBetween(from, to int, blockSep string, leafText func(*Node) string) string {
	var b strings.Builder
	first := true
	f.NodesBetween(from, to, func(node *Node, pos int, _ *Node, _ int) bool {
		var text string
		switch {
		case node.IsText():
			runes := []rune(node.Text)
			text = string(runes[max(from, pos)-pos : min(len(runes), to-pos)])
		case node.IsLeaf() && leafText != nil:
			text = leafText(node)
		}
		if node.IsBlock() && ((node.IsLeaf() && text != "") || node.IsTextblock()) && blockSep != "" {
			if first {
				first = false
			} else {
				b.WriteString(blockSep)
			}
		}
		b.WriteString(text)
		return true
	}, 0, nil)
	return b.String()
}

// String renders the fragment for debugging.
func (f Fragment) String() string {
	parts := make([]string, len(f.nodes))
	for i, n := range f.nodes {
		parts[i] = n.String()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}
