package model

// ResolvedPos is a position with its context: the chain of ancestors, the
// index into each of them, and the offset into the parent.
type ResolvedPos struct {
	Pos          int
	ParentOffset int
	Depth        int

	nodes   []*Node
	indices []int
	starts  []int
}

// Resolve locates pos inside doc.
func (n *Node) Resolve(pos int) (*ResolvedPos, error) {
	if err := checkPos(pos, n.Content.Size()); err != nil {
		return nil, err
	}
	rp := &ResolvedPos{Pos: pos}
	start := 0
	parentOffset := pos
	node := n
	for {
		index, offset, err := node.Content.FindIndex(parentOffset)
		if err != nil {
			return nil, err
		}
		rem := parentOffset - offset
		rp.nodes = append(rp.nodes, node)
		rp.indices = append(rp.indices, index)
		rp.starts = append(rp.starts, start+offset)
		if rem == 0 {
			break
		}
		node = node.Child(index)
		if node.IsText() {
			break
		}
		parentOffset = rem - 1
		start += offset + 1
	}
	rp.Depth = len(rp.nodes) - 1
	rp.ParentOffset = parentOffset
	return rp, nil
}

func (rp *ResolvedPos) depth(d int) int {
	if d < 0 {
		return rp.Depth + d
	}
	return d
}

// Parent is the innermost node containing the position.
func (rp *ResolvedPos) Parent() *Node { return rp.nodes[rp.Depth] }

// Doc is the root node.
func (rp *ResolvedPos) Doc() *Node { return rp.nodes[0] }

// Node returns the ancestor at depth d. Negative depths count from the
// parent upward.
func (rp *ResolvedPos) Node(d int) *Node { return rp.nodes[rp.depth(d)] }

// Index returns the child index at depth d.
func (rp *ResolvedPos) Index(d int) int { return rp.indices[rp.depth(d)] }

// IndexAfter returns the index of the node after the position at depth d.
func (rp *ResolvedPos) IndexAfter(d int) int {
	d = rp.depth(d)
	if d == rp.Depth && rp.TextOffset() == 0 {
		return rp.indices[d]
	}
	return rp.indices[d] + 1
}

// Start is the position where the content of the ancestor at depth d begins.
func (rp *ResolvedPos) Start(d int) int {
	d = rp.depth(d)
	if d == 0 {
		return 0
	}
	return rp.starts[d-1] + 1
}

// End is the position where the content of the ancestor at depth d ends.
func (rp *ResolvedPos) End(d int) int {
	d = rp.depth(d)
	return rp.Start(d) + rp.nodes[d].Content.Size()
}

// Before is the position directly before the ancestor at depth d (d >= 1).
func (rp *ResolvedPos) Before(d int) int {
	d = rp.depth(d)
	if d == rp.Depth+1 {
		return rp.Pos
	}
	return rp.starts[d-1]
}

// After is the position directly after the ancestor at depth d (d >= 1).
func (rp *ResolvedPos) After(d int) int {
	d = rp.depth(d)
	if d == rp.Depth+1 {
		return rp.Pos + rp.NodeAfter().NodeSize()
	}
	return rp.starts[d-1] + rp.nodes[d].NodeSize()
}

// TextOffset is the offset into the text node the position points into,
// or 0 at a node boundary.
func (rp *ResolvedPos) TextOffset() int {
	return rp.Pos - rp.starts[rp.Depth]
}

// NodeAfter returns the node directly after the position, or nil.
func (rp *ResolvedPos) NodeAfter() *Node {
	parent := rp.Parent()
	index := rp.Index(rp.Depth)
	if index == parent.ChildCount() {
		return nil
	}
	child := parent.Child(index)
	if dOff := rp.TextOffset(); dOff > 0 {
		return child.Cut(dOff, child.NodeSize())
	}
	return child
}

// NodeBefore returns the node directly before the position, or nil.
func (rp *ResolvedPos) NodeBefore() *Node {
	index := rp.Index(rp.Depth)
	if dOff := rp.TextOffset(); dOff > 0 {
		return rp.Parent().Child(index).Cut(0, dOff)
	}
	if index == 0 {
		return nil
	}
	return rp.Parent().Child(index - 1)
}

// Marks returns the marks text inserted at the position would receive:
// the marks of the text before it, minus non-inclusive marks that do not
// continue after it.
func (rp *ResolvedPos) Marks() MarkSet {
	parent := rp.Parent()
	index := rp.Index(rp.Depth)
	if parent.Content.Size() == 0 {
		return nil
	}
	if rp.TextOffset() > 0 {
		return parent.Child(index).Marks
	}
	main := parent.MaybeChild(index - 1)
	other := parent.MaybeChild(index)
	if main == nil {
		main, other = other, main
	}
	if main == nil {
		return nil
	}
	marks := main.Marks
	for _, m := range main.Marks {
		if !m.Type.Inclusive() && (other == nil || !m.IsInSet(other.Marks)) {
			marks = m.RemoveFromSet(marks)
		}
	}
	return marks
}

// SharedDepth returns the depth of the deepest ancestor containing both
// this position and pos.
func (rp *ResolvedPos) SharedDepth(pos int) int {
	for d := rp.Depth; d > 0; d-- {
		if rp.Start(d) <= pos && rp.End(d) >= pos {
			return d
		}
	}
	return 0
}

// SameParent reports whether other has the same parent node.
func (rp *ResolvedPos) SameParent(other *ResolvedPos) bool {
	return rp.Depth == other.Depth && rp.Start(rp.Depth) == other.Start(other.Depth) &&
		rp.Parent() == other.Parent()
}

// FindAncestor returns the depth of the innermost ancestor satisfying pred,
// or -1.
func (rp *ResolvedPos) FindAncestor(pred func(*Node) bool) int {
	for d := rp.Depth; d >= 0; d-- {
		if pred(rp.nodes[d]) {
			return d
		}
	}
	return -1
}
