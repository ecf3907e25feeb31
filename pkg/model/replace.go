package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Replace returns a copy of n where the range [from, to) is replaced by
// content. Both ends must lie in the same parent node, and the parent's new
// content must satisfy its content expression.
func (n *Node) Replace(from, to int, content Fragment) (*Node, error) {
	if to < from {
		return nil, fmt.Errorf("replace: inverted range [%d, %d]", from, to)
	}
	rFrom, err := n.Resolve(from)
	if err != nil {
		return nil, err
	}
	rTo, err := n.Resolve(to)
	if err != nil {
		return nil, err
	}
	if !rFrom.SameParent(rTo) {
		return nil, &SchemaViolation{
			Path:   rFrom.Path(),
			Reason: fmt.Sprintf("replace range [%d, %d] crosses node boundaries", from, to),
		}
	}

	depth := rFrom.Depth
	parent := rFrom.Parent()
	start := rFrom.Start(depth)
	inner := parent.Content.Cut(0, from-start).
		Append(content).
		Append(parent.Content.Cut(to-start, parent.Content.Size()))
	if reason := parent.Type.checkContent(inner); reason != "" {
		return nil, &SchemaViolation{Path: rFrom.Path(), Reason: reason}
	}

	node := parent.Copy(inner)
	for d := depth - 1; d >= 0; d-- {
		anc := rFrom.Node(d)
		node = anc.Copy(anc.Content.ReplaceChild(rFrom.Index(d), node))
	}
	return node, nil
}

// ReplaceWith replaces the range with the given nodes.
func (n *Node) ReplaceWith(from, to int, nodes ...*Node) (*Node, error) {
	return n.Replace(from, to, NewFragment(nodes...))
}

// Path describes the ancestor chain of the position, e.g.
// "doc/1:bullet_list/0:list_item".
func (rp *ResolvedPos) Path() string {
	parts := make([]string, 0, rp.Depth+1)
	parts = append(parts, rp.nodes[0].Type.Name)
	for d := 1; d <= rp.Depth; d++ {
		parts = append(parts, strconv.Itoa(rp.indices[d-1])+":"+rp.nodes[d].Type.Name)
	}
	return strings.Join(parts, "/")
}

// Slice returns the content between from and to, which must share a parent.
func (n *Node) Slice(from, to int) (Fragment, error) {
	rFrom, err := n.Resolve(from)
	if err != nil {
		return EmptyFragment, err
	}
	rTo, err := n.Resolve(to)
	if err != nil {
		return EmptyFragment, err
	}
	if !rFrom.SameParent(rTo) || to < from {
		return EmptyFragment, &SchemaViolation{
			Path:   rFrom.Path(),
			Reason: fmt.Sprintf("slice range [%d, %d] crosses node boundaries", from, to),
		}
	}
	start := rFrom.Start(rFrom.Depth)
	return rFrom.Parent().Content.Cut(from-start, to-start), nil
}
