package model

import (
	"fmt"
	"strconv"
)

// Validate checks a whole tree against its schema: the root type, every
// content expression, every attribute domain, and mark exclusivity on
// every inline node. The first violation is returned.
func Validate(doc *Node) error {
	if doc == nil {
		return &SchemaViolation{Reason: "nil document"}
	}
	if top := doc.Type.Schema.TopNode; doc.Type != top {
		return violation(nil, "root is %s, want %s", doc.Type.Name, top.Name)
	}
	return validateNode(doc, []string{doc.Type.Name})
}

func validateNode(node *Node, path []string) error {
	if err := validateAttrs(node, path); err != nil {
		return err
	}
	if err := validateMarks(node, path); err != nil {
		return err
	}
	if node.IsText() {
		if node.Text == "" {
			return violation(path, "empty text node")
		}
		return nil
	}
	if reason := node.Type.checkContent(node.Content); reason != "" {
		return violation(path, "%s", reason)
	}
	for i, child := range node.Content.nodes {
		childPath := append(path[:len(path):len(path)], strconv.Itoa(i)+":"+child.Type.Name)
		if err := validateNode(child, childPath); err != nil {
			return err
		}
	}
	return nil
}

func validateAttrs(node *Node, path []string) error {
	specs := node.Type.Spec.Attrs
	for name, spec := range specs {
		val, ok := node.Attrs[name]
		if !ok {
			return violation(path, "missing attribute %q", name)
		}
		if err := spec.Check(val); err != nil {
			return violation(path, "attribute %q: %v", name, err)
		}
	}
	for name := range node.Attrs {
		if _, ok := specs[name]; !ok {
			return violation(path, "unknown attribute %q", name)
		}
	}
	return nil
}

func validateMarks(node *Node, path []string) error {
	for i, m := range node.Marks {
		if i > 0 && node.Marks[i-1].Type.Rank >= m.Type.Rank {
			return violation(path, "mark set %s is not sorted", node.Marks)
		}
		for _, other := range node.Marks[i+1:] {
			if m.Type.Excludes(other.Type) {
				return violation(path, "mark %s excludes %s", m.Type.Name, other.Type.Name)
			}
		}
		if _, err := computeAttrs(m.Type.Name, m.Type.Spec.Attrs, m.Attrs); err != nil {
			return violation(path, "%v", err)
		}
	}
	return nil
}

// MustValidate panics when doc is invalid. Intended for tests and
// statically built documents.
func MustValidate(doc *Node) *Node {
	if err := Validate(doc); err != nil {
		panic(fmt.Sprintf("model: %v", err))
	}
	return doc
}
