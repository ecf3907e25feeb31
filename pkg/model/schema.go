package model

import (
	"fmt"
	"slices"
	"strings"
)

// NodeSpec describes a node type before compilation.
type NodeSpec struct {
	// Name is the unique type name, e.g. "paragraph".
	Name string

	// Content is the content expression, e.g. "paragraph block*".
	// Empty for leaf types.
	Content string

	// Group is a space-separated list of groups the type belongs to.
	Group string

	// Inline marks inline types (text, image, hard_break).
	Inline bool

	// Marks lists the mark names or groups allowed inside the node.
	// nil allows every mark, "" allows none, "_" allows every mark.
	Marks *string

	// Code marks nodes whose text is code; input rules never fire inside them.
	Code bool

	// Attrs declares the node's attributes.
	Attrs map[string]AttrSpec
}

// MarkSpec describes a mark type before compilation.
type MarkSpec struct {
	// Name is the unique type name, e.g. "strong".
	Name string

	// Attrs declares the mark's attributes.
	Attrs map[string]AttrSpec

	// Excludes lists the mark names or groups that cannot share a run with
	// this mark. Empty excludes only other instances of the same type.
	Excludes string

	// Group is a space-separated list of groups the mark belongs to.
	Group string

	// Inclusive marks extend to text typed at their end.
	Inclusive bool
}

// NodeType is a compiled node type, shared by all nodes of that type.
type NodeType struct {
	Name   string
	Schema *Schema
	Spec   NodeSpec
	Groups []string

	// InlineContent is true when the content expression admits inline nodes.
	InlineContent bool

	content  *contentMatcher
	markSet  []*MarkType
	allMarks bool
}

// IsText reports whether this is the text type.
func (nt *NodeType) IsText() bool { return nt.Name == textTypeName }

// IsInline reports whether the type is inline.
func (nt *NodeType) IsInline() bool { return nt.Spec.Inline || nt.IsText() }

// IsBlock reports whether the type is a block.
func (nt *NodeType) IsBlock() bool { return !nt.IsInline() }

// IsTextblock reports whether the type is a block holding inline content.
func (nt *NodeType) IsTextblock() bool { return nt.IsBlock() && nt.InlineContent }

// IsLeaf reports whether the type admits no content.
func (nt *NodeType) IsLeaf() bool { return nt.content == nil }

// IsCode reports whether the type holds code.
func (nt *NodeType) IsCode() bool { return nt.Spec.Code }

// InGroup reports whether the type belongs to group.
func (nt *NodeType) InGroup(group string) bool {
	return slices.Contains(nt.Groups, group)
}

// AllowsMarkType reports whether marks of type mt may appear inside nodes of
// this type.
func (nt *NodeType) AllowsMarkType(mt *MarkType) bool {
	if nt.allMarks {
		return true
	}
	return slices.Contains(nt.markSet, mt)
}

// AllowsMarks reports whether every mark in marks is allowed.
func (nt *NodeType) AllowsMarks(marks MarkSet) bool {
	for _, m := range marks {
		if !nt.AllowsMarkType(m.Type) {
			return false
		}
	}
	return true
}

// ComputeAttrs fills defaults and checks the attribute domains.
func (nt *NodeType) ComputeAttrs(attrs Attrs) (Attrs, error) {
	built, err := computeAttrs(nt.Name, nt.Spec.Attrs, attrs)
	if err != nil {
		return nil, &SchemaViolation{Path: nt.Name, Reason: err.Error()}
	}
	return built, nil
}

// ValidContent reports whether content matches the type's content
// expression and only carries allowed marks.
func (nt *NodeType) ValidContent(content Fragment) bool {
	return nt.checkContent(content) == ""
}

func (nt *NodeType) checkContent(content Fragment) string {
	types := make([]*NodeType, content.ChildCount())
	for i, child := range content.nodes {
		types[i] = child.Type
		if !nt.AllowsMarks(child.Marks) {
			return fmt.Sprintf("marks %s not allowed in %s", child.Marks, nt.Name)
		}
	}
	if nt.content == nil {
		if len(types) > 0 {
			return nt.Name + " is a leaf and cannot hold content"
		}
		return ""
	}
	if !nt.content.matches(types) {
		return fmt.Sprintf("content %s does not match %q", typeNames(types), nt.Spec.Content)
	}
	return ""
}

// Create builds a node of this type. Attributes are defaulted and checked;
// content is checked against the content expression.
func (nt *NodeType) Create(attrs Attrs, content ...*Node) (*Node, error) {
	if nt.IsText() {
		return nil, &SchemaViolation{Path: nt.Name, Reason: "use Schema.Text to build text nodes"}
	}
	built, err := nt.ComputeAttrs(attrs)
	if err != nil {
		return nil, err
	}
	frag := NewFragment(content...)
	if reason := nt.checkContent(frag); reason != "" {
		return nil, &SchemaViolation{Path: nt.Name, Reason: reason}
	}
	return &Node{Type: nt, Attrs: built, Content: frag}, nil
}

// MarkType is a compiled mark type.
type MarkType struct {
	Name   string
	Schema *Schema
	Spec   MarkSpec
	Groups []string

	// Rank orders marks inside a MarkSet (definition order).
	Rank int

	excluded []*MarkType
}

// Create builds a mark of this type.
func (mt *MarkType) Create(attrs Attrs) (Mark, error) {
	built, err := computeAttrs(mt.Name, mt.Spec.Attrs, attrs)
	if err != nil {
		return Mark{}, &SchemaViolation{Path: mt.Name, Reason: err.Error()}
	}
	return Mark{Type: mt, Attrs: built}, nil
}

// Excludes reports whether marks of this type and other cannot coexist on
// one run. The relation is symmetric.
func (mt *MarkType) Excludes(other *MarkType) bool {
	return slices.Contains(mt.excluded, other) || slices.Contains(other.excluded, mt)
}

// Inclusive reports whether typing at the end of the mark extends it.
func (mt *MarkType) Inclusive() bool { return mt.Spec.Inclusive }

// Schema is a compiled set of node and mark types.
type Schema struct {
	TopNode *NodeType

	nodes     []*NodeType
	marks     []*MarkType
	nodesByID map[string]*NodeType
	marksByID map[string]*MarkType
}

// Node returns the node type called name, or nil.
func (s *Schema) Node(name string) *NodeType { return s.nodesByID[name] }

// Mark returns the mark type called name, or nil.
func (s *Schema) Mark(name string) *MarkType { return s.marksByID[name] }

// NodeTypes returns all node types in definition order.
func (s *Schema) NodeTypes() []*NodeType { return slices.Clone(s.nodes) }

// MarkTypes returns all mark types in definition order.
func (s *Schema) MarkTypes() []*MarkType { return slices.Clone(s.marks) }

// Text builds a text node. Empty text yields a node that fragments drop.
func (s *Schema) Text(text string, marks ...Mark) *Node {
	return &Node{Type: s.nodesByID[textTypeName], Text: text, Marks: NewMarkSet(marks...)}
}

// Mk builds a mark by type name.
func (s *Schema) Mk(name string, attrs Attrs) (Mark, error) {
	mt := s.Mark(name)
	if mt == nil {
		return Mark{}, &SchemaViolation{Reason: fmt.Sprintf("unknown mark type %q", name)}
	}
	return mt.Create(attrs)
}

// Create builds a node by type name.
func (s *Schema) Create(name string, attrs Attrs, content ...*Node) (*Node, error) {
	nt := s.Node(name)
	if nt == nil {
		return nil, &SchemaViolation{Reason: fmt.Sprintf("unknown node type %q", name)}
	}
	return nt.Create(attrs, content...)
}

const textTypeName = "text"

// Builder collects node and mark definitions and compiles them into a
// Schema. Extensions add types to a Builder without touching existing ones.
type Builder struct {
	topNode string
	nodes   []NodeSpec
	marks   []MarkSpec
}

// NewBuilder returns a Builder whose documents have topNode as root type.
func NewBuilder(topNode string) *Builder {
	return &Builder{topNode: topNode}
}

// NodeOption customizes a node definition.
type NodeOption func(*NodeSpec)

// InGroup adds the node to the given space-separated groups.
func InGroup(group string) NodeOption {
	return func(s *NodeSpec) { s.Group = strings.TrimSpace(s.Group + " " + group) }
}

// AsInline marks the node as inline.
func AsInline() NodeOption {
	return func(s *NodeSpec) { s.Inline = true }
}

// AllowMarks restricts marks inside the node. "" forbids every mark.
func AllowMarks(marks string) NodeOption {
	return func(s *NodeSpec) { s.Marks = &marks }
}

// AsCode marks the node as holding code.
func AsCode() NodeOption {
	return func(s *NodeSpec) { s.Code = true }
}

// DefineNodeType adds a node type.
func (b *Builder) DefineNodeType(name, content string, attrs map[string]AttrSpec, opts ...NodeOption) *Builder {
	spec := NodeSpec{Name: name, Content: content, Attrs: attrs}
	for _, opt := range opts {
		opt(&spec)
	}
	b.nodes = append(b.nodes, spec)
	return b
}

// MarkOption customizes a mark definition.
type MarkOption func(*MarkSpec)

// MarkGroup adds the mark to the given space-separated groups.
func MarkGroup(group string) MarkOption {
	return func(s *MarkSpec) { s.Group = strings.TrimSpace(s.Group + " " + group) }
}

// NonInclusive stops the mark from extending over text typed at its end.
func NonInclusive() MarkOption {
	return func(s *MarkSpec) { s.Inclusive = false }
}

// DefineMarkType adds a mark type. excludes names the marks or groups that
// cannot share a run with it.
func (b *Builder) DefineMarkType(name string, attrs map[string]AttrSpec, excludes string, opts ...MarkOption) *Builder {
	spec := MarkSpec{Name: name, Attrs: attrs, Excludes: excludes, Inclusive: true}
	for _, opt := range opts {
		opt(&spec)
	}
	b.marks = append(b.marks, spec)
	return b
}

// Build compiles the collected definitions.
func (b *Builder) Build() (*Schema, error) {
	s := &Schema{
		nodesByID: make(map[string]*NodeType, len(b.nodes)),
		marksByID: make(map[string]*MarkType, len(b.marks)),
	}

	for _, spec := range b.nodes {
		if _, dup := s.nodesByID[spec.Name]; dup {
			return nil, &SchemaError{Type: spec.Name, Message: "duplicate node type"}
		}
		nt := &NodeType{Name: spec.Name, Schema: s, Spec: spec, Groups: strings.Fields(spec.Group)}
		s.nodes = append(s.nodes, nt)
		s.nodesByID[spec.Name] = nt
	}
	for i, spec := range b.marks {
		if _, dup := s.marksByID[spec.Name]; dup {
			return nil, &SchemaError{Type: spec.Name, Message: "duplicate mark type"}
		}
		mt := &MarkType{Name: spec.Name, Schema: s, Spec: spec, Groups: strings.Fields(spec.Group), Rank: i}
		s.marks = append(s.marks, mt)
		s.marksByID[spec.Name] = mt
	}

	s.TopNode = s.nodesByID[b.topNode]
	if s.TopNode == nil {
		return nil, &SchemaError{Type: b.topNode, Message: "schema is missing its top node type"}
	}
	if s.nodesByID[textTypeName] == nil {
		return nil, &SchemaError{Type: textTypeName, Message: "every schema needs a text type"}
	}

	if err := s.compileMarks(); err != nil {
		return nil, err
	}
	if err := s.compileNodes(); err != nil {
		return nil, err
	}
	if err := s.checkSatisfiable(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Schema) compileMarks() error {
	for _, mt := range s.marks {
		for name, attr := range mt.Spec.Attrs {
			if attr.Default != nil {
				if err := attr.Check(attr.Default); err != nil {
					return &SchemaError{Type: mt.Name, Message: fmt.Sprintf("default of %q: %v", name, err)}
				}
			}
		}
		if mt.Spec.Excludes == "" {
			mt.excluded = []*MarkType{mt}
			continue
		}
		for _, name := range strings.Fields(mt.Spec.Excludes) {
			found, err := s.gatherMarks(name)
			if err != nil {
				return &SchemaError{Type: mt.Name, Message: err.Error()}
			}
			mt.excluded = append(mt.excluded, found...)
		}
	}
	return nil
}

func (s *Schema) gatherMarks(name string) ([]*MarkType, error) {
	if name == "_" {
		return slices.Clone(s.marks), nil
	}
	if mt, ok := s.marksByID[name]; ok {
		return []*MarkType{mt}, nil
	}
	var found []*MarkType
	for _, mt := range s.marks {
		if slices.Contains(mt.Groups, name) {
			found = append(found, mt)
		}
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("unknown mark type or group %q", name)
	}
	return found, nil
}

func (s *Schema) compileNodes() error {
	for _, nt := range s.nodes {
		for name, attr := range nt.Spec.Attrs {
			if attr.Default != nil {
				if err := attr.Check(attr.Default); err != nil {
					return &SchemaError{Type: nt.Name, Message: fmt.Sprintf("default of %q: %v", name, err)}
				}
			}
		}

		if nt.Spec.Content != "" {
			expr, err := parseContentExpr(nt.Spec.Content, s)
			if err != nil {
				return &SchemaError{Type: nt.Name, Message: err.Error()}
			}
			nt.content = expr
			nt.InlineContent = expr.inlineOnly()
		}

		switch {
		case nt.Spec.Marks == nil:
			nt.allMarks = true
		case *nt.Spec.Marks == "_":
			nt.allMarks = true
		default:
			for _, name := range strings.Fields(*nt.Spec.Marks) {
				found, err := s.gatherMarks(name)
				if err != nil {
					return &SchemaError{Type: nt.Name, Message: err.Error()}
				}
				nt.markSet = append(nt.markSet, found...)
			}
		}
	}
	return nil
}

// checkSatisfiable rejects content expressions that no finite tree can
// satisfy, e.g. a type whose required content is itself.
func (s *Schema) checkSatisfiable() error {
	fillable := make(map[*NodeType]bool, len(s.nodes))
	for changed := true; changed; {
		changed = false
		for _, nt := range s.nodes {
			if fillable[nt] {
				continue
			}
			if nt.content == nil || nt.content.satisfiable(fillable) {
				fillable[nt] = true
				changed = true
			}
		}
	}
	for _, nt := range s.nodes {
		if !fillable[nt] {
			return &SchemaError{
				Type:    nt.Name,
				Message: fmt.Sprintf("content expression %q cannot be satisfied by any finite tree", nt.Spec.Content),
			}
		}
	}
	return nil
}

func typeNames(types []*NodeType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.Name
	}
	return "[" + strings.Join(names, " ") + "]"
}
