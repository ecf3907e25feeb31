package debug

import (
	"maps"
	"slices"

	"github.com/yaklabco/gomdedit/pkg/markdown"
	"github.com/yaklabco/gomdedit/pkg/model"
)

// TreeNode is the exported form of a document node.
type TreeNode struct {
	Type     string         `json:"type" yaml:"type"`
	Pos      int            `json:"pos" yaml:"pos"`
	Size     int            `json:"size" yaml:"size"`
	Attrs    map[string]any `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Marks    []string       `json:"marks,omitempty" yaml:"marks,omitempty"`
	Text     string         `json:"text,omitempty" yaml:"text,omitempty"`
	Children []*TreeNode    `json:"children,omitempty" yaml:"children,omitempty"`
}

// Snapshot is a full export of one document revision.
type Snapshot struct {
	Tree      *TreeNode `json:"tree" yaml:"tree"`
	Markdown  string    `json:"markdown" yaml:"markdown"`
	PlainText string    `json:"plain_text" yaml:"plain_text"`
	Size      int       `json:"size" yaml:"size"`
}

// Export captures doc as a tree together with its Markdown and plain
// text. A nil serializer uses markdown.NewSerializer().
func Export(doc *model.Node, ser *markdown.Serializer) *Snapshot {
	if ser == nil {
		ser = markdown.NewSerializer()
	}
	return &Snapshot{
		Tree:      Tree(doc),
		Markdown:  ser.Serialize(doc),
		PlainText: markdown.PlainText(doc),
		Size:      doc.Content.Size(),
	}
}

// Tree converts doc into TreeNodes. Positions are document positions of
// the node starts; the root sits at -1.
func Tree(doc *model.Node) *TreeNode {
	return treeNode(doc, -1)
}

func treeNode(n *model.Node, pos int) *TreeNode {
	tn := &TreeNode{
		Type: n.Type.Name,
		Pos:  pos,
		Size: n.NodeSize(),
		Text: n.Text,
	}
	if len(n.Attrs) > 0 {
		tn.Attrs = maps.Clone(map[string]any(n.Attrs))
	}
	for _, m := range n.Marks {
		tn.Marks = append(tn.Marks, m.String())
	}
	n.ForEach(func(child *model.Node, offset, _ int) {
		tn.Children = append(tn.Children, treeNode(child, pos+1+offset))
	})
	return tn
}

// Find returns the exported nodes of type name in document order.
func (t *TreeNode) Find(name string) []*TreeNode {
	var out []*TreeNode
	if t.Type == name {
		out = append(out, t)
	}
	for _, child := range t.Children {
		out = append(out, child.Find(name)...)
	}
	return out
}

// AttrNames returns the attribute names in sorted order.
func (t *TreeNode) AttrNames() []string {
	return slices.Sorted(maps.Keys(t.Attrs))
}
