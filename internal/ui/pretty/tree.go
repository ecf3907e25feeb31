package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"

	"github.com/yaklabco/gomdedit/pkg/debug"
)

const (
	treeIndent = "  "
	textTail   = "…"
)

// FormatTree renders an exported document tree, one node per line, with
// every line cut to width printable cells.
func (s *Styles) FormatTree(root *debug.TreeNode, width int) string {
	if root == nil {
		return ""
	}
	if width <= 0 {
		width = DefaultWidth
	}
	var b strings.Builder
	s.writeTree(&b, root, 0, width)
	return b.String()
}

func (s *Styles) writeTree(b *strings.Builder, n *debug.TreeNode, depth, width int) {
	line := s.Guide.Render(strings.Repeat(treeIndent, depth)) + s.nodeLine(n)
	if ansi.PrintableRuneWidth(line) > width {
		line = truncate.StringWithTail(line, uint(width), textTail)
	}
	b.WriteString(line)
	b.WriteString("\n")
	for _, child := range n.Children {
		s.writeTree(b, child, depth+1, width)
	}
}

// nodeLine formats "type @pos/size {attrs} [marks] "text"".
func (s *Styles) nodeLine(n *debug.TreeNode) string {
	parts := []string{s.NodeType.Render(n.Type)}
	if n.Pos >= 0 {
		parts = append(parts, s.Pos.Render(fmt.Sprintf("@%d/%d", n.Pos, n.Size)))
	}
	if len(n.Attrs) > 0 {
		parts = append(parts, s.Attr.Render(formatAttrs(n)))
	}
	if len(n.Marks) > 0 {
		parts = append(parts, s.Mark.Render("["+strings.Join(n.Marks, " ")+"]"))
	}
	if n.Text != "" {
		parts = append(parts, s.Text.Render(strconv.Quote(n.Text)))
	}
	return strings.Join(parts, " ")
}

func formatAttrs(n *debug.TreeNode) string {
	names := n.AttrNames()
	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, fmt.Sprintf("%s=%v", name, n.Attrs[name]))
	}
	return "{" + strings.Join(pairs, " ") + "}"
}
