package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/model"
	"github.com/yaklabco/gomdedit/pkg/schema"
)

// nodeFunc renders one node. parent and index locate it among its
// siblings.
type nodeFunc func(st *state, node, parent *model.Node, index int) error

// markToken describes how a mark is written around its content.
type markToken struct {
	open  func(st *state, mark model.Mark) string
	close func(st *state, mark model.Mark) string

	// mixable marks may nest in any order and push enclosing whitespace
	// outside their delimiters.
	mixable bool
}

func fixed(token string) func(*state, model.Mark) string {
	return func(*state, model.Mark) string { return token }
}

// Serializer renders documents as Markdown. A Serializer holds no per-call
// state and may be shared.
type Serializer struct {
	nodes  map[string]nodeFunc
	marks  map[string]markToken
	logger *log.Logger
}

// NewSerializer creates a serializer with renderers for every type of the
// Markdown schema.
func NewSerializer(opts ...Option) *Serializer {
	o := buildOptions(opts)
	return &Serializer{
		nodes:  defaultNodes(),
		marks:  defaultMarks(),
		logger: o.logger,
	}
}

// Serialize renders doc. It never fails: when a node cannot be rendered the
// result is the plain text of doc.
func (s *Serializer) Serialize(doc *model.Node) string {
	out, err := s.SerializeStrict(doc)
	if err != nil {
		s.logger.Warn("markdown serialize failed, using plain text", logging.FieldError, err)
		return PlainText(doc)
	}
	return out
}

// SerializeStrict renders doc and returns an error wrapping
// ErrSerializeFailure when a node has no renderer.
func (s *Serializer) SerializeStrict(doc *model.Node) (string, error) {
	st := &state{s: s}
	if err := st.renderContent(doc); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSerializeFailure, err)
	}
	return strings.TrimRight(string(st.out), "\n"), nil
}

// PlainText concatenates the text of doc depth first, starting a new line
// before every paragraph that follows text.
func PlainText(doc *model.Node) string {
	var b strings.Builder
	doc.Descendants(func(node *model.Node, _ int, _ *model.Node, _ int) bool {
		if node.IsText() {
			b.WriteString(node.Text)
		}
		if node.Type.Name == schema.Paragraph {
			if text := b.String(); text != "" && !strings.HasSuffix(text, "\n") {
				b.WriteByte('\n')
			}
		}
		return true
	})
	return b.String()
}

func defaultMarks() map[string]markToken {
	return map[string]markToken{
		schema.Em:            {open: fixed("*"), close: fixed("*"), mixable: true},
		schema.Strong:        {open: fixed("**"), close: fixed("**"), mixable: true},
		schema.Strikethrough: {open: fixed("~~"), close: fixed("~~"), mixable: true},
		schema.Underline:     {open: fixed("__"), close: fixed("__"), mixable: true},
		schema.Highlight:     {open: fixed("=="), close: fixed("=="), mixable: true},
		schema.Link: {
			open: fixed("["),
			close: func(_ *state, mark model.Mark) string {
				return "](" + destination(mark.Attrs.String(schema.AttrHref), mark.Attrs.String(schema.AttrTitle)) + ")"
			},
		},
	}
}

func defaultNodes() map[string]nodeFunc {
	return map[string]nodeFunc{
		schema.Blockquote: func(st *state, node, _ *model.Node, _ int) error {
			return st.wrapBlock("> ", "", node, func() error { return st.renderContent(node) })
		},
		schema.CodeBlock: func(st *state, node, _ *model.Node, _ int) error {
			code := node.TextContent()
			fence := strings.Repeat("`", max(3, longestRun(code, '`')+1))
			st.write(fence + node.Attrs.String(schema.AttrParams) + "\n")
			st.text(code, false)
			st.raw("\n")
			st.write(fence)
			st.closeBlock(node)
			return nil
		},
		schema.Heading: func(st *state, node, _ *model.Node, _ int) error {
			st.write(strings.Repeat("#", node.Attrs.Int(schema.AttrLevel)) + " ")
			if err := st.renderInline(node, false); err != nil {
				return err
			}
			st.closeBlock(node)
			return nil
		},
		schema.HorizontalRule: func(st *state, node, _ *model.Node, _ int) error {
			st.write("---")
			st.closeBlock(node)
			return nil
		},
		schema.BulletList: func(st *state, node, parent *model.Node, index int) error {
			bullet := string(bulletMarker(parent, index)) + " "
			return st.renderList(node, "  ", func(int) string { return bullet })
		},
		schema.TaskList: func(st *state, node, parent *model.Node, index int) error {
			bullet := string(bulletMarker(parent, index))
			return st.renderList(node, "  ", func(i int) string {
				if node.Child(i).Attrs.Bool(schema.AttrChecked) {
					return bullet + " [x] "
				}
				return bullet + " [ ] "
			})
		},
		schema.OrderedList: func(st *state, node, parent *model.Node, index int) error {
			start := node.Attrs.Int(schema.AttrOrder)
			width := len(fmt.Sprint(start + node.ChildCount() - 1))
			delim := orderedDelimiter(parent, index)
			return st.renderList(node, strings.Repeat(" ", width+2), func(i int) string {
				label := fmt.Sprint(start + i)
				return strings.Repeat(" ", width-len(label)) + label + delim + " "
			})
		},
		schema.ListItem: func(st *state, node, _ *model.Node, _ int) error {
			return st.renderContent(node)
		},
		schema.TaskItem: func(st *state, node, _ *model.Node, _ int) error {
			return st.renderContent(node)
		},
		schema.Paragraph: func(st *state, node, _ *model.Node, _ int) error {
			if err := st.renderInline(node, true); err != nil {
				return err
			}
			st.closeBlock(node)
			return nil
		},
		schema.Table: func(st *state, node, _ *model.Node, _ int) error {
			return st.renderTable(node)
		},
		schema.Image: func(st *state, node, _ *model.Node, _ int) error {
			st.write("![" + escapeAll(node.Attrs.String(schema.AttrAlt), false) + "](" +
				destination(node.Attrs.String(schema.AttrSrc), node.Attrs.String(schema.AttrTitle)) + ")")
			return nil
		},
		schema.HardBreak: func(st *state, node, parent *model.Node, index int) error {
			for i := index + 1; i < parent.ChildCount(); i++ {
				if parent.Child(i).Type != node.Type {
					st.write("\\\n")
					return nil
				}
			}
			return nil
		},
		schema.Text: func(st *state, node, _ *model.Node, _ int) error {
			st.text(node.Text, true)
			return nil
		},
	}
}

// bulletMarker alternates between "-" and "*" for consecutive bullet-like
// lists so a reader does not merge them.
func bulletMarker(parent *model.Node, index int) byte {
	if sameFamilyRun(parent, index, isBulletLike)%2 == 1 {
		return '*'
	}
	return '-'
}

func orderedDelimiter(parent *model.Node, index int) string {
	if sameFamilyRun(parent, index, func(n *model.Node) bool { return n.Type.Name == schema.OrderedList })%2 == 1 {
		return ")"
	}
	return "."
}

func isBulletLike(n *model.Node) bool {
	return n.Type.Name == schema.BulletList || n.Type.Name == schema.TaskList
}

// sameFamilyRun counts the siblings directly before index that satisfy
// family.
func sameFamilyRun(parent *model.Node, index int, family func(*model.Node) bool) int {
	if parent == nil {
		return 0
	}
	n := 0
	for i := index - 1; i >= 0 && family(parent.Child(i)); i-- {
		n++
	}
	return n
}

func longestRun(s string, c byte) int {
	best := 0
	for i := 0; i < len(s); {
		if s[i] != c {
			i++
			continue
		}
		n := runLength(s, i, c)
		best = max(best, n)
		i += n
	}
	return best
}
