package markdown

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/yaklabco/gomdedit/pkg/model"
	"github.com/yaklabco/gomdedit/pkg/schema"
)

// state is the output of one serialization. Block renderers write through
// it so that container prefixes and block separation are applied in one
// place.
type state struct {
	s   *Serializer
	out []byte

	// delim is the prefix written at the start of every line, built up
	// by the enclosing quotes and list items.
	delim string

	// closed is the last block finished; separation is written lazily
	// once the next output arrives.
	closed *model.Node

	atBlockStart bool
	inTable      bool
}

func (st *state) raw(s string) { st.out = append(st.out, s...) }

func (st *state) atBlank() bool {
	return len(st.out) == 0 || st.out[len(st.out)-1] == '\n'
}

// flushClose ends the closed block with size-1 empty lines.
func (st *state) flushClose(size int) {
	if st.closed == nil {
		return
	}
	if !st.atBlank() {
		st.raw("\n")
	}
	if size > 1 {
		blank := strings.TrimRight(st.delim, " ")
		for i := 1; i < size; i++ {
			st.raw(blank + "\n")
		}
	}
	st.closed = nil
}

func (st *state) closeBlock(node *model.Node) { st.closed = node }

func (st *state) write(content string) {
	st.flushClose(2)
	if st.delim != "" && st.atBlank() {
		st.raw(st.delim)
	}
	st.raw(content)
}

// wrapBlock renders a container: firstDelim prefixes its first line and
// delim every line of its content.
func (st *state) wrapBlock(delim, firstDelim string, node *model.Node, fn func() error) error {
	old := st.delim
	if firstDelim == "" {
		firstDelim = delim
	}
	st.write(firstDelim)
	st.delim += delim
	err := fn()
	st.delim = old
	st.closeBlock(node)
	return err
}

// text writes text line by line, escaping Markdown syntax when escape is
// set.
func (st *state) text(text string, escape bool) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		startOfLine := st.atBlank() || st.atBlockStart
		st.write("")
		if !escape && strings.HasPrefix(line, "[") && endsWithBang(st.out) {
			st.out = append(st.out[:len(st.out)-1], `\!`...)
		}
		if escape {
			line = escapeAll(line, st.inTable)
			if startOfLine {
				line = escapeLineStart(line)
			}
		}
		st.raw(line)
		if i != len(lines)-1 {
			st.raw("\n")
		}
	}
}

func endsWithBang(out []byte) bool {
	n := len(out)
	return n > 0 && out[n-1] == '!' && (n == 1 || out[n-2] != '\\')
}

func (st *state) renderContent(parent *model.Node) error {
	for i := range parent.ChildCount() {
		if err := st.render(parent.Child(i), parent, i); err != nil {
			return err
		}
	}
	return nil
}

func (st *state) render(node, parent *model.Node, index int) error {
	fn, ok := st.s.nodes[node.Type.Name]
	if !ok {
		return fmt.Errorf("no renderer for node type %q", node.Type.Name)
	}
	if st.closed != nil && parent != nil && isItem(parent) {
		// Inside an item only paragraphs and tables need a blank line.
		switch node.Type.Name {
		case schema.Paragraph, schema.Table:
			st.flushClose(2)
		default:
			st.flushClose(1)
		}
	}
	return fn(st, node, parent, index)
}

func isItem(n *model.Node) bool {
	return n.Type.Name == schema.ListItem || n.Type.Name == schema.TaskItem
}

func (st *state) renderList(node *model.Node, delim string, firstDelim func(int) string) error {
	for i := range node.ChildCount() {
		if i > 0 {
			st.flushClose(1)
		}
		child := node.Child(i)
		err := st.wrapBlock(delim, firstDelim(i), node, func() error {
			return st.render(child, node, i)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (st *state) renderTable(node *model.Node) error {
	for i := range node.ChildCount() {
		row := node.Child(i)
		cells := make([]string, row.ChildCount())
		for j := range row.ChildCount() {
			sub := &state{s: st.s, inTable: true}
			if err := sub.renderInline(row.Child(j), false); err != nil {
				return err
			}
			cells[j] = strings.ReplaceAll(string(sub.out), "\n", " ")
		}
		if i > 0 {
			st.raw("\n")
		}
		st.write("| " + strings.Join(cells, " | ") + " |")
		if i == 0 {
			st.raw("\n")
			st.write(separatorRow(row))
		}
	}
	st.closeBlock(node)
	return nil
}

func separatorRow(header *model.Node) string {
	cols := make([]string, header.ChildCount())
	for i := range cols {
		switch header.Child(i).Attrs.String(schema.AttrAlignment) {
		case "center":
			cols[i] = ":---:"
		case "right":
			cols[i] = "---:"
		case "left":
			cols[i] = ":---"
		default:
			cols[i] = "---"
		}
	}
	return "| " + strings.Join(cols, " | ") + " |"
}

// renderInline writes the inline content of parent, opening and closing
// mark delimiters as the mark sets of adjacent nodes change.
func (st *state) renderInline(parent *model.Node, fromBlockStart bool) error {
	st.atBlockStart = fromBlockStart
	r := &inlineRun{st: st, parent: parent}
	for i := range parent.ChildCount() {
		if err := r.progress(parent.Child(i), i); err != nil {
			return err
		}
	}
	if err := r.progress(nil, parent.ChildCount()); err != nil {
		return err
	}
	st.atBlockStart = false
	return nil
}

type inlineRun struct {
	st       *state
	parent   *model.Node
	active   []model.Mark
	trailing string
}

func (r *inlineRun) mixable(m model.Mark) bool {
	return r.st.s.marks[m.Type.Name].mixable
}

func (r *inlineRun) progress(node *model.Node, index int) error {
	st, parent := r.st, r.parent
	var marks model.MarkSet
	if node != nil {
		marks = node.Marks
	}
	if node != nil && node.Type.Name == schema.HardBreak {
		marks = slices.DeleteFunc(slices.Clone(marks), func(m model.Mark) bool {
			if index+1 >= parent.ChildCount() {
				return true
			}
			next := parent.Child(index + 1)
			return !m.IsInSet(next.Marks) || (next.IsText() && strings.TrimSpace(next.Text) == "")
		})
	}

	leading := r.trailing
	r.trailing = ""
	if node != nil && node.IsText() && slices.ContainsFunc(marks, func(m model.Mark) bool {
		return r.mixable(m) && !m.IsInSet(r.active)
	}) {
		rest := strings.TrimLeftFunc(node.Text, unicode.IsSpace)
		if lead := node.Text[:len(node.Text)-len(rest)]; lead != "" {
			leading += lead
			node, marks = r.trimmed(node, rest, marks)
		}
	}
	if node != nil && node.IsText() && slices.ContainsFunc(marks, func(m model.Mark) bool {
		return r.mixable(m) && (index == parent.ChildCount()-1 || !m.IsInSet(parent.Child(index+1).Marks))
	}) {
		rest := strings.TrimRightFunc(node.Text, unicode.IsSpace)
		if trail := node.Text[len(rest):]; trail != "" {
			r.trailing = trail
			node, marks = r.trimmed(node, rest, marks)
		}
	}

	isCode := false
	wanted := make([]model.Mark, 0, len(marks))
	for _, m := range marks {
		if m.Type.Name == schema.Code && node != nil && node.IsText() {
			isCode = true
			continue
		}
		wanted = append(wanted, m)
	}

	keep := 0
	for keep < len(r.active) && r.active[keep].IsInSet(wanted) {
		keep++
	}
	for len(r.active) > keep {
		last := r.active[len(r.active)-1]
		r.active = r.active[:len(r.active)-1]
		if err := r.token(last, false); err != nil {
			return err
		}
	}
	if leading != "" {
		st.text(leading, true)
	}
	if node == nil {
		return nil
	}

	for _, m := range r.opening(wanted, index) {
		r.active = append(r.active, m)
		if err := r.token(m, true); err != nil {
			return err
		}
		st.atBlockStart = false
	}
	if isCode {
		st.text(codeSpan(node.Text, st.inTable), false)
	} else if err := st.render(node, parent, index); err != nil {
		return err
	}
	st.atBlockStart = false
	return nil
}

// trimmed replaces node with its text reduced to rest, or drops it.
func (r *inlineRun) trimmed(node *model.Node, rest string, marks model.MarkSet) (*model.Node, model.MarkSet) {
	if rest == "" {
		return nil, r.active
	}
	return node.WithText(rest), marks
}

// opening returns the marks of wanted that are not open yet, ordered so
// that marks running further open first.
func (r *inlineRun) opening(wanted []model.Mark, index int) []model.Mark {
	var out []model.Mark
	for _, m := range wanted {
		if !m.IsInSet(r.active) {
			out = append(out, m)
		}
	}
	extent := func(m model.Mark) int {
		j := index
		for j < r.parent.ChildCount() && m.IsInSet(r.parent.Child(j).Marks) {
			j++
		}
		return j
	}
	slices.SortStableFunc(out, func(a, b model.Mark) int {
		if ea, eb := extent(a), extent(b); ea != eb {
			return eb - ea
		}
		return a.Type.Rank - b.Type.Rank
	})
	return out
}

func (r *inlineRun) token(m model.Mark, open bool) error {
	tok, ok := r.st.s.marks[m.Type.Name]
	if !ok {
		return fmt.Errorf("no renderer for mark type %q", m.Type.Name)
	}
	if open {
		r.st.text(tok.open(r.st, m), false)
	} else {
		r.st.text(tok.close(r.st, m), false)
	}
	return nil
}

// codeSpan wraps text in a backtick run longer than any run inside it.
func codeSpan(text string, inTable bool) string {
	delim := strings.Repeat("`", longestRun(text, '`')+1)
	if strings.HasPrefix(text, "`") || strings.HasSuffix(text, "`") ||
		(strings.HasPrefix(text, " ") && strings.HasSuffix(text, " ") && strings.Trim(text, " ") != "") {
		text = " " + text + " "
	}
	if inTable {
		text = strings.ReplaceAll(text, "|", `\|`)
	}
	return delim + text + delim
}

// escapeAll escapes the characters that open inline syntax anywhere in a
// line.
func escapeAll(s string, inTable bool) string {
	var b strings.Builder
	for i := range len(s) {
		c := s[i]
		switch c {
		case '\\', '*', '_', '`', '[', ']', '~':
			b.WriteByte('\\')
		case '=':
			// Runs can continue across node boundaries.
			if i == 0 || i == len(s)-1 || s[i-1] == '=' || s[i+1] == '=' {
				b.WriteByte('\\')
			}
		case '|':
			if inTable {
				b.WriteByte('\\')
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

//nolint:gochecknoglobals // compiled once
var orderedStartRE = regexp.MustCompile(`^(\d+)([.)])`)

// escapeLineStart escapes what would open a block at the start of a line.
func escapeLineStart(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '#', '>', '-', '+', '|':
		return `\` + s
	}
	if m := orderedStartRE.FindStringSubmatch(s); m != nil {
		return m[1] + `\` + s[len(m[1]):]
	}
	return s
}

// destination renders a link or image target with an optional title.
func destination(href, title string) string {
	dest := escapeDest(href, "<>")
	if strings.ContainsAny(href, " \t()<>") {
		dest = "<" + dest + ">"
	}
	if title == "" {
		return dest
	}
	return dest + ` "` + escapeDest(title, `"`) + `"`
}

// escapeDest doubles backslashes that precede punctuation and escapes the
// characters in special.
func escapeDest(s, special string) string {
	var b strings.Builder
	for i := range len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) && isASCIIPunct(s[i+1]) {
			b.WriteByte('\\')
		}
		if c == '\\' && i+1 == len(s) {
			b.WriteByte('\\')
		}
		if strings.IndexByte(special, c) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}
