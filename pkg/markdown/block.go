package markdown

import (
	"regexp"
	"strconv"
	"strings"
)

type blockKind uint8

const (
	blockDoc blockKind = iota
	blockQuote
	blockList
	blockItem
	blockParagraph
	blockHeading
	blockFence
	blockRule
	blockTable
)

// block is a node of the intermediate block tree built by the line pass.
// Inline content is parsed once every block is closed.
type block struct {
	kind     blockKind
	parent   *block
	children []*block
	open     bool

	// lines holds paragraph, heading and fenced code text.
	lines []string

	// Lists and items.
	ordered bool
	marker  byte
	start   int
	indent  int

	// Headings.
	level int

	// Fenced code.
	fenceLen    int
	fenceIndent int
	info        string

	// Tables: rows[0] is the header row.
	aligns []string
	rows   [][]string
}

func (b *block) lastOpenChild() *block {
	if n := len(b.children); n > 0 && b.children[n-1].open {
		return b.children[n-1]
	}
	return nil
}

func (b *block) isLeaf() bool {
	switch b.kind {
	case blockParagraph, blockHeading, blockFence, blockRule, blockTable:
		return true
	default:
		return false
	}
}

// closeAll closes b and every open descendant.
func (b *block) closeAll() {
	for cur := b; cur != nil; cur = cur.lastOpenChild() {
		cur.open = false
	}
}

//nolint:gochecknoglobals // compiled once
var (
	atxHeadingRE = regexp.MustCompile(`^(#{1,6})(?:[ \t]+(.*?))?[ \t]*$`)
	fenceOpenRE  = regexp.MustCompile("^(`{3,})[ \t]*([^`]*)$")
	fenceCloseRE = regexp.MustCompile("^(`{3,})[ \t]*$")
	bulletRE     = regexp.MustCompile(`^([-+*])([ \t]+|$)`)
	orderedRE    = regexp.MustCompile(`^(\d{1,9})([.)])([ \t]+|$)`)
	separatorRE  = regexp.MustCompile(`^\|?[ \t]*:?-+:?[ \t]*(\|[ \t]*:?-+:?[ \t]*)*\|?[ \t]*$`)
)

// blockParser runs the line pass: it keeps a stack of open containers
// (the rightmost open path of the tree), matches each line against it,
// opens new blocks and closes the ones a line does not continue.
type blockParser struct {
	doc   *block
	lines []string
	next  int
}

func parseBlocks(src string) *block {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")
	bp := &blockParser{
		doc:   &block{kind: blockDoc, open: true},
		lines: strings.Split(src, "\n"),
	}
	for bp.next < len(bp.lines) {
		line := expandIndent(bp.lines[bp.next])
		bp.next++
		bp.addLine(line)
	}
	bp.doc.closeAll()
	return bp.doc
}

// continues reports whether rest continues the open block b and returns
// the remainder after b's prefix.
func continues(b *block, rest string) (string, bool) {
	switch b.kind {
	case blockQuote:
		ind := indentOf(rest)
		if ind <= 3 && ind < len(rest) && rest[ind] == '>' {
			rest = rest[ind+1:]
			if strings.HasPrefix(rest, " ") {
				rest = rest[1:]
			}
			return rest, true
		}
		return rest, false
	case blockList, blockFence:
		return rest, true
	case blockItem:
		if isBlank(rest) {
			return "", len(b.children) > 0
		}
		if indentOf(rest) >= b.indent {
			return rest[b.indent:], true
		}
		return rest, false
	case blockParagraph:
		return rest, !isBlank(rest)
	case blockTable:
		ind := indentOf(rest)
		return rest, ind <= 3 && strings.HasPrefix(rest[ind:], "|")
	default:
		return rest, false
	}
}

func (bp *blockParser) addLine(line string) {
	rest := line
	container := bp.doc
	for {
		child := container.lastOpenChild()
		if child == nil {
			break
		}
		next, ok := continues(child, rest)
		if !ok {
			break
		}
		rest = next
		container = child
	}

	switch container.kind {
	case blockFence:
		bp.addFenceLine(container, rest)
		return
	case blockTable:
		container.rows = append(container.rows, splitRow(strings.TrimSpace(rest)))
		return
	}

	matchedPara := container.kind == blockParagraph
	parent := container
	if parent.isLeaf() {
		parent = parent.parent
	}

	started := false
	for !isBlank(rest) {
		ind := indentOf(rest)
		if ind >= 4 {
			break
		}
		r := rest[ind:]

		if r[0] == '>' {
			parent = bp.addChild(parent, &block{kind: blockQuote})
			rest = r[1:]
			if strings.HasPrefix(rest, " ") {
				rest = rest[1:]
			}
			started = true
			continue
		}
		if m := atxHeadingRE.FindStringSubmatch(r); m != nil {
			bp.addChild(parent, &block{kind: blockHeading, level: len(m[1]), lines: []string{m[2]}}).open = false
			return
		}
		if m := fenceOpenRE.FindStringSubmatch(r); m != nil {
			bp.addChild(parent, &block{
				kind:        blockFence,
				fenceLen:    len(m[1]),
				fenceIndent: ind,
				info:        strings.TrimSpace(m[2]),
			})
			return
		}
		if isThematicBreak(r) {
			bp.addChild(parent, &block{kind: blockRule}).open = false
			return
		}
		if item, content, ok := parseListMarker(r, ind); ok {
			interrupting := matchedPara && !started
			if !interrupting || (!isBlank(content) && (!item.ordered || item.start == 1)) {
				parent = bp.addChild(parent, item)
				rest = content
				started = true
				if isBlank(rest) {
					return
				}
				continue
			}
		}
		if r[0] == '|' && bp.tableAhead(parent, r) {
			bp.next++
			header := splitRow(strings.TrimSpace(r))
			bp.addChild(parent, &block{
				kind:   blockTable,
				aligns: parseAligns(bp.separatorLine(parent), len(header)),
				rows:   [][]string{header},
			})
			return
		}
		break
	}

	if isBlank(rest) {
		// A blank line ends every block it does not continue.
		if child := container.lastOpenChild(); !started && child != nil {
			child.closeAll()
		}
		return
	}

	text := strings.TrimLeft(rest, " \t")
	if !started {
		if matchedPara {
			container.lines = append(container.lines, text)
			return
		}
		if tip := bp.tip(); tip.kind == blockParagraph {
			// Lazy continuation.
			tip.lines = append(tip.lines, text)
			return
		}
	}
	bp.addChild(parent, &block{kind: blockParagraph, lines: []string{text}})
}

// tip returns the deepest open block.
func (bp *blockParser) tip() *block {
	cur := bp.doc
	for child := cur.lastOpenChild(); child != nil; child = cur.lastOpenChild() {
		cur = child
	}
	return cur
}

// addChild closes the open descendants of parent and appends child,
// creating or leaving lists as list items require.
func (bp *blockParser) addChild(parent, child *block) *block {
	if child.kind == blockItem {
		list := parent
		if list.kind != blockList {
			list = parent.lastOpenChild()
		}
		if list == nil || list.kind != blockList || list.ordered != child.ordered || list.marker != child.marker {
			if parent.kind == blockList {
				parent.closeAll()
				parent = parent.parent
			}
			list = &block{kind: blockList, ordered: child.ordered, marker: child.marker, start: child.start}
			bp.append(parent, list)
		}
		bp.append(list, child)
		return child
	}
	if parent.kind == blockList {
		parent.closeAll()
		parent = parent.parent
	}
	bp.append(parent, child)
	return child
}

func (bp *blockParser) append(parent, child *block) {
	if open := parent.lastOpenChild(); open != nil {
		open.closeAll()
	}
	child.parent = parent
	child.open = true
	parent.children = append(parent.children, child)
}

func (bp *blockParser) addFenceLine(fence *block, rest string) {
	ind := indentOf(rest)
	if ind <= 3 {
		if m := fenceCloseRE.FindStringSubmatch(rest[ind:]); m != nil && len(m[1]) >= fence.fenceLen {
			fence.open = false
			return
		}
	}
	strip := min(ind, fence.fenceIndent)
	fence.lines = append(fence.lines, rest[strip:])
}

// chain returns the containers from the document down to b.
func chain(b *block) []*block {
	var path []*block
	for cur := b; cur != nil && cur.kind != blockDoc; cur = cur.parent {
		path = append([]*block{cur}, path...)
	}
	return path
}

// separatorLine returns the next source line with the prefixes of the
// containers down to parent removed, or "" when they do not continue.
func (bp *blockParser) separatorLine(parent *block) string {
	if bp.next >= len(bp.lines) {
		return ""
	}
	rest := expandIndent(bp.lines[bp.next])
	for _, b := range chain(parent) {
		var ok bool
		if rest, ok = continues(b, rest); !ok {
			return ""
		}
	}
	return strings.TrimSpace(rest)
}

// tableAhead reports whether header is followed by a delimiter row with
// the same number of columns.
func (bp *blockParser) tableAhead(parent *block, header string) bool {
	sep := bp.separatorLine(parent)
	if sep == "" || !strings.Contains(sep, "|") || !separatorRE.MatchString(sep) {
		return false
	}
	return len(splitRow(sep)) == len(splitRow(strings.TrimSpace(header)))
}

func parseListMarker(r string, ind int) (*block, string, bool) {
	item := &block{kind: blockItem}
	var width int
	var spaces string
	if m := bulletRE.FindStringSubmatch(r); m != nil {
		item.marker = m[1][0]
		width, spaces = 1, m[2]
	} else if m := orderedRE.FindStringSubmatch(r); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, "", false
		}
		item.ordered = true
		item.start = n
		item.marker = m[2][0]
		width, spaces = len(m[1])+1, m[3]
	} else {
		return nil, "", false
	}

	content := r[width+len(spaces):]
	switch {
	case isBlank(content):
		item.indent = ind + width + 1
		content = ""
	case len(spaces) >= 5:
		item.indent = ind + width + 1
		content = strings.Repeat(" ", len(spaces)-1) + content
	default:
		item.indent = ind + width + len(spaces)
	}
	return item, content, true
}

func isThematicBreak(r string) bool {
	var ch byte
	count := 0
	for i := range len(r) {
		c := r[i]
		switch {
		case c == ' ' || c == '\t':
		case ch == 0 && (c == '-' || c == '*' || c == '_'):
			ch = c
			count++
		case c == ch:
			count++
		default:
			return false
		}
	}
	return count >= 3
}

// splitRow splits a table row on unescaped pipes. Escaped pipes lose
// their backslash, so cell content reaches the inline pass unescaped.
func splitRow(row string) []string {
	row = strings.TrimPrefix(row, "|")
	var cells []string
	var cur strings.Builder
	backslashes := 0
	for i := range len(row) {
		c := row[i]
		switch {
		case c == '|' && backslashes%2 == 1:
			s := cur.String()
			cur.Reset()
			cur.WriteString(s[:len(s)-1])
			cur.WriteByte('|')
		case c == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
		if c == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
	}
	if last := strings.TrimSpace(cur.String()); last != "" || !strings.HasSuffix(row, "|") {
		cells = append(cells, last)
	}
	return cells
}

func parseAligns(sep string, columns int) []string {
	cells := splitRow(sep)
	aligns := make([]string, columns)
	for i := range min(columns, len(cells)) {
		c := cells[i]
		left, right := strings.HasPrefix(c, ":"), strings.HasSuffix(c, ":")
		switch {
		case left && right:
			aligns[i] = "center"
		case right:
			aligns[i] = "right"
		case left:
			aligns[i] = "left"
		}
	}
	return aligns
}

func indentOf(s string) int {
	n := 0
	for n < len(s) && s[n] == ' ' {
		n++
	}
	return n
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// expandIndent turns tabs in leading whitespace into spaces on a
// four-column grid.
func expandIndent(line string) string {
	lead := len(line) - len(strings.TrimLeft(line, " \t"))
	if !strings.Contains(line[:lead], "\t") {
		return line
	}
	var b strings.Builder
	col := 0
	i := 0
	for ; i < len(line); i++ {
		switch line[i] {
		case ' ':
			b.WriteByte(' ')
			col++
		case '\t':
			n := 4 - col%4
			b.WriteString(strings.Repeat(" ", n))
			col += n
		default:
			b.WriteString(line[i:])
			return b.String()
		}
	}
	return b.String()
}
