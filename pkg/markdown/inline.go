package markdown

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yaklabco/gomdedit/pkg/model"
	"github.com/yaklabco/gomdedit/pkg/schema"
)

// piece is one element of the inline scan: literal text, an inline leaf,
// a run of emphasis delimiters or a bracket opener. Marks collect as
// delimiters and brackets are matched.
type piece struct {
	text  string
	node  *model.Node
	marks []model.Mark
	gone  bool

	delim   *delimRun
	bracket *bracketOpen
}

type delimRun struct {
	ch       byte
	count    int
	canOpen  bool
	canClose bool
}

type bracketOpen struct {
	image  bool
	active bool
}

type inlineParser struct {
	schema *model.Schema
	src    string
	pos    int
	pieces []piece
	buf    strings.Builder
}

// parseInline turns the text of a leaf block into inline nodes.
func parseInline(s *model.Schema, src string) []*model.Node {
	p := &inlineParser{schema: s, src: strings.TrimRight(src, " \t\n")}
	p.scan()
	p.processEmphasis(-1)
	return p.flatten()
}

func (p *inlineParser) flush() {
	if p.buf.Len() > 0 {
		p.pieces = append(p.pieces, piece{text: p.buf.String()})
		p.buf.Reset()
	}
}

func (p *inlineParser) push(pc piece) {
	p.flush()
	p.pieces = append(p.pieces, pc)
}

func (p *inlineParser) scan() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '\\':
			p.scanEscape()
		case '`':
			p.scanCodeSpan()
		case '*', '_', '~', '=':
			p.scanDelims(c)
		case '!':
			if strings.HasPrefix(p.src[p.pos:], "![") {
				p.push(piece{text: "![", bracket: &bracketOpen{image: true, active: true}})
				p.pos += 2
			} else {
				p.buf.WriteByte(c)
				p.pos++
			}
		case '[':
			p.push(piece{text: "[", bracket: &bracketOpen{active: true}})
			p.pos++
		case ']':
			p.pos++
			p.closeBracket()
		case '\n':
			p.scanNewline()
		default:
			_, size := utf8.DecodeRuneInString(p.src[p.pos:])
			p.buf.WriteString(p.src[p.pos : p.pos+size])
			p.pos += size
		}
	}
	p.flush()
}

func (p *inlineParser) scanEscape() {
	next := p.pos + 1
	switch {
	case next < len(p.src) && p.src[next] == '\n':
		p.push(piece{node: p.leaf(schema.HardBreak, nil)})
		p.pos = next + 1
		p.skipSpaces()
	case next < len(p.src) && isASCIIPunct(p.src[next]):
		p.buf.WriteByte(p.src[next])
		p.pos = next + 1
	default:
		p.buf.WriteByte('\\')
		p.pos++
	}
}

func (p *inlineParser) scanNewline() {
	text := p.buf.String()
	trimmed := strings.TrimRight(text, " ")
	hard := len(text)-len(trimmed) >= 2
	p.buf.Reset()
	p.buf.WriteString(trimmed)
	p.pos++
	if hard {
		p.push(piece{node: p.leaf(schema.HardBreak, nil)})
	} else {
		p.buf.WriteByte('\n')
	}
	p.skipSpaces()
}

func (p *inlineParser) skipSpaces() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *inlineParser) scanCodeSpan() {
	n := runLength(p.src, p.pos, '`')
	start := p.pos + n
	for i := start; i < len(p.src); {
		if p.src[i] != '`' {
			i++
			continue
		}
		m := runLength(p.src, i, '`')
		if m == n {
			content := strings.ReplaceAll(p.src[start:i], "\n", " ")
			if len(content) >= 2 && content[0] == ' ' && content[len(content)-1] == ' ' && strings.Trim(content, " ") != "" {
				content = content[1 : len(content)-1]
			}
			pc := piece{text: content}
			if code := p.schema.Mark(schema.Code); code != nil {
				pc.marks = []model.Mark{{Type: code, Attrs: model.Attrs{}}}
			}
			p.push(pc)
			p.pos = i + m
			return
		}
		i += m
	}
	p.buf.WriteString(p.src[p.pos:start])
	p.pos = start
}

func (p *inlineParser) scanDelims(c byte) {
	n := runLength(p.src, p.pos, c)
	before, _ := utf8.DecodeLastRuneInString(p.src[:p.pos])
	after, _ := utf8.DecodeRuneInString(p.src[p.pos+n:])
	if p.pos == 0 {
		before = '\n'
	}
	if p.pos+n >= len(p.src) {
		after = '\n'
	}
	if (c == '~' || c == '=') && n != 2 {
		p.buf.WriteString(p.src[p.pos : p.pos+n])
		p.pos += n
		return
	}

	leftFlanking := !isSpace(after) && (!isPunct(after) || isSpace(before) || isPunct(before))
	rightFlanking := !isSpace(before) && (!isPunct(before) || isSpace(after) || isPunct(after))
	run := &delimRun{ch: c, count: n, canOpen: leftFlanking, canClose: rightFlanking}
	if c == '_' {
		run.canOpen = leftFlanking && (!rightFlanking || isPunct(before))
		run.canClose = rightFlanking && (!leftFlanking || isPunct(after))
	}
	p.push(piece{text: p.src[p.pos : p.pos+n], delim: run})
	p.pos += n
}

// closeBracket handles "]": it looks for the latest bracket opener and a
// following inline destination, and turns the span into a link or image.
func (p *inlineParser) closeBracket() {
	p.flush()
	opener := -1
	for i := len(p.pieces) - 1; i >= 0; i-- {
		if p.pieces[i].bracket != nil && !p.pieces[i].gone {
			opener = i
			break
		}
	}
	if opener < 0 {
		p.buf.WriteByte(']')
		return
	}
	br := p.pieces[opener].bracket
	if !br.active {
		p.pieces[opener].bracket = nil
		p.buf.WriteByte(']')
		return
	}
	dest, title, end, ok := parseDestination(p.src, p.pos)
	if !ok {
		p.pieces[opener].bracket = nil
		p.buf.WriteByte(']')
		return
	}
	p.pos = end
	p.processEmphasis(opener)
	for i := opener + 1; i < len(p.pieces); i++ {
		if d := p.pieces[i].delim; d != nil {
			d.canOpen, d.canClose = false, false
		}
	}

	if br.image {
		var alt strings.Builder
		for i := opener + 1; i < len(p.pieces); i++ {
			if !p.pieces[i].gone {
				alt.WriteString(p.pieces[i].literal())
			}
		}
		img := p.leaf(schema.Image, model.Attrs{schema.AttrSrc: dest, schema.AttrAlt: alt.String(), schema.AttrTitle: title})
		p.pieces = append(p.pieces[:opener], piece{node: img})
		return
	}

	if link := p.schema.Mark(schema.Link); link != nil {
		mark := model.Mark{Type: link, Attrs: model.Attrs{schema.AttrHref: dest, schema.AttrTitle: title}}
		for i := opener + 1; i < len(p.pieces); i++ {
			p.pieces[i].marks = append(p.pieces[i].marks, mark)
		}
	}
	p.pieces[opener].gone = true
	p.pieces[opener].bracket = nil
	for i := range opener {
		if br := p.pieces[i].bracket; br != nil && !br.image {
			br.active = false
		}
	}
}

// processEmphasis matches delimiter runs above bottom, innermost pairs
// first, and applies the resulting marks to the pieces between them.
func (p *inlineParser) processEmphasis(bottom int) {
	for ci := bottom + 1; ci < len(p.pieces); ci++ {
		closer := p.pieces[ci].delim
		if closer == nil || p.pieces[ci].gone || !closer.canClose || closer.count == 0 {
			continue
		}
		for closer.count > 0 {
			oi, use := p.findOpener(bottom, ci, closer)
			if oi < 0 {
				break
			}
			mt := p.emphasisMark(closer.ch, use)
			if mt == nil {
				break
			}
			mark := model.Mark{Type: mt, Attrs: model.Attrs{}}
			for i := oi + 1; i < ci; i++ {
				if d := p.pieces[i].delim; d != nil {
					d.canOpen, d.canClose = false, false
				}
				p.pieces[i].marks = append(p.pieces[i].marks, mark)
			}
			opener := p.pieces[oi].delim
			opener.count -= use
			closer.count -= use
			if opener.count == 0 {
				p.pieces[oi].gone = true
			}
		}
		if closer.count == 0 {
			p.pieces[ci].gone = true
		}
	}
}

func (p *inlineParser) findOpener(bottom, ci int, closer *delimRun) (int, int) {
	for oi := ci - 1; oi > bottom; oi-- {
		pc := p.pieces[oi]
		opener := pc.delim
		if opener == nil || pc.gone || opener.ch != closer.ch || !opener.canOpen || opener.count == 0 {
			continue
		}
		if closer.ch == '~' || closer.ch == '=' {
			if opener.count == 2 && closer.count == 2 {
				return oi, 2
			}
			continue
		}
		// A double run only pairs with a double run and a single with a
		// single; longer runs pair with either.
		if (opener.count == 2 && closer.count == 1) || (opener.count == 1 && closer.count == 2) {
			continue
		}
		if (opener.canClose || closer.canOpen) &&
			(opener.count+closer.count)%3 == 0 && !(opener.count%3 == 0 && closer.count%3 == 0) {
			continue
		}
		if opener.count >= 2 && closer.count >= 2 {
			return oi, 2
		}
		return oi, 1
	}
	return -1, 0
}

func (p *inlineParser) emphasisMark(ch byte, use int) *model.MarkType {
	var name string
	switch {
	case use == 1:
		name = schema.Em
	case ch == '*':
		name = schema.Strong
	case ch == '_':
		name = schema.Underline
	case ch == '~':
		name = schema.Strikethrough
	case ch == '=':
		name = schema.Highlight
	}
	return p.schema.Mark(name)
}

func (p *inlineParser) leaf(name string, attrs model.Attrs) *model.Node {
	nt := p.schema.Node(name)
	if nt == nil {
		return nil
	}
	n, err := nt.Create(attrs)
	if err != nil {
		return nil
	}
	return n
}

func (pc piece) literal() string {
	switch {
	case pc.delim != nil:
		return strings.Repeat(string(pc.delim.ch), pc.delim.count)
	case pc.node != nil:
		if alt := pc.node.Attrs.String(schema.AttrAlt); alt != "" {
			return alt
		}
		return ""
	default:
		return pc.text
	}
}

// flatten turns the pieces into text and leaf nodes carrying their marks.
// A code span keeps only marks compatible with code.
func (p *inlineParser) flatten() []*model.Node {
	var out []*model.Node
	for _, pc := range p.pieces {
		if pc.gone && pc.delim == nil {
			continue
		}
		var set model.MarkSet
		for _, m := range pc.marks {
			if next, ok := m.AddToSet(set); ok {
				set = next
			}
		}
		if pc.node != nil {
			out = append(out, pc.node.WithMarks(set))
			continue
		}
		if text := pc.literal(); text != "" {
			out = append(out, p.schema.Text(text, set...))
		}
	}
	return out
}

// parseDestination parses "(dest "title")" starting at pos.
func parseDestination(src string, pos int) (string, string, int, bool) {
	if pos >= len(src) || src[pos] != '(' {
		return "", "", 0, false
	}
	i := skipWS(src, pos+1)
	var dest strings.Builder
	if i < len(src) && src[i] == '<' {
		i++
		for ; i < len(src) && src[i] != '>'; i++ {
			if src[i] == '\n' || src[i] == '<' {
				return "", "", 0, false
			}
			if src[i] == '\\' && i+1 < len(src) && isASCIIPunct(src[i+1]) {
				i++
			}
			dest.WriteByte(src[i])
		}
		if i >= len(src) {
			return "", "", 0, false
		}
		i++
	} else {
		depth := 0
		for ; i < len(src); i++ {
			c := src[i]
			if c == ' ' || c == '\t' || c == '\n' || c < 0x20 {
				break
			}
			if c == '(' {
				depth++
			}
			if c == ')' {
				if depth == 0 {
					break
				}
				depth--
			}
			if c == '\\' && i+1 < len(src) && isASCIIPunct(src[i+1]) {
				i++
				c = src[i]
			}
			dest.WriteByte(c)
		}
	}

	j := skipWS(src, i)
	var title string
	if j > i && j < len(src) && (src[j] == '"' || src[j] == '\'' || src[j] == '(') {
		closeCh := src[j]
		if closeCh == '(' {
			closeCh = ')'
		}
		var t strings.Builder
		k := j + 1
		for ; k < len(src) && src[k] != closeCh; k++ {
			if src[k] == '\\' && k+1 < len(src) && isASCIIPunct(src[k+1]) {
				k++
			}
			t.WriteByte(src[k])
		}
		if k >= len(src) {
			return "", "", 0, false
		}
		title = t.String()
		j = skipWS(src, k+1)
	}
	if j >= len(src) || src[j] != ')' {
		return "", "", 0, false
	}
	return dest.String(), title, j + 1, true
}

func skipWS(src string, i int) int {
	for i < len(src) && (src[i] == ' ' || src[i] == '\t' || src[i] == '\n') {
		i++
	}
	return i
}

func runLength(s string, i int, c byte) int {
	n := 0
	for i+n < len(s) && s[i+n] == c {
		n++
	}
	return n
}

func isASCIIPunct(c byte) bool {
	return strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", c) >= 0
}

func isSpace(r rune) bool {
	return r == utf8.RuneError || unicode.IsSpace(r)
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
