package model

import (
	"errors"
	"fmt"
	"unicode"
)

// contentExpr is a compiled content expression. Matching works on sets of
// child indices: given the indices where a match may start, ends returns
// every index where it may finish.
type contentExpr interface {
	ends(types []*NodeType, starts posSet) posSet
	satisfiable(fillable map[*NodeType]bool) bool
	collect(into map[*NodeType]bool)
}

type posSet map[int]bool

func (p posSet) add(other posSet) {
	for k := range other {
		p[k] = true
	}
}

type exprName struct {
	name  string
	types []*NodeType
}

func (e *exprName) ends(types []*NodeType, starts posSet) posSet {
	out := posSet{}
	for i := range starts {
		if i >= len(types) {
			continue
		}
		for _, t := range e.types {
			if types[i] == t {
				out[i+1] = true
				break
			}
		}
	}
	return out
}

func (e *exprName) satisfiable(fillable map[*NodeType]bool) bool {
	for _, t := range e.types {
		if fillable[t] {
			return true
		}
	}
	return false
}

func (e *exprName) collect(into map[*NodeType]bool) {
	for _, t := range e.types {
		into[t] = true
	}
}

type exprSeq struct{ items []contentExpr }

func (e *exprSeq) ends(types []*NodeType, starts posSet) posSet {
	cur := starts
	for _, item := range e.items {
		cur = item.ends(types, cur)
		if len(cur) == 0 {
			break
		}
	}
	return cur
}

func (e *exprSeq) satisfiable(fillable map[*NodeType]bool) bool {
	for _, item := range e.items {
		if !item.satisfiable(fillable) {
			return false
		}
	}
	return true
}

func (e *exprSeq) collect(into map[*NodeType]bool) {
	for _, item := range e.items {
		item.collect(into)
	}
}

type exprChoice struct{ alts []contentExpr }

func (e *exprChoice) ends(types []*NodeType, starts posSet) posSet {
	out := posSet{}
	for _, alt := range e.alts {
		out.add(alt.ends(types, starts))
	}
	return out
}

func (e *exprChoice) satisfiable(fillable map[*NodeType]bool) bool {
	for _, alt := range e.alts {
		if alt.satisfiable(fillable) {
			return true
		}
	}
	return false
}

func (e *exprChoice) collect(into map[*NodeType]bool) {
	for _, alt := range e.alts {
		alt.collect(into)
	}
}

// exprRepeat matches inner at least min times; max < 0 means unbounded.
type exprRepeat struct {
	inner contentExpr
	min   int
	max   int
}

func (e *exprRepeat) ends(types []*NodeType, starts posSet) posSet {
	cur := starts
	for range e.min {
		cur = e.inner.ends(types, cur)
		if len(cur) == 0 {
			return cur
		}
	}
	out := posSet{}
	out.add(cur)
	if e.max == e.min {
		return out
	}
	frontier := cur
	for count := e.min; len(frontier) > 0 && (e.max < 0 || count < e.max); count++ {
		next := e.inner.ends(types, frontier)
		frontier = posSet{}
		for k := range next {
			if !out[k] {
				frontier[k] = true
				out[k] = true
			}
		}
	}
	return out
}

func (e *exprRepeat) satisfiable(fillable map[*NodeType]bool) bool {
	return e.min == 0 || e.inner.satisfiable(fillable)
}

func (e *exprRepeat) collect(into map[*NodeType]bool) { e.inner.collect(into) }

func matchExpr(expr contentExpr, types []*NodeType) bool {
	return expr.ends(types, posSet{0: true})[len(types)]
}

// contentMatcher wraps an expression with helpers used by NodeType.
type contentMatcher struct{ contentExpr }

func (m contentMatcher) matches(types []*NodeType) bool { return matchExpr(m.contentExpr, types) }

func (m contentMatcher) inlineOnly() bool {
	seen := map[*NodeType]bool{}
	m.collect(seen)
	for t := range seen {
		return t.IsInline()
	}
	return false
}

// parseContentExpr compiles a content expression such as
// "paragraph block*" or "(table_cell | table_header)+".
func parseContentExpr(src string, s *Schema) (*contentMatcher, error) {
	p := &exprParser{src: src, tokens: tokenizeExpr(src), schema: s}
	if len(p.tokens) == 0 {
		return nil, nil
	}
	expr, err := p.parseChoice()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, fmt.Errorf("unexpected token %q in content expression %q", p.tokens[p.pos], src)
	}

	seen := map[*NodeType]bool{}
	expr.collect(seen)
	var inline, block bool
	for t := range seen {
		if t.IsInline() {
			inline = true
		} else {
			block = true
		}
	}
	if inline && block {
		return nil, fmt.Errorf("content expression %q mixes inline and block content", src)
	}
	return &contentMatcher{expr}, nil
}

func tokenizeExpr(src string) []string {
	var tokens []string
	runes := []rune(src)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case isNameRune(r):
			start := i
			for i < len(runes) && isNameRune(runes[i]) {
				i++
			}
			tokens = append(tokens, string(runes[start:i]))
		default:
			tokens = append(tokens, string(r))
			i++
		}
	}
	return tokens
}

func isNameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

type exprParser struct {
	src    string
	tokens []string
	pos    int
	schema *Schema
}

var errUnexpectedEnd = errors.New("unexpected end of content expression")

func (p *exprParser) peek() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

func (p *exprParser) parseChoice() (contentExpr, error) {
	var alts []contentExpr
	for {
		seq, err := p.parseSeq()
		if err != nil {
			return nil, err
		}
		alts = append(alts, seq)
		if p.peek() != "|" {
			break
		}
		p.pos++
	}
	if len(alts) == 1 {
		return alts[0], nil
	}
	return &exprChoice{alts: alts}, nil
}

func (p *exprParser) parseSeq() (contentExpr, error) {
	var items []contentExpr
	for p.pos < len(p.tokens) && p.peek() != ")" && p.peek() != "|" {
		item, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("empty sequence in content expression %q", p.src)
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return &exprSeq{items: items}, nil
}

func (p *exprParser) parseTerm() (contentExpr, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek() {
		case "*":
			atom = &exprRepeat{inner: atom, min: 0, max: -1}
		case "+":
			atom = &exprRepeat{inner: atom, min: 1, max: -1}
		case "?":
			atom = &exprRepeat{inner: atom, min: 0, max: 1}
		default:
			return atom, nil
		}
		p.pos++
	}
}

func (p *exprParser) parseAtom() (contentExpr, error) {
	tok := p.peek()
	switch {
	case tok == "":
		return nil, errUnexpectedEnd
	case tok == "(":
		p.pos++
		inner, err := p.parseChoice()
		if err != nil {
			return nil, err
		}
		if p.peek() != ")" {
			return nil, fmt.Errorf("missing ')' in content expression %q", p.src)
		}
		p.pos++
		return inner, nil
	case isNameRune([]rune(tok)[0]):
		p.pos++
		types := p.resolveName(tok)
		if len(types) == 0 {
			return nil, fmt.Errorf("no node type or group %q", tok)
		}
		return &exprName{name: tok, types: types}, nil
	default:
		return nil, fmt.Errorf("unexpected token %q in content expression %q", tok, p.src)
	}
}

func (p *exprParser) resolveName(name string) []*NodeType {
	if nt, ok := p.schema.nodesByID[name]; ok {
		return []*NodeType{nt}
	}
	var found []*NodeType
	for _, nt := range p.schema.nodes {
		if nt.InGroup(name) {
			found = append(found, nt)
		}
	}
	return found
}
