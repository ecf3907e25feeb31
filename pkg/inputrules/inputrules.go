// Package inputrules turns literal syntax typed at the cursor into
// document structure.
//
// An Engine holds rules in registration order. After text is inserted the
// engine looks at the text of the enclosing textblock that ends at the
// cursor and runs the first rule whose pattern matches it. Rules append
// steps to the transform that inserted the text, so a rule and the typing
// that triggered it form one edit.
package inputrules

import (
	"regexp"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/model"
	"github.com/yaklabco/gomdedit/pkg/transform"
)

// MaxMatch bounds the number of characters before the cursor a pattern
// sees.
const MaxMatch = 500

// leafChar stands in for inline leaves such as images in matched text.
const leafChar = "\ufffc"

// Kind classifies rules by the shape of the edit they make.
type Kind int

const (
	// KindTextblockType rules change the type of the enclosing textblock.
	KindTextblockType Kind = iota + 1

	// KindWrapping rules wrap the enclosing textblock in a container.
	KindWrapping

	// KindInline rules replace a trailing inline span.
	KindInline

	// KindCustom rules build arbitrary edits.
	KindCustom
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindTextblockType:
		return "textblock"
	case KindWrapping:
		return "wrapping"
	case KindInline:
		return "inline"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Handler builds the edit for a match. Returning nil without adding steps
// declines the match; returning an error discards any steps it added.
// Either way the engine moves on to the next rule.
type Handler func(ctx *Context, m Match) error

// Rule pairs a pattern with the edit it triggers.
type Rule struct {
	Name    string
	Kind    Kind
	Pattern *regexp.Regexp
	Handler Handler
}

// NewRule creates a rule. Patterns should be anchored with $ since only
// matches that end at the cursor count.
func NewRule(name string, kind Kind, pattern *regexp.Regexp, handler Handler) *Rule {
	return &Rule{Name: name, Kind: kind, Pattern: pattern, Handler: handler}
}

// Match is a pattern match located in the document.
type Match struct {
	// Groups holds the submatch texts; Groups[0] is the whole match.
	Groups []string

	// From and To are the document positions of the whole match.
	From, To int

	names []string
	pos   []int
}

func newMatch(re *regexp.Regexp, text string, idx []int, start int) Match {
	m := Match{
		Groups: make([]string, len(idx)/2),
		names:  re.SubexpNames(),
		pos:    make([]int, len(idx)),
	}
	for i := range len(idx) / 2 {
		lo, hi := idx[2*i], idx[2*i+1]
		if lo < 0 {
			m.pos[2*i], m.pos[2*i+1] = -1, -1
			continue
		}
		m.Groups[i] = text[lo:hi]
		m.pos[2*i] = start + utf8.RuneCountInString(text[:lo])
		m.pos[2*i+1] = m.pos[2*i] + utf8.RuneCountInString(text[lo:hi])
	}
	m.From, m.To = m.pos[0], m.pos[1]
	return m
}

func (m Match) index(name string) int {
	for i, n := range m.names {
		if n == name && i > 0 {
			return i
		}
	}
	return -1
}

// Group returns the text of the named group, or "".
func (m Match) Group(name string) string {
	if i := m.index(name); i > 0 {
		return m.Groups[i]
	}
	return ""
}

// Range returns the document positions of the named group.
func (m Match) Range(name string) (int, int, bool) {
	i := m.index(name)
	if i < 0 || m.pos[2*i] < 0 {
		return 0, 0, false
	}
	return m.pos[2*i], m.pos[2*i+1], true
}

// Context is handed to a Handler.
type Context struct {
	// Tr receives the rule's steps.
	Tr *transform.Transform

	// Pos is the cursor resolved in the document the rule matched against.
	Pos *model.ResolvedPos

	// Cursor is where the cursor goes after the edit. Handlers update it.
	Cursor int

	storedMarks model.MarkSet
	storeMarks  bool
}

// Schema returns the schema of the document being edited.
func (c *Context) Schema() *model.Schema { return c.Tr.Doc.Type.Schema }

// SetStoredMarks sets the marks the next typed text receives.
func (c *Context) SetStoredMarks(marks model.MarkSet) {
	c.storedMarks = marks
	c.storeMarks = true
}

// Result describes a rule that fired.
type Result struct {
	Rule   *Rule
	Match  Match
	Cursor int

	// StoredMarks applies to the next typed text when StoreMarks is set.
	StoredMarks model.MarkSet
	StoreMarks  bool
}

// Engine evaluates rules in registration order.
type Engine struct {
	rules  []*Rule
	logger *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger that reports rule activity.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an engine holding rules.
func New(rules []*Rule, opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.Default()
	}
	e.Register(rules...)
	return e
}

// Register appends rules. Earlier rules take priority.
func (e *Engine) Register(rules ...*Rule) {
	e.rules = append(e.rules, rules...)
}

// Rules returns the registered rules in priority order.
func (e *Engine) Rules() []*Rule {
	return append([]*Rule(nil), e.rules...)
}

// Run looks for a rule matching the text that ends at cursor in tr.Doc and
// applies the first one whose handler succeeds. It returns nil when no
// rule fired; tr is then unchanged.
func (e *Engine) Run(tr *transform.Transform, cursor int) *Result {
	rp, err := tr.Doc.Resolve(cursor)
	if err != nil {
		return nil
	}
	parent := rp.Parent()
	if !parent.IsTextblock() || parent.Type.IsCode() {
		return nil
	}
	offset := rp.ParentOffset
	startOffset := max(0, offset-MaxMatch)
	text := parent.TextBetween(startOffset, offset, "", func(*model.Node) string { return leafChar })
	start := rp.Start(rp.Depth) + startOffset

	for _, rule := range e.rules {
		idx := rule.Pattern.FindStringSubmatchIndex(text)
		if idx == nil || idx[1] != len(text) {
			continue
		}
		m := newMatch(rule.Pattern, text, idx, start)
		mark := len(tr.Steps)
		ctx := &Context{Tr: tr, Pos: rp, Cursor: cursor}
		if err := rule.Handler(ctx, m); err != nil {
			tr.Rollback(mark)
			e.logger.Debug("input rule rejected",
				logging.FieldRule, rule.Name,
				logging.FieldError, err,
			)
			continue
		}
		if len(tr.Steps) == mark {
			continue
		}
		e.logger.Debug("input rule applied",
			logging.FieldRule, rule.Name,
			logging.FieldPos, m.From,
			logging.FieldSteps, len(tr.Steps)-mark,
		)
		return &Result{
			Rule:        rule,
			Match:       m,
			Cursor:      ctx.Cursor,
			StoredMarks: ctx.storedMarks,
			StoreMarks:  ctx.storeMarks,
		}
	}
	return nil
}
