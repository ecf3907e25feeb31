package inputrules_test

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/inputrules"
	"github.com/yaklabco/gomdedit/pkg/model"
	. "github.com/yaklabco/gomdedit/pkg/schema/schematest"
	"github.com/yaklabco/gomdedit/pkg/transform"
)

func newEngine(opts inputrules.MarkdownOptions) *inputrules.Engine {
	return inputrules.New(inputrules.Markdown(S, opts), inputrules.WithLogger(logging.Discard()))
}

// typeText inserts text one character at a time at cursor, running the
// engine after every character the way an editor does.
func typeText(t *testing.T, e *inputrules.Engine, doc *model.Node, cursor int, text string) (*model.Node, int) {
	t.Helper()

	var (
		stored    model.MarkSet
		hasStored bool
	)
	for _, r := range text {
		rp, err := doc.Resolve(cursor)
		require.NoError(t, err)
		marks := rp.Marks()
		if hasStored {
			marks, hasStored = stored, false
		}
		if rp.Parent().Type.IsCode() {
			marks = nil
		}

		tr := transform.New(doc)
		require.NoError(t, tr.InsertText(string(r), cursor, cursor, marks))
		cursor++
		if res := e.Run(tr, cursor); res != nil {
			cursor = res.Cursor
			stored, hasStored = res.StoredMarks, res.StoreMarks
		}
		doc = tr.Doc
	}
	return doc, cursor
}

func requireDocEq(t *testing.T, want, got *model.Node) {
	t.Helper()
	require.Truef(t, want.Eq(got), "want %s\n got %s", want, got)
}

func TestMarkdownRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		doc        *model.Node
		cursor     int
		input      string
		want       *model.Node
		wantCursor int
	}{
		{"heading level 2", Doc(P()), 1, "## ", Doc(H(2)), 1},
		{"heading keeps following text", Doc(P(T("Title"))), 1, "# ", Doc(H(1, T("Title"))), 1},
		{"seven hashes stay literal", Doc(P()), 1, "####### ", Doc(P(T("####### "))), 9},
		{"same heading stays literal", Doc(H(1)), 1, "# ", Doc(H(1, T("# "))), 3},
		{"heading mid line stays literal", Doc(P(T("a"))), 2, "# ", Doc(P(T("a# "))), 4},
		{"code fence", Doc(P()), 1, "```go ", Doc(Pre("go", "")), 1},
		{"blockquote", Doc(P()), 1, "> ", Doc(Quote(P())), 2},
		{"bullet list", Doc(P()), 1, "- ", Doc(UL(LI(P()))), 3},
		{"ordered list", Doc(P()), 1, "3. ", Doc(OL(3, LI(P()))), 3},
		{
			"ordered list continues",
			Doc(OL(1, LI(P(T("one")))), P()), 10, "2. ",
			Doc(OL(1, LI(P(T("one"))), LI(P()))), 10,
		},
		{
			"ordered list out of sequence starts a new list",
			Doc(OL(1, LI(P(T("one")))), P()), 10, "5. ",
			Doc(OL(1, LI(P(T("one")))), OL(5, LI(P()))), 12,
		},
		{
			"bullet list joins previous",
			Doc(UL(LI(P(T("a")))), P()), 8, "* ",
			Doc(UL(LI(P(T("a"))), LI(P()))), 8,
		},
		{
			"no wrapping in first paragraph of an item",
			Doc(UL(LI(P()))), 3, "> ",
			Doc(UL(LI(P(T("> "))))), 5,
		},
		{"task item", Doc(P()), 1, "[ ] ", Doc(Tasks(Task(false, P()))), 3},
		{"checked task from bullet", Doc(P()), 1, "- [x] ", Doc(Tasks(Task(true, P()))), 3},
		{
			"task splits bullet list",
			Doc(UL(LI(P(T("a"))), LI(P()), LI(P(T("c"))))), 8, "[ ] ",
			Doc(UL(LI(P(T("a")))), Tasks(Task(false, P())), UL(LI(P(T("c"))))), 10,
		},
		{
			"task joins previous task list",
			Doc(Tasks(Task(true, P(T("a")))), P()), 8, "[ ] ",
			Doc(Tasks(Task(true, P(T("a"))), Task(false, P()))), 8,
		},
		{
			"table",
			Doc(P()), 1, "|a|b| ",
			Doc(Table(TR(TH("", T("a")), TH("", T("b"))), TR(TD(""), TD("")))), 11,
		},
		{"table needs trailing space", Doc(P()), 1, "|a|b|", Doc(P(T("|a|b|"))), 6},
		{"horizontal rule", Doc(P()), 1, "---", Doc(HR(), P()), 2},
		{"strong", Doc(P()), 1, "a **b** c", Doc(P(T("a "), T("b", Strong()), T(" c"))), 6},
		{"em", Doc(P()), 1, "*a*", Doc(P(T("a", Em()))), 2},
		{"em underscore", Doc(P()), 1, "x _a_", Doc(P(T("x "), T("a", Em()))), 4},
		{"underline", Doc(P()), 1, "__u__", Doc(P(T("u", Underline()))), 2},
		{"strikethrough", Doc(P()), 1, "~~s~~", Doc(P(T("s", Strike()))), 2},
		{"highlight", Doc(P()), 1, "==h==", Doc(P(T("h", Highlight()))), 2},
		{"code", Doc(P()), 1, "`x`", Doc(P(T("x", Code()))), 2},
		{
			"strong over code is rejected",
			Doc(P(T("**"), T("x", Code()), T("*"))), 5, "*",
			Doc(P(T("**"), T("x", Code()), T("**"))), 6,
		},
		{
			"link",
			Doc(P()), 1, "[go](https://go.dev)",
			Doc(P(T("go", Link("https://go.dev", "")))), 3,
		},
		{
			"image",
			Doc(P(T("see "))), 5, `![logo](a.png "Logo")`,
			Doc(P(T("see "), Img("a.png", "logo", "Logo"))), 6,
		},
		{"multibyte text", Doc(P()), 1, "é **b**", Doc(P(T("é "), T("b", Strong()))), 4},
		{"no rules in code blocks", Doc(Pre("", "")), 1, "# **x** ", Doc(Pre("", "# **x** ")), 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newEngine(inputrules.MarkdownOptions{})
			got, cursor := typeText(t, e, tt.doc, tt.cursor, tt.input)
			requireDocEq(t, tt.want, got)
			assert.Equal(t, tt.wantCursor, cursor)
			require.NoError(t, model.Validate(got))
		})
	}
}

func TestJoinPolicy(t *testing.T) {
	t.Parallel()

	doc := Doc(OL(1, LI(P(T("one")))), P())
	e := newEngine(inputrules.MarkdownOptions{OrderedJoin: inputrules.JoinNever})
	got, _ := typeText(t, e, doc, 10, "2. ")
	requireDocEq(t, Doc(OL(1, LI(P(T("one")))), OL(2, LI(P()))), got)

	e = newEngine(inputrules.MarkdownOptions{OrderedJoin: inputrules.JoinAlways})
	got, _ = typeText(t, e, doc, 10, "9. ")
	requireDocEq(t, Doc(OL(1, LI(P(T("one"))), LI(P()))), got)

	doc = Doc(UL(LI(P(T("a")))), P())
	e = newEngine(inputrules.MarkdownOptions{BulletJoin: inputrules.JoinNever})
	got, _ = typeText(t, e, doc, 8, "- ")
	requireDocEq(t, Doc(UL(LI(P(T("a")))), UL(LI(P()))), got)
}

func TestStoredMarksEndAtRule(t *testing.T) {
	t.Parallel()

	e := newEngine(inputrules.MarkdownOptions{})
	tr := transform.New(Doc(P(T("**b*"))))
	require.NoError(t, tr.InsertText("*", 5, 5, nil))

	res := e.Run(tr, 6)
	require.NotNil(t, res)
	assert.Equal(t, "strong", res.Rule.Name)
	assert.Equal(t, inputrules.KindInline, res.Rule.Kind)
	assert.True(t, res.StoreMarks)
	assert.Empty(t, res.StoredMarks)
}

func TestRulesDoNotRetrigger(t *testing.T) {
	t.Parallel()

	e := newEngine(inputrules.MarkdownOptions{})
	for _, input := range []string{"# ", "```js ", "> ", "- ", "1. ", "[x] ", "|a| ", "___", "**a**", "`a`", "[a](b)", "![a](b)"} {
		doc, cursor := typeText(t, e, Doc(P()), 1, input)
		assert.Nil(t, e.Run(transform.New(doc), cursor), "input %q fired twice", input)
	}
}

func TestEngineOrder(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`!$`)
	var calls []string
	rule := func(name string, fn func(*inputrules.Context) error) *inputrules.Rule {
		return inputrules.Custom(name, pattern, func(ctx *inputrules.Context, m inputrules.Match) error {
			calls = append(calls, name)
			return fn(ctx)
		})
	}
	insertQuestion := func(ctx *inputrules.Context) error {
		return ctx.Tr.InsertText("?", ctx.Cursor-1, ctx.Cursor, nil)
	}

	e := inputrules.New([]*inputrules.Rule{
		rule("declines", func(*inputrules.Context) error { return nil }),
		rule("fails", func(ctx *inputrules.Context) error {
			if err := insertQuestion(ctx); err != nil {
				return err
			}
			return errors.New("boom")
		}),
		rule("wins", insertQuestion),
		rule("never", insertQuestion),
	}, inputrules.WithLogger(logging.Discard()))
	require.Len(t, e.Rules(), 4)

	tr := transform.New(Doc(P(T("hi!"))))
	res := e.Run(tr, 4)
	require.NotNil(t, res)
	assert.Equal(t, "wins", res.Rule.Name)
	assert.Equal(t, []string{"declines", "fails", "wins"}, calls)
	requireDocEq(t, Doc(P(T("hi?"))), tr.Doc)
	assert.Len(t, tr.Steps, 1)
}

func TestMatchGroups(t *testing.T) {
	t.Parallel()

	var got inputrules.Match
	re := regexp.MustCompile(`(?P<lead>^|\s)@(?P<name>\w+)$`)
	e := inputrules.New([]*inputrules.Rule{
		inputrules.Custom("mention", re, func(_ *inputrules.Context, m inputrules.Match) error {
			got = m
			return nil
		}),
	}, inputrules.WithLogger(logging.Discard()))

	assert.Nil(t, e.Run(transform.New(Doc(P(T("hé @bob")))), 8))
	assert.Equal(t, "bob", got.Group("name"))
	assert.Equal(t, "", got.Group("missing"))
	from, to, ok := got.Range("name")
	require.True(t, ok)
	assert.Equal(t, 5, from)
	assert.Equal(t, 8, to)
	assert.Equal(t, 3, got.From)
	_, _, ok = got.Range("missing")
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "textblock", inputrules.KindTextblockType.String())
	assert.Equal(t, "wrapping", inputrules.KindWrapping.String())
	assert.Equal(t, "inline", inputrules.KindInline.String())
	assert.Equal(t, "custom", inputrules.KindCustom.String())
	assert.Equal(t, "unknown", inputrules.Kind(0).String())
}
