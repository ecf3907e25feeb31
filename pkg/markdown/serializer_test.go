package markdown_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/markdown"
	"github.com/yaklabco/gomdedit/pkg/model"
	"github.com/yaklabco/gomdedit/pkg/schema"
	. "github.com/yaklabco/gomdedit/pkg/schema/schematest"
)

func newSerializer() *markdown.Serializer {
	return markdown.NewSerializer(markdown.WithLogger(logging.Discard()))
}

func TestSerialize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  *model.Node
		want string
	}{
		{"empty document", schema.EmptyDoc(S), ""},
		{"heading and paragraph", Doc(H(2, T("Title")), P(T("text"))), "## Title\n\ntext"},
		{"bullet list", Doc(UL(LI(P(T("a"))), LI(P(T("b"))))), "- a\n- b"},
		{"adjacent bullet lists alternate markers", Doc(UL(LI(P(T("a")))), UL(LI(P(T("b"))))), "- a\n\n* b"},
		{"ordered labels padded", Doc(OL(9, LI(P(T("a"))), LI(P(T("b"))), LI(P(T("c"))))), " 9. a\n10. b\n11. c"},
		{"task list", Doc(Tasks(Task(false, P(T("todo"))), Task(true, P(T("done"))))), "- [ ] todo\n- [x] done"},
		{"nested list", Doc(UL(LI(P(T("a")), UL(LI(P(T("b"))))), LI(P(T("c"))))), "- a\n  - b\n- c"},
		{"blockquote", Doc(Quote(P(T("a")), P(T("b")))), "> a\n>\n> b"},
		{"quoted list", Doc(Quote(UL(LI(P(T("a"))), LI(P(T("b")))))), "> - a\n> - b"},
		{"code block", Doc(Pre("go", "x := 1")), "```go\nx := 1\n```"},
		{"code block with fence inside", Doc(Pre("", "```\nx\n```")), "````\n```\nx\n```\n````"},
		{"rule", Doc(P(T("a")), HR()), "a\n\n---"},
		{"marks", Doc(P(T("bold", Strong()), T(" and "), T("it", Em()))), "**bold** and *it*"},
		{"nested marks", Doc(P(T("a", Strong()), T("b", Em(), Strong()))), "**a*b***"},
		{"whitespace moves outside marks", Doc(P(T("a"), T(" b ", Strong()), T("c"))), "a **b** c"},
		{"strike underline highlight", Doc(P(T("s", Strike()), T(" "), T("u", Underline()), T(" "), T("h", Highlight()))), "~~s~~ __u__ ==h=="},
		{"code span", Doc(P(T("a`b", Code()))), "``a`b``"},
		{"link", Doc(P(T("go", Link("https://go.dev", "")))), "[go](https://go.dev)"},
		{"link with title and spaces", Doc(P(T("x", Link("a b", "T")))), `[x](<a b> "T")`},
		{"image", Doc(P(Img("a.png", "alt", "t"))), `![alt](a.png "t")`},
		{"hard break", Doc(P(T("a"), BR(), T("b"))), "a\\\nb"},
		{"trailing hard break dropped", Doc(P(T("a"), BR())), "a"},
		{"table", Doc(Table(
			TR(TH("center", T("a")), TH("", T("b"))),
			TR(TD("center", T("1")), TD("", T("x|y"))),
		)), "| a | b |\n| :---: | --- |\n| 1 | x\\|y |"},
		{"escapes inline syntax", Doc(P(T("*not* [x] _y_"))), `\*not\* \[x\] \_y\_`},
		{"escapes heading start", Doc(P(T("# no"))), `\# no`},
		{"escapes ordered start", Doc(P(T("1. no"))), `1\. no`},
		{"escapes highlight runs", Doc(P(T("a == b"))), `a \=\= b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := newSerializer().SerializeStrict(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSerialize_FallsBackToPlainText(t *testing.T) {
	t.Parallel()

	aside := func(b *model.Builder) {
		b.DefineNodeType("aside", "inline*", nil, model.InGroup(schema.GroupBlock))
	}
	s, err := schema.New(aside)
	require.NoError(t, err)

	note, err := s.Create("aside", nil, s.Text("note"))
	require.NoError(t, err)
	para, err := s.Create(schema.Paragraph, nil, s.Text("x"))
	require.NoError(t, err)
	doc, err := s.Create(schema.Doc, nil, note, para)
	require.NoError(t, err)

	ser := newSerializer()
	_, err = ser.SerializeStrict(doc)
	require.ErrorIs(t, err, markdown.ErrSerializeFailure)
	assert.Equal(t, "note\nx", ser.Serialize(doc))
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	doc := Doc(H(1, T("Title")), P(T("one", Strong())), UL(LI(P(T("two")))))
	assert.Equal(t, "Title\none\ntwo", markdown.PlainText(doc))
	assert.Empty(t, markdown.PlainText(schema.EmptyDoc(S)))
}

// Documents parsed from the modeled subset survive serialize then parse.
func TestRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"# One\n\n## Two *em* **strong**\n\ntext",
		"a\nb\\\nc",
		"> quote\n>\n> - a\n> - b",
		"- a\n  - b\n\n    para\n- c",
		"- a\n\n* b",
		"1. one\n2. two\n\n1) three",
		"- [ ] todo\n- [x] done\n- plain",
		"````\n```\ninner\n```\n````",
		"```js\n  indented\n```",
		"***both*** and ~~gone~~ ==hi== __u__",
		"`a``b` and ``` `` ```",
		`[go](https://go.dev "Go site") and [x](<a b>)`,
		`see ![logo](logo.png "Logo") here`,
		`\*literal\* \# and 1\. and a \| b`,
		"| a | b | c |\n|:-|:-:|-:|\n| **1** | `2\\|3` | [x](y) |",
		"---\n\n- a\n\n  ```\n  code\n  ```",
		"> ```\n> q\n> ```",
		"*a **b** c*",
		"**a** *b*",
		"[**a**](u) x",
	}

	p := newParser()
	ser := newSerializer()
	for _, src := range inputs {
		t.Run(src, func(t *testing.T) {
			t.Parallel()

			doc, err := p.ParseStrict(src)
			require.NoError(t, err)

			out, err := ser.SerializeStrict(doc)
			require.NoError(t, err)

			again, err := p.ParseStrict(out)
			require.NoError(t, err)
			require.Truef(t, doc.Eq(again), "serialized as %q\nwant %s\n got %s", out, doc, again)
		})
	}
}
