package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdedit/pkg/model"
	. "github.com/yaklabco/gomdedit/pkg/schema/schematest"
)

func TestNodeSize(t *testing.T) {
	t.Parallel()

	doc := Doc(P(T("héllo")), HR(), UL(LI(P(T("a")))))

	assert.Equal(t, 5, doc.Child(0).Content.Size())
	assert.Equal(t, 7, doc.Child(0).NodeSize())
	assert.Equal(t, 1, doc.Child(1).NodeSize())
	// ul(li(p("a"))) = 1 + 2 + 2 + 2
	assert.Equal(t, 7, doc.Child(2).NodeSize())
	assert.Equal(t, 15, doc.Content.Size())
}

func TestFragmentNormalizes(t *testing.T) {
	t.Parallel()

	para := P(T("ab"), T(""), T("cd"), T("ef", Strong()))
	require.Equal(t, 2, para.ChildCount())
	assert.Equal(t, "abcd", para.Child(0).Text)
	assert.Equal(t, "ef", para.Child(1).Text)
}

func TestFragmentCut(t *testing.T) {
	t.Parallel()

	para := P(T("hello"), T("world", Em()))
	cut := para.Content.Cut(3, 7)

	require.Equal(t, 2, cut.ChildCount())
	assert.Equal(t, "lo", cut.Child(0).Text)
	assert.Equal(t, "wo", cut.Child(1).Text)
	assert.True(t, cut.Child(1).Marks.Has(S.Mark("em")))
}

func TestResolve(t *testing.T) {
	t.Parallel()

	doc := Doc(P(T("ab")), Quote(P(T("cd"))))

	tests := []struct {
		name   string
		pos    int
		depth  int
		parent string
		offset int
	}{
		{name: "doc start", pos: 0, depth: 0, parent: "doc", offset: 0},
		{name: "paragraph start", pos: 1, depth: 1, parent: "paragraph", offset: 0},
		{name: "inside text", pos: 2, depth: 1, parent: "paragraph", offset: 1},
		{name: "between blocks", pos: 4, depth: 0, parent: "doc", offset: 4},
		{name: "inside quote", pos: 5, depth: 1, parent: "blockquote", offset: 0},
		{name: "quoted text", pos: 7, depth: 2, parent: "paragraph", offset: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rp, err := doc.Resolve(tt.pos)
			require.NoError(t, err)
			assert.Equal(t, tt.depth, rp.Depth)
			assert.Equal(t, tt.parent, rp.Parent().Type.Name)
			assert.Equal(t, tt.offset, rp.ParentOffset)
		})
	}

	rp, err := doc.Resolve(7)
	require.NoError(t, err)
	assert.Equal(t, 6, rp.Start(2))
	assert.Equal(t, 8, rp.End(2))
	assert.Equal(t, 5, rp.Before(2))
	assert.Equal(t, 4, rp.Before(1))
	assert.Equal(t, 10, rp.After(1))
}

func TestResolveOutOfRange(t *testing.T) {
	t.Parallel()

	doc := Doc(P(T("ab")))
	_, err := doc.Resolve(5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrPositionOutOfRange))

	var posErr *model.PositionError
	require.ErrorAs(t, err, &posErr)
	assert.Equal(t, 4, posErr.Size)
}

func TestReplace(t *testing.T) {
	t.Parallel()

	doc := Doc(P(T("hello")), P(T("world")))

	t.Run("insert text", func(t *testing.T) {
		t.Parallel()

		out, err := doc.ReplaceWith(3, 3, T("XY"))
		require.NoError(t, err)
		assert.True(t, out.Eq(Doc(P(T("heXYllo")), P(T("world")))))
		assert.True(t, doc.Eq(Doc(P(T("hello")), P(T("world")))), "input must not change")
	})

	t.Run("replace blocks", func(t *testing.T) {
		t.Parallel()

		out, err := doc.ReplaceWith(0, 7, H(2, T("title")))
		require.NoError(t, err)
		assert.True(t, out.Eq(Doc(H(2, T("title")), P(T("world")))))
	})

	t.Run("cross parent rejected", func(t *testing.T) {
		t.Parallel()

		_, err := doc.ReplaceWith(3, 10)
		var violation *model.SchemaViolation
		require.ErrorAs(t, err, &violation)
	})

	t.Run("empty doc rejected", func(t *testing.T) {
		t.Parallel()

		_, err := doc.ReplaceWith(0, doc.Content.Size())
		var violation *model.SchemaViolation
		require.ErrorAs(t, err, &violation)
		assert.Equal(t, "doc", violation.Path)
	})
}

func TestMarkExclusion(t *testing.T) {
	t.Parallel()

	code := Code()
	set, ok := Strong().AddToSet(model.MarkSet{code})
	assert.False(t, ok)
	assert.Equal(t, model.MarkSet{code}, set)

	set, ok = Link("https://x", "").AddToSet(model.MarkSet{code})
	require.True(t, ok)
	require.Len(t, set, 2)
	assert.Equal(t, "link", set[0].Type.Name, "marks are kept in rank order")

	set, ok = Em().AddToSet(model.MarkSet{Strong()})
	require.True(t, ok)
	assert.Equal(t, "em", set[0].Type.Name)
	assert.Equal(t, "strong", set[1].Type.Name)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, model.Validate(Doc(P(T("x", Strong(), Em())))))

	bad := &model.Node{
		Type:  S.Node("heading"),
		Attrs: model.Attrs{"level": 9},
	}
	doc := Doc(P()).Copy(model.NewFragment(bad))
	err := model.Validate(doc)
	var violation *model.SchemaViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "doc/0:heading", violation.Path)

	marked := Doc(P()).Copy(model.NewFragment(Pre("", "").Copy(model.NewFragment(T("x", Strong())))))
	require.Error(t, model.Validate(marked), "code blocks forbid marks")
}

func TestCreateRejectsOutOfDomain(t *testing.T) {
	t.Parallel()

	_, err := S.Create("heading", model.Attrs{"level": 7})
	require.Error(t, err)

	_, err = S.Create("list_item", nil)
	require.Error(t, err, "list_item needs a paragraph")
}

func TestTextBetween(t *testing.T) {
	t.Parallel()

	doc := Doc(P(T("one")), UL(LI(P(T("two")))), P(T("a"), BR(), T("b")))
	text := doc.TextBetween(0, doc.Content.Size(), "\n", func(n *model.Node) string {
		if n.Type.Name == "hard_break" {
			return "\n"
		}
		return ""
	})
	assert.Equal(t, "one\ntwo\na\nb", text)
}

func TestNodeAt(t *testing.T) {
	t.Parallel()

	doc := Doc(P(T("ab")), HR())
	assert.Equal(t, "paragraph", doc.NodeAt(0).Type.Name)
	assert.Equal(t, "horizontal_rule", doc.NodeAt(4).Type.Name)
	assert.Equal(t, "ab", doc.NodeAt(1).Text)
	assert.Nil(t, doc.NodeAt(5))
}
