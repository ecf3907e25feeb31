package editor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdedit/pkg/editor"
	"github.com/yaklabco/gomdedit/pkg/model"
	"github.com/yaklabco/gomdedit/pkg/schema"
	. "github.com/yaklabco/gomdedit/pkg/schema/schematest"
)

func TestNewline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		doc        *model.Node
		cursor     int
		want       *model.Node
		wantCursor int
	}{
		{"split paragraph", Doc(P(T("abcd"))), 3, Doc(P(T("ab")), P(T("cd"))), 5},
		{"heading end continues as paragraph", Doc(H(1, T("ab"))), 3, Doc(H(1, T("ab")), P()), 5},
		{"heading middle stays heading", Doc(H(2, T("ab"))), 2, Doc(H(2, T("a")), H(2, T("b"))), 4},
		{"code block", Doc(Pre("", "ab")), 2, Doc(Pre("", "a\nb")), 3},
		{"split list item", Doc(UL(LI(P(T("ab"))))), 4, Doc(UL(LI(P(T("a"))), LI(P(T("b"))))), 8},
		{
			"new task is unchecked",
			Doc(Tasks(Task(true, P(T("ab"))))), 5,
			Doc(Tasks(Task(true, P(T("ab"))), Task(false, P()))), 9,
		},
		{
			"empty last item leaves the list",
			Doc(UL(LI(P(T("a"))), LI(P()))), 8,
			Doc(UL(LI(P(T("a")))), P()), 8,
		},
		{
			"empty middle item splits the list",
			Doc(OL(1, LI(P(T("a"))), LI(P()), LI(P(T("c"))))), 8,
			Doc(OL(1, LI(P(T("a")))), P(), OL(3, LI(P(T("c"))))), 8,
		},
		{
			"empty nested item moves out one level",
			Doc(UL(LI(P(T("a")), UL(LI(P()))))), 8,
			Doc(UL(LI(P(T("a"))), LI(P()))), 8,
		},
		{
			"empty paragraph leaves the quote",
			Doc(Quote(P(T("a")), P())), 5,
			Doc(Quote(P(T("a"))), P()), 6,
		},
		{
			"table cell gets a hard break",
			Doc(Table(TR(TH("", T("a"))), TR(TD("", T("b"))))), 4,
			Doc(Table(TR(TH("", T("a"), BR())), TR(TD("", T("b"))))), 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newEditor(t, nil)
			e.Load(tt.doc)
			_, changed, err := e.ApplyUserEdit("\n", editor.Cursor(tt.cursor))
			require.NoError(t, err)
			assert.True(t, changed)
			requireDoc(t, tt.want, e)
			assert.Equal(t, editor.Cursor(tt.wantCursor), e.Selection())

			_, err = e.Undo()
			require.NoError(t, err)
			requireDoc(t, tt.doc, e)
		})
	}
}

func TestDeleteBackward(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		doc        *model.Node
		sel        editor.Selection
		want       *model.Node
		wantCursor int
	}{
		{"character", Doc(P(T("ab"))), editor.Cursor(3), Doc(P(T("a"))), 2},
		{"selection", Doc(P(T("abc"))), editor.Range(3, 2), Doc(P(T("ac"))), 2},
		{"join paragraphs", Doc(P(T("a")), P(T("b"))), editor.Cursor(4), Doc(P(T("ab"))), 2},
		{"heading becomes paragraph", Doc(H(1, T("a"))), editor.Cursor(1), Doc(P(T("a"))), 1},
		{"list item is lifted", Doc(UL(LI(P(T("a"))))), editor.Cursor(3), Doc(P(T("a"))), 1},
		{"quoted paragraph is lifted", Doc(Quote(P(T("a")))), editor.Cursor(2), Doc(P(T("a"))), 1},
		{"rule before is removed", Doc(HR(), P(T("a"))), editor.Cursor(2), Doc(P(T("a"))), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newEditor(t, nil)
			e.Load(tt.doc)
			_, changed, err := e.DeleteBackward(tt.sel)
			require.NoError(t, err)
			assert.True(t, changed)
			requireDoc(t, tt.want, e)
			assert.Equal(t, editor.Cursor(tt.wantCursor), e.Selection())
		})
	}
}

func TestDeleteBackwardAtDocStart(t *testing.T) {
	t.Parallel()

	e := newEditor(t, nil)
	e.Load(Doc(P(T("a"))))
	_, changed, err := e.DeleteBackward(editor.Cursor(1))
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestToggleTask(t *testing.T) {
	t.Parallel()

	e := newEditor(t, nil, steppingClock())
	e.Load(Doc(Tasks(Task(false, P(T("x"))))))
	require.NoError(t, e.ToggleTask(3))
	requireDoc(t, Doc(Tasks(Task(true, P(T("x"))))), e)
	assert.Contains(t, e.GetText(), "[x] x")

	require.NoError(t, e.ToggleTask(1))
	requireDoc(t, Doc(Tasks(Task(false, P(T("x"))))), e)

	_, err := e.Undo()
	require.NoError(t, err)
	requireDoc(t, Doc(Tasks(Task(true, P(T("x"))))), e)

	e.Load(Doc(P(T("x"))))
	var violation *model.SchemaViolation
	require.ErrorAs(t, e.ToggleTask(1), &violation)
}

func TestToggleMark(t *testing.T) {
	t.Parallel()

	e := newEditor(t, nil)
	e.Load(Doc(P(T("abc"))))
	require.NoError(t, e.SetSelection(editor.Range(1, 3)))

	require.NoError(t, e.ToggleMark(schema.Strong, nil))
	requireDoc(t, Doc(P(T("ab", Strong()), T("c"))), e)
	assert.Equal(t, editor.Range(1, 3), e.Selection())

	var violation *model.SchemaViolation
	require.ErrorAs(t, e.ToggleMark(schema.Code, nil), &violation)

	require.NoError(t, e.ToggleMark(schema.Strong, nil))
	requireDoc(t, Doc(P(T("abc"))), e)

	require.ErrorIs(t, e.ToggleMark("blink", nil), editor.ErrUnknownType)
}

func TestToggleMarkStoresMarks(t *testing.T) {
	t.Parallel()

	e := newEditor(t, nil)
	e.Load(Doc(P(T("abc"))))
	require.NoError(t, e.SetSelection(editor.Cursor(4)))
	require.NoError(t, e.ToggleMark(schema.Em, nil))

	marks, ok := e.State().StoredMarks()
	require.True(t, ok)
	assert.True(t, marks.Has(S.Mark(schema.Em)))

	typeText(t, e, "de")
	requireDoc(t, Doc(P(T("abc"), T("de", Em()))), e)
}

func TestSetBlockType(t *testing.T) {
	t.Parallel()

	e := newEditor(t, nil)
	e.Load(Doc(P(T("a")), P(T("b"))))
	require.NoError(t, e.SetSelection(editor.Range(1, 4)))
	require.NoError(t, e.SetBlockType(schema.Heading, model.Attrs{schema.AttrLevel: 2}))
	requireDoc(t, Doc(H(2, T("a")), H(2, T("b"))), e)
	assert.Equal(t, "## a\n\n## b", e.GetText())

	require.NoError(t, e.SetBlockType(schema.CodeBlock, nil))
	requireDoc(t, Doc(Pre("", "a"), Pre("", "b")), e)

	require.ErrorIs(t, e.SetBlockType("banner", nil), editor.ErrUnknownType)
}

func TestWrapIn(t *testing.T) {
	t.Parallel()

	e := newEditor(t, nil)
	e.Load(Doc(P(T("a")), P(T("b"))))
	require.NoError(t, e.SetSelection(editor.Range(1, 4)))
	require.NoError(t, e.WrapIn(schema.BulletList, nil))
	requireDoc(t, Doc(UL(LI(P(T("a"))), LI(P(T("b"))))), e)
	assert.Equal(t, editor.Range(3, 8), e.Selection())

	e.Load(Doc(P(T("a"))))
	require.NoError(t, e.WrapIn(schema.Blockquote, nil))
	requireDoc(t, Doc(Quote(P(T("a")))), e)
	assert.Equal(t, editor.Cursor(2), e.Selection())

	e.Load(Doc(H(1, T("a"))))
	require.Error(t, e.WrapIn(schema.OrderedList, nil))
	requireDoc(t, Doc(H(1, T("a"))), e)
}
