package editor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/config"
	"github.com/yaklabco/gomdedit/pkg/debug"
	"github.com/yaklabco/gomdedit/pkg/editor"
	"github.com/yaklabco/gomdedit/pkg/model"
	. "github.com/yaklabco/gomdedit/pkg/schema/schematest"
)

func newEditor(t *testing.T, cfg *config.Config, opts ...editor.Option) *editor.Editor {
	t.Helper()
	if cfg == nil {
		cfg = config.NewConfig()
	}
	base := []editor.Option{
		editor.WithLogger(logging.Discard()),
		editor.WithConfig(config.NewStatic(cfg)),
	}
	return editor.New(append(base, opts...)...)
}

// fixedClock makes every edit fall inside one undo group.
func fixedClock() editor.Option {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return editor.WithClock(func() time.Time { return now })
}

// steppingClock puts every edit in its own undo group.
func steppingClock() editor.Option {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return editor.WithClock(func() time.Time {
		now = now.Add(time.Second)
		return now
	})
}

// typeText types text one character at a time at the current selection.
func typeText(t *testing.T, e *editor.Editor, text string) {
	t.Helper()
	for _, r := range text {
		_, _, err := e.ApplyUserEdit(string(r), e.Selection())
		require.NoError(t, err)
	}
}

func requireDoc(t *testing.T, want *model.Node, e *editor.Editor) {
	t.Helper()
	require.Truef(t, want.Eq(e.Doc()), "want %s\n got %s", want, e.Doc())
	require.NoError(t, model.Validate(e.Doc()))
}

func TestCreateDocument(t *testing.T) {
	t.Parallel()

	e := newEditor(t, nil)
	doc := e.CreateDocument("")
	assert.True(t, doc.Eq(Doc(P())))
	assert.Equal(t, "", e.GetText())
	assert.Equal(t, editor.Cursor(1), e.Selection())

	doc = e.CreateDocument("# Title\n\nbody")
	assert.True(t, doc.Eq(Doc(H(1, T("Title")), P(T("body")))), doc.String())
	assert.Equal(t, "# Title\n\nbody", e.GetText())
	assert.Same(t, doc, e.Doc())
}

func TestApplyUserEdit(t *testing.T) {
	t.Parallel()

	e := newEditor(t, nil)
	doc, changed, err := e.ApplyUserEdit("## ", editor.Cursor(1))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, doc.Eq(Doc(H(2))), doc.String())
	assert.Equal(t, editor.Cursor(1), e.Selection())

	_, _, err = e.ApplyUserEdit("Hi", e.Selection())
	require.NoError(t, err)
	assert.Equal(t, "## Hi", e.GetText())

	doc, changed, err = e.ApplyUserEdit("", editor.Cursor(2))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Same(t, e.Doc(), doc)
}

func TestApplyUserEditReplacesSelection(t *testing.T) {
	t.Parallel()

	e := newEditor(t, nil)
	e.Load(Doc(P(T("abc")), P(T("def"))))
	_, changed, err := e.ApplyUserEdit("X", editor.Range(2, 7))
	require.NoError(t, err)
	assert.True(t, changed)
	requireDoc(t, Doc(P(T("aXef"))), e)
	assert.Equal(t, editor.Cursor(3), e.Selection())
}

func TestApplyUserEditRejectsBadSelection(t *testing.T) {
	t.Parallel()

	e := newEditor(t, nil)
	e.Load(Doc(P(T("a")), P(T("b"))))
	before := e.Doc()

	doc, changed, err := e.ApplyUserEdit("x", editor.Cursor(3))
	require.Error(t, err)
	assert.False(t, changed)
	assert.Same(t, before, doc)

	_, _, err = e.ApplyUserEdit("x", editor.Cursor(99))
	require.ErrorIs(t, err, model.ErrPositionOutOfRange)
	assert.Same(t, before, e.Doc())
}

func TestOrderedListContinues(t *testing.T) {
	t.Parallel()

	e := newEditor(t, nil)
	typeText(t, e, "1. one\n\n2. ")
	requireDoc(t, Doc(OL(1, LI(P(T("one"))), LI(P()))), e)
	assert.Equal(t, editor.Cursor(10), e.Selection())

	typeText(t, e, "two")
	assert.Equal(t, "1. one\n2. two", e.GetText())
}

func TestInputRulesFollowConfig(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	e := newEditor(t, nil, editor.WithConfig(config.SourceFunc(func() *config.Config { return cfg })))

	cfg.InputRules = false
	typeText(t, e, "# ")
	requireDoc(t, Doc(P(T("# "))), e)

	cfg.InputRules = true
	e.Load(Doc(P()))
	typeText(t, e, "# ")
	requireDoc(t, Doc(H(1)), e)
}

func TestStoredMarksAfterInlineRule(t *testing.T) {
	t.Parallel()

	e := newEditor(t, nil)
	typeText(t, e, "**b** c")
	requireDoc(t, Doc(P(T("b", Strong()), T(" c"))), e)
}

func TestUndoRedo(t *testing.T) {
	t.Parallel()

	e := newEditor(t, nil, fixedClock())
	typeText(t, e, "## ")
	requireDoc(t, Doc(H(2)), e)
	assert.Equal(t, 1, e.History().UndoDepth())

	doc, err := e.Undo()
	require.NoError(t, err)
	assert.True(t, doc.Eq(Doc(P())))
	assert.Equal(t, editor.Cursor(1), e.Selection())
	assert.True(t, e.History().CanRedo())

	doc, err = e.Redo()
	require.NoError(t, err)
	assert.True(t, doc.Eq(Doc(H(2))))
	assert.False(t, e.History().CanRedo())

	doc, err = e.Redo()
	require.NoError(t, err)
	assert.Same(t, e.Doc(), doc)
}

func TestUndoRestoresEachEdit(t *testing.T) {
	t.Parallel()

	e := newEditor(t, nil, steppingClock())
	typeText(t, e, "## ")
	requireDoc(t, Doc(H(2)), e)
	assert.Equal(t, 3, e.History().UndoDepth())

	_, err := e.Undo()
	require.NoError(t, err)
	requireDoc(t, Doc(P(T("##"))), e)
	_, err = e.Undo()
	require.NoError(t, err)
	requireDoc(t, Doc(P(T("#"))), e)

	typeText(t, e, "x")
	assert.False(t, e.History().CanRedo())
	requireDoc(t, Doc(P(T("#x"))), e)
}

func TestUndoEmptyIsNoop(t *testing.T) {
	t.Parallel()

	e := newEditor(t, nil)
	before := e.Doc()
	doc, err := e.Undo()
	require.NoError(t, err)
	assert.Same(t, before, doc)
}

func TestHistoryDepth(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.History.Depth = 2
	cfg.History.GroupDelay = 0
	e := newEditor(t, cfg)
	typeText(t, e, "abc")
	assert.Equal(t, 2, e.History().UndoDepth())

	for range 3 {
		_, err := e.Undo()
		require.NoError(t, err)
	}
	requireDoc(t, Doc(P(T("a"))), e)
}

func TestHistoryDisabled(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.History.Enabled = false
	e := newEditor(t, cfg)
	typeText(t, e, "a")
	assert.False(t, e.History().CanUndo())

	doc, err := e.Undo()
	require.NoError(t, err)
	assert.True(t, doc.Eq(Doc(P(T("a")))))
}

func TestOnDocumentChanged(t *testing.T) {
	t.Parallel()

	var texts []string
	e := newEditor(t, nil, steppingClock(), editor.WithOnDocumentChanged(func(text string) {
		texts = append(texts, text)
	}))
	typeText(t, e, "ab")
	require.NoError(t, e.SetSelection(editor.Cursor(1)))
	_, err := e.Undo()
	require.NoError(t, err)
	_, err = e.Redo()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "ab", "a", "ab"}, texts)

	_, err = e.SetExternalText("other")
	require.NoError(t, err)
	assert.Len(t, texts, 4)
}

func TestAutosaveOff(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Autosave = false
	calls := 0
	e := newEditor(t, cfg)
	e.OnDocumentChanged(func(string) { calls++ })
	typeText(t, e, "a")
	assert.Zero(t, calls)
}

func TestSetExternalText(t *testing.T) {
	t.Parallel()

	e := newEditor(t, nil)
	typeText(t, e, "abc")
	require.True(t, e.History().CanUndo())

	doc, err := e.SetExternalText("abc")
	require.NoError(t, err)
	assert.Same(t, e.Doc(), doc)
	assert.True(t, e.History().CanUndo())

	doc, err = e.SetExternalText("# New")
	require.NoError(t, err)
	assert.True(t, doc.Eq(Doc(H(1, T("New")))))
	assert.False(t, e.History().CanUndo())
	assert.Equal(t, editor.Cursor(4), e.Selection())
}

func TestPluginsAppendSteps(t *testing.T) {
	t.Parallel()

	bang := editor.NewPlugin("bang", func(tr *editor.Transaction, _ *editor.State) error {
		if tr.MetaString(editor.MetaOrigin) != editor.OriginUser || !tr.DocChanged() {
			return nil
		}
		end := tr.Doc.Content.Size() - 1
		return tr.InsertText("!", end, end, nil)
	})
	e := newEditor(t, nil, editor.WithPlugins(bang))
	typeText(t, e, "a")
	requireDoc(t, Doc(P(T("a!"))), e)
	assert.Equal(t, editor.Cursor(2), e.Selection())

	_, err := e.Undo()
	require.NoError(t, err)
	requireDoc(t, Doc(P()), e)
}

func TestPluginVeto(t *testing.T) {
	t.Parallel()

	rec := debug.NewRecorder(0)
	readonly := editor.Veto("readonly", func(*editor.Transaction, *editor.State) bool { return true })
	e := newEditor(t, nil, editor.WithPlugins(readonly), editor.WithDebugger(rec))
	before := e.Doc()

	doc, changed, err := e.ApplyUserEdit("a", editor.Cursor(1))
	require.ErrorIs(t, err, editor.ErrVetoed)
	assert.False(t, changed)
	assert.Same(t, before, doc)
	assert.False(t, e.History().CanUndo())
	require.Len(t, rec.Rejected(), 1)
	assert.Equal(t, editor.InputInsertText, rec.Rejected()[0].InputType)

	require.NoError(t, e.SetSelection(editor.Cursor(1)))
	assert.Len(t, rec.Applied(), 1)
}

func TestReentrantDispatchFromPlugin(t *testing.T) {
	t.Parallel()

	var (
		e         *editor.Editor
		nestedErr error
	)
	nested := editor.NewPlugin("nested", func(*editor.Transaction, *editor.State) error {
		_, _, nestedErr = e.ApplyUserEdit("x", editor.Cursor(1))
		return nil
	})
	e = newEditor(t, nil, editor.WithPlugins(nested))

	doc, changed, err := e.ApplyUserEdit("a", editor.Cursor(1))
	require.ErrorIs(t, err, editor.ErrReentrantDispatch)
	require.ErrorIs(t, nestedErr, editor.ErrReentrantDispatch)
	assert.False(t, changed)
	assert.True(t, doc.Eq(Doc(P())))
}

func TestReentrantDispatchFromCallback(t *testing.T) {
	t.Parallel()

	var (
		e         *editor.Editor
		nestedErr error
	)
	e = newEditor(t, nil, editor.WithOnDocumentChanged(func(string) {
		_, _, nestedErr = e.ApplyUserEdit("x", e.Selection())
	}))

	_, changed, err := e.ApplyUserEdit("a", editor.Cursor(1))
	require.NoError(t, err)
	assert.True(t, changed)
	require.ErrorIs(t, nestedErr, editor.ErrReentrantDispatch)
	requireDoc(t, Doc(P(T("a"))), e)
}

func TestDebuggerSeesTransactions(t *testing.T) {
	t.Parallel()

	rec := debug.NewRecorder(0)
	e := newEditor(t, nil, editor.WithDebugger(rec))
	typeText(t, e, "# ")

	applied := rec.Applied()
	require.Len(t, applied, 2)
	assert.Equal(t, editor.OriginUser, applied[1].Origin)
	assert.Len(t, applied[1].Steps, 3)
	assert.Equal(t, 2, applied[1].DocSize)
}
