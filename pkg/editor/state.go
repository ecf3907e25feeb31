package editor

import (
	"time"

	"github.com/yaklabco/gomdedit/pkg/model"
	"github.com/yaklabco/gomdedit/pkg/transform"
)

// Meta keys understood by the editor.
const (
	// MetaAddToHistory holds a bool; false keeps the transaction out of
	// the undo history.
	MetaAddToHistory = "addToHistory"

	// MetaInputType names the kind of input that produced the
	// transaction, for example InputInsertText.
	MetaInputType = "inputType"

	// MetaOrigin names the component that built the transaction.
	MetaOrigin = "origin"
)

// Input types recorded under MetaInputType.
const (
	InputInsertText    = "insertText"
	InputDelete        = "deleteContent"
	InputInsertNewline = "insertParagraph"
	InputFormat        = "format"
	InputHistoryUndo   = "historyUndo"
	InputHistoryRedo   = "historyRedo"
)

// Origins recorded under MetaOrigin.
const (
	OriginUser    = "user"
	OriginHistory = "history"
	OriginCommand = "command"
)

// State is one immutable editor revision.
type State struct {
	Doc       *model.Node
	Selection Selection

	storedMarks model.MarkSet
	storeMarks  bool
}

// NewState creates a state for doc with the cursor at the start of its
// first textblock.
func NewState(doc *model.Node) *State {
	return &State{Doc: doc, Selection: Cursor(textPosNear(doc, 0))}
}

// StoredMarks returns the marks the next typed text receives, if set.
func (s *State) StoredMarks() (model.MarkSet, bool) {
	return s.storedMarks, s.storeMarks
}

// Tr starts a transaction from this state.
func (s *State) Tr(now time.Time) *Transaction {
	return &Transaction{
		Transform:       transform.New(s.Doc),
		SelectionBefore: s.Selection,
		Time:            now,
		meta:            map[string]any{},
	}
}

// Apply returns the state tr leads to.
func (s *State) Apply(tr *Transaction) *State {
	sel := tr.selection
	if !tr.selectionSet {
		sel = tr.SelectionBefore.Map(tr.Mapping)
	}
	next := &State{Doc: tr.Doc, Selection: sel.near(tr.Doc)}
	switch {
	case tr.storeMarks:
		next.storedMarks, next.storeMarks = tr.storedMarks, true
	case !tr.DocChanged() && !tr.selectionSet:
		next.storedMarks, next.storeMarks = s.storedMarks, s.storeMarks
	}
	return next
}

// Transaction is a Transform plus the selection and metadata the editor
// needs to apply it.
type Transaction struct {
	*transform.Transform

	// SelectionBefore is the selection the transaction started from.
	SelectionBefore Selection

	// Time is when the transaction was created.
	Time time.Time

	selection    Selection
	selectionSet bool
	storedMarks  model.MarkSet
	storeMarks   bool
	meta         map[string]any
}

// Selection returns the selection after the transaction: the one set with
// SetSelection, or the starting selection mapped through the steps.
func (tr *Transaction) Selection() Selection {
	if tr.selectionSet {
		return tr.selection
	}
	return tr.SelectionBefore.Map(tr.Mapping)
}

// SetSelection sets the selection after the transaction.
func (tr *Transaction) SetSelection(sel Selection) *Transaction {
	tr.selection, tr.selectionSet = sel, true
	return tr
}

// SetStoredMarks sets the marks the next typed text receives.
func (tr *Transaction) SetStoredMarks(marks model.MarkSet) *Transaction {
	tr.storedMarks, tr.storeMarks = marks, true
	return tr
}

// SetMeta attaches a metadata value.
func (tr *Transaction) SetMeta(key string, value any) *Transaction {
	tr.meta[key] = value
	return tr
}

// Meta returns a metadata value, or nil.
func (tr *Transaction) Meta(key string) any { return tr.meta[key] }

// MetaString returns a string metadata value, or "".
func (tr *Transaction) MetaString(key string) string {
	s, _ := tr.meta[key].(string)
	return s
}

// addToHistory reports whether the transaction belongs in the undo
// history. It does unless MetaAddToHistory is false.
func (tr *Transaction) addToHistory() bool {
	v, ok := tr.meta[MetaAddToHistory].(bool)
	return !ok || v
}
