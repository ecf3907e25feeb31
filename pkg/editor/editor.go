// Package editor is the session façade over a Markdown document.
//
// An Editor owns the current State. Every change goes through one dispatch
// pipeline: plugins filter the transaction in registration order, the
// transaction is applied, recorded in the undo history and finally
// reported to the document-changed callback. Dispatch is not reentrant;
// dispatching from a plugin or from the callback fails with
// ErrReentrantDispatch.
//
// An Editor is not safe for concurrent use. Documents it hands out are
// immutable and may be read from any goroutine.
package editor

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/config"
	"github.com/yaklabco/gomdedit/pkg/debug"
	"github.com/yaklabco/gomdedit/pkg/inputrules"
	"github.com/yaklabco/gomdedit/pkg/markdown"
	"github.com/yaklabco/gomdedit/pkg/model"
	"github.com/yaklabco/gomdedit/pkg/schema"
)

// Sentinel errors.
var (
	// ErrReentrantDispatch is returned when a transaction is dispatched
	// while another one is being dispatched.
	ErrReentrantDispatch = errors.New("reentrant dispatch")

	// ErrVetoed is the error plugins return to reject a transaction.
	ErrVetoed = errors.New("transaction vetoed")

	// ErrUnknownType is returned by commands naming a type the schema
	// lacks.
	ErrUnknownType = errors.New("unknown type")
)

// Option configures an Editor.
type Option func(*Editor)

// WithSchema sets the document schema. The default is schema.Markdown().
func WithSchema(s *model.Schema) Option {
	return func(e *Editor) { e.schema = s }
}

// WithConfig sets the configuration source. It is consulted on every
// operation.
func WithConfig(source config.Source) Option {
	return func(e *Editor) { e.source = source }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Editor) { e.logger = logger }
}

// WithRules replaces the input rules. The default is the Markdown set.
func WithRules(rules ...*inputrules.Rule) Option {
	return func(e *Editor) { e.rules = rules }
}

// WithMarkdownRules tunes the default Markdown input rules.
func WithMarkdownRules(opts inputrules.MarkdownOptions) Option {
	return func(e *Editor) { e.ruleOpts = opts }
}

// WithPlugins appends plugins to the dispatch pipeline.
func WithPlugins(plugins ...Plugin) Option {
	return func(e *Editor) { e.plugins = append(e.plugins, plugins...) }
}

// WithDebugger attaches a diagnostics sink.
func WithDebugger(d debug.Debugger) Option {
	return func(e *Editor) { e.debugger = d }
}

// WithClock sets the time source used for undo grouping.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.now = now }
}

// WithOnDocumentChanged sets the document-changed callback.
func WithOnDocumentChanged(fn func(text string)) Option {
	return func(e *Editor) { e.onChange = fn }
}

// Editor is an editing session over one document.
type Editor struct {
	schema    *model.Schema
	source    config.Source
	logger    *log.Logger
	rules     []*inputrules.Rule
	ruleOpts  inputrules.MarkdownOptions
	plugins   []Plugin
	debugger  debug.Debugger
	now       func() time.Time
	onChange  func(text string)
	converter *markdown.Converter
	engine    *inputrules.Engine
	history   *History

	state       *State
	dispatching bool
	reentered   bool
}

// New creates an editor holding the empty document.
func New(opts ...Option) *Editor {
	e := &Editor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.schema == nil {
		e.schema = schema.Markdown()
	}
	if e.source == nil {
		e.source = config.NewStatic(nil)
	}
	if e.logger == nil {
		e.logger = logging.Default()
	}
	if e.rules == nil {
		e.rules = inputrules.Markdown(e.schema, e.ruleOpts)
	}
	if e.debugger == nil {
		e.debugger = debug.Nop{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	e.converter = markdown.NewConverter(e.schema, e.source, markdown.WithLogger(e.logger))
	e.engine = inputrules.New(e.rules, inputrules.WithLogger(e.logger))
	e.history = NewHistory(e.logger)
	e.state = NewState(schema.EmptyDoc(e.schema))
	return e
}

// Schema returns the document schema.
func (e *Editor) Schema() *model.Schema { return e.schema }

// Config returns the configuration in effect now.
func (e *Editor) Config() *config.Config { return e.source.Config() }

// State returns the current state.
func (e *Editor) State() *State { return e.state }

// Doc returns the current document.
func (e *Editor) Doc() *model.Node { return e.state.Doc }

// Selection returns the current selection.
func (e *Editor) Selection() Selection { return e.state.Selection }

// History returns the undo history.
func (e *Editor) History() *History { return e.history }

// Converter returns the text converter.
func (e *Editor) Converter() *markdown.Converter { return e.converter }

// OnDocumentChanged sets the callback invoked with the serialized document
// after every document-changing transaction while autosave is on.
func (e *Editor) OnDocumentChanged(fn func(text string)) { e.onChange = fn }

// CreateDocument replaces the session with a document built from text and
// clears the history. Empty text yields the empty document.
func (e *Editor) CreateDocument(text string) *model.Node {
	doc := e.converter.TextToDoc(text)
	e.state = NewState(doc)
	e.history.Clear()
	e.logger.Debug("document created", logging.FieldBytes, len(text), logging.FieldSize, doc.Content.Size())
	return doc
}

// Load replaces the session with doc and clears the history.
func (e *Editor) Load(doc *model.Node) {
	e.state = NewState(doc)
	e.history.Clear()
}

// GetText serializes the current document. It has no side effects.
func (e *Editor) GetText() string {
	return e.converter.DocToText(e.state.Doc)
}

// SetExternalText replaces the document with one built from text, which
// changed outside the editor. The selection is kept where possible and
// the history is cleared. Nothing is reported to the document-changed
// callback.
func (e *Editor) SetExternalText(text string) (*model.Node, error) {
	if e.dispatching {
		e.logger.Error("external text set during dispatch")
		return e.state.Doc, ErrReentrantDispatch
	}
	doc := e.converter.TextToDoc(text)
	if doc.Eq(e.state.Doc) {
		return e.state.Doc, nil
	}
	e.state = &State{Doc: doc, Selection: e.state.Selection.near(doc)}
	e.history.Clear()
	e.debugger.TransactionApplied(debug.Event{
		Time:    e.now(),
		Origin:  "external",
		DocSize: doc.Content.Size(),
	})
	return doc, nil
}

// SetSelection moves the selection. Both ends must lie in textblocks.
func (e *Editor) SetSelection(sel Selection) error {
	if err := sel.check(e.state.Doc); err != nil {
		return err
	}
	tr := e.state.Tr(e.now())
	tr.SetSelection(sel)
	return e.Dispatch(tr)
}

// Tr starts a transaction from the current state.
func (e *Editor) Tr() *Transaction {
	return e.state.Tr(e.now())
}

// ApplyUserEdit replaces sel with text the user typed and runs the input
// rules after each line. A newline in text acts like the Enter key. It
// returns the resulting document and whether it changed; on error the
// document is the one before the edit.
func (e *Editor) ApplyUserEdit(text string, sel Selection) (*model.Node, bool, error) {
	before := e.state.Doc
	if err := sel.check(before); err != nil {
		return before, false, err
	}
	cfg := e.source.Config()
	tr := e.state.Tr(e.now())
	tr.SelectionBefore = sel
	tr.SetMeta(MetaOrigin, OriginUser).SetMeta(MetaInputType, inputTypeOf(text, sel))

	cursor, err := e.insertText(tr, cfg, text, sel)
	if err != nil {
		e.logger.Debug("user edit rejected", logging.FieldError, err)
		return before, false, err
	}
	tr.SetSelection(Cursor(cursor))
	if err := e.Dispatch(tr); err != nil {
		return before, false, err
	}
	return e.state.Doc, tr.DocChanged(), nil
}

func inputTypeOf(text string, sel Selection) string {
	switch {
	case text == "" && !sel.Empty():
		return InputDelete
	case text == "\n":
		return InputInsertNewline
	default:
		return InputInsertText
	}
}

// insertText builds the edit of ApplyUserEdit and returns the cursor
// after it.
func (e *Editor) insertText(tr *Transaction, cfg *config.Config, text string, sel Selection) (int, error) {
	cursor := sel.From()
	if !sel.Empty() {
		if err := tr.DeleteRange(sel.From(), sel.To()); err != nil {
			return cursor, err
		}
	}
	stored, hasStored := e.state.StoredMarks()
	hasStored = hasStored && sel == e.state.Selection

	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			var err error
			if cursor, err = splitBlock(tr.Transform, cursor); err != nil {
				return cursor, err
			}
			hasStored = false
		}
		if line == "" {
			continue
		}
		rp, err := tr.Doc.Resolve(cursor)
		if err != nil {
			return cursor, err
		}
		marks := rp.Marks()
		if hasStored {
			marks, hasStored = stored, false
		}
		if err := tr.InsertText(line, cursor, cursor, allowedMarks(rp.Parent(), marks)); err != nil {
			return cursor, err
		}
		cursor += utf8.RuneCountInString(line)
		if !cfg.InputRules {
			continue
		}
		if res := e.engine.Run(tr.Transform, cursor); res != nil {
			cursor = res.Cursor
			if res.StoreMarks {
				stored, hasStored = res.StoredMarks, true
			}
		}
	}
	if hasStored {
		tr.SetStoredMarks(stored)
	}
	return cursor, nil
}

// allowedMarks drops the marks parent does not allow in its content.
func allowedMarks(parent *model.Node, marks model.MarkSet) model.MarkSet {
	var out model.MarkSet
	for _, m := range marks {
		if parent.Type.AllowsMarkType(m.Type) {
			out = append(out, m)
		}
	}
	return out
}

// DeleteBackward deletes the selection, or what lies before the cursor
// when the selection is empty, the way the Backspace key does.
func (e *Editor) DeleteBackward(sel Selection) (*model.Node, bool, error) {
	before := e.state.Doc
	if err := sel.check(before); err != nil {
		return before, false, err
	}
	tr := e.state.Tr(e.now())
	tr.SelectionBefore = sel
	tr.SetMeta(MetaOrigin, OriginUser).SetMeta(MetaInputType, InputDelete)

	cursor := sel.From()
	var err error
	if sel.Empty() {
		cursor, err = deleteBackward(tr.Transform, cursor)
	} else {
		err = tr.DeleteRange(sel.From(), sel.To())
	}
	if err != nil {
		e.logger.Debug("delete rejected", logging.FieldError, err)
		return before, false, err
	}
	tr.SetSelection(Cursor(cursor))
	if err := e.Dispatch(tr); err != nil {
		return before, false, err
	}
	return e.state.Doc, tr.DocChanged(), nil
}

// Undo reverts the newest undo unit. With nothing to undo it returns the
// document unchanged.
func (e *Editor) Undo() (*model.Node, error) {
	if !e.source.Config().History.Enabled {
		return e.state.Doc, nil
	}
	entry, ok := e.history.popUndo()
	if !ok {
		return e.state.Doc, nil
	}
	reverse, err := e.replay(entry, InputHistoryUndo)
	if err != nil {
		e.history.undo = append(e.history.undo, entry)
		return e.state.Doc, err
	}
	e.history.redo = append(e.history.redo, reverse)
	return e.state.Doc, nil
}

// Redo reapplies the newest undone unit. With nothing to redo it returns
// the document unchanged.
func (e *Editor) Redo() (*model.Node, error) {
	cfg := e.source.Config()
	if !cfg.History.Enabled {
		return e.state.Doc, nil
	}
	entry, ok := e.history.popRedo()
	if !ok {
		return e.state.Doc, nil
	}
	reverse, err := e.replay(entry, InputHistoryRedo)
	if err != nil {
		e.history.redo = append(e.history.redo, entry)
		return e.state.Doc, err
	}
	e.history.push(cfg.History, reverse)
	return e.state.Doc, nil
}

// replay dispatches the steps of a history entry and returns the entry
// that reverses it.
func (e *Editor) replay(entry historyEntry, inputType string) (historyEntry, error) {
	tr := e.state.Tr(e.now())
	tr.SetMeta(MetaOrigin, OriginHistory).
		SetMeta(MetaInputType, inputType).
		SetMeta(MetaAddToHistory, false)
	for _, step := range entry.steps {
		if err := tr.Step(step); err != nil {
			return historyEntry{}, err
		}
	}
	tr.SetSelection(entry.selBefore)
	if err := e.Dispatch(tr); err != nil {
		return historyEntry{}, err
	}
	inverted, err := tr.Inverted()
	if err != nil {
		return historyEntry{}, err
	}
	return historyEntry{
		steps:     inverted,
		selBefore: entry.selAfter,
		selAfter:  entry.selBefore,
		time:      tr.Time,
	}, nil
}

// Dispatch runs tr through the plugins and applies it.
func (e *Editor) Dispatch(tr *Transaction) error {
	if e.dispatching {
		e.reentered = true
		e.logger.Error("reentrant dispatch",
			logging.FieldInputType, tr.MetaString(MetaInputType),
			logging.FieldSteps, len(tr.Steps),
		)
		return ErrReentrantDispatch
	}
	e.dispatching, e.reentered = true, false
	defer func() { e.dispatching = false }()

	for _, p := range e.plugins {
		err := p.Filter(tr, e.state)
		if err == nil && e.reentered {
			err = ErrReentrantDispatch
		}
		if err != nil {
			e.logger.Debug("transaction rejected", logging.FieldPlugin, p.Name(), logging.FieldError, err)
			e.debugger.TransactionRejected(e.event(tr, err))
			return fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
	}

	cfg := e.source.Config()
	next := e.state.Apply(tr)
	switch {
	case tr.MetaString(MetaOrigin) == OriginHistory:
	case tr.addToHistory() && cfg.History.Enabled:
		if err := e.history.Record(cfg.History, tr, next.Selection); err != nil {
			e.debugger.TransactionRejected(e.event(tr, err))
			return err
		}
	case tr.DocChanged():
		e.history.Clear()
	}
	e.state = next
	e.debugger.TransactionApplied(e.event(tr, nil))

	if !tr.DocChanged() {
		return nil
	}
	e.logger.Debug("transaction applied",
		logging.FieldSteps, len(tr.Steps),
		logging.FieldInputType, tr.MetaString(MetaInputType),
	)
	if cfg.Autosave && e.onChange != nil {
		e.onChange(e.converter.DocToText(next.Doc))
	}
	return nil
}

func (e *Editor) event(tr *Transaction, err error) debug.Event {
	steps := make([]string, len(tr.Steps))
	for i, step := range tr.Steps {
		steps[i] = step.String()
	}
	return debug.Event{
		Time:      tr.Time,
		Origin:    tr.MetaString(MetaOrigin),
		InputType: tr.MetaString(MetaInputType),
		Steps:     steps,
		DocSize:   tr.Doc.Content.Size(),
		Err:       err,
	}
}
