package editor

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/config"
	"github.com/yaklabco/gomdedit/pkg/transform"
)

// historyEntry is one undo unit: the steps that revert it and the
// selections around it.
type historyEntry struct {
	steps     []transform.Step
	selBefore Selection
	selAfter  Selection
	time      time.Time
}

// History keeps bounded undo and redo stacks. Entries hold inverted steps,
// so every document change must pass through Record or the history must be
// cleared.
type History struct {
	undo   []historyEntry
	redo   []historyEntry
	logger *log.Logger
}

// NewHistory creates an empty history.
func NewHistory(logger *log.Logger) *History {
	if logger == nil {
		logger = logging.Default()
	}
	return &History{logger: logger}
}

// CanUndo reports whether there is something to undo.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether there is something to redo.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoDepth returns the number of undo units.
func (h *History) UndoDepth() int { return len(h.undo) }

// RedoDepth returns the number of redo units.
func (h *History) RedoDepth() int { return len(h.redo) }

// Clear drops both stacks.
func (h *History) Clear() {
	h.undo, h.redo = nil, nil
}

// Record adds an applied transaction to the undo stack and clears the
// redo stack. The transaction merges into the previous unit when it starts
// at the selection that unit ended with and arrives within the group
// delay.
func (h *History) Record(cfg config.HistoryConfig, tr *Transaction, selAfter Selection) error {
	if !cfg.Enabled || !tr.DocChanged() {
		return nil
	}
	inverted, err := tr.Inverted()
	if err != nil {
		return err
	}
	h.redo = nil

	if n := len(h.undo); n > 0 && cfg.GroupDelay > 0 {
		last := &h.undo[n-1]
		if last.selAfter == tr.SelectionBefore && tr.Time.Sub(last.time) < cfg.GroupDelay {
			last.steps = append(inverted, last.steps...)
			last.selAfter = selAfter
			last.time = tr.Time
			h.logger.Debug("history grouped", logging.FieldGrouped, true, logging.FieldDepth, n)
			return nil
		}
	}
	h.push(cfg, historyEntry{
		steps:     inverted,
		selBefore: tr.SelectionBefore,
		selAfter:  selAfter,
		time:      tr.Time,
	})
	return nil
}

// push appends to the undo stack, evicting the oldest entries beyond the
// configured depth.
func (h *History) push(cfg config.HistoryConfig, e historyEntry) {
	h.undo = append(h.undo, e)
	if evicted := len(h.undo) - max(cfg.Depth, 0); evicted > 0 {
		h.undo = h.undo[evicted:]
		h.logger.Debug("history evicted", logging.FieldEvicted, evicted, logging.FieldDepth, len(h.undo))
	}
}

// popUndo removes and returns the newest undo unit.
func (h *History) popUndo() (historyEntry, bool) {
	return pop(&h.undo)
}

// popRedo removes and returns the newest redo unit.
func (h *History) popRedo() (historyEntry, bool) {
	return pop(&h.redo)
}

func pop(stack *[]historyEntry) (historyEntry, bool) {
	n := len(*stack)
	if n == 0 {
		return historyEntry{}, false
	}
	e := (*stack)[n-1]
	*stack = (*stack)[:n-1]
	return e, true
}
