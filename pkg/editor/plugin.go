package editor

// Plugin takes part in dispatch. Plugins run in registration order before
// a transaction is applied.
type Plugin interface {
	// Name identifies the plugin in logs and errors.
	Name() string

	// Filter may append steps to tr. Returning an error vetoes the
	// transaction; the document stays as it was.
	Filter(tr *Transaction, state *State) error
}

// FilterFunc is the function form of Plugin.Filter.
type FilterFunc func(tr *Transaction, state *State) error

type funcPlugin struct {
	name string
	fn   FilterFunc
}

// NewPlugin creates a plugin from a filter function.
//
//nolint:ireturn // plugins are used through the interface
func NewPlugin(name string, fn FilterFunc) Plugin {
	return &funcPlugin{name: name, fn: fn}
}

func (p *funcPlugin) Name() string { return p.name }

func (p *funcPlugin) Filter(tr *Transaction, state *State) error { return p.fn(tr, state) }

// Veto returns a plugin that vetoes every document-changing transaction
// for which pred is true.
//
//nolint:ireturn // plugins are used through the interface
func Veto(name string, pred func(tr *Transaction, state *State) bool) Plugin {
	return NewPlugin(name, func(tr *Transaction, state *State) error {
		if tr.DocChanged() && pred(tr, state) {
			return ErrVetoed
		}
		return nil
	})
}
