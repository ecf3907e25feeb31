// Package debug provides the diagnostics hooks an editor reports to, and
// helpers that export and summarize documents for inspection.
package debug

import (
	"sync"
	"time"
)

// DefaultRecorderLimit is the number of events a Recorder keeps by
// default.
const DefaultRecorderLimit = 256

// Event describes one dispatched transaction.
type Event struct {
	Time      time.Time `json:"time" yaml:"time"`
	Origin    string    `json:"origin,omitempty" yaml:"origin,omitempty"`
	InputType string    `json:"input_type,omitempty" yaml:"input_type,omitempty"`
	Steps     []string  `json:"steps,omitempty" yaml:"steps,omitempty"`
	DocSize   int       `json:"doc_size" yaml:"doc_size"`

	// Err is set for rejected transactions.
	Err error `json:"-" yaml:"-"`
}

// Debugger receives dispatch events. Implementations must not dispatch
// transactions.
type Debugger interface {
	TransactionApplied(ev Event)
	TransactionRejected(ev Event)
}

// Nop discards every event.
type Nop struct{}

// TransactionApplied implements Debugger.
func (Nop) TransactionApplied(Event) {}

// TransactionRejected implements Debugger.
func (Nop) TransactionRejected(Event) {}

// Recorder keeps the most recent events in memory. It is safe for
// concurrent use.
type Recorder struct {
	mu       sync.Mutex
	limit    int
	applied  []Event
	rejected []Event
}

// NewRecorder creates a recorder keeping at most limit events of each
// kind. A limit below one uses DefaultRecorderLimit.
func NewRecorder(limit int) *Recorder {
	if limit < 1 {
		limit = DefaultRecorderLimit
	}
	return &Recorder{limit: limit}
}

// TransactionApplied implements Debugger.
func (r *Recorder) TransactionApplied(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = r.keep(append(r.applied, ev))
}

// TransactionRejected implements Debugger.
func (r *Recorder) TransactionRejected(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = r.keep(append(r.rejected, ev))
}

func (r *Recorder) keep(events []Event) []Event {
	if n := len(events) - r.limit; n > 0 {
		return events[n:]
	}
	return events
}

// Applied returns the recorded applied transactions, oldest first.
func (r *Recorder) Applied() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.applied...)
}

// Rejected returns the recorded rejected transactions, oldest first.
func (r *Recorder) Rejected() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.rejected...)
}

// Reset forgets every event.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied, r.rejected = nil, nil
}
