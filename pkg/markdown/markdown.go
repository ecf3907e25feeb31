// Package markdown converts between Markdown text and documents of the
// Markdown schema.
//
// The parser runs a line pass that builds a tree of open block containers
// and then an inline pass over each leaf block. The serializer walks the
// document with per-type renderers. Both recover from failure: a document
// that cannot be assembled becomes a single literal paragraph, and a
// document that cannot be rendered becomes plain text.
package markdown

import (
	"errors"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/gomdedit/internal/logging"
)

var (
	// ErrParseFailure is returned by ParseStrict when the assembled tree
	// does not validate.
	ErrParseFailure = errors.New("markdown parse failure")

	// ErrSerializeFailure is returned by SerializeStrict when a node has no
	// renderer or is inconsistent.
	ErrSerializeFailure = errors.New("markdown serialize failure")
)

// Option configures a Parser or Serializer.
type Option func(*options)

type options struct {
	logger *log.Logger
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Default()
	}
	return o
}
