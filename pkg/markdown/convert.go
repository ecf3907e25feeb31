package markdown

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/config"
	"github.com/yaklabco/gomdedit/pkg/model"
)

// Converter applies the configured Markdown policy on top of a Parser and
// a Serializer. The configuration is read from its source on every call.
type Converter struct {
	parser     *Parser
	serializer *Serializer
	source     config.Source
	logger     *log.Logger

	mu        sync.Mutex
	detectors map[string]Detector
}

// NewConverter creates a converter for documents of s. A nil source uses
// the default configuration.
func NewConverter(s *model.Schema, source config.Source, opts ...Option) *Converter {
	if source == nil {
		source = config.NewStatic(nil)
	}
	o := buildOptions(opts)
	return &Converter{
		parser:     NewParser(s, opts...),
		serializer: NewSerializer(opts...),
		source:     source,
		logger:     o.logger,
		detectors:  make(map[string]Detector),
	}
}

// Parser returns the underlying parser.
func (c *Converter) Parser() *Parser { return c.parser }

// Serializer returns the underlying serializer.
func (c *Converter) Serializer() *Serializer { return c.serializer }

// TextToDoc builds a document from text. Text is parsed as Markdown when
// Markdown is enabled and either force is set or auto-detection says the
// text looks like Markdown; otherwise it becomes one literal paragraph.
func (c *Converter) TextToDoc(text string) *model.Node {
	cfg := c.source.Config().Markdown
	if !cfg.Enabled {
		return c.parser.Literal(text)
	}
	if cfg.Force || (cfg.AutoDetect && c.detector(cfg.Detector).LooksLikeMarkdown(text)) {
		return c.parser.Parse(text)
	}
	c.logger.Debug("text not detected as markdown", logging.FieldDetector, cfg.Detector, logging.FieldBytes, len(text))
	return c.parser.Literal(text)
}

// DocToText renders doc. It writes Markdown when Markdown is enabled and
// either force is set or the document carries Markdown-only structure;
// otherwise it writes plain text.
func (c *Converter) DocToText(doc *model.Node) string {
	cfg := c.source.Config().Markdown
	if cfg.Enabled && (cfg.Force || IsSuitable(doc)) {
		return c.serializer.Serialize(doc)
	}
	return PlainText(doc)
}

// detector returns the detector called name, creating it on first use.
//
//nolint:ireturn // policy is chosen by name
func (c *Converter) detector(name string) Detector {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.detectors[name]
	if !ok {
		d = NewDetector(name)
		c.detectors[name] = d
	}
	return d
}
