// Package config defines the editor configuration surface.
// These types are pure data structures; loading and layering live in
// internal/configloader.
package config

import "time"

// Detector names accepted by MarkdownConfig.Detector.
const (
	DetectorPatterns = "patterns"
	DetectorGoldmark = "goldmark"
)

// Default values.
const (
	DefaultHistoryDepth      = 100
	DefaultHistoryGroupDelay = 500 * time.Millisecond
	DefaultLogLevel          = "info"
)

// HistoryConfig controls undo and redo.
type HistoryConfig struct {
	// Enabled turns undo history on.
	Enabled bool `yaml:"enabled"`

	// Depth bounds the number of undo entries; the oldest are evicted.
	Depth int `yaml:"depth"`

	// GroupDelay is the window within which edits at an unmoved selection
	// merge into one undo entry. Zero disables grouping.
	GroupDelay time.Duration `yaml:"group_delay"`
}

// MarkdownConfig controls how text is read and written.
type MarkdownConfig struct {
	// Enabled turns Markdown parsing and serialization on. When off, text
	// is kept as a single literal paragraph.
	Enabled bool `yaml:"enabled"`

	// AutoDetect lets the detector decide whether text is Markdown.
	AutoDetect bool `yaml:"auto_detect"`

	// Force treats every text as Markdown regardless of detection.
	Force bool `yaml:"force"`

	// Detector selects the auto-detection policy: "patterns" or "goldmark".
	Detector string `yaml:"detector"`
}

// Config is the root configuration structure for gomdedit.
type Config struct {
	// Autosave invokes the document-changed callback after every
	// document-changing transaction.
	Autosave bool `yaml:"autosave"`

	// History configures undo and redo.
	History HistoryConfig `yaml:"history"`

	// Markdown configures parsing and serialization.
	Markdown MarkdownConfig `yaml:"markdown"`

	// InputRules turns the typing-time input rules on.
	InputRules bool `yaml:"input_rules"`

	// Placeholder is shown by hosts for an empty document. The core only
	// carries it.
	Placeholder string `yaml:"placeholder,omitempty"`

	// LogLevel is one of "debug", "info", "warn" or "error".
	LogLevel string `yaml:"log_level,omitempty"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Autosave: true,
		History: HistoryConfig{
			Enabled:    true,
			Depth:      DefaultHistoryDepth,
			GroupDelay: DefaultHistoryGroupDelay,
		},
		Markdown: MarkdownConfig{
			Enabled:    true,
			AutoDetect: true,
			Force:      true,
			Detector:   DetectorPatterns,
		},
		InputRules: true,
		LogLevel:   DefaultLogLevel,
	}
}

// Source yields the configuration in effect. Editors consult it on every
// operation that depends on configuration, so a Source may change its
// answer between calls.
type Source interface {
	Config() *Config
}

// SourceFunc adapts a function to Source.
type SourceFunc func() *Config

// Config implements Source.
func (f SourceFunc) Config() *Config { return f() }

// Static is a Source that always returns the same configuration.
type Static struct {
	cfg *Config
}

// NewStatic returns a Source for cfg. A nil cfg yields the defaults.
func NewStatic(cfg *Config) *Static {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &Static{cfg: cfg}
}

// Config implements Source.
func (s *Static) Config() *Config { return s.cfg }
