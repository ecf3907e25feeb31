package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// commentWrapWidth is the maximum width for wrapped comments in templates.
const commentWrapWidth = 70

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full documents every key. If false, generates a minimal template.
	Full bool

	// Format is the output format: "yaml" or "json".
	Format string
}

// templateKey documents one configuration key.
type templateKey struct {
	Path        string
	Value       string
	Description string
}

// templateKeys lists the keys in file order.
func templateKeys(cfg *Config) []templateKey {
	return []templateKey{
		{"autosave", fmt.Sprint(cfg.Autosave), "Save through the host after every change to the document."},
		{"history.enabled", fmt.Sprint(cfg.History.Enabled), "Record undo history."},
		{"history.depth", fmt.Sprint(cfg.History.Depth), "Maximum number of undo entries; the oldest entries are dropped first."},
		{"history.group_delay", cfg.History.GroupDelay.String(), "Edits typed within this window at an unmoved cursor undo together. 0s disables grouping."},
		{"markdown.enabled", fmt.Sprint(cfg.Markdown.Enabled), "Read and write Markdown. When off, text is kept as a single plain paragraph."},
		{"markdown.auto_detect", fmt.Sprint(cfg.Markdown.AutoDetect), "Let the detector decide whether loaded text is Markdown."},
		{"markdown.force", fmt.Sprint(cfg.Markdown.Force), "Treat all text as Markdown, regardless of detection."},
		{"markdown.detector", cfg.Markdown.Detector, "Detection policy: patterns or goldmark."},
		{"input_rules", fmt.Sprint(cfg.InputRules), "Convert Markdown syntax into structure while typing."},
		{"log_level", cfg.LogLevel, "Log level: debug, info, warn or error."},
	}
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		return templateToJSON()
	}
	if opts.Full {
		return generateFullTemplate(), nil
	}
	return generateMinimalTemplate(), nil
}

// generateMinimalTemplate creates a minimal commented template.
func generateMinimalTemplate() []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString(`

# Read and write Markdown
markdown:
  enabled: true
  # auto_detect: true
  # force: true
  # detector: patterns

# Undo history
# history:
#   depth: 100
#   group_delay: 500ms

# autosave: true
# input_rules: true
`)

	return buf.Bytes()
}

// generateFullTemplate creates a template with every key documented.
func generateFullTemplate() []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString("\n#\n# This template lists every setting with its default value.\n")

	section := ""
	for _, key := range templateKeys(NewConfig()) {
		parent, name, nested := strings.Cut(key.Path, ".")
		indent := ""
		if nested {
			indent = "  "
			if parent != section {
				section = parent
				fmt.Fprintf(&buf, "\n%s:\n", parent)
			}
		} else {
			section = ""
			name = parent
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "%s# %s\n", indent, wrapComment(key.Description, commentWrapWidth, indent))
		fmt.Fprintf(&buf, "%s%s: %s\n", indent, name, key.Value)
	}

	return buf.Bytes()
}

// wrapComment wraps a comment to fit within maxWidth characters.
func wrapComment(text string, maxWidth int, indent string) string {
	if len(text) <= maxWidth {
		return text
	}

	var lines []string
	words := strings.Fields(text)
	currentLine := ""

	for _, word := range words {
		switch {
		case currentLine == "":
			currentLine = word
		case len(currentLine)+1+len(word) <= maxWidth:
			currentLine += " " + word
		default:
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n"+indent+"# ")
}

// templateToJSON renders the default configuration as JSON.
func templateToJSON() ([]byte, error) {
	cfg := NewConfig()
	doc := map[string]any{
		"autosave": cfg.Autosave,
		"history": map[string]any{
			"enabled":     cfg.History.Enabled,
			"depth":       cfg.History.Depth,
			"group_delay": cfg.History.GroupDelay.String(),
		},
		"markdown": map[string]any{
			"enabled":     cfg.Markdown.Enabled,
			"auto_detect": cfg.Markdown.AutoDetect,
			"force":       cfg.Markdown.Force,
			"detector":    cfg.Markdown.Detector,
		},
		"input_rules": cfg.InputRules,
		"log_level":   cfg.LogLevel,
	}

	jsonBytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return jsonBytes, nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# gomdedit configuration
# See: https://github.com/yaklabco/gomdedit`
}
