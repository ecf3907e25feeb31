package configloader

import (
	"fmt"
	"strings"

	"github.com/yaklabco/gomdedit/pkg/config"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "history.depth").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string

	// Line is the line number in the config file (if known).
	Line int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		if e.Line > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", e.FilePath, e.Line))
		} else {
			parts = append(parts, e.FilePath)
		}
	}

	if e.Field != "" {
		parts = append(parts, e.Field)
	}

	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

// knownDetectors lists valid markdown.detector values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownDetectors = map[string]bool{
	config.DetectorPatterns: true,
	config.DetectorGoldmark: true,
}

// knownLogLevels lists valid log_level values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	if cfg == nil {
		return &ValidationResult{}
	}

	result := &ValidationResult{}

	if cfg.History.Depth < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "history.depth",
			Value:   cfg.History.Depth,
			Message: "depth must be >= 0",
		})
	}

	if cfg.History.GroupDelay < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "history.group_delay",
			Value:   cfg.History.GroupDelay,
			Message: "group delay must be >= 0 (0 disables grouping)",
		})
	}

	if cfg.Markdown.Detector != "" && !knownDetectors[cfg.Markdown.Detector] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "markdown.detector",
			Value:   cfg.Markdown.Detector,
			Message: fmt.Sprintf("invalid detector %q; must be one of: patterns, goldmark", cfg.Markdown.Detector),
		})
	}

	if cfg.LogLevel != "" && !knownLogLevels[cfg.LogLevel] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "log_level",
			Value:   cfg.LogLevel,
			Message: fmt.Sprintf("invalid log level %q; must be one of: debug, info, warn, error", cfg.LogLevel),
		})
	}

	if cfg.History.Enabled && cfg.History.Depth == 0 {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "history.depth",
			Value:   0,
			Message: "history is enabled but keeps no entries",
		})
	}

	if cfg.Markdown.Enabled && !cfg.Markdown.AutoDetect && !cfg.Markdown.Force {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "markdown",
			Message: "markdown is enabled but neither auto_detect nor force is set; text is never parsed",
		})
	}

	return result
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}

// IsValidDetector returns true if name selects a known detector.
func IsValidDetector(name string) bool {
	return knownDetectors[name]
}

// IsValidLogLevel returns true if the log level is valid.
func IsValidLogLevel(level string) bool {
	return knownLogLevels[level]
}
