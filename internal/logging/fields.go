// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError  = "error"
	FieldPath   = "path"
	FieldInput  = "input"
	FieldOutput = "output"
	FieldReason = "reason"

	// Configuration fields.
	FieldConfig   = "config"
	FieldDetector = "detector"
	FieldAutosave = "autosave"

	// Document fields.
	FieldSteps    = "steps"
	FieldStep     = "step"
	FieldPos      = "pos"
	FieldSize     = "size"
	FieldNodeType = "node_type"
	FieldMark     = "mark"
	FieldBytes    = "bytes"

	// Pipeline fields.
	FieldPlugin    = "plugin"
	FieldRule      = "rule"
	FieldInputType = "input_type"

	// History fields.
	FieldDepth   = "depth"
	FieldEvicted = "evicted"
	FieldGrouped = "grouped"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
