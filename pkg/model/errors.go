package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPositionOutOfRange is wrapped by every PositionError.
var ErrPositionOutOfRange = errors.New("position out of range")

// SchemaError reports a schema definition that cannot be compiled.
type SchemaError struct {
	// Type is the node or mark type the error refers to (may be empty).
	Type string

	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	if e.Type == "" {
		return "schema: " + e.Message
	}
	return fmt.Sprintf("schema: %s: %s", e.Type, e.Message)
}

// SchemaViolation reports a tree or an edit that breaks the content grammar
// or an attribute domain.
type SchemaViolation struct {
	// Path locates the offending node, e.g. "doc/1:bullet_list/0:list_item".
	Path string

	// Reason describes the violated rule.
	Reason string
}

// Error implements the error interface.
func (v *SchemaViolation) Error() string {
	if v.Path == "" {
		return "schema violation: " + v.Reason
	}
	return fmt.Sprintf("schema violation at %s: %s", v.Path, v.Reason)
}

// PositionError reports a position that does not exist in a document.
type PositionError struct {
	Pos  int
	Size int
}

// Error implements the error interface.
func (e *PositionError) Error() string {
	return fmt.Sprintf("position %d outside document content [0, %d]", e.Pos, e.Size)
}

// Unwrap lets errors.Is match ErrPositionOutOfRange.
func (e *PositionError) Unwrap() error {
	return ErrPositionOutOfRange
}

func violation(path []string, format string, args ...any) *SchemaViolation {
	return &SchemaViolation{
		Path:   strings.Join(path, "/"),
		Reason: fmt.Sprintf(format, args...),
	}
}

func checkPos(pos, size int) error {
	if pos < 0 || pos > size {
		return &PositionError{Pos: pos, Size: size}
	}
	return nil
}
