package debug

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Format represents an output format.
type Format string

// Output formats for exports and reports.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const bufWriterSize = 32 * 1024

// ParseFormat parses a format string, returning an error for unknown formats.
func ParseFormat(formatStr string) (Format, error) {
	switch formatStr {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q; valid formats: text, json, yaml", formatStr)
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// IsValid returns true if the format is a known valid format.
func (f Format) IsValid() bool {
	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// Encode writes v to w as JSON or YAML. Compact drops JSON indentation.
// Text output is rendered by the caller.
func Encode(w io.Writer, v any, f Format, compact bool) (err error) {
	bw := bufio.NewWriterSize(w, bufWriterSize)
	defer func() {
		if flushErr := bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	switch f {
	case FormatJSON:
		encoder := json.NewEncoder(bw)
		if !compact {
			encoder.SetIndent("", "  ")
		}
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
	case FormatYAML:
		encoder := yaml.NewEncoder(bw)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
	default:
		return fmt.Errorf("format %q cannot be encoded", f)
	}
	return nil
}
