package configloader

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/yaklabco/gomdedit/pkg/config"
)

// envVarPrefix is the prefix for all gomdedit environment variables.
const envVarPrefix = "GOMDEDIT_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeDuration
)

// envMapping defines environment variable to config field mappings.
type envMapping struct {
	field string
	typ   envFieldType
	help  string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"AUTOSAVE":             {field: "autosave", typ: envTypeBool, help: "Invoke the change callback after edits: true or false"},
	"HISTORY_ENABLED":      {field: "history.enabled", typ: envTypeBool, help: "Enable undo history: true or false"},
	"HISTORY_DEPTH":        {field: "history.depth", typ: envTypeInt, help: "Maximum number of undo entries"},
	"HISTORY_GROUP_DELAY":  {field: "history.group_delay", typ: envTypeDuration, help: "Undo grouping window, e.g. 500ms"},
	"MARKDOWN_ENABLED":     {field: "markdown.enabled", typ: envTypeBool, help: "Parse and serialize Markdown: true or false"},
	"MARKDOWN_AUTO_DETECT": {field: "markdown.auto_detect", typ: envTypeBool, help: "Detect whether text is Markdown: true or false"},
	"MARKDOWN_FORCE":       {field: "markdown.force", typ: envTypeBool, help: "Treat all text as Markdown: true or false"},
	"MARKDOWN_DETECTOR":    {field: "markdown.detector", typ: envTypeString, help: "Detection policy: patterns or goldmark"},
	"INPUT_RULES":          {field: "input_rules", typ: envTypeBool, help: "Enable typing-time input rules: true or false"},
	"PLACEHOLDER":          {field: "placeholder", typ: envTypeString, help: "Placeholder text shown for an empty document"},
	"LOG_LEVEL":            {field: "log_level", typ: envTypeString, help: "Log level: debug, info, warn, or error"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with GOMDEDIT_ (e.g., GOMDEDIT_AUTOSAVE).
func LoadFromEnv(cfg *config.Config) error {
	return loadFromLookup(cfg, os.LookupEnv)
}

func loadFromLookup(cfg *config.Config, lookup func(string) (string, bool)) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value, ok := lookup(envVar)
		if !ok || value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	case envTypeDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %q", envVar, value)
		}
		return setDurationField(cfg, mapping.field, d)
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// setStringField sets a string field on the config by field path.
func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "markdown.detector":
		cfg.Markdown.Detector = value
	case "placeholder":
		cfg.Placeholder = value
	case "log_level":
		cfg.LogLevel = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

// setBoolField sets a boolean field on the config by field path.
func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "autosave":
		cfg.Autosave = value
	case "history.enabled":
		cfg.History.Enabled = value
	case "markdown.enabled":
		cfg.Markdown.Enabled = value
	case "markdown.auto_detect":
		cfg.Markdown.AutoDetect = value
	case "markdown.force":
		cfg.Markdown.Force = value
	case "input_rules":
		cfg.InputRules = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

// setIntField sets an integer field on the config by field path.
func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "history.depth":
		cfg.History.Depth = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

// setDurationField sets a duration field on the config by field path.
func setDurationField(cfg *config.Config, field string, value time.Duration) error {
	switch field {
	case "history.group_delay":
		cfg.History.GroupDelay = value
	default:
		return fmt.Errorf("unknown duration field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	out := make(map[string]string, len(envMappings))
	for suffix, mapping := range envMappings {
		out[envVarPrefix+suffix] = mapping.help
	}
	return out
}
