package configloader

import (
	"time"

	"github.com/yaklabco/gomdedit/pkg/config"
)

// Overrides holds values set explicitly on the command line. A nil field
// leaves the loaded value alone, so a flag can turn a setting off as well
// as on.
type Overrides struct {
	Autosave          *bool
	HistoryEnabled    *bool
	HistoryDepth      *int
	HistoryGroupDelay *time.Duration
	MarkdownEnabled   *bool
	AutoDetect        *bool
	Force             *bool
	Detector          *string
	InputRules        *bool
	Placeholder       *string
	LogLevel          *string
}

// IsZero reports whether no override is set.
func (o *Overrides) IsZero() bool {
	return o == nil || *o == (Overrides{})
}

// merge returns a copy of base with every set field of o applied.
func merge(base *config.Config, o *Overrides) *config.Config {
	if base == nil {
		base = config.NewConfig()
	}
	result := base.Clone()
	if o.IsZero() {
		return result
	}

	set(&result.Autosave, o.Autosave)
	set(&result.History.Enabled, o.HistoryEnabled)
	set(&result.History.Depth, o.HistoryDepth)
	set(&result.History.GroupDelay, o.HistoryGroupDelay)
	set(&result.Markdown.Enabled, o.MarkdownEnabled)
	set(&result.Markdown.AutoDetect, o.AutoDetect)
	set(&result.Markdown.Force, o.Force)
	set(&result.Markdown.Detector, o.Detector)
	set(&result.InputRules, o.InputRules)
	set(&result.Placeholder, o.Placeholder)
	set(&result.LogLevel, o.LogLevel)

	return result
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// MergeAll applies overrides to base in order, with later ones taking precedence.
func MergeAll(base *config.Config, overrides ...*Overrides) *config.Config {
	result := merge(base, nil)
	for _, o := range overrides {
		result = merge(result, o)
	}
	return result
}
