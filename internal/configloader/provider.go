package configloader

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/config"
)

// Provider is a config.Source that resolves files and environment again
// on every call, so edits to a config file take effect on the next
// operation. When resolution fails it logs the error and returns the last
// good configuration, or the defaults if there is none.
type Provider struct {
	opts   LoadOptions
	logger *log.Logger

	mu   sync.Mutex
	last *config.Config
}

// NewProvider creates a Provider loading with opts. A nil logger uses the
// default logger.
func NewProvider(opts LoadOptions, logger *log.Logger) *Provider {
	if logger == nil {
		logger = logging.Default()
	}
	return &Provider{opts: opts, logger: logger}
}

// Config implements config.Source.
func (p *Provider) Config() *config.Config {
	result, err := Load(context.Background(), p.opts)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.logger.Error("config resolution failed", logging.FieldError, err)
		if p.last != nil {
			return p.last.Clone()
		}
		return config.NewConfig()
	}
	for _, w := range result.Warnings {
		p.logger.Debug("config warning", logging.FieldReason, w)
	}
	p.last = result.Config
	return result.Config.Clone()
}

var _ config.Source = (*Provider)(nil)
