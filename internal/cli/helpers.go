package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdedit/internal/configloader"
	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/config"
	"github.com/yaklabco/gomdedit/pkg/fsutil"
)

const stdinPath = "-"

// editorFlags are the configuration overrides shared by commands that
// run an editor.
type editorFlags struct {
	noMarkdown bool
	detector   string
	noRules    bool
	noHistory  bool
	groupDelay time.Duration
}

func (f *editorFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noMarkdown, "no-markdown", false, "treat text as plain paragraphs")
	cmd.Flags().StringVar(&f.detector, "detector", config.DetectorPatterns,
		"markdown detection policy: patterns, goldmark")
	cmd.Flags().BoolVar(&f.noRules, "no-input-rules", false, "disable typing-time input rules")
	cmd.Flags().BoolVar(&f.noHistory, "no-history", false, "disable undo history")
	cmd.Flags().DurationVar(&f.groupDelay, "group-delay", config.DefaultHistoryGroupDelay,
		"edits within this window undo together (0 disables grouping)")
}

// overrides returns the flags the user set explicitly.
func (f *editorFlags) overrides(cmd *cobra.Command) *configloader.Overrides {
	o := &configloader.Overrides{}
	changed := cmd.Flags().Changed
	if changed("no-markdown") {
		enabled := !f.noMarkdown
		o.MarkdownEnabled = &enabled
	}
	if changed("detector") {
		o.Detector = &f.detector
	}
	if changed("no-input-rules") {
		enabled := !f.noRules
		o.InputRules = &enabled
	}
	if changed("no-history") {
		enabled := !f.noHistory
		o.HistoryEnabled = &enabled
	}
	if changed("group-delay") {
		o.HistoryGroupDelay = &f.groupDelay
	}
	return o
}

// loadSource resolves the configuration once to report errors early, then
// returns a provider that re-resolves it on every editor operation.
func loadSource(cmd *cobra.Command, overrides *configloader.Overrides) (config.Source, *log.Logger, error) {
	logger := logging.Default()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("get config flag: %w", err)
	}
	workDir, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("get working directory: %w", err)
	}

	opts := configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		Overrides:    overrides,
	}
	result, err := configloader.Load(commandContext(cmd), opts)
	if err != nil {
		return nil, nil, errors.Join(ErrConfig, err)
	}
	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}
	if len(result.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldConfig, result.LoadedFrom)
	}
	if debug, _ := cmd.Flags().GetBool("debug"); !debug && result.Config.LogLevel != "" {
		logging.SetLevel(result.Config.LogLevel)
	}

	return configloader.NewProvider(opts, logger), logger, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// readInput returns the text at path, reading stdin for "-". The snapshot
// is nil for stdin.
func readInput(ctx context.Context, cmd *cobra.Command, path string) (string, *fsutil.Snapshot, error) {
	if path == stdinPath {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", nil, fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil, nil
	}
	return fsutil.Load(ctx, path)
}

// colorMode returns the --color flag value.
func colorMode(cmd *cobra.Command) string {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return "auto"
	}
	return mode
}
