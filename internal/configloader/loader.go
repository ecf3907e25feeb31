// Package configloader provides configuration loading and resolution.
// It implements XDG-compliant configuration discovery, layered decoding,
// environment variable support, command-line overrides and validation.
package configloader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/yaklabco/gomdedit/pkg/config"
)

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0o644

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	// WorkingDir is the directory to search from for project config.
	// Defaults to current working directory if empty.
	WorkingDir string

	// ExplicitPath is an explicit config file path (from --config flag).
	ExplicitPath string

	// IgnoreSystemConfig skips loading system-level configuration.
	IgnoreSystemConfig bool

	// IgnoreUserConfig skips loading user-level configuration.
	IgnoreUserConfig bool

	// IgnoreProjectConfig skips loading project-level configuration.
	IgnoreProjectConfig bool

	// IgnoreEnv skips loading environment variables.
	IgnoreEnv bool

	// Overrides contains configuration from CLI flags.
	// These take highest precedence.
	Overrides *Overrides
}

// LoadResult contains the resolved configuration and metadata.
type LoadResult struct {
	// Config is the final merged configuration.
	Config *config.Config

	// Paths contains the discovered configuration file paths.
	Paths *ConfigPaths

	// LoadedFrom lists the files that were actually loaded (in order).
	LoadedFrom []string

	// Warnings contains non-fatal issues encountered during loading.
	Warnings []string
}

// Load resolves the final configuration by layering all sources.
// Precedence (highest to lowest):
//  1. CLI flags (opts.Overrides)
//  2. Environment variables (GOMDEDIT_*)
//  3. Explicit config file (opts.ExplicitPath)
//  4. Project config (.gomdedit.yml upward search)
//  5. User config ($XDG_CONFIG_HOME/gomdedit/config.yaml)
//  6. System config (/etc/gomdedit/config.yaml)
//  7. Defaults
//
// Each file is decoded over the result of the layers below it, so a file
// only changes the keys it names, including setting booleans to false.
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	workDir := opts.WorkingDir
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	paths, err := DiscoverPaths(ctx, workDir)
	if err != nil {
		return nil, fmt.Errorf("discover paths: %w", err)
	}
	if opts.IgnoreSystemConfig {
		paths.System = ""
	}
	if opts.IgnoreUserConfig {
		paths.User = ""
	}
	if opts.IgnoreProjectConfig {
		paths.Project = ""
	}
	paths.Explicit = opts.ExplicitPath

	result := &LoadResult{Paths: paths}
	cfg := config.NewConfig()

	for _, path := range paths.Layers() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled: %w", err)
		}
		cfg, err = loadConfigFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		result.LoadedFrom = append(result.LoadedFrom, path)
	}

	if !opts.IgnoreEnv {
		if err := LoadFromEnv(cfg); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}

	cfg = merge(cfg, opts.Overrides)

	validation := Validate(cfg)
	if !validation.Valid() {
		return nil, &validation.Errors[0]
	}
	for _, w := range validation.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}

	result.Config = cfg
	return result, nil
}

// loadConfigFile decodes the YAML file at path over base.
func loadConfigFile(path string, base *config.Config) (*config.Config, error) {
	if !IsYAMLConfig(path) {
		return nil, fmt.Errorf("unsupported config format %q (expected .yaml or .yml)", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	cfg, err := config.DecodeOnto(base, content)
	if err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return cfg, nil
}

// WriteOptions controls WriteConfig.
type WriteOptions struct {
	// Force overwrites an existing file without asking.
	Force bool

	// NonInteractive disables the overwrite prompt (e.g., in CI).
	NonInteractive bool

	// Prompt is where the overwrite question is written. Defaults to stdout.
	Prompt io.Writer

	// Answer is where the reply is read from. Defaults to stdin.
	Answer io.Reader
}

// ErrExists is returned by WriteConfig when the target exists and the
// user did not agree to overwrite it.
var ErrExists = os.ErrExist

// WriteConfig writes content to path. An existing file is replaced only
// with Force or after the user confirms on an interactive terminal.
func WriteConfig(path string, content []byte, opts WriteOptions) error {
	if fileExists(path) && !opts.Force {
		if opts.NonInteractive || (opts.Answer == nil && !isInteractive()) {
			return fmt.Errorf("%s: %w (use --force to overwrite)", path, ErrExists)
		}
		ok, err := promptOverwrite(path, opts)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s: %w", path, ErrExists)
		}
	}

	if err := os.WriteFile(path, content, configFilePermissions); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}

// promptOverwrite asks the user if they want to replace path.
func promptOverwrite(path string, opts WriteOptions) (bool, error) {
	out := opts.Prompt
	if out == nil {
		out = os.Stdout
	}
	in := opts.Answer
	if in == nil {
		in = os.Stdin
	}

	if _, err := fmt.Fprintf(out, "%s already exists. Overwrite? [y/N] ", path); err != nil {
		return false, fmt.Errorf("write prompt: %w", err)
	}

	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false, fmt.Errorf("read response: %w", err)
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// isInteractive returns true if stdin is a terminal.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
