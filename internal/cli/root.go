// Package cli provides the Cobra command structure for gomdedit.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdedit/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root gomdedit command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "gomdedit",
		Short: "A structured Markdown editing engine",
		Long: `gomdedit edits Markdown as a typed document tree.

Text is parsed into a schema-checked document, every edit is a transaction
of invertible steps with undo and redo, and typing Markdown syntax such as
"# ", "- " or "**bold**" turns into structure as you go. The commands here
drive the engine from the terminal: normalize files, replay keystrokes
with autosave, and inspect the resulting tree.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newFmtCommand())
	rootCmd.AddCommand(newTypeCommand())
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newRulesCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	ApplyHelp(rootCmd, color, os.Stdout)

	return rootCmd
}
