package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdedit/internal/ui/pretty"
	"github.com/yaklabco/gomdedit/pkg/debug"
	"github.com/yaklabco/gomdedit/pkg/editor"
)

type inspectFlags struct {
	editorFlags

	format  string
	report  bool
	noTree  bool
	compact bool
}

// inspection is the structured output of inspect.
type inspection struct {
	Snapshot *debug.Snapshot `json:"snapshot" yaml:"snapshot"`
	Report   *debug.Report   `json:"report,omitempty" yaml:"report,omitempty"`
}

func newInspectCommand() *cobra.Command {
	flags := &inspectFlags{}

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show the document tree and a structure report",
		Long: `Parse a file and show the resulting document tree with positions,
attributes and marks. --report adds an outline, node and mark counts, task
progress and a language guess for every code block.

Without a file, inspect reads standard input.`,
		Example: `  gomdedit inspect README.md
  gomdedit inspect --report --no-tree notes.md
  gomdedit inspect --format json README.md | jq .report.outline`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json, yaml")
	cmd.Flags().BoolVar(&flags.report, "report", false, "include the structure report")
	cmd.Flags().BoolVar(&flags.noTree, "no-tree", false, "omit the tree in text output")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "compact JSON output")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string, flags *inspectFlags) error {
	format, err := debug.ParseFormat(flags.format)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	path := stdinPath
	if len(args) == 1 {
		path = args[0]
	}

	source, logger, err := loadSource(cmd, flags.overrides(cmd))
	if err != nil {
		return err
	}
	text, _, err := readInput(commandContext(cmd), cmd, path)
	if err != nil {
		return err
	}

	e := editor.New(editor.WithConfig(source), editor.WithLogger(logger))
	doc := e.CreateDocument(text)

	var report *debug.Report
	if flags.report {
		report = debug.NewReport(doc)
	}

	out := cmd.OutOrStdout()
	if format != debug.FormatText {
		snap := debug.Export(doc, e.Converter().Serializer())
		return debug.Encode(out, inspection{Snapshot: snap, Report: report}, format, flags.compact)
	}

	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), out))
	width := pretty.Width(out)
	if !flags.noTree {
		if _, err := fmt.Fprint(out, styles.FormatTree(debug.Tree(doc), width)); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	if report != nil {
		if !flags.noTree {
			if _, err := fmt.Fprintln(out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}
		if _, err := fmt.Fprint(out, styles.FormatReport(report, width)); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}
