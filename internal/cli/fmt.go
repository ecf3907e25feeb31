package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/internal/ui/pretty"
	"github.com/yaklabco/gomdedit/pkg/editor"
	"github.com/yaklabco/gomdedit/pkg/fsutil"
	"github.com/yaklabco/gomdedit/pkg/runner"
)

type fmtFlags struct {
	editorFlags

	write   bool
	check   bool
	backup  bool
	diff    bool
	exclude []string
	jobs    int
}

func newFmtCommand() *cobra.Command {
	flags := &fmtFlags{}

	cmd := &cobra.Command{
		Use:   "fmt [paths...]",
		Short: "Normalize Markdown by parsing and serializing it",
		Long: `Parse each file into a document and write it back out as Markdown.

Directories are searched for .md and .markdown files, skipping hidden
entries and --exclude patterns, and files are processed in parallel.
Without paths, fmt reads standard input. The normalized text is printed
unless --write or --check is given.`,
		Example: `  gomdedit fmt README.md           # print the normalized file
  gomdedit fmt -w docs              # rewrite every file under docs
  gomdedit fmt --check notes.md     # exit 1 if the file would change
  gomdedit fmt -d docs              # show what would change
  cat draft.md | gomdedit fmt       # normalize standard input`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, args, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&flags.write, "write", "w", false, "write the result back to each file")
	cmd.Flags().BoolVar(&flags.check, "check", false, "report files that would change and exit 1")
	cmd.Flags().BoolVar(&flags.backup, "backup", false, "keep a .gomdedit.bak copy when writing")
	cmd.Flags().BoolVarP(&flags.diff, "diff", "d", false, "print a unified diff instead of the normalized text")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "glob patterns of paths to skip in directories")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "files processed in parallel (0 = one per CPU)")

	return cmd
}

func runFmt(cmd *cobra.Command, args []string, flags *fmtFlags) error {
	if flags.write && flags.check {
		return fmt.Errorf("%w: --write and --check are mutually exclusive", ErrUsage)
	}
	stdin := len(args) == 0 || (len(args) == 1 && args[0] == stdinPath)
	if !stdin && slices.Contains(args, stdinPath) {
		return fmt.Errorf("%w: standard input cannot be mixed with files", ErrUsage)
	}
	if stdin && flags.write {
		return fmt.Errorf("%w: cannot write standard input", ErrUsage)
	}

	source, logger, err := loadSource(cmd, flags.overrides(cmd))
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	format := func(text string) string {
		e := editor.New(editor.WithConfig(source), editor.WithLogger(logger))
		e.CreateDocument(text)
		return keepFinalNewline(text, e.GetText())
	}
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), cmd.OutOrStdout()))
	// output is what gets printed for a file: its diff or its new text.
	output := func(path, before, after string) (string, error) {
		if flags.diff {
			return styles.FormatDiff(path, before, after)
		}
		return after, nil
	}
	printing := flags.diff || (!flags.check && !flags.write)

	if stdin {
		text, _, err := readInput(ctx, cmd, stdinPath)
		if err != nil {
			return err
		}
		out := format(text)
		if printing {
			printed, err := output("<stdin>", text, out)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprint(cmd.OutOrStdout(), printed); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}
		if flags.check && out != text {
			return fmt.Errorf("%w: standard input", ErrNotFormatted)
		}
		return nil
	}

	task := func(ctx context.Context, path string) (runner.FileOutcome, error) {
		text, snap, err := fsutil.Load(ctx, path)
		if err != nil {
			return runner.FileOutcome{}, err
		}
		out := format(text)
		outcome := runner.FileOutcome{Changed: out != text}
		if printing {
			if outcome.Output, err = output(path, text, out); err != nil {
				return outcome, err
			}
		}
		if !flags.write || !outcome.Changed {
			return outcome, nil
		}
		if flags.backup {
			if _, err := fsutil.Backup(ctx, path); err != nil {
				return outcome, err
			}
		}
		return outcome, fsutil.WriteAtomic(ctx, path, []byte(out), snap.Mode.Perm())
	}

	result, err := runner.New(task).Run(ctx, runner.Options{
		Paths:   args,
		Exclude: flags.exclude,
		Jobs:    flags.jobs,
	})
	if err != nil {
		return err
	}

	for _, f := range result.Files {
		if f.Error != nil {
			continue
		}
		if f.Changed && flags.check {
			logger.Info("would reformat", logging.FieldPath, f.Path)
		}
		if f.Changed && flags.write {
			logger.Info("formatted", logging.FieldPath, f.Path)
		}
		if printing {
			if _, err := fmt.Fprint(cmd.OutOrStdout(), f.Output); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}
	}
	logger.Debug("fmt finished",
		logging.FieldInput, result.Stats.FilesDiscovered,
		logging.FieldOutput, result.Stats.FilesChanged,
	)

	if errs := result.Errors(); len(errs) > 0 {
		return errors.Join(errs...)
	}
	if flags.check && result.Stats.FilesChanged > 0 {
		return fmt.Errorf("%w: %d of %d", ErrNotFormatted, result.Stats.FilesChanged, result.Stats.FilesDiscovered)
	}
	return nil
}

// keepFinalNewline ends out with a newline when the input had one.
func keepFinalNewline(in, out string) string {
	if strings.HasSuffix(in, "\n") {
		return terminated(out)
	}
	return out
}

// terminated ends a non-empty text with a newline.
func terminated(text string) string {
	if text == "" || strings.HasSuffix(text, "\n") {
		return text
	}
	return text + "\n"
}
