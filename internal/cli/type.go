package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/internal/ui/pretty"
	"github.com/yaklabco/gomdedit/pkg/debug"
	"github.com/yaklabco/gomdedit/pkg/editor"
	"github.com/yaklabco/gomdedit/pkg/fsutil"
)

type typeFlags struct {
	editorFlags

	verbose bool
	print   bool
	force   bool
	backup  bool
}

func newTypeCommand() *cobra.Command {
	flags := &typeFlags{}

	cmd := &cobra.Command{
		Use:   "type FILE [script...]",
		Short: "Replay keystrokes into a document with autosave",
		Long: `Open FILE in an editor, replay a keystroke script and save every change.

The script is typed one character at a time so Markdown input rules fire
as they would for a person typing. A newline presses enter. Named keys go
in braces: {enter} {bs} {undo} {redo} {left} {right} {shift-left}
{shift-right} {start} {end} {bold} {italic} {code} {strike} {underline}
{highlight} {task} {paragraph} {codeblock} {h1}..{h6} {quote} {ul} {ol}.
Movement keys take a count, as in {left:3}. "{{" types a brace.

Without script arguments the script is read from standard input. The file
is created when it does not exist. With autosave off the result is printed
instead of saved.`,
		Example: `  gomdedit type todo.md '{end}{enter}[ ] buy milk'
  gomdedit type notes.md '# Title{enter}Some **bold** text'
  gomdedit type --verbose draft.md < keys.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runType(cmd, args, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "print every dispatched transaction")
	cmd.Flags().BoolVarP(&flags.print, "print", "p", false, "print the final document")
	cmd.Flags().BoolVar(&flags.force, "force", false, "overwrite changes made to the file by others")
	cmd.Flags().BoolVar(&flags.backup, "backup", false, "keep a .gomdedit.bak copy of the original")

	return cmd
}

func runType(cmd *cobra.Command, args []string, flags *typeFlags) error {
	path := args[0]
	script, err := readScript(cmd, args[1:])
	if err != nil {
		return err
	}
	keys, err := parseKeys(script)
	if err != nil {
		return err
	}

	source, logger, err := loadSource(cmd, flags.overrides(cmd))
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	text, snap, err := fsutil.Load(ctx, path)
	if err != nil && !errors.Is(err, fsutil.ErrNotFound) {
		return err
	}

	saver := fsutil.NewSaver(path, snap, fsutil.SaverOptions{
		Backup: flags.backup,
		Force:  flags.force,
		Logger: logger,
	})
	var saveErr error

	opts := []editor.Option{
		editor.WithConfig(source),
		editor.WithLogger(logger),
		editor.WithOnDocumentChanged(func(current string) {
			if saveErr != nil {
				return
			}
			saveErr = saver.Save(ctx, terminated(current))
		}),
	}
	if flags.verbose {
		styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), cmd.OutOrStdout()))
		opts = append(opts, editor.WithDebugger(&eventPrinter{w: cmd.OutOrStdout(), styles: styles}))
	}

	e := editor.New(opts...)
	e.CreateDocument(text)
	if err := e.SetSelection(editor.AtEnd(e.Doc())); err != nil {
		return err
	}

	for i, k := range keys {
		if err := applyKey(e, k); err != nil {
			return fmt.Errorf("%w: key %d %s: %w", ErrEdit, i+1, k, err)
		}
		if saveErr != nil {
			return saveErr
		}
	}

	logger.Debug("script replayed", logging.FieldSteps, len(keys), logging.FieldPath, path)

	if flags.print || !e.Config().Autosave {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), e.GetText()); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

// readScript joins the script arguments, or reads stdin when there are
// none.
func readScript(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

// applyKey performs one scripted key against e.
func applyKey(e *editor.Editor, k key) error {
	sel := e.Selection()
	var err error
	switch k.kind {
	case keyText:
		_, _, err = e.ApplyUserEdit(k.text, sel)
	case keyEnter:
		_, _, err = e.ApplyUserEdit("\n", sel)
	case keyBackspace:
		_, _, err = e.DeleteBackward(sel)
	case keyUndo:
		_, err = e.Undo()
	case keyRedo:
		_, err = e.Redo()
	case keyMove:
		err = e.SetSelection(editor.Move(e.Doc(), sel, k.n))
	case keyExtend:
		err = e.SetSelection(editor.Range(sel.Anchor, editor.Move(e.Doc(), sel, k.n).Head))
	case keyStart:
		err = e.SetSelection(editor.AtStart(e.Doc()))
	case keyEnd:
		err = e.SetSelection(editor.AtEnd(e.Doc()))
	case keyMark:
		err = e.ToggleMark(k.name, nil)
	case keyTask:
		err = e.ToggleTask(sel.Head)
	case keyBlock:
		err = e.SetBlockType(k.name, k.attrs)
	case keyWrap:
		err = e.WrapIn(k.name, nil)
	}
	return err
}

// eventPrinter writes dispatch events as they happen.
type eventPrinter struct {
	w      io.Writer
	styles *pretty.Styles
}

func (p *eventPrinter) TransactionApplied(ev debug.Event) {
	_, _ = fmt.Fprintln(p.w, p.styles.FormatEvent(ev, false))
}

func (p *eventPrinter) TransactionRejected(ev debug.Event) {
	_, _ = fmt.Fprintln(p.w, p.styles.FormatEvent(ev, true))
}
