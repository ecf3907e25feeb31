// Package pretty renders documents, reports and editor events for the
// terminal with lipgloss styles.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 100

// Styles contains all styled renderers for CLI output.
type Styles struct {
	// Tree dump
	NodeType lipgloss.Style
	Pos      lipgloss.Style
	Attr     lipgloss.Style
	Mark     lipgloss.Style
	Text     lipgloss.Style
	Guide    lipgloss.Style

	// Events
	Applied  lipgloss.Style
	Rejected lipgloss.Style
	Origin   lipgloss.Style

	// Summary styles
	SummaryTitle lipgloss.Style
	SummaryValue lipgloss.Style
	Success      lipgloss.Style
	Warning      lipgloss.Style

	// Table styles
	TableHeader    lipgloss.Style
	TableSeparator lipgloss.Style

	// Diff styles
	DiffHeader lipgloss.Style
	DiffHunk   lipgloss.Style
	DiffAdd    lipgloss.Style
	DiffRemove lipgloss.Style

	// Misc
	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// NewStyles creates a new Styles with the given color mode.
func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		return newNoColorStyles()
	}
	return newColorStyles()
}

// newColorStyles creates styles with ANSI 256 colors.
func newColorStyles() *Styles {
	return &Styles{
		NodeType: lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		Pos:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Attr:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Mark:     lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		Text:     lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		Guide:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),

		Applied:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Rejected: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Origin:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),

		SummaryTitle: lipgloss.NewStyle().Bold(true),
		SummaryValue: lipgloss.NewStyle(),
		Success:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Warning:      lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),

		TableHeader:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")),
		TableSeparator: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),

		DiffHeader: lipgloss.NewStyle().Bold(true),
		DiffHunk:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		DiffAdd:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		DiffRemove: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),

		Dim:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Bold: lipgloss.NewStyle().Bold(true),
	}
}

// newNoColorStyles creates styles with no color formatting.
func newNoColorStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		NodeType:       plain,
		Pos:            plain,
		Attr:           plain,
		Mark:           plain,
		Text:           plain,
		Guide:          plain,
		Applied:        plain,
		Rejected:       plain,
		Origin:         plain,
		SummaryTitle:   plain,
		SummaryValue:   plain,
		Success:        plain,
		Warning:        plain,
		TableHeader:    plain,
		TableSeparator: plain,
		DiffHeader:     plain,
		DiffHunk:       plain,
		DiffAdd:        plain,
		DiffRemove:     plain,
		Dim:            plain,
		Bold:           plain,
	}
}

// IsColorEnabled determines if color should be enabled based on mode and writer.
// Mode values: "auto" (default), "always", "never".
// In auto mode, color is enabled only if the writer is a TTY and NO_COLOR is not set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default: // "auto"
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := writer.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}

// Width returns the terminal width of writer, or DefaultWidth when it is
// not a terminal.
func Width(writer io.Writer) int {
	f, ok := writer.(*os.File)
	if !ok {
		return DefaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	return w
}
