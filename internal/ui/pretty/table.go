package pretty

import (
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

// Table formatting constants.
const (
	tablePadding    = 2
	minColumnWidth  = 4
	heavySeparator  = "="
	lightSeparator  = "-"
	truncationTail  = "..."
	tableLeftMargin = " "
)

// Column describes one table column. Flex columns give up width first
// when the table is wider than the terminal.
type Column struct {
	Title string
	Flex  bool
}

// TableFormatter formats rows as a styled, width-bounded table.
type TableFormatter struct {
	styles    *Styles
	termWidth int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = DefaultWidth
	}
	return &TableFormatter{styles: styles, termWidth: termWidth}
}

// Format renders rows under columns. Rows shorter than columns are padded
// with empty cells. An empty row list renders nothing.
func (t *TableFormatter) Format(columns []Column, rows [][]string) string {
	if len(columns) == 0 || len(rows) == 0 {
		return ""
	}

	widths := t.columnWidths(columns, rows)

	var builder strings.Builder
	titles := make([]string, len(columns))
	for i, col := range columns {
		titles[i] = col.Title
	}
	builder.WriteString(t.styles.TableHeader.Render(formatCells(titles, widths)))
	builder.WriteString("\n")
	builder.WriteString(t.separator(widths, heavySeparator))
	builder.WriteString("\n")
	for _, row := range rows {
		builder.WriteString(formatCells(row, widths))
		builder.WriteString("\n")
	}
	builder.WriteString(t.separator(widths, lightSeparator))
	builder.WriteString("\n")

	return builder.String()
}

// columnWidths sizes each column to its widest cell, then shrinks flex
// columns until the table fits the terminal.
func (t *TableFormatter) columnWidths(columns []Column, rows [][]string) []int {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = max(minColumnWidth, ansi.PrintableRuneWidth(col.Title))
	}
	for _, row := range rows {
		for i := range min(len(row), len(columns)) {
			widths[i] = max(widths[i], ansi.PrintableRuneWidth(row[i]))
		}
	}

	excess := totalWidth(widths) - t.termWidth
	for i, col := range columns {
		if excess <= 0 {
			break
		}
		if !col.Flex {
			continue
		}
		cut := min(excess, widths[i]-minColumnWidth)
		widths[i] -= cut
		excess -= cut
	}
	return widths
}

func totalWidth(widths []int) int {
	total := len(tableLeftMargin)
	for _, w := range widths {
		total += w + tablePadding
	}
	return total
}

func (t *TableFormatter) separator(widths []int, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, totalWidth(widths)))
}

// formatCells pads or truncates each cell to its column width.
func formatCells(cells []string, widths []int) string {
	var builder strings.Builder
	builder.WriteString(tableLeftMargin)
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		builder.WriteString(fitCell(cell, w))
		if i < len(widths)-1 {
			builder.WriteString(strings.Repeat(" ", tablePadding))
		}
	}
	return strings.TrimRight(builder.String(), " ")
}

// fitCell truncates cell to width and pads it with spaces.
func fitCell(cell string, width int) string {
	if ansi.PrintableRuneWidth(cell) > width {
		cell = truncate.StringWithTail(cell, uint(width), truncationTail)
	}
	return cell + strings.Repeat(" ", max(0, width-ansi.PrintableRuneWidth(cell)))
}
