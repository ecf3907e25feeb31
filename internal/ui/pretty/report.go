package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/yaklabco/gomdedit/pkg/debug"
)

const summaryDividerWidth = 40

// FormatReport renders a document report as a summary block followed by
// the outline and code block tables.
func (s *Styles) FormatReport(r *debug.Report, width int) string {
	var builder strings.Builder

	builder.WriteString(s.SummaryTitle.Render("Document"))
	builder.WriteString("\n")
	builder.WriteString(s.Dim.Render(strings.Repeat("-", summaryDividerWidth)))
	builder.WriteString("\n")

	builder.WriteString("  Size:    " + s.SummaryValue.Render(strconv.Itoa(r.Size)) + "\n")
	builder.WriteString("  Text:    " + s.SummaryValue.Render(humanize.Bytes(uint64(max(r.Bytes, 0)))) + "\n")
	builder.WriteString("  Words:   " + s.SummaryValue.Render(humanize.Comma(int64(r.Words))) + "\n")
	if r.TasksTotal > 0 {
		tasks := fmt.Sprintf("%d/%d done", r.TasksDone, r.TasksTotal)
		style := s.Warning
		if r.TasksDone == r.TasksTotal {
			style = s.Success
		}
		builder.WriteString("  Tasks:   " + style.Render(tasks) + "\n")
	}

	builder.WriteString("\n")
	builder.WriteString("  Nodes:\n")
	for _, name := range r.NodeNames() {
		builder.WriteString(fmt.Sprintf("    %-16s %s\n", name, s.SummaryValue.Render(strconv.Itoa(r.Nodes[name]))))
	}
	if marks := r.MarkNames(); len(marks) > 0 {
		builder.WriteString("  Marks:\n")
		for _, name := range marks {
			builder.WriteString(fmt.Sprintf("    %-16s %s\n", name, s.SummaryValue.Render(strconv.Itoa(r.Marks[name]))))
		}
	}

	table := NewTableFormatter(s, width)

	if len(r.Outline) > 0 {
		rows := make([][]string, 0, len(r.Outline))
		for _, h := range r.Outline {
			indent := strings.Repeat("  ", max(0, h.Level-1))
			rows = append(rows, []string{strconv.Itoa(h.Pos), "h" + strconv.Itoa(h.Level), indent + h.Text})
		}
		builder.WriteString("\n")
		builder.WriteString(s.SummaryTitle.Render("Outline"))
		builder.WriteString("\n")
		builder.WriteString(table.Format([]Column{{Title: "POS"}, {Title: "LEVEL"}, {Title: "HEADING", Flex: true}}, rows))
	}

	if len(r.CodeBlocks) > 0 {
		rows := make([][]string, 0, len(r.CodeBlocks))
		for _, cb := range r.CodeBlocks {
			declared := cb.Declared
			if declared == "" {
				declared = s.Dim.Render("-")
			}
			rows = append(rows, []string{strconv.Itoa(cb.Pos), declared, cb.Guessed, strconv.Itoa(cb.Lines)})
		}
		builder.WriteString("\n")
		builder.WriteString(s.SummaryTitle.Render("Code blocks"))
		builder.WriteString("\n")
		builder.WriteString(table.Format([]Column{{Title: "POS"}, {Title: "DECLARED"}, {Title: "GUESSED"}, {Title: "LINES"}}, rows))
	}

	return builder.String()
}

// FormatEvent renders one dispatch event as a single line.
func (s *Styles) FormatEvent(ev debug.Event, rejected bool) string {
	status := s.Applied.Render("applied")
	if rejected {
		status = s.Rejected.Render("rejected")
	}
	parts := []string{status}
	if ev.Origin != "" || ev.InputType != "" {
		parts = append(parts, s.Origin.Render(strings.Trim(ev.Origin+"/"+ev.InputType, "/")))
	}
	parts = append(parts, fmt.Sprintf("%d steps", len(ev.Steps)), fmt.Sprintf("size %d", ev.DocSize))
	if ev.Err != nil {
		parts = append(parts, s.Rejected.Render(ev.Err.Error()))
	}
	return strings.Join(parts, "  ")
}
