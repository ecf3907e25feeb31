package pretty_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/muesli/reflow/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdedit/internal/ui/pretty"
	"github.com/yaklabco/gomdedit/pkg/debug"
	. "github.com/yaklabco/gomdedit/pkg/schema/schematest"
)

func TestFormatTree(t *testing.T) {
	styles := pretty.NewStyles(false)
	tree := debug.Tree(Doc(H(2, T("Hi")), P(T("ab", Strong()))))

	got := styles.FormatTree(tree, 0)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "doc", lines[0])
	assert.Equal(t, "  heading @0/4 {level=2}", lines[1])
	assert.Equal(t, `    text @1/2 "Hi"`, lines[2])
	assert.Equal(t, "  paragraph @4/4", lines[3])
	assert.Equal(t, `    text @5/2 [strong] "ab"`, lines[4])
}

func TestFormatTree_TruncatesToWidth(t *testing.T) {
	styles := pretty.NewStyles(true)
	tree := debug.Tree(Doc(P(T(strings.Repeat("word ", 40)))))

	for _, line := range strings.Split(strings.TrimSuffix(styles.FormatTree(tree, 30), "\n"), "\n") {
		assert.LessOrEqual(t, ansi.PrintableRuneWidth(line), 30)
	}
	assert.Empty(t, styles.FormatTree(nil, 30))
}

func TestTableFormatter(t *testing.T) {
	styles := pretty.NewStyles(false)
	table := pretty.NewTableFormatter(styles, 30)

	got := table.Format(
		[]pretty.Column{{Title: "POS"}, {Title: "TEXT", Flex: true}},
		[][]string{{"1", "short"}, {"12", strings.Repeat("x", 60)}, {"3"}},
	)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, " POS   TEXT", lines[0])
	assert.Equal(t, " 1     short", lines[2])
	assert.True(t, strings.HasSuffix(lines[3], "..."))
	assert.Equal(t, " 3", lines[4])
	for _, line := range lines {
		assert.LessOrEqual(t, ansi.PrintableRuneWidth(line), 30)
	}

	assert.Empty(t, table.Format([]pretty.Column{{Title: "POS"}}, nil))
}

func TestFormatReport(t *testing.T) {
	styles := pretty.NewStyles(false)
	r := debug.NewReport(Doc(
		H(1, T("Title")),
		Pre("", "package main"),
		Tasks(Task(true, P(T("done")))),
	))

	got := styles.FormatReport(r, 80)
	assert.Contains(t, got, "Tasks:   1/1 done")
	assert.Contains(t, got, "Words:   4")
	assert.Regexp(t, `Text:    \d+ B`, got)
	assert.Contains(t, got, "Outline")
	assert.Contains(t, got, "Title")
	assert.Contains(t, got, "Code blocks")
	assert.Contains(t, got, "go")
	assert.Contains(t, got, "task_item")
}

func TestFormatEvent(t *testing.T) {
	styles := pretty.NewStyles(false)

	ev := debug.Event{Origin: "user", InputType: "insertText", Steps: []string{"replace"}, DocSize: 3}
	assert.Equal(t, "applied  user/insertText  1 steps  size 3", styles.FormatEvent(ev, false))

	ev = debug.Event{Origin: "command", Err: errors.New("vetoed")}
	assert.Equal(t, "rejected  command  0 steps  size 0  vetoed", styles.FormatEvent(ev, true))
}

func TestFormatDiff(t *testing.T) {
	styles := pretty.NewStyles(false)

	got, err := styles.FormatDiff("notes.md", "# T\n\n* a\n", "# T\n\n- a\n")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"diff --git a/notes.md b/notes.md",
		"--- a/notes.md",
		"+++ b/notes.md",
		"@@ -1,3 +1,3 @@",
		" # T",
		" ",
		"-* a",
		"+- a",
		"",
	}, "\n"), got)

	same, err := styles.FormatDiff("notes.md", "x\n", "x\n")
	require.NoError(t, err)
	assert.Empty(t, same)
}
