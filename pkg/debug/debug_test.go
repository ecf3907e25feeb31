package debug_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/gomdedit/pkg/debug"
	. "github.com/yaklabco/gomdedit/pkg/schema/schematest"
)

func TestRecorder(t *testing.T) {
	t.Parallel()

	r := debug.NewRecorder(2)
	for i := range 3 {
		r.TransactionApplied(debug.Event{DocSize: i})
	}
	r.TransactionRejected(debug.Event{Err: errors.New("vetoed")})

	applied := r.Applied()
	require.Len(t, applied, 2)
	assert.Equal(t, 1, applied[0].DocSize)
	assert.Equal(t, 2, applied[1].DocSize)
	require.Len(t, r.Rejected(), 1)

	r.Reset()
	assert.Empty(t, r.Applied())
	assert.Empty(t, r.Rejected())

	var d debug.Debugger = debug.Nop{}
	d.TransactionApplied(debug.Event{})
	d = debug.NewRecorder(0)
	d.TransactionApplied(debug.Event{})
}

func TestExport(t *testing.T) {
	t.Parallel()

	doc := Doc(H(1, T("Hi")), P(T("a", Strong()), T("b")))
	snap := debug.Export(doc, nil)

	assert.Equal(t, "# Hi\n\n**a**b", snap.Markdown)
	assert.Equal(t, doc.Content.Size(), snap.Size)
	require.Len(t, snap.Tree.Children, 2)

	para := snap.Tree.Children[1]
	assert.Equal(t, "paragraph", para.Type)
	assert.Equal(t, 4, para.Pos)
	require.Len(t, para.Children, 2)
	assert.Equal(t, 5, para.Children[0].Pos)
	assert.Equal(t, []string{"strong"}, para.Children[0].Marks)
	assert.Equal(t, 6, para.Children[1].Pos)

	heading := snap.Tree.Find("heading")
	require.Len(t, heading, 1)
	assert.Equal(t, []string{"level"}, heading[0].AttrNames())
}

func TestReport(t *testing.T) {
	t.Parallel()

	doc := Doc(
		H(1, T("Title")),
		H(2, T("Part one")),
		Pre("", "package main\n\nfunc main() {}"),
		Tasks(Task(true, P(T("done"))), Task(false, P(T("todo item")))),
		P(T("some "), T("em", Em())),
	)
	r := debug.NewReport(doc)

	require.Len(t, r.Outline, 2)
	assert.Equal(t, 2, r.Outline[1].Level)
	assert.Equal(t, "Part one", r.Outline[1].Text)

	require.Len(t, r.CodeBlocks, 1)
	assert.Equal(t, "go", r.CodeBlocks[0].Guessed)
	assert.Equal(t, "", r.CodeBlocks[0].Declared)
	assert.Equal(t, 3, r.CodeBlocks[0].Lines)

	assert.Equal(t, 1, r.TasksDone)
	assert.Equal(t, 2, r.TasksTotal)
	assert.Equal(t, 2, r.Nodes["heading"])
	assert.Equal(t, 1, r.Marks["em"])
	assert.Equal(t, []string{"em"}, r.MarkNames())
	assert.Contains(t, r.NodeNames(), "task_item")
}

func TestEncode(t *testing.T) {
	t.Parallel()

	r := debug.NewReport(Doc(H(3, T("x"))))

	var buf bytes.Buffer
	require.NoError(t, debug.Encode(&buf, r, debug.FormatJSON, true))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "outline")

	buf.Reset()
	require.NoError(t, debug.Encode(&buf, r, debug.FormatYAML, false))
	decoded = nil
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "nodes")

	require.Error(t, debug.Encode(&buf, r, debug.FormatText, false))
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]debug.Format{
		"":     debug.FormatText,
		"text": debug.FormatText,
		"json": debug.FormatJSON,
		"yml":  debug.FormatYAML,
	} {
		got, err := debug.ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.True(t, got.IsValid())
	}
	_, err := debug.ParseFormat("xml")
	require.Error(t, err)
	assert.False(t, debug.Format("xml").IsValid())
}
