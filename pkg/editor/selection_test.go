package editor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdedit/pkg/editor"
	. "github.com/yaklabco/gomdedit/pkg/schema/schematest"
	"github.com/yaklabco/gomdedit/pkg/transform"
)

func TestSelectionBounds(t *testing.T) {
	t.Parallel()

	sel := editor.Range(5, 2)
	assert.Equal(t, 2, sel.From())
	assert.Equal(t, 5, sel.To())
	assert.False(t, sel.Empty())
	assert.True(t, editor.Cursor(3).Empty())
}

func TestSelectionMap(t *testing.T) {
	t.Parallel()

	tr := transform.New(Doc(P(T("abc"))))
	require.NoError(t, tr.InsertText("xy", 1, 1, nil))

	assert.Equal(t, editor.Range(3, 6), editor.Range(1, 4).Map(tr.Mapping))
}

func TestAtStartAndEnd(t *testing.T) {
	t.Parallel()

	doc := Doc(P(T("ab")), P(T("c")))
	assert.Equal(t, editor.Cursor(1), editor.AtStart(doc))
	assert.Equal(t, editor.Cursor(6), editor.AtEnd(doc))

	doc = Doc(HR(), P())
	assert.Equal(t, editor.Cursor(2), editor.AtStart(doc))
	assert.Equal(t, editor.Cursor(2), editor.AtEnd(doc))
}

func TestMove(t *testing.T) {
	t.Parallel()

	doc := Doc(P(T("ab")), P(T("c")))
	tests := []struct {
		name  string
		from  int
		delta int
		want  int
	}{
		{"within text", 1, 1, 2},
		{"into next block", 3, 1, 5},
		{"into previous block", 5, -1, 3},
		{"stops at start", 1, -5, 1},
		{"stops at end", 6, 3, 6},
		{"zero", 2, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, editor.Cursor(tt.want), editor.Move(doc, editor.Cursor(tt.from), tt.delta))
		})
	}
}
