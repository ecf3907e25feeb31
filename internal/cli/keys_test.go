package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdedit/pkg/model"
	"github.com/yaklabco/gomdedit/pkg/schema"
)

func TestParseKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script string
		want   []key
	}{
		{"text", "aé", []key{{kind: keyText, text: "a"}, {kind: keyText, text: "é"}}},
		{"newline is enter", "a\n", []key{{kind: keyText, text: "a"}, {kind: keyEnter, name: "enter"}}},
		{"named", "{bs}{undo}", []key{{kind: keyBackspace, name: "bs"}, {kind: keyUndo, name: "undo"}}},
		{"literal brace", "{{x", []key{{kind: keyText, text: "{"}, {kind: keyText, text: "x"}}},
		{"count", "{left:3}", []key{{kind: keyMove, n: -3, name: "left"}}},
		{"mark", "{bold}", []key{{kind: keyMark, name: schema.Strong}}},
		{"heading", "{h3}", []key{{kind: keyBlock, name: schema.Heading, attrs: model.Attrs{schema.AttrLevel: 3}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseKeys(tt.script)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseKeysErrors(t *testing.T) {
	t.Parallel()

	for _, script := range []string{"{left", "{nope}", "{bold:2}", "{right:x}", "{h7}"} {
		_, err := parseKeys(script)
		require.ErrorIs(t, err, ErrUsage, script)
	}
}

func TestKeyString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"a"`, key{kind: keyText, text: "a"}.String())
	assert.Equal(t, "{enter}", key{kind: keyEnter, name: "enter"}.String())
}
