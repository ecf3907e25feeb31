package markdown_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/config"
	"github.com/yaklabco/gomdedit/pkg/markdown"
	"github.com/yaklabco/gomdedit/pkg/schema"
	. "github.com/yaklabco/gomdedit/pkg/schema/schematest"
)

func converterWith(mutate func(*config.MarkdownConfig)) *markdown.Converter {
	cfg := config.NewConfig()
	mutate(&cfg.Markdown)
	return markdown.NewConverter(S, config.NewStatic(cfg), markdown.WithLogger(logging.Discard()))
}

func TestConverter_TextToDoc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.MarkdownConfig)
		text   string
		parsed bool
	}{
		{"forced", func(*config.MarkdownConfig) {}, "# Title", true},
		{"disabled", func(m *config.MarkdownConfig) { m.Enabled = false }, "# Title", false},
		{"detected", func(m *config.MarkdownConfig) { m.Force = false }, "# Title", true},
		{"not detected", func(m *config.MarkdownConfig) { m.Force = false }, "plain words", false},
		{"goldmark detected", func(m *config.MarkdownConfig) {
			m.Force = false
			m.Detector = config.DetectorGoldmark
		}, "- item", true},
		{"detection off", func(m *config.MarkdownConfig) {
			m.Force = false
			m.AutoDetect = false
		}, "# Title", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := converterWith(tt.mutate).TextToDoc(tt.text)
			if tt.parsed {
				assert.NotEqual(t, schema.Paragraph, doc.Child(0).Type.Name)
				return
			}
			assert.True(t, Doc(P(T(tt.text))).Eq(doc), "got %s", doc)
		})
	}
}

func TestConverter_DocToText(t *testing.T) {
	t.Parallel()

	plain := Doc(P(T("a*b")))
	rich := Doc(H(1, T("x")))

	forced := converterWith(func(*config.MarkdownConfig) {})
	assert.Equal(t, `a\*b`, forced.DocToText(plain))

	unforced := converterWith(func(m *config.MarkdownConfig) { m.Force = false })
	assert.Equal(t, "a*b", unforced.DocToText(plain))
	assert.Equal(t, "# x", unforced.DocToText(rich))

	disabled := converterWith(func(m *config.MarkdownConfig) { m.Enabled = false })
	assert.Equal(t, "x", disabled.DocToText(rich))
}

func TestConverter_ReadsSourceEveryCall(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	src := config.SourceFunc(func() *config.Config { return cfg })
	c := markdown.NewConverter(S, src, markdown.WithLogger(logging.Discard()))

	assert.Equal(t, schema.Heading, c.TextToDoc("# x").Child(0).Type.Name)

	cfg = config.NewConfig()
	cfg.Markdown.Enabled = false
	assert.Equal(t, schema.Paragraph, c.TextToDoc("# x").Child(0).Type.Name)
}

func TestConverter_NilSourceUsesDefaults(t *testing.T) {
	t.Parallel()

	c := markdown.NewConverter(S, nil, markdown.WithLogger(logging.Discard()))
	assert.Equal(t, "**x**", c.DocToText(c.TextToDoc("**x**")))
	assert.NotNil(t, c.Parser())
	assert.NotNil(t, c.Serializer())
}
