package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdedit/pkg/model"
	"github.com/yaklabco/gomdedit/pkg/schema"
)

func TestMarkdownSchema(t *testing.T) {
	t.Parallel()

	s := schema.Markdown()
	for _, name := range []string{"doc", "paragraph", "heading", "code_block", "task_item", "table_header", "image"} {
		assert.NotNil(t, s.Node(name), name)
	}
	for _, name := range []string{"link", "em", "strong", "code", "strikethrough", "underline", "highlight"} {
		assert.NotNil(t, s.Mark(name), name)
	}

	code := s.Mark(schema.Code)
	assert.True(t, code.Excludes(s.Mark(schema.Strong)))
	assert.True(t, code.Excludes(s.Mark(schema.Highlight)), "groups resolve across extensions")
	assert.False(t, code.Excludes(s.Mark(schema.Link)))
	assert.False(t, s.Mark(schema.Em).Excludes(s.Mark(schema.Strong)))

	assert.True(t, s.Node(schema.CodeBlock).IsCode())
	assert.False(t, s.Node(schema.CodeBlock).AllowsMarkType(s.Mark(schema.Em)))
}

func TestExtensionsAreAdditive(t *testing.T) {
	t.Parallel()

	base, err := schema.New()
	require.NoError(t, err)
	assert.Nil(t, base.Node(schema.TaskItem))
	assert.Nil(t, base.Mark(schema.Strikethrough))

	extended, err := schema.New(schema.TaskLists, schema.StrikethroughMark)
	require.NoError(t, err)
	require.NotNil(t, extended.Node(schema.TaskItem))
	require.NotNil(t, extended.Mark(schema.Strikethrough))
	assert.Equal(t, base.Node(schema.Heading).Spec.Content, extended.Node(schema.Heading).Spec.Content)
}

func TestEmptyDoc(t *testing.T) {
	t.Parallel()

	doc := schema.EmptyDoc(schema.Markdown())
	require.NoError(t, model.Validate(doc))
	assert.Equal(t, 2, doc.Content.Size())
}
