package markdown_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/gomdedit/pkg/markdown"
	"github.com/yaklabco/gomdedit/pkg/model"
	. "github.com/yaklabco/gomdedit/pkg/schema/schematest"
)

func TestDetectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text     string
		patterns bool
		goldmark bool
	}{
		{"plain words only", false, false},
		{"# Heading", true, true},
		{"- item", true, true},
		{"1. first", true, true},
		{"> quote", true, true},
		{"some **bold** text", true, true},
		{"a [link](http://x.y)", true, true},
		{"```\ncode\n```", true, true},
		{"inline `code`", true, true},
		{"| a | b |\n|---|---|\n| 1 | 2 |", false, true},
	}

	patterns := markdown.NewDetector(markdown.DetectorPatterns)
	gm := markdown.NewDetector(markdown.DetectorGoldmark)
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.patterns, patterns.LooksLikeMarkdown(tt.text), "patterns")
			assert.Equal(t, tt.goldmark, gm.LooksLikeMarkdown(tt.text), "goldmark")
		})
	}
}

func TestNewDetector_UnknownNameUsesPatterns(t *testing.T) {
	t.Parallel()

	assert.IsType(t, markdown.PatternDetector{}, markdown.NewDetector("bogus"))

	var calls int
	d := markdown.DetectorFunc(func(string) bool { calls++; return true })
	assert.True(t, d.LooksLikeMarkdown("x"))
	assert.Equal(t, 1, calls)
}

func TestIsSuitable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  *model.Node
		want bool
	}{
		{"plain paragraph", Doc(P(T("x"))), false},
		{"strike only", Doc(P(T("x", Strike()))), false},
		{"strong", Doc(P(T("x", Strong()))), true},
		{"link", Doc(P(T("x", Link("u", "")))), true},
		{"quote", Doc(Quote(P())), true},
		{"rule", Doc(HR()), true},
		{"ordered list", Doc(OL(1, LI(P()))), true},
		{"code block", Doc(Pre("", "x")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, markdown.IsSuitable(tt.doc))
		})
	}
}
