package markdown

import (
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/gomdedit/pkg/model"
	"github.com/yaklabco/gomdedit/pkg/schema"
)

// Detector decides whether text should be read as Markdown.
type Detector interface {
	LooksLikeMarkdown(text string) bool
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(text string) bool

// LooksLikeMarkdown implements Detector.
func (f DetectorFunc) LooksLikeMarkdown(text string) bool { return f(text) }

// Detector names accepted by NewDetector.
const (
	DetectorPatterns = "patterns"
	DetectorGoldmark = "goldmark"
)

// NewDetector returns the detector called name. Unknown names select the
// pattern detector.
//
//nolint:ireturn // callers choose the policy by name
func NewDetector(name string) Detector {
	if name == DetectorGoldmark {
		return NewGoldmarkDetector()
	}
	return PatternDetector{}
}

//nolint:gochecknoglobals // compiled once
var markdownPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^#+ .*$`),
	regexp.MustCompile(`\*\*.*\*\*`),
	regexp.MustCompile(`\*.*\*`),
	regexp.MustCompile(`\[.*\]\(.*\)`),
	regexp.MustCompile(`(?m)^- .*$`),
	regexp.MustCompile(`(?m)^[0-9]+\. .*$`),
	regexp.MustCompile("(?m)^```[\\s\\S]*?```$"),
	regexp.MustCompile("`[^`]*`"),
	regexp.MustCompile(`(?m)^> .*$`),
	regexp.MustCompile(`!\[.*\]\(.*\)`),
	regexp.MustCompile(`(?m)^---$`),
	regexp.MustCompile(`(?m)^===$`),
}

// PatternDetector reports Markdown when any of a fixed set of syntax
// patterns occurs in the text.
type PatternDetector struct{}

// LooksLikeMarkdown implements Detector.
func (PatternDetector) LooksLikeMarkdown(text string) bool {
	for _, re := range markdownPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// GoldmarkDetector parses the text as GitHub Flavored Markdown and reports
// Markdown when the result holds anything beyond plain paragraphs.
type GoldmarkDetector struct {
	md goldmark.Markdown
}

// NewGoldmarkDetector creates a GFM detector.
func NewGoldmarkDetector() *GoldmarkDetector {
	return &GoldmarkDetector{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

// LooksLikeMarkdown implements Detector.
func (d *GoldmarkDetector) LooksLikeMarkdown(src string) bool {
	doc := d.md.Parser().Parse(text.NewReader([]byte(src)), parser.WithContext(parser.NewContext()))
	found := false
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if isMarkdownSignal(n) {
			found = true
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return found
}

func isMarkdownSignal(n ast.Node) bool {
	switch n.(type) {
	case *ast.Heading, *ast.Blockquote, *ast.FencedCodeBlock, *ast.List,
		*ast.ThematicBreak, *ast.Emphasis, *ast.CodeSpan, *ast.Link, *ast.Image,
		*east.Strikethrough, *east.Table, *east.TaskCheckBox:
		return true
	default:
		return false
	}
}

// IsSuitable reports whether doc uses structure that only Markdown can
// carry: a heading, quote, code block, list or rule, or a strong, em, code
// or link mark.
func IsSuitable(doc *model.Node) bool {
	suitable := false
	doc.Descendants(func(node *model.Node, _ int, _ *model.Node, _ int) bool {
		if suitable {
			return false
		}
		switch node.Type.Name {
		case schema.Heading, schema.Blockquote, schema.CodeBlock,
			schema.BulletList, schema.OrderedList, schema.HorizontalRule:
			suitable = true
			return false
		}
		for _, m := range node.Marks {
			switch m.Type.Name {
			case schema.Strong, schema.Em, schema.Code, schema.Link:
				suitable = true
				return false
			}
		}
		return true
	})
	return suitable
}
