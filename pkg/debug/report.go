package debug

import (
	"maps"
	"slices"
	"strings"

	"github.com/yaklabco/gomdedit/pkg/langdetect"
	"github.com/yaklabco/gomdedit/pkg/markdown"
	"github.com/yaklabco/gomdedit/pkg/model"
	"github.com/yaklabco/gomdedit/pkg/schema"
)

// CodeBlock describes one code block of a report.
type CodeBlock struct {
	Pos      int    `json:"pos" yaml:"pos"`
	Declared string `json:"declared,omitempty" yaml:"declared,omitempty"`
	Guessed  string `json:"guessed" yaml:"guessed"`
	Lines    int    `json:"lines" yaml:"lines"`
}

// Heading is one entry of a report outline.
type Heading struct {
	Pos   int    `json:"pos" yaml:"pos"`
	Level int    `json:"level" yaml:"level"`
	Text  string `json:"text" yaml:"text"`
}

// Report summarizes the structure of a document.
type Report struct {
	Size       int            `json:"size" yaml:"size"`
	Bytes      int            `json:"bytes" yaml:"bytes"`
	Nodes      map[string]int `json:"nodes" yaml:"nodes"`
	Marks      map[string]int `json:"marks,omitempty" yaml:"marks,omitempty"`
	Outline    []Heading      `json:"outline,omitempty" yaml:"outline,omitempty"`
	CodeBlocks []CodeBlock    `json:"code_blocks,omitempty" yaml:"code_blocks,omitempty"`
	TasksDone  int            `json:"tasks_done" yaml:"tasks_done"`
	TasksTotal int            `json:"tasks_total" yaml:"tasks_total"`
	Words      int            `json:"words" yaml:"words"`
}

// NewReport builds a report for doc. Code blocks get a language guess
// from their content whether or not they declare one. Bytes is the length
// of the default Markdown serialization.
func NewReport(doc *model.Node) *Report {
	r := &Report{
		Size:  doc.Content.Size(),
		Bytes: len(markdown.NewSerializer().Serialize(doc)),
		Nodes: map[string]int{},
		Marks: map[string]int{},
	}
	doc.Descendants(func(node *model.Node, pos int, _ *model.Node, _ int) bool {
		r.Nodes[node.Type.Name]++
		for _, m := range node.Marks {
			r.Marks[m.Type.Name]++
		}
		switch node.Type.Name {
		case schema.Text:
			r.Words += len(strings.Fields(node.Text))
		case schema.Heading:
			r.Outline = append(r.Outline, Heading{
				Pos:   pos,
				Level: node.Attrs.Int(schema.AttrLevel),
				Text:  node.TextContent(),
			})
		case schema.CodeBlock:
			code := node.TextContent()
			r.CodeBlocks = append(r.CodeBlocks, CodeBlock{
				Pos:      pos,
				Declared: node.Attrs.String(schema.AttrParams),
				Guessed:  langdetect.Detect(code),
				Lines:    strings.Count(code, "\n") + 1,
			})
		case schema.TaskItem:
			r.TasksTotal++
			if node.Attrs.Bool(schema.AttrChecked) {
				r.TasksDone++
			}
		}
		return true
	})
	return r
}

// NodeNames returns the counted node type names in sorted order.
func (r *Report) NodeNames() []string {
	return slices.Sorted(maps.Keys(r.Nodes))
}

// MarkNames returns the counted mark names in sorted order.
func (r *Report) MarkNames() []string {
	return slices.Sorted(maps.Keys(r.Marks))
}
