// Package schema defines the Markdown document schema: a base node and mark
// set plus additive extensions for task lists, tables and extra inline marks.
package schema

import (
	"sync"

	"github.com/yaklabco/gomdedit/pkg/model"
)

// Node type names.
const (
	Doc            = "doc"
	Paragraph      = "paragraph"
	Blockquote     = "blockquote"
	HorizontalRule = "horizontal_rule"
	Heading        = "heading"
	CodeBlock      = "code_block"
	OrderedList    = "ordered_list"
	BulletList     = "bullet_list"
	ListItem       = "list_item"
	Text           = "text"
	Image          = "image"
	HardBreak      = "hard_break"
	TaskList       = "task_list"
	TaskItem       = "task_item"
	Table          = "table"
	TableRow       = "table_row"
	TableCell      = "table_cell"
	TableHeader    = "table_header"
)

// Mark type names.
const (
	Link          = "link"
	Em            = "em"
	Strong        = "strong"
	Code          = "code"
	Strikethrough = "strikethrough"
	Underline     = "underline"
	Highlight     = "highlight"
)

// Groups shared by several types.
const (
	GroupBlock      = "block"
	GroupInline     = "inline"
	GroupFormatting = "formatting"
)

// Attribute names.
const (
	AttrLevel     = "level"
	AttrParams    = "params"
	AttrOrder     = "order"
	AttrSrc       = "src"
	AttrAlt       = "alt"
	AttrTitle     = "title"
	AttrHref      = "href"
	AttrChecked   = "checked"
	AttrAlignment = "alignment"
)

// MaxHeadingLevel is the deepest heading level.
const MaxHeadingLevel = 6

// Alignments accepted by table cells.
//
//nolint:gochecknoglobals // fixed enum
var Alignments = []string{"", "left", "center", "right"}

// Extension adds types to a builder without changing existing ones.
type Extension func(b *model.Builder)

// Base defines the core CommonMark node and mark set.
func Base(b *model.Builder) {
	b.DefineNodeType(Doc, "block+", nil)
	b.DefineNodeType(Paragraph, "inline*", nil, model.InGroup(GroupBlock))
	b.DefineNodeType(Blockquote, "block+", nil, model.InGroup(GroupBlock))
	b.DefineNodeType(HorizontalRule, "", nil, model.InGroup(GroupBlock))
	b.DefineNodeType(Heading, "inline*", map[string]model.AttrSpec{
		AttrLevel: {Kind: model.AttrInt, Default: 1, Min: 1, Max: MaxHeadingLevel},
	}, model.InGroup(GroupBlock))
	b.DefineNodeType(CodeBlock, "text*", map[string]model.AttrSpec{
		AttrParams: {Kind: model.AttrString, Default: ""},
	}, model.InGroup(GroupBlock), model.AllowMarks(""), model.AsCode())
	b.DefineNodeType(OrderedList, "list_item+", map[string]model.AttrSpec{
		AttrOrder: {Kind: model.AttrInt, Default: 1},
	}, model.InGroup(GroupBlock))
	b.DefineNodeType(BulletList, "list_item+", nil, model.InGroup(GroupBlock))
	b.DefineNodeType(ListItem, "paragraph block*", nil)
	b.DefineNodeType(Text, "", nil, model.InGroup(GroupInline), model.AsInline())
	b.DefineNodeType(Image, "", map[string]model.AttrSpec{
		AttrSrc:   {Kind: model.AttrString},
		AttrAlt:   {Kind: model.AttrString, Default: ""},
		AttrTitle: {Kind: model.AttrString, Default: ""},
	}, model.InGroup(GroupInline), model.AsInline())
	b.DefineNodeType(HardBreak, "", nil, model.InGroup(GroupInline), model.AsInline())

	b.DefineMarkType(Link, map[string]model.AttrSpec{
		AttrHref:  {Kind: model.AttrString},
		AttrTitle: {Kind: model.AttrString, Default: ""},
	}, "", model.NonInclusive())
	b.DefineMarkType(Em, nil, "", model.MarkGroup(GroupFormatting))
	b.DefineMarkType(Strong, nil, "", model.MarkGroup(GroupFormatting))
	b.DefineMarkType(Code, nil, GroupFormatting+" "+Code, model.NonInclusive())
}

// TaskLists adds task_list and task_item.
func TaskLists(b *model.Builder) {
	b.DefineNodeType(TaskList, "task_item+", nil, model.InGroup(GroupBlock))
	b.DefineNodeType(TaskItem, "paragraph block*", map[string]model.AttrSpec{
		AttrChecked: {Kind: model.AttrBool, Default: false},
	})
}

// StrikethroughMark adds the strikethrough mark.
func StrikethroughMark(b *model.Builder) {
	b.DefineMarkType(Strikethrough, nil, "", model.MarkGroup(GroupFormatting))
}

// UnderlineMark adds the underline mark.
func UnderlineMark(b *model.Builder) {
	b.DefineMarkType(Underline, nil, "", model.MarkGroup(GroupFormatting))
}

// HighlightMark adds the highlight mark.
func HighlightMark(b *model.Builder) {
	b.DefineMarkType(Highlight, nil, "", model.MarkGroup(GroupFormatting))
}

// Tables adds table, table_row, table_cell and table_header.
func Tables(b *model.Builder) {
	cellAttrs := map[string]model.AttrSpec{
		AttrAlignment: {Kind: model.AttrString, Default: "", Enum: Alignments},
	}
	b.DefineNodeType(Table, "table_row+", nil, model.InGroup(GroupBlock))
	b.DefineNodeType(TableRow, "(table_cell | table_header)+", nil)
	b.DefineNodeType(TableCell, "inline*", cellAttrs)
	b.DefineNodeType(TableHeader, "inline*", cellAttrs)
}

// DefaultExtensions are layered onto Base by New.
//
//nolint:gochecknoglobals // fixed registration order
var DefaultExtensions = []Extension{TaskLists, StrikethroughMark, UnderlineMark, HighlightMark, Tables}

// New builds a schema from Base followed by the given extensions.
func New(extensions ...Extension) (*model.Schema, error) {
	b := model.NewBuilder(Doc)
	Base(b)
	for _, ext := range extensions {
		ext(b)
	}
	return b.Build()
}

//nolint:gochecknoglobals // lazily built shared schema
var (
	markdownOnce   sync.Once
	markdownSchema *model.Schema
)

// Markdown returns the shared schema with every default extension.
func Markdown() *model.Schema {
	markdownOnce.Do(func() {
		s, err := New(DefaultExtensions...)
		if err != nil {
			panic("schema: building markdown schema: " + err.Error())
		}
		markdownSchema = s
	})
	return markdownSchema
}

// EmptyDoc returns the canonical empty document: one empty paragraph.
func EmptyDoc(s *model.Schema) *model.Node {
	para := &model.Node{Type: s.Node(Paragraph), Attrs: model.Attrs{}}
	return &model.Node{Type: s.TopNode, Attrs: model.Attrs{}, Content: model.NewFragment(para)}
}
