// Package schematest provides terse document constructors for tests.
// Every constructor panics on a schema violation.
package schematest

import (
	"github.com/yaklabco/gomdedit/pkg/model"
	"github.com/yaklabco/gomdedit/pkg/schema"
)

// S is the schema every constructor builds against.
//
//nolint:gochecknoglobals // test fixture
var S = schema.Markdown()

func node(name string, attrs model.Attrs, children ...*model.Node) *model.Node {
	n, err := S.Create(name, attrs, children...)
	if err != nil {
		panic(err)
	}
	return n
}

func mark(name string, attrs model.Attrs) model.Mark {
	m, err := S.Mk(name, attrs)
	if err != nil {
		panic(err)
	}
	return m
}

// Doc builds a document.
func Doc(blocks ...*model.Node) *model.Node { return node(schema.Doc, nil, blocks...) }

// P builds a paragraph.
func P(inline ...*model.Node) *model.Node { return node(schema.Paragraph, nil, inline...) }

// H builds a heading of the given level.
func H(level int, inline ...*model.Node) *model.Node {
	return node(schema.Heading, model.Attrs{schema.AttrLevel: level}, inline...)
}

// Quote builds a blockquote.
func Quote(blocks ...*model.Node) *model.Node { return node(schema.Blockquote, nil, blocks...) }

// HR builds a horizontal rule.
func HR() *model.Node { return node(schema.HorizontalRule, nil) }

// Pre builds a code block.
func Pre(params, code string) *model.Node {
	var content []*model.Node
	if code != "" {
		content = append(content, S.Text(code))
	}
	return node(schema.CodeBlock, model.Attrs{schema.AttrParams: params}, content...)
}

// UL builds a bullet list.
func UL(items ...*model.Node) *model.Node { return node(schema.BulletList, nil, items...) }

// OL builds an ordered list starting at order.
func OL(order int, items ...*model.Node) *model.Node {
	return node(schema.OrderedList, model.Attrs{schema.AttrOrder: order}, items...)
}

// LI builds a list item.
func LI(blocks ...*model.Node) *model.Node { return node(schema.ListItem, nil, blocks...) }

// Tasks builds a task list.
func Tasks(items ...*model.Node) *model.Node { return node(schema.TaskList, nil, items...) }

// Task builds a task item.
func Task(checked bool, blocks ...*model.Node) *model.Node {
	return node(schema.TaskItem, model.Attrs{schema.AttrChecked: checked}, blocks...)
}

// Table builds a table.
func Table(rows ...*model.Node) *model.Node { return node(schema.Table, nil, rows...) }

// TR builds a table row.
func TR(cells ...*model.Node) *model.Node { return node(schema.TableRow, nil, cells...) }

// TH builds a header cell.
func TH(align string, inline ...*model.Node) *model.Node {
	return node(schema.TableHeader, model.Attrs{schema.AttrAlignment: align}, inline...)
}

// TD builds a data cell.
func TD(align string, inline ...*model.Node) *model.Node {
	return node(schema.TableCell, model.Attrs{schema.AttrAlignment: align}, inline...)
}

// Img builds an image.
func Img(src, alt, title string) *model.Node {
	return node(schema.Image, model.Attrs{schema.AttrSrc: src, schema.AttrAlt: alt, schema.AttrTitle: title})
}

// BR builds a hard break.
func BR() *model.Node { return node(schema.HardBreak, nil) }

// T builds a text node carrying the given marks.
func T(text string, marks ...model.Mark) *model.Node { return S.Text(text, marks...) }

// Strong returns a strong mark.
func Strong() model.Mark { return mark(schema.Strong, nil) }

// Em returns an em mark.
func Em() model.Mark { return mark(schema.Em, nil) }

// Code returns a code mark.
func Code() model.Mark { return mark(schema.Code, nil) }

// Strike returns a strikethrough mark.
func Strike() model.Mark { return mark(schema.Strikethrough, nil) }

// Underline returns an underline mark.
func Underline() model.Mark { return mark(schema.Underline, nil) }

// Highlight returns a highlight mark.
func Highlight() model.Mark { return mark(schema.Highlight, nil) }

// Link returns a link mark.
func Link(href, title string) model.Mark {
	return mark(schema.Link, model.Attrs{schema.AttrHref: href, schema.AttrTitle: title})
}
