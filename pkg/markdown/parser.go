package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/model"
	"github.com/yaklabco/gomdedit/pkg/schema"
)

//nolint:gochecknoglobals // compiled once
var taskMarkerRE = regexp.MustCompile(`^\[([ xX])\](?:[ \t]+|$)`)

// Parser turns Markdown text into documents of a Markdown schema.
// A Parser holds no per-call state and may be shared.
type Parser struct {
	schema *model.Schema
	logger *log.Logger
}

// NewParser creates a parser for s, which must define the base Markdown
// node and mark set.
func NewParser(s *model.Schema, opts ...Option) *Parser {
	o := buildOptions(opts)
	return &Parser{schema: s, logger: o.logger}
}

// Schema returns the schema documents are built against.
func (p *Parser) Schema() *model.Schema { return p.schema }

// Parse parses src. It never fails: when the tree cannot be assembled the
// result is a single paragraph holding src as literal text.
func (p *Parser) Parse(src string) *model.Node {
	doc, err := p.ParseStrict(src)
	if err != nil {
		p.logger.Warn("markdown parse failed, using literal text",
			logging.FieldError, err,
			logging.FieldBytes, len(src),
		)
		return p.Literal(src)
	}
	return doc
}

// ParseStrict parses src and returns an error wrapping ErrParseFailure when
// the assembled tree does not validate.
func (p *Parser) ParseStrict(src string) (doc *model.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("%w: %v", ErrParseFailure, r)
		}
	}()

	c := &converter{schema: p.schema}
	root := parseBlocks(src)
	children := c.blocks(root.children)
	if len(children) == 0 {
		children = []*model.Node{c.emptyParagraph()}
	}
	doc = c.create(p.schema.TopNode.Name, nil, children...)
	if c.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailure, c.err)
	}
	if err := model.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailure, err)
	}
	return doc, nil
}

// Literal returns a document holding text as one unformatted paragraph.
func (p *Parser) Literal(text string) *model.Node {
	para := &model.Node{Type: p.schema.Node(schema.Paragraph), Attrs: model.Attrs{}}
	if text != "" {
		para.Content = model.NewFragment(p.schema.Text(text))
	}
	return &model.Node{Type: p.schema.TopNode, Attrs: model.Attrs{}, Content: model.NewFragment(para)}
}

// converter builds model nodes from the block tree. The first error is
// kept and later calls become no-ops.
type converter struct {
	schema *model.Schema
	err    error
}

func (c *converter) create(name string, attrs model.Attrs, content ...*model.Node) *model.Node {
	if c.err != nil {
		return nil
	}
	n, err := c.schema.Create(name, attrs, content...)
	if err != nil {
		c.err = err
		return nil
	}
	return n
}

func (c *converter) emptyParagraph() *model.Node {
	return c.create(schema.Paragraph, nil)
}

func (c *converter) blocks(bs []*block) []*model.Node {
	var out []*model.Node
	for _, b := range bs {
		if b.kind == blockList && !b.ordered && c.schema.Node(schema.TaskList) != nil {
			out = append(out, c.bulletList(b)...)
			continue
		}
		if n := c.block(b); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (c *converter) block(b *block) *model.Node {
	switch b.kind {
	case blockQuote:
		children := c.blocks(b.children)
		if len(children) == 0 {
			children = []*model.Node{c.emptyParagraph()}
		}
		return c.create(schema.Blockquote, nil, children...)
	case blockList:
		items := make([]*model.Node, 0, len(b.children))
		for _, item := range b.children {
			items = append(items, c.item(schema.ListItem, nil, item.children))
		}
		if b.ordered {
			return c.create(schema.OrderedList, model.Attrs{schema.AttrOrder: b.start}, items...)
		}
		return c.create(schema.BulletList, nil, items...)
	case blockParagraph:
		return c.create(schema.Paragraph, nil, c.inline(strings.Join(b.lines, "\n"))...)
	case blockHeading:
		return c.create(schema.Heading, model.Attrs{schema.AttrLevel: b.level}, c.inline(b.lines[0])...)
	case blockFence:
		var content []*model.Node
		if code := strings.Join(b.lines, "\n"); code != "" {
			content = append(content, c.schema.Text(code))
		}
		return c.create(schema.CodeBlock, model.Attrs{schema.AttrParams: b.info}, content...)
	case blockRule:
		return c.create(schema.HorizontalRule, nil)
	case blockTable:
		return c.table(b)
	default:
		c.err = fmt.Errorf("unexpected block kind %d", b.kind)
		return nil
	}
}

// bulletList converts a bullet list, splitting runs of task items into
// task lists.
func (c *converter) bulletList(b *block) []*model.Node {
	var (
		out     []*model.Node
		run     []*model.Node
		runTask bool
	)
	flush := func() {
		if len(run) == 0 {
			return
		}
		name := schema.BulletList
		if runTask {
			name = schema.TaskList
		}
		out = append(out, c.create(name, nil, run...))
		run = nil
	}
	for _, item := range b.children {
		checked, task := taskMarker(item)
		if task != runTask {
			flush()
			runTask = task
		}
		if task {
			run = append(run, c.item(schema.TaskItem, model.Attrs{schema.AttrChecked: checked}, item.children))
		} else {
			run = append(run, c.item(schema.ListItem, nil, item.children))
		}
	}
	flush()
	return out
}

// taskMarker strips a leading "[ ]" or "[x]" from the first paragraph of
// item and reports whether it was there.
func taskMarker(item *block) (bool, bool) {
	if len(item.children) == 0 {
		return false, false
	}
	para := item.children[0]
	if para.kind != blockParagraph || len(para.lines) == 0 {
		return false, false
	}
	m := taskMarkerRE.FindStringSubmatch(para.lines[0])
	if m == nil {
		return false, false
	}
	para.lines[0] = para.lines[0][len(m[0]):]
	if para.lines[0] == "" && len(para.lines) > 1 {
		para.lines = para.lines[1:]
	}
	return m[1] != " ", true
}

func (c *converter) item(name string, attrs model.Attrs, children []*block) *model.Node {
	content := c.blocks(children)
	if len(content) == 0 || content[0] == nil || content[0].Type.Name != schema.Paragraph {
		content = append([]*model.Node{c.emptyParagraph()}, content...)
	}
	return c.create(name, attrs, content...)
}

func (c *converter) table(b *block) *model.Node {
	columns := len(b.rows[0])
	rows := make([]*model.Node, 0, len(b.rows))
	for i, row := range b.rows {
		cellType := schema.TableCell
		if i == 0 {
			cellType = schema.TableHeader
		}
		cells := make([]*model.Node, columns)
		for col := range columns {
			var text string
			if col < len(row) {
				text = row[col]
			}
			cells[col] = c.create(cellType, model.Attrs{schema.AttrAlignment: b.aligns[col]}, c.inline(text)...)
		}
		rows = append(rows, c.create(schema.TableRow, nil, cells...))
	}
	return c.create(schema.Table, nil, rows...)
}

func (c *converter) inline(src string) []*model.Node {
	if c.err != nil {
		return nil
	}
	return parseInline(c.schema, src)
}
