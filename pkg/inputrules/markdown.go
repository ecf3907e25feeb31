package inputrules

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yaklabco/gomdedit/pkg/model"
	"github.com/yaklabco/gomdedit/pkg/schema"
	"github.com/yaklabco/gomdedit/pkg/transform"
)

// Patterns of the Markdown rule set.
//
//nolint:gochecknoglobals // compiled once
var (
	headingRE     = regexp.MustCompile(`^(#{1,6})\s$`)
	codeFenceRE   = regexp.MustCompile("^```(?P<lang>[a-z]*)?\\s$")
	blockquoteRE  = regexp.MustCompile(`^\s*>\s$`)
	bulletListRE  = regexp.MustCompile(`^\s*([-+*])\s$`)
	orderedListRE = regexp.MustCompile(`^(\d+)\.\s$`)
	taskRE        = regexp.MustCompile(`^\s*\[([ xX])\]\s$`)
	tableRE       = regexp.MustCompile(`^\|(?P<cells>.+)\|\s$`)
	ruleRE        = regexp.MustCompile(`^[-*_]{3,}$`)

	imageRE     = regexp.MustCompile(`!\[(?P<alt>[^\]]*)\]\((?P<src>[^)\s]+)(?:\s+"(?P<title>[^"]*)")?\)$`)
	linkRE      = regexp.MustCompile(`\[(?P<text>[^\]]+)\]\((?P<href>[^)\s]+)(?:\s+"(?P<title>[^"]*)")?\)$`)
	codeRE      = regexp.MustCompile("(?P<lead>^|[^`])`(?P<text>[^`]+)`$")
	strongRE    = regexp.MustCompile(`\*\*(?P<text>[^*]+)\*\*$`)
	underlineRE = regexp.MustCompile(`__(?P<text>[^_]+)__$`)
	emStarRE    = regexp.MustCompile(`(?P<lead>^|[^*])\*(?P<text>[^*]+)\*$`)
	emUnderRE   = regexp.MustCompile(`(?P<lead>^|\W)_(?P<text>[^_]+)_$`)
	strikeRE    = regexp.MustCompile(`~~(?P<text>[^~]+)~~$`)
	highlightRE = regexp.MustCompile(`==(?P<text>[^=]+)==$`)
)

// MarkdownOptions tunes the Markdown rule set.
type MarkdownOptions struct {
	// OrderedJoin decides when a new ordered list continues the one before
	// it. Nil uses JoinContinuesOrder.
	OrderedJoin JoinPolicy

	// BulletJoin decides when a new bullet list continues the one before
	// it. Nil uses JoinAlways.
	BulletJoin JoinPolicy
}

// Markdown returns the Markdown rule set for s in priority order. Rules
// whose types s lacks are left out.
func Markdown(s *model.Schema, opts MarkdownOptions) []*Rule {
	if opts.OrderedJoin == nil {
		opts.OrderedJoin = JoinContinuesOrder(schema.AttrOrder)
	}
	if opts.BulletJoin == nil {
		opts.BulletJoin = JoinAlways
	}

	var rules []*Rule
	add := func(r *Rule) { rules = append(rules, r) }
	node := s.Node
	mark := s.Mark

	if nt := node(schema.Heading); nt != nil {
		add(TextblockType("heading", headingRE, nt, func(m Match) (model.Attrs, bool) {
			return model.Attrs{schema.AttrLevel: len(m.Groups[1])}, true
		}))
	}
	if nt := node(schema.CodeBlock); nt != nil {
		add(TextblockType("code_block", codeFenceRE, nt, func(m Match) (model.Attrs, bool) {
			return model.Attrs{schema.AttrParams: m.Group("lang")}, true
		}))
	}
	if nt := node(schema.Blockquote); nt != nil {
		add(Wrapping("blockquote", blockquoteRE, WrapSpec{Type: nt}))
	}
	if nt := node(schema.BulletList); nt != nil {
		add(Wrapping("bullet_list", bulletListRE, WrapSpec{
			Type: nt,
			Item: node(schema.ListItem),
			Join: opts.BulletJoin,
		}))
	}
	if nt := node(schema.OrderedList); nt != nil {
		add(Wrapping("ordered_list", orderedListRE, WrapSpec{
			Type: nt,
			Item: node(schema.ListItem),
			Attrs: func(m Match) (model.Attrs, bool) {
				n, err := strconv.Atoi(m.Groups[1])
				return model.Attrs{schema.AttrOrder: n}, err == nil
			},
			Join: opts.OrderedJoin,
		}))
	}
	if node(schema.TaskList) != nil {
		add(Custom("task_item", taskRE, taskItemHandler))
	}
	if node(schema.Table) != nil {
		add(Custom("table", tableRE, tableHandler))
	}
	if node(schema.HorizontalRule) != nil {
		add(Custom("horizontal_rule", ruleRE, horizontalRuleHandler))
	}

	if node(schema.Image) != nil {
		add(NodeRule("image", imageRE, func(s *model.Schema, m Match) (*model.Node, error) {
			return s.Create(schema.Image, model.Attrs{
				schema.AttrSrc:   m.Group("src"),
				schema.AttrAlt:   m.Group("alt"),
				schema.AttrTitle: m.Group("title"),
			})
		}))
	}
	if mt := mark(schema.Link); mt != nil {
		add(MarkRule("link", linkRE, mt, func(m Match) (model.Attrs, bool) {
			return model.Attrs{schema.AttrHref: m.Group("href"), schema.AttrTitle: m.Group("title")}, true
		}))
	}
	for _, r := range []struct {
		name    string
		pattern *regexp.Regexp
		mark    string
	}{
		{"code", codeRE, schema.Code},
		{"strong", strongRE, schema.Strong},
		{"underline", underlineRE, schema.Underline},
		{"em", emStarRE, schema.Em},
		{"em_underscore", emUnderRE, schema.Em},
		{"strikethrough", strikeRE, schema.Strikethrough},
		{"highlight", highlightRE, schema.Highlight},
	} {
		if mt := mark(r.mark); mt != nil {
			add(MarkRule(r.name, r.pattern, mt, nil))
		}
	}
	return rules
}

// taskItemHandler turns the line into a task item. A paragraph that opens
// a bullet list item converts that item, splitting the list around it;
// any other paragraph is wrapped in a new task list.
func taskItemHandler(ctx *Context, m Match) error {
	if !blockStart(ctx, m) {
		return nil
	}
	s := ctx.Schema()
	taskList, taskItem := s.Node(schema.TaskList), s.Node(schema.TaskItem)
	attrs := model.Attrs{schema.AttrChecked: m.Groups[1] != " "}
	tr := ctx.Tr
	d := ctx.Pos.Depth
	before := ctx.Pos.Before(d)

	if err := tr.Delete(m.From, m.To); err != nil {
		return err
	}
	rp, err := tr.Doc.Resolve(m.From)
	if err != nil {
		return err
	}

	var listStart int
	if d >= 2 && rp.Node(d-1).Type.Name == schema.ListItem && rp.Index(d-1) == 0 &&
		rp.Node(d-2).Type.Name == schema.BulletList {
		list, index := rp.Node(d-2), rp.Index(d-2)
		task, err := taskItem.Create(attrs, rp.Node(d-1).Content.Children()...)
		if err != nil {
			return err
		}
		items := list.Content.Children()
		var nodes []*model.Node
		if index > 0 {
			nodes = append(nodes, list.Copy(model.NewFragment(items[:index]...)))
		}
		wrapped, err := taskList.Create(nil, task)
		if err != nil {
			return err
		}
		nodes = append(nodes, wrapped)
		if index+1 < len(items) {
			nodes = append(nodes, list.Copy(model.NewFragment(items[index+1:]...)))
		}
		start := rp.Before(d - 2)
		if err := tr.ReplaceWith(start, rp.After(d-2), nodes...); err != nil {
			return err
		}
		listStart = start
		if index > 0 {
			listStart += nodes[0].NodeSize()
		}
	} else {
		after := before + tr.Doc.NodeAt(before).NodeSize()
		if err := tr.Wrap(before, after,
			transform.NodeSpec{Type: taskList},
			transform.NodeSpec{Type: taskItem, Attrs: attrs},
		); err != nil {
			return err
		}
		listStart = before
	}
	listEnd := listStart + tr.Doc.NodeAt(listStart).NodeSize()
	ctx.Cursor = listStart + 3

	if canJoinTasks(tr.Doc, listEnd) {
		if err := tr.Join(listEnd); err != nil {
			return err
		}
	}
	if canJoinTasks(tr.Doc, listStart) {
		if err := tr.Join(listStart); err != nil {
			return err
		}
		ctx.Cursor -= 2
	}
	return nil
}

func canJoinTasks(doc *model.Node, pos int) bool {
	rp, err := doc.Resolve(pos)
	if err != nil {
		return false
	}
	before, after := rp.NodeBefore(), rp.NodeAfter()
	return before != nil && after != nil &&
		before.Type.Name == schema.TaskList && after.Type.Name == schema.TaskList
}

// tableHandler turns "|a|b| " into a table with a header row holding the
// cells and one empty data row.
func tableHandler(ctx *Context, m Match) error {
	if !blockStart(ctx, m) || ctx.Pos.Parent().Type.Name != schema.Paragraph {
		return nil
	}
	s := ctx.Schema()
	parts := strings.Split(m.Group("cells"), "|")
	header := make([]*model.Node, len(parts))
	data := make([]*model.Node, len(parts))
	for i, part := range parts {
		var content []*model.Node
		if text := strings.TrimSpace(part); text != "" {
			content = append(content, s.Text(text))
		}
		var err error
		if header[i], err = s.Create(schema.TableHeader, nil, content...); err != nil {
			return err
		}
		if data[i], err = s.Create(schema.TableCell, nil); err != nil {
			return err
		}
	}
	headerRow, err := s.Create(schema.TableRow, nil, header...)
	if err != nil {
		return err
	}
	dataRow, err := s.Create(schema.TableRow, nil, data...)
	if err != nil {
		return err
	}
	table, err := s.Create(schema.Table, nil, headerRow, dataRow)
	if err != nil {
		return err
	}

	nodes := []*model.Node{table}
	block := ctx.Pos.Parent()
	if rest := block.Content.Cut(ctx.Pos.ParentOffset, block.Content.Size()); rest.Size() > 0 {
		nodes = append(nodes, block.Copy(rest))
	}
	d := ctx.Pos.Depth
	start := ctx.Pos.Before(d)
	if err := ctx.Tr.ReplaceWith(start, ctx.Pos.After(d), nodes...); err != nil {
		return err
	}
	ctx.Cursor = start + headerRow.NodeSize() + 3
	return nil
}

// horizontalRuleHandler replaces a paragraph holding only "---" with a
// rule followed by an empty paragraph.
func horizontalRuleHandler(ctx *Context, m Match) error {
	block := ctx.Pos.Parent()
	if !blockStart(ctx, m) || block.Type.Name != schema.Paragraph ||
		ctx.Pos.ParentOffset != block.Content.Size() {
		return nil
	}
	s := ctx.Schema()
	hr, err := s.Create(schema.HorizontalRule, nil)
	if err != nil {
		return err
	}
	para, err := s.Create(schema.Paragraph, nil)
	if err != nil {
		return err
	}
	d := ctx.Pos.Depth
	start := ctx.Pos.Before(d)
	if err := ctx.Tr.ReplaceWith(start, ctx.Pos.After(d), hr, para); err != nil {
		return err
	}
	ctx.Cursor = start + hr.NodeSize() + 1
	return nil
}
