package inputrules

import (
	"regexp"
	"strconv"

	"github.com/yaklabco/gomdedit/pkg/model"
	"github.com/yaklabco/gomdedit/pkg/transform"
)

// AttrsFunc derives node or mark attributes from a match. Returning false
// declines the match.
type AttrsFunc func(m Match) (model.Attrs, bool)

// JoinPolicy decides whether a freshly wrapped list joins the list of the
// same type directly before it.
type JoinPolicy func(prev *model.Node, m Match) bool

// JoinAlways joins any preceding list of the same type.
func JoinAlways(*model.Node, Match) bool { return true }

// JoinNever keeps every new list separate.
func JoinNever(*model.Node, Match) bool { return false }

// JoinContinuesOrder joins an ordered list when the number typed is the
// next one in the preceding list.
func JoinContinuesOrder(attr string) JoinPolicy {
	return func(prev *model.Node, m Match) bool {
		n, err := strconv.Atoi(m.Groups[1])
		return err == nil && prev.ChildCount()+prev.Attrs.Int(attr) == n
	}
}

// blockStart reports whether the match starts at the start of the cursor's
// textblock.
func blockStart(ctx *Context, m Match) bool {
	return m.From == ctx.Pos.Start(ctx.Pos.Depth)
}

func attrsOf(fn AttrsFunc, m Match) (model.Attrs, bool) {
	if fn == nil {
		return nil, true
	}
	return fn(m)
}

// TextblockType creates a rule that deletes the matched text and turns the
// textblock into one of type nt. The pattern should start with ^.
func TextblockType(name string, pattern *regexp.Regexp, nt *model.NodeType, attrs AttrsFunc) *Rule {
	return NewRule(name, KindTextblockType, pattern, func(ctx *Context, m Match) error {
		if !blockStart(ctx, m) {
			return nil
		}
		a, ok := attrsOf(attrs, m)
		if !ok {
			return nil
		}
		block := ctx.Pos.Parent()
		if block.Type == nt {
			if built, err := nt.ComputeAttrs(a); err == nil && built.Eq(block.Attrs) {
				return nil
			}
		}
		before := ctx.Pos.Before(ctx.Pos.Depth)
		if err := ctx.Tr.Delete(m.From, m.To); err != nil {
			return err
		}
		if err := ctx.Tr.SetBlockType(before, nt, a); err != nil {
			return err
		}
		ctx.Cursor = m.From
		return nil
	})
}

// WrapSpec describes the container a wrapping rule creates.
type WrapSpec struct {
	// Type is the container type.
	Type *model.NodeType

	// Attrs derives the container attributes.
	Attrs AttrsFunc

	// Item, when set, is placed between the container and the textblock.
	Item *model.NodeType

	// Join decides whether the container merges into a preceding
	// container of the same type. Nil never joins.
	Join JoinPolicy
}

// Wrapping creates a rule that deletes the matched text and wraps the
// textblock as spec describes. The pattern should start with ^.
func Wrapping(name string, pattern *regexp.Regexp, spec WrapSpec) *Rule {
	return NewRule(name, KindWrapping, pattern, func(ctx *Context, m Match) error {
		if !blockStart(ctx, m) {
			return nil
		}
		a, ok := attrsOf(spec.Attrs, m)
		if !ok {
			return nil
		}
		before := ctx.Pos.Before(ctx.Pos.Depth)
		if err := ctx.Tr.Delete(m.From, m.To); err != nil {
			return err
		}
		after := before + ctx.Tr.Doc.NodeAt(before).NodeSize()
		wrappers := []transform.NodeSpec{{Type: spec.Type, Attrs: a}}
		if spec.Item != nil {
			wrappers = append(wrappers, transform.NodeSpec{Type: spec.Item})
		}
		if err := ctx.Tr.Wrap(before, after, wrappers...); err != nil {
			return err
		}
		ctx.Cursor = m.From + len(wrappers)

		if spec.Join == nil {
			return nil
		}
		rp, err := ctx.Tr.Doc.Resolve(before)
		if err != nil {
			return err
		}
		prev := rp.NodeBefore()
		if prev == nil || prev.Type != spec.Type || !spec.Join(prev, m) || !transform.CanJoin(ctx.Tr.Doc, before) {
			return nil
		}
		if err := ctx.Tr.Join(before); err != nil {
			return err
		}
		ctx.Cursor -= 2
		return nil
	})
}

// MarkRule creates a rule for a trailing span such as **text**. The
// pattern must have a group named "text" holding the content; an optional
// group named "lead" is kept as it is. Everything else in the match is
// deleted and mark type mt is added over the content.
func MarkRule(name string, pattern *regexp.Regexp, mt *model.MarkType, attrs AttrsFunc) *Rule {
	return NewRule(name, KindInline, pattern, func(ctx *Context, m Match) error {
		textFrom, textTo, ok := m.Range("text")
		if !ok || textFrom == textTo {
			return nil
		}
		a, ok := attrsOf(attrs, m)
		if !ok {
			return nil
		}
		mark, err := mt.Create(a)
		if err != nil {
			return err
		}
		start := m.From
		if _, leadTo, ok := m.Range("lead"); ok {
			start = leadTo
		}
		if err := ctx.Tr.Delete(textTo, m.To); err != nil {
			return err
		}
		if err := ctx.Tr.Delete(start, textFrom); err != nil {
			return err
		}
		end := start + textTo - textFrom
		if err := ctx.Tr.AddMark(start, end, mark); err != nil {
			return err
		}
		ctx.Cursor = end
		rp, err := ctx.Tr.Doc.Resolve(end)
		if err != nil {
			return err
		}
		ctx.SetStoredMarks(model.RemoveTypeFromSet(rp.Marks(), mt))
		return nil
	})
}

// NodeBuilder creates an inline node from a match.
type NodeBuilder func(s *model.Schema, m Match) (*model.Node, error)

// NodeRule creates a rule that replaces the match, after an optional
// "lead" group, with an inline node.
func NodeRule(name string, pattern *regexp.Regexp, build NodeBuilder) *Rule {
	return NewRule(name, KindInline, pattern, func(ctx *Context, m Match) error {
		start := m.From
		if _, leadTo, ok := m.Range("lead"); ok {
			start = leadTo
		}
		node, err := build(ctx.Schema(), m)
		if err != nil || node == nil {
			return err
		}
		rp, err := ctx.Tr.Doc.Resolve(start)
		if err != nil {
			return err
		}
		if err := ctx.Tr.ReplaceWith(start, m.To, node.WithMarks(rp.Marks())); err != nil {
			return err
		}
		ctx.Cursor = start + node.NodeSize()
		return nil
	})
}

// Custom creates a rule with an arbitrary handler.
func Custom(name string, pattern *regexp.Regexp, handler Handler) *Rule {
	return NewRule(name, KindCustom, pattern, handler)
}
