package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/gomdedit/pkg/model"
	"github.com/yaklabco/gomdedit/pkg/schema"
)

// keyKind is the action a scripted key performs.
type keyKind int

const (
	keyText keyKind = iota
	keyEnter
	keyBackspace
	keyUndo
	keyRedo
	keyMove
	keyExtend
	keyStart
	keyEnd
	keyMark
	keyTask
	keyBlock
	keyWrap
)

// key is one step of a keystroke script.
type key struct {
	kind  keyKind
	text  string
	n     int
	name  string
	attrs model.Attrs
}

func (k key) String() string {
	if k.kind == keyText {
		return strconv.Quote(k.text)
	}
	return "{" + k.name + "}"
}

// namedKeys maps the {name} tokens of a script to keys. Counted keys
// accept a ":n" suffix.
//
//nolint:gochecknoglobals // fixed token table
var namedKeys = map[string]key{
	"enter":       {kind: keyEnter},
	"bs":          {kind: keyBackspace},
	"backspace":   {kind: keyBackspace},
	"undo":        {kind: keyUndo},
	"redo":        {kind: keyRedo},
	"left":        {kind: keyMove, n: -1},
	"right":       {kind: keyMove, n: 1},
	"shift-left":  {kind: keyExtend, n: -1},
	"shift-right": {kind: keyExtend, n: 1},
	"start":       {kind: keyStart},
	"end":         {kind: keyEnd},
	"bold":        {kind: keyMark, name: schema.Strong},
	"italic":      {kind: keyMark, name: schema.Em},
	"code":        {kind: keyMark, name: schema.Code},
	"strike":      {kind: keyMark, name: schema.Strikethrough},
	"underline":   {kind: keyMark, name: schema.Underline},
	"highlight":   {kind: keyMark, name: schema.Highlight},
	"task":        {kind: keyTask},
	"paragraph":   {kind: keyBlock, name: schema.Paragraph},
	"codeblock":   {kind: keyBlock, name: schema.CodeBlock},
	"quote":       {kind: keyWrap, name: schema.Blockquote},
	"ul":          {kind: keyWrap, name: schema.BulletList},
	"ol":          {kind: keyWrap, name: schema.OrderedList},
}

// parseKeys splits a keystroke script into keys. Plain characters are
// typed one at a time and a newline presses enter. {name} runs a named
// key, {h1} to {h6} set heading levels and "{{" types a literal brace.
func parseKeys(script string) ([]key, error) {
	var keys []key
	for i := 0; i < len(script); {
		switch {
		case strings.HasPrefix(script[i:], "{{"):
			keys = append(keys, key{kind: keyText, text: "{"})
			i += 2
		case script[i] == '{':
			end := strings.IndexByte(script[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated key at offset %d", ErrUsage, i)
			}
			k, err := parseNamedKey(script[i+1 : i+end])
			if err != nil {
				return nil, err
			}
			keys = append(keys, k)
			i += end + 1
		case script[i] == '\n':
			keys = append(keys, key{kind: keyEnter, name: "enter"})
			i++
		default:
			r, size := firstRune(script[i:])
			keys = append(keys, key{kind: keyText, text: r})
			i += size
		}
	}
	return keys, nil
}

func parseNamedKey(token string) (key, error) {
	name, count, hasCount := strings.Cut(token, ":")
	if level, ok := strings.CutPrefix(name, "h"); ok && len(level) == 1 && level[0] >= '1' && level[0] <= '6' {
		return key{kind: keyBlock, name: schema.Heading, attrs: model.Attrs{schema.AttrLevel: int(level[0] - '0')}}, nil
	}
	k, ok := namedKeys[name]
	if !ok {
		return key{}, fmt.Errorf("%w: unknown key {%s}", ErrUsage, token)
	}
	if k.name == "" {
		k.name = name
	}
	if hasCount {
		if k.kind != keyMove && k.kind != keyExtend {
			return key{}, fmt.Errorf("%w: key {%s} takes no count", ErrUsage, name)
		}
		n, err := strconv.Atoi(count)
		if err != nil || n < 0 {
			return key{}, fmt.Errorf("%w: bad count in {%s}", ErrUsage, token)
		}
		k.n *= n
	}
	return k, nil
}

func firstRune(s string) (string, int) {
	for i := range s {
		if i > 0 {
			return s[:i], i
		}
	}
	return s, len(s)
}
