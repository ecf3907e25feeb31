package editor_test

import (
	"strings"
	"testing"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/config"
	"github.com/yaklabco/gomdedit/pkg/editor"
)

const benchScript = "# Notes\n- [ ] buy **milk** and `eggs`\n> quoted *text*\n"

func BenchmarkTyping(b *testing.B) {
	for b.Loop() {
		e := editor.New(
			editor.WithLogger(logging.Discard()),
			editor.WithConfig(config.NewStatic(config.NewConfig())),
		)
		e.CreateDocument("")
		for _, r := range benchScript {
			if _, _, err := e.ApplyUserEdit(string(r), e.Selection()); err != nil {
				b.Fatal(err)
			}
		}
	}
}

func BenchmarkGetText(b *testing.B) {
	e := editor.New(editor.WithLogger(logging.Discard()))
	e.CreateDocument(strings.Repeat("## Section\n\nSome *text* with a [link](http://x.y).\n\n- a\n- b\n\n", 200))
	for b.Loop() {
		_ = e.GetText()
	}
}
