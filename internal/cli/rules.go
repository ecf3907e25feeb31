package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdedit/internal/ui/pretty"
	"github.com/yaklabco/gomdedit/pkg/debug"
	"github.com/yaklabco/gomdedit/pkg/inputrules"
	"github.com/yaklabco/gomdedit/pkg/schema"
)

type rulesFlags struct {
	format  string
	compact bool
}

// ruleInfo is one input rule in structured output.
type ruleInfo struct {
	Name    string `json:"name" yaml:"name"`
	Kind    string `json:"kind" yaml:"kind"`
	Pattern string `json:"pattern" yaml:"pattern"`
}

func newRulesCommand() *cobra.Command {
	flags := &rulesFlags{}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the Markdown input rules",
		Long: `List the input rules that turn typed Markdown syntax into structure,
in the order they are tried. Each rule fires when its pattern matches the
text just before the cursor.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRules(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json, yaml")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "compact JSON output")

	return cmd
}

func runRules(cmd *cobra.Command, flags *rulesFlags) error {
	format, err := debug.ParseFormat(flags.format)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	rules := inputrules.Markdown(schema.Markdown(), inputrules.MarkdownOptions{})
	infos := make([]ruleInfo, 0, len(rules))
	for _, rule := range rules {
		infos = append(infos, ruleInfo{
			Name:    rule.Name,
			Kind:    rule.Kind.String(),
			Pattern: rule.Pattern.String(),
		})
	}

	out := cmd.OutOrStdout()
	if format != debug.FormatText {
		return debug.Encode(out, infos, format, flags.compact)
	}

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{info.Name, info.Kind, info.Pattern})
	}
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), out))
	table := pretty.NewTableFormatter(styles, pretty.Width(out))
	columns := []pretty.Column{{Title: "Rule"}, {Title: "Kind"}, {Title: "Pattern", Flex: true}}
	if _, err := fmt.Fprint(out, table.Format(columns, rows)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
