package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"devtriage/internal/domain"
)

// ruleView is the printable form of an audit rule
type ruleView struct {
	Key         string                `json:"key" yaml:"key"`
	When        string                `json:"when" yaml:"when"`
	Level       domain.SuspicionLevel `json:"level" yaml:"level"`
	Description string                `json:"description" yaml:"description"`
}

func newRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the effective audit rule table",
		Long:  "Prints the built-in rules followed by the rules from rules.path. For each key the first matching rule wins.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			engine, err := a.engine()
			if err != nil {
				return err
			}

			rules := engine.Rules()
			views := make([]ruleView, len(rules))
			for i, r := range rules {
				views[i] = ruleView{Key: r.Key, When: r.When.String(), Level: r.Level, Description: r.Description}
			}

			w := cmd.OutOrStdout()
			if format != "text" {
				return encode(w, format, views)
			}
			tw := newTable(w)
			fmt.Fprintln(tw, "KEY\tWHEN\tLEVEL\tDESCRIPTION")
			for _, v := range views {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Key, v.When, v.Level, v.Description)
			}
			return tw.Flush()
		},
	}
}
