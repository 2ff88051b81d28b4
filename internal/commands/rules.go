package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/amount"
	"github.com/tally-dev/tally/internal/categorize"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/model"
)

func newRulesCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage categorization rules",
	}
	cmd.AddCommand(
		newRulesListCommand(g),
		newRulesAddCommand(g),
		newRulesTestCommand(g),
		newRulesSuggestCommand(g),
	)
	return cmd
}

func newRulesListCommand(g *globals) *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List user rules, or global rules with --global",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(g)
			if err != nil {
				return err
			}
			defer ws.Close()

			rules := ws.user
			if global {
				rules = ws.global
			}
			if len(rules) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No rules")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PATTERN\tCATEGORY\tTYPE\tDIRECTION")
			for _, r := range rules {
				dir := string(r.Direction)
				if dir == "" {
					dir = "any"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Pattern, r.Category, r.Type, dir)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "list the global rules")
	return cmd
}

func newRulesAddCommand(g *globals) *cobra.Command {
	var txType, direction string
	var global bool

	cmd := &cobra.Command{
		Use:   "add <pattern> <category>",
		Short: "Add a categorization rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(g)
			if err != nil {
				return err
			}
			defer ws.Close()

			rule, err := categorize.NewRule(args[0], args[1], txType, direction)
			if err != nil {
				return err
			}

			rules, path := ws.user, ws.cfg.Rules.UserPath
			if global {
				rules, path = ws.global, ws.cfg.Rules.GlobalPath
			}
			for _, r := range rules {
				if r.Pattern == rule.Pattern && r.Direction == rule.Direction {
					return fmt.Errorf("rule for %q already exists (category %s)", r.Pattern, r.Category)
				}
			}
			if err := categorize.SaveRules(config.Resolve(ws.root, path), append(rules, rule)); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added rule %q -> %s (%s)\n", rule.Pattern, rule.Category, rule.Type)
			return ws.commit(cmd.Context(), fmt.Sprintf("rules: add %q", rule.Pattern))
		},
	}

	cmd.Flags().StringVar(&txType, "type", string(model.TypeExpense), "transaction type (Income, Expense, Investment, Transfer)")
	cmd.Flags().StringVar(&direction, "direction", "", "restrict to positive or negative amounts")
	cmd.Flags().BoolVar(&global, "global", false, "add to the global rules")
	return cmd
}

func newRulesTestCommand(g *globals) *cobra.Command {
	var counterparty string

	cmd := &cobra.Command{
		Use:   "test <description> <amount>",
		Short: "Show how a transaction would be categorized",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(g)
			if err != nil {
				return err
			}
			defer ws.Close()

			amt, err := amount.Parse(args[1])
			if err != nil {
				return err
			}
			r := ws.engine().Categorize(args[0], amt, counterparty)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s) via %s", r.Category, r.Type, r.Source)
			if r.Pattern != "" {
				fmt.Fprintf(out, " rule %q", r.Pattern)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&counterparty, "counterparty", "", "counterparty account number")
	return cmd
}

func newRulesSuggestCommand(g *globals) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "List frequent uncategorized descriptions worth a rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(g)
			if err != nil {
				return err
			}
			defer ws.Close()

			txns, err := ws.store.All(cmd.Context())
			if err != nil {
				return err
			}
			suggestions := categorize.Suggest(txns)
			if len(suggestions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing uncategorized")
				return nil
			}
			if limit > 0 && len(suggestions) > limit {
				suggestions = suggestions[:limit]
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "DESCRIPTION\tCOUNT\tTOTAL")
			for _, s := range suggestions {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", s.Description, s.Count, s.Total.StringFixed(2))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum suggestions to show (0 for all)")
	return cmd
}

