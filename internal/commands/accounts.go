package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/accounts"
	"github.com/tally-dev/tally/internal/model"
)

func newAccountsCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage your own bank accounts",
		Long: "Transfers whose counterparty is one of your own accounts are\n" +
			"categorized as internal transfers.",
	}
	cmd.AddCommand(newAccountsListCommand(g), newAccountsAddCommand(g))
	return cmd
}

func newAccountsListCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List own accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(g)
			if err != nil {
				return err
			}
			defer ws.Close()

			all := ws.accounts.All()
			if len(all) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No own accounts registered")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NUMBER\tNAME\tCURRENCY\tBANK")
			for _, a := range all {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Number, a.Name, a.Currency, accounts.IdentifyBank(a.Number))
			}
			return tw.Flush()
		},
	}
}

func newAccountsAddCommand(g *globals) *cobra.Command {
	var acct model.OwnAccount

	cmd := &cobra.Command{
		Use:   "add <number>",
		Short: "Register one of your own accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(g)
			if err != nil {
				return err
			}
			defer ws.Close()

			acct.Number = args[0]
			if err := ws.accounts.Add(acct); err != nil {
				return err
			}
			if err := ws.accounts.Save(ws.root); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", acct.Number, accounts.IdentifyBank(acct.Number))
			return ws.commit(cmd.Context(), "accounts: add "+acct.Number)
		},
	}

	cmd.Flags().StringVar(&acct.Name, "name", "", "account name")
	cmd.Flags().StringVar(&acct.Currency, "currency", model.DefaultCurrency, "account currency")
	cmd.Flags().StringVar(&acct.Description, "description", "", "free-form note")
	return cmd
}
