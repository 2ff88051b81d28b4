package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/importlog"
	"github.com/tally-dev/tally/internal/model"
)

func newBatchesCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batches",
		Short: "List or delete import batches",
	}
	cmd.AddCommand(newBatchesListCommand(g), newBatchesDeleteCommand(g), newBatchesLogCommand(g))
	return cmd
}

func newBatchesListCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show import batches, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(g)
			if err != nil {
				return err
			}
			defer ws.Close()

			history, err := ws.importService().History(cmd.Context())
			if err != nil {
				return err
			}
			if len(history) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No batches imported yet")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "BATCH\tCREATED\tTRANSACTIONS\tIN\tOUT\tLAST DATE")
			for _, b := range history {
				created := "-"
				if !b.CreatedAt.IsZero() {
					created = b.CreatedAt.Format(time.DateTime)
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
					b.ID, created, b.TransactionCount, b.TotalIn.StringFixed(2), b.TotalOut.StringFixed(2), b.LastDate.Format(model.DateFormat))
			}
			return tw.Flush()
		},
	}
}

func newBatchesDeleteCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <batch-id>",
		Short: "Remove every transaction of a batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(g)
			if err != nil {
				return err
			}
			defer ws.Close()

			batchID := args[0]
			n, err := ws.importService().DeleteBatch(cmd.Context(), batchID)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("batch %s not found", batchID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted batch %s (%d transactions)\n", batchID, n)

			entry := importlog.Entry{
				Action:           importlog.ActionDeleteBatch,
				BatchID:          batchID,
				TransactionCount: n,
			}
			return ws.record(cmd.Context(), entry, fmt.Sprintf("delete: %s (%d transactions)", batchID, n))
		},
	}
}

func newBatchesLogCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Show the import and deletion history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := g.root()
			if err != nil {
				return err
			}
			entries, err := importlog.Read(root)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No imports recorded")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tACTION\tBATCH\tTRANSACTIONS\tDUPLICATES\tDETAILS")
			for _, e := range entries {
				batch := e.BatchID
				if batch == "" {
					batch = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
					e.Timestamp.Local().Format(time.DateTime), e.Action, batch, e.TransactionCount, e.DuplicateCount, e.Details)
			}
			return tw.Flush()
		},
	}
}
