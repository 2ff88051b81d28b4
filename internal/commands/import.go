package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/importlog"
	"github.com/tally-dev/tally/internal/ingest"
	"github.com/tally-dev/tally/internal/logger"
	"github.com/tally-dev/tally/internal/model"
)

func newImportCommand(g *globals) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import bank statements (CSV or ZIP) as one batch",
		Long: "Import the given statement files, or every .csv and .zip in the import\n" +
			"directory when none are given. All files of one run form a single batch.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(g)
			if err != nil {
				return err
			}
			defer ws.Close()
			return runImport(cmd, ws, args, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and categorize without writing the ledger")

	return cmd
}

func runImport(cmd *cobra.Command, ws *workspace, paths []string, dryRun bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	log := logger.FromContext(ctx)

	fromDir := len(paths) == 0
	if fromDir {
		found, err := importer.Scan(ws.importDir())
		if err != nil {
			return err
		}
		for _, f := range found {
			paths = append(paths, f.Path)
		}
	}
	if len(paths) == 0 {
		fmt.Fprintf(out, "No statement files in %s\n", ws.importDir())
		return nil
	}

	var files []model.RawImportFile
	for _, p := range paths {
		f, err := importer.ReadFile(p)
		if err != nil {
			log.Warn().Err(err).Msg("skipping file")
			fmt.Fprintf(out, "  ! %v\n", err)
			continue
		}
		files = append(files, f)
	}

	res, err := ws.importService().Import(ctx, files, dryRun)
	printImportResult(out, res, dryRun)
	if err != nil {
		return err
	}
	if dryRun {
		return nil
	}

	if fromDir && ws.cfg.Import.MarkProcessed {
		for _, name := range readableFiles(res) {
			if err := importer.MarkProcessed(ws.importDir(), name); err != nil {
				return err
			}
		}
	}

	entry := importlog.Entry{
		Action:           importlog.ActionImport,
		BatchID:          res.Batch.ID,
		TransactionCount: len(res.Accepted),
		DuplicateCount:   res.Duplicates,
		Details:          fileNames(files),
	}
	msg := fmt.Sprintf("import: %s (%d transactions)", res.Batch.ID, len(res.Accepted))
	if res.Batch.ID == "" {
		msg = fmt.Sprintf("import: no new transactions (%d duplicates)", res.Duplicates)
	}
	return ws.record(ctx, entry, msg)
}

func printImportResult(out io.Writer, res ingest.Result, dryRun bool) {
	for _, fr := range res.Files {
		if fr.Err == nil {
			fmt.Fprintf(out, "  %s: %s, %d rows\n", fr.File, fr.Schema, len(fr.Transactions))
		}
	}
	unknown := false
	for _, err := range res.Errors {
		fmt.Fprintf(out, "  ! %v\n", err)
		unknown = unknown || errors.Is(err, importer.ErrUnknownSchema)
	}
	if unknown {
		fmt.Fprintf(out, "  Supported formats: %s\n", strings.Join(schemaIDs(importer.DefaultRegistry()), ", "))
	}

	switch {
	case dryRun:
		fmt.Fprintf(out, "Dry run: %d new, %d duplicates, %d errors\n", len(res.Accepted), res.Duplicates, len(res.Errors))
		for _, t := range res.Accepted {
			fmt.Fprintf(out, "  %s  %12s %s  %-20s %s\n",
				t.Date.Format(model.DateFormat), t.Amount.StringFixed(2), t.Currency, t.Category, t.Description)
		}
	case res.Batch.ID != "":
		fmt.Fprintf(out, "Imported batch %s: %d new, %d duplicates, %d errors\n",
			res.Batch.ID, len(res.Accepted), res.Duplicates, len(res.Errors))
	default:
		fmt.Fprintf(out, "No new transactions: %d duplicates, %d errors\n", res.Duplicates, len(res.Errors))
	}
}

// readableFiles returns the top-level names of files that were parsed,
// collapsing ZIP members to their archive.
func readableFiles(res ingest.Result) []string {
	seen := make(map[string]bool)
	var names []string
	for _, fr := range res.Files {
		if fr.Err != nil {
			continue
		}
		name, _, _ := strings.Cut(fr.File, ":")
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

func fileNames(files []model.RawImportFile) string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}

func schemaIDs(reg *importer.Registry) []string {
	var ids []string
	for _, s := range reg.Schemas() {
		ids = append(ids, s.ID())
	}
	return ids
}
