// Package ingest turns uploaded statement files into a deduplicated,
// categorized batch of ledger rows.
package ingest

import (
	"context"
	"errors"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tally-dev/tally/internal/categorize"
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/logger"
	"github.com/tally-dev/tally/internal/model"
)

// ErrNoReadableFiles is returned when not a single input file could be read.
var ErrNoReadableFiles = errors.New("no readable statement files")

// Options configures a Pipeline.
type Options struct {
	// Workers bounds concurrent file parsing. Zero uses GOMAXPROCS.
	Workers int
	// StrictDecoding disables the lossy UTF-8 fallback.
	StrictDecoding bool
	// NewBatchID and NewID default to the id package generators.
	NewBatchID func() string
	NewID      func() string
	Now        func() time.Time
}

// Pipeline parses and categorizes files concurrently, then deduplicates
// sequentially in submission order.
type Pipeline struct {
	registry *importer.Registry
	engine   *categorize.Engine
	opts     Options
}

// NewPipeline creates a Pipeline. The registry and engine are shared
// read-only by all workers.
func NewPipeline(registry *importer.Registry, engine *categorize.Engine, opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.NewBatchID == nil {
		opts.NewBatchID = id.NewBatchID
	}
	if opts.NewID == nil {
		opts.NewID = id.NewTransactionID
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{registry: registry, engine: engine, opts: opts}
}

// Result is the outcome of one import. Batch.ID is empty when no
// transaction survived deduplication. Errors holds file-level errors and
// row errors in submission order.
type Result struct {
	Batch      model.Batch
	Accepted   []model.CategorizedTransaction
	Duplicates int
	Errors     []error
	Files      []importer.FileResult
}

type parsedFile struct {
	result importer.FileResult
	txns   []model.CategorizedTransaction
}

// Run processes files against the existing ledger rows. Nothing is written:
// the caller appends Result.Accepted. A cancelled ctx aborts the run before
// any result is produced.
func (p *Pipeline) Run(ctx context.Context, files []model.RawImportFile, existing []model.CategorizedTransaction) (Result, error) {
	log := logger.FromContext(ctx)
	var res Result

	var units []model.RawImportFile
	for _, f := range files {
		expanded, entryErrs, err := importer.Expand(f)
		if err != nil {
			log.Warn().Err(err).Str("file", f.Name).Msg("skipping unreadable container")
			res.Errors = append(res.Errors, err)
			continue
		}
		for _, err := range entryErrs {
			log.Warn().Err(err).Msg("skipping unreadable archive entry")
		}
		res.Errors = append(res.Errors, entryErrs...)
		units = append(units, expanded...)
	}

	parsed, err := p.parseAll(ctx, units)
	if err != nil {
		return Result{}, err
	}

	readable := 0
	for _, pf := range parsed {
		fr := pf.result
		res.Files = append(res.Files, fr)
		if fr.Err != nil {
			log.Warn().Err(fr.Err).Str("file", fr.File).Msg("file rejected")
			res.Errors = append(res.Errors, fr.Err)
			continue
		}
		readable++
		if fr.Lossy {
			log.Warn().Str("file", fr.File).Msg("decoded with replacement characters")
		}
		log.Debug().
			Str("file", fr.File).
			Str("schema", fr.Schema).
			Str("encoding", string(fr.Encoding)).
			Int("rows", len(fr.Transactions)).
			Int("row_errors", len(fr.RowErrors)).
			Msg("parsed file")
		for _, re := range fr.RowErrors {
			res.Errors = append(res.Errors, re)
		}
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	batchID := id.UniqueBatchID(p.opts.NewBatchID(), storedBatchIDs(existing))
	dedup := NewDeduplicator(existing)
	for _, pf := range parsed {
		for _, txn := range pf.txns {
			if !dedup.Accept(txn.NormalizedTransaction) {
				res.Duplicates++
				continue
			}
			txn.ID = p.opts.NewID()
			txn.BatchID = batchID
			res.Accepted = append(res.Accepted, txn)
		}
	}

	res.Batch = model.Batch{
		CreatedAt:        p.opts.Now(),
		TransactionCount: len(res.Accepted),
		DuplicateCount:   res.Duplicates,
		ErrorCount:       len(res.Errors),
	}
	if len(res.Accepted) > 0 {
		res.Batch.ID = batchID
	}

	log.Info().
		Str("batch", res.Batch.ID).
		Int("accepted", len(res.Accepted)).
		Int("duplicates", res.Duplicates).
		Int("errors", len(res.Errors)).
		Msg("import reduced")

	if readable == 0 {
		return res, ErrNoReadableFiles
	}
	return res, nil
}

// parseAll parses and categorizes every unit on the worker pool. Output
// order matches input order.
func (p *Pipeline) parseAll(ctx context.Context, units []model.RawImportFile) ([]parsedFile, error) {
	out := make([]parsedFile, len(units))
	parseOpts := importer.Options{StrictDecoding: p.opts.StrictDecoding}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fr := importer.ParseFile(u, p.registry, parseOpts)
			out[i] = parsedFile{result: fr, txns: p.categorizeAll(fr.Transactions)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Pipeline) categorizeAll(txns []model.NormalizedTransaction) []model.CategorizedTransaction {
	out := make([]model.CategorizedTransaction, len(txns))
	for i, t := range txns {
		r := p.engine.Categorize(t.Description, t.Amount, t.TargetAccount)
		out[i] = model.CategorizedTransaction{
			NormalizedTransaction: t,
			Category:              r.Category,
			Type:                  r.Type,
		}
	}
	return out
}

// storedBatchIDs returns the distinct batch ids of the stored ledger.
func storedBatchIDs(existing []model.CategorizedTransaction) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, t := range existing {
		if !seen[t.BatchID] {
			seen[t.BatchID] = true
			ids = append(ids, t.BatchID)
		}
	}
	return ids
}
