package ingest

import (
	"context"
	"fmt"

	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/logger"
	"github.com/tally-dev/tally/internal/model"
)

// Service runs imports against a ledger Store.
type Service struct {
	store    ledger.Store
	pipeline *Pipeline
}

// NewService creates an import Service.
func NewService(store ledger.Store, pipeline *Pipeline) *Service {
	return &Service{store: store, pipeline: pipeline}
}

// Import runs the pipeline over files and appends the accepted rows as one
// batch. With dryRun set nothing is written. The returned Result is valid
// even when err is ErrNoReadableFiles.
func (s *Service) Import(ctx context.Context, files []model.RawImportFile, dryRun bool) (Result, error) {
	existing, err := s.store.All(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("loading ledger: %w", err)
	}

	res, err := s.pipeline.Run(ctx, files, existing)
	if err != nil {
		return res, err
	}
	if dryRun || len(res.Accepted) == 0 {
		return res, nil
	}

	if err := s.store.Append(ctx, res.Accepted); err != nil {
		return Result{}, fmt.Errorf("committing batch %s: %w", res.Batch.ID, err)
	}
	log := logger.FromContext(ctx)
	log.Info().
		Str("batch", res.Batch.ID).
		Int("transactions", len(res.Accepted)).
		Msg("batch committed")
	return res, nil
}

// DeleteBatch removes every transaction of batchID.
func (s *Service) DeleteBatch(ctx context.Context, batchID string) (int, error) {
	n, err := s.store.DeleteBatch(ctx, batchID)
	if err != nil {
		return 0, fmt.Errorf("deleting batch %s: %w", batchID, err)
	}
	log := logger.FromContext(ctx)
	log.Info().Str("batch", batchID).Int("removed", n).Msg("batch deleted")
	return n, nil
}

// History summarizes the stored batches, newest first.
func (s *Service) History(ctx context.Context) ([]model.BatchSummary, error) {
	txns, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	return ledger.Summarize(txns), nil
}

// Transactions returns every stored transaction.
func (s *Service) Transactions(ctx context.Context) ([]model.CategorizedTransaction, error) {
	return s.store.All(ctx)
}
