package ingest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/categorize"
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/model"
)

func stores(t *testing.T) map[string]ledger.Store {
	t.Helper()
	sqlite, err := ledger.OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]ledger.Store{
		ledger.BackendCSV:    ledger.NewCSVStore(filepath.Join(t.TempDir(), "ledger.csv")),
		ledger.BackendSQLite: sqlite,
	}
}

func TestService_TwoBatchesDeleteOne(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := NewService(store, newTestPipeline())

			first, err := svc.Import(ctx, []model.RawImportFile{testdata(t, "cs_current.csv")}, false)
			require.NoError(t, err)
			second, err := svc.Import(ctx, []model.RawImportFile{testdata(t, "rb_current.csv")}, false)
			require.NoError(t, err)
			require.NotEqual(t, first.Batch.ID, second.Batch.ID)

			all, err := svc.Transactions(ctx)
			require.NoError(t, err)
			require.Len(t, all, 8)

			history, err := svc.History(ctx)
			require.NoError(t, err)
			require.Len(t, history, 2)

			n, err := svc.DeleteBatch(ctx, first.Batch.ID)
			require.NoError(t, err)
			assert.Equal(t, 4, n)

			all, err = svc.Transactions(ctx)
			require.NoError(t, err)
			require.Len(t, all, 4)
			for _, txn := range all {
				assert.Equal(t, second.Batch.ID, txn.BatchID)
			}

			// The deleted rows are importable again.
			again, err := svc.Import(ctx, []model.RawImportFile{testdata(t, "cs_current.csv")}, false)
			require.NoError(t, err)
			assert.Len(t, again.Accepted, 4)
			assert.Zero(t, again.Duplicates)
		})
	}
}

func TestService_IdempotentReimport(t *testing.T) {
	ctx := context.Background()
	svc := NewService(ledger.NewCSVStore(filepath.Join(t.TempDir(), "ledger.csv")), newTestPipeline())

	_, err := svc.Import(ctx, []model.RawImportFile{testdata(t, "chase_checking.csv")}, false)
	require.NoError(t, err)

	res, err := svc.Import(ctx, []model.RawImportFile{testdata(t, "chase_checking.csv")}, false)
	require.NoError(t, err)
	assert.Empty(t, res.Accepted)
	assert.Equal(t, 6, res.Duplicates)

	all, err := svc.Transactions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestService_DryRun(t *testing.T) {
	ctx := context.Background()
	svc := NewService(ledger.NewCSVStore(filepath.Join(t.TempDir(), "ledger.csv")), newTestPipeline())

	res, err := svc.Import(ctx, []model.RawImportFile{testdata(t, "rb_card.csv")}, true)
	require.NoError(t, err)
	assert.Len(t, res.Accepted, 2)

	all, err := svc.Transactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestService_CancelledBeforeCommit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := ledger.NewCSVStore(filepath.Join(t.TempDir(), "ledger.csv"))
	svc := NewService(store, newTestPipeline())

	_, err := svc.Import(ctx, []model.RawImportFile{testdata(t, "rb_card.csv")}, false)
	require.Error(t, err)

	all, err := store.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestService_SameSecondRunsGetDistinctBatches(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewCSVStore(filepath.Join(t.TempDir(), "ledger.csv"))
	clock := func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	// Each run gets its own generator, as separate CLI invocations do.
	run := func(file string) Result {
		engine := categorize.NewEngine(categorize.DefaultGlobalRules(), nil, nil)
		pipeline := NewPipeline(importer.DefaultRegistry(), engine, Options{
			NewBatchID: id.NewBatchIDGenerator(clock).Next,
			Now:        clock,
		})
		res, err := NewService(store, pipeline).Import(ctx, []model.RawImportFile{testdata(t, file)}, false)
		require.NoError(t, err)
		return res
	}

	first := run("rb_card.csv")
	second := run("chase_checking.csv")
	assert.Equal(t, "Import_20240501_120000", first.Batch.ID)
	assert.Equal(t, "Import_20240501_120000_0001", second.Batch.ID)

	n, err := store.DeleteBatch(ctx, first.Batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 6)
	for _, txn := range all {
		assert.Equal(t, second.Batch.ID, txn.BatchID)
	}
}
