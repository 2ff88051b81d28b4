package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tally-dev/tally/internal/model"
)

// CSVStore keeps the ledger in a single CSV file. Every mutation rewrites the
// file through a temp file and rename, so readers never see a partial batch.
type CSVStore struct {
	mu   sync.Mutex
	path string
}

// NewCSVStore creates a CSVStore at path. The file is created on first write.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the ledger file path.
func (s *CSVStore) Path() string { return s.path }

// All returns every stored transaction.
func (s *CSVStore) All(ctx context.Context) ([]model.CategorizedTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Append validates txns and rewrites the ledger with them added.
func (s *CSVStore) Append(ctx context.Context, txns []model.CategorizedTransaction) error {
	if len(txns) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read()
	if err != nil {
		return err
	}

	all := append(existing, txns...)
	if verrs := ValidateTransactions(all); len(verrs) > 0 {
		return validationFailed(verrs)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return s.write(all)
}

// DeleteBatch rewrites the ledger without the rows of batchID.
func (s *CSVStore) DeleteBatch(ctx context.Context, batchID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read()
	if err != nil {
		return 0, err
	}

	kept := existing[:0:0]
	for _, txn := range existing {
		if txn.BatchID != batchID {
			kept = append(kept, txn)
		}
	}
	removed := len(existing) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.write(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// Close is a no-op.
func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) read() ([]model.CategorizedTransaction, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", s.path, err)
	}
	defer f.Close()

	txns, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", s.path, err)
	}
	return txns, nil
}

func (s *CSVStore) write(txns []model.CategorizedTransaction) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteTransactions(tmp, txns); err != nil {
		tmp.Close()
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing ledger: %w", err)
	}
	return nil
}

func validationFailed(verrs []ValidationError) error {
	msgs := make([]string, len(verrs))
	for i, ve := range verrs {
		msgs[i] = ve.Error()
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}
