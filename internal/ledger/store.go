// Package ledger persists categorized transactions. Every Store applies an
// Append or DeleteBatch call entirely or not at all.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown ledger backend")

// Backend names accepted by Open.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Store is the persistence contract the import pipeline depends on.
type Store interface {
	// All returns every stored transaction in insertion order.
	All(ctx context.Context) ([]model.CategorizedTransaction, error)
	// Append stores txns atomically.
	Append(ctx context.Context, txns []model.CategorizedTransaction) error
	// DeleteBatch removes exactly the rows carrying batchID and reports how
	// many were removed.
	DeleteBatch(ctx context.Context, batchID string) (int, error)
	Close() error
}

// Open returns the Store for backend at path.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(backend) {
	case "", BackendCSV:
		return NewCSVStore(path), nil
	case BackendSQLite:
		return OpenSQLite(path)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}
