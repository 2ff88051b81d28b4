package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// Schema is the SQLite schema for the ledger. Amounts are stored as TEXT so
// they round-trip exactly.
const Schema = `
CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    date TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    amount TEXT NOT NULL,
    currency TEXT NOT NULL,
    category TEXT NOT NULL,
    type TEXT NOT NULL,
    source_account TEXT NOT NULL DEFAULT '',
    target_account TEXT NOT NULL DEFAULT '',
    batch_id TEXT NOT NULL,
    origin_file TEXT NOT NULL DEFAULT '',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_transactions_batch_id ON transactions(batch_id);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
`

// SQLiteStore keeps the ledger in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (and if needed creates) a SQLite ledger at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging ledger database: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing ledger schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// All returns every stored transaction in insertion order.
func (s *SQLiteStore) All(ctx context.Context) ([]model.CategorizedTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, description, amount, currency, category, type,
		       source_account, target_account, batch_id, origin_file
		FROM transactions ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	defer rows.Close()

	var txns []model.CategorizedTransaction
	for rows.Next() {
		var (
			txn          model.CategorizedTransaction
			date, amount string
			typ          string
		)
		if err := rows.Scan(&txn.ID, &date, &txn.Description, &amount, &txn.Currency, &txn.Category, &typ,
			&txn.SourceAccount, &txn.TargetAccount, &txn.BatchID, &txn.OriginFile); err != nil {
			return nil, fmt.Errorf("scanning ledger row: %w", err)
		}
		if txn.Date, err = time.Parse(model.DateFormat, date); err != nil {
			return nil, fmt.Errorf("transaction %s: parsing date %q: %w", txn.ID, date, err)
		}
		if txn.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %s: parsing amount %q: %w", txn.ID, amount, err)
		}
		txn.Type = model.TransactionType(typ)
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger: %w", err)
	}
	return txns, nil
}

// Append inserts txns in one SQL transaction.
func (s *SQLiteStore) Append(ctx context.Context, txns []model.CategorizedTransaction) error {
	if len(txns) == 0 {
		return nil
	}
	if verrs := ValidateTransactions(txns); len(verrs) > 0 {
		return validationFailed(verrs)
	}

	return s.transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO transactions (id, date, description, amount, currency, category, type,
			                          source_account, target_account, batch_id, origin_file)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for _, txn := range txns {
			if _, err := stmt.ExecContext(ctx,
				txn.ID, txn.Date.Format(model.DateFormat), txn.Description, FormatAmount(txn.Amount),
				txn.Currency, txn.Category, string(txn.Type),
				txn.SourceAccount, txn.TargetAccount, txn.BatchID, txn.OriginFile,
			); err != nil {
				return fmt.Errorf("inserting transaction %s: %w", txn.ID, err)
			}
		}
		return nil
	})
}

// DeleteBatch removes the rows of batchID in one SQL transaction.
func (s *SQLiteStore) DeleteBatch(ctx context.Context, batchID string) (int, error) {
	var removed int64
	err := s.transaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE batch_id = ?`, batchID)
		if err != nil {
			return fmt.Errorf("deleting batch %s: %w", batchID, err)
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// transaction runs fn in a SQL transaction, rolling back if fn fails.
func (s *SQLiteStore) transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
