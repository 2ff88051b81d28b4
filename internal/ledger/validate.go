package ledger

import (
	"fmt"

	"github.com/tally-dev/tally/internal/model"
)

// ValidationError describes a ledger row that must not be stored.
type ValidationError struct {
	TransactionID string
	Field         string
	Description   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.Field, e.TransactionID, e.Description)
}

// ValidateTransactions checks that every row is complete and that IDs are
// unique across txns.
func ValidateTransactions(txns []model.CategorizedTransaction) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(txns))

	for _, txn := range txns {
		add := func(field, desc string) {
			errs = append(errs, ValidationError{TransactionID: txn.ID, Field: field, Description: desc})
		}

		if txn.ID == "" {
			add("id", "missing transaction id")
		} else if seen[txn.ID] {
			add("id", "duplicate transaction id")
		}
		seen[txn.ID] = true

		if txn.BatchID == "" {
			add("batch_id", "missing batch id")
		}
		if txn.Date.IsZero() {
			add("date", "missing date")
		}
		if !validCurrency(txn.Currency) {
			add("currency", fmt.Sprintf("invalid currency %q", txn.Currency))
		}
		if txn.Category == "" {
			add("category", "missing category")
		}
		if !txn.Type.Valid() {
			add("type", fmt.Sprintf("invalid transaction type %q", txn.Type))
		}
	}
	return errs
}

func validCurrency(c string) bool {
	if len(c) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return false
		}
	}
	return true
}
