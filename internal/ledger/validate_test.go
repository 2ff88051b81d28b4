package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tally-dev/tally/internal/model"
)

func TestValidateTransactions_Valid(t *testing.T) {
	errs := ValidateTransactions([]model.CategorizedTransaction{
		txn("a1", "B1", 5, "Tesco", "-1"),
		txn("a2", "B1", 5, "Tesco", "-1"),
	})
	assert.Empty(t, errs)
}

func TestValidateTransactions_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.CategorizedTransaction)
		field  string
	}{
		{"missing id", func(x *model.CategorizedTransaction) { x.ID = "" }, "id"},
		{"missing batch", func(x *model.CategorizedTransaction) { x.BatchID = "" }, "batch_id"},
		{"zero date", func(x *model.CategorizedTransaction) { x.Date = time.Time{} }, "date"},
		{"lowercase currency", func(x *model.CategorizedTransaction) { x.Currency = "czk" }, "currency"},
		{"long currency", func(x *model.CategorizedTransaction) { x.Currency = "CZKK" }, "currency"},
		{"missing category", func(x *model.CategorizedTransaction) { x.Category = "" }, "category"},
		{"bad type", func(x *model.CategorizedTransaction) { x.Type = "Gift" }, "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := txn("a1", "B1", 5, "Tesco", "-1")
			tt.mutate(&x)
			errs := ValidateTransactions([]model.CategorizedTransaction{x})
			if assert.Len(t, errs, 1) {
				assert.Equal(t, tt.field, errs[0].Field)
			}
		})
	}
}

func TestValidateTransactions_DuplicateID(t *testing.T) {
	errs := ValidateTransactions([]model.CategorizedTransaction{
		txn("a1", "B1", 5, "Tesco", "-1"),
		txn("a1", "B2", 6, "Lidl", "-2"),
	})
	if assert.Len(t, errs, 1) {
		assert.Contains(t, errs[0].Error(), "duplicate transaction id")
	}
}
