package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a statement carries no currency column.
const DefaultCurrency = "CZK"

// DateFormat is the canonical on-disk date layout.
const DateFormat = "2006-01-02"

// NormalizedTransaction is a statement row mapped onto the canonical schema.
type NormalizedTransaction struct {
	Date          time.Time
	Description   string
	Amount        decimal.Decimal // negative = outflow, positive = inflow
	Currency      string
	SourceAccount string
	TargetAccount string
	OriginFile    string
}

// Signature is the duplicate-detection key of a transaction.
type Signature struct {
	Date        string
	Amount      string
	Description string
}

// Signature returns the (date, amount, description) key. Amounts are compared
// by value, so "-5.0" and "-5.00" produce the same signature.
func (t NormalizedTransaction) Signature() Signature {
	return Signature{
		Date:        t.Date.Format(DateFormat),
		Amount:      t.Amount.String(),
		Description: t.Description,
	}
}

// CategorizedTransaction is a normalized transaction with its category,
// type and the batch that imported it. This is the ledger row.
type CategorizedTransaction struct {
	NormalizedTransaction
	ID       string
	Category string
	Type     TransactionType
	BatchID  string
}
