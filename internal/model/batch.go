package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawImportFile is an uploaded statement before decoding.
type RawImportFile struct {
	Name string
	Data []byte
}

// Batch describes one committed import.
type Batch struct {
	ID               string
	CreatedAt        time.Time
	TransactionCount int
	DuplicateCount   int
	ErrorCount       int
}

// BatchSummary aggregates the ledger rows of one batch.
type BatchSummary struct {
	ID               string
	TransactionCount int
	TotalIn          decimal.Decimal
	TotalOut         decimal.Decimal // negative or zero
	LastDate         time.Time
	// CreatedAt is recovered from the batch ID; zero when the ID carries no time.
	CreatedAt time.Time
}
