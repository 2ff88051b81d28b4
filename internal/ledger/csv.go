package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// Header is the CSV header for ledger.csv.
const Header = "id,date,description,amount,currency,category,type,source_account,target_account,batch_id,origin_file"

const (
	numFields     = 11
	colID         = 0
	colDate       = 1
	colDesc       = 2
	colAmount     = 3
	colCurrency   = 4
	colCategory   = 5
	colType       = 6
	colSourceAcct = 7
	colTargetAcct = 8
	colBatchID    = 9
	colOrigin     = 10
)

// ReadTransactions reads all rows from a ledger.csv reader.
func ReadTransactions(r io.Reader) ([]model.CategorizedTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var txns []model.CategorizedTransaction
	for i, rec := range records[1:] {
		txn, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// WriteTransactions writes a full ledger.csv including the header.
func WriteTransactions(w io.Writer, txns []model.CategorizedTransaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, txn := range txns {
		if err := cw.Write(MarshalTransaction(txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatAmount renders an amount with at least two decimal places.
func FormatAmount(d decimal.Decimal) string {
	if d.Exponent() >= -2 {
		return d.StringFixed(2)
	}
	return d.String()
}

// MarshalTransaction converts a transaction to a CSV row.
func MarshalTransaction(txn model.CategorizedTransaction) []string {
	row := make([]string, numFields)
	row[colID] = txn.ID
	row[colDate] = txn.Date.Format(model.DateFormat)
	row[colDesc] = txn.Description
	row[colAmount] = FormatAmount(txn.Amount)
	row[colCurrency] = txn.Currency
	row[colCategory] = txn.Category
	row[colType] = string(txn.Type)
	row[colSourceAcct] = txn.SourceAccount
	row[colTargetAcct] = txn.TargetAccount
	row[colBatchID] = txn.BatchID
	row[colOrigin] = txn.OriginFile
	return row
}

// UnmarshalTransaction converts a CSV row to a transaction.
func UnmarshalTransaction(record []string) (model.CategorizedTransaction, error) {
	if len(record) != numFields {
		return model.CategorizedTransaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(model.DateFormat, record[colDate])
	if err != nil {
		return model.CategorizedTransaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.CategorizedTransaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	return model.CategorizedTransaction{
		NormalizedTransaction: model.NormalizedTransaction{
			Date:          date,
			Description:   record[colDesc],
			Amount:        amount,
			Currency:      record[colCurrency],
			SourceAccount: record[colSourceAcct],
			TargetAccount: record[colTargetAcct],
			OriginFile:    record[colOrigin],
		},
		ID:       record[colID],
		Category: record[colCategory],
		Type:     model.TransactionType(record[colType]),
		BatchID:  record[colBatchID],
	}, nil
}
