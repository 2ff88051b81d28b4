package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

const (
	numFields = 4
	colNumber = 0
	colName   = 1
	colCcy    = 2
	colDesc   = 3
)

// Header is the own-accounts.csv header row.
var Header = []string{"account_number", "name", "currency", "description"}

// ReadAccounts reads own-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.OwnAccount, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.OwnAccount
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes own-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.OwnAccount) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an OwnAccount to a CSV row.
func MarshalAccount(acct model.OwnAccount) []string {
	row := make([]string, numFields)
	row[colNumber] = acct.Number
	row[colName] = acct.Name
	row[colCcy] = acct.Currency
	row[colDesc] = acct.Description
	return row
}

// UnmarshalAccount converts a CSV row to an OwnAccount.
func UnmarshalAccount(record []string) (model.OwnAccount, error) {
	if len(record) != numFields {
		return model.OwnAccount{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	number := strings.TrimSpace(record[colNumber])
	if number == "" {
		return model.OwnAccount{}, fmt.Errorf("account_number is empty")
	}
	return model.OwnAccount{
		Number:      number,
		Name:        record[colName],
		Currency:    strings.ToUpper(strings.TrimSpace(record[colCcy])),
		Description: record[colDesc],
	}, nil
}
