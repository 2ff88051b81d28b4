package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tally-dev/tally/internal/amount"
	"github.com/tally-dev/tally/internal/model"
)

// ErrMissingColumn is returned when a recognised header lacks a column the
// schema requires.
var ErrMissingColumn = errors.New("missing required column")

// Schema is one institution's export format. Identify selects it once per
// file by its trigger column; Bind resolves its columns against the header.
type Schema interface {
	ID() string
	Trigger() string
	Bind(header []string) (RowNormalizer, error)
}

// RowNormalizer maps one data row of a bound file onto the canonical schema.
type RowNormalizer interface {
	NormalizeRow(row []string) (model.NormalizedTransaction, error)
}

// DayFirstLayouts are the date layouts tried for day/month/year exports.
// Single-digit layout elements also accept zero-padded values.
var DayFirstLayouts = []string{
	"2.1.2006",
	"2.1.2006 15:04",
	"2.1.2006 15:04:05",
	"2/1/2006",
	"2/1/2006 15:04",
	"2-1-2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// BankSchema is a column-mapping Schema. Description columns, account
// columns and the currency column are optional; date and amount are not.
type BankSchema struct {
	Name                      string
	TriggerColumn             string
	DateColumn                string
	DescriptionColumns        []string
	AmountColumn              string
	OwnAccountColumn          string
	CounterpartyAccountColumn string
	CurrencyColumn            string
	DefaultCurrency           string
	DateLayouts               []string
}

// ID returns the schema name.
func (s *BankSchema) ID() string { return s.Name }

// Trigger returns the column name unique to this export.
func (s *BankSchema) Trigger() string { return s.TriggerColumn }

// Bind resolves column positions in header.
func (s *BankSchema) Bind(header []string) (RowNormalizer, error) {
	idx := indexHeader(header)

	b := &bankBinding{
		schema:   s,
		date:     -1,
		amount:   -1,
		own:      lookup(idx, s.OwnAccountColumn),
		target:   lookup(idx, s.CounterpartyAccountColumn),
		currency: lookup(idx, s.CurrencyColumn),
	}

	var ok bool
	if b.date, ok = idx[s.DateColumn]; !ok {
		return nil, fmt.Errorf("%s: %w %q", s.Name, ErrMissingColumn, s.DateColumn)
	}
	if b.amount, ok = idx[s.AmountColumn]; !ok {
		return nil, fmt.Errorf("%s: %w %q", s.Name, ErrMissingColumn, s.AmountColumn)
	}
	for _, col := range s.DescriptionColumns {
		if i, ok := idx[col]; ok {
			b.desc = append(b.desc, i)
		}
	}
	return b, nil
}

type bankBinding struct {
	schema   *BankSchema
	date     int
	amount   int
	own      int
	target   int
	currency int
	desc     []int
}

func (b *bankBinding) NormalizeRow(row []string) (model.NormalizedTransaction, error) {
	rawDate := field(row, b.date)
	date, err := parseDate(rawDate, b.schema.layouts())
	if err != nil {
		return model.NormalizedTransaction{}, err
	}

	rawAmount := field(row, b.amount)
	amt, err := amount.Parse(rawAmount)
	if err != nil {
		return model.NormalizedTransaction{}, fmt.Errorf("parsing amount %q: %w", rawAmount, err)
	}

	parts := make([]string, 0, len(b.desc))
	for _, i := range b.desc {
		v := strings.TrimSpace(field(row, i))
		if v == "" || strings.EqualFold(v, "nan") {
			continue
		}
		parts = append(parts, v)
	}

	currency := strings.ToUpper(strings.TrimSpace(field(row, b.currency)))
	if currency == "" {
		currency = b.schema.DefaultCurrency
	}
	if currency == "" {
		currency = model.DefaultCurrency
	}

	return model.NormalizedTransaction{
		Date:          date,
		Description:   strings.Join(parts, " "),
		Amount:        amt,
		Currency:      currency,
		SourceAccount: strings.TrimSpace(field(row, b.own)),
		TargetAccount: strings.TrimSpace(field(row, b.target)),
	}, nil
}

func (s *BankSchema) layouts() []string {
	if len(s.DateLayouts) > 0 {
		return s.DateLayouts
	}
	return DayFirstLayouts
}

// parseDate tries each layout and truncates the result to a calendar date.
// "05. 03. 2024" is accepted as "05.03.2024".
func parseDate(raw string, layouts []string) (time.Time, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ". ", "."))
	if s == "" {
		return time.Time{}, fmt.Errorf("parsing date: empty value")
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q: no matching layout", raw)
}

func indexHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := cleanHeader(h)
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	return idx
}

func cleanHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
}

func lookup(idx map[string]int, col string) int {
	if col == "" {
		return -1
	}
	if i, ok := idx[col]; ok {
		return i
	}
	return -1
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// Built-in schemas, in identification priority order.
var (
	CeskaSporitelna = &BankSchema{
		Name:                      "CS",
		TriggerColumn:             "Own account name",
		DateColumn:                "Processing Date",
		DescriptionColumns:        []string{"Partner Name", "Note"},
		AmountColumn:              "Amount",
		OwnAccountColumn:          "Own account number",
		CounterpartyAccountColumn: "Partner account number",
		CurrencyColumn:            "Currency",
		DefaultCurrency:           "CZK",
	}

	RaiffeisenCurrent = &BankSchema{
		Name:                      "RB_CUR",
		TriggerColumn:             "Datum provedení",
		DateColumn:                "Datum provedení",
		DescriptionColumns:        []string{"Název protiúčtu", "Zpráva", "Poznámka"},
		AmountColumn:              "Zaúčtovaná částka",
		OwnAccountColumn:          "Číslo účtu",
		CounterpartyAccountColumn: "Číslo protiúčtu",
		CurrencyColumn:            "Měna účtu",
		DefaultCurrency:           "CZK",
	}

	RaiffeisenCard = &BankSchema{
		Name:               "RB_CC",
		TriggerColumn:      "Číslo kreditní karty",
		DateColumn:         "Datum transakce",
		DescriptionColumns: []string{"Popis/Místo transakce", "Název obchodníka"},
		AmountColumn:       "Zaúčtovaná částka",
		CurrencyColumn:     "Měna zaúčtování",
		DefaultCurrency:    "CZK",
	}

	ChaseChecking = &BankSchema{
		Name:               "CHASE",
		TriggerColumn:      "Check or Slip #",
		DateColumn:         "Posting Date",
		DescriptionColumns: []string{"Description"},
		AmountColumn:       "Amount",
		DefaultCurrency:    "USD",
		DateLayouts:        []string{"1/2/2006"},
	}
)
