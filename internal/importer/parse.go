package importer

import (
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

// ErrEmptyFile is returned for a file with no header row.
var ErrEmptyFile = errors.New("file has no header row")

// FileError is a failure that rejects a whole file.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string { return fmt.Sprintf("%s: %v", e.File, e.Err) }

func (e *FileError) Unwrap() error { return e.Err }

// RowError is a data row that was skipped because it could not be parsed.
// Row counts the header as row 1.
type RowError struct {
	File string
	Row  int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("%s: row %d: %v", e.File, e.Row, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }

// Options controls file parsing.
type Options struct {
	// StrictDecoding rejects a file with ErrDecoding when no candidate
	// encoding decodes it cleanly. By default it is decoded lossily and
	// flagged.
	StrictDecoding bool
}

// FileResult is the outcome of parsing one CSV file. When Err is set the
// file contributed nothing.
type FileResult struct {
	File         string
	Schema       string
	Encoding     Encoding
	Lossy        bool
	Transactions []model.NormalizedTransaction
	RowErrors    []*RowError
	Err          error
}

// ParseFile decodes, identifies and normalizes one CSV file. It is pure and
// safe to call concurrently with a shared Registry.
func ParseFile(f model.RawImportFile, reg *Registry, opts Options) FileResult {
	res := FileResult{File: f.Name}

	dec, err := Decode(f.Data, !opts.StrictDecoding)
	if err != nil {
		res.Err = &FileError{File: f.Name, Err: err}
		return res
	}
	res.Encoding = dec.Encoding
	res.Lossy = dec.Lossy

	header, rows, rowErrs, err := readCSV(f.Name, dec.Text)
	if err != nil {
		res.Err = &FileError{File: f.Name, Err: err}
		return res
	}

	schema, err := reg.Identify(header)
	if err != nil {
		var unknown *UnknownSchemaError
		if errors.As(err, &unknown) {
			unknown.File = f.Name
		}
		res.Err = err
		return res
	}
	res.Schema = schema.ID()

	txns, normErrs, err := Normalize(f.Name, header, rows, schema)
	if err != nil {
		res.Err = &FileError{File: f.Name, Err: err}
		return res
	}
	res.Transactions = txns
	res.RowErrors = mergeRowErrors(rowErrs, normErrs)
	return res
}

// Row is one data record and its position in the file.
type Row struct {
	Num    int
	Fields []string
}

// readCSV splits text into a header and data rows. Malformed records become
// row errors; the rest of the file is still read.
func readCSV(name, text string) ([]string, []Row, []*RowError, error) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = DetectDelimiter(text)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, nil, ErrEmptyFile
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reading header: %w", err)
	}

	var (
		rows []Row
		errs []*RowError
	)
	for num := 2; ; num++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				errs = append(errs, &RowError{File: name, Row: num, Err: err})
				continue
			}
			return nil, nil, nil, fmt.Errorf("reading CSV: %w", err)
		}
		rows = append(rows, Row{Num: num, Fields: rec})
	}
	return header, rows, errs, nil
}

// Normalize maps data rows onto the canonical schema. A row whose date or
// amount does not parse is skipped and reported; it never aborts the file.
func Normalize(name string, header []string, rows []Row, schema Schema) ([]model.NormalizedTransaction, []*RowError, error) {
	norm, err := schema.Bind(header)
	if err != nil {
		return nil, nil, err
	}

	var (
		txns []model.NormalizedTransaction
		errs []*RowError
	)
	for _, row := range rows {
		if blank(row.Fields) {
			continue
		}
		txn, err := norm.NormalizeRow(row.Fields)
		if err != nil {
			errs = append(errs, &RowError{File: name, Row: row.Num, Err: err})
			continue
		}
		txn.OriginFile = name
		txns = append(txns, txn)
	}
	return txns, errs, nil
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func mergeRowErrors(a, b []*RowError) []*RowError {
	if len(a) == 0 {
		return b
	}
	out := append(a, b...)
	slices.SortStableFunc(out, func(x, y *RowError) int { return cmp.Compare(x.Row, y.Row) })
	return out
}
