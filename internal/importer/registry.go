package importer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSchema is wrapped by UnknownSchemaError.
var ErrUnknownSchema = errors.New("unknown statement format")

// diagnosticColumns is how many header names an UnknownSchemaError reports.
const diagnosticColumns = 3

// UnknownSchemaError reports a header that matched no registered schema.
type UnknownSchemaError struct {
	File    string
	Columns []string
}

func (e *UnknownSchemaError) Error() string {
	msg := fmt.Sprintf("unknown format: no trigger column found, first columns [%s]", strings.Join(e.Columns, ", "))
	if e.File != "" {
		return e.File + ": " + msg
	}
	return msg
}

func (e *UnknownSchemaError) Unwrap() error { return ErrUnknownSchema }

// Registry holds schemas in identification priority order.
type Registry struct {
	schemas []Schema
	byID    map[string]bool
}

// NewRegistry creates an empty schema registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]bool)}
}

// Register appends a schema at the lowest priority. Panics on duplicate ID.
func (r *Registry) Register(s Schema) {
	key := strings.ToLower(s.ID())
	if _, ok := r.byID[key]; ok {
		panic("duplicate schema: " + key)
	}
	r.byID[key] = true
	r.schemas = append(r.schemas, s)
}

// Schemas returns the registered schemas in priority order.
func (r *Registry) Schemas() []Schema {
	return r.schemas
}

// Identify returns the first schema whose trigger column is present in
// header. It never guesses: an unmatched header is an *UnknownSchemaError.
func (r *Registry) Identify(header []string) (Schema, error) {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[cleanHeader(h)] = true
	}
	for _, s := range r.schemas {
		if present[s.Trigger()] {
			return s, nil
		}
	}

	n := min(len(header), diagnosticColumns)
	cols := make([]string, n)
	for i := range n {
		cols[i] = cleanHeader(header[i])
	}
	return nil, &UnknownSchemaError{Columns: cols}
}

// DefaultRegistry returns a registry with all built-in schemas.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(CeskaSporitelna)
	r.Register(RaiffeisenCurrent)
	r.Register(RaiffeisenCard)
	r.Register(ChaseChecking)
	return r
}
