package ingest

import "github.com/tally-dev/tally/internal/model"

// Deduplicator tracks the signatures of stored and accepted transactions.
// It is not safe for concurrent use; one import owns one Deduplicator.
type Deduplicator struct {
	seen map[model.Signature]struct{}
}

// NewDeduplicator seeds the signature set from the stored ledger.
func NewDeduplicator(existing []model.CategorizedTransaction) *Deduplicator {
	d := &Deduplicator{seen: make(map[model.Signature]struct{}, len(existing))}
	for _, t := range existing {
		d.seen[t.Signature()] = struct{}{}
	}
	return d
}

// Accept reports whether t is new and, if so, records its signature so a
// later identical transaction in the same import is rejected.
func (d *Deduplicator) Accept(t model.NormalizedTransaction) bool {
	sig := t.Signature()
	if _, dup := d.seen[sig]; dup {
		return false
	}
	d.seen[sig] = struct{}{}
	return true
}
