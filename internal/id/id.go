package id

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	batchPrefix = "Import_"
	batchLayout = "20060102_150405"
)

// FormatBatchID returns a batch ID like "Import_20250103_142501". A non-zero
// seq is appended as "_0001" to separate batches created in the same second.
func FormatBatchID(t time.Time, seq int) string {
	id := batchPrefix + t.UTC().Format(batchLayout)
	if seq > 0 {
		id += fmt.Sprintf("_%04d", seq)
	}
	return id
}

// ParseBatchID parses "Import_20250103_142501[_0001]" into its time and seq.
func ParseBatchID(id string) (t time.Time, seq int, err error) {
	rest, ok := strings.CutPrefix(id, batchPrefix)
	if !ok {
		return time.Time{}, 0, fmt.Errorf("invalid batch ID format: %q", id)
	}

	stamp := rest
	if len(rest) > len(batchLayout) {
		stamp = rest[:len(batchLayout)]
		suffix, ok := strings.CutPrefix(rest[len(batchLayout):], "_")
		if !ok {
			return time.Time{}, 0, fmt.Errorf("invalid batch ID format: %q", id)
		}
		seq, err = strconv.Atoi(suffix)
		if err != nil || seq <= 0 {
			return time.Time{}, 0, fmt.Errorf("invalid sequence in batch ID %q", id)
		}
	}

	t, err = time.Parse(batchLayout, stamp)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid time in batch ID %q: %w", id, err)
	}
	return t, seq, nil
}

// BatchIDGenerator hands out batch IDs that are unique and strictly
// increasing in lexical order for the life of the process, even when the
// clock repeats a second or steps backwards.
type BatchIDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
	seq  int
}

// NewBatchIDGenerator creates a generator reading time from now. A nil now
// uses time.Now.
func NewBatchIDGenerator(now func() time.Time) *BatchIDGenerator {
	if now == nil {
		now = time.Now
	}
	return &BatchIDGenerator{now: now}
}

// Next returns the next batch ID.
func (g *BatchIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := g.now().UTC().Truncate(time.Second)
	if t.After(g.last) {
		g.last = t
		g.seq = 0
	} else {
		g.seq++
	}
	return FormatBatchID(g.last, g.seq)
}

// UniqueBatchID returns candidate unless a taken batch ID shares its
// timestamp with an equal or higher sequence, in which case the sequence is
// bumped past the highest taken one. IDs that do not parse only get a
// numeric suffix when taken verbatim.
func UniqueBatchID(candidate string, taken []string) string {
	t, seq, err := ParseBatchID(candidate)
	if err != nil {
		return uniqueVerbatim(candidate, taken)
	}

	maxSeq := -1
	for _, id := range taken {
		tt, s, err := ParseBatchID(id)
		if err == nil && tt.Equal(t) && s > maxSeq {
			maxSeq = s
		}
	}
	if maxSeq < seq {
		return candidate
	}
	return FormatBatchID(t, maxSeq+1)
}

func uniqueVerbatim(candidate string, taken []string) string {
	used := make(map[string]bool, len(taken))
	for _, id := range taken {
		used[id] = true
	}
	id := candidate
	for n := 1; used[id]; n++ {
		id = fmt.Sprintf("%s_%d", candidate, n)
	}
	return id
}

var defaultBatchIDs = NewBatchIDGenerator(nil)

// NewBatchID returns a batch ID from the process-wide generator.
func NewBatchID() string {
	return defaultBatchIDs.Next()
}

// NewTransactionID returns a random identifier for a ledger row.
func NewTransactionID() string {
	return uuid.NewString()
}
