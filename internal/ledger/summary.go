package ledger

import (
	"slices"
	"strings"

	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/model"
)

// Summarize groups transactions by batch, newest batch first.
func Summarize(txns []model.CategorizedTransaction) []model.BatchSummary {
	byID := make(map[string]*model.BatchSummary)
	for _, txn := range txns {
		s, ok := byID[txn.BatchID]
		if !ok {
			s = &model.BatchSummary{ID: txn.BatchID}
			if created, _, err := id.ParseBatchID(txn.BatchID); err == nil {
				s.CreatedAt = created
			}
			byID[txn.BatchID] = s
		}
		s.TransactionCount++
		if txn.Amount.IsPositive() {
			s.TotalIn = s.TotalIn.Add(txn.Amount)
		} else {
			s.TotalOut = s.TotalOut.Add(txn.Amount)
		}
		if txn.Date.After(s.LastDate) {
			s.LastDate = txn.Date
		}
	}

	out := make([]model.BatchSummary, 0, len(byID))
	for _, s := range byID {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b model.BatchSummary) int {
		return strings.Compare(b.ID, a.ID)
	})
	return out
}
