package categorize

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// Suggestion is a description that recurs among uncategorized transactions.
type Suggestion struct {
	Description string
	Count       int
	Total       decimal.Decimal
}

// Suggest groups uncategorized transactions by description, most frequent
// first; ties put the largest outflow first.
func Suggest(txns []model.CategorizedTransaction) []Suggestion {
	byDesc := make(map[string]*Suggestion)
	var order []string
	for _, t := range txns {
		if t.Category != model.CategoryUncategorized {
			continue
		}
		s, ok := byDesc[t.Description]
		if !ok {
			s = &Suggestion{Description: t.Description}
			byDesc[t.Description] = s
			order = append(order, t.Description)
		}
		s.Count++
		s.Total = s.Total.Add(t.Amount)
	}

	out := make([]Suggestion, 0, len(order))
	for _, d := range order {
		out = append(out, *byDesc[d])
	}
	slices.SortStableFunc(out, func(a, b Suggestion) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return a.Total.Cmp(b.Total)
	})
	return out
}
