package categorize

import (
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

type keywordGroup struct {
	category string
	keywords []string
}

// fallbackTable catches common merchants no rule covers yet. Matches are
// always expenses.
var fallbackTable = []keywordGroup{
	{"Dining Out", []string{"kfc", "mcdonald", "burger king", "starbucks", "costa coffee"}},
	{"Groceries", []string{"tesco", "lidl", "kaufland", "albert", "billa", "rohlik", "kosik"}},
	{"Transport", []string{"shell", "omv", "mol", "benzina", "uber", "bolt"}},
}

// fallback expects an already lower-cased description.
func fallback(desc string) (Result, bool) {
	for _, g := range fallbackTable {
		for _, kw := range g.keywords {
			if strings.Contains(desc, kw) {
				return Result{
					Category: g.category,
					Type:     model.TypeExpense,
					Source:   SourceFallback,
					Pattern:  kw,
				}, true
			}
		}
	}
	return Result{}, false
}
