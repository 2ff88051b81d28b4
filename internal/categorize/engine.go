// Package categorize assigns a category and transaction type to normalized
// transactions using tiered substring rules.
package categorize

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// Source records which stage of evaluation produced a Result.
type Source string

const (
	SourceInternalTransfer Source = "internal-transfer"
	SourceUser             Source = "user"
	SourceGlobal           Source = "global"
	SourceFallback         Source = "fallback"
	SourceDefault          Source = "default"
)

// Result is the outcome of categorizing one transaction. Pattern is set when
// a rule or fallback keyword fired.
type Result struct {
	Category string
	Type     model.TransactionType
	Source   Source
	Pattern  string
}

type compiledRule struct {
	rule   model.CategoryRule
	lower  string
	source Source
}

// Engine evaluates, in order: the internal-transfer check, user rules, global
// rules, the keyword fallback table, then the sign-based default. Within a
// tier longer patterns are tried first and the first match wins, so a short
// user pattern beats a longer global one. The Engine is read-only after
// construction and safe for concurrent use.
type Engine struct {
	rules []compiledRule
	own   map[string]struct{}
}

// NewEngine builds an Engine. The rule slices are copied; rules with an empty
// pattern are ignored.
func NewEngine(global, user []model.CategoryRule, ownAccounts []string) *Engine {
	e := &Engine{own: make(map[string]struct{}, len(ownAccounts))}
	e.rules = append(e.rules, compileTier(user, SourceUser)...)
	e.rules = append(e.rules, compileTier(global, SourceGlobal)...)
	for _, acct := range ownAccounts {
		if n := model.NormalizeAccountNumber(acct); n != "" {
			e.own[n] = struct{}{}
		}
	}
	return e
}

func compileTier(rules []model.CategoryRule, source Source) []compiledRule {
	out := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if strings.TrimSpace(r.Pattern) == "" {
			continue
		}
		out = append(out, compiledRule{rule: r, lower: strings.ToLower(r.Pattern), source: source})
	}
	slices.SortStableFunc(out, func(a, b compiledRule) int {
		return utf8.RuneCountInString(b.rule.Pattern) - utf8.RuneCountInString(a.rule.Pattern)
	})
	return out
}

// Categorize classifies a transaction. counterparty is the target account
// number and may be empty. It always returns a result.
func (e *Engine) Categorize(description string, amount decimal.Decimal, counterparty string) Result {
	if e.IsInternalTransfer(counterparty) {
		return Result{
			Category: model.CategoryInternalTransfer,
			Type:     model.TypeTransfer,
			Source:   SourceInternalTransfer,
		}
	}

	desc := strings.ToLower(description)
	for _, r := range e.rules {
		if !strings.Contains(desc, r.lower) {
			continue
		}
		if !r.rule.Direction.Matches(amount) {
			continue
		}
		return Result{
			Category: r.rule.Category,
			Type:     r.rule.Type,
			Source:   r.source,
			Pattern:  r.rule.Pattern,
		}
	}

	if res, ok := fallback(desc); ok {
		return res
	}

	return Result{
		Category: model.CategoryUncategorized,
		Type:     defaultType(amount),
		Source:   SourceDefault,
	}
}

// IsInternalTransfer reports whether counterparty is one of the own accounts.
func (e *Engine) IsInternalTransfer(counterparty string) bool {
	n := model.NormalizeAccountNumber(counterparty)
	if n == "" {
		return false
	}
	_, ok := e.own[n]
	return ok
}

// Categorize classifies description and amount against explicit rule sets
// without an own-account check.
func Categorize(description string, amount decimal.Decimal, global, user []model.CategoryRule) (string, model.TransactionType) {
	res := NewEngine(global, user, nil).Categorize(description, amount, "")
	return res.Category, res.Type
}

func defaultType(amount decimal.Decimal) model.TransactionType {
	if amount.IsNegative() {
		return model.TypeExpense
	}
	return model.TypeIncome
}
