package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionType classifies the economic nature of a transaction.
type TransactionType string

const (
	TypeIncome     TransactionType = "Income"
	TypeExpense    TransactionType = "Expense"
	TypeInvestment TransactionType = "Investment"
	TypeTransfer   TransactionType = "Transfer"
)

// Well-known categories produced by the engine itself.
const (
	CategoryUncategorized    = "Uncategorized"
	CategoryInternalTransfer = "Internal Transfer"
)

// ParseTransactionType accepts a type name case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	for _, t := range []TransactionType{TypeIncome, TypeExpense, TypeInvestment, TypeTransfer} {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// Valid reports whether t is one of the known types.
func (t TransactionType) Valid() bool {
	_, err := ParseTransactionType(string(t))
	return err == nil
}

// Direction restricts a rule to inflows or outflows.
type Direction string

const (
	DirectionAny      Direction = ""
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
)

// ParseDirection accepts "", "positive" or "negative" (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return DirectionAny, nil
	case "positive", "+", "in":
		return DirectionPositive, nil
	case "negative", "-", "out":
		return DirectionNegative, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// Matches reports whether amount satisfies the direction. A zero amount
// satisfies both directions.
func (d Direction) Matches(amount decimal.Decimal) bool {
	switch d {
	case DirectionPositive:
		return !amount.IsNegative()
	case DirectionNegative:
		return !amount.IsPositive()
	}
	return true
}

// CategoryRule maps a case-insensitive description substring to a category.
type CategoryRule struct {
	Pattern   string          `yaml:"pattern"`
	Category  string          `yaml:"category"`
	Type      TransactionType `yaml:"type"`
	Direction Direction       `yaml:"direction,omitempty"`
}

// Validate checks that the rule can be evaluated.
func (r CategoryRule) Validate() error {
	if strings.TrimSpace(r.Pattern) == "" {
		return fmt.Errorf("rule for category %q: empty pattern", r.Category)
	}
	if strings.TrimSpace(r.Category) == "" {
		return fmt.Errorf("rule %q: empty category", r.Pattern)
	}
	if _, err := ParseTransactionType(string(r.Type)); err != nil {
		return fmt.Errorf("rule %q: %w", r.Pattern, err)
	}
	if _, err := ParseDirection(string(r.Direction)); err != nil {
		return fmt.Errorf("rule %q: %w", r.Pattern, err)
	}
	return nil
}
