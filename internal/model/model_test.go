package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectionMatches(t *testing.T) {
	tests := []struct {
		dir    Direction
		amount string
		want   bool
	}{
		{DirectionAny, "-1", true},
		{DirectionAny, "1", true},
		{DirectionPositive, "500", true},
		{DirectionPositive, "-500", false},
		{DirectionNegative, "-500", true},
		{DirectionNegative, "500", false},
		{DirectionPositive, "0", true},
		{DirectionNegative, "0", true},
	}
	for _, tt := range tests {
		got := tt.dir.Matches(decimal.RequireFromString(tt.amount))
		assert.Equal(t, tt.want, got, "%q.Matches(%s)", tt.dir, tt.amount)
	}
}

func TestParseTransactionType(t *testing.T) {
	got, err := ParseTransactionType("expense")
	require.NoError(t, err)
	assert.Equal(t, TypeExpense, got)

	_, err = ParseTransactionType("Gift")
	assert.Error(t, err)
	assert.False(t, TransactionType("").Valid())
	assert.True(t, TypeTransfer.Valid())
}

func TestCategoryRuleValidate(t *testing.T) {
	ok := CategoryRule{Pattern: "Tesco", Category: "Groceries", Type: TypeExpense}
	assert.NoError(t, ok.Validate())

	tests := []CategoryRule{
		{Pattern: " ", Category: "Groceries", Type: TypeExpense},
		{Pattern: "Tesco", Category: "", Type: TypeExpense},
		{Pattern: "Tesco", Category: "Groceries", Type: "Food"},
		{Pattern: "Tesco", Category: "Groceries", Type: TypeExpense, Direction: "sideways"},
	}
	for _, r := range tests {
		assert.Error(t, r.Validate(), "%+v", r)
	}
}

func TestSignature(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	a := NormalizedTransaction{Date: day, Description: "KFC", Amount: decimal.RequireFromString("-5.00")}
	b := NormalizedTransaction{Date: day, Description: "KFC", Amount: decimal.RequireFromString("-5"), OriginFile: "other.csv"}

	assert.Equal(t, a.Signature(), b.Signature())
	assert.Equal(t, Signature{Date: "2024-03-05", Amount: "-5", Description: "KFC"}, a.Signature())

	c := a
	c.Description = "KFC Praha"
	assert.NotEqual(t, a.Signature(), c.Signature())
}

func TestNormalizeAccountNumber(t *testing.T) {
	assert.Equal(t, "CZ6508000000192000145399", NormalizeAccountNumber("cz65 0800 0000 1920 0014 5399"))
	assert.Equal(t, "123456789/0800", NormalizeAccountNumber(" 123456789/0800 "))
}
