package categorize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
)

func TestRulesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules", "global-rules.yaml")
	rules := DefaultGlobalRules()

	require.NoError(t, SaveRules(path, rules))
	got, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, rules, got)
}

func TestLoadRules_Missing(t *testing.T) {
	got, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoadRules_Canonicalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `rules:
  - pattern: "HM "
    category: Refunds
    type: income
    direction: Positive
  - pattern: Tesco
    category: Groceries
    type: EXPENSE
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "HM ", got[0].Pattern)
	assert.Equal(t, model.TypeIncome, got[0].Type)
	assert.Equal(t, model.DirectionPositive, got[0].Direction)
	assert.Equal(t, model.TypeExpense, got[1].Type)
	assert.Equal(t, model.DirectionAny, got[1].Direction)
}

func TestLoadRules_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"empty pattern", "rules:\n  - pattern: \"\"\n    category: X\n    type: Expense\n", "empty pattern"},
		{"bad type", "rules:\n  - pattern: a\n    category: X\n    type: Gift\n", "unknown transaction type"},
		{"bad direction", "rules:\n  - pattern: a\n    category: X\n    type: Expense\n    direction: up\n", "unknown direction"},
		{"bad yaml", "rules: [", "parsing rules"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rules.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := LoadRules(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveRules_EmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user-rules.yaml")
	require.NoError(t, SaveRules(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "rules: []\n", string(data))
}

func TestNewRule(t *testing.T) {
	r, err := NewRule("Spotify", "Subscriptions", "expense", "negative")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryRule{Pattern: "Spotify", Category: "Subscriptions", Type: model.TypeExpense, Direction: model.DirectionNegative}, r)

	_, err = NewRule("", "X", "Expense", "")
	assert.Error(t, err)
}
