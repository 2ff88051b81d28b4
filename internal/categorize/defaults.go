package categorize

import "github.com/tally-dev/tally/internal/model"

// DefaultGlobalRules returns the curated rule set written by `tally init`.
func DefaultGlobalRules() []model.CategoryRule {
	return []model.CategoryRule{
		{Pattern: "Trading 212", Category: "Investment Deposit", Type: model.TypeInvestment, Direction: model.DirectionNegative},
		{Pattern: "XTB", Category: "Investment Deposit", Type: model.TypeInvestment, Direction: model.DirectionNegative},
		{Pattern: "HM ", Category: "Refunds", Type: model.TypeIncome, Direction: model.DirectionPositive},
		{Pattern: "HM ", Category: "Shopping", Type: model.TypeExpense, Direction: model.DirectionNegative},
		{Pattern: "FÚ pro", Category: "Refunds", Type: model.TypeIncome, Direction: model.DirectionPositive},
		{Pattern: "FÚ pro", Category: "Other Expense", Type: model.TypeExpense, Direction: model.DirectionNegative},
		{Pattern: "Raiffeisenbank", Category: "Salary", Type: model.TypeIncome, Direction: model.DirectionPositive},
		{Pattern: "Raiffeisenbank", Category: "Other Expense", Type: model.TypeExpense, Direction: model.DirectionNegative},
		{Pattern: "Hypoteka", Category: "Housing (Mortgage/Rent)", Type: model.TypeExpense},
		{Pattern: "Shell", Category: "Transport (Fuel/Taxi)", Type: model.TypeExpense},
		{Pattern: "Benzina", Category: "Transport (Fuel/Taxi)", Type: model.TypeExpense},
		{Pattern: "MOL", Category: "Transport (Fuel/Taxi)", Type: model.TypeExpense},
		{Pattern: "Uber", Category: "Transport (Fuel/Taxi)", Type: model.TypeExpense},
		{Pattern: "Bolt", Category: "Transport (Fuel/Taxi)", Type: model.TypeExpense},
		{Pattern: "Lekarna", Category: "Health & Wellness", Type: model.TypeExpense},
		{Pattern: "Dr. Max", Category: "Health & Wellness", Type: model.TypeExpense},
		{Pattern: "Albert", Category: "Groceries", Type: model.TypeExpense},
		{Pattern: "Tesco", Category: "Groceries", Type: model.TypeExpense},
		{Pattern: "Lidl", Category: "Groceries", Type: model.TypeExpense},
		{Pattern: "Kaufland", Category: "Groceries", Type: model.TypeExpense},
		{Pattern: "Rohlik", Category: "Groceries", Type: model.TypeExpense},
		{Pattern: "Netflix", Category: "Subscriptions", Type: model.TypeExpense},
		{Pattern: "Spotify", Category: "Subscriptions", Type: model.TypeExpense},
		{Pattern: "YouTube", Category: "Subscriptions", Type: model.TypeExpense},
	}
}
