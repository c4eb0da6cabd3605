package core

import "github.com/shopspring/decimal"

// overspendRatio is the share of the total budget that expenses may reach
// before the overspend signal fires.
var overspendRatio = decimal.RequireFromString("0.8")

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// DateAmount is the net amount recorded on one calendar day.
type DateAmount struct {
	Date   Date
	Amount decimal.Decimal
}

// Summary holds the per-user figures shown on the dashboard.
type Summary struct {
	User        string
	Count       int
	Income      decimal.Decimal
	Expense     decimal.Decimal
	Remaining   decimal.Decimal
	PerCategory []CategoryAmount
	PerDate     []DateAmount
	TopCategory string
}

// HasData distinguishes "no transactions" from "transactions summing to zero".
func (s Summary) HasData() bool {
	return s.Count > 0
}

// Overspent reports whether expenses exceed 80% of the budget. A zero or
// negative budget never fires the signal.
func (s Summary) Overspent(totalBudget decimal.Decimal) bool {
	if !totalBudget.IsPositive() {
		return false
	}
	return s.Expense.GreaterThan(totalBudget.Mul(overspendRatio))
}

// Top returns the largest expense category and its amount.
func (s Summary) Top() (CategoryAmount, bool) {
	for _, c := range s.PerCategory {
		if c.Name == s.TopCategory {
			return c, true
		}
	}
	return CategoryAmount{}, false
}
