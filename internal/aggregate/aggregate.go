// Package aggregate derives per-user dashboard figures from the
// Transactions table.
package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"finsmart/internal/core"
	"finsmart/internal/records"
)

// Summarize computes the figures for rows whose User cell equals user
// exactly. Cells that do not parse are skipped, never reported: a bad
// amount is left out of every sum and a bad date only out of PerDate.
func Summarize(t records.Table, user string) core.Summary {
	s := core.Summary{
		User:        user,
		PerCategory: []core.CategoryAmount{},
		PerDate:     []core.DateAmount{},
	}

	var spent, earned decimal.Decimal
	byCategory := map[string]decimal.Decimal{}
	byDate := map[core.Date]decimal.Decimal{}

	for i := range t.Rows {
		if t.Cell(i, records.ColUser) != user {
			continue
		}
		s.Count++
		amount, ok := core.ParseCell(t.Cell(i, records.ColAmount))
		if !ok {
			continue
		}
		switch {
		case amount.IsPositive():
			spent = spent.Add(amount)
			cat := t.Cell(i, records.ColCategory)
			byCategory[cat] = byCategory[cat].Add(amount)
		case amount.IsNegative():
			earned = earned.Add(amount)
		}
		if d, err := core.ParseDate(t.Cell(i, records.ColDate)); err == nil {
			byDate[d] = byDate[d].Add(amount)
		}
	}

	s.Expense = spent
	s.Income = earned.Abs()
	s.Remaining = s.Income.Sub(s.Expense)

	for name, amount := range byCategory {
		s.PerCategory = append(s.PerCategory, core.CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(s.PerCategory, func(i, j int) bool { return s.PerCategory[i].Name < s.PerCategory[j].Name })
	s.TopCategory = topCategory(s.PerCategory)

	for d, amount := range byDate {
		s.PerDate = append(s.PerDate, core.DateAmount{Date: d, Amount: amount})
	}
	sort.Slice(s.PerDate, func(i, j int) bool { return s.PerDate[i].Date.Before(s.PerDate[j].Date.Time) })

	return s
}

// topCategory picks the largest amount; on a tie the name that sorts first
// wins. cats must already be sorted by name.
func topCategory(cats []core.CategoryAmount) string {
	top := ""
	var best decimal.Decimal
	for _, c := range cats {
		if top == "" || c.Amount.GreaterThan(best) {
			top, best = c.Name, c.Amount
		}
	}
	return top
}

// History returns the user's transactions in table order. Rows with an
// unreadable amount are left out.
func History(t records.Table, user string) []core.Transaction {
	out := []core.Transaction{}
	for i := range t.Rows {
		if t.Cell(i, records.ColUser) != user {
			continue
		}
		if tx, ok := records.DecodeTransaction(t, i); ok {
			out = append(out, tx)
		}
	}
	return out
}
