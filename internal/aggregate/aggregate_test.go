package aggregate

import (
	"testing"

	"github.com/shopspring/decimal"

	"finsmart/internal/records"
)

func table(rows ...[]string) records.Table {
	t := records.Transactions.Empty()
	for _, r := range rows {
		t = t.Append(r)
	}
	return t
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSummarizeEmpty(t *testing.T) {
	for _, tbl := range []records.Table{
		records.Transactions.Empty(),
		table([]string{"other@x.y", "2025-01-01", "Food", "5000"}),
	} {
		s := Summarize(tbl, "a@b.c")
		if !s.Income.IsZero() || !s.Expense.IsZero() || !s.Remaining.IsZero() {
			t.Fatalf("expected zeros, got %+v", s)
		}
		if s.PerCategory == nil || len(s.PerCategory) != 0 || s.PerDate == nil || len(s.PerDate) != 0 {
			t.Fatalf("expected empty non-nil series, got %+v", s)
		}
		if s.HasData() || s.TopCategory != "" {
			t.Fatalf("expected no-data state, got %+v", s)
		}
	}
}

func TestSummarizeSigns(t *testing.T) {
	tbl := table(
		[]string{"a@b.c", "2025-01-01", "Food", "5000"},
		[]string{"a@b.c", "2025-01-02", "Salary", "-2000"},
		[]string{"a@b.c", "2025-01-01", "Transport", "3000"},
	)
	s := Summarize(tbl, "a@b.c")
	if !s.Expense.Equal(dec("8000")) || !s.Income.Equal(dec("2000")) || !s.Remaining.Equal(dec("-6000")) {
		t.Fatalf("unexpected totals expense=%s income=%s remaining=%s", s.Expense, s.Income, s.Remaining)
	}
	if s.Count != 3 || !s.HasData() {
		t.Fatalf("unexpected count %d", s.Count)
	}
	if s.TopCategory != "Food" {
		t.Fatalf("unexpected top %q", s.TopCategory)
	}
	if len(s.PerDate) != 2 || s.PerDate[0].Date.String() != "2025-01-01" || !s.PerDate[0].Amount.Equal(dec("8000")) {
		t.Fatalf("unexpected per-date %+v", s.PerDate)
	}
	if !s.PerDate[1].Amount.Equal(dec("-2000")) {
		t.Fatalf("per-date must net income, got %s", s.PerDate[1].Amount)
	}
}

func TestSummarizeUserMatchIsExact(t *testing.T) {
	tbl := table(
		[]string{"a@b.c", "2025-01-01", "Food", "100"},
		[]string{"A@B.C", "2025-01-01", "Food", "900"},
		[]string{" a@b.c", "2025-01-01", "Food", "900"},
	)
	if s := Summarize(tbl, "a@b.c"); !s.Expense.Equal(dec("100")) {
		t.Fatalf("expected only the exact match, got %s", s.Expense)
	}
}

func TestSummarizeSkipsUnparseable(t *testing.T) {
	tbl := table(
		[]string{"a@b.c", "2025-01-03", "Food", "abc"},
		[]string{"a@b.c", "not-a-date", "Bills", "700"},
		[]string{"a@b.c", "2025-01-01", "Bills", "300"},
		[]string{"a@b.c", "2025-01-02", "Food", ""},
	)
	s := Summarize(tbl, "a@b.c")
	if !s.Expense.Equal(dec("1000")) {
		t.Fatalf("expected bad amounts to count as zero, got %s", s.Expense)
	}
	if len(s.PerDate) != 1 || s.PerDate[0].Date.String() != "2025-01-01" {
		t.Fatalf("expected bad dates and bad amounts excluded from per-date, got %+v", s.PerDate)
	}
	if len(s.PerCategory) != 1 || s.PerCategory[0].Name != "Bills" {
		t.Fatalf("unexpected per-category %+v", s.PerCategory)
	}
}

func TestTopCategoryTieBreakIsLexicographic(t *testing.T) {
	tbl := table(
		[]string{"a@b.c", "2025-01-01", "Transport", "500"},
		[]string{"a@b.c", "2025-01-01", "Entertainment", "500"},
		[]string{"a@b.c", "2025-01-01", "Food", "200"},
	)
	s := Summarize(tbl, "a@b.c")
	if s.TopCategory != "Entertainment" {
		t.Fatalf("expected Entertainment, got %q", s.TopCategory)
	}
	names := []string{s.PerCategory[0].Name, s.PerCategory[1].Name, s.PerCategory[2].Name}
	if names[0] != "Entertainment" || names[1] != "Food" || names[2] != "Transport" {
		t.Fatalf("per-category not ordered by name: %v", names)
	}
	top, ok := s.Top()
	if !ok || !top.Amount.Equal(dec("500")) {
		t.Fatalf("unexpected top %+v", top)
	}
}

func TestOverspendFromSummary(t *testing.T) {
	tbl := table([]string{"a@b.c", "2025-01-01", "Food", "8001"})
	s := Summarize(tbl, "a@b.c")
	if !s.Overspent(dec("10000")) {
		t.Fatalf("expected overspend")
	}
	if s.Overspent(decimal.Zero) {
		t.Fatalf("zero budget must suppress the signal")
	}
}

func TestHistory(t *testing.T) {
	tbl := table(
		[]string{"a@b.c", "2025-01-01", "Food", "100"},
		[]string{"b@c.d", "2025-01-01", "Food", "100"},
		[]string{"a@b.c", "2025-01-02", "Food", "x"},
		[]string{"a@b.c", "2025-01-03", "Salary", "-50"},
	)
	h := History(tbl, "a@b.c")
	if len(h) != 2 || !h[1].Amount.Equal(dec("-50")) {
		t.Fatalf("unexpected history %+v", h)
	}
}
