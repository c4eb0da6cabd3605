package http

import (
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finsmart/internal/core"
	"finsmart/internal/services"
	"finsmart/internal/session"
)

// categoryLabels are the Indonesian names shown in the category picker.
var categoryLabels = map[core.Category]string{
	core.Food:          "Makanan",
	core.Transport:     "Transportasi",
	core.Entertainment: "Hiburan",
	core.Bills:         "Tagihan",
	core.Salary:        "Gaji",
	core.Other:         "Lainnya",
}

func categoryLabel(name string) string {
	if c, err := core.ParseCategory(name); err == nil {
		return categoryLabels[c]
	}
	return name
}

type categoryOption struct {
	Value string
	Label string
}

func categoryOptions() []categoryOption {
	out := make([]categoryOption, 0, len(core.Categories()))
	for _, c := range core.Categories() {
		out = append(out, categoryOption{Value: c.String(), Label: categoryLabels[c]})
	}
	return out
}

// pageData is what every full-page template receives.
type pageData struct {
	Title      string
	Screen     session.State
	User       string
	Flash      string
	Error      string
	Form       map[string]string
	Today      string
	Categories []categoryOption
	Dashboard  *dashboardView
	Advice     string
	Reviews    []reviewView
}

// bar is one row of a horizontal bar chart. Percent is relative to the
// largest bar in the same chart.
type bar struct {
	Label    string
	Amount   string
	Percent  int
	Negative bool
}

type historyRow struct {
	Date     string
	Category string
	Amount   string
	Expense  bool
}

type dashboardView struct {
	HasData     bool
	Income      string
	Expense     string
	Remaining   string
	Negative    bool
	Budget      string
	BudgetLeft  string
	Overspent   bool
	TopCategory string
	PerCategory []bar
	PerDate     []bar
	History     []historyRow
}

func newDashboardView(d services.Dashboard) *dashboardView {
	s := d.Summary
	v := &dashboardView{
		HasData:    s.HasData(),
		Income:     core.FormatRupiah(s.Income),
		Expense:    core.FormatRupiah(s.Expense),
		Remaining:  core.FormatRupiah(s.Remaining),
		Negative:   s.Remaining.IsNegative(),
		Budget:     core.FormatRupiah(d.User.TotalBudget),
		BudgetLeft: core.FormatRupiah(d.BudgetLeft),
		Overspent:  d.Overspent,
	}
	if s.TopCategory != "" {
		v.TopCategory = categoryLabel(s.TopCategory)
	}

	var catMax decimal.Decimal
	for _, c := range s.PerCategory {
		catMax = decimal.Max(catMax, c.Amount.Abs())
	}
	for _, c := range s.PerCategory {
		v.PerCategory = append(v.PerCategory, bar{
			Label:   categoryLabel(c.Name),
			Amount:  core.FormatRupiah(c.Amount),
			Percent: percentOf(c.Amount, catMax),
		})
	}

	var dateMax decimal.Decimal
	for _, p := range s.PerDate {
		dateMax = decimal.Max(dateMax, p.Amount.Abs())
	}
	for _, p := range s.PerDate {
		v.PerDate = append(v.PerDate, bar{
			Label:    p.Date.String(),
			Amount:   core.FormatRupiah(p.Amount),
			Percent:  percentOf(p.Amount, dateMax),
			Negative: p.Amount.IsNegative(),
		})
	}

	for _, tx := range d.History {
		v.History = append(v.History, historyRow{
			Date:     tx.Date.String(),
			Category: categoryLabel(tx.Category.String()),
			Amount:   core.FormatRupiah(tx.Amount),
			Expense:  tx.IsExpense(),
		})
	}
	return v
}

var hundred = decimal.NewFromInt(100)

func percentOf(v, peak decimal.Decimal) int {
	if !peak.IsPositive() {
		return 0
	}
	return int(v.Abs().Mul(hundred).Div(peak).Round(0).IntPart())
}

type reviewView struct {
	Name   string
	Rating int
	Stars  string
	Text   string
	When   string
}

func newReviewViews(rs []core.Review) []reviewView {
	out := make([]reviewView, 0, len(rs))
	for _, r := range rs {
		stars := min(max(r.Rating, 0), 5)
		when := ""
		if !r.Time.IsZero() {
			when = r.Time.Format("2006-01-02 15:04")
		}
		out = append(out, reviewView{
			Name:   r.Name,
			Rating: r.Rating,
			Stars:  strings.Repeat("★", stars) + strings.Repeat("☆", 5-stars),
			Text:   r.Text,
			When:   when,
		})
	}
	return out
}

// templateFuncs are available to every template.
var templateFuncs = template.FuncMap{
	"year": func() int { return time.Now().Year() },
	"paragraphs": func(s string) []string {
		var out []string
		for _, p := range strings.Split(s, "\n") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	},
}
