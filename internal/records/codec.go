package records

import (
	"strconv"
	"strings"
	"time"

	"finsmart/internal/core"
)

// ReviewTimeLayout is how review timestamps are written to a cell.
const ReviewTimeLayout = "2006-01-02 15:04:05"

// UserRow encodes u in Users column order.
func UserRow(u core.User) []string {
	return []string{u.Email, u.PasswordHash, core.FormatCell(u.TotalBudget)}
}

// TransactionRow encodes tx in Transactions column order.
func TransactionRow(tx core.Transaction) []string {
	return []string{tx.User, tx.Date.String(), tx.Category.String(), core.FormatCell(tx.Amount)}
}

// ReviewRow encodes r in Reviews column order.
func ReviewRow(r core.Review) []string {
	ts := ""
	if !r.Time.IsZero() {
		ts = r.Time.Format(ReviewTimeLayout)
	}
	return []string{r.Name, r.Email, strconv.Itoa(r.Rating), r.Text, ts}
}

// DecodeUser reads row i of a Users table. A blank or malformed budget
// decodes as zero.
func DecodeUser(t Table, i int) core.User {
	budget, _ := core.ParseCell(t.Cell(i, ColTotalBudget))
	return core.User{
		Email:        t.Cell(i, ColEmail),
		PasswordHash: t.Cell(i, ColPassword),
		TotalBudget:  budget,
	}
}

// DecodeTransaction reads row i of a Transactions table. ok is false when
// the amount cell is not a number; an unreadable date leaves Date zero.
func DecodeTransaction(t Table, i int) (tx core.Transaction, ok bool) {
	amount, ok := core.ParseCell(t.Cell(i, ColAmount))
	date, _ := core.ParseDate(t.Cell(i, ColDate))
	return core.Transaction{
		User:     t.Cell(i, ColUser),
		Date:     date,
		Category: core.Category(t.Cell(i, ColCategory)),
		Amount:   amount,
	}, ok
}

// DecodeReview reads row i of a Reviews table. Unreadable rating or time
// cells decode as zero values.
func DecodeReview(t Table, i int) core.Review {
	rating, _ := strconv.Atoi(strings.TrimSpace(t.Cell(i, ColRating)))
	var ts time.Time
	if raw := strings.TrimSpace(t.Cell(i, ColDate)); raw != "" {
		if parsed, err := time.Parse(ReviewTimeLayout, raw); err == nil {
			ts = parsed
		} else if d, err := core.ParseDate(raw); err == nil {
			ts = d.Time
		}
	}
	return core.Review{
		Name:   t.Cell(i, ColName),
		Email:  t.Cell(i, ColEmail),
		Rating: rating,
		Text:   t.Cell(i, ColReview),
		Time:   ts,
	}
}
