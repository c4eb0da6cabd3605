package records

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finsmart/internal/core"
)

func TestUserRoundTrip(t *testing.T) {
	u := core.User{Email: "a@b.c", PasswordHash: "$2a$10$x", TotalBudget: decimal.NewFromInt(0)}
	tbl := Users.Empty().Append(UserRow(u))
	got := DecodeUser(tbl, 0)
	if got.Email != u.Email || got.PasswordHash != u.PasswordHash || !got.TotalBudget.IsZero() {
		t.Fatalf("unexpected %+v", got)
	}
	if tbl.Cell(0, ColTotalBudget) != "0" {
		t.Fatalf("budget cell should be the literal 0, got %q", tbl.Cell(0, ColTotalBudget))
	}
}

func TestTransactionDecode(t *testing.T) {
	tx := core.Transaction{User: "a@b.c", Date: core.NewDate(2025, 2, 3), Category: core.Food, Amount: decimal.NewFromInt(-2000)}
	tbl := Transactions.Empty().Append(TransactionRow(tx)).Append([]string{"a@b.c", "not a date", "Food", "abc"})

	got, ok := DecodeTransaction(tbl, 0)
	if !ok || got.Date.String() != "2025-02-03" || !got.Amount.Equal(tx.Amount) || got.Category != core.Food {
		t.Fatalf("unexpected %+v ok=%v", got, ok)
	}
	bad, ok := DecodeTransaction(tbl, 1)
	if ok || !bad.Date.IsZero() {
		t.Fatalf("expected unreadable row, got %+v ok=%v", bad, ok)
	}
}

func TestReviewDecode(t *testing.T) {
	when := time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)
	r := core.Review{Name: "Ana", Email: "a@b.c", Rating: 4, Text: "bagus", Time: when}
	tbl := Reviews.Empty().Append(ReviewRow(r)).Append([]string{"Budi", "", "five", "", "2025-01-01"})

	got := DecodeReview(tbl, 0)
	if got.Name != "Ana" || got.Rating != 4 || got.Text != "bagus" || !got.Time.Equal(when) {
		t.Fatalf("unexpected %+v", got)
	}
	loose := DecodeReview(tbl, 1)
	if loose.Rating != 0 || loose.Time.IsZero() {
		t.Fatalf("unexpected %+v", loose)
	}
}

func TestAppendPadsRow(t *testing.T) {
	tbl := Users.Empty().Append([]string{"only"})
	if len(tbl.Rows[0]) != 3 || tbl.Rows[0][0] != "only" {
		t.Fatalf("unexpected row %v", tbl.Rows[0])
	}
}

func TestAppendDoesNotShareRows(t *testing.T) {
	base := NewTable(UsersTable, Users.Columns)
	base.Rows = make([][]string, 0, 4)
	base = base.Append([]string{"a@b.c", "h", "1"})

	left := base.Append([]string{"left@b.c", "h", "2"})
	right := base.Append([]string{"right@b.c", "h", "3"})

	if left.Cell(1, ColEmail) != "left@b.c" || right.Cell(1, ColEmail) != "right@b.c" {
		t.Fatalf("appends from one base overwrote each other: left=%v right=%v", left.Rows, right.Rows)
	}
	if base.Len() != 1 {
		t.Fatalf("base table grew to %d rows", base.Len())
	}
}
