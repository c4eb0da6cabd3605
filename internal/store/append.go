package store

import (
	"fmt"
	"strings"

	"finsmart/internal/core"
	"finsmart/internal/records"
)

// AppendUser validates u and appends it to the Users table. The returned
// table is the input unchanged when u is rejected.
func AppendUser(t records.Table, u core.User) (records.Table, error) {
	if err := u.Validate(); err != nil {
		return t, err
	}
	users := ensure(records.Users, t)
	if _, ok := FindUser(users, u.Email); ok {
		return t, fmt.Errorf("%w: %s", core.ErrDuplicateEmail, u.Email)
	}
	return users.Append(records.UserRow(u)), nil
}

// AppendTransaction validates tx and appends it to the Transactions table.
func AppendTransaction(t records.Table, tx core.Transaction) (records.Table, error) {
	if err := tx.Validate(); err != nil {
		return t, err
	}
	return ensure(records.Transactions, t).Append(records.TransactionRow(tx)), nil
}

// AppendReview validates r and appends it to the Reviews table.
func AppendReview(t records.Table, r core.Review) (records.Table, error) {
	if err := r.Validate(); err != nil {
		return t, err
	}
	return ensure(records.Reviews, t).Append(records.ReviewRow(r)), nil
}

// FindUser looks up email with an exact, case-sensitive match.
func FindUser(t records.Table, email string) (core.User, bool) {
	col := t.Index(records.ColEmail)
	if col < 0 || strings.TrimSpace(email) == "" {
		return core.User{}, false
	}
	for i, r := range t.Rows {
		if col < len(r) && r[col] == email {
			return records.DecodeUser(t, i), true
		}
	}
	return core.User{}, false
}

// ensure normalizes t only when its header is not canonical yet, so the
// common path stays a plain append.
func ensure(schema records.Schema, t records.Table) records.Table {
	if t.Name == schema.Name && schema.Matches(t.Columns) {
		return t
	}
	return schema.Normalize(t)
}
