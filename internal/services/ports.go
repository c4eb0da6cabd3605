// Package services orchestrates the dashboard use cases over the record
// store: accounts, the transaction ledger, AI advice and reviews.
package services

import (
	"context"

	"finsmart/internal/core"
	"finsmart/internal/records"
)

// TableStore is the slice of store.Store the services depend on.
type TableStore interface {
	Load(ctx context.Context, schema records.Schema) records.Table
	Save(ctx context.Context, t records.Table) error
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

type Advisor interface {
	Advise(ctx context.Context, s core.Summary) (string, error)
}

// OverspendNotifier is told when a new transaction pushes a user past the
// overspend threshold.
type OverspendNotifier interface {
	NotifyOverspend(ctx context.Context, u core.User, s core.Summary) error
}
