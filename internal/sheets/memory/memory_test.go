package memory

import (
	"context"
	"errors"
	"testing"

	"finsmart/internal/records"
	"finsmart/internal/sheets"
)

var _ sheets.TableMedium = (*Store)(nil)

func TestMemoryStoreCreateWriteRead(t *testing.T) {
	ctx := context.Background()
	s := New()

	if ok, _ := s.Exists(ctx, records.UsersTable); ok {
		t.Fatalf("expected no table yet")
	}
	if _, err := s.Read(ctx, records.UsersTable); !errors.Is(err, sheets.ErrTableNotFound) {
		t.Fatalf("expected ErrTableNotFound, got %v", err)
	}
	if err := s.Create(ctx, records.UsersTable, records.Users.Columns); err != nil {
		t.Fatalf("create: %v", err)
	}

	tbl := records.Users.Empty().Append([]string{"a@b.c", "h", "10"})
	if err := s.Write(ctx, tbl); err != nil {
		t.Fatalf("write: %v", err)
	}
	// later edits to the caller's copy must not leak into the store
	tbl.Rows[0][0] = "mutated"

	got, err := s.Read(ctx, records.UsersTable)
	if err != nil || got.Len() != 1 || got.Cell(0, records.ColEmail) != "a@b.c" {
		t.Fatalf("unexpected read: %+v err=%v", got, err)
	}

	// Create on an existing table keeps its rows
	_ = s.Create(ctx, records.UsersTable, records.Users.Columns)
	got, _ = s.Read(ctx, records.UsersTable)
	if got.Len() != 1 {
		t.Fatalf("create must not truncate an existing table")
	}
}

func TestMemoryStoreSeed(t *testing.T) {
	s := New(records.Reviews.Empty())
	if ok, _ := s.Exists(context.Background(), records.ReviewsTable); !ok {
		t.Fatalf("seeded table missing")
	}
	if err := s.Write(context.Background(), records.Table{}); err == nil {
		t.Fatalf("expected error for unnamed table")
	}
	if ok, _ := s.Exists(context.Background(), records.UsersTable); ok {
		t.Fatalf("only the seeded table should exist")
	}
}
