package storage

import (
	"context"
	"os"
	"strconv"
	"testing"

	"finsmart/internal/records"
)

func TestNewPostgresStore_ConnectionFailure(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "127.0.0.1",
		Port:     1,
		Database: "finsmart",
		User:     "finsmart",
		Password: "password",
	}
	if _, err := NewPostgresStore(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error when nothing listens on the port")
	}
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	if os.Getenv("TEST_POSTGRES_HOST") == "" {
		t.Skip("TEST_POSTGRES_HOST not set, skipping integration test")
	}
	port, _ := strconv.Atoi(os.Getenv("TEST_POSTGRES_PORT"))
	ctx := context.Background()
	s, err := NewPostgresStore(ctx, PostgresConfig{
		Host:     os.Getenv("TEST_POSTGRES_HOST"),
		Port:     port,
		Database: os.Getenv("TEST_POSTGRES_DB"),
		User:     os.Getenv("TEST_POSTGRES_USER"),
		Password: os.Getenv("TEST_POSTGRES_PASSWORD"),
	}, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer s.Close()

	const name = "IntegrationUsers"
	if err := s.Create(ctx, name, records.Users.Columns); err != nil {
		t.Fatalf("create: %v", err)
	}
	want := records.NewTable(name, records.Users.Columns).Append([]string{"a@b.c", "h", "10"})
	if err := s.Write(ctx, want); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := s.Read(ctx, name)
	if err != nil || !got.Equal(want) {
		t.Fatalf("round trip mismatch: %+v err=%v", got, err)
	}
}
