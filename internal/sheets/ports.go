package sheets

import (
	"context"
	"errors"

	"finsmart/internal/records"
)

var (
	// ErrTableNotFound is returned by Read when the medium has no table by that name.
	ErrTableNotFound = errors.New("table not found")
	// ErrCorrupt is returned by Read when stored content cannot be parsed as a table.
	ErrCorrupt = errors.New("table content is corrupt")
)

// Ports for outbound adapters.
type (
	// TableMedium stores whole named tables. Write fully replaces prior
	// content and must leave it untouched when it fails.
	TableMedium interface {
		Exists(ctx context.Context, name string) (bool, error)
		Create(ctx context.Context, name string, columns []string) error
		Read(ctx context.Context, name string) (records.Table, error)
		Write(ctx context.Context, t records.Table) error
	}

	// Pinger is implemented by media with a reachability probe.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
