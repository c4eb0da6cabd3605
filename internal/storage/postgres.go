package storage

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"finsmart/internal/records"
	"finsmart/internal/sheets"
)

//go:embed postgres_schema.sql
var postgresSchema string

// PostgresConfig holds the PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	// MaxPoolSize is the maximum number of connections in the pool.
	MaxPoolSize int
}

// PostgresStore uses the same header + row layout as SQLiteStore, with
// native text[] columns.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var (
	_ sheets.TableMedium = (*PostgresStore)(nil)
	_ sheets.Pinger      = (*PostgresStore)(nil)
)

func NewPostgresStore(ctx context.Context, cfg PostgresConfig, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 5
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxPoolSize)
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	logger.Info("connected to PostgreSQL", "host", cfg.Host, "port", cfg.Port, "database", cfg.Database)
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Exists(ctx context.Context, name string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM record_tables WHERE name = $1)`, name).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return ok, nil
}

func (s *PostgresStore) Create(ctx context.Context, name string, columns []string) error {
	if columns == nil {
		columns = []string{}
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO record_tables (name, columns) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		name, columns)
	if err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}
	return nil
}

func (s *PostgresStore) Read(ctx context.Context, name string) (records.Table, error) {
	var columns []string
	err := s.pool.QueryRow(ctx, `SELECT columns FROM record_tables WHERE name = $1`, name).Scan(&columns)
	if errors.Is(err, pgx.ErrNoRows) {
		return records.Table{}, fmt.Errorf("%w: %s", sheets.ErrTableNotFound, name)
	}
	if err != nil {
		return records.Table{}, fmt.Errorf("read table %s: %w", name, err)
	}

	rows, err := s.pool.Query(ctx, `SELECT cells FROM record_rows WHERE table_name = $1 ORDER BY position`, name)
	if err != nil {
		return records.Table{}, fmt.Errorf("read rows of %s: %w", name, err)
	}
	cells, err := pgx.CollectRows(rows, pgx.RowTo[[]string])
	if err != nil {
		return records.Table{}, fmt.Errorf("scan rows of %s: %w", name, err)
	}

	t := records.NewTable(name, columns)
	t.Rows = append(t.Rows, cells...)
	return t, nil
}

// Write replaces header and rows in one transaction, copying rows in bulk.
func (s *PostgresStore) Write(ctx context.Context, t records.Table) error {
	if t.Name == "" {
		return errors.New("write: table name is required")
	}
	columns := t.Columns
	if columns == nil {
		columns = []string{}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO record_tables (name, columns, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET columns = EXCLUDED.columns, updated_at = now()`,
		t.Name, columns)
	if err != nil {
		return fmt.Errorf("upsert header of %s: %w", t.Name, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM record_rows WHERE table_name = $1`, t.Name); err != nil {
		return fmt.Errorf("clear rows of %s: %w", t.Name, err)
	}

	src := make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		if r == nil {
			r = []string{}
		}
		src[i] = []any{t.Name, i, r}
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"record_rows"},
		[]string{"table_name", "position", "cells"},
		pgx.CopyFromRows(src),
	)
	if err != nil {
		return fmt.Errorf("copy rows of %s: %w", t.Name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s: %w", t.Name, err)
	}
	s.logger.DebugContext(ctx, "Table written to PostgreSQL", "table", t.Name, "rows", len(t.Rows))
	return nil
}
