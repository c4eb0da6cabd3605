package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"finsmart/internal/records"
	"finsmart/internal/sheets"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps every table as a header row in record_tables and its
// rows in record_rows.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var (
	_ sheets.TableMedium = (*SQLiteStore)(nil)
	_ sheets.Pinger      = (*SQLiteStore)(nil)
)

func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger.Info("SQLite table store ready", "path", dbPath)
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Exists(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM record_tables WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return n > 0, nil
}

// Create registers an empty table. An existing table is left alone.
func (s *SQLiteStore) Create(ctx context.Context, name string, columns []string) error {
	header, err := encodeCells(columns)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR IGNORE INTO record_tables (name, columns) VALUES (?, ?)`, name, header)
	if err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) Read(ctx context.Context, name string) (records.Table, error) {
	var header string
	err := s.db.QueryRowContext(ctx, `SELECT columns FROM record_tables WHERE name = ?`, name).Scan(&header)
	if errors.Is(err, sql.ErrNoRows) {
		return records.Table{}, fmt.Errorf("%w: %s", sheets.ErrTableNotFound, name)
	}
	if err != nil {
		return records.Table{}, fmt.Errorf("read table %s: %w", name, err)
	}
	columns, err := decodeCells(name, header)
	if err != nil {
		return records.Table{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT cells FROM record_rows WHERE table_name = ? ORDER BY position`, name)
	if err != nil {
		return records.Table{}, fmt.Errorf("read rows of %s: %w", name, err)
	}
	defer rows.Close()

	t := records.NewTable(name, columns)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return records.Table{}, fmt.Errorf("scan row of %s: %w", name, err)
		}
		cells, err := decodeCells(name, raw)
		if err != nil {
			return records.Table{}, err
		}
		t.Rows = append(t.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return records.Table{}, fmt.Errorf("iterate rows of %s: %w", name, err)
	}
	return t, nil
}

// Write replaces header and rows inside one transaction.
func (s *SQLiteStore) Write(ctx context.Context, t records.Table) error {
	if t.Name == "" {
		return errors.New("write: table name is required")
	}
	header, err := encodeCells(t.Columns)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO record_tables (name, columns, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET columns = excluded.columns, updated_at = CURRENT_TIMESTAMP`,
		t.Name, header)
	if err != nil {
		return fmt.Errorf("upsert header of %s: %w", t.Name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM record_rows WHERE table_name = ?`, t.Name); err != nil {
		return fmt.Errorf("clear rows of %s: %w", t.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO record_rows (table_name, position, cells) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for i, r := range t.Rows {
		cells, err := encodeCells(r)
		if err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, t.Name, i, cells); err != nil {
			return fmt.Errorf("insert row %d of %s: %w", i, t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", t.Name, err)
	}
	s.logger.DebugContext(ctx, "Table written to SQLite", "table", t.Name, "rows", len(t.Rows))
	return nil
}
