// Package csvfile stores each table as <dir>/<lower(name)>.csv.
package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"finsmart/internal/records"
	"finsmart/internal/sheets"
)

type Store struct {
	dir string
}

// New returns a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("csv data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the file backing table name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, strings.ToLower(name)+".csv")
}

func (s *Store) Exists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(s.Path(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", name, err)
}

func (s *Store) Create(ctx context.Context, name string, columns []string) error {
	ok, err := s.Exists(ctx, name)
	if err != nil || ok {
		return err
	}
	return s.Write(ctx, records.NewTable(name, columns))
}

// Read parses the file. Rows may be ragged; an empty file or malformed
// quoting is reported as sheets.ErrCorrupt.
func (s *Store) Read(_ context.Context, name string) (records.Table, error) {
	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return records.Table{}, fmt.Errorf("%w: %s", sheets.ErrTableNotFound, name)
	}
	if err != nil {
		return records.Table{}, fmt.Errorf("read %s: %w", name, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return records.Table{}, fmt.Errorf("%w: %s is empty", sheets.ErrCorrupt, name)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return records.Table{}, fmt.Errorf("%w: %s: %v", sheets.ErrCorrupt, name, err)
	}

	t := records.NewTable(name, all[0])
	t.Rows = all[1:]
	return t, nil
}

// Write replaces the file through a temp file and rename, so a failed write
// leaves the previous content in place.
func (s *Store) Write(_ context.Context, t records.Table) error {
	if t.Name == "" {
		return errors.New("write: table name is required")
	}
	tmp, err := os.CreateTemp(s.dir, "."+strings.ToLower(t.Name)+"-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	w := csv.NewWriter(tmp)
	if err := w.Write(t.Columns); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", t.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", t.Name, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(t.Name)); err != nil {
		return fmt.Errorf("replace %s: %w", t.Name, err)
	}
	return nil
}

// Ping checks that the data directory is still there.
func (s *Store) Ping(context.Context) error {
	st, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}
