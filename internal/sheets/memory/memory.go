package memory

import (
	"context"
	"fmt"
	"sync"

	"finsmart/internal/records"
	"finsmart/internal/sheets"
)

// Store keeps tables in process memory. Used by tests and DATA_BACKEND=memory.
type Store struct {
	mu     sync.Mutex
	tables map[string]records.Table
}

func New(seed ...records.Table) *Store {
	s := &Store{tables: make(map[string]records.Table, len(seed))}
	for _, t := range seed {
		s.tables[t.Name] = t.Clone()
	}
	return s
}

func (s *Store) Exists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tables[name]
	return ok, nil
}

// Create stores an empty table. An existing table is left alone.
func (s *Store) Create(_ context.Context, name string, columns []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[name]; !ok {
		s.tables[name] = records.NewTable(name, columns)
	}
	return nil
}

func (s *Store) Read(_ context.Context, name string) (records.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	if !ok {
		return records.Table{}, fmt.Errorf("%w: %s", sheets.ErrTableNotFound, name)
	}
	return t.Clone(), nil
}

// Write swaps in a copy of t.
func (s *Store) Write(_ context.Context, t records.Table) error {
	if t.Name == "" {
		return fmt.Errorf("write: table name is required")
	}
	cp := t.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[t.Name] = cp
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }
