// Package store owns the lifecycle of the record tables: load with
// self-healing, validated append, and whole-table save.
package store

import (
	"context"
	"errors"
	"fmt"

	"finsmart/internal/core"
	"finsmart/internal/log"
	"finsmart/internal/records"
	"finsmart/internal/sheets"
)

// SaveObserver is told about every table that was saved successfully.
type SaveObserver interface {
	TableSaved(ctx context.Context, t records.Table)
}

// Store loads and saves whole tables on a medium. It keeps no table data
// between calls; concurrent read-modify-write cycles are last-writer-wins.
type Store struct {
	medium    sheets.TableMedium
	logger    *log.Logger
	observers []SaveObserver
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l.WithComponent(log.ComponentStore) }
}

// WithObserver registers o for save notifications.
func WithObserver(o SaveObserver) Option {
	return func(s *Store) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

func New(medium sheets.TableMedium, opts ...Option) *Store {
	s := &Store{medium: medium, logger: log.Discard()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Medium returns the backing medium.
func (s *Store) Medium() sheets.TableMedium { return s.medium }

// Load returns the table named by schema, normalized. It never fails:
//   - a missing table is created with the canonical header;
//   - corrupt content is replaced by the empty canonical table;
//   - an unreachable medium yields the empty table and nothing is written.
func (s *Store) Load(ctx context.Context, schema records.Schema) records.Table {
	t, err := s.medium.Read(ctx, schema.Name)
	switch {
	case err == nil:
		return schema.Normalize(t)

	case errors.Is(err, sheets.ErrTableNotFound):
		s.logger.InfoContext(ctx, "Table missing, creating empty shell",
			log.FieldTable, schema.Name, log.FieldOperation, log.OpCreate)
		if err := s.medium.Create(ctx, schema.Name, schema.Columns); err != nil {
			s.logger.WarnContext(ctx, "Failed to persist empty table",
				log.FieldTable, schema.Name, log.FieldError, err)
		}
		return schema.Empty()

	case errors.Is(err, sheets.ErrCorrupt):
		s.logger.WarnContext(ctx, "Table content unreadable, resetting to empty",
			log.FieldTable, schema.Name, log.FieldError, err)
		if err := s.medium.Write(ctx, schema.Empty()); err != nil {
			s.logger.WarnContext(ctx, "Failed to re-persist empty table",
				log.FieldTable, schema.Name, log.FieldError, err)
		}
		return schema.Empty()

	default:
		s.logger.ErrorContext(ctx, "Storage unavailable, serving empty table",
			log.FieldTable, schema.Name, log.FieldOperation, log.OpLoad, log.FieldError, err,
			"error_type", log.ErrorTypeStorage)
		return schema.Empty()
	}
}

// Save replaces the whole stored table. Tables with a known name are
// normalized first. Errors wrap core.ErrStorageUnavailable.
func (s *Store) Save(ctx context.Context, t records.Table) error {
	if schema, ok := records.SchemaFor(t.Name); ok && !conforms(schema, t) {
		t = schema.Normalize(t)
	}
	if err := s.medium.Write(ctx, t); err != nil {
		log.NewStructuredLogger(s.logger).LogError(ctx, "Failed to save table", err,
			log.ComponentStore, log.OpSave, log.NewFields().WithTable(t.Name, t.Len()))
		return fmt.Errorf("save %s: %w: %w", t.Name, core.ErrStorageUnavailable, err)
	}
	s.logger.DebugContext(ctx, "Table saved", log.FieldTable, t.Name, log.FieldRows, t.Len())
	for _, o := range s.observers {
		o.TableSaved(ctx, t)
	}
	return nil
}

// Reconcile rewrites a stored table whose header or row widths differ from
// the canonical layout. A missing table is created.
func (s *Store) Reconcile(ctx context.Context, schema records.Schema) error {
	t, err := s.medium.Read(ctx, schema.Name)
	switch {
	case errors.Is(err, sheets.ErrTableNotFound):
		if err := s.medium.Create(ctx, schema.Name, schema.Columns); err != nil {
			return fmt.Errorf("create %s: %w: %w", schema.Name, core.ErrStorageUnavailable, err)
		}
		return nil
	case errors.Is(err, sheets.ErrCorrupt):
		s.logger.WarnContext(ctx, "Corrupt table reset during reconcile", log.FieldTable, schema.Name, log.FieldError, err)
		return s.Save(ctx, schema.Empty())
	case err != nil:
		return fmt.Errorf("read %s: %w: %w", schema.Name, core.ErrStorageUnavailable, err)
	}

	if conforms(schema, t) {
		return nil
	}
	s.logger.InfoContext(ctx, "Rewriting table with canonical columns",
		log.FieldTable, schema.Name, log.FieldOperation, log.OpReconcile, "stored_columns", t.Columns)
	return s.Save(ctx, schema.Normalize(t))
}

// ReconcileAll reconciles every known table and joins the failures.
func (s *Store) ReconcileAll(ctx context.Context) error {
	var errs []error
	for _, schema := range records.Schemas() {
		if err := s.Reconcile(ctx, schema); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Ping probes the medium when it supports it.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.medium.(sheets.Pinger); ok {
		return p.Ping(ctx)
	}
	_, err := s.medium.Exists(ctx, records.UsersTable)
	return err
}

func conforms(schema records.Schema, t records.Table) bool {
	if t.Name != schema.Name || !schema.Matches(t.Columns) {
		return false
	}
	for _, r := range t.Rows {
		if len(r) != len(schema.Columns) {
			return false
		}
	}
	return true
}
