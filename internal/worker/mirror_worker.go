// Package worker copies tables from the primary medium to a mirror, usually
// the Google spreadsheet, driven by table-saved events and a periodic sweep.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finsmart/internal/amqp"
	"finsmart/internal/log"
	"finsmart/internal/records"
	"finsmart/internal/sheets"
)

// MirrorWorker copies whole tables from source to target.
type MirrorWorker struct {
	source sheets.TableMedium
	target sheets.TableMedium
	logger *log.Logger
}

func NewMirrorWorker(source, target sheets.TableMedium, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &MirrorWorker{source: source, target: target, logger: logger.WithComponent(log.ComponentWorker)}
}

// HandleTableSaved mirrors the table named in msg. Unknown tables are
// acknowledged and ignored.
func (w *MirrorWorker) HandleTableSaved(ctx context.Context, msg *amqp.TableSavedMessage) error {
	schema, ok := records.SchemaFor(msg.Table)
	if !ok {
		w.logger.WarnContext(ctx, "Ignoring message for unknown table", log.FieldTable, msg.Table)
		return nil
	}
	return w.Mirror(ctx, schema)
}

// Mirror copies one table. A missing source table is not an error.
func (w *MirrorWorker) Mirror(ctx context.Context, schema records.Schema) error {
	t, err := w.source.Read(ctx, schema.Name)
	switch {
	case errors.Is(err, sheets.ErrTableNotFound):
		return nil
	case errors.Is(err, sheets.ErrCorrupt):
		w.logger.WarnContext(ctx, "Source table is corrupt, mirroring empty table", log.FieldTable, schema.Name)
		t = schema.Empty()
	case err != nil:
		return fmt.Errorf("read %s: %w", schema.Name, err)
	}

	t = schema.Normalize(t)
	if err := w.target.Write(ctx, t); err != nil {
		return fmt.Errorf("mirror %s: %w", schema.Name, err)
	}
	w.logger.InfoContext(ctx, "Table mirrored",
		log.NewFields().WithTable(t.Name, t.Len()).WithOperation(log.OpMirror).ToSlice()...)
	return nil
}

// SyncAll mirrors every known table and reports every failure.
func (w *MirrorWorker) SyncAll(ctx context.Context) error {
	var errs []error
	for _, schema := range records.Schemas() {
		if err := w.Mirror(ctx, schema); err != nil {
			w.logger.ErrorContext(ctx, "Mirror failed", log.FieldTable, schema.Name, log.FieldError, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run sweeps every interval until ctx ends. It covers events lost while the
// broker or the worker was down.
func (w *MirrorWorker) Run(ctx context.Context, interval time.Duration) error {
	if err := w.SyncAll(ctx); err != nil {
		w.logger.WarnContext(ctx, "Startup mirror sweep incomplete", log.FieldError, err)
	}
	if interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_ = w.SyncAll(ctx)
		}
	}
}
