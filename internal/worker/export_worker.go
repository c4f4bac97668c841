// Package worker exports transaction writes to a spreadsheet log.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// ExportWorker consumes transaction events and appends one export row
// per write. A periodic catch-up pass walks the repository and exports
// anything this process has not appended yet, covering events missed
// while the worker was down.
type ExportWorker struct {
	repo      storage.Repository
	appender  sheets.RowAppender
	batchSize int

	mu       sync.Mutex
	exported map[string]struct{}
}

func NewExportWorker(repo storage.Repository, appender sheets.RowAppender, batchSize int) *ExportWorker {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ExportWorker{
		repo:      repo,
		appender:  appender,
		batchSize: batchSize,
		exported:  make(map[string]struct{}),
	}
}

// HandleEvent processes a single transaction event. Returning an error
// makes the consumer requeue the delivery.
func (w *ExportWorker) HandleEvent(ctx context.Context, e *events.TransactionEvent) error {
	slog.InfoContext(ctx, "processing transaction event", "action", e.Action, "id", e.ID)

	switch e.Action {
	case events.ActionCreated, events.ActionUpdated:
		tx, err := w.repo.Get(ctx, e.ID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// Deleted before we got to it; the delete event
				// will produce its own row.
				slog.WarnContext(ctx, "transaction gone before export", "id", e.ID)
				return nil
			}
			return fmt.Errorf("load transaction %s: %w", e.ID, err)
		}
		if _, err := w.appender.AppendRow(ctx, sheets.NewExportRow(e.Action, tx)); err != nil {
			return fmt.Errorf("append export row: %w", err)
		}
		w.markExported(e.ID)
		return nil

	case events.ActionDeleted:
		if _, err := w.appender.AppendRow(ctx, sheets.NewTombstoneRow(e.Action, e.ID)); err != nil {
			return fmt.Errorf("append tombstone row: %w", err)
		}
		w.forget(e.ID)
		return nil

	default:
		// Unknown actions are dropped, not requeued.
		slog.WarnContext(ctx, "unknown event action", "action", e.Action, "id", e.ID)
		return nil
	}
}

// CatchUp pages through the repository and exports every transaction
// not yet appended by this process. It returns the number exported.
func (w *ExportWorker) CatchUp(ctx context.Context) (int, error) {
	exportedNow := 0

	for page := 1; ; page++ {
		f := core.Filter{Page: page, Limit: w.batchSize}
		items, total, err := w.repo.List(ctx, f)
		if err != nil {
			return exportedNow, fmt.Errorf("list transactions for catch-up: %w", err)
		}

		for _, tx := range items {
			if w.isExported(tx.ID) {
				continue
			}
			if _, err := w.appender.AppendRow(ctx, sheets.NewExportRow(events.ActionCreated, tx)); err != nil {
				return exportedNow, fmt.Errorf("catch-up append for %s: %w", tx.ID, err)
			}
			w.markExported(tx.ID)
			exportedNow++
		}

		if int64(page*w.batchSize) >= total || len(items) == 0 {
			break
		}
	}

	if exportedNow > 0 {
		slog.InfoContext(ctx, "catch-up pass completed", "exported", exportedNow)
	}
	return exportedNow, nil
}

// RunCatchUp runs catch-up passes at the given interval until the
// context is canceled. Pass failures are logged and retried on the next
// tick rather than aborting the loop.
func (w *ExportWorker) RunCatchUp(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.CatchUp(ctx); err != nil {
				slog.ErrorContext(ctx, "catch-up pass failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *ExportWorker) isExported(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.exported[id]
	return ok
}

func (w *ExportWorker) markExported(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.exported[id] = struct{}{}
}

func (w *ExportWorker) forget(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.exported, id)
}
