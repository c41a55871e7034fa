// Package worker moves transactions from SQLite to the spreadsheet.
// The AMQP queue is the fast path; a periodic scan over rows with
// synced_at IS NULL catches anything the queue lost.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finman/internal/amqp"
	"finman/internal/core"
	"finman/internal/sheets"
	"finman/internal/storage"
)

type ExportWorker struct {
	storage   *storage.SQLiteRepository
	appender  sheets.RowAppender
	batchSize int
}

func NewExportWorker(storage *storage.SQLiteRepository, appender sheets.RowAppender, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		appender:  appender,
		batchSize: batchSize,
	}
}

// HandleEvent processes one queued transaction event.
func (w *ExportWorker) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	switch event.Kind {
	case amqp.KindUpsert:
		err := w.exportTransaction(ctx, event.ID)
		if errors.Is(err, core.ErrNotFound) {
			// The transaction was deleted before the event was consumed.
			// Requeueing would redeliver it forever, so ack and move on.
			slog.InfoContext(ctx, "Transaction gone before export, dropping event", "id", event.ID)
			return nil
		}
		return err
	case amqp.KindDelete:
		// Exported rows are an append-only journal; a deleted
		// transaction stays on the sheet. Nothing to do but note it.
		slog.InfoContext(ctx, "Transaction deleted, exported row kept", "id", event.ID)
		return nil
	default:
		return fmt.Errorf("unknown event kind %q", event.Kind)
	}
}

// ProcessPending exports one batch of rows the queue missed.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.PendingExportTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		if err := w.exportTransaction(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction", "id", p.ID, "error", err)
		}
	}

	return nil
}

// StartupCheck drains the backlog accumulated while the worker was
// down. It uses a larger batch than the periodic scan.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.storage.PendingExportTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	exported := 0
	failed := 0
	for _, p := range pending {
		if err := w.exportTransaction(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction during startup",
				"id", p.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)

	return nil
}

func (w *ExportWorker) exportTransaction(ctx context.Context, id int64) error {
	row, err := w.storage.GetExportRow(ctx, id)
	if err != nil {
		// A missing row is gone, not broken; flagging it would write to
		// a record that no longer exists.
		if !errors.Is(err, core.ErrNotFound) {
			if markErr := w.storage.MarkExportError(ctx, id); markErr != nil {
				slog.ErrorContext(ctx, "Failed to mark export error", "id", id, "error", markErr)
			}
		}
		return fmt.Errorf("load transaction %d: %w", id, err)
	}

	ref, err := w.appender.Append(ctx, sheets.TransactionRow{
		ID:                  row.ID,
		CreatedAt:           row.CreatedAt,
		Description:         row.Description,
		Amount:              row.Amount,
		Type:                row.Type,
		PersonName:          row.PersonName,
		CategoryDescription: row.CategoryDescription,
	})
	if err != nil {
		if markErr := w.storage.MarkExportError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.storage.MarkExported(ctx, id); err != nil {
		// The append worked; losing the mark only means one duplicate
		// row on the next scan.
		slog.ErrorContext(ctx, "Failed to mark as exported", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Exported transaction",
		"id", id,
		"sheets_ref", ref,
		"amount_cents", row.Amount.Cents)

	return nil
}
