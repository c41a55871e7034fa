package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"finman/internal/amqp"
	"finman/internal/core"
	"finman/internal/sheets"
	"finman/internal/sheets/memory"
	"finman/internal/storage"
)

type failingAppender struct {
	err error
}

func (f *failingAppender) Append(ctx context.Context, row sheets.TransactionRow) (string, error) {
	return "", f.err
}

func newTestStore(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	store, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "worker_test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedTransaction(t *testing.T, store *storage.SQLiteRepository, description string) core.Transaction {
	t.Helper()
	ctx := context.Background()
	p, err := store.CreatePerson(ctx, core.Person{Name: "Ana", Age: 30})
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	c, err := store.CreateCategory(ctx, core.Category{Description: "Food", Purpose: core.PurposeExpense})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	tx, err := store.CreateTransaction(ctx, core.Transaction{
		Description: description,
		Amount:      core.Money{Cents: 4200},
		Type:        core.TypeExpense,
		CategoryID:  c.ID,
		PersonID:    p.ID,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	return tx
}

func TestHandleEvent_Upsert(t *testing.T) {
	store := newTestStore(t)
	appender := memory.New()
	w := NewExportWorker(store, appender, 10)
	ctx := context.Background()

	tx := seedTransaction(t, store, "Groceries")

	if err := w.HandleEvent(ctx, amqp.NewUpsertEvent(tx.ID)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	rows := appender.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 appended row, got %d", len(rows))
	}
	if rows[0].Description != "Groceries" || rows[0].PersonName != "Ana" || rows[0].CategoryDescription != "Food" {
		t.Errorf("appended row = %+v", rows[0])
	}

	pending, err := store.PendingExportTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("PendingExportTransactions: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("transaction still pending after export: %+v", pending)
	}
}

func TestHandleEvent_DeleteIsNoOp(t *testing.T) {
	store := newTestStore(t)
	appender := memory.New()
	w := NewExportWorker(store, appender, 10)

	if err := w.HandleEvent(context.Background(), amqp.NewDeleteEvent(123)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(appender.Rows()) != 0 {
		t.Errorf("delete event should not append rows")
	}
}

func TestHandleEvent_UpsertForDeletedTransactionDropped(t *testing.T) {
	store := newTestStore(t)
	appender := memory.New()
	w := NewExportWorker(store, appender, 10)
	ctx := context.Background()

	tx := seedTransaction(t, store, "Groceries")
	if err := store.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}

	// A nil return acks the delivery; a non-nil one would requeue the
	// event forever for a row that can never come back.
	if err := w.HandleEvent(ctx, amqp.NewUpsertEvent(tx.ID)); err != nil {
		t.Fatalf("HandleEvent for deleted transaction: %v", err)
	}
	if len(appender.Rows()) != 0 {
		t.Errorf("deleted transaction was appended: %+v", appender.Rows())
	}

	if err := w.HandleEvent(ctx, amqp.NewUpsertEvent(999)); err != nil {
		t.Errorf("HandleEvent for never-existing id: %v", err)
	}
}

func TestProcessPending(t *testing.T) {
	store := newTestStore(t)
	appender := memory.New()
	w := NewExportWorker(store, appender, 10)
	ctx := context.Background()

	seedTransaction(t, store, "Groceries")

	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if len(appender.Rows()) != 1 {
		t.Fatalf("expected 1 appended row, got %d", len(appender.Rows()))
	}

	// Nothing left; a second run appends nothing.
	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if len(appender.Rows()) != 1 {
		t.Errorf("second run duplicated rows: %d", len(appender.Rows()))
	}
}

func TestProcessPending_AppendFailureMarksError(t *testing.T) {
	store := newTestStore(t)
	w := NewExportWorker(store, &failingAppender{err: errors.New("quota exceeded")}, 10)
	ctx := context.Background()

	tx := seedTransaction(t, store, "Groceries")

	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending should swallow per-row errors: %v", err)
	}

	// Row is flagged, so it leaves the pending queue until the next write.
	pending, err := store.PendingExportTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("PendingExportTransactions: %v", err)
	}
	for _, p := range pending {
		if p.ID == tx.ID {
			t.Errorf("failed row still pending: %+v", p)
		}
	}
}

func TestStartupCheck(t *testing.T) {
	store := newTestStore(t)
	appender := memory.New()
	w := NewExportWorker(store, appender, 2)
	ctx := context.Background()

	seedTransaction(t, store, "First")

	if err := w.StartupCheck(ctx); err != nil {
		t.Fatalf("StartupCheck: %v", err)
	}
	if len(appender.Rows()) != 1 {
		t.Errorf("expected 1 exported row, got %d", len(appender.Rows()))
	}
}
