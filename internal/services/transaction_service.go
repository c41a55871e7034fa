package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finman/internal/amqp"
	"finman/internal/core"
	"finman/internal/storage"
)

// EventPublisher notifies the export worker of transaction changes.
// A nil publisher disables notifications; the store remains the source
// of truth either way.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error
}

// TransactionService orchestrates transaction writes across SQLite and
// the export queue.
type TransactionService struct {
	storage   *storage.SQLiteRepository
	publisher EventPublisher
}

func NewTransactionService(storage *storage.SQLiteRepository, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		storage:   storage,
		publisher: publisher,
	}
}

func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx)
}

func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	if id <= 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	return s.storage.GetTransaction(ctx, id)
}

// Create validates the transaction, verifies its references and stamps
// the creation instant server-side, in UTC.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}
	if err := s.checkReferences(ctx, tx); err != nil {
		return core.Transaction{}, err
	}

	tx.CreatedAt = time.Now().UTC()

	created, err := s.storage.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publish(ctx, amqp.NewUpsertEvent(created.ID))
	return created, nil
}

func (s *TransactionService) Update(ctx context.Context, tx core.Transaction) error {
	if tx.ID <= 0 {
		return core.ErrNotFound
	}
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("validate transaction: %w", err)
	}
	if err := s.checkReferences(ctx, tx); err != nil {
		return err
	}

	if err := s.storage.UpdateTransaction(ctx, tx); err != nil {
		return err
	}

	s.publish(ctx, amqp.NewUpsertEvent(tx.ID))
	return nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return core.ErrNotFound
	}
	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, amqp.NewDeleteEvent(id))
	return nil
}

func (s *TransactionService) checkReferences(ctx context.Context, tx core.Transaction) error {
	exists, err := s.storage.CategoryExists(ctx, tx.CategoryID)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !exists {
		return fmt.Errorf("category %d: %w", tx.CategoryID, core.ErrUnknownCategory)
	}

	exists, err = s.storage.PersonExists(ctx, tx.PersonID)
	if err != nil {
		return fmt.Errorf("check person: %w", err)
	}
	if !exists {
		return fmt.Errorf("person %d: %w", tx.PersonID, core.ErrUnknownPerson)
	}
	return nil
}

// publish is best-effort: the write already succeeded locally, so a
// queue failure is logged and the request still succeeds. The pending
// scan in the worker picks the row up later.
func (s *TransactionService) publish(ctx context.Context, event *amqp.TransactionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"kind", event.Kind,
			"id", event.ID,
			"error", err)
	}
}
