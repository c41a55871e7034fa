// Package services orchestrates validation, persistence and export
// notifications for the tracker's entities.
package services

import (
	"context"
	"fmt"

	"finman/internal/core"
	"finman/internal/storage"
)

type PersonService struct {
	storage *storage.SQLiteRepository
}

func NewPersonService(storage *storage.SQLiteRepository) *PersonService {
	return &PersonService{storage: storage}
}

func (s *PersonService) List(ctx context.Context) ([]core.Person, error) {
	return s.storage.ListPersons(ctx)
}

func (s *PersonService) Get(ctx context.Context, id int64) (core.Person, error) {
	if id <= 0 {
		return core.Person{}, core.ErrNotFound
	}
	return s.storage.GetPerson(ctx, id)
}

func (s *PersonService) Create(ctx context.Context, p core.Person) (core.Person, error) {
	if err := p.Validate(); err != nil {
		return core.Person{}, fmt.Errorf("validate person: %w", err)
	}
	return s.storage.CreatePerson(ctx, p)
}

func (s *PersonService) Update(ctx context.Context, p core.Person) error {
	if p.ID <= 0 {
		return core.ErrNotFound
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validate person: %w", err)
	}
	return s.storage.UpdatePerson(ctx, p)
}

// Delete removes the person and, through the store, all of their
// transactions.
func (s *PersonService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return core.ErrNotFound
	}
	return s.storage.DeletePerson(ctx, id)
}
