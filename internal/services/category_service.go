package services

import (
	"context"
	"fmt"

	"finman/internal/core"
	"finman/internal/storage"
)

type CategoryService struct {
	storage *storage.SQLiteRepository
}

func NewCategoryService(storage *storage.SQLiteRepository) *CategoryService {
	return &CategoryService{storage: storage}
}

func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	return s.storage.ListCategories(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id int64) (core.Category, error) {
	if id <= 0 {
		return core.Category{}, core.ErrNotFound
	}
	return s.storage.GetCategory(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("validate category: %w", err)
	}
	return s.storage.CreateCategory(ctx, c)
}

func (s *CategoryService) Update(ctx context.Context, c core.Category) error {
	if c.ID <= 0 {
		return core.ErrNotFound
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate category: %w", err)
	}
	return s.storage.UpdateCategory(ctx, c)
}

// Delete fails with core.ErrCategoryInUse while transactions still
// reference the category.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return core.ErrNotFound
	}
	return s.storage.DeleteCategory(ctx, id)
}
