// Package dashboard aggregates transactions into per-person and
// per-category totals plus a consolidated grand total. All sums run in
// SQL so the numbers reflect one consistent snapshot of the store.
package dashboard

import (
	"context"
	"database/sql"
	"fmt"

	"finman/internal/core"
)

// Repository runs the aggregation queries. It only reads, so it takes
// a plain handle instead of the full storage repository.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// TotalsByPerson returns one row per person, including persons with no
// transactions. Missing sums coalesce to zero, never to NULL.
func (r *Repository) TotalsByPerson(ctx context.Context) ([]core.PersonTotals, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id,
		       p.name,
		       COALESCE(SUM(CASE WHEN t.type = 'income' THEN t.amount_cents END), 0),
		       COALESCE(SUM(CASE WHEN t.type = 'expense' THEN t.amount_cents END), 0)
		FROM persons p
		LEFT JOIN transactions t ON t.person_id = p.id
		GROUP BY p.id, p.name
		ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("totals by person: %w", err)
	}
	defer rows.Close()

	items := []core.PersonTotals{}
	for rows.Next() {
		var item core.PersonTotals
		if err := rows.Scan(&item.PersonID, &item.PersonName,
			&item.TotalIncome.Cents, &item.TotalExpense.Cents); err != nil {
			return nil, fmt.Errorf("scan person totals: %w", err)
		}
		item.Balance = item.TotalIncome.Sub(item.TotalExpense)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("totals by person: %w", err)
	}
	return items, nil
}

// TotalsByCategory returns one row per category, ordered by description.
// SQLite's default BINARY collation makes the order case-sensitive.
func (r *Repository) TotalsByCategory(ctx context.Context) ([]core.CategoryTotals, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id,
		       c.description,
		       COALESCE(SUM(CASE WHEN t.type = 'income' THEN t.amount_cents END), 0),
		       COALESCE(SUM(CASE WHEN t.type = 'expense' THEN t.amount_cents END), 0)
		FROM categories c
		LEFT JOIN transactions t ON t.category_id = c.id
		GROUP BY c.id, c.description
		ORDER BY c.description, c.id`)
	if err != nil {
		return nil, fmt.Errorf("totals by category: %w", err)
	}
	defer rows.Close()

	items := []core.CategoryTotals{}
	for rows.Next() {
		var item core.CategoryTotals
		if err := rows.Scan(&item.CategoryID, &item.CategoryDescription,
			&item.TotalIncome.Cents, &item.TotalExpense.Cents); err != nil {
			return nil, fmt.Errorf("scan category totals: %w", err)
		}
		item.Balance = item.TotalIncome.Sub(item.TotalExpense)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("totals by category: %w", err)
	}
	return items, nil
}
