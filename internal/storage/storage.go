// Package storage persists the tracker's entities in a single-file
// SQLite database. Referential integrity lives here: deleting a person
// cascades to their transactions, deleting a referenced category is
// refused by the store.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finman/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// DB exposes the handle for read-only consumers such as the dashboard
// aggregation repository.
func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

// ---- persons ----

func (r *SQLiteRepository) ListPersons(ctx context.Context) ([]core.Person, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, age FROM persons ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	defer rows.Close()

	persons := []core.Person{}
	for rows.Next() {
		var p core.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Age); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	return persons, nil
}

func (r *SQLiteRepository) GetPerson(ctx context.Context, id int64) (core.Person, error) {
	var p core.Person
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, age FROM persons WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Age)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Person{}, core.ErrNotFound
	}
	if err != nil {
		return core.Person{}, fmt.Errorf("get person: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) CreatePerson(ctx context.Context, p core.Person) (core.Person, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO persons (name, age) VALUES (?, ?)`, p.Name, p.Age)
	if err != nil {
		return core.Person{}, fmt.Errorf("create person: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return core.Person{}, fmt.Errorf("person insert id: %w", err)
	}

	slog.InfoContext(ctx, "Person saved", "id", p.ID, "name", p.Name)
	return p, nil
}

func (r *SQLiteRepository) UpdatePerson(ctx context.Context, p core.Person) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE persons SET name = ?, age = ? WHERE id = ?`, p.Name, p.Age, p.ID)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	return rowsOrNotFound(res)
}

// DeletePerson removes the person; the store cascades the delete to all
// of their transactions.
func (r *SQLiteRepository) DeletePerson(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM persons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	if err := rowsOrNotFound(res); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Person deleted with its transactions", "id", id)
	return nil
}

func (r *SQLiteRepository) PersonExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM persons WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("person exists: %w", err)
	}
	return exists, nil
}

// ---- categories ----

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, purpose FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Description, &c.Purpose); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, description, purpose FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Description, &c.Purpose)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (description, purpose) VALUES (?, ?)`,
		c.Description, string(c.Purpose))
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category insert id: %w", err)
	}

	slog.InfoContext(ctx, "Category saved", "id", c.ID, "description", c.Description)
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET description = ?, purpose = ? WHERE id = ?`,
		c.Description, string(c.Purpose), c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return rowsOrNotFound(res)
}

// DeleteCategory refuses to remove a category that still has
// transactions; history must keep its references.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		if isFKViolation(err) {
			return core.ErrCategoryInUse
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return rowsOrNotFound(res)
}

func (r *SQLiteRepository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("category exists: %w", err)
	}
	return exists, nil
}

// ---- transactions ----

const transactionColumns = `id, description, amount_cents, type, category_id, person_id, created_at`

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []core.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return transactions, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (description, amount_cents, type, category_id, person_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tx.Description, tx.Amount.Cents, string(tx.Type), tx.CategoryID, tx.PersonID,
		tx.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	tx.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"description", tx.Description,
		"amount_cents", tx.Amount.Cents,
		"type", string(tx.Type))
	return tx, nil
}

// UpdateTransaction rewrites the mutable columns. created_at is left
// untouched so the original creation instant survives every update.
// The row is queued for re-export.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET description = ?, amount_cents = ?, type = ?, category_id = ?, person_id = ?,
		     synced_at = NULL, sync_error = 0
		 WHERE id = ?`,
		tx.Description, tx.Amount.Cents, string(tx.Type), tx.CategoryID, tx.PersonID, tx.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return rowsOrNotFound(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return rowsOrNotFound(res)
}

// ---- export queue ----

// ExportRow is a transaction joined with its person and category names,
// ready to be appended to the spreadsheet.
type ExportRow struct {
	ID                  int64
	Description         string
	Amount              core.Money
	Type                core.TransactionType
	PersonName          string
	CategoryDescription string
	CreatedAt           time.Time
}

// PendingExport holds the minimal identifiers of a not-yet-exported
// transaction for queue messages and catch-up scans.
type PendingExport struct {
	ID        int64
	CreatedAt time.Time
}

func (r *SQLiteRepository) PendingExportTransactions(ctx context.Context, limit int) ([]PendingExport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at FROM transactions
		 WHERE synced_at IS NULL AND sync_error = 0
		 ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("pending export transactions: %w", err)
	}
	defer rows.Close()

	pending := []PendingExport{}
	for rows.Next() {
		var p PendingExport
		var createdAt string
		if err := rows.Scan(&p.ID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan pending export: %w", err)
		}
		p.CreatedAt, err = parseStoredTime(createdAt)
		if err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pending export transactions: %w", err)
	}
	return pending, nil
}

func (r *SQLiteRepository) GetExportRow(ctx context.Context, id int64) (ExportRow, error) {
	var row ExportRow
	var createdAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT t.id, t.description, t.amount_cents, t.type, p.name, c.description, t.created_at
		 FROM transactions t
		 JOIN persons p ON p.id = t.person_id
		 JOIN categories c ON c.id = t.category_id
		 WHERE t.id = ?`, id).
		Scan(&row.ID, &row.Description, &row.Amount.Cents, &row.Type,
			&row.PersonName, &row.CategoryDescription, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ExportRow{}, core.ErrNotFound
	}
	if err != nil {
		return ExportRow{}, fmt.Errorf("get export row: %w", err)
	}
	row.CreatedAt, err = parseStoredTime(createdAt)
	if err != nil {
		return ExportRow{}, err
	}
	return row, nil
}

func (r *SQLiteRepository) MarkExported(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET synced_at = ?, sync_error = 0 WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("mark transaction exported: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as exported", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkExportError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_error = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark transaction export error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with export error", "id", id)
	return nil
}

// ---- helpers ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var tx core.Transaction
	var createdAt string
	err := row.Scan(&tx.ID, &tx.Description, &tx.Amount.Cents, &tx.Type,
		&tx.CategoryID, &tx.PersonID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, err
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	tx.CreatedAt, err = parseStoredTime(createdAt)
	if err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func parseStoredTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

func rowsOrNotFound(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return core.ErrNotFound
	}
	return nil
}

func isFKViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
