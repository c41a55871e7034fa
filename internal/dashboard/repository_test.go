package dashboard

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"finman/internal/core"
	"finman/internal/storage"
)

func newTestStore(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "dashboard_test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func addPerson(t *testing.T, store *storage.SQLiteRepository, name string) core.Person {
	t.Helper()
	p, err := store.CreatePerson(context.Background(), core.Person{Name: name, Age: 30})
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	return p
}

func addCategory(t *testing.T, store *storage.SQLiteRepository, description string) core.Category {
	t.Helper()
	c, err := store.CreateCategory(context.Background(), core.Category{
		Description: description, Purpose: core.PurposeBoth,
	})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return c
}

func addTransaction(t *testing.T, store *storage.SQLiteRepository, personID, categoryID int64, txType core.TransactionType, cents int64) {
	t.Helper()
	_, err := store.CreateTransaction(context.Background(), core.Transaction{
		Description: "test",
		Amount:      core.Money{Cents: cents},
		Type:        txType,
		CategoryID:  categoryID,
		PersonID:    personID,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
}

func TestTotalsByPerson_Scenario(t *testing.T) {
	store := newTestStore(t)
	repo := NewRepository(store.DB())

	ana := addPerson(t, store, "Ana")
	bob := addPerson(t, store, "Bob")
	cat := addCategory(t, store, "Misc")
	addTransaction(t, store, ana.ID, cat.ID, core.TypeIncome, 10000)
	addTransaction(t, store, ana.ID, cat.ID, core.TypeExpense, 4000)

	items, err := repo.TotalsByPerson(context.Background())
	if err != nil {
		t.Fatalf("TotalsByPerson: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(items))
	}

	byID := map[int64]core.PersonTotals{}
	for _, item := range items {
		byID[item.PersonID] = item
	}

	got := byID[ana.ID]
	if got.TotalIncome.Cents != 10000 || got.TotalExpense.Cents != 4000 || got.Balance.Cents != 6000 {
		t.Errorf("Ana totals = %+v", got)
	}
	if got.PersonName != "Ana" {
		t.Errorf("Ana name = %q", got.PersonName)
	}

	// Bob has no transactions but still gets a row with zero totals.
	got = byID[bob.ID]
	if got.TotalIncome.Cents != 0 || got.TotalExpense.Cents != 0 || got.Balance.Cents != 0 {
		t.Errorf("Bob totals = %+v, want all zero", got)
	}
}

func TestTotalsByPerson_Completeness(t *testing.T) {
	store := newTestStore(t)
	repo := NewRepository(store.DB())

	for _, name := range []string{"Ana", "Bob", "Carla", "Dario"} {
		addPerson(t, store, name)
	}

	items, err := repo.TotalsByPerson(context.Background())
	if err != nil {
		t.Fatalf("TotalsByPerson: %v", err)
	}
	if len(items) != 4 {
		t.Errorf("expected one row per person (4), got %d", len(items))
	}
}

func TestTotalsByPerson_BalanceIdentity(t *testing.T) {
	store := newTestStore(t)
	repo := NewRepository(store.DB())

	p := addPerson(t, store, "Ana")
	cat := addCategory(t, store, "Misc")
	addTransaction(t, store, p.ID, cat.ID, core.TypeIncome, 12345)
	addTransaction(t, store, p.ID, cat.ID, core.TypeIncome, 55)
	addTransaction(t, store, p.ID, cat.ID, core.TypeExpense, 20000)

	items, err := repo.TotalsByPerson(context.Background())
	if err != nil {
		t.Fatalf("TotalsByPerson: %v", err)
	}
	for _, item := range items {
		if item.Balance.Cents != item.TotalIncome.Cents-item.TotalExpense.Cents {
			t.Errorf("balance identity broken for person %d: %+v", item.PersonID, item)
		}
	}
	// Balance may go negative; it is a signed quantity.
	if items[0].Balance.Cents != -7600 {
		t.Errorf("Balance = %d, want -7600", items[0].Balance.Cents)
	}
}

func TestTotalsByCategory_ZeroCoalescingAndSingleSide(t *testing.T) {
	store := newTestStore(t)
	repo := NewRepository(store.DB())

	p := addPerson(t, store, "Ana")
	salary := addCategory(t, store, "Salary")
	empty := addCategory(t, store, "Unused")
	addTransaction(t, store, p.ID, salary.ID, core.TypeIncome, 250000)

	items, err := repo.TotalsByCategory(context.Background())
	if err != nil {
		t.Fatalf("TotalsByCategory: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(items))
	}

	byID := map[int64]core.CategoryTotals{}
	for _, item := range items {
		byID[item.CategoryID] = item
	}

	// Income-only category still reports a zero expense side.
	got := byID[salary.ID]
	if got.TotalIncome.Cents != 250000 || got.TotalExpense.Cents != 0 {
		t.Errorf("Salary totals = %+v", got)
	}

	got = byID[empty.ID]
	if got.TotalIncome.Cents != 0 || got.TotalExpense.Cents != 0 || got.Balance.Cents != 0 {
		t.Errorf("Unused totals = %+v, want all zero", got)
	}
}

func TestTotalsByCategory_Ordering(t *testing.T) {
	store := newTestStore(t)
	repo := NewRepository(store.DB())

	// Case-sensitive lexical order: uppercase sorts before lowercase.
	for _, description := range []string{"travel", "Groceries", "Zoo", "apartment"} {
		addCategory(t, store, description)
	}

	items, err := repo.TotalsByCategory(context.Background())
	if err != nil {
		t.Fatalf("TotalsByCategory: %v", err)
	}

	want := []string{"Groceries", "Zoo", "apartment", "travel"}
	if len(items) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(items))
	}
	for i, description := range want {
		if items[i].CategoryDescription != description {
			t.Errorf("items[%d] = %q, want %q", i, items[i].CategoryDescription, description)
		}
	}
}

func TestTotals_EmptyStore(t *testing.T) {
	store := newTestStore(t)
	repo := NewRepository(store.DB())
	ctx := context.Background()

	persons, err := repo.TotalsByPerson(ctx)
	if err != nil {
		t.Fatalf("TotalsByPerson: %v", err)
	}
	if len(persons) != 0 {
		t.Errorf("expected no person rows, got %+v", persons)
	}

	categories, err := repo.TotalsByCategory(ctx)
	if err != nil {
		t.Fatalf("TotalsByCategory: %v", err)
	}
	if len(categories) != 0 {
		t.Errorf("expected no category rows, got %+v", categories)
	}
}
