package dashboard

import (
	"context"
	"errors"
	"testing"

	"finman/internal/core"
	"finman/internal/log"
)

type fakeReaders struct {
	persons    []core.PersonTotals
	categories []core.CategoryTotals
	err        error
}

func (f *fakeReaders) TotalsByPerson(ctx context.Context) ([]core.PersonTotals, error) {
	return f.persons, f.err
}

func (f *fakeReaders) TotalsByCategory(ctx context.Context) ([]core.CategoryTotals, error) {
	return f.categories, f.err
}

func newTestService(f *fakeReaders) *Service {
	return NewService(f, f, log.New("test"))
}

func TestServiceTotalsByPerson_GrandTotal(t *testing.T) {
	svc := newTestService(&fakeReaders{
		persons: []core.PersonTotals{
			{PersonID: 1, PersonName: "Ana",
				TotalIncome: core.Money{Cents: 10000}, TotalExpense: core.Money{Cents: 4000},
				Balance: core.Money{Cents: 6000}},
			{PersonID: 2, PersonName: "Bob",
				TotalIncome: core.Money{Cents: 0}, TotalExpense: core.Money{Cents: 0}},
			{PersonID: 3, PersonName: "Carla",
				TotalIncome: core.Money{Cents: 500}, TotalExpense: core.Money{Cents: 2500},
				Balance: core.Money{Cents: -2000}},
		},
	})

	report, err := svc.TotalsByPerson(context.Background())
	if err != nil {
		t.Fatalf("TotalsByPerson: %v", err)
	}

	if len(report.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(report.Items))
	}

	var income, expense int64
	for _, item := range report.Items {
		income += item.TotalIncome.Cents
		expense += item.TotalExpense.Cents
	}
	if report.GrandTotal.TotalIncome.Cents != income {
		t.Errorf("grand total income = %d, want %d", report.GrandTotal.TotalIncome.Cents, income)
	}
	if report.GrandTotal.TotalExpense.Cents != expense {
		t.Errorf("grand total expense = %d, want %d", report.GrandTotal.TotalExpense.Cents, expense)
	}
	if report.GrandTotal.Balance.Cents != income-expense {
		t.Errorf("grand total balance = %d, want %d", report.GrandTotal.Balance.Cents, income-expense)
	}
}

func TestServiceTotalsByPerson_Empty(t *testing.T) {
	svc := newTestService(&fakeReaders{persons: []core.PersonTotals{}})

	report, err := svc.TotalsByPerson(context.Background())
	if err != nil {
		t.Fatalf("TotalsByPerson: %v", err)
	}
	if report.Items == nil || len(report.Items) != 0 {
		t.Errorf("Items = %#v, want empty non-nil slice", report.Items)
	}
	if report.GrandTotal != (core.Totals{}) {
		t.Errorf("GrandTotal = %+v, want all zero", report.GrandTotal)
	}
}

func TestServiceTotalsByCategory_GrandTotal(t *testing.T) {
	svc := newTestService(&fakeReaders{
		categories: []core.CategoryTotals{
			{CategoryID: 1, CategoryDescription: "Groceries",
				TotalExpense: core.Money{Cents: 8000}},
			{CategoryID: 2, CategoryDescription: "Salary",
				TotalIncome: core.Money{Cents: 250000}},
		},
	})

	report, err := svc.TotalsByCategory(context.Background())
	if err != nil {
		t.Fatalf("TotalsByCategory: %v", err)
	}
	want := core.Totals{
		TotalIncome:  core.Money{Cents: 250000},
		TotalExpense: core.Money{Cents: 8000},
		Balance:      core.Money{Cents: 242000},
	}
	if report.GrandTotal != want {
		t.Errorf("GrandTotal = %+v, want %+v", report.GrandTotal, want)
	}
}

func TestServiceTotals_ReaderError(t *testing.T) {
	readerErr := errors.New("db gone")
	svc := newTestService(&fakeReaders{err: readerErr})

	if _, err := svc.TotalsByPerson(context.Background()); !errors.Is(err, readerErr) {
		t.Errorf("TotalsByPerson error = %v, want wrapped reader error", err)
	}
	if _, err := svc.TotalsByCategory(context.Background()); !errors.Is(err, readerErr) {
		t.Errorf("TotalsByCategory error = %v, want wrapped reader error", err)
	}
}
