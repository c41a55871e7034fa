package memory

import (
	"context"
	"testing"
	"time"

	"finman/internal/core"
	"finman/internal/sheets"
)

func TestStoreAppend(t *testing.T) {
	store := New()
	ctx := context.Background()

	ref, err := store.Append(ctx, sheets.TransactionRow{
		ID:                  1,
		CreatedAt:           time.Now().UTC(),
		Description:         "Groceries",
		Amount:              core.Money{Cents: 4200},
		Type:                core.TypeExpense,
		PersonName:          "Ana",
		CategoryDescription: "Food",
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}

	ref, err = store.Append(ctx, sheets.TransactionRow{ID: 2})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ref != "mem:2" {
		t.Errorf("ref = %q, want mem:2", ref)
	}

	rows := store.Rows()
	if len(rows) != 2 || rows[0].Description != "Groceries" {
		t.Errorf("Rows = %+v", rows)
	}
}
