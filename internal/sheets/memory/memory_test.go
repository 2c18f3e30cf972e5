package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"finance/internal/core"
)

func TestMemoryStoreAppendIsIdempotent(t *testing.T) {
	s := New(nil, nil)
	ctx := context.Background()
	tx := core.Transaction{ID: 7, Amount: 12.5, Category: "Food", Type: core.TypeExpense, Date: "2024-01-01"}

	ref, err := s.AppendTransaction(ctx, tx)
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	tx.Amount = 13
	ref, err = s.AppendTransaction(ctx, tx)
	if err != nil || ref != "mem:1" {
		t.Fatalf("re-append should replace row 1: ref=%q err=%v", ref, err)
	}
	rows := s.Rows()
	if len(rows) != 1 || rows[0].Amount != 13 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	s := New(nil, nil)
	_, err := s.AppendTransaction(context.Background(), core.Transaction{ID: 1, Category: "x", Type: "other", Date: "2024-01-01"})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := New(nil, nil)
	ctx := context.Background()
	for id := int64(1); id <= 3; id++ {
		if _, err := s.AppendTransaction(ctx, core.Transaction{ID: id, Amount: 1, Category: "c", Type: core.TypeIncome, Date: "2024-01-01"}); err != nil {
			t.Fatalf("append %d: %v", id, err)
		}
	}
	if err := s.DeleteTransaction(ctx, 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, 42); err != nil {
		t.Fatalf("deleting a missing row must not fail: %v", err)
	}
	rows := s.Rows()
	if len(rows) != 2 || rows[0].ID != 1 || rows[1].ID != 3 {
		t.Fatalf("unexpected rows after delete: %+v", rows)
	}
}

func TestNewFromFilesSeedsAndDedupe(t *testing.T) {
	dir := t.TempDir()
	// No files -> defaults
	s := NewFromFiles(dir)
	income, expense, _ := s.ListCategories(context.Background())
	if len(income) != len(core.DefaultCategories[core.TypeIncome]) || len(expense) != len(core.DefaultCategories[core.TypeExpense]) {
		t.Fatalf("expected defaults when files missing, got %v / %v", income, expense)
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("seed_income_categories.txt", "# header\nSalary\nBonus\nSalary\n\n")
	mustWrite("seed_expense_categories.txt", "# header\nRent\nRent\nFood\n\n")

	s = NewFromFiles(dir)
	income, expense, _ = s.ListCategories(context.Background())
	if len(income) != 2 || income[0] != "Salary" || income[1] != "Bonus" {
		t.Fatalf("unexpected income: %v", income)
	}
	if len(expense) != 2 || expense[0] != "Rent" || expense[1] != "Food" {
		t.Fatalf("unexpected expense: %v", expense)
	}
}
