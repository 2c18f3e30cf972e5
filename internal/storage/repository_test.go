package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"finance/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "finance.db")
	repo, err := NewSQLiteRepository(context.Background(), path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustInsert(t *testing.T, repo *SQLiteRepository, tx core.Transaction) int64 {
	t.Helper()
	id, err := repo.Insert(context.Background(), tx)
	if err != nil {
		t.Fatalf("Insert(%+v): %v", tx, err)
	}
	return id
}

func TestBuildDSN(t *testing.T) {
	const pragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	tests := map[string]string{
		"./data/finance.db":   "file:./data/finance.db" + pragmas,
		"/var/lib/finance.db": "file:/var/lib/finance.db" + pragmas,
		"/tmp/a?b/finance.db": "file:/tmp/a%3Fb/finance.db" + pragmas,
		"/tmp/a#b/finance.db": "file:/tmp/a%23b/finance.db" + pragmas,
		"/tmp/my dir/fin.db":  "file:/tmp/my%20dir/fin.db" + pragmas,
	}
	for in, want := range tests {
		if got := buildDSN(in); got != want {
			t.Errorf("buildDSN(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOpenPathWithURIMetacharacters(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "q?x#y")
	path := filepath.Join(dir, "finance.db")

	repo, err := NewSQLiteRepository(ctx, path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	mustInsert(t, repo, core.Transaction{Amount: 4, Category: "c", Type: core.TypeIncome, Date: "2024-01-01"})
	repo.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database not created at %q: %v", path, err)
	}

	repo, err = NewSQLiteRepository(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	rows, err := repo.ListAll(ctx, core.DateRange{})
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows after reopen = %d, want 1", len(rows))
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "finance.db")
	repo, err := NewSQLiteRepository(ctx, path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	defer repo.Close()
	id := mustInsert(t, repo, core.Transaction{Amount: 1, Category: "c", Type: core.TypeIncome, Date: "2024-01-01"})

	for i := 0; i < 3; i++ {
		if err := repo.Initialize(ctx); err != nil {
			t.Fatalf("Initialize #%d: %v", i, err)
		}
	}
	if _, err := repo.Get(ctx, id); err != nil {
		t.Fatalf("row lost after re-initialize: %v", err)
	}

	// Reopening an existing file must not fail either.
	again, err := NewSQLiteRepository(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer again.Close()
	if _, err := again.Get(ctx, id); err != nil {
		t.Fatalf("row not visible after reopen: %v", err)
	}
}

func TestInsertListOrderAndDefaults(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := mustInsert(t, repo, core.Transaction{Amount: 50, Category: "Salary", Type: core.TypeIncome, Date: "2024-01-01"})
	second := mustInsert(t, repo, core.Transaction{Amount: 20, Category: "Food", Type: core.TypeExpense, Date: "2024-01-02", Description: "lunch"})
	if second <= first {
		t.Fatalf("ids must increase: first=%d second=%d", first, second)
	}

	list, err := repo.ListAll(ctx, core.DateRange{})
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(list))
	}
	if list[0].Date != "2024-01-02" || list[1].Date != "2024-01-01" {
		t.Fatalf("expected date DESC order, got %q then %q", list[0].Date, list[1].Date)
	}
	if list[1].Description != "" {
		t.Fatalf("expected empty description, got %q", list[1].Description)
	}
	if list[0].Type != core.TypeExpense || list[0].Description != "lunch" || list[0].Amount != 20 {
		t.Fatalf("unexpected row: %+v", list[0])
	}
}

func TestListAllEmptyIsNonNil(t *testing.T) {
	repo := newTestRepo(t)
	list, err := repo.ListAll(context.Background(), core.DateRange{})
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", list)
	}
}

func TestListAllDateRange(t *testing.T) {
	repo := newTestRepo(t)
	for _, d := range []string{"2024-01-01", "2024-02-10", "2024-03-05"} {
		mustInsert(t, repo, core.Transaction{Amount: 1, Category: "c", Type: core.TypeExpense, Date: d})
	}
	list, err := repo.ListAll(context.Background(), core.DateRange{From: "2024-02-01", To: "2024-02-28"})
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(list) != 1 || list[0].Date != "2024-02-10" {
		t.Fatalf("unexpected filtered list: %+v", list)
	}
}

func TestDeleteByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ok, err := repo.DeleteByID(ctx, 999)
	if err != nil || ok {
		t.Fatalf("delete unknown id: ok=%v err=%v", ok, err)
	}

	id := mustInsert(t, repo, core.Transaction{Amount: 1, Category: "c", Type: core.TypeExpense, Date: "2024-01-01"})
	ok, err = repo.DeleteByID(ctx, id)
	if err != nil || !ok {
		t.Fatalf("first delete: ok=%v err=%v", ok, err)
	}
	ok, err = repo.DeleteByID(ctx, id)
	if err != nil || ok {
		t.Fatalf("second delete: ok=%v err=%v", ok, err)
	}
	if _, err := repo.Get(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Get after delete: want ErrNotFound, got %v", err)
	}

	// Ids are never reused after deletion.
	next := mustInsert(t, repo, core.Transaction{Amount: 1, Category: "c", Type: core.TypeExpense, Date: "2024-01-01"})
	if next <= id {
		t.Fatalf("id %d reused or decreased after deleting %d", next, id)
	}
}

func TestConcurrentDeleteSucceedsOnce(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	id := mustInsert(t, repo, core.Transaction{Amount: 1, Category: "c", Type: core.TypeExpense, Date: "2024-01-01"})

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.DeleteByID(ctx, id)
			if err != nil {
				t.Errorf("DeleteByID: %v", err)
				return
			}
			if ok {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if successes != 1 {
		t.Fatalf("expected exactly one successful delete, got %d", successes)
	}
}

func TestCheckConstraintRejectsBadType(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Insert(context.Background(), core.Transaction{Amount: 1, Category: "c", Type: "transfer", Date: "2024-01-01"})
	if err == nil {
		t.Fatalf("expected CHECK constraint failure")
	}
}

func TestSums(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	total, err := repo.SumByType(ctx, core.TypeIncome, core.DateRange{})
	if err != nil || total != 0 {
		t.Fatalf("empty SumByType = %v, %v", total, err)
	}
	cats, err := repo.SumGroupedByCategory(ctx, core.TypeExpense, core.DateRange{})
	if err != nil || cats == nil || len(cats) != 0 {
		t.Fatalf("empty SumGroupedByCategory = %#v, %v", cats, err)
	}

	rows := []core.Transaction{
		{Amount: 1000, Category: "Salary", Type: core.TypeIncome, Date: "2024-01-01"},
		{Amount: -50, Category: "Gift", Type: core.TypeIncome, Date: "2024-01-03"},
		{Amount: 12.5, Category: "Food", Type: core.TypeExpense, Date: "2024-01-02"},
		{Amount: 30, Category: "Food", Type: core.TypeExpense, Date: "2024-01-04"},
		{Amount: 100, Category: "Rent", Type: core.TypeExpense, Date: "2024-01-05"},
	}
	for _, tx := range rows {
		mustInsert(t, repo, tx)
	}

	income, err := repo.SumByType(ctx, core.TypeIncome, core.DateRange{})
	if err != nil || income != 950 {
		t.Fatalf("income = %v, %v; want 950 (negative income reduces the total)", income, err)
	}
	expenses, err := repo.SumByType(ctx, core.TypeExpense, core.DateRange{})
	if err != nil || expenses != 142.5 {
		t.Fatalf("expenses = %v, %v; want 142.5", expenses, err)
	}

	byCat, err := repo.SumGroupedByCategory(ctx, core.TypeExpense, core.DateRange{})
	if err != nil {
		t.Fatalf("SumGroupedByCategory: %v", err)
	}
	want := []core.CategoryTotal{{Category: "Rent", Total: 100}, {Category: "Food", Total: 42.5}}
	if len(byCat) != len(want) {
		t.Fatalf("byCat = %+v, want %+v", byCat, want)
	}
	var sum float64
	for i := range want {
		if byCat[i] != want[i] {
			t.Fatalf("byCat[%d] = %+v, want %+v", i, byCat[i], want[i])
		}
		sum += byCat[i].Total
	}
	if sum != expenses {
		t.Fatalf("category totals %v != type total %v", sum, expenses)
	}

	ranged, err := repo.SumByType(ctx, core.TypeExpense, core.DateRange{From: "2024-01-03"})
	if err != nil || ranged != 130 {
		t.Fatalf("ranged expenses = %v, %v; want 130", ranged, err)
	}
}
