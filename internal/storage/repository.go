package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"finance/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists transactions in a single SQLite file.
type SQLiteRepository struct {
	db      *sql.DB
	dsn     string
	queries *Queries
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// initializes the schema before returning.
func NewSQLiteRepository(ctx context.Context, dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := buildDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		dsn:     dsn,
		queries: New(db),
	}

	if err := repo.Initialize(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// buildDSN enables WAL and a busy timeout so concurrent requests wait on the
// write lock instead of failing with SQLITE_BUSY.
// The path is escaped so '?' and '#' in it stay part of the file name.
func buildDSN(dbPath string) string {
	u := url.URL{
		Scheme:   "file",
		OmitHost: true,
		Path:     dbPath,
		RawQuery: "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
	}
	return u.String()
}

// Initialize ensures the transactions table exists. Safe to call repeatedly.
func (r *SQLiteRepository) Initialize(ctx context.Context) error {
	if err := RunMigrations(r.dsn); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	slog.DebugContext(ctx, "Schema initialized", "dsn", r.dsn)
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Insert stores tx and returns the id assigned by the database.
func (r *SQLiteRepository) Insert(ctx context.Context, tx core.Transaction) (int64, error) {
	id, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		Amount:      tx.Amount,
		Category:    tx.Category,
		Type:        string(tx.Type),
		Date:        tx.Date,
		Description: tx.Description,
	})
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"type", tx.Type,
		"category", tx.Category,
		"amount", tx.Amount,
		"date", tx.Date)

	return id, nil
}

// ListAll returns every transaction in the range, newest date first.
func (r *SQLiteRepository) ListAll(ctx context.Context, rng core.DateRange) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx, boundsOf(rng))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		out[i] = row.toCore()
	}
	return out, nil
}

// Get returns the transaction with the given id, or core.ErrNotFound.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return row.toCore(), nil
}

// DeleteByID removes the row with the given id and reports whether one existed.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	affected, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if affected == 0 {
		return false, nil
	}

	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id)
	return true, nil
}

// SumByType returns the total amount for t; 0 when nothing matches.
func (r *SQLiteRepository) SumByType(ctx context.Context, t core.Type, rng core.DateRange) (float64, error) {
	total, err := r.queries.SumByType(ctx, string(t), boundsOf(rng))
	if err != nil {
		return 0, fmt.Errorf("sum %s: %w", t, err)
	}
	return total, nil
}

// SumGroupedByCategory returns per-category totals for t, largest first.
func (r *SQLiteRepository) SumGroupedByCategory(ctx context.Context, t core.Type, rng core.DateRange) ([]core.CategoryTotal, error) {
	rows, err := r.queries.SumByCategory(ctx, string(t), boundsOf(rng))
	if err != nil {
		return nil, fmt.Errorf("sum %s by category: %w", t, err)
	}

	out := make([]core.CategoryTotal, len(rows))
	for i, row := range rows {
		out[i] = core.CategoryTotal{Category: row.Category, Total: row.Total}
	}
	return out, nil
}

func boundsOf(rng core.DateRange) DateBounds {
	return DateBounds{From: rng.From, To: rng.To}
}

func (row TransactionRow) toCore() core.Transaction {
	return core.Transaction{
		ID:          row.ID,
		Amount:      row.Amount,
		Category:    row.Category,
		Type:        core.Type(row.Type),
		Date:        row.Date,
		Description: row.Description.String,
	}
}
