package services

import (
	"context"
	"fmt"
	"log/slog"

	"finance/internal/amqp"
	"finance/internal/core"

	"golang.org/x/sync/errgroup"
)

// TransactionStore is the persistence surface the service needs.
type TransactionStore interface {
	Insert(ctx context.Context, tx core.Transaction) (int64, error)
	ListAll(ctx context.Context, rng core.DateRange) ([]core.Transaction, error)
	Get(ctx context.Context, id int64) (core.Transaction, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
	SumByType(ctx context.Context, t core.Type, rng core.DateRange) (float64, error)
	SumGroupedByCategory(ctx context.Context, t core.Type, rng core.DateRange) ([]core.CategoryTotal, error)
	Ping(ctx context.Context) error
	Close() error
}

// EventPublisher announces committed writes. *amqp.Client satisfies it.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, kind amqp.EventKind, id int64) error
	Close() error
}

// TransactionService orchestrates transaction operations across SQLite and AMQP
type TransactionService struct {
	store     TransactionStore
	publisher EventPublisher
}

// NewTransactionService wires the store with an optional publisher (nil disables events).
func NewTransactionService(store TransactionStore, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
	}
}

func (s *TransactionService) List(ctx context.Context, rng core.DateRange) ([]core.Transaction, error) {
	return s.store.ListAll(ctx, rng)
}

func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	return s.store.Get(ctx, id)
}

// Create saves a transaction locally and publishes a created event.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, fmt.Errorf("validate transaction: %w", err)
	}

	id, err := s.store.Insert(ctx, tx)
	if err != nil {
		return 0, err
	}

	// The row is committed; a broker failure must not fail the request.
	s.publish(ctx, amqp.EventCreated, id)

	return id, nil
}

// Delete removes a transaction and reports whether it existed. The deleted
// event is only published when a row was actually removed.
func (s *TransactionService) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.publish(ctx, amqp.EventDeleted, id)
	}
	return deleted, nil
}

// Summary computes totals and per-category breakdowns, running the four
// aggregate queries concurrently.
func (s *TransactionService) Summary(ctx context.Context, rng core.DateRange) (core.Summary, error) {
	var (
		income, expenses           float64
		incomeByCat, expensesByCat []core.CategoryTotal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		income, err = s.store.SumByType(gctx, core.TypeIncome, rng)
		return err
	})
	g.Go(func() (err error) {
		expenses, err = s.store.SumByType(gctx, core.TypeExpense, rng)
		return err
	})
	g.Go(func() (err error) {
		incomeByCat, err = s.store.SumGroupedByCategory(gctx, core.TypeIncome, rng)
		return err
	})
	g.Go(func() (err error) {
		expensesByCat, err = s.store.SumGroupedByCategory(gctx, core.TypeExpense, rng)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Summary{}, err
	}

	return core.NewSummary(income, expenses, incomeByCat, expensesByCat), nil
}

// Ping reports whether the backing store is reachable.
func (s *TransactionService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *TransactionService) publish(ctx context.Context, kind amqp.EventKind, id int64) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping event", "event", kind, "id", id)
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, kind, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"event", kind,
			"id", id,
			"error", err)
	}
}

// Close closes both storage and AMQP connections
func (s *TransactionService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}
