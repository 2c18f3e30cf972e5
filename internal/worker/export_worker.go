package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finance/internal/amqp"
	"finance/internal/core"
	"finance/internal/sheets"
)

// TransactionReader is the read side of storage the worker needs.
type TransactionReader interface {
	Get(ctx context.Context, id int64) (core.Transaction, error)
	ListAll(ctx context.Context, rng core.DateRange) ([]core.Transaction, error)
}

// ExportWorker mirrors transaction events from AMQP into a sheet.
type ExportWorker struct {
	store    TransactionReader
	exporter sheets.TransactionExporter
}

func NewExportWorker(store TransactionReader, exporter sheets.TransactionExporter) *ExportWorker {
	return &ExportWorker{
		store:    store,
		exporter: exporter,
	}
}

// Handle processes a single event from AMQP. A returned error requeues the
// message, so only transient failures are reported.
func (w *ExportWorker) Handle(ctx context.Context, evt *amqp.TransactionEvent) error {
	switch evt.Event {
	case amqp.EventCreated:
		return w.handleCreated(ctx, evt.ID)
	case amqp.EventDeleted:
		return w.handleDeleted(ctx, evt.ID)
	default:
		// Decoding already rejects these; guard against direct callers.
		slog.WarnContext(ctx, "Skipping event with unknown kind", "event", evt.Event, "id", evt.ID)
		return nil
	}
}

func (w *ExportWorker) handleCreated(ctx context.Context, id int64) error {
	tx, err := w.store.Get(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		slog.InfoContext(ctx, "Transaction deleted before export, skipping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	ref, err := w.exporter.AppendTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("append to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Successfully exported transaction",
		"id", id,
		"sheets_ref", ref,
		"type", tx.Type,
		"category", tx.Category,
		"amount", tx.Amount)
	return nil
}

func (w *ExportWorker) handleDeleted(ctx context.Context, id int64) error {
	if err := w.exporter.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete from sheets: %w", err)
	}
	slog.InfoContext(ctx, "Successfully removed transaction from sheet", "id", id)
	return nil
}

// StartupSync exports every stored transaction. Rows already in the sheet are
// rewritten in place, so this recovers from events missed while the worker
// was down. Individual failures are logged and counted, not returned.
func (w *ExportWorker) StartupSync(ctx context.Context) error {
	all, err := w.store.ListAll(ctx, core.DateRange{})
	if err != nil {
		return fmt.Errorf("list transactions for startup sync: %w", err)
	}

	if len(all) == 0 {
		slog.InfoContext(ctx, "No transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Exporting stored transactions on startup", "count", len(all))

	successCount := 0
	errorCount := 0
	for _, tx := range all {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := w.exporter.AppendTransaction(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction during startup",
				"id", tx.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(all),
		"synced", successCount,
		"errors", errorCount)

	return nil
}
