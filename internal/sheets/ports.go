package sheets

import (
	"context"

	"finance/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionExporter mirrors stored transactions into an external sheet.
	// Both operations are idempotent so redelivered events are harmless.
	TransactionExporter interface {
		// AppendTransaction writes tx, replacing any row that already holds tx.ID.
		AppendTransaction(ctx context.Context, tx core.Transaction) (rowRef string, err error)
		// DeleteTransaction removes the row for id. A missing row is not an error.
		DeleteTransaction(ctx context.Context, id int64) error
	}

	// CategoryReader lists the suggested category names per transaction type.
	CategoryReader interface {
		ListCategories(ctx context.Context) (income []string, expense []string, err error)
	}
)
