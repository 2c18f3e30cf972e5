package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// TransactionRow mirrors one row of the transactions table.
type TransactionRow struct {
	ID          int64
	Amount      float64
	Category    string
	Type        string
	Date        string
	Description sql.NullString
}

type CategorySumRow struct {
	Category string
	Total    float64
}

type CreateTransactionParams struct {
	Amount      float64
	Category    string
	Type        string
	Date        string
	Description string
}

// DateBounds are optional inclusive bounds on the date column; "" means open.
type DateBounds struct {
	From string
	To   string
}

func (b DateBounds) args() []interface{} {
	return []interface{}{b.From, b.From, b.To, b.To}
}

const dateFilter = `(? = '' OR date >= ?) AND (? = '' OR date <= ?)`

const createTransaction = `
INSERT INTO transactions (amount, category, type, date, description)
VALUES (?, ?, ?, ?, ?)
`

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createTransaction,
		arg.Amount,
		arg.Category,
		arg.Type,
		arg.Date,
		arg.Description,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getTransaction = `
SELECT id, amount, category, type, date, description
FROM transactions
WHERE id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id)
	var i TransactionRow
	err := row.Scan(
		&i.ID,
		&i.Amount,
		&i.Category,
		&i.Type,
		&i.Date,
		&i.Description,
	)
	return i, err
}

const listTransactions = `
SELECT id, amount, category, type, date, description
FROM transactions
WHERE ` + dateFilter + `
ORDER BY date DESC, id DESC
`

func (q *Queries) ListTransactions(ctx context.Context, bounds DateBounds) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, bounds.args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []TransactionRow{}
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(
			&i.ID,
			&i.Amount,
			&i.Category,
			&i.Type,
			&i.Date,
			&i.Description,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteTransaction = `
DELETE FROM transactions
WHERE id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const sumByType = `
SELECT COALESCE(SUM(amount), 0.0) AS total
FROM transactions
WHERE type = ? AND ` + dateFilter

func (q *Queries) SumByType(ctx context.Context, txType string, bounds DateBounds) (float64, error) {
	args := append([]interface{}{txType}, bounds.args()...)
	row := q.db.QueryRowContext(ctx, sumByType, args...)
	var total float64
	err := row.Scan(&total)
	return total, err
}

const sumByCategory = `
SELECT category, SUM(amount) AS total
FROM transactions
WHERE type = ? AND ` + dateFilter + `
GROUP BY category
ORDER BY total DESC, category ASC
`

func (q *Queries) SumByCategory(ctx context.Context, txType string, bounds DateBounds) ([]CategorySumRow, error) {
	args := append([]interface{}{txType}, bounds.args()...)
	rows, err := q.db.QueryContext(ctx, sumByCategory, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CategorySumRow{}
	for rows.Next() {
		var i CategorySumRow
		if err := rows.Scan(&i.Category, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
