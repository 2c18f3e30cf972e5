package core

import "errors"

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

type (
	// Type classifies a transaction as income or expense.
	Type string

	// Transaction is a single income or expense entry.
	Transaction struct {
		ID          int64   `json:"id"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Type        Type    `json:"type"`
		Date        string  `json:"date"`
		Description string  `json:"description"`
	}

	// DateRange restricts listings and summaries to dates between From and To
	// (inclusive, compared as strings). Empty bounds are open.
	DateRange struct {
		From string
		To   string
	}
)

var (
	ErrNotFound    = errors.New("transaction not found")
	ErrInvalidType = errors.New("invalid transaction type")
)

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

func (t Type) String() string {
	return string(t)
}

// ParseType returns the Type named by s, or ErrInvalidType.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

// Validate checks what storage requires. Fields only need to be non-empty;
// whitespace is stored as given. Amount sign is not checked.
func (tx Transaction) Validate() error {
	if tx.Category == "" {
		return MissingFieldError("category")
	}
	if !tx.Type.Valid() {
		return InvalidTypeError()
	}
	if tx.Date == "" {
		return MissingFieldError("date")
	}
	return nil
}
