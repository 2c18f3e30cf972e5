package google

import (
	"fmt"
	"strconv"
	"strings"

	"finance/internal/core"
)

func headerRow() []any {
	return []any{"ID", "Date", "Type", "Category", "Amount", "Description"}
}

// transactionRow lays tx out as columns A..F.
func transactionRow(tx core.Transaction) []any {
	return []any{tx.ID, tx.Date, string(tx.Type), tx.Category, tx.Amount, tx.Description}
}

// findRowByID returns the 1-based row whose first cell is id, or 0.
func findRowByID(values [][]any, id int64) int {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		got, ok := parseID(row[0])
		if ok && got == id {
			return i + 1
		}
	}
	return 0
}

// parseID accepts ids rendered as integers or as whole floats ("12", 12, "12.0").
func parseID(v any) (int64, bool) {
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}
