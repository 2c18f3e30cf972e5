package core

// CategoryTotal is the sum of amounts for one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// Summary aggregates all transactions into totals and per-category breakdowns.
type Summary struct {
	TotalIncome        float64         `json:"total_income"`
	TotalExpenses      float64         `json:"total_expenses"`
	CurrentBalance     float64         `json:"current_balance"`
	ExpensesByCategory []CategoryTotal `json:"expenses_by_category"`
	IncomeByCategory   []CategoryTotal `json:"income_by_category"`
}

// NewSummary builds a Summary, deriving the balance from the two totals.
// Nil breakdowns become empty slices so they encode as [] rather than null.
func NewSummary(income, expenses float64, incomeByCat, expensesByCat []CategoryTotal) Summary {
	if incomeByCat == nil {
		incomeByCat = []CategoryTotal{}
	}
	if expensesByCat == nil {
		expensesByCat = []CategoryTotal{}
	}
	return Summary{
		TotalIncome:        income,
		TotalExpenses:      expenses,
		CurrentBalance:     income - expenses,
		ExpensesByCategory: expensesByCat,
		IncomeByCategory:   incomeByCat,
	}
}
