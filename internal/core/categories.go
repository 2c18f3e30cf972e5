package core

// DefaultCategories are the category names the dashboard offers per type.
// Categories stay free-form; these are suggestions only.
var DefaultCategories = map[Type][]string{
	TypeIncome: {
		"Salary",
		"Freelance",
		"Business",
		"Investment",
		"Gift",
		"Other Income",
	},
	TypeExpense: {
		"Food & Dining",
		"Transportation",
		"Shopping",
		"Entertainment",
		"Bills & Utilities",
		"Healthcare",
		"Education",
		"Travel",
		"Insurance",
		"Other Expense",
	},
}

// CategoriesFor returns a copy of the suggested categories for t.
func CategoriesFor(t Type) []string {
	return append([]string(nil), DefaultCategories[t]...)
}
