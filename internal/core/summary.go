package core

// Totals carries income/expense sums and their balance. It is used both
// per group and for the consolidated grand total, so every client reads
// one server-computed number instead of re-deriving it.
type Totals struct {
	TotalIncome  Money `json:"totalIncome"`
	TotalExpense Money `json:"totalExpense"`
	Balance      Money `json:"balance"`
}

// PersonTotals is one dashboard row: a person and the sums over their
// transactions. A person with no transactions still gets a row with
// zero totals.
type PersonTotals struct {
	PersonID     int64  `json:"personId"`
	PersonName   string `json:"personName"`
	TotalIncome  Money  `json:"totalIncome"`
	TotalExpense Money  `json:"totalExpense"`
	Balance      Money  `json:"balance"`
}

// CategoryTotals is one dashboard row keyed by category.
type CategoryTotals struct {
	CategoryID          int64  `json:"categoryId"`
	CategoryDescription string `json:"categoryDescription"`
	TotalIncome         Money  `json:"totalIncome"`
	TotalExpense        Money  `json:"totalExpense"`
	Balance             Money  `json:"balance"`
}
