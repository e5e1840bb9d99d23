package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyReport is the exported summary of one household month, written
// to an external report sheet by the worker.
type MonthlyReport struct {
	HouseholdID   string
	HouseholdName string
	Year          int
	Month         int
	Income        decimal.Decimal
	Expenses      decimal.Decimal
	Savings       decimal.Decimal
	GeneratedAt   time.Time
}

// NewMonthlyReport derives the savings column from income and expenses.
func NewMonthlyReport(h *Household, year, month int, income, expenses decimal.Decimal) MonthlyReport {
	return MonthlyReport{
		HouseholdID:   h.ID,
		HouseholdName: h.Name,
		Year:          year,
		Month:         month,
		Income:        income,
		Expenses:      expenses,
		Savings:       income.Sub(expenses),
		GeneratedAt:   time.Now().UTC(),
	}
}
