package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	// CategoryExpense is one category's share of a month's expenses.
	CategoryExpense struct {
		Category     TransactionCategory
		CategoryName string
		Amount       decimal.Decimal
		Percentage   decimal.Decimal // 0-100, one decimal place
	}

	// TrendPoint is one calendar month inside the trend window.
	TrendPoint struct {
		Year     int
		Month    int // 1-12
		Label    string
		Income   decimal.Decimal
		Expenses decimal.Decimal
		Savings  decimal.Decimal
	}

	// Dashboard is the derived view over a household's ledger for one
	// target month plus a rolling trend window.
	Dashboard struct {
		TotalBalance       decimal.Decimal
		Currency           string
		Year               int
		Month              int
		MonthlyIncome      decimal.Decimal
		MonthlyExpenses    decimal.Decimal
		ExpensesByCategory []CategoryExpense
		MonthlyTrend       []TrendPoint
	}

	// CategoryAmount is a (category, summed amount) row from the store.
	CategoryAmount struct {
		Category TransactionCategory
		Amount   decimal.Decimal
	}

	// MonthTotals is a (year, month) bucket with income and expense sums
	// from the store.
	MonthTotals struct {
		Year     int
		Month    int
		Income   decimal.Decimal
		Expenses decimal.Decimal
	}
)

// MonthLabel renders a trend bucket label such as "Mar 2026".
func MonthLabel(year, month int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}

// BuildCategoryBreakdown attaches display names and percentage shares to
// per-category expense sums. Percentages are relative to totalExpenses,
// rounded to one decimal place; a zero total yields 0% rows instead of a
// division error.
func BuildCategoryBreakdown(rows []CategoryAmount, totalExpenses decimal.Decimal) []CategoryExpense {
	if len(rows) == 0 {
		return nil
	}

	total := totalExpenses
	if total.Cmp(decimal.Zero) <= 0 {
		total = decimal.New(1, 0)
	}

	out := make([]CategoryExpense, 0, len(rows))
	for _, r := range rows {
		out = append(out, CategoryExpense{
			Category:     r.Category,
			CategoryName: r.Category.DisplayName(),
			Amount:       r.Amount,
			Percentage:   r.Amount.Div(total).Mul(hundred).Round(1),
		})
	}
	return out
}

// BuildTrend labels month buckets and derives savings as income minus
// expenses. Savings is never stored, only computed here.
func BuildTrend(rows []MonthTotals) []TrendPoint {
	out := make([]TrendPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, TrendPoint{
			Year:     r.Year,
			Month:    r.Month,
			Label:    MonthLabel(r.Year, r.Month),
			Income:   r.Income,
			Expenses: r.Expenses,
			Savings:  r.Income.Sub(r.Expenses),
		})
	}
	return out
}
