package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"hearth/internal/core"
)

// Dashboard aggregates sum TEXT-encoded decimal amounts in Go rather
// than in SQL, keeping the arithmetic fixed-point end to end.

func (r *SQLiteRepository) TotalBalance(ctx context.Context, householdID string) (decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT balance FROM accounts WHERE household_id = ?", householdID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total balance: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var balance string
		if err := rows.Scan(&balance); err != nil {
			return decimal.Zero, fmt.Errorf("scan balance: %w", err)
		}
		d, err := parseDecimal(balance)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse balance: %w", err)
		}
		total = total.Add(d)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("iterate balances: %w", err)
	}
	return total, nil
}

func monthWindow(year, month int) (start, end time.Time) {
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func (r *SQLiteRepository) sumMonthlyByType(ctx context.Context, householdID string, year, month int, tType core.TransactionType) (decimal.Decimal, error) {
	start, end := monthWindow(year, month)
	rows, err := r.db.QueryContext(ctx,
		"SELECT amount FROM transactions WHERE household_id = ? AND type = ? AND date >= ? AND date < ?",
		householdID, string(tType), fmtTime(start), fmtTime(end))
	if err != nil {
		return decimal.Zero, fmt.Errorf("monthly %s: %w", tType, err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("scan amount: %w", err)
		}
		d, err := parseDecimal(amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse amount: %w", err)
		}
		total = total.Add(d)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("iterate amounts: %w", err)
	}
	return total, nil
}

func (r *SQLiteRepository) MonthlyIncome(ctx context.Context, householdID string, year, month int) (decimal.Decimal, error) {
	return r.sumMonthlyByType(ctx, householdID, year, month, core.TransactionIncome)
}

func (r *SQLiteRepository) MonthlyExpenses(ctx context.Context, householdID string, year, month int) (decimal.Decimal, error) {
	return r.sumMonthlyByType(ctx, householdID, year, month, core.TransactionExpense)
}

func (r *SQLiteRepository) ExpensesByCategory(ctx context.Context, householdID string, year, month int) ([]core.CategoryAmount, error) {
	start, end := monthWindow(year, month)
	rows, err := r.db.QueryContext(ctx,
		"SELECT category, amount FROM transactions WHERE household_id = ? AND type = ? AND date >= ? AND date < ?",
		householdID, string(core.TransactionExpense), fmtTime(start), fmtTime(end))
	if err != nil {
		return nil, fmt.Errorf("expenses by category: %w", err)
	}
	defer rows.Close()

	sums := make(map[core.TransactionCategory]decimal.Decimal)
	for rows.Next() {
		var category, amount string
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("scan category amount: %w", err)
		}
		d, err := parseDecimal(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		c := core.TransactionCategory(category)
		sums[c] = sums[c].Add(d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	out := make([]core.CategoryAmount, 0, len(sums))
	for c, amount := range sums {
		out = append(out, core.CategoryAmount{Category: c, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Amount.Cmp(out[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (r *SQLiteRepository) MonthlyTrend(ctx context.Context, householdID string, monthsBack int) ([]core.MonthTotals, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, -monthsBack, 0)

	rows, err := r.db.QueryContext(ctx,
		"SELECT type, amount, date FROM transactions WHERE household_id = ? AND date >= ? AND date < ?",
		householdID, fmtTime(start), fmtTime(end))
	if err != nil {
		return nil, fmt.Errorf("monthly trend: %w", err)
	}
	defer rows.Close()

	type bucketKey struct{ year, month int }
	buckets := make(map[bucketKey]*core.MonthTotals)
	for rows.Next() {
		var tType, amount, date string
		if err := rows.Scan(&tType, &amount, &date); err != nil {
			return nil, fmt.Errorf("scan trend row: %w", err)
		}
		d, err := parseDecimal(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		ts, err := parseTime(date)
		if err != nil {
			return nil, fmt.Errorf("parse date: %w", err)
		}

		key := bucketKey{ts.Year(), int(ts.Month())}
		b, ok := buckets[key]
		if !ok {
			b = &core.MonthTotals{Year: key.year, Month: key.month}
			buckets[key] = b
		}
		switch core.TransactionType(tType) {
		case core.TransactionIncome:
			b.Income = b.Income.Add(d)
		case core.TransactionExpense:
			b.Expenses = b.Expenses.Add(d)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trend rows: %w", err)
	}

	out := make([]core.MonthTotals, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}
