package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"hearth/internal/core"
)

func seedLedgerTransaction(t *testing.T, store *memStore, id string, tType core.TransactionType, category core.TransactionCategory, amount string, date time.Time) {
	t.Helper()
	require.NoError(t, store.CreateTransaction(context.Background(), &core.Transaction{
		ID:          id,
		AccountID:   "a1",
		HouseholdID: "h1",
		Type:        tType,
		Category:    category,
		Amount:      decimal.RequireFromString(amount),
		Date:        date,
		CreatedAt:   time.Now().UTC(),
	}))
}

func TestDashboardCompute(t *testing.T) {
	store := newMemStore()
	seedHousehold(t, store, "h1", "Home")
	seedUser(t, store, "u1", "ada@example.com", "Ada", "h1")
	seedAccount(t, store, "a1", "h1", "Checking", decimal.RequireFromString("1000"))

	target := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	seedLedgerTransaction(t, store, "t1", core.TransactionExpense, core.CategoryFood, "200", target)
	seedLedgerTransaction(t, store, "t2", core.TransactionIncome, core.CategorySalary, "1500", target)

	svc := NewDashboardService(store, store, "EUR", testLogger())
	d, err := svc.Compute(context.Background(), "h1", "u1", 2026, 3, 6)
	require.NoError(t, err)

	require.Equal(t, "EUR", d.Currency)
	require.Equal(t, 2026, d.Year)
	require.Equal(t, 3, d.Month)
	require.True(t, d.TotalBalance.Equal(decimal.RequireFromString("1000")))
	require.True(t, d.MonthlyIncome.Equal(decimal.RequireFromString("1500")))
	require.True(t, d.MonthlyExpenses.Equal(decimal.RequireFromString("200")))

	require.Len(t, d.ExpensesByCategory, 1)
	cat := d.ExpensesByCategory[0]
	require.Equal(t, core.CategoryFood, cat.Category)
	require.Equal(t, "Food", cat.CategoryName)
	require.True(t, cat.Amount.Equal(decimal.RequireFromString("200")))
	require.True(t, cat.Percentage.Equal(decimal.RequireFromString("100")))
}

func TestDashboardDeniedReturnsEmptyView(t *testing.T) {
	store := newMemStore()
	seedHousehold(t, store, "h1", "Home")
	seedUser(t, store, "u1", "ada@example.com", "Ada", "h1")
	seedHousehold(t, store, "h2", "Elsewhere")
	seedUser(t, store, "u2", "bob@example.com", "Bob", "h2")
	seedAccount(t, store, "a1", "h1", "Checking", decimal.RequireFromString("1000"))

	svc := NewDashboardService(store, store, "EUR", testLogger())
	d, err := svc.Compute(context.Background(), "h1", "u2", 2026, 3, 6)
	require.NoError(t, err)

	require.True(t, d.TotalBalance.IsZero())
	require.True(t, d.MonthlyIncome.IsZero())
	require.True(t, d.MonthlyExpenses.IsZero())
	require.Empty(t, d.ExpensesByCategory)
	require.Empty(t, d.MonthlyTrend)
	require.Equal(t, 2026, d.Year)
	require.Equal(t, 3, d.Month)

	// An unknown caller gets the same zeroed view.
	d, err = svc.Compute(context.Background(), "h1", "nobody", 2026, 3, 6)
	require.NoError(t, err)
	require.True(t, d.TotalBalance.IsZero())
}

func TestDashboardDefaultsToCurrentMonth(t *testing.T) {
	store := newMemStore()
	seedHousehold(t, store, "h1", "Home")
	seedUser(t, store, "u1", "ada@example.com", "Ada", "h1")

	svc := NewDashboardService(store, store, "EUR", testLogger())
	d, err := svc.Compute(context.Background(), "h1", "u1", 0, 0, 6)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.Equal(t, now.Year(), d.Year)
	require.Equal(t, int(now.Month()), d.Month)
}

func TestDashboardTrendDerivesSavings(t *testing.T) {
	store := newMemStore()
	seedHousehold(t, store, "h1", "Home")
	seedUser(t, store, "u1", "ada@example.com", "Ada", "h1")
	seedAccount(t, store, "a1", "h1", "Checking", decimal.Zero)

	// Recent dates keep the rows inside the rolling trend window.
	recent := time.Now().UTC().Add(-24 * time.Hour)
	seedLedgerTransaction(t, store, "t1", core.TransactionIncome, core.CategorySalary, "3000", recent)
	seedLedgerTransaction(t, store, "t2", core.TransactionExpense, core.CategoryHousing, "1100", recent)

	svc := NewDashboardService(store, store, "EUR", testLogger())
	d, err := svc.Compute(context.Background(), "h1", "u1", 0, 0, 6)
	require.NoError(t, err)

	require.NotEmpty(t, d.MonthlyTrend)
	for _, p := range d.MonthlyTrend {
		require.True(t, p.Savings.Equal(p.Income.Sub(p.Expenses)),
			"savings must equal income minus expenses for %s", p.Label)
	}
	last := d.MonthlyTrend[len(d.MonthlyTrend)-1]
	require.Equal(t, core.MonthLabel(last.Year, last.Month), last.Label)
	require.True(t, last.Savings.Equal(decimal.RequireFromString("1900")))
}

func TestDashboardCategoryPercentagesShare(t *testing.T) {
	store := newMemStore()
	seedHousehold(t, store, "h1", "Home")
	seedUser(t, store, "u1", "ada@example.com", "Ada", "h1")

	target := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	seedLedgerTransaction(t, store, "t1", core.TransactionExpense, core.CategoryFood, "200", target)
	seedLedgerTransaction(t, store, "t2", core.TransactionExpense, core.CategoryTransport, "100", target)

	svc := NewDashboardService(store, store, "EUR", testLogger())
	d, err := svc.Compute(context.Background(), "h1", "u1", 2026, 3, 6)
	require.NoError(t, err)

	require.Len(t, d.ExpensesByCategory, 2)
	// Largest share first.
	require.Equal(t, core.CategoryFood, d.ExpensesByCategory[0].Category)
	require.True(t, d.ExpensesByCategory[0].Percentage.Equal(decimal.RequireFromString("66.7")))
	require.True(t, d.ExpensesByCategory[1].Percentage.Equal(decimal.RequireFromString("33.3")))
}
