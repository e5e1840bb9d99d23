package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"hearth/internal/amqp"
	"hearth/internal/core"
	"hearth/internal/log"
	"hearth/internal/sheets/memory"
	"hearth/internal/storage"
)

// fakeLedgerStore serves exactly one household with fixed monthly sums.
type fakeLedgerStore struct {
	household *core.Household
	income    decimal.Decimal
	expenses  decimal.Decimal
	readErr   error
}

var (
	_ storage.HouseholdRepository = (*fakeLedgerStore)(nil)
	_ storage.DashboardRepository = (*fakeLedgerStore)(nil)
)

func (s *fakeLedgerStore) GetHousehold(_ context.Context, id string) (*core.Household, error) {
	if s.household == nil || s.household.ID != id {
		return nil, storage.ErrNotFound
	}
	h := *s.household
	return &h, nil
}

func (s *fakeLedgerStore) CreateHousehold(context.Context, *core.Household) error {
	return errors.New("not supported")
}

func (s *fakeLedgerStore) SaveHousehold(context.Context, *core.Household) error {
	return errors.New("not supported")
}

func (s *fakeLedgerStore) CreateHouseholdForUser(context.Context, *core.Household, string) (string, error) {
	return "", errors.New("not supported")
}

func (s *fakeLedgerStore) CreateUserWithHousehold(context.Context, *core.User, *core.Household) error {
	return errors.New("not supported")
}

func (s *fakeLedgerStore) TotalBalance(context.Context, string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s *fakeLedgerStore) MonthlyIncome(context.Context, string, int, int) (decimal.Decimal, error) {
	return s.income, s.readErr
}

func (s *fakeLedgerStore) MonthlyExpenses(context.Context, string, int, int) (decimal.Decimal, error) {
	return s.expenses, s.readErr
}

func (s *fakeLedgerStore) ExpensesByCategory(context.Context, string, int, int) ([]core.CategoryAmount, error) {
	return nil, nil
}

func (s *fakeLedgerStore) MonthlyTrend(context.Context, string, int) ([]core.MonthTotals, error) {
	return nil, nil
}

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func event(householdID string, year, month int) *amqp.LedgerEventMessage {
	return &amqp.LedgerEventMessage{
		Kind:        "transaction.created",
		HouseholdID: householdID,
		Year:        year,
		Month:       month,
		Timestamp:   time.Now(),
	}
}

func TestHandleLedgerEventWritesReport(t *testing.T) {
	store := &fakeLedgerStore{
		household: &core.Household{ID: "h1", Name: "Home", Type: core.HouseholdCouple},
		income:    decimal.RequireFromString("3000"),
		expenses:  decimal.RequireFromString("1100"),
	}
	sink := memory.New()
	w := NewReportWorker(store, store, sink, testLogger())

	err := w.HandleLedgerEvent(context.Background(), event("h1", 2026, 3))
	require.NoError(t, err)

	reports := sink.Reports()
	require.Len(t, reports, 1)
	r := reports[0]
	require.Equal(t, "h1", r.HouseholdID)
	require.Equal(t, "Home", r.HouseholdName)
	require.Equal(t, 2026, r.Year)
	require.Equal(t, 3, r.Month)
	require.True(t, r.Income.Equal(decimal.RequireFromString("3000")))
	require.True(t, r.Expenses.Equal(decimal.RequireFromString("1100")))
	require.True(t, r.Savings.Equal(decimal.RequireFromString("1900")))
}

func TestHandleLedgerEventRefreshesExistingMonth(t *testing.T) {
	store := &fakeLedgerStore{
		household: &core.Household{ID: "h1", Name: "Home"},
		income:    decimal.RequireFromString("100"),
	}
	sink := memory.New()
	w := NewReportWorker(store, store, sink, testLogger())

	require.NoError(t, w.HandleLedgerEvent(context.Background(), event("h1", 2026, 3)))
	store.income = decimal.RequireFromString("250")
	require.NoError(t, w.HandleLedgerEvent(context.Background(), event("h1", 2026, 3)))

	reports := sink.Reports()
	require.Len(t, reports, 1)
	require.True(t, reports[0].Income.Equal(decimal.RequireFromString("250")))
}

func TestHandleLedgerEventDropsMissingHousehold(t *testing.T) {
	store := &fakeLedgerStore{}
	sink := memory.New()
	w := NewReportWorker(store, store, sink, testLogger())

	// Not an error: the message must be acked, not requeued.
	require.NoError(t, w.HandleLedgerEvent(context.Background(), event("ghost", 2026, 3)))
	require.Empty(t, sink.Reports())
}

func TestHandleLedgerEventDropsInvalidMonth(t *testing.T) {
	store := &fakeLedgerStore{household: &core.Household{ID: "h1", Name: "Home"}}
	sink := memory.New()
	w := NewReportWorker(store, store, sink, testLogger())

	require.NoError(t, w.HandleLedgerEvent(context.Background(), event("h1", 2026, 13)))
	require.Empty(t, sink.Reports())
}

func TestHandleLedgerEventPropagatesStorageErrors(t *testing.T) {
	store := &fakeLedgerStore{
		household: &core.Household{ID: "h1", Name: "Home"},
		readErr:   errors.New("db gone"),
	}
	sink := memory.New()
	w := NewReportWorker(store, store, sink, testLogger())

	// Transient storage failures bubble up so the delivery is requeued.
	require.Error(t, w.HandleLedgerEvent(context.Background(), event("h1", 2026, 3)))
	require.Empty(t, sink.Reports())
}
