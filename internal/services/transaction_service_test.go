package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"hearth/internal/core"
	"hearth/internal/storage"
)

// transactionFixture wires a household with two members, one account
// and a transaction service backed by the in-memory store.
func transactionFixture(t *testing.T) (*memStore, *capturePublisher, *TransactionService) {
	t.Helper()
	store := newMemStore()
	seedHousehold(t, store, "h1", "Home")
	seedUser(t, store, "u1", "ada@example.com", "Ada", "h1")
	seedUser(t, store, "u2", "bob@example.com", "Bob", "h1")
	seedAccount(t, store, "a1", "h1", "Checking", decimal.RequireFromString("1000"))
	pub := &capturePublisher{}
	svc := NewTransactionService(store, store, store, pub, testLogger())
	return store, pub, svc
}

func expenseInput(amount string, splits ...core.SplitInput) TransactionInput {
	return TransactionInput{
		AccountID:   "a1",
		Type:        core.TransactionExpense,
		Category:    core.CategoryFood,
		Amount:      decimal.RequireFromString(amount),
		Date:        time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		Description: "groceries",
		Splits:      splits,
	}
}

func TestTransactionCreateDefaultSplit(t *testing.T) {
	_, pub, svc := transactionFixture(t)

	created, err := svc.Create(context.Background(), "h1", "u1", expenseInput("42.50"))
	require.NoError(t, err)
	require.Len(t, created.Splits, 1)
	require.Equal(t, "u1", created.Splits[0].UserID)
	require.True(t, created.Splits[0].Percentage.Equal(decimal.RequireFromString("100")))
	require.Equal(t, created.ID, created.Splits[0].TransactionID)

	events := pub.published()
	require.Len(t, events, 1)
	require.Equal(t, EventTransactionCreated, events[0].Kind)
	require.Equal(t, "h1", events[0].HouseholdID)
	require.Equal(t, 2026, events[0].Year)
	require.Equal(t, 3, events[0].Month)
}

func TestTransactionCreateExplicitSplits(t *testing.T) {
	store, _, svc := transactionFixture(t)

	created, err := svc.Create(context.Background(), "h1", "u1", expenseInput("100",
		core.SplitInput{UserID: "u1", Percentage: decimal.RequireFromString("60")},
		core.SplitInput{UserID: "u2", Percentage: decimal.RequireFromString("40")},
	))
	require.NoError(t, err)
	require.Len(t, created.Splits, 2)

	stored, err := store.GetTransaction(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, stored.Splits, 2)
}

func TestTransactionCreateSplitSumRejected(t *testing.T) {
	_, pub, svc := transactionFixture(t)

	_, err := svc.Create(context.Background(), "h1", "u1", expenseInput("100",
		core.SplitInput{UserID: "u1", Percentage: decimal.RequireFromString("60")},
		core.SplitInput{UserID: "u2", Percentage: decimal.RequireFromString("41")},
	))
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, core.ErrSplitSum)
	require.Empty(t, pub.published())
}

func TestTransactionCreateNonMemberSplitRejected(t *testing.T) {
	_, _, svc := transactionFixture(t)

	_, err := svc.Create(context.Background(), "h1", "u1", expenseInput("100",
		core.SplitInput{UserID: "stranger", Percentage: decimal.RequireFromString("100")},
	))
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, core.ErrSplitNonMember)
}

func TestTransactionCreateForeignAccountDenied(t *testing.T) {
	store, _, svc := transactionFixture(t)
	seedHousehold(t, store, "h2", "Elsewhere")
	seedAccount(t, store, "a2", "h2", "Foreign", decimal.Zero)

	input := expenseInput("10")
	input.AccountID = "a2"
	_, err := svc.Create(context.Background(), "h1", "u1", input)
	require.ErrorIs(t, err, ErrDenied)

	input.AccountID = "no-such-account"
	_, err = svc.Create(context.Background(), "h1", "u1", input)
	require.ErrorIs(t, err, ErrDenied)
}

func TestTransactionCreateDeniedForOutsider(t *testing.T) {
	store, _, svc := transactionFixture(t)
	seedHousehold(t, store, "h2", "Elsewhere")
	seedUser(t, store, "u9", "eve@example.com", "Eve", "h2")

	_, err := svc.Create(context.Background(), "h1", "u9", expenseInput("10"))
	require.ErrorIs(t, err, ErrDenied)
}

func TestTransactionCreateValidation(t *testing.T) {
	_, _, svc := transactionFixture(t)

	input := expenseInput("0")
	_, err := svc.Create(context.Background(), "h1", "u1", input)
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, core.ErrInvalidAmount)

	input = expenseInput("10")
	input.Category = core.TransactionCategory("lottery")
	_, err = svc.Create(context.Background(), "h1", "u1", input)
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, core.ErrInvalidCategory)
}

func TestTransactionGetByIDMergesOutcomes(t *testing.T) {
	store, _, svc := transactionFixture(t)
	seedHousehold(t, store, "h2", "Elsewhere")
	seedUser(t, store, "u9", "eve@example.com", "Eve", "h2")

	created, err := svc.Create(context.Background(), "h1", "u1", expenseInput("10"))
	require.NoError(t, err)

	// Foreign caller and missing record are indistinguishable.
	_, err = svc.GetByID(context.Background(), created.ID, "u9")
	require.ErrorIs(t, err, ErrDenied)
	_, err = svc.GetByID(context.Background(), "no-such", "u1")
	require.ErrorIs(t, err, ErrDenied)

	got, err := svc.GetByID(context.Background(), created.ID, "u2")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
}

func TestTransactionUpdateReplacesSplits(t *testing.T) {
	store, pub, svc := transactionFixture(t)

	created, err := svc.Create(context.Background(), "h1", "u1", expenseInput("100",
		core.SplitInput{UserID: "u1", Percentage: decimal.RequireFromString("60")},
		core.SplitInput{UserID: "u2", Percentage: decimal.RequireFromString("40")},
	))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, "u1", expenseInput("120",
		core.SplitInput{UserID: "u2", Percentage: decimal.RequireFromString("100")},
	))
	require.NoError(t, err)
	require.Len(t, updated.Splits, 1)
	require.Equal(t, "u2", updated.Splits[0].UserID)

	stored, err := store.GetTransaction(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, stored.Splits, 1)
	require.True(t, stored.Amount.Equal(decimal.RequireFromString("120")))

	events := pub.published()
	require.Len(t, events, 2)
	require.Equal(t, EventTransactionUpdated, events[1].Kind)
}

func TestTransactionUpdateMonthMovePublishesBothMonths(t *testing.T) {
	_, pub, svc := transactionFixture(t)

	created, err := svc.Create(context.Background(), "h1", "u1", expenseInput("10"))
	require.NoError(t, err)

	moved := expenseInput("10")
	moved.Date = time.Date(2026, time.April, 2, 0, 0, 0, 0, time.UTC)
	_, err = svc.Update(context.Background(), created.ID, "u1", moved)
	require.NoError(t, err)

	events := pub.published()
	require.Len(t, events, 3) // create + update (new month) + update (old month)
	require.Equal(t, 4, events[1].Month)
	require.Equal(t, 3, events[2].Month)
}

func TestTransactionUpdateDeniedForOutsider(t *testing.T) {
	store, _, svc := transactionFixture(t)
	seedHousehold(t, store, "h2", "Elsewhere")
	seedUser(t, store, "u9", "eve@example.com", "Eve", "h2")

	created, err := svc.Create(context.Background(), "h1", "u1", expenseInput("10"))
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, "u9", expenseInput("99"))
	require.ErrorIs(t, err, ErrDenied)

	stored, err := store.GetTransaction(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, stored.Amount.Equal(decimal.RequireFromString("10")))
}

func TestTransactionDelete(t *testing.T) {
	store, pub, svc := transactionFixture(t)

	created, err := svc.Create(context.Background(), "h1", "u1", expenseInput("10"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID, "u2"))
	_, err = store.GetTransaction(context.Background(), created.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	events := pub.published()
	require.Equal(t, EventTransactionDeleted, events[len(events)-1].Kind)

	require.ErrorIs(t, svc.Delete(context.Background(), created.ID, "u1"), ErrDenied)
}

func TestTransactionPublishFailureDoesNotFailWrite(t *testing.T) {
	store := newMemStore()
	seedHousehold(t, store, "h1", "Home")
	seedUser(t, store, "u1", "ada@example.com", "Ada", "h1")
	seedAccount(t, store, "a1", "h1", "Checking", decimal.Zero)
	pub := &capturePublisher{err: errors.New("broker down")}
	svc := NewTransactionService(store, store, store, pub, testLogger())

	created, err := svc.Create(context.Background(), "h1", "u1", expenseInput("10"))
	require.NoError(t, err)

	_, err = store.GetTransaction(context.Background(), created.ID)
	require.NoError(t, err)
}

func TestTransactionListFilters(t *testing.T) {
	_, _, svc := transactionFixture(t)

	first, err := svc.Create(context.Background(), "h1", "u1", expenseInput("10"))
	require.NoError(t, err)
	later := expenseInput("20")
	later.Date = time.Date(2026, time.April, 5, 0, 0, 0, 0, time.UTC)
	second, err := svc.Create(context.Background(), "h1", "u1", later)
	require.NoError(t, err)

	all, err := svc.ListByHousehold(context.Background(), "h1", "u1", storage.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, second.ID, all[0].ID) // newest first

	march, err := svc.ListByHousehold(context.Background(), "h1", "u1", storage.TransactionFilter{
		From: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, time.March, 31, 23, 59, 59, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, march, 1)
	require.Equal(t, first.ID, march[0].ID)
}
