// Package storage provides the persistence boundary for the ledger:
// narrow repository interfaces consumed by the service layer and a
// SQLite-backed implementation of all of them.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"hearth/internal/core"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

type (
	// TransactionFilter narrows a household transaction listing. Zero
	// values mean "no constraint"; From and To are inclusive.
	TransactionFilter struct {
		AccountID string
		From      time.Time
		To        time.Time
	}

	UserRepository interface {
		GetUser(ctx context.Context, id string) (*core.User, error)
		GetUserByEmail(ctx context.Context, email string) (*core.User, error)
		UserExistsByEmail(ctx context.Context, email string) (bool, error)
		ListUsersByHousehold(ctx context.Context, householdID string) ([]core.User, error)
		CreateUser(ctx context.Context, user *core.User) error
		UpdateUser(ctx context.Context, user *core.User) error
	}

	HouseholdRepository interface {
		GetHousehold(ctx context.Context, id string) (*core.Household, error)
		CreateHousehold(ctx context.Context, h *core.Household) error
		SaveHousehold(ctx context.Context, h *core.Household) error

		// CreateHouseholdForUser atomically creates a household and binds
		// the user to it, unless the user already has one; in that case
		// the existing household ID is returned and nothing is created.
		// Two concurrent first calls for one user can never both create.
		CreateHouseholdForUser(ctx context.Context, h *core.Household, userID string) (householdID string, err error)

		// CreateUserWithHousehold atomically persists a new user together
		// with their freshly minted household.
		CreateUserWithHousehold(ctx context.Context, user *core.User, h *core.Household) error
	}

	AccountRepository interface {
		GetAccount(ctx context.Context, id string) (*core.Account, error)
		ListAccountsByHousehold(ctx context.Context, householdID string) ([]core.Account, error)
		CreateAccount(ctx context.Context, a *core.Account) error
		UpdateAccount(ctx context.Context, a *core.Account) error
		DeleteAccount(ctx context.Context, id string) error
	}

	TransactionRepository interface {
		GetTransaction(ctx context.Context, id string) (*core.Transaction, error)
		ListTransactionsByHousehold(ctx context.Context, householdID string, filter TransactionFilter) ([]core.Transaction, error)
		CreateTransaction(ctx context.Context, t *core.Transaction) error
		// UpdateTransaction rewrites the row and replaces the whole split
		// set in one storage transaction.
		UpdateTransaction(ctx context.Context, t *core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
	}

	DashboardRepository interface {
		TotalBalance(ctx context.Context, householdID string) (decimal.Decimal, error)
		MonthlyIncome(ctx context.Context, householdID string, year, month int) (decimal.Decimal, error)
		MonthlyExpenses(ctx context.Context, householdID string, year, month int) (decimal.Decimal, error)
		ExpensesByCategory(ctx context.Context, householdID string, year, month int) ([]core.CategoryAmount, error)
		MonthlyTrend(ctx context.Context, householdID string, monthsBack int) ([]core.MonthTotals, error)
	}
)
