package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hearth/internal/core"
	"hearth/internal/log"
	"hearth/internal/storage"
)

// AccountService manages household accounts. Account balances are
// maintained independently of the transaction ledger and never
// re-derived from it.
type AccountService struct {
	accounts storage.AccountRepository
	users    storage.UserRepository
	logger   *log.Logger
}

// AccountInput carries account create/update fields.
type AccountInput struct {
	Name     string
	Type     core.AccountType
	Balance  decimal.Decimal
	Currency string
}

func NewAccountService(accounts storage.AccountRepository, users storage.UserRepository, logger *log.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		users:    users,
		logger:   logger.WithComponent("account_service"),
	}
}

func (s *AccountService) ListByHousehold(ctx context.Context, householdID, userID string) ([]core.Account, error) {
	ok, err := userInHousehold(ctx, s.users, userID, householdID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDenied
	}

	accounts, err := s.accounts.ListAccountsByHousehold(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (s *AccountService) GetByID(ctx context.Context, id, userID string) (*core.Account, error) {
	account, err := s.accounts.GetAccount(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrDenied
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	ok, err := userInHousehold(ctx, s.users, userID, account.HouseholdID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDenied
	}
	return account, nil
}

func (s *AccountService) Create(ctx context.Context, householdID, userID string, input AccountInput) (*core.Account, error) {
	ok, err := userInHousehold(ctx, s.users, userID, householdID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDenied
	}

	account, err := buildAccount(householdID, input)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	s.logger.InfoContext(ctx, "Account created", "account_id", account.ID, "household_id", householdID)
	return account, nil
}

func (s *AccountService) Update(ctx context.Context, id, userID string, input AccountInput) (*core.Account, error) {
	account, err := s.accounts.GetAccount(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrDenied
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	ok, err := userInHousehold(ctx, s.users, userID, account.HouseholdID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDenied
	}

	updated, err := buildAccount(account.HouseholdID, input)
	if err != nil {
		return nil, err
	}

	account.Name = updated.Name
	account.Type = updated.Type
	account.Balance = updated.Balance
	account.Currency = updated.Currency
	account.UpdatedAt = time.Now().UTC()

	if err := s.accounts.UpdateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return account, nil
}

// Delete removes the account; its transactions cascade at the storage
// layer.
func (s *AccountService) Delete(ctx context.Context, id, userID string) error {
	account, err := s.accounts.GetAccount(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrDenied
	}
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}

	ok, err := userInHousehold(ctx, s.users, userID, account.HouseholdID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDenied
	}

	if err := s.accounts.DeleteAccount(ctx, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.logger.InfoContext(ctx, "Account deleted", "account_id", id, "household_id", account.HouseholdID)
	return nil
}

func buildAccount(householdID string, input AccountInput) (*core.Account, error) {
	currency, err := core.NormalizeCurrency(input.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	account := &core.Account{
		ID:          uuid.New().String(),
		HouseholdID: householdID,
		Name:        strings.TrimSpace(input.Name),
		Type:        input.Type,
		Balance:     input.Balance,
		Currency:    currency,
		CreatedAt:   time.Now().UTC(),
	}
	if err := account.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return account, nil
}
