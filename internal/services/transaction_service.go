package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hearth/internal/core"
	"hearth/internal/log"
	"hearth/internal/storage"
)

// Ledger event kinds published after successful transaction mutations.
const (
	EventTransactionCreated = "transaction.created"
	EventTransactionUpdated = "transaction.updated"
	EventTransactionDeleted = "transaction.deleted"
)

type (
	// LedgerEvent announces that a month's figures for a household have
	// changed and downstream reports should be refreshed.
	LedgerEvent struct {
		Kind        string
		HouseholdID string
		Year        int
		Month       int
	}

	// EventPublisher pushes ledger events to interested consumers.
	// Publishing is best-effort: a failure is logged, never surfaced.
	EventPublisher interface {
		PublishLedgerEvent(ctx context.Context, ev LedgerEvent) error
	}

	// TransactionInput carries transaction create/update fields. Splits
	// may be empty, in which case the acting user takes the full share.
	TransactionInput struct {
		AccountID   string
		Type        core.TransactionType
		Category    core.TransactionCategory
		Amount      decimal.Decimal
		Date        time.Time
		Description string
		Splits      []core.SplitInput
	}

	// TransactionService orchestrates the transaction lifecycle,
	// composing the tenancy guard, the split allocator and the store.
	TransactionService struct {
		transactions storage.TransactionRepository
		accounts     storage.AccountRepository
		users        storage.UserRepository
		publisher    EventPublisher
		logger       *log.Logger
	}
)

func NewTransactionService(
	transactions storage.TransactionRepository,
	accounts storage.AccountRepository,
	users storage.UserRepository,
	publisher EventPublisher,
	logger *log.Logger,
) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		accounts:     accounts,
		users:        users,
		publisher:    publisher,
		logger:       logger.WithComponent("transaction_service"),
	}
}

func (s *TransactionService) ListByHousehold(ctx context.Context, householdID, userID string, filter storage.TransactionFilter) ([]core.Transaction, error) {
	ok, err := userInHousehold(ctx, s.users, userID, householdID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDenied
	}

	transactions, err := s.transactions.ListTransactionsByHousehold(ctx, householdID, filter)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return transactions, nil
}

func (s *TransactionService) GetByID(ctx context.Context, id, userID string) (*core.Transaction, error) {
	t, err := s.transactions.GetTransaction(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrDenied
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	ok, err := userInHousehold(ctx, s.users, userID, t.HouseholdID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDenied
	}
	return t, nil
}

func (s *TransactionService) Create(ctx context.Context, householdID, userID string, input TransactionInput) (*core.Transaction, error) {
	ok, err := userInHousehold(ctx, s.users, userID, householdID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDenied
	}

	// The account must exist and live in the same household. Absence and
	// mismatch collapse to the same outcome.
	account, err := s.accounts.GetAccount(ctx, input.AccountID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrDenied
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if account.HouseholdID != householdID {
		return nil, ErrDenied
	}

	splits, err := s.resolveSplits(ctx, input.Splits, userID, householdID)
	if err != nil {
		return nil, err
	}

	t := &core.Transaction{
		ID:          uuid.New().String(),
		AccountID:   input.AccountID,
		HouseholdID: householdID,
		Type:        input.Type,
		Category:    input.Category,
		Amount:      input.Amount,
		Date:        core.NormalizeDate(input.Date),
		Description: core.NormalizeDescription(input.Description),
		CreatedAt:   time.Now().UTC(),
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	t.Splits = attachSplits(t.ID, splits)

	if err := s.transactions.CreateTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.publish(ctx, EventTransactionCreated, t)
	return t, nil
}

func (s *TransactionService) Update(ctx context.Context, id, userID string, input TransactionInput) (*core.Transaction, error) {
	t, err := s.transactions.GetTransaction(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrDenied
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	// Guard against the transaction's own household, not a caller-supplied
	// one: a tampered request cannot move it across households.
	ok, err := userInHousehold(ctx, s.users, userID, t.HouseholdID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDenied
	}

	account, err := s.accounts.GetAccount(ctx, input.AccountID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrDenied
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if account.HouseholdID != t.HouseholdID {
		return nil, ErrDenied
	}

	splits, err := s.resolveSplits(ctx, input.Splits, userID, t.HouseholdID)
	if err != nil {
		return nil, err
	}

	prevYear, prevMonth := t.Date.Year(), int(t.Date.Month())

	t.AccountID = input.AccountID
	t.Type = input.Type
	t.Category = input.Category
	t.Amount = input.Amount
	t.Date = core.NormalizeDate(input.Date)
	t.Description = core.NormalizeDescription(input.Description)
	t.UpdatedAt = time.Now().UTC()
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	t.Splits = attachSplits(t.ID, splits)

	if err := s.transactions.UpdateTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	s.publish(ctx, EventTransactionUpdated, t)
	if prevYear != t.Date.Year() || prevMonth != int(t.Date.Month()) {
		// The transaction moved between months; both buckets changed.
		s.publishMonth(ctx, EventTransactionUpdated, t.HouseholdID, prevYear, prevMonth)
	}
	return t, nil
}

func (s *TransactionService) Delete(ctx context.Context, id, userID string) error {
	t, err := s.transactions.GetTransaction(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrDenied
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	ok, err := userInHousehold(ctx, s.users, userID, t.HouseholdID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDenied
	}

	if err := s.transactions.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publish(ctx, EventTransactionDeleted, t)
	return nil
}

// resolveSplits runs the split allocator against the household's current
// member set, loaded at write time.
func (s *TransactionService) resolveSplits(ctx context.Context, input []core.SplitInput, actingUserID, householdID string) ([]core.SplitInput, error) {
	members, err := s.users.ListUsersByHousehold(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("list household members: %w", err)
	}
	memberIDs := make([]string, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.ID)
	}

	splits, err := core.ResolveSplits(input, actingUserID, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return splits, nil
}

func attachSplits(transactionID string, splits []core.SplitInput) []core.TransactionSplit {
	out := make([]core.TransactionSplit, 0, len(splits))
	for _, s := range splits {
		out = append(out, core.TransactionSplit{
			TransactionID: transactionID,
			UserID:        s.UserID,
			Percentage:    s.Percentage,
		})
	}
	return out
}

func (s *TransactionService) publish(ctx context.Context, kind string, t *core.Transaction) {
	s.publishMonth(ctx, kind, t.HouseholdID, t.Date.Year(), int(t.Date.Month()))
}

func (s *TransactionService) publishMonth(ctx context.Context, kind, householdID string, year, month int) {
	if s.publisher == nil {
		return
	}
	ev := LedgerEvent{Kind: kind, HouseholdID: householdID, Year: year, Month: month}
	if err := s.publisher.PublishLedgerEvent(ctx, ev); err != nil {
		// The mutation already committed; losing an event only delays a
		// report refresh.
		s.logger.ErrorContext(ctx, "Failed to publish ledger event",
			"kind", kind, "household_id", householdID, "error", err)
	}
}
