package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"hearth/internal/core"
	"hearth/internal/log"
	"hearth/internal/storage"
)

// HouseholdService resolves and manages the tenancy boundary every
// ledger record hangs off.
type HouseholdService struct {
	households storage.HouseholdRepository
	users      storage.UserRepository
	logger     *log.Logger
}

// UpdateHouseholdInput carries a guarded household rename/retype.
type UpdateHouseholdInput struct {
	Type core.HouseholdType
	Name string
}

func NewHouseholdService(households storage.HouseholdRepository, users storage.UserRepository, logger *log.Logger) *HouseholdService {
	return &HouseholdService{
		households: households,
		users:      users,
		logger:     logger.WithComponent("household_service"),
	}
}

func (s *HouseholdService) GetByID(ctx context.Context, id, userID string) (*core.Household, error) {
	ok, err := userInHousehold(ctx, s.users, userID, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDenied
	}

	h, err := s.households.GetHousehold(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrDenied
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

// GetOrCreateForUser returns the user's household, creating a default
// Individual one on first use. The check-then-create runs inside one
// storage transaction, so concurrent first requests for the same user
// resolve to a single household.
func (s *HouseholdService) GetOrCreateForUser(ctx context.Context, userID string) (*core.Household, error) {
	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrDenied
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if user.HouseholdID != "" {
		h, err := s.households.GetHousehold(ctx, user.HouseholdID)
		if errors.Is(err, storage.ErrNotFound) {
			// The user points at a household that no longer exists. That
			// is corrupted state to surface, not repair.
			s.logger.ErrorContext(ctx, "User references missing household",
				"user_id", userID, "household_id", user.HouseholdID)
			return nil, fmt.Errorf("%w: user %s references missing household %s", ErrCorruptState, userID, user.HouseholdID)
		}
		if err != nil {
			return nil, fmt.Errorf("get household: %w", err)
		}
		return h, nil
	}

	h := &core.Household{
		ID:        uuid.New().String(),
		Type:      core.HouseholdIndividual,
		Name:      fmt.Sprintf("%s's Household", user.FirstName),
		CreatedAt: time.Now().UTC(),
	}
	householdID, err := s.households.CreateHouseholdForUser(ctx, h, userID)
	if err != nil {
		return nil, fmt.Errorf("create household: %w", err)
	}
	if householdID != h.ID {
		// Lost the race against a concurrent first request; use theirs.
		return s.households.GetHousehold(ctx, householdID)
	}

	s.logger.InfoContext(ctx, "Created default household", "household_id", h.ID, "user_id", userID)
	return h, nil
}

func (s *HouseholdService) Update(ctx context.Context, id, userID string, input UpdateHouseholdInput) (*core.Household, error) {
	ok, err := userInHousehold(ctx, s.users, userID, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDenied
	}

	h, err := s.households.GetHousehold(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrDenied
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: %w", ErrValidation, core.ErrEmptyName)
	}
	if !input.Type.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrValidation, core.ErrInvalidType)
	}

	h.Type = input.Type
	h.Name = name
	h.UpdatedAt = time.Now().UTC()
	if err := s.households.SaveHousehold(ctx, h); err != nil {
		return nil, fmt.Errorf("save household: %w", err)
	}
	return h, nil
}

// ListMembers returns the current member set of the caller's household.
func (s *HouseholdService) ListMembers(ctx context.Context, householdID, userID string) ([]core.User, error) {
	ok, err := userInHousehold(ctx, s.users, userID, householdID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDenied
	}

	members, err := s.users.ListUsersByHousehold(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}
