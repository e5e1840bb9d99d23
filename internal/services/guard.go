package services

import (
	"context"
	"errors"
	"fmt"

	"hearth/internal/storage"
)

// userInHousehold is the tenancy guard: it reports whether the user is a
// current member of the household. It has no side effects; a missing
// user simply fails the check.
func userInHousehold(ctx context.Context, users storage.UserRepository, userID, householdID string) (bool, error) {
	user, err := users.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load user for guard: %w", err)
	}
	return user.HouseholdID != "" && user.HouseholdID == householdID, nil
}
