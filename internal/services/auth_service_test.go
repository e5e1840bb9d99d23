package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hearth/internal/auth"
	"hearth/internal/core"
)

func testAuthService(store *memStore) *AuthService {
	tokens := auth.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(store, store, tokens, testLogger())
}

func TestRegisterCreatesUserWithHousehold(t *testing.T) {
	store := newMemStore()
	svc := testAuthService(store)

	session, err := svc.Register(context.Background(), RegisterInput{
		Email:     "  Ada@Example.com ",
		Password:  "correct horse",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", session.User.Email)
	require.NotEmpty(t, session.User.HouseholdID)
	require.Equal(t, "Bearer", session.TokenType)
	require.Equal(t, int64(3600), session.ExpiresIn)

	h, err := store.GetHousehold(context.Background(), session.User.HouseholdID)
	require.NoError(t, err)
	require.Equal(t, core.HouseholdIndividual, h.Type)
	require.Equal(t, "Ada's Household", h.Name)

	// The issued token carries the user identity.
	tokens := auth.NewJWTManager("test-secret", time.Hour)
	claims, err := tokens.Validate(session.AccessToken)
	require.NoError(t, err)
	require.Equal(t, session.User.ID, claims.UserID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	store := newMemStore()
	svc := testAuthService(store)

	input := RegisterInput{
		Email: "ada@example.com", Password: "correct horse",
		FirstName: "Ada", LastName: "Lovelace",
	}
	_, err := svc.Register(context.Background(), input)
	require.NoError(t, err)

	input.Email = "ADA@example.com"
	_, err = svc.Register(context.Background(), input)
	require.ErrorIs(t, err, auth.ErrEmailExists)
	// A taken email is a conflict, not malformed input; callers key
	// their status mapping on that distinction.
	require.NotErrorIs(t, err, ErrValidation)
}

func TestRegisterValidation(t *testing.T) {
	store := newMemStore()
	svc := testAuthService(store)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "ada@example.com", Password: "short",
		FirstName: "Ada", LastName: "Lovelace",
	})
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, auth.ErrWeakPassword)

	_, err = svc.Register(context.Background(), RegisterInput{
		Email: "", Password: "correct horse",
		FirstName: "Ada", LastName: "Lovelace",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestLogin(t *testing.T) {
	store := newMemStore()
	svc := testAuthService(store)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "ada@example.com", Password: "correct horse",
		FirstName: "Ada", LastName: "Lovelace",
	})
	require.NoError(t, err)

	session, err := svc.Login(context.Background(), "Ada@Example.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", session.User.Email)
	require.NotEmpty(t, session.AccessToken)

	_, err = svc.Login(context.Background(), "ada@example.com", "wrong password")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "correct horse")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
