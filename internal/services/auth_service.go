package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"hearth/internal/auth"
	"hearth/internal/core"
	"hearth/internal/log"
	"hearth/internal/storage"
)

type (
	// RegisterInput carries a new user registration.
	RegisterInput struct {
		Email     string
		Password  string
		FirstName string
		LastName  string
	}

	// Session is an issued access token together with its user.
	Session struct {
		User        *core.User
		AccessToken string
		TokenType   string
		ExpiresIn   int64 // seconds
	}

	// AuthService registers users and issues sessions. A registration
	// mints the user's Individual household in the same storage
	// transaction as the user record.
	AuthService struct {
		users      storage.UserRepository
		households storage.HouseholdRepository
		tokens     *auth.JWTManager
		logger     *log.Logger
	}
)

func NewAuthService(users storage.UserRepository, households storage.HouseholdRepository, tokens *auth.JWTManager, logger *log.Logger) *AuthService {
	return &AuthService{
		users:      users,
		households: households,
		tokens:     tokens,
		logger:     logger.WithComponent("auth_service"),
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	if err := auth.ValidatePassword(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if email == "" || firstName == "" || lastName == "" {
		return nil, fmt.Errorf("%w: email and name are required", ErrValidation)
	}

	exists, err := s.users.UserExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	// Surfaced unwrapped so the transport can map it to a conflict
	// rather than a generic validation failure.
	if exists {
		return nil, auth.ErrEmailExists
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	household := &core.Household{
		ID:        uuid.New().String(),
		Type:      core.HouseholdIndividual,
		Name:      fmt.Sprintf("%s's Household", firstName),
		CreatedAt: now,
	}
	user := &core.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		HouseholdID:  household.ID,
		CreatedAt:    now,
	}

	if err := s.households.CreateUserWithHousehold(ctx, user, household); err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}

	s.logger.InfoContext(ctx, "User registered", "user_id", user.ID, "household_id", household.ID)
	return s.newSession(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	return s.newSession(user)
}

func (s *AuthService) newSession(user *core.User) (*Session, error) {
	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{
		User:        user,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokens.TokenDuration().Seconds()),
	}, nil
}
