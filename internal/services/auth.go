package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/schedulr/apiserver/internal/store"
	"github.com/schedulr/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is the bcrypt work factor for new passwords.
const PasswordHashCost = 10

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

type registration struct {
	Username string `validate:"min=3"`
	Password string `validate:"min=6"`
}

// AuthService implements registration and login on top of the user store
// and the token service.
type AuthService struct {
	repo     UserRepository
	tokens   *TokenService
	validate *validator.Validate
}

func NewAuthService(repo UserRepository, tokens *TokenService) *AuthService {
	return &AuthService{
		repo:     repo,
		tokens:   tokens,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Register creates the account and returns a token for it.
func (s *AuthService) Register(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrMissingFields
	}
	if err := s.validate.Struct(registration{Username: username, Password: password}); err != nil {
		return "", registrationError(err)
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return "", ErrUserExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("lookup user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		Username:     username,
		PasswordHash: string(hashed),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return "", ErrUserExists
		}
		return "", fmt.Errorf("create user: %w", err)
	}

	return s.tokens.Issue(user.ID)
}

// Login checks the credentials and returns a fresh token. Unknown users and
// wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrMissingFields
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user.ID)
}

func (s *AuthService) GetUser(ctx context.Context, id string) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func registrationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return newValidationError("Invalid registration")
	}
	switch verrs[0].Field() {
	case "Username":
		return newValidationError("Username must be at least 3 characters long")
	default:
		return newValidationError("Password must be at least 6 characters long")
	}
}
