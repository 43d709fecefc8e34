package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/essia-shop/internal/auth"
	"github.com/example/essia-shop/internal/infrastructure/store"
	"github.com/example/essia-shop/internal/model"
)

var (
	ErrMissingFields      = errors.New("name, email and password are required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotFound    = errors.New("account not found")
)

// Service handles account registration and credential checks
type Service struct {
	accounts store.AccountStore
}

// NewService creates a new account service
func NewService(accounts store.AccountStore) *Service {
	return &Service{accounts: accounts}
}

// NormalizeEmail trims and lower-cases an address for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account with a bcrypt-hashed password
func (s *Service) Register(ctx context.Context, name, email, password string) (*model.Account, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" || strings.TrimSpace(password) == "" {
		return nil, ErrMissingFields
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	acct, err := s.accounts.CreateAccount(ctx, name, email, passwordHash)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	return acct, nil
}

// Authenticate resolves credentials to an account. Unknown email and wrong
// password both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.Account, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	acct, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	if !auth.CheckPassword(password, acct.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return acct, nil
}

// Get returns the account with the given id
func (s *Service) Get(ctx context.Context, id int64) (*model.Account, error) {
	acct, err := s.accounts.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return acct, nil
}
