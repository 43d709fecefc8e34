package mocks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/example/essia-shop/internal/infrastructure/store"
	"github.com/example/essia-shop/internal/model"
)

// MockAccountStore is an in-memory AccountStore for testing
type MockAccountStore struct {
	mu       sync.RWMutex
	accounts map[int64]*model.Account
	nextID   int64

	// For tracking calls in tests
	CreateCalls []CreateAccountCall

	// Err, when set, is returned by every method
	Err error
}

// CreateAccountCall records parameters passed to CreateAccount
type CreateAccountCall struct {
	Name  string
	Email string
}

// NewMockAccountStore creates a new MockAccountStore
func NewMockAccountStore() *MockAccountStore {
	return &MockAccountStore{
		accounts:    make(map[int64]*model.Account),
		CreateCalls: make([]CreateAccountCall, 0),
	}
}

func (m *MockAccountStore) CreateAccount(ctx context.Context, name, email, passwordHash string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls = append(m.CreateCalls, CreateAccountCall{Name: name, Email: email})
	if m.Err != nil {
		return nil, m.Err
	}

	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			return nil, store.ErrDuplicate
		}
	}

	m.nextID++
	acct := &model.Account{
		ID:           m.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	m.accounts[acct.ID] = acct
	copied := *acct
	return &copied, nil
}

func (m *MockAccountStore) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			copied := *a
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MockAccountStore) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	a, ok := m.accounts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

// Delete removes an account, simulating a row deleted out from under a live token
func (m *MockAccountStore) Delete(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, id)
}

// Count returns the number of stored accounts
func (m *MockAccountStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.accounts)
}
