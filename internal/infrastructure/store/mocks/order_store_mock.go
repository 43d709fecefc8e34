package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/example/essia-shop/internal/model"
)

// MockOrderStore is an in-memory OrderStore for testing
type MockOrderStore struct {
	mu sync.Mutex

	// For tracking calls in tests
	Orders []model.Order

	// Err, when set, is returned by CreateOrder
	Err error
}

// NewMockOrderStore creates a new MockOrderStore
func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{Orders: make([]model.Order, 0)}
}

func (m *MockOrderStore) CreateOrder(ctx context.Context, order *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	order.CreatedAt = time.Now()
	m.Orders = append(m.Orders, *order)
	return nil
}
