package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/essia-shop/internal/infrastructure/store"
	"github.com/example/essia-shop/internal/model"
)

// MockCartStore is an in-memory CartStore for testing
type MockCartStore struct {
	mu     sync.RWMutex
	lines  map[int64]*model.CartLine
	nextID int64
	clock  time.Time

	// For tracking calls in tests
	UpsertCalls []model.CartLine
	UpdateCalls []UpdateQuantityCall
	DeleteCalls []DeleteLineCall

	// Err, when set, is returned by every method
	Err error
}

// UpdateQuantityCall records parameters passed to UpdateCartLineQuantity
type UpdateQuantityCall struct {
	UserID   int64
	LineID   int64
	Quantity int
}

// DeleteLineCall records parameters passed to DeleteCartLine
type DeleteLineCall struct {
	UserID int64
	LineID int64
}

// NewMockCartStore creates a new MockCartStore
func NewMockCartStore() *MockCartStore {
	return &MockCartStore{
		lines: make(map[int64]*model.CartLine),
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing timestamps so ordering is deterministic
func (m *MockCartStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *MockCartStore) ListCartLines(ctx context.Context, userID int64) ([]model.CartLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}

	lines := make([]model.CartLine, 0)
	for _, l := range m.lines {
		if l.UserID == userID {
			lines = append(lines, *l)
		}
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].CreatedAt.After(lines[j].CreatedAt)
	})
	return lines, nil
}

func (m *MockCartStore) UpsertCartLine(ctx context.Context, line *model.CartLine) (*model.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpsertCalls = append(m.UpsertCalls, *line)
	if m.Err != nil {
		return nil, m.Err
	}

	now := m.tick()
	for _, l := range m.lines {
		if l.UserID == line.UserID && l.DocumentID == line.DocumentID {
			merged := *l
			merged.Quantity += line.Quantity
			if !merged.WithinLimits() {
				return nil, store.ErrOutOfRange
			}
			l.Quantity = merged.Quantity
			l.RecomputeTotal()
			l.UpdatedAt = now
			copied := *l
			return &copied, nil
		}
	}

	if !line.WithinLimits() {
		return nil, store.ErrOutOfRange
	}
	m.nextID++
	stored := *line
	stored.ID = m.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	stored.RecomputeTotal()
	m.lines[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (m *MockCartStore) UpdateCartLineQuantity(ctx context.Context, userID, lineID int64, quantity int) (*model.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls = append(m.UpdateCalls, UpdateQuantityCall{UserID: userID, LineID: lineID, Quantity: quantity})
	if m.Err != nil {
		return nil, m.Err
	}

	l, ok := m.lines[lineID]
	if !ok || l.UserID != userID {
		return nil, store.ErrNotFound
	}
	updated := *l
	updated.Quantity = quantity
	if !updated.WithinLimits() {
		return nil, store.ErrOutOfRange
	}
	l.Quantity = quantity
	l.RecomputeTotal()
	l.UpdatedAt = m.tick()
	copied := *l
	return &copied, nil
}

func (m *MockCartStore) DeleteCartLine(ctx context.Context, userID, lineID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, DeleteLineCall{UserID: userID, LineID: lineID})
	if m.Err != nil {
		return m.Err
	}

	l, ok := m.lines[lineID]
	if !ok || l.UserID != userID {
		return store.ErrNotFound
	}
	delete(m.lines, lineID)
	return nil
}

// Count returns the number of stored lines across all accounts
func (m *MockCartStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.lines)
}
