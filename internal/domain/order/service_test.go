package order

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/example/essia-shop/internal/infrastructure/store"
	"github.com/example/essia-shop/internal/infrastructure/store/mocks"
	"github.com/example/essia-shop/internal/logging"
	"github.com/example/essia-shop/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mu     sync.Mutex
	Events []*store.Event
	Err    error
}

func (p *mockPublisher) PublishEvent(ctx context.Context, event *store.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return p.Err
}

var ada = &model.Account{ID: 1, Name: "Ada", Email: "ada@example.com"}

var customer = Customer{
	Name:            "Ada Lovelace",
	Email:           "ada@example.com",
	ShippingAddress: "12 Analytical Row, London",
}

func newTestOrderService() (*Service, *mocks.MockCartStore, *mocks.MockOrderStore, *mockPublisher) {
	carts := mocks.NewMockCartStore()
	orders := mocks.NewMockOrderStore()
	publisher := &mockPublisher{}
	return NewService(carts, orders, publisher, logging.Discard()), carts, orders, publisher
}

func seedLine(t *testing.T, carts *mocks.MockCartStore, doc, price string, qty int) {
	t.Helper()
	_, err := carts.UpsertCartLine(context.Background(), &model.CartLine{
		UserID:       ada.ID,
		UserEmail:    ada.Email,
		DocumentID:   doc,
		ProductName:  "Candle " + doc,
		ProductPrice: decimal.RequireFromString(price),
		Quantity:     qty,
	})
	require.NoError(t, err)
}

func TestShippingFor(t *testing.T) {
	tests := []struct {
		subtotal string
		want     string
	}{
		{"0", "5.99"},
		{"49.99", "5.99"},
		{"50", "0"},
		{"120.5", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.subtotal, func(t *testing.T) {
			got := ShippingFor(decimal.RequireFromString(tt.subtotal))
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestService_PlaceIntent_BelowThreshold(t *testing.T) {
	service, carts, orders, publisher := newTestOrderService()
	seedLine(t, carts, "doc-a", "12.50", 2)

	order, err := service.PlaceIntent(context.Background(), ada, customer)

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.True(t, decimal.RequireFromString("25").Equal(order.Subtotal))
	assert.True(t, decimal.RequireFromString("5.99").Equal(order.Shipping))
	assert.True(t, decimal.RequireFromString("30.99").Equal(order.Total))
	require.Len(t, order.Items, 1)
	require.Len(t, orders.Orders, 1)
	assert.Equal(t, order.ID, orders.Orders[0].ID)

	// The cart is left for the client to clear
	assert.Equal(t, 1, carts.Count())

	require.Len(t, publisher.Events, 1)
	event := publisher.Events[0]
	assert.Equal(t, order.ID, event.AggregateID)
	assert.Equal(t, EventOrderIntentRecorded, event.EventType)
	assert.Equal(t, AggregateType, event.AggregateType)

	var payload OrderIntentRecorded
	require.NoError(t, json.Unmarshal(event.Data, &payload))
	assert.Equal(t, "ada@example.com", payload.CustomerEmail)
	assert.True(t, order.Total.Equal(payload.Total))
}

func TestService_PlaceIntent_FreeShipping(t *testing.T) {
	service, carts, _, _ := newTestOrderService()
	seedLine(t, carts, "doc-a", "20", 2)
	seedLine(t, carts, "doc-b", "10", 1)

	order, err := service.PlaceIntent(context.Background(), ada, customer)

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("50").Equal(order.Subtotal))
	assert.True(t, order.Shipping.IsZero())
	assert.True(t, decimal.RequireFromString("50").Equal(order.Total))
}

func TestService_PlaceIntent_EmptyCart(t *testing.T) {
	service, _, orders, publisher := newTestOrderService()

	order, err := service.PlaceIntent(context.Background(), ada, customer)

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, order)
	assert.Empty(t, orders.Orders)
	assert.Empty(t, publisher.Events)
}

func TestService_PlaceIntent_MissingCustomer(t *testing.T) {
	service, carts, _, _ := newTestOrderService()
	seedLine(t, carts, "doc-a", "12.50", 1)

	_, err := service.PlaceIntent(context.Background(), ada, Customer{Name: "Ada"})

	assert.ErrorIs(t, err, ErrMissingCustomer)
}

func TestService_PlaceIntent_PublishFailureDoesNotFailOrder(t *testing.T) {
	service, carts, orders, publisher := newTestOrderService()
	publisher.Err = errors.New("broker unavailable")
	seedLine(t, carts, "doc-a", "12.50", 1)

	order, err := service.PlaceIntent(context.Background(), ada, customer)

	require.NoError(t, err)
	assert.NotNil(t, order)
	assert.Len(t, orders.Orders, 1)
}

func TestService_PlaceIntent_NilPublisher(t *testing.T) {
	carts := mocks.NewMockCartStore()
	orders := mocks.NewMockOrderStore()
	service := NewService(carts, orders, nil, logging.Discard())
	seedLine(t, carts, "doc-a", "12.50", 1)

	order, err := service.PlaceIntent(context.Background(), ada, customer)

	require.NoError(t, err)
	assert.NotNil(t, order)
}

func TestService_PlaceIntent_StoreFailure(t *testing.T) {
	service, carts, orders, publisher := newTestOrderService()
	seedLine(t, carts, "doc-a", "12.50", 1)
	orders.Err = errors.New("db down")

	order, err := service.PlaceIntent(context.Background(), ada, customer)

	require.Error(t, err)
	assert.Nil(t, order)
	assert.Empty(t, publisher.Events)
}
