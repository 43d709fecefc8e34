package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/essia-shop/internal/infrastructure/store"
	"github.com/example/essia-shop/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrMissingCustomer = errors.New("customer name, email and shipping address are required")
)

var (
	// FreeShippingThreshold is the subtotal at which shipping becomes free.
	FreeShippingThreshold = decimal.NewFromInt(50)
	// FlatShippingFee applies below the threshold.
	FlatShippingFee = decimal.RequireFromString("5.99")
)

// Publisher sends event envelopes to the message broker
type Publisher interface {
	PublishEvent(ctx context.Context, event *store.Event) error
}

// Customer is the contact and delivery information captured at checkout
type Customer struct {
	Name            string
	Email           string
	Phone           string
	ShippingAddress string
}

// Service records order intents from the owner's current cart
type Service struct {
	carts     store.CartStore
	orders    store.OrderStore
	publisher Publisher
	logger    *slog.Logger
}

// NewService creates a new order service. publisher may be nil.
func NewService(carts store.CartStore, orders store.OrderStore, publisher Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		carts:     carts,
		orders:    orders,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "order")),
	}
}

// ShippingFor returns the shipping charge for a subtotal
func ShippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		return decimal.Zero
	}
	return FlatShippingFee
}

// PlaceIntent freezes the owner's cart into a pending order. The cart itself
// is left untouched; the client clears it once the order is confirmed.
func (s *Service) PlaceIntent(ctx context.Context, owner *model.Account, customer Customer) (*model.Order, error) {
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Email = strings.TrimSpace(customer.Email)
	customer.ShippingAddress = strings.TrimSpace(customer.ShippingAddress)
	if customer.Name == "" || customer.Email == "" || customer.ShippingAddress == "" {
		return nil, ErrMissingCustomer
	}

	lines, err := s.carts.ListCartLines(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	order := &model.Order{
		ID:              uuid.New().String(),
		UserID:          owner.ID,
		CustomerName:    customer.Name,
		CustomerEmail:   customer.Email,
		CustomerPhone:   strings.TrimSpace(customer.Phone),
		ShippingAddress: customer.ShippingAddress,
		Status:          model.OrderStatusPending,
		Subtotal:        decimal.Zero,
		Items:           make([]model.OrderItem, 0, len(lines)),
	}
	for _, l := range lines {
		order.Items = append(order.Items, model.OrderItem{
			DocumentID:   l.DocumentID,
			ProductID:    l.ProductID,
			ProductName:  l.ProductName,
			ProductPrice: l.ProductPrice,
			Quantity:     l.Quantity,
			TotalPrice:   l.TotalPrice,
		})
		order.Subtotal = order.Subtotal.Add(l.TotalPrice)
	}
	order.Shipping = ShippingFor(order.Subtotal)
	order.Total = order.Subtotal.Add(order.Shipping)

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.InfoContext(ctx, "order intent recorded",
		slog.String("order_id", order.ID),
		slog.Int64("user_id", owner.ID),
		slog.String("total", order.Total.StringFixed(2)),
	)

	s.publish(ctx, order)
	return order, nil
}

// publish is best-effort: the order is already stored.
func (s *Service) publish(ctx context.Context, order *model.Order) {
	if s.publisher == nil {
		return
	}

	items := make([]OrderItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItem{
			DocumentID: item.DocumentID,
			Name:       item.ProductName,
			Quantity:   item.Quantity,
			Price:      item.ProductPrice,
		}
	}

	event, err := store.NewEvent(order.ID, AggregateType, EventOrderIntentRecorded, OrderIntentRecorded{
		OrderID:         order.ID,
		UserID:          order.UserID,
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		ShippingAddress: order.ShippingAddress,
		Items:           items,
		Subtotal:        order.Subtotal,
		Shipping:        order.Shipping,
		Total:           order.Total,
		RecordedAt:      order.CreatedAt,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to build order event", slog.String("order_id", order.ID), slog.Any("error", err))
		return
	}

	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order event", slog.String("order_id", order.ID), slog.Any("error", err))
	}
}
