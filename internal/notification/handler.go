package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/example/essia-shop/internal/domain/order"
	"github.com/example/essia-shop/internal/email"
	"github.com/example/essia-shop/internal/infrastructure/store"
)

// Mailer sends order confirmations
type Mailer interface {
	SendOrderConfirmation(to string, order email.OrderSummary) error
}

// Handler turns order events into customer emails
type Handler struct {
	mailer Mailer
	logger *slog.Logger
}

// NewHandler creates a new notification handler
func NewHandler(mailer Mailer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{mailer: mailer, logger: logger.With(slog.String("component", "notifier"))}
}

// HandleEvent processes one message from the order topic. Other event
// types are ignored.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}

	if event.EventType != order.EventOrderIntentRecorded {
		return nil
	}
	return h.handleOrderIntentRecorded(ctx, event)
}

func (h *Handler) handleOrderIntentRecorded(ctx context.Context, event store.Event) error {
	var e order.OrderIntentRecorded
	if err := json.Unmarshal(event.Data, &e); err != nil {
		return fmt.Errorf("decode %s: %w", event.EventType, err)
	}
	if e.CustomerEmail == "" {
		h.logger.WarnContext(ctx, "order has no customer email", slog.String("order_id", e.OrderID))
		return nil
	}

	items := make([]email.OrderItem, len(e.Items))
	for i, item := range e.Items {
		items[i] = email.OrderItem{Name: item.Name, Quantity: item.Quantity, Price: item.Price}
	}

	summary := email.OrderSummary{
		OrderID:         e.OrderID,
		CustomerName:    e.CustomerName,
		ShippingAddress: e.ShippingAddress,
		Items:           items,
		Subtotal:        e.Subtotal,
		Shipping:        e.Shipping,
		Total:           e.Total,
	}
	if err := h.mailer.SendOrderConfirmation(e.CustomerEmail, summary); err != nil {
		return fmt.Errorf("send confirmation for order %s: %w", e.OrderID, err)
	}

	h.logger.InfoContext(ctx, "order confirmation sent",
		slog.String("order_id", e.OrderID),
		slog.String("to", e.CustomerEmail),
	)
	return nil
}
