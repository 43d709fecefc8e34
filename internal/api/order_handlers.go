package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/essia-shop/internal/api/middleware"
	"github.com/example/essia-shop/internal/domain/order"
)

// OrderHandlers handles checkout HTTP requests
type OrderHandlers struct {
	orders  *order.Service
	metrics *Metrics
	logger  *slog.Logger
}

// NewOrderHandlers creates a new OrderHandlers instance. metrics may be nil.
func NewOrderHandlers(orders *order.Service, metrics *Metrics, logger *slog.Logger) *OrderHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderHandlers{orders: orders, metrics: metrics, logger: logger}
}

// PlaceOrderRequest is the checkout form
type PlaceOrderRequest struct {
	CustomerName    string `json:"customerName" validate:"required,min=2"`
	CustomerEmail   string `json:"customerEmail" validate:"required,email"`
	CustomerPhone   string `json:"customerPhone"`
	ShippingAddress string `json:"shippingAddress" validate:"required,min=10"`
}

// PlaceOrder records an order intent from the caller's cart
func (h *OrderHandlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Not authorized, no token", http.StatusUnauthorized)
		return
	}

	var req PlaceOrderRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondJSONError(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	placed, err := h.orders.PlaceIntent(r.Context(), owner, order.Customer{
		Name:            req.CustomerName,
		Email:           req.CustomerEmail,
		Phone:           req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		switch {
		case errors.Is(err, order.ErrEmptyCart):
			respondJSONError(w, "Your cart is empty", http.StatusBadRequest)
		case errors.Is(err, order.ErrMissingCustomer):
			respondJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.ErrorContext(r.Context(), "place order failed",
				slog.String("request_id", middleware.GetRequestID(r.Context())),
				slog.Any("error", err),
			)
			respondJSONError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.metrics.orderPlaced()
	respondJSON(w, http.StatusCreated, placed)
}
