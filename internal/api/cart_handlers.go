package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/essia-shop/internal/api/middleware"
	"github.com/example/essia-shop/internal/domain/cart"
	"github.com/shopspring/decimal"
)

// CartHandlers handles cart HTTP requests. Every route runs behind the
// authenticator, so the owner always comes from the request context.
type CartHandlers struct {
	carts   *cart.Service
	metrics *Metrics
	logger  *slog.Logger
}

// NewCartHandlers creates a new CartHandlers instance. metrics may be nil.
func NewCartHandlers(carts *cart.Service, metrics *Metrics, logger *slog.Logger) *CartHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartHandlers{carts: carts, metrics: metrics, logger: logger}
}

// AddCartItemRequest is the product snapshot sent when adding to the cart
type AddCartItemRequest struct {
	DocumentID   string           `json:"documentId" validate:"required"`
	ProductID    int64            `json:"productId"`
	ProductName  string           `json:"productName" validate:"required"`
	ProductPrice *decimal.Decimal `json:"productPrice" validate:"required"`
	ProductImage string           `json:"productImage"`
	Quantity     *int             `json:"quantity" validate:"omitempty,min=1,max=10000"`
}

// UpdateCartItemRequest sets a line's quantity
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=1,max=10000"`
}

// List returns the caller's cart lines
func (h *CartHandlers) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Not authorized, no token", http.StatusUnauthorized)
		return
	}

	lines, err := h.carts.List(r.Context(), owner)
	if err != nil {
		h.serverError(w, r, "list cart failed", err)
		return
	}
	respondJSON(w, http.StatusOK, lines)
}

// Add inserts a product or bumps the quantity of the existing line
func (h *CartHandlers) Add(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Not authorized, no token", http.StatusUnauthorized)
		return
	}

	var req AddCartItemRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		msg := "Missing required product fields"
		if tag := failedTag(err); tag == "min" || tag == "max" {
			msg = validationMessage(err)
		}
		respondJSONError(w, msg, http.StatusBadRequest)
		return
	}

	item := cart.AddItem{
		DocumentID: req.DocumentID,
		ProductID:  req.ProductID,
		Name:       req.ProductName,
		Price:      *req.ProductPrice,
		Image:      req.ProductImage,
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}

	line, err := h.carts.Add(r.Context(), owner, item)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrInvalidProduct):
			respondJSONError(w, "Missing required product fields", http.StatusBadRequest)
		case errors.Is(err, cart.ErrInvalidPrice), errors.Is(err, cart.ErrInvalidQuantity),
			errors.Is(err, cart.ErrLineTooLarge):
			respondJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			h.serverError(w, r, "add to cart failed", err)
		}
		return
	}

	h.metrics.cartMutation("add")
	respondJSON(w, http.StatusOK, line)
}

// UpdateQuantity sets the quantity of one of the caller's lines
func (h *CartHandlers) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Not authorized, no token", http.StatusUnauthorized)
		return
	}

	lineID, ok := lineIDParam(r)
	if !ok {
		respondJSONError(w, "Cart item not found", http.StatusNotFound)
		return
	}

	var req UpdateCartItemRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondJSONError(w, cart.ErrInvalidQuantity.Error(), http.StatusBadRequest)
		return
	}

	line, err := h.carts.UpdateQuantity(r.Context(), owner, lineID, *req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, cart.ErrLineTooLarge):
			respondJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, cart.ErrLineNotFound):
			respondJSONError(w, "Cart item not found", http.StatusNotFound)
		default:
			h.serverError(w, r, "update cart item failed", err)
		}
		return
	}

	h.metrics.cartMutation("update")
	respondJSON(w, http.StatusOK, line)
}

// Remove deletes one of the caller's lines
func (h *CartHandlers) Remove(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Not authorized, no token", http.StatusUnauthorized)
		return
	}

	lineID, ok := lineIDParam(r)
	if !ok {
		respondJSONError(w, "Cart item not found", http.StatusNotFound)
		return
	}

	if err := h.carts.Remove(r.Context(), owner, lineID); err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			respondJSONError(w, "Cart item not found", http.StatusNotFound)
			return
		}
		h.serverError(w, r, "remove cart item failed", err)
		return
	}

	h.metrics.cartMutation("remove")
	respondJSON(w, http.StatusOK, map[string]string{"message": "Item removed from cart"})
}

func (h *CartHandlers) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.Any("error", err),
	)
	respondJSONError(w, "Internal server error", http.StatusInternalServerError)
}
