package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/essia-shop/internal/infrastructure/store"
	"github.com/example/essia-shop/internal/model"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = fmt.Errorf("quantity must be between 1 and %d", model.MaxLineQuantity)
	ErrInvalidProduct  = errors.New("documentId and productName are required")
	ErrInvalidPrice    = errors.New("productPrice must be between 0 and 9999999999.99 with at most two decimals")
	ErrLineTooLarge    = errors.New("cart line exceeds the allowed quantity or amount")
	ErrLineNotFound    = errors.New("cart item not found")
)

// AddItem carries the catalog snapshot taken when a product is added
type AddItem struct {
	DocumentID string
	ProductID  int64
	Name       string
	Price      decimal.Decimal
	Image      string
	Quantity   int
}

// Service handles cart operations scoped to a single owner
type Service struct {
	carts  store.CartStore
	logger *slog.Logger
}

// NewService creates a new cart service
func NewService(carts store.CartStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{carts: carts, logger: logger.With(slog.String("component", "cart"))}
}

// List returns the owner's lines, newest first
func (s *Service) List(ctx context.Context, owner *model.Account) ([]model.CartLine, error) {
	lines, err := s.carts.ListCartLines(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	return lines, nil
}

// Add inserts a line or increments the existing line for the same product.
// A zero quantity means one.
func (s *Service) Add(ctx context.Context, owner *model.Account, item AddItem) (*model.CartLine, error) {
	item.DocumentID = strings.TrimSpace(item.DocumentID)
	item.Name = strings.TrimSpace(item.Name)
	if item.DocumentID == "" || item.Name == "" {
		return nil, ErrInvalidProduct
	}
	if !validPrice(item.Price) {
		return nil, ErrInvalidPrice
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if item.Quantity < 1 || item.Quantity > model.MaxLineQuantity {
		return nil, ErrInvalidQuantity
	}

	candidate := &model.CartLine{
		UserID:       owner.ID,
		UserEmail:    owner.Email,
		DocumentID:   item.DocumentID,
		ProductID:    item.ProductID,
		ProductName:  item.Name,
		ProductPrice: item.Price,
		Quantity:     item.Quantity,
		ProductImage: item.Image,
	}
	if !candidate.WithinLimits() {
		return nil, ErrLineTooLarge
	}

	line, err := s.carts.UpsertCartLine(ctx, candidate)
	if err != nil {
		if errors.Is(err, store.ErrOutOfRange) {
			return nil, ErrLineTooLarge
		}
		return nil, fmt.Errorf("add to cart: %w", err)
	}

	s.logger.InfoContext(ctx, "item added",
		slog.Int64("user_id", owner.ID),
		slog.String("document_id", line.DocumentID),
		slog.Int("quantity", line.Quantity),
	)
	return line, nil
}

// UpdateQuantity sets a line's quantity. Quantities below one are rejected;
// removal goes through Remove.
func (s *Service) UpdateQuantity(ctx context.Context, owner *model.Account, lineID int64, quantity int) (*model.CartLine, error) {
	if quantity < 1 || quantity > model.MaxLineQuantity {
		return nil, ErrInvalidQuantity
	}

	line, err := s.carts.UpdateCartLineQuantity(ctx, owner.ID, lineID, quantity)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrLineNotFound
		}
		if errors.Is(err, store.ErrOutOfRange) {
			return nil, ErrLineTooLarge
		}
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return line, nil
}

// validPrice accepts non-negative cent amounts that fit the price column
func validPrice(price decimal.Decimal) bool {
	return !price.IsNegative() &&
		price.LessThanOrEqual(model.MaxLineAmount) &&
		price.Equal(price.Truncate(model.MoneyScale))
}

// Remove deletes one of the owner's lines
func (s *Service) Remove(ctx context.Context, owner *model.Account, lineID int64) error {
	if err := s.carts.DeleteCartLine(ctx, owner.ID, lineID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrLineNotFound
		}
		return fmt.Errorf("remove cart item: %w", err)
	}

	s.logger.InfoContext(ctx, "item removed", slog.Int64("user_id", owner.ID), slog.Int64("line_id", lineID))
	return nil
}
