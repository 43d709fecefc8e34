package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/essia-shop/internal/model"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

var ErrNotSignedIn = errors.New("sign in to use the cart")

const clearConcurrency = 4

// CartAPI is the part of the API the cart needs
type CartAPI interface {
	ListCart(ctx context.Context) ([]model.CartLine, error)
	AddToCart(ctx context.Context, item AddCartItem) (*model.CartLine, error)
	UpdateCartItem(ctx context.Context, lineID int64, quantity int) (*model.CartLine, error)
	RemoveCartItem(ctx context.Context, lineID int64) error
	PlaceOrder(ctx context.Context, form CheckoutForm) (*model.Order, error)
}

// Identity reports the signed-in account
type Identity interface {
	User() *model.PublicAccount
}

// ClearError reports the lines a clear could not remove
type ClearError struct {
	Failed int
	Total  int
	Err    error
}

func (e *ClearError) Error() string {
	return fmt.Sprintf("failed to remove %d of %d cart items: %v", e.Failed, e.Total, e.Err)
}

func (e *ClearError) Unwrap() error { return e.Err }

// Cart mirrors the server-side cart. Lines are never edited locally:
// each mutation is followed by a refetch.
type Cart struct {
	api      CartAPI
	identity Identity
	logger   *slog.Logger

	mu       sync.RWMutex
	lines    []model.CartLine
	revision uint64

	lineLocks keyedMutex
}

// NewCart creates an empty cart bound to identity
func NewCart(api CartAPI, identity Identity, logger *slog.Logger) *Cart {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cart{
		api:      api,
		identity: identity,
		logger:   logger.With(slog.String("component", "cart")),
		lines:    []model.CartLine{},
	}
}

// Lines returns a copy of the current lines
func (c *Cart) Lines() []model.CartLine {
	lines, _ := c.Snapshot()
	return lines
}

// Snapshot returns the current lines with the revision they belong to
func (c *Cart) Snapshot() ([]model.CartLine, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append(make([]model.CartLine, 0, len(c.lines)), c.lines...), c.revision
}

// Revision changes every time the lines are replaced
func (c *Cart) Revision() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revision
}

// Count is the number of units in the cart
func (c *Cart) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CountLines(c.lines)
}

// Total is the value of the cart at snapshot prices
func (c *Cart) Total() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return TotalLines(c.lines)
}

// CountLines sums quantities
func CountLines(lines []model.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// TotalLines sums price times quantity
func TotalLines(lines []model.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.ProductPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Refetch replaces the lines with the server's. Without a signed-in
// account the cart is empty.
func (c *Cart) Refetch(ctx context.Context) error {
	if c.identity.User() == nil {
		c.setLines(nil)
		return nil
	}

	lines, err := c.api.ListCart(ctx)
	if err != nil {
		return fmt.Errorf("refetch cart: %w", err)
	}
	c.setLines(lines)
	return nil
}

// HandleIdentityChange keeps the cart in step with the session. It is
// meant to be registered with Session.OnChange.
func (c *Cart) HandleIdentityChange(user *model.PublicAccount) {
	if user == nil {
		c.setLines(nil)
		return
	}
	if err := c.Refetch(context.Background()); err != nil {
		c.logger.Warn("cart refetch after sign-in failed", slog.Any("error", err))
	}
}

func (c *Cart) setLines(lines []model.CartLine) {
	if lines == nil {
		lines = []model.CartLine{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(lines) == 0 && len(c.lines) == 0 {
		return
	}
	c.lines = lines
	c.revision++
}

// Add puts a product in the cart
func (c *Cart) Add(ctx context.Context, item AddCartItem) error {
	if c.identity.User() == nil {
		return ErrNotSignedIn
	}
	_, err := c.api.AddToCart(ctx, item)
	return c.afterMutation(ctx, err)
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line.
func (c *Cart) UpdateQuantity(ctx context.Context, lineID int64, quantity int) error {
	if quantity <= 0 {
		return c.Remove(ctx, lineID)
	}
	if c.identity.User() == nil {
		return ErrNotSignedIn
	}

	unlock := c.lineLocks.Lock(lineID)
	_, err := c.api.UpdateCartItem(ctx, lineID, quantity)
	unlock()

	return c.afterMutation(ctx, err)
}

// Remove deletes a line
func (c *Cart) Remove(ctx context.Context, lineID int64) error {
	if c.identity.User() == nil {
		return ErrNotSignedIn
	}

	unlock := c.lineLocks.Lock(lineID)
	err := c.api.RemoveCartItem(ctx, lineID)
	unlock()

	return c.afterMutation(ctx, err)
}

// Clear removes every line concurrently. Lines that could not be removed
// are reported in a *ClearError.
func (c *Cart) Clear(ctx context.Context) error {
	if c.identity.User() == nil {
		return ErrNotSignedIn
	}

	lines := c.Lines()
	var (
		g      errgroup.Group
		mu     sync.Mutex
		errs   error
		failed int
	)
	g.SetLimit(clearConcurrency)

	for _, line := range lines {
		g.Go(func() error {
			unlock := c.lineLocks.Lock(line.ID)
			defer unlock()

			if err := c.api.RemoveCartItem(ctx, line.ID); err != nil {
				mu.Lock()
				failed++
				errs = multierr.Append(errs, fmt.Errorf("item %d: %w", line.ID, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	var clearErr error
	if failed > 0 {
		clearErr = &ClearError{Failed: failed, Total: len(lines), Err: errs}
	}
	return c.afterMutation(ctx, clearErr)
}

// Checkout records an order for the current cart and then clears it
func (c *Cart) Checkout(ctx context.Context, form CheckoutForm) (*model.Order, error) {
	if c.identity.User() == nil {
		return nil, ErrNotSignedIn
	}

	order, err := c.api.PlaceOrder(ctx, form)
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "order placed", slog.String("order_id", order.ID))
	if err := c.Clear(ctx); err != nil {
		return order, fmt.Errorf("order %s placed but the cart was not cleared: %w", order.ID, err)
	}
	return order, nil
}

// afterMutation always refetches and reports both failures
func (c *Cart) afterMutation(ctx context.Context, mutationErr error) error {
	return multierr.Append(mutationErr, c.Refetch(ctx))
}
