package storefront

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/example/essia-shop/internal/catalog"
	"github.com/example/essia-shop/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const enrichConcurrency = 8

// ProductSource looks up catalog products by id
type ProductSource interface {
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
}

// EnrichedLine is a cart line overlaid with live catalog data. Quantity
// always comes from the cart.
type EnrichedLine struct {
	LineID      int64
	ProductID   int64
	DocumentID  string
	Name        string
	Price       decimal.Decimal
	Description string
	Image       string
	InStock     bool
	Featured    bool
	Category    string
	Visible     bool
	Quantity    int
}

// Subtotal is the line value at the live price
func (l EnrichedLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// placeholder stands in for a product the catalog could not supply
func placeholder(line model.CartLine) EnrichedLine {
	return EnrichedLine{
		LineID:     line.ID,
		ProductID:  line.ProductID,
		DocumentID: line.DocumentID,
		Name:       "Unavailable",
		Price:      decimal.Zero,
		InStock:    false,
		Category:   "Unknown",
		Visible:    false,
		Quantity:   line.Quantity,
	}
}

// Enricher joins cart lines with catalog products. Results are cached per
// cart revision once every lookup has either succeeded or reported the
// product missing.
type Enricher struct {
	products ProductSource
	logger   *slog.Logger

	mu       sync.Mutex
	cached   []EnrichedLine
	revision uint64
	valid    bool
}

// NewEnricher creates an Enricher backed by products
func NewEnricher(products ProductSource, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{products: products, logger: logger.With(slog.String("component", "enricher"))}
}

// ForCart enriches the cart's current lines
func (e *Enricher) ForCart(ctx context.Context, cart *Cart) []EnrichedLine {
	lines, revision := cart.Snapshot()
	return e.Enrich(ctx, revision, lines)
}

// Enrich fetches every line's product concurrently. A failed or missing
// lookup yields the placeholder, so the result always has one entry per line.
// Results holding a placeholder for a failed lookup are not cached, so the
// next call for the same revision retries.
func (e *Enricher) Enrich(ctx context.Context, revision uint64, lines []model.CartLine) []EnrichedLine {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.valid && e.revision == revision {
		return append([]EnrichedLine(nil), e.cached...)
	}

	out := make([]EnrichedLine, len(lines))
	var transient atomic.Bool
	var g errgroup.Group
	g.SetLimit(enrichConcurrency)

	for i, line := range lines {
		g.Go(func() error {
			p, err := e.products.GetProduct(ctx, line.ProductID)
			if err != nil {
				e.logger.WarnContext(ctx, "product lookup failed",
					slog.Int64("product_id", line.ProductID),
					slog.Any("error", err),
				)
				if !errors.Is(err, catalog.ErrProductNotFound) {
					transient.Store(true)
				}
				out[i] = placeholder(line)
				return nil
			}
			out[i] = overlay(line, p)
			return nil
		})
	}
	_ = g.Wait()

	if transient.Load() || ctx.Err() != nil {
		return out
	}
	e.cached = out
	e.revision = revision
	e.valid = true
	return append([]EnrichedLine(nil), out...)
}

func overlay(line model.CartLine, p *catalog.Product) EnrichedLine {
	return EnrichedLine{
		LineID:      line.ID,
		ProductID:   p.ID,
		DocumentID:  line.DocumentID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Image:       p.Image,
		InStock:     p.InStock,
		Featured:    p.Featured,
		Category:    p.Category,
		Visible:     p.Visible,
		Quantity:    line.Quantity,
	}
}
