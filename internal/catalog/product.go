package catalog

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry as the storefront displays it
type Product struct {
	ID          int64           `json:"id"`
	DocumentID  string          `json:"documentId"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	InStock     bool            `json:"inStock"`
	Featured    bool            `json:"featured"`
	Category    string          `json:"category"`
	Visible     bool            `json:"visible"`
	Quantity    int             `json:"quantity"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// SortKey selects a product ordering
type SortKey string

const (
	SortName      SortKey = "name"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortStock     SortKey = "stock"
	SortFeatured  SortKey = "featured"
)

// CategoryAll matches every category in Filter
const CategoryAll = "all"

// Filter keeps visible, named products whose name contains query and whose
// category matches. Both comparisons ignore case.
func Filter(products []Product, query, category string) []Product {
	query = strings.ToLower(strings.TrimSpace(query))
	category = strings.TrimSpace(category)

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if !p.Visible || p.Name == "" {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		if category != "" && !strings.EqualFold(category, CategoryAll) && !strings.EqualFold(p.Category, category) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Sort returns a sorted copy. Unknown keys sort by name.
func Sort(products []Product, key SortKey) []Product {
	out := slices.Clone(products)

	var less func(a, b Product) int
	switch key {
	case SortPriceLow:
		less = func(a, b Product) int { return a.Price.Cmp(b.Price) }
	case SortPriceHigh:
		less = func(a, b Product) int { return b.Price.Cmp(a.Price) }
	case SortNewest:
		less = func(a, b Product) int { return cmp.Compare(b.ID, a.ID) }
	case SortOldest:
		less = func(a, b Product) int { return cmp.Compare(a.ID, b.ID) }
	case SortStock:
		less = func(a, b Product) int { return cmp.Compare(boolRank(b.InStock), boolRank(a.InStock)) }
	case SortFeatured:
		less = func(a, b Product) int { return cmp.Compare(boolRank(b.Featured), boolRank(a.Featured)) }
	default:
		less = func(a, b Product) int { return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	}

	slices.SortStableFunc(out, less)
	return out
}

// Featured returns the home page selection: visible, in stock and with
// quantity left, newest first. limit <= 0 means no limit.
func Featured(products []Product, limit int) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Visible && p.InStock && p.Quantity > 0 {
			out = append(out, p)
		}
	}

	slices.SortStableFunc(out, func(a, b Product) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
