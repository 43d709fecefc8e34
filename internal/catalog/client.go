// Package catalog reads product data from the Strapi content API.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

const defaultTimeout = 10 * time.Second

// Client fetches products from Strapi
type Client struct {
	http    *resty.Client
	baseURL string
	logger  *slog.Logger
}

// NewClient creates a catalog client for the Strapi instance at baseURL
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(defaultTimeout).
			SetHeader("Accept", "application/json"),
		baseURL: baseURL,
		logger:  logger.With(slog.String("component", "catalog")),
	}
}

type listResponse struct {
	Data []strapiProduct `json:"data"`
}

type strapiMedia struct {
	URL string `json:"url"`
}

type strapiImage struct {
	URL     string `json:"url"`
	Formats struct {
		Medium    *strapiMedia `json:"medium"`
		Thumbnail *strapiMedia `json:"thumbnail"`
	} `json:"formats"`
}

// strapiProduct mirrors the content type. Older entries use lower-case
// name and price fields.
type strapiProduct struct {
	ID          int64            `json:"id"`
	DocumentID  string           `json:"documentId"`
	Name        *string          `json:"Name"`
	NameLower   *string          `json:"name"`
	Price       *decimal.Decimal `json:"Price"`
	PriceLower  *decimal.Decimal `json:"price"`
	Description string           `json:"description"`
	Image       *strapiImage     `json:"image"`
	InStock     *bool            `json:"inStock"`
	Featured    *bool            `json:"featured"`
	Category    *string          `json:"category"`
	IsVisiable  *bool            `json:"isVisiable"`
	Quantity    *int             `json:"quantity"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// GetProduct fetches a single product by numeric id
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var out listResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("filters[id][$eq]", strconv.FormatInt(id, 10)).
		SetQueryParam("populate", "image").
		SetResult(&out).
		Get("/api/products")
	if err != nil {
		return nil, fmt.Errorf("fetch product %d: %w", id, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch product %d: unexpected status %d", id, resp.StatusCode())
	}
	if len(out.Data) == 0 {
		return nil, ErrProductNotFound
	}

	p := c.toProduct(out.Data[0])
	return &p, nil
}

// ListProducts fetches every product, newest first
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var out listResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("sort", "createdAt:desc").
		SetQueryParam("populate", "image").
		SetQueryParam("pagination[pageSize]", "100").
		SetResult(&out).
		Get("/api/products")
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch products: unexpected status %d", resp.StatusCode())
	}

	products := make([]Product, 0, len(out.Data))
	for _, item := range out.Data {
		products = append(products, c.toProduct(item))
	}
	c.logger.DebugContext(ctx, "products fetched", slog.Int("count", len(products)))
	return products, nil
}

func (c *Client) toProduct(item strapiProduct) Product {
	p := Product{
		ID:          item.ID,
		DocumentID:  item.DocumentID,
		Name:        firstString(item.Name, item.NameLower),
		Price:       decimal.Zero,
		Description: item.Description,
		Image:       c.imageURL(item.Image),
		InStock:     boolOr(item.InStock, false),
		Featured:    boolOr(item.Featured, false),
		Category:    "Unknown",
		Visible:     boolOr(item.IsVisiable, true),
		CreatedAt:   item.CreatedAt,
	}
	switch {
	case item.Price != nil:
		p.Price = *item.Price
	case item.PriceLower != nil:
		p.Price = *item.PriceLower
	}
	if item.Category != nil && *item.Category != "" {
		p.Category = *item.Category
	}
	if item.Quantity != nil {
		p.Quantity = *item.Quantity
	}
	return p
}

// imageURL prefers the medium rendition, then the original, then the
// thumbnail. Relative upload paths are served from the Strapi host.
func (c *Client) imageURL(img *strapiImage) string {
	if img == nil {
		return ""
	}

	var path string
	switch {
	case img.Formats.Medium != nil && img.Formats.Medium.URL != "":
		path = img.Formats.Medium.URL
	case img.URL != "":
		path = img.URL
	case img.Formats.Thumbnail != nil && img.Formats.Thumbnail.URL != "":
		path = img.Formats.Thumbnail.URL
	default:
		return ""
	}

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + path
}

func firstString(vals ...*string) string {
	for _, v := range vals {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
