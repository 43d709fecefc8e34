// Package storefront holds the client-side session, cart and product
// enrichment state that sits on top of the Essia API.
package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/essia-shop/internal/catalog"
	"github.com/example/essia-shop/internal/model"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const apiTimeout = 15 * time.Second

// APIError is a non-2xx answer from the API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// NetworkError means no response was received
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }

// AddCartItem is the product snapshot sent to the cart endpoint
type AddCartItem struct {
	DocumentID   string          `json:"documentId"`
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	ProductImage string          `json:"productImage"`
	Quantity     int             `json:"quantity,omitempty"`
}

// ItemFromProduct snapshots a catalog product for the cart
func ItemFromProduct(p catalog.Product, quantity int) AddCartItem {
	return AddCartItem{
		DocumentID:   p.DocumentID,
		ProductID:    p.ID,
		ProductName:  p.Name,
		ProductPrice: p.Price,
		ProductImage: p.Image,
		Quantity:     quantity,
	}
}

// CheckoutForm is the customer information sent when placing an order
type CheckoutForm struct {
	CustomerName    string `json:"customerName"`
	CustomerEmail   string `json:"customerEmail"`
	CustomerPhone   string `json:"customerPhone,omitempty"`
	ShippingAddress string `json:"shippingAddress"`
}

// APIClient talks to the Essia API. The session cookie is kept in the
// client's jar and the token from login is also sent as a bearer header.
type APIClient struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewAPIClient creates a client for the API at baseURL
func NewAPIClient(baseURL string, logger *slog.Logger) *APIClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIClient{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(apiTimeout).
			SetHeader("Accept", "application/json"),
		logger: logger.With(slog.String("component", "api-client")),
	}
}

type authResponse struct {
	model.PublicAccount
	Token string `json:"token"`
}

// Whoami returns the account behind the current credentials
func (c *APIClient) Whoami(ctx context.Context) (*model.PublicAccount, error) {
	var out model.PublicAccount
	if err := c.do(ctx, "GET", "/api/users/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a session
func (c *APIClient) Login(ctx context.Context, email, password string) (*model.PublicAccount, error) {
	var out authResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, "POST", "/api/users/login", body, &out); err != nil {
		return nil, err
	}
	c.http.SetAuthToken(out.Token)
	return &out.PublicAccount, nil
}

// Register creates an account and signs it in
func (c *APIClient) Register(ctx context.Context, name, email, password string) (*model.PublicAccount, error) {
	var out authResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, "POST", "/api/users/signup", body, &out); err != nil {
		return nil, err
	}
	c.http.SetAuthToken(out.Token)
	return &out.PublicAccount, nil
}

// Logout drops the session cookie and bearer token
func (c *APIClient) Logout(ctx context.Context) error {
	c.http.SetAuthToken("")
	return c.do(ctx, "POST", "/api/users/logout", nil, nil)
}

// ListCart returns the signed-in account's cart lines
func (c *APIClient) ListCart(ctx context.Context) ([]model.CartLine, error) {
	lines := make([]model.CartLine, 0)
	if err := c.do(ctx, "GET", "/api/cart", nil, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// AddToCart adds a product or bumps the quantity of its line
func (c *APIClient) AddToCart(ctx context.Context, item AddCartItem) (*model.CartLine, error) {
	var out model.CartLine
	if err := c.do(ctx, "POST", "/api/cart", item, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCartItem sets a line's quantity
func (c *APIClient) UpdateCartItem(ctx context.Context, lineID int64, quantity int) (*model.CartLine, error) {
	var out model.CartLine
	path := fmt.Sprintf("/api/cart/%d", lineID)
	if err := c.do(ctx, "PUT", path, map[string]int{"quantity": quantity}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveCartItem deletes a line
func (c *APIClient) RemoveCartItem(ctx context.Context, lineID int64) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/api/cart/%d", lineID), nil, nil)
}

// PlaceOrder records an order intent from the current cart
func (c *APIClient) PlaceOrder(ctx context.Context, form CheckoutForm) (*model.Order, error) {
	var out model.Order
	if err := c.do(ctx, "POST", "/api/orders", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body, result any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.DebugContext(ctx, "request failed", slog.String("method", method), slog.String("path", path), slog.Any("error", err))
		return &NetworkError{Err: err}
	}
	if resp.IsError() {
		return &APIError{Status: resp.StatusCode(), Message: bodyMessage(resp.Body())}
	}
	return nil
}

// bodyMessage picks message, then error, then detail from a JSON error body
func bodyMessage(raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}

	if msgs, ok := body["message"].([]any); ok && len(msgs) > 0 {
		if s, ok := msgs[0].(string); ok && s != "" {
			return s
		}
	}
	for _, key := range []string{"message", "error", "detail"} {
		if s, ok := body[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
