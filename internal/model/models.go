// Package model holds the records shared by the store, the HTTP API and the client.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Account is a registered shopper
type Account struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicAccount is the identity triple returned by the auth endpoints
type PublicAccount struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Public strips everything but the identity triple.
func (a *Account) Public() PublicAccount {
	return PublicAccount{ID: a.ID, Name: a.Name, Email: a.Email}
}

// CartLine is one product in a shopper's cart, with a snapshot of the
// product's name, price and image taken when it was first added.
type CartLine struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"userId"`
	UserEmail    string          `json:"userEmail"`
	DocumentID   string          `json:"documentId"`
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	Quantity     int             `json:"quantity"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	ProductImage string          `json:"productImage"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// RecomputeTotal sets TotalPrice to Quantity x ProductPrice.
func (l *CartLine) RecomputeTotal() {
	l.TotalPrice = l.ProductPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart line limits. They mirror the cart_items column types and checks.
const (
	MaxLineQuantity = 10000
	MoneyScale      = 2
)

// MaxLineAmount is the largest value a NUMERIC(12,2) price or total holds.
var MaxLineAmount = decimal.RequireFromString("9999999999.99")

// WithinLimits reports whether the line can be stored as is.
func (l *CartLine) WithinLimits() bool {
	total := l.ProductPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
	return l.Quantity >= 1 && l.Quantity <= MaxLineQuantity &&
		!l.ProductPrice.IsNegative() && l.ProductPrice.LessThanOrEqual(MaxLineAmount) &&
		total.LessThanOrEqual(MaxLineAmount)
}

// Order statuses
const (
	OrderStatusPending = "pending"
)

// Order is a recorded checkout intent. No payment is taken.
type Order struct {
	ID              string          `json:"id"`
	UserID          int64           `json:"userId"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerPhone   string          `json:"customerPhone,omitempty"`
	ShippingAddress string          `json:"shippingAddress"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping"`
	Total           decimal.Decimal `json:"total"`
	Status          string          `json:"status"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// OrderItem is a cart line frozen into an order
type OrderItem struct {
	DocumentID   string          `json:"documentId"`
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	Quantity     int             `json:"quantity"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
}
