package order

import (
	"time"

	"github.com/shopspring/decimal"
)

const AggregateType = "Order"

const (
	EventOrderIntentRecorded = "OrderIntentRecorded"
)

type OrderItem struct {
	DocumentID string          `json:"document_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

type OrderIntentRecorded struct {
	OrderID         string          `json:"order_id"`
	UserID          int64           `json:"user_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	ShippingAddress string          `json:"shipping_address"`
	Items           []OrderItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping"`
	Total           decimal.Decimal `json:"total"`
	RecordedAt      time.Time       `json:"recorded_at"`
}
