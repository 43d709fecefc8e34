package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/essia-shop/internal/model"
)

// PostgresOrderStore implements OrderStore on the orders and order_items tables
type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

// CreateOrder writes the order header and its items in one transaction.
func (s *PostgresOrderStore) CreateOrder(ctx context.Context, order *model.Order) error {
	return WithTx(ctx, s.db, func(tx DBTX) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO orders (id, user_id, customer_name, customer_email, customer_phone,
				shipping_address, subtotal, shipping, total, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING created_at`,
			order.ID, order.UserID, order.CustomerName, order.CustomerEmail, order.CustomerPhone,
			order.ShippingAddress, order.Subtotal, order.Shipping, order.Total, order.Status,
		).Scan(&order.CreatedAt)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		for _, item := range order.Items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (order_id, document_id, product_id, product_name,
					product_price, quantity, total_price)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				order.ID, item.DocumentID, item.ProductID, item.ProductName,
				item.ProductPrice, item.Quantity, item.TotalPrice,
			)
			if err != nil {
				return fmt.Errorf("db error: %w", err)
			}
		}
		return nil
	})
}
