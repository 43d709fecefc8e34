package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/essia-shop/internal/model"
)

const cartLineColumns = `id, user_id, user_email, document_id, product_id, product_name,
	product_price, quantity, total_price, product_image, created_at, updated_at`

// PostgresCartStore implements CartStore on the cart_items table
type PostgresCartStore struct {
	db DBTX
}

func NewPostgresCartStore(db DBTX) *PostgresCartStore {
	return &PostgresCartStore{db: db}
}

func (s *PostgresCartStore) ListCartLines(ctx context.Context, userID int64) ([]model.CartLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+cartLineColumns+`
		FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	lines := make([]model.CartLine, 0)
	for rows.Next() {
		line, err := scanCartLine(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		lines = append(lines, *line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return lines, nil
}

// UpsertCartLine relies on the (user_id, document_id) unique constraint so that
// concurrent adds of the same product converge on one row. An existing line
// keeps its original name, price and image snapshot. Totals are computed in
// SQL from the stored, rounded price.
func (s *PostgresCartStore) UpsertCartLine(ctx context.Context, line *model.CartLine) (*model.CartLine, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (user_id, user_email, document_id, product_id, product_name,
			product_price, quantity, total_price, product_image)
		VALUES ($1, $2, $3, $4, $5, $6::numeric(12,2), $7::integer, $6::numeric(12,2) * $7::integer, $8)
		ON CONFLICT (user_id, document_id) DO UPDATE
		SET quantity    = cart_items.quantity + EXCLUDED.quantity,
		    total_price = cart_items.product_price * (cart_items.quantity + EXCLUDED.quantity),
		    updated_at  = now()
		RETURNING `+cartLineColumns,
		line.UserID, line.UserEmail, line.DocumentID, line.ProductID, line.ProductName,
		line.ProductPrice, line.Quantity, line.ProductImage,
	)

	saved, err := scanCartLine(row)
	if err != nil {
		if isOutOfRange(err) {
			return nil, ErrOutOfRange
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return saved, nil
}

func (s *PostgresCartStore) UpdateCartLineQuantity(ctx context.Context, userID, lineID int64, quantity int) (*model.CartLine, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE cart_items
		SET quantity = $1::integer, total_price = product_price * $1::integer, updated_at = now()
		WHERE id = $2 AND user_id = $3
		RETURNING `+cartLineColumns,
		quantity, lineID, userID,
	)

	line, err := scanCartLine(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isOutOfRange(err) {
			return nil, ErrOutOfRange
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return line, nil
}

func (s *PostgresCartStore) DeleteCartLine(ctx context.Context, userID, lineID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, lineID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCartLine(row rowScanner) (*model.CartLine, error) {
	var line model.CartLine
	err := row.Scan(
		&line.ID, &line.UserID, &line.UserEmail, &line.DocumentID, &line.ProductID, &line.ProductName,
		&line.ProductPrice, &line.Quantity, &line.TotalPrice, &line.ProductImage, &line.CreatedAt, &line.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &line, nil
}
