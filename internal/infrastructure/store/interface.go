package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/essia-shop/internal/model"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("record already exists")
	ErrOutOfRange = errors.New("value out of range")
)

// DBTX is satisfied by both *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AccountStore persists shopper accounts
type AccountStore interface {
	// CreateAccount returns ErrDuplicate when the email (case-insensitive) is taken.
	CreateAccount(ctx context.Context, name, email, passwordHash string) (*model.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*model.Account, error)
}

// CartStore persists cart lines. Every lookup is scoped to the owning account.
type CartStore interface {
	ListCartLines(ctx context.Context, userID int64) ([]model.CartLine, error)
	// UpsertCartLine inserts the line, or adds its quantity to the existing
	// line for the same (user, document) pair. Quantities or amounts the
	// columns cannot hold return ErrOutOfRange.
	UpsertCartLine(ctx context.Context, line *model.CartLine) (*model.CartLine, error)
	UpdateCartLineQuantity(ctx context.Context, userID, lineID int64, quantity int) (*model.CartLine, error)
	DeleteCartLine(ctx context.Context, userID, lineID int64) error
}

// OrderStore persists checkout intents
type OrderStore interface {
	CreateOrder(ctx context.Context, order *model.Order) error
}
