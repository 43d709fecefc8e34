package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/essia-shop/internal/model"
)

// PostgresAccountStore implements AccountStore on the users table
type PostgresAccountStore struct {
	db DBTX
}

func NewPostgresAccountStore(db DBTX) *PostgresAccountStore {
	return &PostgresAccountStore{db: db}
}

func (s *PostgresAccountStore) CreateAccount(ctx context.Context, name, email, passwordHash string) (*model.Account, error) {
	acct := &model.Account{Name: name, Email: email, PasswordHash: passwordHash}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		name, email, passwordHash,
	).Scan(&acct.ID, &acct.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return acct, nil
}

func (s *PostgresAccountStore) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	return s.getAccount(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE lower(email) = lower($1)`, email)
}

func (s *PostgresAccountStore) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	return s.getAccount(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE id = $1`, id)
}

func (s *PostgresAccountStore) getAccount(ctx context.Context, query string, arg any) (*model.Account, error) {
	var acct model.Account
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&acct.ID, &acct.Name, &acct.Email, &acct.PasswordHash, &acct.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &acct, nil
}
