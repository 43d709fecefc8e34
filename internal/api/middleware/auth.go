package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/essia-shop/internal/auth"
	"github.com/example/essia-shop/internal/domain/account"
	"github.com/example/essia-shop/internal/model"
)

// TokenCookieName is the cookie carrying the session token
const TokenCookieName = "token"

var (
	ErrNoToken        = errors.New("no token")
	ErrAccountMissing = errors.New("account no longer exists")
)

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// ExtractToken extracts the session token from cookie or Authorization header
func ExtractToken(r *http.Request) string {
	// Try cookie first (for browser)
	if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	// Fall back to Authorization header (for API clients)
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

type contextKey string

const (
	AccountContextKey contextKey = "account"
)

// AccountResolver looks up the account named by a token
type AccountResolver interface {
	Get(ctx context.Context, id int64) (*model.Account, error)
}

// Authenticator turns a request's token into a live account
type Authenticator struct {
	jwtService *auth.JWTService
	accounts   AccountResolver
	logger     *slog.Logger
}

// NewAuthenticator creates a new Authenticator
func NewAuthenticator(jwtService *auth.JWTService, accounts AccountResolver, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{jwtService: jwtService, accounts: accounts, logger: logger}
}

// Resolve returns ErrNoToken, auth.ErrInvalidToken, auth.ErrExpiredToken,
// ErrAccountMissing, or a store error.
func (a *Authenticator) Resolve(r *http.Request) (*model.Account, error) {
	tokenString := ExtractToken(r)
	if tokenString == "" {
		return nil, ErrNoToken
	}

	claims, err := a.jwtService.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	acct, err := a.accounts.Get(r.Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return nil, ErrAccountMissing
		}
		return nil, err
	}
	return acct, nil
}

// Middleware rejects requests without a valid token for an existing account
// and stores the account in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acct, err := a.Resolve(r)
		switch {
		case err == nil:
			next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), acct)))
		case errors.Is(err, ErrNoToken):
			respondError(w, "Not authorized, no token", http.StatusUnauthorized)
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
			respondError(w, "Not authorized, token failed", http.StatusUnauthorized)
		case errors.Is(err, ErrAccountMissing):
			respondError(w, "Not authorized, user not found", http.StatusUnauthorized)
		default:
			a.logger.ErrorContext(r.Context(), "account lookup failed", slog.Any("error", err))
			respondError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

// WithAccount stores the authenticated account in ctx
func WithAccount(ctx context.Context, acct *model.Account) context.Context {
	return context.WithValue(ctx, AccountContextKey, acct)
}

// AccountFromContext retrieves the authenticated account
func AccountFromContext(ctx context.Context) (*model.Account, bool) {
	acct, ok := ctx.Value(AccountContextKey).(*model.Account)
	return acct, ok && acct != nil
}
