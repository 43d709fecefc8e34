package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/essia-shop/internal/auth"
	"github.com/example/essia-shop/internal/domain/account"
	"github.com/example/essia-shop/internal/infrastructure/store/mocks"
	"github.com/example/essia-shop/internal/logging"
	"github.com/example/essia-shop/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key", time.Hour)
}

type testEnv struct {
	jwt      *auth.JWTService
	accounts *mocks.MockAccountStore
	authn    *Authenticator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	jwtService := newTestJWTService()
	accounts := mocks.NewMockAccountStore()
	return &testEnv{
		jwt:      jwtService,
		accounts: accounts,
		authn:    NewAuthenticator(jwtService, account.NewService(accounts), logging.Discard()),
	}
}

func (e *testEnv) createAccount(t *testing.T, email string) (*model.Account, string) {
	t.Helper()
	acct, err := e.accounts.CreateAccount(context.Background(), "Test", email, "hash")
	require.NoError(t, err)
	token, _, err := e.jwt.GenerateToken(acct.ID, acct.Email)
	require.NoError(t, err)
	return acct, token
}

func capturingHandler(captured **model.Account) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if acct, ok := AccountFromContext(r.Context()); ok {
			*captured = acct
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_ValidToken_Header(t *testing.T) {
	env := newTestEnv(t)
	acct, token := env.createAccount(t, "header@example.com")

	var captured *model.Account
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	env.authn.Middleware(capturingHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, acct.ID, captured.ID)
	assert.Equal(t, "header@example.com", captured.Email)
}

func TestMiddleware_ValidToken_Cookie(t *testing.T) {
	env := newTestEnv(t)
	acct, token := env.createAccount(t, "cookie@example.com")

	var captured *model.Account
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: token})
	rec := httptest.NewRecorder()

	env.authn.Middleware(capturingHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, acct.ID, captured.ID)
}

func TestMiddleware_CookieTakesPrecedence(t *testing.T) {
	env := newTestEnv(t)
	cookieAcct, cookieToken := env.createAccount(t, "cookie@example.com")
	_, headerToken := env.createAccount(t, "header@example.com")

	var captured *model.Account
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: cookieToken})
	req.Header.Set("Authorization", "Bearer "+headerToken)
	rec := httptest.NewRecorder()

	env.authn.Middleware(capturingHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, cookieAcct.ID, captured.ID)
}

func TestMiddleware_Rejections(t *testing.T) {
	env := newTestEnv(t)
	deleted, deletedToken := env.createAccount(t, "gone@example.com")
	env.accounts.Delete(deleted.ID)

	expired, _, err := auth.NewJWTService("test-secret-key", -time.Minute).GenerateToken(1, "x@example.com")
	require.NoError(t, err)
	foreign, _, err := auth.NewJWTService("other-secret", time.Hour).GenerateToken(1, "x@example.com")
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		wantMessage string
	}{
		{"no token", "", "no token"},
		{"garbage token", "Bearer invalid-token", "token failed"},
		{"expired token", "Bearer " + expired, "token failed"},
		{"wrong signature", "Bearer " + foreign, "token failed"},
		{"account deleted", "Bearer " + deletedToken, "user not found"},
		{"basic auth ignored", "Basic dXNlcjpwYXNz", "no token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			env.authn.Middleware(handler).ServeHTTP(rec, req)

			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.wantMessage)
		})
	}
}

func TestMiddleware_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createAccount(t, "ada@example.com")
	env.accounts.Err = errors.New("db down")

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	env.authn.Middleware(http.NotFoundHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

// ============================================
// Resolve Tests
// ============================================

func TestResolve_Errors(t *testing.T) {
	env := newTestEnv(t)
	deleted, deletedToken := env.createAccount(t, "gone@example.com")
	env.accounts.Delete(deleted.ID)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := env.authn.Resolve(req)
	assert.ErrorIs(t, err, ErrNoToken)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "nope"})
	_, err = env.authn.Resolve(req)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: deletedToken})
	_, err = env.authn.Resolve(req)
	assert.ErrorIs(t, err, ErrAccountMissing)
}

// ============================================
// Helper Functions Tests
// ============================================

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{"none", "", "", ""},
		{"cookie", "c", "", "c"},
		{"bearer", "", "Bearer h", "h"},
		{"both prefers cookie", "c", "Bearer h", "c"},
		{"empty cookie falls back", "", "Bearer h", "h"},
		{"lowercase scheme ignored", "", "bearer h", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, ExtractToken(req))
		})
	}
}

func TestAccountFromContext(t *testing.T) {
	acct := &model.Account{ID: 3, Email: "ada@example.com"}

	got, ok := AccountFromContext(WithAccount(context.Background(), acct))
	assert.True(t, ok)
	assert.Equal(t, acct, got)

	got, ok = AccountFromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
}
