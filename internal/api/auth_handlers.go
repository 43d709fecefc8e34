package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/essia-shop/internal/api/middleware"
	"github.com/example/essia-shop/internal/auth"
	"github.com/example/essia-shop/internal/domain/account"
	"github.com/example/essia-shop/internal/model"
)

// CookiePolicy controls the attributes of the session cookie
type CookiePolicy struct {
	Secure   bool
	SameSite http.SameSite
}

// NewCookiePolicy returns cross-site cookies in production and lax
// same-site cookies everywhere else.
func NewCookiePolicy(production bool) CookiePolicy {
	if production {
		return CookiePolicy{Secure: true, SameSite: http.SameSiteNoneMode}
	}
	return CookiePolicy{Secure: false, SameSite: http.SameSiteLaxMode}
}

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	accounts      *account.Service
	jwtService    *auth.JWTService
	authenticator *middleware.Authenticator
	cookies       CookiePolicy
	logger        *slog.Logger
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(accounts *account.Service, jwtService *auth.JWTService, authenticator *middleware.Authenticator, cookies CookiePolicy, logger *slog.Logger) *AuthHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandlers{
		accounts:      accounts,
		jwtService:    jwtService,
		authenticator: authenticator,
		cookies:       cookies,
		logger:        logger,
	}
}

// SignupRequest represents the registration request body
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is the identity triple plus the token for bearer clients
type AuthResponse struct {
	model.PublicAccount
	Token string `json:"token,omitempty"`
}

// Signup handles account registration
func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		msg := "All fields are required."
		if failedTag(err) == "email" {
			msg = validationMessage(err)
		}
		respondJSONError(w, msg, http.StatusBadRequest)
		return
	}

	acct, err := h.accounts.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrMissingFields), errors.Is(err, auth.ErrEmptyPassword):
			respondJSONError(w, "All fields are required.", http.StatusBadRequest)
		case errors.Is(err, auth.ErrPasswordTooLong):
			respondJSONError(w, "Password must be at most 72 bytes.", http.StatusBadRequest)
		case errors.Is(err, account.ErrEmailTaken):
			respondJSONError(w, "User already exists.", http.StatusConflict)
		default:
			h.logger.ErrorContext(r.Context(), "signup failed", slog.Any("error", err))
			respondJSONError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	token, ok := h.issueCookie(w, r, acct)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "account registered", slog.Int64("user_id", acct.ID))
	respondJSON(w, http.StatusCreated, AuthResponse{PublicAccount: acct.Public(), Token: token})
}

// Login handles credential login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondJSONError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	acct, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			respondJSONError(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(r.Context(), "login failed", slog.Any("error", err))
		respondJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	token, ok := h.issueCookie(w, r, acct)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, AuthResponse{PublicAccount: acct.Public(), Token: token})
}

// Me returns the account named by the caller's token
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	acct, err := h.authenticator.Resolve(r)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, acct.Public())
	case errors.Is(err, middleware.ErrNoToken):
		respondJSONError(w, "No token", http.StatusUnauthorized)
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
		respondJSONError(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, middleware.ErrAccountMissing):
		respondJSONError(w, "User not found", http.StatusNotFound)
	default:
		h.logger.ErrorContext(r.Context(), "whoami failed", slog.Any("error", err))
		respondJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// Logout clears the session cookie. The server keeps no session state.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.cookie("", -1, time.Unix(0, 0)))
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *AuthHandlers) issueCookie(w http.ResponseWriter, r *http.Request, acct *model.Account) (string, bool) {
	token, expiresAt, err := h.jwtService.GenerateToken(acct.ID, acct.Email)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "token signing failed", slog.Any("error", err))
		respondJSONError(w, "Internal server error", http.StatusInternalServerError)
		return "", false
	}

	http.SetCookie(w, h.cookie(token, int(h.jwtService.TokenExpiry().Seconds()), expiresAt))
	return token, true
}

func (h *AuthHandlers) cookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: h.cookies.SameSite,
	}
}
