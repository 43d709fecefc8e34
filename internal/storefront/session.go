package storefront

import (
	"context"
	"log/slog"
	"sync"

	"github.com/example/essia-shop/internal/model"
)

// AuthAPI is the part of the API the session needs
type AuthAPI interface {
	Whoami(ctx context.Context) (*model.PublicAccount, error)
	Login(ctx context.Context, email, password string) (*model.PublicAccount, error)
	Register(ctx context.Context, name, email, password string) (*model.PublicAccount, error)
	Logout(ctx context.Context) error
}

// Session tracks who is signed in. The server is the only source of truth:
// every change of identity is confirmed by a whoami round trip.
type Session struct {
	api    AuthAPI
	logger *slog.Logger

	mu        sync.RWMutex
	user      *model.PublicAccount
	loading   bool
	listeners []func(*model.PublicAccount)

	start sync.Once
	ready chan struct{}
}

// NewSession creates a session that stays loading until Start has run the
// initial whoami. Register OnChange listeners before calling Start.
func NewSession(api AuthAPI, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		api:     api,
		logger:  logger.With(slog.String("component", "session")),
		loading: true,
		ready:   make(chan struct{}),
	}
}

// Start runs the initial whoami in the background. Later calls are no-ops.
func (s *Session) Start(ctx context.Context) {
	s.start.Do(func() {
		go func() {
			defer close(s.ready)
			s.RefetchUser(ctx)
		}()
	})
}

// Wait blocks until the initial whoami has finished
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// User returns the signed-in account, or nil
func (s *Session) User() *model.PublicAccount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsLoading reports whether the initial whoami is still pending
func (s *Session) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// IsAuthenticated is false while loading
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.loading && s.user != nil
}

// OnChange registers fn to run after every whoami with the resulting user
func (s *Session) OnChange(fn func(*model.PublicAccount)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// RefetchUser asks the server who is signed in. Failures leave the session
// anonymous. The previous user stays visible until the answer arrives.
func (s *Session) RefetchUser(ctx context.Context) *model.PublicAccount {
	user, err := s.api.Whoami(ctx)
	if err != nil {
		s.logger.DebugContext(ctx, "whoami failed", slog.Any("error", err))
		user = nil
	}

	s.mu.Lock()
	s.user = user
	s.loading = false
	listeners := append([]func(*model.PublicAccount){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(user)
	}
	return user
}

// Login signs in and then refetches the user
func (s *Session) Login(ctx context.Context, email, password string) error {
	if _, err := s.api.Login(ctx, email, password); err != nil {
		return err
	}
	s.RefetchUser(ctx)
	return nil
}

// Register creates an account and then refetches the user
func (s *Session) Register(ctx context.Context, name, email, password string) error {
	if _, err := s.api.Register(ctx, name, email, password); err != nil {
		return err
	}
	s.RefetchUser(ctx)
	return nil
}

// Logout signs out and then refetches the user, even when the logout call
// itself failed.
func (s *Session) Logout(ctx context.Context) error {
	err := s.api.Logout(ctx)
	s.RefetchUser(ctx)
	return err
}
