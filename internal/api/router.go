package api

import (
	"log/slog"
	"net/http"

	"github.com/example/essia-shop/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterConfig wires handlers and middleware into the HTTP router
type RouterConfig struct {
	AuthHandlers   *AuthHandlers
	CartHandlers   *CartHandlers
	OrderHandlers  *OrderHandlers
	Authenticator  *middleware.Authenticator
	Metrics        *Metrics
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter builds the API router
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(cfg.Metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", Health)
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", MetricsHandler(cfg.Gatherer))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/signup", cfg.AuthHandlers.Signup)
			r.Post("/login", cfg.AuthHandlers.Login)
			r.Get("/me", cfg.AuthHandlers.Me)
			r.Post("/logout", cfg.AuthHandlers.Logout)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(cfg.Authenticator.Middleware)
			r.Get("/", cfg.CartHandlers.List)
			r.Post("/", cfg.CartHandlers.Add)
			r.Put("/{id}", cfg.CartHandlers.UpdateQuantity)
			r.Delete("/{id}", cfg.CartHandlers.Remove)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(cfg.Authenticator.Middleware)
			r.Post("/", cfg.OrderHandlers.PlaceOrder)
		})
	})

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	return r
}
