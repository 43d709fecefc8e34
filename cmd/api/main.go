package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/essia-shop/internal/api"
	"github.com/example/essia-shop/internal/api/middleware"
	"github.com/example/essia-shop/internal/auth"
	"github.com/example/essia-shop/internal/config"
	"github.com/example/essia-shop/internal/domain/account"
	"github.com/example/essia-shop/internal/domain/cart"
	"github.com/example/essia-shop/internal/domain/order"
	"github.com/example/essia-shop/internal/infrastructure/kafka"
	"github.com/example/essia-shop/internal/infrastructure/store"
	"github.com/example/essia-shop/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		slog.Error("api stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	logger.Info("starting Essia API",
		slog.String("env", cfg.Env),
		slog.String("port", cfg.Port),
		slog.Any("allowed_origins", cfg.AllowedOrigins),
		slog.Bool("kafka", cfg.KafkaEnabled()),
	)

	db, err := store.ConnectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info("database ready")

	var publisher order.Publisher
	if cfg.KafkaEnabled() {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer producer.Close()
		publisher = producer
		logger.Info("publishing order events", slog.Any("brokers", cfg.KafkaBrokers), slog.String("topic", cfg.KafkaTopic))
	}

	accountStore := store.NewPostgresAccountStore(db)
	cartStore := store.NewPostgresCartStore(db)
	orderStore := store.NewPostgresOrderStore(db)

	accountSvc := account.NewService(accountStore)
	cartSvc := cart.NewService(cartStore, logger)
	orderSvc := order.NewService(cartStore, orderStore, publisher, logger)

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	authn := middleware.NewAuthenticator(jwtService, accountSvc, logging.Component(logger, "auth"))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := api.NewMetrics(reg)

	router := api.NewRouter(api.RouterConfig{
		AuthHandlers:   api.NewAuthHandlers(accountSvc, jwtService, authn, api.NewCookiePolicy(cfg.IsProduction()), logger),
		CartHandlers:   api.NewCartHandlers(cartSvc, metrics, logger),
		OrderHandlers:  api.NewOrderHandlers(orderSvc, metrics, logger),
		Authenticator:  authn,
		Metrics:        metrics,
		Gatherer:       reg,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logging.Component(logger, "http"),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
