package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/essia-shop/internal/catalog"
	"github.com/example/essia-shop/internal/cli"
	"github.com/example/essia-shop/internal/config"
	"github.com/example/essia-shop/internal/logging"
	"github.com/example/essia-shop/internal/storefront"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
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
	if cfg.CatalogURL == "" {
		return errors.New("STRAPI_API_URL is required")
	}

	// Only warnings go to the terminal; a log file gets the configured level.
	level := "warn"
	if cfg.LogFile != "" {
		level = cfg.LogLevel
	}
	logger := logging.New(logging.Options{Level: level, Format: "text", File: cfg.LogFile})
	slog.SetDefault(logger)

	products := catalog.NewClient(cfg.CatalogURL, logger)
	client := storefront.NewAPIClient(cfg.APIURL, logger)

	session := storefront.NewSession(client, logger)
	cart := storefront.NewCart(client, session, logger)
	session.OnChange(cart.HandleIdentityChange)
	session.Start(ctx)

	app := cli.NewApp(session, cart, storefront.NewEnricher(products, logger), products, os.Stdin, os.Stdout)
	return app.Run(ctx)
}
