package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/essia-shop/internal/config"
	"github.com/example/essia-shop/internal/email"
	"github.com/example/essia-shop/internal/infrastructure/kafka"
	"github.com/example/essia-shop/internal/logging"
	"github.com/example/essia-shop/internal/notification"
)

const consumerGroup = "essia-email-notifier"

func main() {
	if err := run(); err != nil {
		slog.Error("notifier stopped", slog.Any("error", err))
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
	if !cfg.KafkaEnabled() {
		return errors.New("KAFKA_BROKERS is required for the notifier")
	}

	logger.Info("starting Essia email notifier",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group", consumerGroup),
		slog.String("smtp", cfg.SMTPHost+":"+cfg.SMTPPort),
	)

	mailer := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	handler := notification.NewHandler(mailer, logger)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, consumerGroup, logger)
	defer consumer.Close()

	if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("notifier stopped")
	return nil
}
