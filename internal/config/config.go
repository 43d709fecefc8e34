// Package config loads process-wide settings once at startup.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingSecret      = errors.New("JWT_SECRET environment variable is required")
	ErrMissingDatabaseURL = errors.New("DATABASE_URL environment variable is required")
)

// Config holds everything the binaries read from the environment.
type Config struct {
	Env            string
	Port           string
	DatabaseURL    string
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string
	CatalogURL     string
	APIURL         string

	KafkaBrokers []string
	KafkaTopic   string

	SMTPHost string
	SMTPPort string
	SMTPFrom string

	LogLevel  string
	LogFormat string
	LogFile   string
}

// IsProduction reports whether cookies must be cross-site capable.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// KafkaEnabled reports whether order events should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.KafkaTopic != ""
}

// Load reads .env (if present) and the process environment.
func Load(envFiles ...string) (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "5000")
	v.SetDefault("TOKEN_TTL", "168h")
	v.SetDefault("KAFKA_TOPIC", "essia-orders")
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", "1025")
	v.SetDefault("SMTP_FROM", "orders@essia.shop")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("API_URL", "http://localhost:5000")

	ttl, err := time.ParseDuration(v.GetString("TOKEN_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}

	cfg := &Config{
		Env:         firstNonEmpty(v.GetString("APP_ENV"), v.GetString("NODE_ENV"), "development"),
		Port:        v.GetString("PORT"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		TokenTTL:    ttl,
		CatalogURL:  trimOrigin(firstNonEmpty(v.GetString("STRAPI_API_URL"), v.GetString("VITE_STRAPI_API_URL"))),
		APIURL:      trimOrigin(v.GetString("API_URL")),
		KafkaTopic:  v.GetString("KAFKA_TOPIC"),
		SMTPHost:    v.GetString("SMTP_HOST"),
		SMTPPort:    v.GetString("SMTP_PORT"),
		SMTPFrom:    v.GetString("SMTP_FROM"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFormat:   v.GetString("LOG_FORMAT"),
		LogFile:     v.GetString("LOG_FILE"),
	}

	for _, origin := range []string{
		firstNonEmpty(v.GetString("FRONTEND_LOCAL_URL"), v.GetString("VITE_FRONTEND_LOCAL_URL")),
		firstNonEmpty(v.GetString("FRONTEND_SERVER_URL"), v.GetString("VITE_FRONTEND_SERVER_URL")),
	} {
		if origin = trimOrigin(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if brokers := v.GetString("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg, nil
}

// ValidateServer checks the settings the API server cannot boot without.
func (c *Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return ErrMissingSecret
	}
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}

func trimOrigin(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "/")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
