package app

import (
	"os"
	"strings"
	"time"
)

// Config описывает настройки запуска сервиса заказов.
type Config struct {
	HTTPAddr                   string
	PostgresDSN                string
	KafkaBrokers               []string
	OutboxPollInterval         time.Duration
	IdempotencyCleanupInterval time.Duration
}

// DefaultConfig возвращает базовые значения конфигурации.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:                   ":8080",
		OutboxPollInterval:         time.Second,
		IdempotencyCleanupInterval: 10 * time.Minute,
	}
}

// LoadConfig читает конфигурацию из переменных окружения поверх значений
// по умолчанию. Пустой ORDERS_POSTGRES_DSN означает in-memory хранилище.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("ORDERS_HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("ORDERS_POSTGRES_DSN")); v != "" {
		cfg.PostgresDSN = v
	}
	if v := strings.TrimSpace(os.Getenv("ORDERS_KAFKA_BROKERS")); v != "" {
		cfg.KafkaBrokers = splitCSV(v)
	}
	if v := strings.TrimSpace(os.Getenv("ORDERS_OUTBOX_POLL_INTERVAL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.OutboxPollInterval = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("ORDERS_IDEMPOTENCY_CLEANUP_INTERVAL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.IdempotencyCleanupInterval = d
		}
	}

	return cfg
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
