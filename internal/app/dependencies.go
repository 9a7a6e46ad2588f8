package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/fernandokenjii/desafio-database-relations/internal/domain"
	"github.com/fernandokenjii/desafio-database-relations/internal/messaging/kafka"
	"github.com/fernandokenjii/desafio-database-relations/internal/storage/memory"
	"github.com/fernandokenjii/desafio-database-relations/internal/storage/postgres"
)

// Dependencies содержит хранилища и внешние клиенты приложения.
type Dependencies struct {
	Store         *postgres.Store
	Customers     domain.CustomerRepository
	Products      domain.ProductRepository
	Inventory     domain.InventoryAdjuster
	Orders        domain.OrderRepository
	OutboxRepo    domain.OutboxRepository
	IdemRepo      domain.IdempotencyRepository
	KafkaProducer *kafka.Producer
	Logger        *log.Entry
}

// NewDependencies собирает зависимости по конфигурации: при заданном DSN
// используется PostgreSQL, иначе in-memory хранилища; Kafka опционален.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{Logger: logger}

	if cfg.PostgresDSN != "" {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}

		products := postgres.NewProductRepository(store)
		deps.Store = store
		deps.Customers = postgres.NewCustomerRepository(store)
		deps.Products = products
		deps.Inventory = products
		deps.Orders = postgres.NewOrderRepository(store)
		deps.OutboxRepo = postgres.NewOutboxRepository(store)
		deps.IdemRepo = postgres.NewIdempotencyRepository(store)
		logger.Info("using postgres storage")
	} else {
		products := memory.NewProductRepository()
		deps.Customers = memory.NewCustomerRepository()
		deps.Products = products
		deps.Inventory = products
		deps.Orders = memory.NewOrderRepository()
		deps.OutboxRepo = memory.NewOutboxRepository()
		deps.IdemRepo = memory.NewIdempotencyRepository()
		logger.Info("using in-memory storage")
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			deps.KafkaProducer = producer
			logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")
		}
	}

	return deps, nil
}

// Close освобождает внешние ресурсы.
func (d *Dependencies) Close() {
	if d == nil {
		return
	}
	if d.KafkaProducer != nil {
		if err := d.KafkaProducer.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close kafka producer")
		}
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}
