package app

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"

	healthcheck "github.com/fernandokenjii/desafio-database-relations/internal/health"
	"github.com/fernandokenjii/desafio-database-relations/internal/httpx"
	"github.com/fernandokenjii/desafio-database-relations/internal/messaging/kafka"
	"github.com/fernandokenjii/desafio-database-relations/internal/service/idempotency"
	"github.com/fernandokenjii/desafio-database-relations/internal/service/outbox"
	"github.com/fernandokenjii/desafio-database-relations/internal/service/placement"
	"github.com/fernandokenjii/desafio-database-relations/internal/version"
)

// Run собирает зависимости и запускает HTTP-сервер с фоновыми воркерами.
// Блокируется до отмены ctx или фатальной ошибки.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	var placementSvc placement.Service
	if deps.KafkaProducer != nil {
		placementSvc = placement.NewServiceWithKafka(
			deps.Customers,
			deps.Products,
			deps.Inventory,
			deps.Orders,
			deps.OutboxRepo,
			deps.KafkaProducer,
			logger.WithField("layer", "placement"),
		)
	} else {
		placementSvc = placement.NewService(
			deps.Customers,
			deps.Products,
			deps.Inventory,
			deps.Orders,
			deps.OutboxRepo,
			logger.WithField("layer", "placement"),
		)
	}

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if deps.Store != nil {
		store := deps.Store
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			return store.Ping(context.Background())
		}))
	}

	api := httpx.NewHandler(
		deps.Customers,
		deps.Products,
		deps.Orders,
		placementSvc,
		deps.IdemRepo,
		logger.WithField("layer", "http"),
	)
	router := httpx.NewRouter(api, healthHandler)
	server := httpx.NewServer(cfg.HTTPAddr, router, logger.WithField("layer", "http-server"))

	// Воркеры останавливаются вместе с сервером, в том числе когда сервер
	// упал с ошибкой, а внешний ctx ещё жив.
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	var wg sync.WaitGroup

	if deps.KafkaProducer != nil {
		publisher := kafka.NewOutboxPublisher(deps.KafkaProducer, kafka.TopicOrderEvents)
		dlqPublisher := kafka.NewOutboxPublisher(deps.KafkaProducer, kafka.TopicDeadLetterQueue)
		worker := outbox.NewWorker(
			deps.OutboxRepo,
			publisher,
			outbox.WithDLQPublisher(dlqPublisher),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithLogger(logger.WithField("layer", "outbox-worker")),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Run(workerCtx)
		}()
	} else {
		logger.Info("outbox worker is idle: no kafka brokers configured")
	}

	cleanup := idempotency.NewCleanupWorker(
		deps.IdemRepo,
		idempotency.WithInterval(cfg.IdempotencyCleanupInterval),
		idempotency.WithLogger(logger.WithField("layer", "idempotency-cleanup")),
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		cleanup.Run(workerCtx)
	}()

	err = server.Run(ctx)
	stopWorkers()
	wg.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return ctx.Err()
}
