package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/fernandokenjii/desafio-database-relations/internal/app"
	"github.com/fernandokenjii/desafio-database-relations/internal/version"
)

func main() {
	_ = godotenv.Load()

	setupLogger()

	cfg := app.LoadConfig()

	log.WithFields(log.Fields{
		"version":   version.GetVersion(),
		"http_addr": cfg.HTTPAddr,
	}).Info("starting order service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("service terminated")
	}

	log.Info("service stopped")
}

func setupLogger() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	log.SetLevel(log.InfoLevel)
	if level, err := log.ParseLevel(os.Getenv("ORDERS_LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}
}
