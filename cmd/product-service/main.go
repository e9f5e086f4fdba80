package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shoplab/internal/app"
	"github.com/vladislavdragonenkov/shoplab/internal/version"
)

func main() {
	if err := app.SetupLogger(os.Getenv("LOG_LEVEL")); err != nil {
		log.WithError(err).Warn("invalid LOG_LEVEL, using info")
	}

	cfg, warnings := app.ReadProductConfig(os.LookupEnv)
	for _, w := range warnings {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":      cfg.HTTPAddr,
		"metrics_addr":   cfg.MetricsAddr,
		"storage_driver": cfg.StorageDriver,
		"events_driver":  cfg.EventsDriver,
		"version":        version.GetVersion(),
	}).Info("запускаем product-service")

	if err := app.RunProductService(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("product-service остановлен")
}
