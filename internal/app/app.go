// Package app собирает процессы product-service и order-service из
// конфигурации: хранилище, события, HTTP API, служебные серверы.
package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shoplab/internal/cache/rediscache"
	"github.com/vladislavdragonenkov/shoplab/internal/domain"
	"github.com/vladislavdragonenkov/shoplab/internal/grpchealth"
	"github.com/vladislavdragonenkov/shoplab/internal/health"
	"github.com/vladislavdragonenkov/shoplab/internal/httpapi"
	"github.com/vladislavdragonenkov/shoplab/internal/metrics"
	"github.com/vladislavdragonenkov/shoplab/internal/service/catalog"
	"github.com/vladislavdragonenkov/shoplab/internal/service/idempotency"
	"github.com/vladislavdragonenkov/shoplab/internal/service/ordering"
	"github.com/vladislavdragonenkov/shoplab/internal/service/productclient"
	"github.com/vladislavdragonenkov/shoplab/internal/version"
)

// RunProductService запускает product-service и блокируется до отмены ctx.
func RunProductService(ctx context.Context, cfg ProductConfig) error {
	p, err := newProductProcess(ctx, cfg, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	return p.serve(ctx, cfg.CommonConfig, prometheus.DefaultGatherer)
}

// RunOrderService запускает order-service и блокируется до отмены ctx.
func RunOrderService(ctx context.Context, cfg OrderConfig) error {
	p, err := newOrderProcess(ctx, cfg, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	return p.serve(ctx, cfg.CommonConfig, prometheus.DefaultGatherer)
}

func newProductProcess(ctx context.Context, cfg ProductConfig, registerer prometheus.Registerer) (*process, error) {
	logger := log.WithFields(log.Fields{"component": "app", "service": catalog.ServiceName})
	p := &process{service: catalog.ServiceName, logger: logger}

	store, err := initStorage(ctx, cfg.CommonConfig, productDrivers(), logger)
	if err != nil {
		return nil, err
	}
	p.addCloser(func() { closeStorage(store.Close, logger) })

	events, closeEvents := initEvents(cfg.CommonConfig, registerer, logger)
	p.addCloser(closeEvents)

	svc := catalog.NewService(store.Repo,
		catalog.WithEvents(events),
		catalog.WithLogger(log.WithField("component", "catalog")),
	)

	p.handler = httpapi.NewProductRouter(svc,
		httpapi.WithHTTPMetrics(metrics.NewHTTPMetricsWithRegisterer(registerer)),
		httpapi.WithIdempotency(httpapi.NewIdempotency(store.Idempotency, cfg.IdempotencyTTL, log.WithField("component", "idempotency"))),
		httpapi.WithLogger(log.WithField("component", "product-http")),
	)

	p.health = health.NewHandler(catalog.ServiceName, version.GetVersion())
	if store.Ping != nil {
		p.health.RegisterChecker("storage", health.NewSimpleChecker("storage", store.Ping))
	}

	p.background = append(p.background, newSweeper(cfg.CommonConfig, store.Idempotency).Run)

	if cfg.GRPCHealthAddr != "" {
		p.grpc = grpchealth.New(catalog.ServiceName, registerer, log.WithField("component", "grpc-health"))
	}

	return p, nil
}

func newOrderProcess(ctx context.Context, cfg OrderConfig, registerer prometheus.Registerer) (*process, error) {
	logger := log.WithFields(log.Fields{"component": "app", "service": ordering.ServiceName})
	p := &process{service: ordering.ServiceName, logger: logger}

	store, err := initStorage(ctx, cfg.CommonConfig, orderDrivers(), logger)
	if err != nil {
		return nil, err
	}
	p.addCloser(func() { closeStorage(store.Close, logger) })

	events, closeEvents := initEvents(cfg.CommonConfig, registerer, logger)
	p.addCloser(closeEvents)

	catalogMetrics := metrics.NewCatalogMetricsWithRegisterer(registerer)
	client := productclient.New(cfg.ProductServiceURL, cfg.ProductServiceTimeout,
		productclient.WithMetrics(catalogMetrics),
		productclient.WithLogger(log.WithField("component", "product-client")),
	)
	logger.WithFields(log.Fields{
		"product_service_url": client.BaseURL(),
		"timeout":             cfg.ProductServiceTimeout,
	}).Info("product-service client initialized")

	opts := []ordering.Option{
		ordering.WithEvents(events),
		ordering.WithMetrics(catalogMetrics),
		ordering.WithEnrichConcurrency(cfg.EnrichConcurrency),
		ordering.WithLogger(log.WithField("component", "ordering")),
	}
	p.health = health.NewHandler(ordering.ServiceName, version.GetVersion())

	if cache := initSnapshotCache(ctx, cfg, logger); cache != nil {
		opts = append(opts, ordering.WithSnapshotCache(cache))
		p.health.RegisterChecker("product-cache", health.NewDependencyChecker("product-cache", cache.Ping))
		p.addCloser(func() {
			if err := cache.Close(); err != nil {
				logger.WithError(err).Warn("failed to close redis client")
			}
		})
	}

	svc := ordering.NewService(store.Repo, client, opts...)

	p.handler = httpapi.NewOrderRouter(svc,
		httpapi.WithHTTPMetrics(metrics.NewHTTPMetricsWithRegisterer(registerer)),
		httpapi.WithIdempotency(httpapi.NewIdempotency(store.Idempotency, cfg.IdempotencyTTL, log.WithField("component", "idempotency"))),
		httpapi.WithLogger(log.WithField("component", "order-http")),
	)

	if store.Ping != nil {
		p.health.RegisterChecker("storage", health.NewSimpleChecker("storage", store.Ping))
	}
	p.health.RegisterChecker(catalog.ServiceName, health.NewDependencyChecker(catalog.ServiceName, client.Health))

	proberOpts := []ordering.ProberOption{
		ordering.WithProbeInterval(cfg.ProductProbeInterval),
		ordering.WithProbeMetrics(catalogMetrics),
		ordering.WithProbeLogger(log.WithField("component", "product-service-prober")),
	}
	if cfg.GRPCHealthAddr != "" {
		p.grpc = grpchealth.New(ordering.ServiceName, registerer, log.WithField("component", "grpc-health"))
		grpcServer := p.grpc
		proberOpts = append(proberOpts, ordering.WithProbeListener(func(up bool) {
			grpcServer.SetServing(catalog.ServiceName, up)
		}))
	}

	p.background = append(p.background,
		ordering.NewProber(client, proberOpts...).Run,
		newSweeper(cfg.CommonConfig, store.Idempotency).Run,
	)

	return p, nil
}

// initSnapshotCache подключает Redis для снимков товаров. Недоступный Redis
// не мешает старту: обогащение идёт напрямую в product-service.
func initSnapshotCache(ctx context.Context, cfg OrderConfig, logger *log.Entry) *rediscache.Snapshots {
	if cfg.ProductCacheRedisAddr == "" {
		return nil
	}
	cache, err := rediscache.New(ctx, cfg.ProductCacheRedisAddr, cfg.ProductCacheTTL)
	if err != nil {
		logger.WithError(err).Warn("product cache disabled, continuing without redis")
		return nil
	}
	logger.WithFields(log.Fields{
		"redis_addr": cfg.ProductCacheRedisAddr,
		"ttl":        cfg.ProductCacheTTL,
	}).Info("product snapshot cache initialized")
	return cache
}

func newSweeper(cfg CommonConfig, repo domain.IdempotencyRepository) *idempotency.Sweeper {
	return idempotency.NewSweeper(repo,
		idempotency.WithInterval(cfg.IdempotencyCleanupInterval),
		idempotency.WithBatchSize(cfg.IdempotencyCleanupBatchSize),
		idempotency.WithLogger(log.WithField("component", "idempotency-sweeper")),
	)
}

func closeStorage(closeFn func() error, logger *log.Entry) {
	if err := closeFn(); err != nil {
		logger.WithError(err).Warn("failed to close storage")
	}
}
