package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vladislavdragonenkov/shoplab/internal/grpchealth"
	"github.com/vladislavdragonenkov/shoplab/internal/health"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// process собирает сервис целиком: API, служебный сервер и фоновые задачи.
type process struct {
	service string
	logger  *log.Entry

	handler http.Handler
	health  *health.Handler
	grpc    *grpchealth.Server

	background []func(ctx context.Context)
	closers    []func()
}

func (p *process) addCloser(fn func()) {
	p.closers = append(p.closers, fn)
}

// close освобождает ресурсы в обратном порядке.
func (p *process) close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
}

// serve запускает все серверы и блокируется до отмены ctx или ошибки одного из них.
func (p *process) serve(ctx context.Context, cfg CommonConfig, gatherer prometheus.Gatherer) error {
	defer p.close()

	apiLis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return err
	}

	var grpcLis net.Listener
	if p.grpc != nil && cfg.GRPCHealthAddr != "" {
		grpcLis, err = net.Listen("tcp", cfg.GRPCHealthAddr)
		if err != nil {
			_ = apiLis.Close()
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	apiSrv := &http.Server{Handler: p.handler, ReadHeaderTimeout: readHeaderTimeout}
	g.Go(func() error {
		p.logger.Infof("%s слушает %s", p.service, apiLis.Addr())
		if err := apiSrv.Serve(apiLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	metricsSrv := startMetricsServer(gctx, cfg.MetricsAddr, p.logger, p.health, gatherer)

	if grpcLis != nil {
		g.Go(func() error {
			return p.grpc.Serve(grpcLis)
		})
	}

	for _, task := range p.background {
		g.Go(func() error {
			task(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		p.logger.Info("получен сигнал остановки, останавливаем сервер")
		shutdownHTTP(apiSrv, p.logger)
		shutdownHTTP(metricsSrv, p.logger)
		if grpcLis != nil {
			p.grpc.Stop()
		}
		return nil
	})

	return g.Wait()
}

// startMetricsServer запускает служебный HTTP-сервер: /metrics, /healthz, /livez, /readyz.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *health.Handler, gatherer prometheus.Gatherer) *http.Server {
	if addr == "" {
		return nil
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", health.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: readHeaderTimeout}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
