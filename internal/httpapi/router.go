package httpapi

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shoplab/internal/metrics"
	"github.com/vladislavdragonenkov/shoplab/internal/service/catalog"
	"github.com/vladislavdragonenkov/shoplab/internal/service/ordering"
)

type routerConfig struct {
	metrics     *metrics.HTTPMetrics
	idempotency *Idempotency
	logger      *log.Entry
}

// RouterOption настраивает роутер.
type RouterOption func(*routerConfig)

// WithHTTPMetrics включает метрики запросов.
func WithHTTPMetrics(m *metrics.HTTPMetrics) RouterOption {
	return func(c *routerConfig) {
		c.metrics = m
	}
}

// WithIdempotency включает Idempotency-Key на POST-маршрутах.
func WithIdempotency(m *Idempotency) RouterOption {
	return func(c *routerConfig) {
		c.idempotency = m
	}
}

// WithLogger задаёт логгер запросов.
func WithLogger(logger *log.Entry) RouterOption {
	return func(c *routerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newRouterConfig(component string, opts []RouterOption) routerConfig {
	cfg := routerConfig{logger: log.WithField("component", component)}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c routerConfig) wrap(service string, mux *http.ServeMux) http.Handler {
	var h http.Handler = mux
	h = WithMetrics(c.metrics, service, h)
	h = WithLogging(c.logger, h)
	h = WithRecovery(c.logger, h)
	return WithRequestID(h)
}

// NewProductRouter регистрирует маршруты product-service.
func NewProductRouter(svc ProductService, opts ...RouterOption) http.Handler {
	cfg := newRouterConfig("product-http", opts)
	h := &productHandlers{svc: svc, service: catalog.ServiceName, logger: cfg.logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", h.list)
	mux.Handle("POST /api/products", cfg.idempotency.Wrap(http.HandlerFunc(h.create)))
	mux.HandleFunc("GET /api/products/{id}", h.get)
	mux.HandleFunc("PUT /api/products/{id}", h.update)
	mux.HandleFunc("DELETE /api/products/{id}", h.delete)
	mux.HandleFunc("GET /health", h.health)
	return cfg.wrap(catalog.ServiceName, mux)
}

// NewOrderRouter регистрирует маршруты order-service.
func NewOrderRouter(svc OrderService, opts ...RouterOption) http.Handler {
	cfg := newRouterConfig("order-http", opts)
	h := &orderHandlers{
		svc:        svc,
		service:    ordering.ServiceName,
		dependency: catalog.ServiceName,
		logger:     cfg.logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/orders", h.list)
	mux.Handle("POST /api/orders", cfg.idempotency.Wrap(http.HandlerFunc(h.create)))
	mux.HandleFunc("GET /api/orders/{id}", h.get)
	mux.HandleFunc("PUT /api/orders/{id}", h.update)
	mux.HandleFunc("DELETE /api/orders/{id}", h.delete)
	mux.HandleFunc("GET /health", h.health)
	return cfg.wrap(ordering.ServiceName, mux)
}
