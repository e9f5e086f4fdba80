package ordering

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
	"github.com/vladislavdragonenkov/shoplab/internal/metrics"
)

const (
	defaultProbeInterval = 15 * time.Second
	defaultProbeTimeout  = 3 * time.Second
)

// ProberOption настраивает Prober.
type ProberOption func(*Prober)

// WithProbeInterval задаёт период проверки.
func WithProbeInterval(interval time.Duration) ProberOption {
	return func(p *Prober) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithProbeMetrics выставляет order_product_service_up.
func WithProbeMetrics(m *metrics.CatalogMetrics) ProberOption {
	return func(p *Prober) {
		p.metrics = m
	}
}

// WithProbeListener вызывает fn после каждой проверки.
func WithProbeListener(fn func(up bool)) ProberOption {
	return func(p *Prober) {
		if fn != nil {
			p.listeners = append(p.listeners, fn)
		}
	}
}

// WithProbeLogger задаёт логгер.
func WithProbeLogger(logger *log.Entry) ProberOption {
	return func(p *Prober) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Prober периодически проверяет product-service через /health.
type Prober struct {
	catalog   domain.ProductCatalog
	interval  time.Duration
	metrics   *metrics.CatalogMetrics
	listeners []func(up bool)
	logger    *log.Entry

	last *bool
}

// NewProber создаёт Prober для catalog.
func NewProber(catalog domain.ProductCatalog, opts ...ProberOption) *Prober {
	p := &Prober{
		catalog:  catalog,
		interval: defaultProbeInterval,
		logger:   log.WithField("component", "product-service-prober"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run проверяет сразу и затем раз в interval до отмены ctx.
func (p *Prober) Run(ctx context.Context) {
	p.Probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}

// Probe выполняет одну проверку и сообщает результат слушателям.
func (p *Prober) Probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, defaultProbeTimeout)
	defer cancel()

	err := p.catalog.Health(probeCtx)
	up := err == nil

	if p.last == nil || *p.last != up {
		entry := p.logger.WithField("up", up)
		if err != nil {
			entry = entry.WithError(err)
		}
		entry.Info("product-service availability changed")
	}
	p.last = &up

	p.metrics.SetProductServiceUp(up)
	for _, fn := range p.listeners {
		fn(up)
	}
	return up
}
