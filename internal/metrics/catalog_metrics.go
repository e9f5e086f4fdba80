package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты обращения к product-service.
const (
	LookupFound       = "found"
	LookupNotFound    = "not_found"
	LookupUnreachable = "unreachable"
)

// CatalogMetrics — метрики обращений order-service к product-service.
type CatalogMetrics struct {
	lookups          *prometheus.CounterVec
	lookupDuration   *prometheus.HistogramVec
	enrichFailures   *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	productServiceUp prometheus.Gauge
}

// NewCatalogMetrics регистрирует метрики в prometheus.DefaultRegisterer.
func NewCatalogMetrics() *CatalogMetrics {
	return NewCatalogMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCatalogMetricsWithRegisterer регистрирует метрики в registerer.
func NewCatalogMetricsWithRegisterer(registerer prometheus.Registerer) *CatalogMetrics {
	registerer = orDefault(registerer)

	return &CatalogMetrics{
		lookups: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "order_product_lookups_total",
			Help: "Product lookups against product-service by outcome",
		}, []string{"outcome"}),
		lookupDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "order_product_lookup_duration_seconds",
			Help:    "Duration of product lookups in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"outcome"}),
		enrichFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "order_enrichment_failures_total",
			Help: "Order items returned without product details",
		}, []string{"reason"}),
		cacheLookups: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "order_product_cache_lookups_total",
			Help: "Fallback product snapshot cache lookups (product-service unreachable) by result",
		}, []string{"result"}),
		productServiceUp: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "order_product_service_up",
			Help: "Whether product-service answered the last health probe (1) or not (0)",
		}),
	}
}

// ObserveLookup учитывает одно обращение GET /products/{id}.
func (m *CatalogMetrics) ObserveLookup(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(outcome).Inc()
	m.lookupDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// RecordEnrichmentFailure учитывает позицию, оставшуюся без снимка товара.
func (m *CatalogMetrics) RecordEnrichmentFailure(reason string) {
	if m == nil {
		return
	}
	m.enrichFailures.WithLabelValues(reason).Inc()
}

// RecordCacheLookup учитывает попадание (hit=true) или промах кэша снимков
// при недоступном product-service.
func (m *CatalogMetrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// SetProductServiceUp выставляет результат последней проверки product-service.
func (m *CatalogMetrics) SetProductServiceUp(up bool) {
	if m == nil {
		return
	}
	if up {
		m.productServiceUp.Set(1)
		return
	}
	m.productServiceUp.Set(0)
}
