package metrics

import "github.com/prometheus/client_golang/prometheus"

// EventMetrics — метрики публикации событий об изменениях.
type EventMetrics struct {
	published *prometheus.CounterVec
}

// NewEventMetrics регистрирует метрики в prometheus.DefaultRegisterer.
func NewEventMetrics() *EventMetrics {
	return NewEventMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewEventMetricsWithRegisterer регистрирует метрики в registerer.
func NewEventMetricsWithRegisterer(registerer prometheus.Registerer) *EventMetrics {
	registerer = orDefault(registerer)

	return &EventMetrics{
		published: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "shop_change_events_total",
			Help: "Change events handed to the broker by type and result",
		}, []string{"event_type", "result"}),
	}
}

// RecordPublish учитывает попытку публикации события.
func (m *EventMetrics) RecordPublish(eventType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.published.WithLabelValues(eventType, result).Inc()
}
