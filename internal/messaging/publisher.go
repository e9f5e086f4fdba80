// Package messaging содержит общие обёртки над издателями событий.
package messaging

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
	"github.com/vladislavdragonenkov/shoplab/internal/metrics"
)

// Noop — издатель для EVENTS_DRIVER=none.
type Noop struct{}

func (Noop) Publish(context.Context, domain.ChangeEvent) error { return nil }

// Instrumented считает публикации в метриках и логирует ошибки.
type Instrumented struct {
	next    domain.EventPublisher
	metrics *metrics.EventMetrics
	logger  *log.Entry
}

// NewInstrumented оборачивает next.
func NewInstrumented(next domain.EventPublisher, m *metrics.EventMetrics, logger *log.Entry) *Instrumented {
	if logger == nil {
		logger = log.WithField("component", "events")
	}
	return &Instrumented{next: next, metrics: m, logger: logger}
}

func (p *Instrumented) Publish(ctx context.Context, event domain.ChangeEvent) error {
	err := p.next.Publish(ctx, event)
	p.metrics.RecordPublish(string(event.Type), err)
	if err != nil {
		p.logger.WithError(err).WithFields(log.Fields{
			"event_type": event.Type,
			"entity_id":  event.EntityID,
		}).Warn("change event not published")
	}
	return err
}

var (
	_ domain.EventPublisher = Noop{}
	_ domain.EventPublisher = (*Instrumented)(nil)
)
