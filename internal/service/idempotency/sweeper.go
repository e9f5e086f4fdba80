// Package idempotency содержит общую логику Idempotency-Key: хэш запроса
// и фоновую очистку просроченных ключей.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
)

const (
	defaultSweepInterval  = 10 * time.Minute
	defaultSweepBatchSize = 500
)

var (
	sweepRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_idempotency_sweep_runs_total",
		Help: "Total number of idempotency sweep runs grouped by result.",
	}, []string{"result"})
	sweepDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_idempotency_sweep_deleted_total",
		Help: "Total number of expired idempotency keys removed.",
	})
)

// SweeperOption настраивает Sweeper.
type SweeperOption func(*Sweeper)

// WithLogger задает logger для воркера.
func WithLogger(logger *log.Entry) SweeperOption {
	return func(s *Sweeper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithInterval задает интервал между проходами.
func WithInterval(interval time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithBatchSize задает размер одной порции удаления.
func WithBatchSize(batchSize int) SweeperOption {
	return func(s *Sweeper) {
		if batchSize > 0 {
			s.batchSize = batchSize
		}
	}
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) SweeperOption {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// Sweeper периодически удаляет просроченные ключи идемпотентности.
type Sweeper struct {
	repo      domain.IdempotencyRepository
	logger    *log.Entry
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

// NewSweeper создает воркер очистки поверх repo.
func NewSweeper(repo domain.IdempotencyRepository, options ...SweeperOption) *Sweeper {
	s := &Sweeper{
		repo:      repo,
		logger:    log.WithField("component", "idempotency-sweeper"),
		interval:  defaultSweepInterval,
		batchSize: defaultSweepBatchSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Run выполняет проход сразу и затем раз в interval до отмены ctx.
func (s *Sweeper) Run(ctx context.Context) {
	if s.repo == nil {
		s.logger.Warn("idempotency sweeper is disabled: repo is nil")
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	deleted, err := s.Sweep(ctx, s.now())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		sweepRunsTotal.WithLabelValues("error").Inc()
		s.logger.WithError(err).Warn("idempotency sweep failed")
		return
	}

	sweepRunsTotal.WithLabelValues("ok").Inc()
	if deleted > 0 {
		s.logger.WithField("deleted", deleted).Info("expired idempotency keys removed")
	}
}

// Sweep удаляет все ключи, истекшие к before, порциями batchSize.
func (s *Sweeper) Sweep(ctx context.Context, before time.Time) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		deleted, err := s.repo.DeleteExpired(before, s.batchSize)
		if err != nil {
			return total, err
		}

		total += deleted
		sweepDeletedTotal.Add(float64(deleted))

		if deleted < s.batchSize {
			return total, nil
		}
	}
}
