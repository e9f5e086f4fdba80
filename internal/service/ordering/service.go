// Package ordering — прикладной слой order-service: проверка позиций
// через product-service, хранение заказов и обогащение при чтении.
package ordering

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
	"github.com/vladislavdragonenkov/shoplab/internal/metrics"
)

const (
	// ServiceName — имя сервиса в ответах /health и событиях.
	ServiceName = "order-service"

	// Состояние product-service в ответе /health.
	DependencyAvailable   = "available"
	DependencyUnavailable = "unavailable"

	defaultEnrichConcurrency = 4
)

// SnapshotCache — короткоживущий кэш последних снимков товаров. Обогащение
// читает его, только когда product-service недоступен; проверка позиций
// в кэш не смотрит никогда.
type SnapshotCache interface {
	Get(ctx context.Context, id int64) (domain.Product, bool, error)
	Set(ctx context.Context, product domain.Product) error
}

// Service управляет заказами.
type Service struct {
	mu      sync.Mutex
	repo    domain.OrderRepository
	catalog domain.ProductCatalog

	cache             SnapshotCache
	events            domain.EventPublisher
	metrics           *metrics.CatalogMetrics
	logger            *log.Entry
	enrichConcurrency int

	lookups singleflight.Group
}

// Option настраивает Service.
type Option func(*Service)

// WithSnapshotCache включает кэш снимков для обогащения.
func WithSnapshotCache(c SnapshotCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithEvents включает публикацию событий об изменениях.
func WithEvents(p domain.EventPublisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

// WithMetrics включает метрики обогащения.
func WithMetrics(m *metrics.CatalogMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger задаёт логгер сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEnrichConcurrency ограничивает число одновременных запросов при обогащении.
func WithEnrichConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.enrichConcurrency = n
		}
	}
}

// NewService создаёт сервис заказов.
func NewService(repo domain.OrderRepository, catalog domain.ProductCatalog, opts ...Option) *Service {
	s := &Service{
		repo:              repo,
		catalog:           catalog,
		logger:            log.WithField("component", "ordering"),
		enrichConcurrency: defaultEnrichConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List возвращает все заказы без снимков товаров.
func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.repo.List(ctx)
}

// Get возвращает заказ, обогащённый текущими снимками товаров. Недоступность
// product-service не делает чтение ошибочным: позиция остаётся без снимка.
func (s *Service) Get(ctx context.Context, id int64) (domain.Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	return s.enrich(ctx, order), nil
}

// Create проверяет позиции и сохраняет новый заказ со статусом pending.
func (s *Service) Create(ctx context.Context, fields domain.OrderFields) (domain.Order, error) {
	if !fields.ItemsSet {
		return domain.Order{}, domain.ErrInvalidOrderData
	}

	items, err := s.validateItems(ctx, fields.Items)
	if err != nil {
		return domain.Order{}, err
	}

	order := domain.Order{
		CustomerName: domain.DefaultCustomerName,
		Items:        items,
		Status:       domain.OrderStatusPending,
	}
	if fields.CustomerName != nil {
		order.CustomerName = *fields.CustomerName
	}

	s.mu.Lock()
	created, err := s.repo.Create(ctx, order)
	s.mu.Unlock()
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.WithFields(log.Fields{
		"order_id": created.ID,
		"items":    len(created.Items),
	}).Info("order created")
	s.publish(ctx, domain.EventOrderCreated, created.ID, created)
	return created, nil
}

// Update меняет переданные поля заказа. Новый список позиций проходит ту же
// проверку, что и при создании, и заменяет старый целиком.
func (s *Service) Update(ctx context.Context, id int64, fields domain.OrderFields) (domain.Order, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return domain.Order{}, err
	}

	var items []domain.OrderItem
	if fields.ItemsSet {
		validated, err := s.validateItems(ctx, fields.Items)
		if err != nil {
			return domain.Order{}, err
		}
		items = validated
	}

	s.mu.Lock()
	// Заказ перечитывается под мьютексом: проверка шла без блокировки.
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		s.mu.Unlock()
		return domain.Order{}, err
	}
	if fields.CustomerName != nil {
		order.CustomerName = *fields.CustomerName
	}
	if fields.ItemsSet {
		order.Items = items
	}
	if fields.Status != nil {
		order.Status = *fields.Status
	}
	err = s.repo.Save(ctx, order)
	s.mu.Unlock()
	if err != nil {
		return domain.Order{}, err
	}

	s.publish(ctx, domain.EventOrderUpdated, order.ID, order)
	return order, nil
}

// Delete удаляет заказ.
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	err := s.repo.Delete(ctx, id)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.WithField("order_id", id).Info("order deleted")
	s.publish(ctx, domain.EventOrderDeleted, id, nil)
	return nil
}

// ProductServiceStatus опрашивает product-service и возвращает
// DependencyAvailable или DependencyUnavailable.
func (s *Service) ProductServiceStatus(ctx context.Context) string {
	if err := s.catalog.Health(ctx); err != nil {
		return DependencyUnavailable
	}
	return DependencyAvailable
}

// validateItems проверяет позиции по порядку и останавливается на первой ошибке.
func (s *Service) validateItems(ctx context.Context, refs []domain.ItemRef) ([]domain.OrderItem, error) {
	items := make([]domain.OrderItem, 0, len(refs))
	for _, ref := range refs {
		if ref.ProductID == nil {
			return nil, domain.ErrProductIDRequired
		}
		id := *ref.ProductID

		product, err := s.catalog.GetProduct(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				return nil, err
			}
			s.logger.WithError(err).WithField("product_id", id).Error("error checking product availability")
			return nil, domain.ErrCatalogUnreachable
		}
		if !product.Available {
			return nil, domain.ProductUnavailableError(product.Name)
		}

		items = append(items, domain.OrderItem{ProductID: id})
	}
	return items, nil
}

func (s *Service) publish(ctx context.Context, eventType domain.EventType, id int64, payload any) {
	if s.events == nil {
		return
	}
	event := domain.NewChangeEvent(ServiceName, eventType, id, payload)
	if err := s.events.Publish(context.WithoutCancel(ctx), event); err != nil {
		// WARN и метрику пишет messaging.Instrumented, здесь только отладка.
		s.logger.WithError(err).WithFields(log.Fields{
			"event_type": eventType,
			"entity_id":  id,
		}).Debug("change event not published")
	}
}
