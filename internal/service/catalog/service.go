// Package catalog — прикладной слой product-service.
package catalog

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
)

// ServiceName — имя сервиса в ответах /health и событиях.
const ServiceName = "product-service"

// Service управляет товарами. Мьютекс сериализует операции
// чтение-изменение-запись над хранилищем.
type Service struct {
	mu     sync.Mutex
	repo   domain.ProductRepository
	events domain.EventPublisher
	logger *log.Entry
}

// Option настраивает Service.
type Option func(*Service)

// WithEvents включает публикацию событий об изменениях.
func WithEvents(p domain.EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
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

// NewService создаёт сервис поверх repo.
func NewService(repo domain.ProductRepository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: log.WithField("component", "catalog"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List возвращает все товары в порядке ID.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

// Get возвращает товар или ошибку вида domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (domain.Product, error) {
	return s.repo.Get(ctx, id)
}

// Create создаёт товар; без name возвращает domain.ErrInvalidProductData.
func (s *Service) Create(ctx context.Context, fields domain.ProductFields) (domain.Product, error) {
	product, err := domain.NewProduct(fields)
	if err != nil {
		return domain.Product{}, err
	}

	s.mu.Lock()
	created, err := s.repo.Create(ctx, product)
	s.mu.Unlock()
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.WithField("product_id", created.ID).Info("product created")
	s.publish(ctx, domain.EventProductCreated, created.ID, created)
	return created, nil
}

// Update накладывает переданные поля на существующий товар.
func (s *Service) Update(ctx context.Context, id int64, fields domain.ProductFields) (domain.Product, error) {
	s.mu.Lock()
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		s.mu.Unlock()
		return domain.Product{}, err
	}
	updated := current.Merge(fields)
	err = s.repo.Save(ctx, updated)
	s.mu.Unlock()
	if err != nil {
		return domain.Product{}, err
	}

	s.publish(ctx, domain.EventProductUpdated, updated.ID, updated)
	return updated, nil
}

// Delete удаляет товар. Заказы, ссылающиеся на него, не трогаются.
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	err := s.repo.Delete(ctx, id)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.WithField("product_id", id).Info("product deleted")
	s.publish(ctx, domain.EventProductDeleted, id, nil)
	return nil
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
