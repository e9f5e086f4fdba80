package ordering

import (
	"context"
	"errors"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
	"github.com/vladislavdragonenkov/shoplab/internal/metrics"
)

// enrich прикладывает снимок товара к каждой позиции. Каждый товар
// запрашивается один раз, запросы идут параллельно не больше
// enrichConcurrency штук.
func (s *Service) enrich(ctx context.Context, order domain.Order) domain.Order {
	order = order.Stripped()
	if len(order.Items) == 0 {
		return order
	}

	ids := make([]int64, 0, len(order.Items))
	seen := make(map[int64]bool, len(order.Items))
	for _, item := range order.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	var (
		mu        sync.Mutex
		snapshots = make(map[int64]domain.Product, len(ids))
		g         errgroup.Group
	)
	g.SetLimit(s.enrichConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			product, err := s.snapshot(ctx, id)
			if err != nil {
				s.logEnrichFailure(order.ID, id, err)
				return nil
			}
			mu.Lock()
			snapshots[id] = product
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for i := range order.Items {
		if product, ok := snapshots[order.Items[i].ProductID]; ok {
			details := product
			order.Items[i].ProductDetails = &details
		}
	}
	return order
}

// snapshot запрашивает текущее состояние товара у product-service.
// Одновременные запросы одного товара схлопываются в один, и этот общий
// запрос не отменяется вместе с контекстом отдельного читателя: его
// ограничивает только таймаут клиента. Читатель с отменённым контекстом
// просто перестаёт ждать.
func (s *Service) snapshot(ctx context.Context, id int64) (domain.Product, error) {
	ch := s.lookups.DoChan(strconv.FormatInt(id, 10), func() (any, error) {
		shared := context.WithoutCancel(ctx)
		product, err := s.catalog.GetProduct(shared, id)
		if err != nil {
			return domain.Product{}, err
		}
		if s.cache != nil {
			if err := s.cache.Set(shared, product); err != nil {
				s.logger.WithError(err).WithField("product_id", id).Debug("snapshot cache set failed")
			}
		}
		return product, nil
	})

	select {
	case <-ctx.Done():
		return domain.Product{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return s.lastKnownSnapshot(ctx, id, res.Err)
		}
		return res.Val.(domain.Product), nil
	}
}

// lastKnownSnapshot отдаёт последний снимок из кэша, только если
// product-service недоступен. Удалённый товар из кэша не отдаётся.
func (s *Service) lastKnownSnapshot(ctx context.Context, id int64, cause error) (domain.Product, error) {
	if s.cache == nil || !errors.Is(cause, domain.ErrServiceUnavailable) {
		return domain.Product{}, cause
	}

	product, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.WithError(err).WithField("product_id", id).Debug("snapshot cache get failed")
	}
	s.metrics.RecordCacheLookup(ok)
	if !ok {
		return domain.Product{}, cause
	}
	return product, nil
}

func (s *Service) logEnrichFailure(orderID, productID int64, err error) {
	reason := metrics.LookupUnreachable
	if errors.Is(err, domain.ErrProductNotFound) {
		reason = metrics.LookupNotFound
	}
	s.metrics.RecordEnrichmentFailure(reason)

	s.logger.WithError(err).WithFields(log.Fields{
		"order_id":   orderID,
		"product_id": productID,
	}).Warn("error fetching product details")
}
