package memory

import (
	"github.com/vladislavdragonenkov/shoplab/internal/domain"
	"github.com/vladislavdragonenkov/shoplab/internal/storage/collection"
)

// NewOrderRepository возвращает in-memory репозиторий заказов для локальной разработки и тестов.
func NewOrderRepository() domain.OrderRepository {
	return newTable(collection.Orders, domain.ErrNoSuchOrder, nil)
}

var _ domain.OrderRepository = (*table[domain.Order])(nil)
