package memory

import (
	"github.com/vladislavdragonenkov/shoplab/internal/domain"
	"github.com/vladislavdragonenkov/shoplab/internal/storage/collection"
)

// NewProductRepository возвращает in-memory репозиторий товаров, заполненный seed.
func NewProductRepository(seed ...domain.Product) domain.ProductRepository {
	return newTable(collection.Products, domain.ErrNoSuchProduct, seed)
}

var _ domain.ProductRepository = (*table[domain.Product])(nil)
