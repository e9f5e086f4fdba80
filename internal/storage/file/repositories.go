package file

import (
	"github.com/vladislavdragonenkov/shoplab/internal/domain"
	"github.com/vladislavdragonenkov/shoplab/internal/storage/collection"
)

// OpenProducts открывает файл товаров; при первом запуске он заполняется domain.DefaultProducts.
func OpenProducts(path string) (*Table[domain.Product], error) {
	return Open(path, collection.Products, domain.ErrNoSuchProduct, domain.DefaultProducts())
}

// OpenOrders открывает файл заказов; при первом запуске создаётся пустой массив.
func OpenOrders(path string) (*Table[domain.Order], error) {
	return Open(path, collection.Orders, domain.ErrNoSuchOrder, nil)
}

var (
	_ domain.ProductRepository = (*Table[domain.Product])(nil)
	_ domain.OrderRepository   = (*Table[domain.Order])(nil)
)
