package domain

import "context"

// ProductRepository описывает требования к хранилищу товаров.
type ProductRepository interface {
	// List возвращает все товары в порядке добавления.
	List(ctx context.Context) ([]Product, error)
	// Get возвращает товар или ErrNoSuchProduct.
	Get(ctx context.Context, id int64) (Product, error)
	// Create назначает товару новый ID (max+1, либо 1 для пустого хранилища) и сохраняет его.
	Create(ctx context.Context, product Product) (Product, error)
	// Save перезаписывает существующий товар или возвращает ErrNoSuchProduct.
	Save(ctx context.Context, product Product) error
	// Delete удаляет товар или возвращает ErrNoSuchProduct.
	Delete(ctx context.Context, id int64) error
}

// OrderRepository описывает требования к хранилищу заказов.
// Заказы сохраняются без снимков товаров.
type OrderRepository interface {
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id int64) (Order, error)
	Create(ctx context.Context, order Order) (Order, error)
	Save(ctx context.Context, order Order) error
	Delete(ctx context.Context, id int64) error
}
