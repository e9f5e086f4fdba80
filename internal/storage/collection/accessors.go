package collection

import "github.com/vladislavdragonenkov/shoplab/internal/domain"

// Products — Accessor для domain.Product.
var Products = Accessor[domain.Product]{
	ID: func(p domain.Product) int64 { return p.ID },
	SetID: func(p domain.Product, id int64) domain.Product {
		p.ID = id
		return p
	},
}

// Orders — Accessor для domain.Order. Записи хранятся без снимков товаров.
var Orders = Accessor[domain.Order]{
	ID: func(o domain.Order) int64 { return o.ID },
	SetID: func(o domain.Order, id int64) domain.Order {
		o.ID = id
		return o
	},
	Clone: func(o domain.Order) domain.Order { return o.Stripped() },
}
