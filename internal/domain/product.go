package domain

// Product — товар каталога.
type Product struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}

// ProductFields — поля товара из запроса; nil означает, что поле не передано.
type ProductFields struct {
	Name      *string
	Price     *float64
	Available *bool
}

// NewProduct собирает новый товар: name обязателен, price по умолчанию 0,
// available по умолчанию true. ID назначает хранилище.
func NewProduct(fields ProductFields) (Product, error) {
	if fields.Name == nil {
		return Product{}, ErrInvalidProductData
	}

	product := Product{Name: *fields.Name, Available: true}
	if fields.Price != nil {
		product.Price = *fields.Price
	}
	if fields.Available != nil {
		product.Available = *fields.Available
	}
	return product, nil
}

// Merge накладывает переданные поля поверх товара, остальные сохраняет.
func (p Product) Merge(fields ProductFields) Product {
	if fields.Name != nil {
		p.Name = *fields.Name
	}
	if fields.Price != nil {
		p.Price = *fields.Price
	}
	if fields.Available != nil {
		p.Available = *fields.Available
	}
	return p
}

// DefaultProducts возвращает товары, которыми заполняется пустое хранилище при первом запуске.
func DefaultProducts() []Product {
	return []Product{
		{ID: 1, Name: "Laptop", Price: 999.99, Available: true},
		{ID: 2, Name: "Smartphone", Price: 499.99, Available: true},
		{ID: 3, Name: "Headphones", Price: 99.99, Available: true},
	}
}
