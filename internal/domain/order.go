package domain

const (
	// DefaultCustomerName подставляется, если клиент не представился.
	DefaultCustomerName = "Guest"
	// OrderStatusPending — статус нового заказа. Дальше статус свободный.
	OrderStatusPending = "pending"
)

// OrderItem — позиция заказа. ProductDetails заполняется только при чтении
// заказа и никогда не сохраняется.
type OrderItem struct {
	ProductID      int64    `json:"product_id"`
	ProductDetails *Product `json:"product_details,omitempty"`
}

// Order — заказ клиента.
type Order struct {
	ID           int64       `json:"id"`
	CustomerName string      `json:"customer_name"`
	Items        []OrderItem `json:"items"`
	Status       string      `json:"status"`
}

// ItemRef — позиция из запроса; ProductID == nil, если поле не передано.
type ItemRef struct {
	ProductID *int64
}

// OrderFields — поля заказа из запроса. ItemsSet отличает отсутствующий
// список позиций от пустого.
type OrderFields struct {
	CustomerName *string
	Items        []ItemRef
	ItemsSet     bool
	Status       *string
}

// Clone возвращает копию заказа с собственным срезом позиций.
func (o Order) Clone() Order {
	items := make([]OrderItem, len(o.Items))
	for i, item := range o.Items {
		if item.ProductDetails != nil {
			details := *item.ProductDetails
			item.ProductDetails = &details
		}
		items[i] = item
	}
	o.Items = items
	return o
}

// Stripped возвращает копию заказа без снимков товаров; в таком виде заказ хранится.
func (o Order) Stripped() Order {
	items := make([]OrderItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItem{ProductID: item.ProductID}
	}
	o.Items = items
	return o
}
