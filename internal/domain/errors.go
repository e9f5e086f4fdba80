package domain

import (
	"errors"
	"fmt"
)

// Виды ошибок. Каждая конкретная ошибка домена оборачивает ровно один вид,
// транспортный слой сопоставляет вид с HTTP-статусом через errors.Is.
var (
	// ErrInvalidInput: в запросе нет обязательного поля или тело не разобрано.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound: запрошенной записи нет в собственном хранилище сервиса.
	ErrNotFound = errors.New("not found")
	// ErrProductNotFound: позиция заказа ссылается на несуществующий товар.
	ErrProductNotFound = errors.New("referenced product not found")
	// ErrProductUnavailable: товар существует, но помечен недоступным.
	ErrProductUnavailable = errors.New("referenced product unavailable")
	// ErrServiceUnavailable: зависимость не ответила (сеть, таймаут, мусор в ответе).
	ErrServiceUnavailable = errors.New("dependency unavailable")
)

// Error — ошибка домена с сообщением для клиента и видом для классификации.
type Error struct {
	kind    error
	message string
}

// NewError создаёт ошибку вида kind с клиентским сообщением message.
func NewError(kind error, message string) *Error {
	return &Error{kind: kind, message: message}
}

func (e *Error) Error() string { return e.message }

// Unwrap отдаёт вид ошибки для errors.Is.
func (e *Error) Unwrap() error { return e.kind }

var (
	// ErrInvalidProductData: тело запроса товара пустое, не JSON или без name.
	ErrInvalidProductData = NewError(ErrInvalidInput, "Invalid product data")
	// ErrInvalidOrderData: тело запроса заказа пустое, не JSON или без items.
	ErrInvalidOrderData = NewError(ErrInvalidInput, "Invalid order data")
	// ErrProductIDRequired: у позиции заказа нет product_id.
	ErrProductIDRequired = NewError(ErrInvalidInput, "Product ID is required for each item")
	// ErrNoSuchProduct возвращается хранилищем товаров, если id не найден.
	ErrNoSuchProduct = NewError(ErrNotFound, "Product not found")
	// ErrNoSuchOrder возвращается хранилищем заказов, если id не найден.
	ErrNoSuchOrder = NewError(ErrNotFound, "Order not found")
	// ErrCatalogUnreachable: product-service не удалось опросить.
	ErrCatalogUnreachable = NewError(ErrServiceUnavailable, "Could not connect to product service")
)

// ProductNotFoundError сообщает, что товар id из позиции заказа не найден в каталоге.
func ProductNotFoundError(id int64) error {
	return NewError(ErrProductNotFound, fmt.Sprintf("Product with ID %d not found", id))
}

// ProductUnavailableError сообщает, что товар name снят с продажи.
func ProductUnavailableError(name string) error {
	return NewError(ErrProductUnavailable, fmt.Sprintf("Product %s is not available", name))
}

// IsNotFound проверяет, что запрошенная запись отсутствует.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
