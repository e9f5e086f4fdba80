package domain

import (
	"context"
	"time"
)

// ProductCatalog — взгляд order-service на product-service.
type ProductCatalog interface {
	// GetProduct возвращает актуальный снимок товара. Ошибка вида
	// ErrProductNotFound означает любой ответ кроме 200. Остальные ошибки
	// возникают из-за сети, таймаута или нечитаемого ответа.
	GetProduct(ctx context.Context, id int64) (Product, error)
	// Health возвращает nil, если product-service отвечает на /health.
	Health(ctx context.Context) error
}

// EventPublisher отправляет уведомления об изменениях наружу.
// Ошибки публикации не влияют на результат операции.
type EventPublisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

// IdempotencyRepository хранит ответы на запросы с Idempotency-Key.
type IdempotencyRepository interface {
	// Begin резервирует ключ. Если ключ уже есть, возвращает существующую запись
	// и ErrIdempotencyKeyAlreadyExists либо ErrIdempotencyHashMismatch.
	Begin(key, requestHash string, expiresAt time.Time) (IdempotencyRecord, error)
	Get(key string) (IdempotencyRecord, error)
	Complete(key string, httpStatus int, responseBody []byte) error
	// Release удаляет ключ, чтобы запрос можно было повторить (временные сбои).
	Release(key string) error
	DeleteExpired(before time.Time, limit int) (int, error)
}
