// Package rediscache — кэш снимков товаров в Redis для обогащения заказов.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
)

const (
	// DefaultTTL задаёт срок жизни снимка.
	DefaultTTL = 5 * time.Second

	keyPrefix = "shop:product:"
)

// Snapshots хранит JSON-снимки товаров с коротким TTL.
type Snapshots struct {
	client *redis.Client
	ttl    time.Duration
}

// New подключается к Redis по addr и проверяет соединение.
func New(ctx context.Context, addr string, ttl time.Duration) (*Snapshots, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	return NewWithClient(client, ttl), nil
}

// NewWithClient оборачивает готовый клиент. ttl <= 0 заменяется на DefaultTTL.
func NewWithClient(client *redis.Client, ttl time.Duration) *Snapshots {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Snapshots{client: client, ttl: ttl}
}

func cacheKey(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// Get возвращает снимок; ok=false при промахе.
func (s *Snapshots) Get(ctx context.Context, id int64) (domain.Product, bool, error) {
	value, err := s.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Product{}, false, nil
	}
	if err != nil {
		return domain.Product{}, false, err
	}

	var product domain.Product
	if err := json.Unmarshal(value, &product); err != nil {
		return domain.Product{}, false, fmt.Errorf("decode snapshot %d: %w", id, err)
	}
	return product, true, nil
}

// Set сохраняет снимок на ttl.
func (s *Snapshots) Set(ctx context.Context, product domain.Product) error {
	payload, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, cacheKey(product.ID), payload, s.ttl).Err()
}

// Ping проверяет соединение с Redis.
func (s *Snapshots) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close закрывает клиент.
func (s *Snapshots) Close() error {
	return s.client.Close()
}
