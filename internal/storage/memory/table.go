package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/shoplab/internal/storage/collection"
)

// table — in-memory хранилище записей одного типа поверх collection.Records.
type table[T any] struct {
	mu       sync.RWMutex
	records  *collection.Records[T]
	notFound error
}

func newTable[T any](acc collection.Accessor[T], notFound error, seed []T) *table[T] {
	return &table[T]{
		records:  collection.New(acc, seed),
		notFound: notFound,
	}
}

func (t *table[T]) List(_ context.Context) ([]T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.records.All(), nil
}

func (t *table[T]) Get(_ context.Context, id int64) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	item, ok := t.records.Get(id)
	if !ok {
		return item, t.notFound
	}
	return item, nil
}

func (t *table[T]) Create(_ context.Context, item T) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.records.Insert(item), nil
}

func (t *table[T]) Save(_ context.Context, item T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.records.Replace(item) {
		return t.notFound
	}
	return nil
}

func (t *table[T]) Delete(_ context.Context, id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.records.Remove(id) {
		return t.notFound
	}
	return nil
}
