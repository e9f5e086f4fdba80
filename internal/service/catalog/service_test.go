package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
	"github.com/vladislavdragonenkov/shoplab/internal/storage/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func newSeededService(opts ...Option) *Service {
	return NewService(memory.NewProductRepository(domain.DefaultProducts()...), opts...)
}

func TestService_CreateAssignsNextIDAndDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newSeededService()

	created, err := svc.Create(ctx, domain.ProductFields{Name: ptr("Tablet"), Price: ptr(299.99)})
	require.NoError(t, err)
	require.Equal(t, domain.Product{ID: 4, Name: "Tablet", Price: 299.99, Available: true}, created)

	bare, err := svc.Create(ctx, domain.ProductFields{Name: ptr("Cable")})
	require.NoError(t, err)
	require.Equal(t, int64(5), bare.ID)
	require.Zero(t, bare.Price)
	require.True(t, bare.Available)
}

func TestService_CreateWithoutNameDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	svc := newSeededService()

	_, err := svc.Create(ctx, domain.ProductFields{Price: ptr(10.0)})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	require.EqualError(t, err, "Invalid product data")

	products, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
}

func TestService_UpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	svc := newSeededService()

	updated, err := svc.Update(ctx, 1, domain.ProductFields{Available: ptr(false)})
	require.NoError(t, err)
	require.Equal(t, domain.Product{ID: 1, Name: "Laptop", Price: 999.99, Available: false}, updated)

	stored, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, updated, stored)
}

func TestService_UpdateAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	svc := newSeededService()

	_, err := svc.Update(ctx, 9999, domain.ProductFields{Name: ptr("x")})
	require.True(t, domain.IsNotFound(err))
	require.EqualError(t, err, "Product not found")

	err = svc.Delete(ctx, 9999)
	require.True(t, domain.IsNotFound(err))
}

func TestService_DeletedIDIsNotReused(t *testing.T) {
	ctx := context.Background()
	svc := newSeededService()

	require.NoError(t, svc.Delete(ctx, 3))
	created, err := svc.Create(ctx, domain.ProductFields{Name: ptr("Speaker")})
	require.NoError(t, err)
	require.Equal(t, int64(4), created.ID)
}

func TestService_PublishesChangeEvents(t *testing.T) {
	ctx := context.Background()
	events := &recordingPublisher{}
	svc := newSeededService(WithEvents(events))

	created, err := svc.Create(ctx, domain.ProductFields{Name: ptr("Tablet")})
	require.NoError(t, err)
	_, err = svc.Update(ctx, created.ID, domain.ProductFields{Price: ptr(1.0)})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))

	_, _ = svc.Update(ctx, 9999, domain.ProductFields{})

	require.Equal(t, []domain.EventType{
		domain.EventProductCreated,
		domain.EventProductUpdated,
		domain.EventProductDeleted,
	}, events.types())
	require.Equal(t, ServiceName, events.events[0].Service)
}

func TestService_PublishFailureDoesNotFailOperation(t *testing.T) {
	svc := newSeededService(WithEvents(&recordingPublisher{err: errors.New("broker down")}))

	created, err := svc.Create(context.Background(), domain.ProductFields{Name: ptr("Tablet")})
	require.NoError(t, err)
	require.Equal(t, int64(4), created.ID)
}

func TestService_ConcurrentCreatesGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	svc := newSeededService()

	const workers = 20
	ids := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := svc.Create(ctx, domain.ProductFields{Name: ptr("item")})
			if err == nil {
				ids <- p.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	require.Len(t, seen, workers)
}
