package rediscache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
)

func openSnapshotsForIntegrationTest(t *testing.T, ttl time.Duration) *Snapshots {
	t.Helper()

	addr := os.Getenv("SHOP_REDIS_TEST_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	snapshots, err := New(context.Background(), addr, ttl)
	if err != nil {
		t.Skipf("redis is not available for integration tests: %v", err)
	}
	t.Cleanup(func() { _ = snapshots.Close() })
	return snapshots
}

func TestCacheKey(t *testing.T) {
	require.Equal(t, "shop:product:42", cacheKey(42))
}

func TestNewWithClient_DefaultTTL(t *testing.T) {
	s := NewWithClient(nil, 0)
	require.Equal(t, DefaultTTL, s.ttl)
}

func TestSnapshots_SetGetExpire(t *testing.T) {
	s := openSnapshotsForIntegrationTest(t, time.Second)
	ctx := context.Background()

	product := domain.Product{ID: 900001, Name: "Laptop", Price: 999.99, Available: true}
	require.NoError(t, s.client.Del(ctx, cacheKey(product.ID)).Err())

	_, ok, err := s.Get(ctx, product.ID)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, product))
	got, ok, err := s.Get(ctx, product.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, product, got)

	require.Eventually(t, func() bool {
		_, ok, err := s.Get(ctx, product.ID)
		return err == nil && !ok
	}, 3*time.Second, 100*time.Millisecond)
}
