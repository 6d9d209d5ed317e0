package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
)

func TestSnapshotCache_OlderSnapshotNeverWins(t *testing.T) {
	ctx := context.Background()
	cache := NewSnapshotCache()
	at := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	delivered := domain.StatusSnapshot{OrderID: "ord-1", Status: domain.StatusDelivered, UpdatedAt: at.Add(time.Minute)}
	ready := domain.StatusSnapshot{OrderID: "ord-1", Status: domain.StatusReady, UpdatedAt: at}

	require.NoError(t, cache.Set(ctx, delivered))
	require.NoError(t, cache.Set(ctx, ready))

	got, ok, err := cache.Get(ctx, "ord-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.StatusDelivered, got.Status)

	require.NoError(t, cache.Invalidate(ctx, "ord-1"))
	require.NoError(t, cache.Set(ctx, ready))
	got, _, _ = cache.Get(ctx, "ord-1")
	assert.Equal(t, domain.StatusReady, got.Status)
}

func TestSnapshotCache_ConcurrentWritersKeepNewest(t *testing.T) {
	ctx := context.Background()
	cache := NewSnapshotCache()
	at := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	statuses := []domain.Status{domain.StatusPending, domain.StatusPreparing, domain.StatusReady, domain.StatusOutForDelivery, domain.StatusDelivered}

	var wg sync.WaitGroup
	for i, status := range statuses {
		wg.Add(1)
		go func(i int, status domain.Status) {
			defer wg.Done()
			_ = cache.Set(ctx, domain.StatusSnapshot{OrderID: "ord-1", Status: status, UpdatedAt: at.Add(time.Duration(i) * time.Second)})
		}(i, status)
	}
	wg.Wait()

	got, ok, err := cache.Get(ctx, "ord-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.StatusDelivered, got.Status)
}
