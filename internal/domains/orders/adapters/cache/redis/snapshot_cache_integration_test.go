//go:build integration
// +build integration

package redis

import (
	"context"
	"testing"
	"time"

	rd "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
)

func TestSnapshotCache_AgainstRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer container.Terminate(ctx)

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client := rd.NewClient(&rd.Options{Addr: endpoint})
	defer client.Close()

	cache := NewSnapshotCache(client, time.Second)
	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, cache.Set(ctx, domain.StatusSnapshot{OrderID: "ord-1", Status: domain.StatusReady, ReadyAt: &now, UpdatedAt: now}))

	got, ok, err := cache.Get(ctx, "ord-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.StatusReady, got.Status)

	ttl, err := client.TTL(ctx, SnapshotKey("ord-1")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	older := now.Add(-time.Second)
	require.NoError(t, cache.Set(ctx, domain.StatusSnapshot{OrderID: "ord-1", Status: domain.StatusPreparing, UpdatedAt: older}))
	got, ok, err = cache.Get(ctx, "ord-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.StatusReady, got.Status)

	require.Eventually(t, func() bool {
		_, ok, err := cache.Get(ctx, "ord-1")
		return err == nil && !ok
	}, 5*time.Second, 100*time.Millisecond)
}
