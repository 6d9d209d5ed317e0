package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	rd "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
)

type fakeClient struct {
	mu    sync.Mutex
	data  map[string][]byte
	ttls  map[string]time.Duration
	err   error
	evals int
}

func newFakeClient() *fakeClient {
	return &fakeClient{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeClient) Get(ctx context.Context, key string) *rd.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return rd.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return rd.NewStringResult("", rd.Nil)
	}
	return rd.NewStringResult(string(v), nil)
}

// Eval emulates luaSetIfNotOlder.
func (f *fakeClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *rd.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return rd.NewCmdResult(nil, f.err)
	}
	f.evals++
	version, body, ttl := args[0].(string), args[1].(string), args[2].(int64)
	if current, ok := f.data[keys[0]]; ok {
		var stored entry
		if json.Unmarshal(current, &stored) == nil && stored.Version > version {
			return rd.NewCmdResult(int64(0), nil)
		}
	}
	f.data[keys[0]] = []byte(body)
	f.ttls[keys[0]] = time.Duration(ttl) * time.Millisecond
	return rd.NewCmdResult(int64(1), nil)
}

func (f *fakeClient) Del(ctx context.Context, keys ...string) *rd.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return rd.NewIntResult(n, f.err)
}

func TestSnapshotCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	cache := NewSnapshotCache(client, time.Minute)

	_, ok, err := cache.Get(ctx, "ord-1")
	require.NoError(t, err)
	assert.False(t, ok)

	ready := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	snapshot := domain.StatusSnapshot{OrderID: "ord-1", Status: domain.StatusReady, ReadyAt: &ready, UpdatedAt: ready}
	require.NoError(t, cache.Set(ctx, snapshot))
	assert.Equal(t, time.Minute, client.ttls["orders:snapshot:ord-1"])

	got, ok, err := cache.Get(ctx, "ord-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.StatusReady, got.Status)
	require.NotNil(t, got.ReadyAt)
	assert.True(t, ready.Equal(*got.ReadyAt))
	assert.Nil(t, got.DeliveredAt)

	require.NoError(t, cache.Invalidate(ctx, "ord-1"))
	_, ok, err = cache.Get(ctx, "ord-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapshotCache_DefaultTTLAndErrors(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	cache := NewSnapshotCache(client, 0)

	require.NoError(t, cache.Set(ctx, domain.StatusSnapshot{OrderID: "ord-2", Status: domain.StatusPending}))
	assert.Equal(t, DefaultTTL, client.ttls[SnapshotKey("ord-2")])

	client.data[SnapshotKey("ord-3")] = []byte("{not json")
	_, _, err := cache.Get(ctx, "ord-3")
	assert.Error(t, err)

	client.err = errors.New("connection refused")
	_, ok, err := cache.Get(ctx, "ord-2")
	assert.False(t, ok)
	assert.ErrorContains(t, err, "connection refused")
	assert.Error(t, cache.Set(ctx, domain.StatusSnapshot{OrderID: "ord-2"}))
}

func TestSnapshotCache_SetKeepsNewerSnapshot(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	cache := NewSnapshotCache(client, time.Minute)
	at := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	ready := domain.StatusSnapshot{OrderID: "ord-1", Status: domain.StatusReady, UpdatedAt: at}
	delivered := domain.StatusSnapshot{OrderID: "ord-1", Status: domain.StatusDelivered, UpdatedAt: at.Add(time.Second)}

	require.NoError(t, cache.Set(ctx, delivered))
	require.NoError(t, cache.Set(ctx, ready))
	assert.Equal(t, 2, client.evals)

	got, ok, err := cache.Get(ctx, "ord-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.StatusDelivered, got.Status)
}

func TestSnapshotVersion_OrdersLikeSupersedes(t *testing.T) {
	at := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	ready := domain.StatusSnapshot{Status: domain.StatusReady, UpdatedAt: at}
	later := domain.StatusSnapshot{Status: domain.StatusPending, UpdatedAt: at.Add(time.Nanosecond)}
	tie := domain.StatusSnapshot{Status: domain.StatusOutForDelivery, UpdatedAt: at}

	assert.Less(t, snapshotVersion(ready), snapshotVersion(later))
	assert.Less(t, snapshotVersion(ready), snapshotVersion(tie))
	assert.Less(t, snapshotVersion(domain.StatusSnapshot{}), snapshotVersion(ready))
	assert.Len(t, snapshotVersion(domain.StatusSnapshot{}), len(snapshotVersion(ready)))
}
