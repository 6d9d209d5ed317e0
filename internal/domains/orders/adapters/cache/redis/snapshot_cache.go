package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	rd "github.com/redis/go-redis/v9"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/ports"
)

// DefaultTTL bounds how long a poll view may be served without touching the store.
const DefaultTTL = 30 * time.Second

// luaSetIfNotOlder writes the entry unless the stored one carries a higher
// version. Versions are fixed width so string comparison orders them.
const luaSetIfNotOlder = `
local current = redis.call('GET', KEYS[1])
if current then
  local ok, entry = pcall(cjson.decode, current)
  if ok and type(entry) == 'table' and type(entry.version) == 'string' and entry.version > ARGV[1] then
    return 0
  end
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`

var _ ports.SnapshotCache = (*SnapshotCache)(nil)

// Client is the subset of go-redis the cache needs. *rd.Client satisfies it.
type Client interface {
	Get(ctx context.Context, key string) *rd.StringCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *rd.Cmd
	Del(ctx context.Context, keys ...string) *rd.IntCmd
}

// SnapshotKey returns the cache key for an order's poll view.
func SnapshotKey(orderID string) string {
	return "orders:snapshot:" + orderID
}

type entry struct {
	Version  string                `json:"version"`
	Snapshot domain.StatusSnapshot `json:"snapshot"`
}

// snapshotVersion mirrors StatusSnapshot.Supersedes: nanoseconds first, then
// lifecycle rank.
func snapshotVersion(snapshot domain.StatusSnapshot) string {
	var nanos int64
	if snapshot.UpdatedAt.After(time.Unix(0, 0)) {
		nanos = snapshot.UpdatedAt.UnixNano()
	}
	return fmt.Sprintf("%020d.%d", nanos, snapshot.Status.Rank()+1)
}

// SnapshotCache stores status snapshots as JSON strings with a TTL.
type SnapshotCache struct {
	client Client
	ttl    time.Duration
}

// NewSnapshotCache wraps a redis client. A non-positive ttl selects DefaultTTL.
func NewSnapshotCache(client Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SnapshotCache{client: client, ttl: ttl}
}

func (c *SnapshotCache) Get(ctx context.Context, orderID string) (*domain.StatusSnapshot, bool, error) {
	raw, err := c.client.Get(ctx, SnapshotKey(orderID)).Bytes()
	if errors.Is(err, rd.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot: %w", err)
	}
	var stored entry
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return &stored.Snapshot, true, nil
}

// Set is a compare-and-set: a snapshot older than the stored one is dropped.
func (c *SnapshotCache) Set(ctx context.Context, snapshot domain.StatusSnapshot) error {
	version := snapshotVersion(snapshot)
	body, err := json.Marshal(entry{Version: version, Snapshot: snapshot})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	ttl := c.ttl.Milliseconds()
	if ttl < 1 {
		ttl = 1
	}
	if err := c.client.Eval(ctx, luaSetIfNotOlder, []string{SnapshotKey(snapshot.OrderID)}, version, string(body), ttl).Err(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (c *SnapshotCache) Invalidate(ctx context.Context, orderID string) error {
	if err := c.client.Del(ctx, SnapshotKey(orderID)).Err(); err != nil {
		return fmt.Errorf("drop snapshot: %w", err)
	}
	return nil
}
