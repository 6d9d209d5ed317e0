package memory

import (
	"context"
	"sync"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/ports"
)

var _ ports.SnapshotCache = (*SnapshotCache)(nil)

// SnapshotCache is a process-local poll view cache.
type SnapshotCache struct {
	snapshots sync.Map
}

func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{}
}

func (c *SnapshotCache) Get(_ context.Context, orderID string) (*domain.StatusSnapshot, bool, error) {
	value, ok := c.snapshots.Load(orderID)
	if !ok {
		return nil, false, nil
	}
	snapshot := value.(domain.StatusSnapshot)
	return &snapshot, true, nil
}

// Set keeps whichever snapshot supersedes the other, so a late writer holding
// an older read never replaces a newer view.
func (c *SnapshotCache) Set(_ context.Context, snapshot domain.StatusSnapshot) error {
	for {
		current, loaded := c.snapshots.LoadOrStore(snapshot.OrderID, snapshot)
		if !loaded {
			return nil
		}
		if !snapshot.Supersedes(current.(domain.StatusSnapshot)) {
			return nil
		}
		if c.snapshots.CompareAndSwap(snapshot.OrderID, current, snapshot) {
			return nil
		}
	}
}

func (c *SnapshotCache) Invalidate(_ context.Context, orderID string) error {
	c.snapshots.Delete(orderID)
	return nil
}
