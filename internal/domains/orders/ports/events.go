package ports

import (
	"context"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
)

// EventPublisher fans domain events out to other processes.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// SnapshotCache keeps poll views close to the poll endpoint. Set must not
// replace a stored snapshot that supersedes the incoming one.
type SnapshotCache interface {
	Get(ctx context.Context, orderID string) (*domain.StatusSnapshot, bool, error)
	Set(ctx context.Context, snapshot domain.StatusSnapshot) error
	Invalidate(ctx context.Context, orderID string) error
}
