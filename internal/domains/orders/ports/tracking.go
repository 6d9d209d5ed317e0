package ports

import (
	"context"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
)

// TrackingLog is the append-only history kept per order.
type TrackingLog interface {
	// Append records an entry for an existing order. It applies no business rules.
	Append(ctx context.Context, entry domain.TrackingEntry) (*domain.TrackingEntry, error)
	// ListFor returns a fresh slice on every call.
	ListFor(ctx context.Context, orderID string, order domain.SortOrder) ([]domain.TrackingEntry, error)
}
