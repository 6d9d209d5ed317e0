package ports

import (
	"context"
	"errors"

	ordertypes "github.com/Apurer/fulfillment-api/internal/domains/orders/application/types"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
)

var ErrNotFound = errors.New("order not found")

// OrderProjection is an order plus its persistence metadata.
type OrderProjection = ordertypes.OrderProjection

// MutateFunc edits the locked order in place. Returning a nil entry and a nil
// error leaves the order untouched; a non-nil entry is appended together with
// the order change.
type MutateFunc func(order *domain.Order) (*domain.TrackingEntry, error)

// Repository stores orders. Mutate serialises callers per order id.
type Repository interface {
	Create(ctx context.Context, order *domain.Order, initial domain.TrackingEntry) (*OrderProjection, error)
	GetByID(ctx context.Context, id string) (*OrderProjection, error)
	Mutate(ctx context.Context, id string, fn MutateFunc) (*OrderProjection, error)
}
