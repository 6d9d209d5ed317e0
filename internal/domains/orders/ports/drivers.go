package ports

import (
	"context"
	"errors"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
)

var ErrDriverNotFound = errors.New("driver not found")

// DriverDirectory resolves the drivers orders can be bound to.
type DriverDirectory interface {
	Save(ctx context.Context, driver *domain.Driver) (*domain.Driver, error)
	GetByID(ctx context.Context, id string) (*domain.Driver, error)
	List(ctx context.Context) ([]*domain.Driver, error)
}
