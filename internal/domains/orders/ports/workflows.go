package ports

import (
	"context"

	ordertypes "github.com/Apurer/fulfillment-api/internal/domains/orders/application/types"
)

// AssignmentOrchestrator runs driver assignment, durably when a workflow engine is available.
type AssignmentOrchestrator interface {
	AssignDriver(ctx context.Context, input ordertypes.AssignDriverInput) (*ordertypes.OrderProjection, error)
}
