package fulfillmentserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	ordermapper "github.com/Apurer/fulfillment-api/internal/domains/orders/adapters/http/mapper"
	ordertypes "github.com/Apurer/fulfillment-api/internal/domains/orders/application/types"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/fulfillment-api/internal/domains/orders/ports"
	apierrors "github.com/Apurer/fulfillment-api/internal/shared/errors"
)

// OrderAPI wires HTTP transport with the orders service and the assignment orchestrator.
type OrderAPI struct {
	service    orderports.Service
	assignment orderports.AssignmentOrchestrator
}

// NewOrderAPI creates an OrderAPI. assignment may be nil to call the service directly.
func NewOrderAPI(service orderports.Service, assignment orderports.AssignmentOrchestrator) OrderAPI {
	return OrderAPI{service: service, assignment: assignment}
}

// Post /v1/orders
// Place an order in PENDING
func (api *OrderAPI) PlaceOrder(c *gin.Context) {
	var payload ordermapper.PlaceOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	actor := actorFrom(c)
	if payload.CustomerID == "" {
		payload.CustomerID = actor.ID
	}
	if payload.CustomerID != actor.ID && !actor.IsAdmin() {
		respondProblem(c, apierrors.ErrForbidden.WithDetail("orders can only be placed for the calling customer"))
		return
	}
	created, err := api.service.PlaceOrder(c.Request.Context(), ordermapper.ToPlaceOrderInput(payload))
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ordermapper.FromProjection(created))
}

// Get /v1/orders/:orderId
// Order with its tracking history, newest first
func (api *OrderAPI) GetOrder(c *gin.Context) {
	details, err := api.service.GetOrder(c.Request.Context(), ordertypes.OrderIdentifier{ID: c.Param("orderId")})
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDetails(details))
}

// Get /v1/orders/:orderId/status
// Poll view consumed by reconcilers
func (api *OrderAPI) PollStatus(c *gin.Context) {
	snapshot, err := api.service.PollStatus(c.Request.Context(), ordertypes.OrderIdentifier{ID: c.Param("orderId")})
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, ordermapper.FromSnapshot(snapshot))
}

// Get /v1/orders/:orderId/tracking
// Raw tracking log, ?order=asc|desc (default desc)
func (api *OrderAPI) ListTracking(c *gin.Context) {
	entries, err := api.service.ListTrackingHistory(c.Request.Context(), ordertypes.TrackingQuery{
		OrderID: c.Param("orderId"),
		Order:   domain.ParseSortOrder(c.Query("order")),
	})
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromTrackingEntries(entries))
}

// Patch /v1/orders/:orderId/status
// Request a status transition
func (api *OrderAPI) UpdateStatus(c *gin.Context) {
	var payload ordermapper.UpdateStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	updated, err := api.service.UpdateStatus(c.Request.Context(), ordermapper.ToUpdateStatusInput(c.Param("orderId"), actorFrom(c), payload))
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromProjection(updated))
}

// Post /v1/orders/:orderId/driver
// Bind a driver and dispatch a READY order
func (api *OrderAPI) AssignDriver(c *gin.Context) {
	var payload ordermapper.AssignDriverRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	input := ordertypes.AssignDriverInput{
		OrderID:  c.Param("orderId"),
		DriverID: payload.DriverID,
		Actor:    actorFrom(c),
		Notes:    payload.Notes,
	}
	updated, err := api.assignDriver(c.Request.Context(), input)
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromProjection(updated))
}

func (api *OrderAPI) assignDriver(ctx context.Context, input ordertypes.AssignDriverInput) (*ordertypes.OrderProjection, error) {
	if api.assignment != nil {
		return api.assignment.AssignDriver(ctx, input)
	}
	return api.service.AssignDriver(ctx, input)
}
