package fulfillmentserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ordermapper "github.com/Apurer/fulfillment-api/internal/domains/orders/adapters/http/mapper"
	orderports "github.com/Apurer/fulfillment-api/internal/domains/orders/ports"
	apierrors "github.com/Apurer/fulfillment-api/internal/shared/errors"
)

// DriverAPI exposes the driver directory.
type DriverAPI struct {
	service orderports.Service
}

func NewDriverAPI(service orderports.Service) DriverAPI {
	return DriverAPI{service: service}
}

// Post /v1/drivers
// Register or replace a driver (admin only)
func (api *DriverAPI) RegisterDriver(c *gin.Context) {
	var payload ordermapper.RegisterDriverRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	driver, err := api.service.RegisterDriver(c.Request.Context(), ordermapper.ToRegisterDriverInput(actorFrom(c), payload))
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ordermapper.FromDriver(driver))
}

// Get /v1/drivers
func (api *DriverAPI) ListDrivers(c *gin.Context) {
	drivers, err := api.service.ListDrivers(c.Request.Context())
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDrivers(drivers))
}
