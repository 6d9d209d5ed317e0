package fulfillmentserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	orderapp "github.com/Apurer/fulfillment-api/internal/domains/orders/application"
	orderports "github.com/Apurer/fulfillment-api/internal/domains/orders/ports"
	apierrors "github.com/Apurer/fulfillment-api/internal/shared/errors"
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	apierrors.Respond(c, problem)
}

// respondOrderServiceError converts service errors into RFC 7807 responses.
// Storage failures surface as a generic 500 without their message.
func respondOrderServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	switch orderapp.KindOf(err) {
	case orderapp.KindInvalidInput:
		respondProblem(c, apierrors.ErrValidation.WithDetail(err.Error()))
	case orderapp.KindNotFound:
		resource := "order"
		if errors.Is(err, orderports.ErrDriverNotFound) {
			resource = "driver"
		}
		respondProblem(c, apierrors.ErrNotFound.WithDetail(err.Error()).WithExtension("resourceType", resource))
	case orderapp.KindForbidden:
		respondProblem(c, apierrors.ErrForbidden.WithDetail(err.Error()))
	case orderapp.KindConflict:
		respondProblem(c, apierrors.ErrConflict.WithDetail(err.Error()))
	default:
		apierrors.RespondError(c, err)
	}
}
