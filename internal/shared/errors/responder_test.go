package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, responder *Responder, handler func(c *gin.Context, r *Responder)) (*httptest.ResponseRecorder, ProblemDetail) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/v1/orders/:orderId", func(c *gin.Context) { handler(c, responder) })

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/orders/ord-1", nil))

	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return rec, problem
}

func TestRespond_FillsInstanceAndContentType(t *testing.T) {
	rec, problem := serve(t, DefaultResponder, func(c *gin.Context, r *Responder) {
		r.Respond(c, ErrNotFound.WithDetail("order not found").WithExtension("resourceType", "order"))
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	assert.Equal(t, "/v1/orders/ord-1", problem.Instance)
	assert.Equal(t, "order", problem.Extensions["resourceType"])
}

func TestRespond_PrefixesBaseURI(t *testing.T) {
	_, problem := serve(t, NewResponder("https://fulfillment.example"), func(c *gin.Context, r *Responder) {
		r.Respond(c, ErrConflict.WithDetail("DELIVERED is terminal"))
	})

	assert.Equal(t, "https://fulfillment.example"+TypeTransitionRejected, problem.Type)
	assert.Equal(t, http.StatusConflict, problem.Status)
}

func TestRespondError_HidesUnknownErrors(t *testing.T) {
	rec, problem := serve(t, DefaultResponder, func(c *gin.Context, r *Responder) {
		r.RespondError(c, fmt.Errorf("dial tcp 10.0.0.3:5432: connection refused"))
		assert.Len(t, c.Errors, 1)
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, problem.Detail, "10.0.0.3")
}

func TestRespondError_PassesProblemsThrough(t *testing.T) {
	rec, problem := serve(t, DefaultResponder, func(c *gin.Context, r *Responder) {
		r.RespondError(c, fmt.Errorf("wrapped: %w", ErrForbidden.WithDetail("role CUSTOMER cannot dispatch")))
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "role CUSTOMER cannot dispatch", problem.Detail)
}

func TestWithExtension_DoesNotShareMaps(t *testing.T) {
	base := ErrValidation.WithExtension("field", "status")
	derived := base.WithExtension("value", "SHIPPED")

	assert.Len(t, base.Extensions, 1)
	assert.Len(t, derived.Extensions, 2)
}
