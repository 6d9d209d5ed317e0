package fulfillmentserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// BasePath prefixes every authenticated route.
const BasePath = "/v1"

// ApiHandleFunctions groups the handlers mounted under /v1.
type ApiHandleFunctions struct {
	OrderAPI  OrderAPI
	DriverAPI DriverAPI
	// Verifier authenticates every /v1 route.
	Verifier ActorVerifier
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine add routes to existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	router.GET("/healthz", Healthz)

	v1 := router.Group(BasePath)
	if handleFunctions.Verifier != nil {
		v1.Use(RequireActor(handleFunctions.Verifier))
	}
	for _, route := range getRoutes(handleFunctions) {
		v1.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	return router
}

// Healthz reports liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"PlaceOrder", http.MethodPost, "/orders", handleFunctions.OrderAPI.PlaceOrder},
		{"GetOrder", http.MethodGet, "/orders/:orderId", handleFunctions.OrderAPI.GetOrder},
		{"PollStatus", http.MethodGet, "/orders/:orderId/status", handleFunctions.OrderAPI.PollStatus},
		{"ListTracking", http.MethodGet, "/orders/:orderId/tracking", handleFunctions.OrderAPI.ListTracking},
		{"UpdateStatus", http.MethodPatch, "/orders/:orderId/status", handleFunctions.OrderAPI.UpdateStatus},
		{"AssignDriver", http.MethodPost, "/orders/:orderId/driver", handleFunctions.OrderAPI.AssignDriver},
		{"RegisterDriver", http.MethodPost, "/drivers", handleFunctions.DriverAPI.RegisterDriver},
		{"ListDrivers", http.MethodGet, "/drivers", handleFunctions.DriverAPI.ListDrivers},
	}
}
