package fulfillmentserver

import (
	"github.com/gin-gonic/gin"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	"github.com/Apurer/fulfillment-api/internal/platform/auth"
	apierrors "github.com/Apurer/fulfillment-api/internal/shared/errors"
)

const actorContextKey = "fulfillment.actor"

// ActorVerifier turns a bearer token into the calling actor.
type ActorVerifier interface {
	Verify(token string) (domain.Actor, error)
}

// RequireActor rejects requests without a valid bearer token carrying a role claim.
func RequireActor(verifier ActorVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			respondProblem(c, apierrors.ErrUnauthorized.WithDetail("bearer token required"))
			c.Abort()
			return
		}
		actor, err := verifier.Verify(token)
		if err != nil {
			respondProblem(c, apierrors.ErrUnauthorized.WithDetail(err.Error()))
			c.Abort()
			return
		}
		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// actorFrom returns the actor stored by RequireActor.
func actorFrom(c *gin.Context) domain.Actor {
	if v, ok := c.Get(actorContextKey); ok {
		if actor, ok := v.(domain.Actor); ok {
			return actor
		}
	}
	return domain.Actor{}
}
