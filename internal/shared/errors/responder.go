package errors

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type of problem responses.
const ContentTypeProblemJSON = "application/problem+json"

// Responder writes problem documents, prefixing relative type URIs with BaseURI.
type Responder struct {
	BaseURI string
}

func NewResponder(baseURI string) *Responder {
	return &Responder{BaseURI: baseURI}
}

// DefaultResponder keeps problem types relative.
var DefaultResponder = NewResponder("")

// Respond writes the problem and fills Instance with the request path when empty.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.BaseURI != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.BaseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.JSON(problem.Status, problem)
}

// RespondError writes err as-is when it is a ProblemDetail. Anything else
// becomes a 500 whose detail does not repeat the error text; the error is
// attached to the gin context for the logging middleware.
func (r *Responder) RespondError(c *gin.Context, err error) {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		r.Respond(c, problem)
		return
	}
	_ = c.Error(err)
	r.Respond(c, ErrInternal.WithDetail("the request could not be completed"))
}

func Respond(c *gin.Context, problem ProblemDetail) {
	DefaultResponder.Respond(c, problem)
}

func RespondError(c *gin.Context, err error) {
	DefaultResponder.RespondError(c, err)
}
