// Package errors provides RFC 7807 problem documents for the fulfillment API.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail is an RFC 7807 problem document. It doubles as an error so
// handlers and clients can pass it around unchanged.
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy carrying an extra member. The receiver's map is never shared.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	extensions := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		extensions[k] = v
	}
	extensions[key] = value
	p.Extensions = extensions
	return p
}

const (
	TypeBadRequest         = "/problems/bad-request"
	TypeValidation         = "/problems/validation-error"
	TypeUnauthorized       = "/problems/unauthorized"
	TypeForbidden          = "/problems/forbidden"
	TypeNotFound           = "/problems/not-found"
	TypeTransitionRejected = "/problems/transition-rejected"
	TypeInternal           = "/problems/internal-error"
)

var (
	// ErrBadRequest is a body that could not be decoded.
	ErrBadRequest = ProblemDetail{Type: TypeBadRequest, Title: "Bad Request", Status: http.StatusBadRequest}

	// ErrValidation is a decoded request the orders service refused.
	ErrValidation = ProblemDetail{Type: TypeValidation, Title: "Validation Error", Status: http.StatusBadRequest}

	ErrUnauthorized = ProblemDetail{Type: TypeUnauthorized, Title: "Unauthorized", Status: http.StatusUnauthorized}

	// ErrForbidden is an actor whose roles do not reach the requested action.
	ErrForbidden = ProblemDetail{Type: TypeForbidden, Title: "Forbidden", Status: http.StatusForbidden}

	ErrNotFound = ProblemDetail{Type: TypeNotFound, Title: "Resource Not Found", Status: http.StatusNotFound}

	// ErrConflict is a transition the current order status does not allow.
	ErrConflict = ProblemDetail{Type: TypeTransitionRejected, Title: "Transition Rejected", Status: http.StatusConflict}

	ErrInternal = ProblemDetail{Type: TypeInternal, Title: "Internal Server Error", Status: http.StatusInternalServerError}
)
