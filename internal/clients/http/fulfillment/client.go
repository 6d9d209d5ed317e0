// Package fulfillment is an HTTP client for the fulfillment API poll endpoints.
package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"

	ordermapper "github.com/Apurer/fulfillment-api/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	apierrors "github.com/Apurer/fulfillment-api/internal/shared/errors"
)

// DefaultServerURL is a local API process with its /v1 prefix.
const DefaultServerURL = "http://localhost:8080/v1"

// HttpRequestDoer performs HTTP requests. *http.Client satisfies it.
type HttpRequestDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestEditorFn mutates outgoing requests, e.g. to add headers.
type RequestEditorFn func(ctx context.Context, req *http.Request) error

// ClientOption customises a Client.
type ClientOption func(*Client) error

// WithHTTPClient overrides the request doer.
func WithHTTPClient(doer HttpRequestDoer) ClientOption {
	return func(c *Client) error {
		c.client = doer
		return nil
	}
}

// WithBearerToken authenticates every request with the token.
func WithBearerToken(token string) ClientOption {
	return WithRequestEditorFn(func(_ context.Context, req *http.Request) error {
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	})
}

// WithRequestEditorFn appends a request editor.
func WithRequestEditorFn(fn RequestEditorFn) ClientOption {
	return func(c *Client) error {
		c.editors = append(c.editors, fn)
		return nil
	}
}

// Client reads order status and tracking from the fulfillment API.
type Client struct {
	server  string
	client  HttpRequestDoer
	editors []RequestEditorFn
}

// NewClient builds a client rooted at server, including the API prefix, e.g.
// DefaultServerURL.
func NewClient(server string, opts ...ClientOption) (*Client, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		return nil, errors.New("fulfillment server URL is required")
	}
	if !strings.HasSuffix(server, "/") {
		server += "/"
	}
	c := &Client{server: server}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: 5 * time.Second}
	}
	return c, nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Problem    *apierrors.ProblemDetail
}

func (e *StatusError) Error() string {
	if e.Problem != nil {
		return fmt.Sprintf("fulfillment API %d: %s", e.StatusCode, e.Problem.Error())
	}
	return fmt.Sprintf("fulfillment API %d", e.StatusCode)
}

// PollStatus fetches GET /orders/{orderId}/status.
func (c *Client) PollStatus(ctx context.Context, orderID string) (*domain.StatusSnapshot, error) {
	var body ordermapper.Status
	if err := c.get(ctx, &body, orderID, "status", nil); err != nil {
		return nil, err
	}
	return ordermapper.ToSnapshot(body)
}

// Tracking fetches GET /orders/{orderId}/tracking in the requested order.
func (c *Client) Tracking(ctx context.Context, orderID string, order domain.SortOrder) ([]ordermapper.TrackingEntry, error) {
	query := url.Values{}
	if order != "" {
		query.Set("order", string(order))
	}
	var body []ordermapper.TrackingEntry
	if err := c.get(ctx, &body, orderID, "tracking", query); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, out any, orderID, resource string, query url.Values) error {
	req, err := c.newOrderRequest(ctx, orderID, resource, query)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call fulfillment API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var problem apierrors.ProblemDetail
		if raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); readErr == nil && json.Unmarshal(raw, &problem) == nil && problem.Title != "" {
			statusErr.Problem = &problem
		}
		return statusErr
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode fulfillment response: %w", err)
	}
	return nil
}

func (c *Client) newOrderRequest(ctx context.Context, orderID, resource string, query url.Values) (*http.Request, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, errors.New("order id is required")
	}
	serverURL, err := url.Parse(c.server)
	if err != nil {
		return nil, err
	}
	pathParam, err := runtime.StyleParamWithLocation("simple", false, "orderId", runtime.ParamLocationPath, orderID)
	if err != nil {
		return nil, err
	}
	queryURL, err := serverURL.Parse(fmt.Sprintf("orders/%s/%s", pathParam, resource))
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		queryURL.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for _, edit := range c.editors {
		if err := edit(ctx, req); err != nil {
			return nil, err
		}
	}
	return req, nil
}
