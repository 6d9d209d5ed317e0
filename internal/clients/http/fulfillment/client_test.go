package fulfillment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	apierrors "github.com/Apurer/fulfillment-api/internal/shared/errors"
)

func TestClient_PollStatus(t *testing.T) {
	ready := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders/ord%201/status", r.URL.EscapedPath())
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"orderId":   "ord 1",
			"status":    "READY",
			"readyAt":   ready,
			"updatedAt": ready,
		})
	}))
	defer server.Close()

	client, err := NewClient(server.URL+"/v1", WithBearerToken("tok"))
	require.NoError(t, err)

	snapshot, err := client.PollStatus(context.Background(), "ord 1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, snapshot.Status)
	require.NotNil(t, snapshot.ReadyAt)
	assert.True(t, ready.Equal(*snapshot.ReadyAt))
	assert.Nil(t, snapshot.DeliveredAt)
}

func TestClient_ProblemResponses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", apierrors.ContentTypeProblemJSON)
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(apierrors.ErrNotFound.WithDetail("order not found"))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	_, err = client.PollStatus(context.Background(), "missing")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	require.NotNil(t, statusErr.Problem)
	assert.Equal(t, "order not found", statusErr.Problem.Detail)

	_, err = client.PollStatus(context.Background(), " ")
	assert.Error(t, err)
}

func TestClient_TrackingSendsOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/ord-1/tracking", r.URL.Path)
		assert.Equal(t, "asc", r.URL.Query().Get("order"))
		_, _ = w.Write([]byte(`[{"id":"t1","sequence":1,"status":"PENDING","timestamp":"2024-06-12T10:00:00Z"}]`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithHTTPClient(server.Client()))
	require.NoError(t, err)

	entries, err := client.Tracking(context.Background(), "ord-1", domain.SortAscending)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "PENDING", entries[0].Status)
}

func TestNewClient_RequiresServer(t *testing.T) {
	_, err := NewClient("  ")
	assert.Error(t, err)
}
