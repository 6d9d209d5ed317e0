package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
)

func TestToRegisterDriverInput_DefaultsActive(t *testing.T) {
	assert.True(t, ToRegisterDriverInput(domain.Actor{}, RegisterDriverRequest{Name: "Anan"}).Active)
	inactive := false
	assert.False(t, ToRegisterDriverInput(domain.Actor{}, RegisterDriverRequest{Name: "Anan", Active: &inactive}).Active)
}

func TestToSnapshot_ParsesStatus(t *testing.T) {
	ready := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	snapshot, err := ToSnapshot(Status{OrderID: "ord-1", Status: "ready", ReadyAt: &ready})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, snapshot.Status)
	assert.Equal(t, &ready, snapshot.ReadyAt)

	_, err = ToSnapshot(Status{OrderID: "ord-1", Status: "LOST"})
	assert.ErrorIs(t, err, domain.ErrUnknownStatus)
}

func TestFromTrackingEntries_EmptyIsArray(t *testing.T) {
	assert.NotNil(t, FromTrackingEntries(nil))
	assert.Equal(t, Order{}, FromProjection(nil))
}
