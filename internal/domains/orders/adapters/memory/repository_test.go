package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
	"github.com/Apurer/fulfillment-api/internal/domains/orders/ports"
)

func newOrder(t *testing.T, now time.Time) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder("cust-1", []domain.LineItem{{Name: "Pho", Quantity: 1, UnitPrice: 900}}, 900, "", now)
	require.NoError(t, err)
	return order
}

func TestRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	repo := NewRepository().WithClock(func() time.Time { return now })

	order := newOrder(t, now)
	created, err := repo.Create(ctx, order, domain.NewTrackingEntry(order.ID, domain.StatusPending, "", domain.Coordinates{}, now))
	require.NoError(t, err)
	assert.Equal(t, now, created.Metadata.CreatedAt)

	_, err = repo.Append(ctx, domain.NewTrackingEntry(order.ID, domain.StatusPreparing, "", domain.Coordinates{}, now.Add(time.Minute)))
	require.NoError(t, err)

	asc, err := repo.ListFor(ctx, order.ID, domain.SortAscending)
	require.NoError(t, err)
	require.Len(t, asc, 2)
	assert.Equal(t, domain.StatusPending, asc[0].Status)
	assert.Equal(t, int64(1), asc[0].Sequence)

	desc, err := repo.ListFor(ctx, order.ID, domain.SortDescending)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, desc[0].Status)

	asc[0].Status = domain.StatusCancelled
	again, err := repo.ListFor(ctx, order.ID, domain.SortAscending)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, again[0].Status)
}

func TestRepository_AppendClampsTimestamps(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	repo := NewRepository()
	order := newOrder(t, now)
	_, err := repo.Create(ctx, order, domain.NewTrackingEntry(order.ID, domain.StatusPending, "", domain.Coordinates{}, now))
	require.NoError(t, err)

	stored, err := repo.Append(ctx, domain.NewTrackingEntry(order.ID, domain.StatusConfirmed, "", domain.Coordinates{}, now.Add(-time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, now, stored.Timestamp)
	assert.Equal(t, int64(2), stored.Sequence)

	desc, err := repo.ListFor(ctx, order.ID, domain.SortDescending)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, desc[0].Status)
}

func TestRepository_UnknownOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	_, err := repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, ports.ErrNotFound)
	_, err = repo.ListFor(ctx, "missing", domain.SortAscending)
	require.ErrorIs(t, err, ports.ErrNotFound)
	_, err = repo.Append(ctx, domain.TrackingEntry{OrderID: "missing"})
	require.ErrorIs(t, err, ports.ErrNotFound)
	_, err = repo.Mutate(ctx, "missing", func(*domain.Order) (*domain.TrackingEntry, error) { return nil, nil })
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_MutateDiscardsFailedChanges(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	repo := NewRepository()
	order := newOrder(t, now)
	_, err := repo.Create(ctx, order, domain.NewTrackingEntry(order.ID, domain.StatusPending, "", domain.Coordinates{}, now))
	require.NoError(t, err)

	_, err = repo.Mutate(ctx, order.ID, func(o *domain.Order) (*domain.TrackingEntry, error) {
		o.Status = domain.StatusCancelled
		return nil, domain.ErrIllegalTransition
	})
	require.ErrorIs(t, err, domain.ErrIllegalTransition)

	fetched, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, fetched.Entity.Status)
}

func TestRepository_MutateSerialisesPerOrder(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	repo := NewRepository()
	order := newOrder(t, now)
	_, err := repo.Create(ctx, order, domain.NewTrackingEntry(order.ID, domain.StatusPending, "", domain.Coordinates{}, now))
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Mutate(ctx, order.ID, func(o *domain.Order) (*domain.TrackingEntry, error) {
				if o.Status != domain.StatusPending {
					return nil, domain.ErrIllegalTransition
				}
				o.Status = domain.StatusConfirmed
				entry := domain.NewTrackingEntry(o.ID, domain.StatusConfirmed, "", domain.Coordinates{}, time.Now())
				return &entry, nil
			})
			if err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	entries, err := repo.ListFor(ctx, order.ID, domain.SortAscending)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
