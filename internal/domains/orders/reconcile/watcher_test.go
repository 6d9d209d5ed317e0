package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
)

type scriptedPoller struct {
	mu      sync.Mutex
	current domain.StatusSnapshot
	err     error
	calls   atomic.Int32
}

func (p *scriptedPoller) set(s domain.StatusSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = s
}

func (p *scriptedPoller) PollStatus(ctx context.Context, orderID string) (*domain.StatusSnapshot, error) {
	p.calls.Add(1)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	s := p.current
	return &s, nil
}

func runWatcher(t *testing.T, ctx context.Context, w *Watcher) <-chan View {
	t.Helper()
	out := make(chan View, 1)
	go func() {
		view, _ := w.Run(ctx)
		out <- view
	}()
	return out
}

func TestWatcher_DeliveredCompletesOnceAndStops(t *testing.T) {
	poller := &scriptedPoller{}
	now := time.Now().UTC()
	poller.set(domain.StatusSnapshot{OrderID: "ord-1", Status: domain.StatusReady, ReadyAt: &now, UpdatedAt: now})

	var completions atomic.Int32
	w := NewWatcher(poller, "ord-1",
		WithPollInterval(5*time.Millisecond),
		WithTrackerOptions(WithWindow(time.Hour)),
		WithOnComplete(func(View) { completions.Add(1) }),
	)
	done := runWatcher(t, context.Background(), w)

	require.Eventually(t, func() bool { return poller.calls.Load() >= 2 }, time.Second, time.Millisecond)
	poller.set(domain.StatusSnapshot{OrderID: "ord-1", Status: domain.StatusDelivered, UpdatedAt: now.Add(time.Second)})

	select {
	case view := <-done:
		assert.Equal(t, CompletionDelivered, view.Completion)
		assert.Equal(t, StageDelivered, view.Stage)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after delivery")
	}
	assert.Equal(t, int32(1), completions.Load())
}

func TestWatcher_FallbackFiresWithoutDelivery(t *testing.T) {
	poller := &scriptedPoller{}
	now := time.Now().UTC()
	poller.set(domain.StatusSnapshot{OrderID: "ord-1", Status: domain.StatusReady, ReadyAt: &now, UpdatedAt: now})

	var (
		mu    sync.Mutex
		views []View
	)
	completed := make(chan View, 2)
	w := NewWatcher(poller, "ord-1",
		WithPollInterval(time.Hour),
		WithTrackerOptions(WithWindow(50*time.Millisecond)),
		WithOnChange(func(v View) {
			mu.Lock()
			views = append(views, v)
			mu.Unlock()
		}),
		WithOnComplete(func(v View) { completed <- v }),
	)
	done := runWatcher(t, context.Background(), w)

	select {
	case view := <-completed:
		assert.Equal(t, CompletionFallback, view.Completion)
	case <-time.After(2 * time.Second):
		t.Fatal("fallback did not fire")
	}
	<-done
	assert.Equal(t, int32(1), poller.calls.Load())
	assert.Len(t, completed, 0)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, views, 2)
	assert.Equal(t, StageReadyForPickup, views[0].Stage)
	assert.Equal(t, StageDelivered, views[1].Stage)
}

func TestWatcher_SkipsPollWhileOneIsInFlight(t *testing.T) {
	release := make(chan struct{})
	var inFlight, maxInFlight, calls atomic.Int32
	poller := PollerFunc(func(ctx context.Context, orderID string) (*domain.StatusSnapshot, error) {
		calls.Add(1)
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		select {
		case <-release:
		case <-ctx.Done():
		}
		return &domain.StatusSnapshot{OrderID: orderID, Status: domain.StatusPreparing}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	w := NewWatcher(poller, "ord-1", WithPollInterval(2*time.Millisecond))
	done := runWatcher(t, ctx, w)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	close(release)
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, int32(1), maxInFlight.Load())
}

func TestWatcher_TeardownSilencesCallbacks(t *testing.T) {
	poller := &scriptedPoller{}
	now := time.Now().UTC()
	poller.set(domain.StatusSnapshot{OrderID: "ord-1", Status: domain.StatusReady, ReadyAt: &now, UpdatedAt: now})

	var completions atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	w := NewWatcher(poller, "ord-1",
		WithPollInterval(5*time.Millisecond),
		WithTrackerOptions(WithWindow(80*time.Millisecond)),
		WithOnComplete(func(View) { completions.Add(1) }),
	)
	done := runWatcher(t, ctx, w)

	require.Eventually(t, func() bool { return poller.calls.Load() >= 1 }, time.Second, time.Millisecond)
	cancel()
	view := <-done
	assert.False(t, view.Completed())

	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, completions.Load())
}

func TestWatcher_PollFailuresAreIgnored(t *testing.T) {
	poller := &scriptedPoller{err: errors.New("gateway timeout")}
	ctx, cancel := context.WithCancel(context.Background())
	var changes atomic.Int32
	w := NewWatcher(poller, "ord-1",
		WithPollInterval(2*time.Millisecond),
		WithOnChange(func(View) { changes.Add(1) }),
	)
	done := runWatcher(t, ctx, w)

	require.Eventually(t, func() bool { return poller.calls.Load() >= 3 }, time.Second, time.Millisecond)
	assert.Zero(t, changes.Load())

	poller.mu.Lock()
	poller.err = nil
	poller.current = domain.StatusSnapshot{OrderID: "ord-1", Status: domain.StatusCancelled}
	poller.mu.Unlock()

	select {
	case view := <-done:
		assert.True(t, view.Cancelled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
	cancel()
}

func TestWatcher_RequiresPoller(t *testing.T) {
	_, err := NewWatcher(nil, "ord-1").Run(context.Background())
	assert.Error(t, err)
}

type manualClock struct {
	mu    sync.Mutex
	now   time.Time
	armed chan time.Duration
	fire  chan time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *manualClock) Timer(d time.Duration) (<-chan time.Time, func() bool) {
	c.armed <- d
	return c.fire, func() bool { return true }
}

func TestWatcher_FallbackRunsOnInjectedClock(t *testing.T) {
	readyAt := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	clock := &manualClock{now: readyAt.Add(time.Minute), armed: make(chan time.Duration, 4), fire: make(chan time.Time)}
	poller := &scriptedPoller{}
	poller.set(domain.StatusSnapshot{OrderID: "ord-1", Status: domain.StatusReady, ReadyAt: &readyAt, UpdatedAt: readyAt})

	completed := make(chan View, 1)
	w := NewWatcher(poller, "ord-1",
		WithPollInterval(time.Hour),
		WithTrackerOptions(WithWindow(3*time.Minute)),
		WithClock(clock.Now, clock.Timer),
		WithOnComplete(func(v View) { completed <- v }),
	)
	done := runWatcher(t, context.Background(), w)

	select {
	case d := <-clock.armed:
		assert.Equal(t, 2*time.Minute, d)
	case <-time.After(2 * time.Second):
		t.Fatal("fallback timer was never armed")
	}
	clock.Advance(2 * time.Minute)
	clock.fire <- clock.Now()

	select {
	case view := <-completed:
		assert.Equal(t, CompletionFallback, view.Completion)
	case <-time.After(2 * time.Second):
		t.Fatal("fallback did not complete on the injected clock")
	}
	<-done
}
