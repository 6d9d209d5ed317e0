package reconcile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
)

// DefaultPollInterval is the cadence of status polls.
const DefaultPollInterval = 5 * time.Second

// Poller fetches the current poll view of an order.
type Poller interface {
	PollStatus(ctx context.Context, orderID string) (*domain.StatusSnapshot, error)
}

// PollerFunc adapts a function to Poller.
type PollerFunc func(ctx context.Context, orderID string) (*domain.StatusSnapshot, error)

func (f PollerFunc) PollStatus(ctx context.Context, orderID string) (*domain.StatusSnapshot, error) {
	return f(ctx, orderID)
}

// Option customises a Watcher.
type Option func(*Watcher)

// WithPollInterval overrides the poll cadence.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithTrackerOptions forwards options to the underlying Tracker.
func WithTrackerOptions(opts ...TrackerOption) Option {
	return func(w *Watcher) { w.trackerOpts = append(w.trackerOpts, opts...) }
}

// WithOnChange registers a callback for every view change.
func WithOnChange(fn func(View)) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnComplete registers the callback fired once when the view completes.
func WithOnComplete(fn func(View)) Option {
	return func(w *Watcher) { w.onComplete = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// TimerFunc arms a countdown of d and returns its channel and a stop function.
type TimerFunc func(d time.Duration) (<-chan time.Time, func() bool)

// WithClock overrides the time source used to stamp observations and the
// timer that runs the fallback countdown. Both must run on the same clock; a
// nil newTimer keeps wall-clock timers, which only suits a now that tracks
// wall time.
func WithClock(now func() time.Time, newTimer TimerFunc) Option {
	return func(w *Watcher) {
		if now != nil {
			w.now = now
		}
		if newTimer != nil {
			w.newTimer = newTimer
		}
	}
}

func wallTimer(d time.Duration) (<-chan time.Time, func() bool) {
	t := time.NewTimer(d)
	return t.C, t.Stop
}

// Watcher polls one order and races the fallback timer of its Tracker.
type Watcher struct {
	poller      Poller
	orderID     string
	interval    time.Duration
	trackerOpts []TrackerOption
	onChange    func(View)
	onComplete  func(View)
	logger      *slog.Logger
	now         func() time.Time
	newTimer    TimerFunc
}

func NewWatcher(poller Poller, orderID string, opts ...Option) *Watcher {
	w := &Watcher{
		poller:   poller,
		orderID:  orderID,
		interval: DefaultPollInterval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
		newTimer: wallTimer,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type pollResult struct {
	snapshot *domain.StatusSnapshot
	err      error
}

// Run polls until the view is done or ctx is cancelled, returning the last view.
// Polls never overlap; a tick that finds one in flight is skipped. No callback
// runs once ctx is done.
func (w *Watcher) Run(ctx context.Context) (View, error) {
	if w.poller == nil {
		return View{}, errors.New("reconcile watcher has no poller")
	}
	tracker := NewTracker(w.orderID, w.trackerOpts...)

	results := make(chan pollResult, 1)
	inFlight := false
	poll := func() {
		if inFlight {
			w.logger.Debug("previous poll still in flight, skipping", slog.String("orderId", w.orderID))
			return
		}
		inFlight = true
		go func() {
			snapshot, err := w.poller.PollStatus(ctx, w.orderID)
			results <- pollResult{snapshot: snapshot, err: err}
		}()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var (
		timerC    <-chan time.Time
		timerStop func() bool
	)
	stopTimer := func() {
		if timerStop != nil {
			timerStop()
			timerC, timerStop = nil, nil
		}
	}
	defer stopTimer()
	schedule := func() {
		stopTimer()
		deadline, ok := tracker.Deadline()
		if !ok {
			return
		}
		timerC, timerStop = w.newTimer(deadline.Sub(w.now()))
	}

	poll()
	for {
		select {
		case <-ctx.Done():
			return tracker.View(), ctx.Err()

		case <-ticker.C:
			poll()

		case res := <-results:
			inFlight = false
			if ctx.Err() != nil {
				return tracker.View(), ctx.Err()
			}
			if res.err != nil || res.snapshot == nil {
				w.logPollFailure(res.err)
				continue
			}
			if w.emit(ctx, tracker.Observe(*res.snapshot, w.now())) {
				return tracker.View(), nil
			}
			schedule()

		case <-timerC:
			timerC, timerStop = nil, nil
			if w.emit(ctx, tracker.Expire(w.now())) {
				return tracker.View(), nil
			}
			schedule()
		}
	}
}

// emit delivers callbacks for an update and reports whether the view is done.
func (w *Watcher) emit(ctx context.Context, update Update) bool {
	if ctx.Err() != nil {
		return update.View.Done()
	}
	if update.Changed && w.onChange != nil {
		w.onChange(update.View)
	}
	if update.Completed {
		w.logger.Info("order view completed",
			slog.String("orderId", w.orderID),
			slog.String("completion", string(update.View.Completion)))
		if w.onComplete != nil && ctx.Err() == nil {
			w.onComplete(update.View)
		}
	}
	return update.View.Done()
}

func (w *Watcher) logPollFailure(err error) {
	if err == nil {
		err = errors.New("empty snapshot")
	}
	w.logger.Warn("status poll failed", slog.String("orderId", w.orderID), slog.String("error", err.Error()))
}
