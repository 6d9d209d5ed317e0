package reconcile

import (
	"time"

	"github.com/Apurer/fulfillment-api/internal/domains/orders/domain"
)

// DefaultFallbackWindow is how long after the ready timestamp completion is assumed.
const DefaultFallbackWindow = 3 * time.Minute

// Completion names the path that completed a view.
type Completion string

const (
	CompletionNone      Completion = ""
	CompletionDelivered Completion = "delivered"
	CompletionFallback  Completion = "fallback"
)

// View is the derived progress state of one order.
type View struct {
	OrderID    string        `json:"orderId"`
	Status     domain.Status `json:"status"`
	Stage      Stage         `json:"stage"`
	Completion Completion    `json:"completion,omitempty"`
	Cancelled  bool          `json:"cancelled"`
	ReadyAt    *time.Time    `json:"readyAt,omitempty"`
}

// Completed reports whether either completion path has fired.
func (v View) Completed() bool { return v.Completion != CompletionNone }

// Done reports whether the view can no longer change.
func (v View) Done() bool { return v.Completed() || v.Cancelled }

// Update is the outcome of feeding the tracker one input.
type Update struct {
	View View
	// Changed is set when any field of the view differs from before.
	Changed bool
	// Completed is set exactly once per tracker, on the input that completed it.
	Completed bool
}

// TrackerOption customises a Tracker.
type TrackerOption func(*Tracker)

// WithWindow overrides the fallback window.
func WithWindow(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d > 0 {
			t.window = d
		}
	}
}

// WithStrictReadyWindow restricts the fallback countdown to READY itself, so
// dispatch to OUT_FOR_DELIVERY clears it.
func WithStrictReadyWindow() TrackerOption {
	return func(t *Tracker) { t.strict = true }
}

// Tracker folds polled snapshots into a View. It performs no I/O and keeps no
// timers; callers pass the current time and schedule Deadline themselves.
// A Tracker is not safe for concurrent use.
type Tracker struct {
	window time.Duration
	strict bool

	view       View
	readyAt    *time.Time
	entered    bool
	lastUpdate time.Time
	observed   bool
}

// NewTracker starts a tracker with DefaultFallbackWindow. By default the
// countdown keeps running through OUT_FOR_DELIVERY; WithStrictReadyWindow
// clears it as soon as the order leaves READY.
func NewTracker(orderID string, opts ...TrackerOption) *Tracker {
	t := &Tracker{window: DefaultFallbackWindow, view: View{OrderID: orderID}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// View returns the current view.
func (t *Tracker) View() View {
	v := t.view
	v.ReadyAt = copyTime(t.readyAt)
	return v
}

// Deadline returns when the fallback fires, if a countdown is running.
func (t *Tracker) Deadline() (time.Time, bool) {
	if t.readyAt == nil || t.view.Done() {
		return time.Time{}, false
	}
	return t.readyAt.Add(t.window), true
}

// Observe applies a polled snapshot observed at now.
func (t *Tracker) Observe(snapshot domain.StatusSnapshot, now time.Time) Update {
	before := t.View()
	if t.view.Done() {
		return Update{View: before}
	}
	if t.observed && !snapshot.UpdatedAt.IsZero() && snapshot.UpdatedAt.Before(t.lastUpdate) {
		return Update{View: before}
	}
	t.observed = true
	if snapshot.UpdatedAt.After(t.lastUpdate) {
		t.lastUpdate = snapshot.UpdatedAt
	}
	t.view.Status = snapshot.Status

	switch {
	case snapshot.Status == domain.StatusCancelled:
		t.readyAt = nil
		t.view.Cancelled = true
		return t.result(before, false)
	case snapshot.Status == domain.StatusDelivered:
		t.readyAt = nil
		t.view.Stage = StageDelivered
		t.view.Completion = CompletionDelivered
		return t.result(before, true)
	}

	if t.inWindow(snapshot.Status) {
		if t.readyAt == nil {
			at := now.UTC()
			if !t.entered && snapshot.ReadyAt != nil {
				at = snapshot.ReadyAt.UTC()
			}
			t.readyAt = &at
		}
		t.entered = true
	} else {
		t.readyAt = nil
	}

	if stage, ok := StageFor(snapshot.Status); ok && stage.after(t.view.Stage) {
		t.view.Stage = stage
	}

	if deadline, ok := t.Deadline(); ok && !now.Before(deadline) {
		return t.fallback(before)
	}
	return t.result(before, false)
}

// Expire fires the fallback when now has reached the deadline.
func (t *Tracker) Expire(now time.Time) Update {
	before := t.View()
	deadline, ok := t.Deadline()
	if !ok || now.Before(deadline) {
		return Update{View: before}
	}
	return t.fallback(before)
}

func (t *Tracker) fallback(before View) Update {
	t.view.Stage = StageDelivered
	t.view.Completion = CompletionFallback
	return t.result(before, true)
}

func (t *Tracker) result(before View, completed bool) Update {
	after := t.View()
	return Update{View: after, Changed: !sameView(before, after), Completed: completed}
}

func (t *Tracker) inWindow(status domain.Status) bool {
	if status == domain.StatusReady {
		return true
	}
	return !t.strict && status == domain.StatusOutForDelivery
}

func sameView(a, b View) bool {
	if a.Status != b.Status || a.Stage != b.Stage || a.Completion != b.Completion || a.Cancelled != b.Cancelled {
		return false
	}
	switch {
	case a.ReadyAt == nil && b.ReadyAt == nil:
		return true
	case a.ReadyAt == nil || b.ReadyAt == nil:
		return false
	default:
		return a.ReadyAt.Equal(*b.ReadyAt)
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
