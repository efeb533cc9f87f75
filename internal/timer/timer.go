// Package timer implements the per-stage countdown clock. A Timer does not
// read the wall clock: the host calls Tick once per elapsed second, which
// makes pausing, resuming and expiry deterministic.
package timer

// State is the lifecycle state of a Timer.
type State int

const (
	Idle State = iota
	Running
	Paused
	Expired
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Timer counts down whole seconds and calls onExpire once when it reaches zero.
type Timer struct {
	duration  int
	remaining int
	state     State
	autoStart bool
	onExpire  func()
}

// Option configures a Timer.
type Option func(*Timer)

// WithAutoStart makes the timer run on creation and after every Reset.
func WithAutoStart() Option {
	return func(t *Timer) { t.autoStart = true }
}

// New returns a timer of duration seconds.
func New(duration int, onExpire func(), opts ...Option) *Timer {
	t := &Timer{duration: duration, remaining: duration, onExpire: onExpire}
	for _, opt := range opts {
		opt(t)
	}
	if t.autoStart {
		t.run()
	}
	return t
}

// State returns the current state.
func (t *Timer) State() State { return t.state }

// Remaining returns the seconds left.
func (t *Timer) Remaining() int { return t.remaining }

// Duration returns the configured duration in seconds.
func (t *Timer) Duration() int { return t.duration }

// Start rewinds to the full duration and runs.
func (t *Timer) Start() {
	t.remaining = t.duration
	t.run()
}

// Resume runs from the current remaining time. It has no effect on a running
// or expired timer.
func (t *Timer) Resume() {
	if t.state == Idle || t.state == Paused {
		t.run()
	}
}

// Pause freezes a running timer.
func (t *Timer) Pause() {
	if t.state == Running {
		t.state = Paused
	}
}

// Reset rewinds to newDuration (or the configured duration when omitted)
// and returns to idle, or straight to running for auto-start timers.
// The configured duration itself is unchanged.
func (t *Timer) Reset(newDuration ...int) {
	t.remaining = t.duration
	if len(newDuration) > 0 {
		t.remaining = newDuration[0]
	}
	t.state = Idle
	if t.autoStart {
		t.run()
	}
}

// SetDuration changes the configured duration. Unless the timer is running
// the remaining time is re-armed to the new duration.
func (t *Timer) SetDuration(d int) {
	t.duration = d
	if t.state == Running {
		return
	}
	t.remaining = d
	if t.state == Expired {
		t.state = Idle
	}
}

// Tick advances a running timer by one second. Ticks in any other state are
// ignored, so a tick arriving after Pause can never expire the timer.
func (t *Timer) Tick() {
	if t.state != Running {
		return
	}
	t.remaining--
	if t.remaining <= 0 {
		t.expire()
	}
}

func (t *Timer) run() {
	t.state = Running
	if t.remaining <= 0 {
		t.expire()
	}
}

// expire moves to Expired before calling onExpire, so a callback that ticks
// or restarts this timer cannot fire it twice for one countdown.
func (t *Timer) expire() {
	t.remaining = 0
	t.state = Expired
	if t.onExpire != nil {
		t.onExpire()
	}
}
