package ratelimit

import (
	"sync"
	"time"

	"github.com/juju/clock"
)

// DefaultWindow replaces a non-positive window, which would reset the counter on every call.
const DefaultWindow = time.Hour

// Decision is the answer to one acquisition attempt.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

type Status struct {
	Current   int
	Max       int
	ResetTime time.Time
}

func (s Status) Limited() bool {
	return s.Current >= s.Max
}

func (s Status) Remaining() int {
	if s.Current >= s.Max {
		return 0
	}
	return s.Max - s.Current
}

// Limiter is a fixed-window counter shared by every worker of the process.
type Limiter struct {
	clock  clock.Clock
	max    int
	window time.Duration

	mu          sync.Mutex
	count       int
	windowStart time.Time
}

func New(clk clock.Clock, limit int, window time.Duration) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}

	return &Limiter{
		clock:       clk,
		max:         limit,
		window:      window,
		windowStart: clk.Now(),
	}
}

// TryAcquire takes one slot of the current window without blocking.
func (l *Limiter) TryAcquire() Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.roll(now)

	if l.count >= l.max {
		return Decision{Allowed: false, RetryAfter: l.windowStart.Add(l.window).Sub(now)}
	}
	l.count++

	return Decision{Allowed: true}
}

func (l *Limiter) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.roll(l.clock.Now())

	return Status{
		Current:   l.count,
		Max:       l.max,
		ResetTime: l.windowStart.Add(l.window),
	}
}

// roll starts a new window once the current one has elapsed. Windows stay aligned to
// the first window start so that reset times are predictable.
func (l *Limiter) roll(now time.Time) {
	elapsed := now.Sub(l.windowStart)
	if elapsed < l.window {
		return
	}

	l.windowStart = l.windowStart.Add(elapsed.Truncate(l.window))
	l.count = 0
}
