package services

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultCooldown is the per-action cooldown for session calls.
// Repeated identical actions inside the window are dropped, which
// suppresses duplicate network calls from rapid user input.
const DefaultCooldown = 2000 * time.Millisecond

// ActionLimiter enforces a per-action-kind cooldown. It is a token
// bucket with burst 1: one action is admitted per cooldown interval,
// and a denied attempt neither queues nor extends the window.
//
// The clock is injectable so tests can drive it deterministically.
type ActionLimiter struct {
	mu     sync.Mutex
	bucket *rate.Limiter
	now    func() time.Time
}

// NewActionLimiter creates a limiter using the wall clock.
func NewActionLimiter(cooldown time.Duration) *ActionLimiter {
	return NewActionLimiterWithClock(cooldown, time.Now)
}

// NewActionLimiterWithClock creates a limiter with an explicit clock.
func NewActionLimiterWithClock(cooldown time.Duration, now func() time.Time) *ActionLimiter {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &ActionLimiter{
		bucket: rate.NewLimiter(rate.Every(cooldown), 1),
		now:    now,
	}
}

// Allow reports whether the action may proceed now. An admitted action
// consumes the window regardless of whether the resulting call succeeds;
// a denied attempt consumes nothing.
func (l *ActionLimiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bucket.AllowN(l.now(), 1)
}
