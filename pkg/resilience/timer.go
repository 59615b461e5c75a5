package resilience

import (
	"time"
)

// Timer tracks elapsed time against an optional expiration. It doubles as a
// retry stop condition: a retry loop driven by a Timer keeps attempting
// until the expiration passes.
type Timer struct {
	start      time.Time
	expiration time.Duration
	now        func() time.Time // test seam
}

// NewTimer starts a timer expiring after the given duration. A zero
// expiration never expires.
func NewTimer(expiration time.Duration) *Timer {
	return &Timer{start: time.Now(), expiration: expiration, now: time.Now}
}

// Elapsed returns the time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return t.now().Sub(t.start)
}

// Expired reports whether the expiration has passed.
func (t *Timer) Expired() bool {
	if t.expiration == 0 {
		return false
	}
	return t.Elapsed() >= t.expiration
}

// Remaining returns the time left before expiration, clamped at zero.
func (t *Timer) Remaining() time.Duration {
	if t.expiration == 0 {
		return 0
	}
	left := t.expiration - t.Elapsed()
	if left < 0 {
		return 0
	}
	return left
}
