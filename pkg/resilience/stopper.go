package resilience

import (
	"fmt"
	"time"
)

// Stopper answers whether a retry budget is exhausted. Expired consumes or
// checks the budget and is called exactly once per failed attempt; Remaining
// describes what is left, for the retry announcement.
type Stopper interface {
	Expired() bool
	Remaining() string
}

// counterStopper expires after a fixed number of failed attempts.
type counterStopper struct {
	times int
}

// Times returns a stop condition allowing n retries after the initial
// attempt: the operation runs at most n+1 times. The budget is decremented
// and checked after each failed call, so the attempt that trips the expiry
// is still executed.
func Times(n int) Stopper {
	return &counterStopper{times: n}
}

// Expired consumes one attempt and reports whether the budget ran out.
func (c *counterStopper) Expired() bool {
	c.times--
	return c.times < 0
}

// Remaining describes the attempts left.
func (c *counterStopper) Remaining() string {
	return fmt.Sprintf("%d attempts", c.times)
}

// timerStopper adapts a Timer into a stop condition.
type timerStopper struct {
	timer *Timer
}

// For returns a stop condition expiring after the given duration of retrying.
func For(d time.Duration) Stopper {
	return &timerStopper{timer: NewTimer(d)}
}

// WithTimer adapts an externally owned timer into a stop condition, so one
// deadline can govern several retry loops.
func WithTimer(t *Timer) Stopper {
	return &timerStopper{timer: t}
}

// Expired reports whether the deadline has passed.
func (t *timerStopper) Expired() bool {
	return t.timer.Expired()
}

// Remaining describes the time left.
func (t *timerStopper) Remaining() string {
	return t.timer.Remaining().Round(time.Millisecond).String()
}
