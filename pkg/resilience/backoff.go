package resilience

import (
	"fmt"
	"math/rand"
	"time"
)

// Backoff computes the delay before the next retry attempt. Next may mutate
// internal growth state.
type Backoff interface {
	Next() time.Duration
}

// fixedBackoff sleeps the same delay every time.
type fixedBackoff struct {
	delay time.Duration
}

// Fixed returns a backoff with a constant delay.
func Fixed(delay time.Duration) Backoff {
	return &fixedBackoff{delay: delay}
}

// Next returns the constant delay.
func (f *fixedBackoff) Next() time.Duration {
	return f.delay
}

// ExponentialBackoff grows the delay by a multiplicative base on every call,
// capped at a maximum.
type ExponentialBackoff struct {
	initial time.Duration
	maximum time.Duration
	base    float64
	current time.Duration
}

// NewExponential returns an exponential backoff starting at initial growing
// by base each call, capped at maximum. A base at or below 1 defaults to 1.5.
func NewExponential(initial, maximum time.Duration, base float64) *ExponentialBackoff {
	if base <= 1 {
		base = 1.5
	}
	return &ExponentialBackoff{
		initial: initial,
		maximum: maximum,
		base:    base,
		current: initial,
	}
}

// Next advances the growth state and returns the new delay:
// current = min(current*base, maximum).
func (b *ExponentialBackoff) Next() time.Duration {
	b.grow()
	return b.current
}

func (b *ExponentialBackoff) grow() {
	grown := time.Duration(float64(b.current) * b.base)
	if grown > b.maximum {
		grown = b.maximum
	}
	b.current = grown
}

// String describes the backoff state for retry announcements.
func (b *ExponentialBackoff) String() string {
	return fmt.Sprintf("ExponentialBackoff(initial=%s, base=%g, maximum=%s, current=%s)",
		b.initial, b.base, b.maximum, b.current)
}

// RandomExponentialBackoff tracks the same growth ceiling as
// ExponentialBackoff but jitters every returned delay: the result is
// uniform(0,1)*current + initial, decoupling what callers sleep from the
// internally tracked ceiling.
type RandomExponentialBackoff struct {
	ExponentialBackoff
	rand func() float64 // test seam
}

// NewRandomExponential returns a jittered exponential backoff.
func NewRandomExponential(initial, maximum time.Duration, base float64) *RandomExponentialBackoff {
	return &RandomExponentialBackoff{
		ExponentialBackoff: *NewExponential(initial, maximum, base),
		rand:               rand.Float64,
	}
}

// Next advances the growth state and returns a jittered delay, capped at the
// maximum.
func (b *RandomExponentialBackoff) Next() time.Duration {
	b.grow()
	delay := time.Duration(b.rand()*float64(b.current)) + b.initial
	if delay > b.maximum {
		delay = b.maximum
	}
	return delay
}
