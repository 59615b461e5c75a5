package resilience

import (
	"testing"
	"time"
)

// TestExponentialBackoff tests the capped growth schedule
func TestExponentialBackoff(t *testing.T) {
	backoff := NewExponential(1*time.Second, 30*time.Second, 2)

	expected := []time.Duration{
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second,
		30 * time.Second,
	}
	for i, want := range expected {
		if got := backoff.Next(); got != want {
			t.Errorf("Call %d: expected %s, got %s", i+1, want, got)
		}
	}
}

// TestExponentialBackoffDefaultBase tests the base fallback
func TestExponentialBackoffDefaultBase(t *testing.T) {
	backoff := NewExponential(2*time.Second, time.Minute, 0)
	if got := backoff.Next(); got != 3*time.Second {
		t.Errorf("Expected 3s with the default base of 1.5, got %s", got)
	}
}

// TestRandomExponentialBackoff tests that the jittered delay decouples from
// the internally tracked ceiling
func TestRandomExponentialBackoff(t *testing.T) {
	backoff := NewRandomExponential(1*time.Second, 30*time.Second, 2)
	backoff.rand = func() float64 { return 0.5 }

	// Ceiling grows 2, 4, 8; returned delay is 0.5*ceiling + initial.
	expected := []time.Duration{
		2 * time.Second,
		3 * time.Second,
		5 * time.Second,
	}
	for i, want := range expected {
		if got := backoff.Next(); got != want {
			t.Errorf("Call %d: expected %s, got %s", i+1, want, got)
		}
	}

	// The ceiling itself kept growing behind the jitter.
	if backoff.current != 8*time.Second {
		t.Errorf("Expected the tracked ceiling at 8s, got %s", backoff.current)
	}
}

// TestRandomExponentialBackoffCap tests that jittered delays never exceed
// the maximum
func TestRandomExponentialBackoffCap(t *testing.T) {
	backoff := NewRandomExponential(5*time.Second, 10*time.Second, 4)
	backoff.rand = func() float64 { return 1.0 }

	for i := 0; i < 5; i++ {
		if got := backoff.Next(); got > 10*time.Second {
			t.Errorf("Call %d: delay %s exceeds the maximum", i+1, got)
		}
	}
}

// TestFixedBackoff tests the constant schedule
func TestFixedBackoff(t *testing.T) {
	backoff := Fixed(250 * time.Millisecond)
	for i := 0; i < 3; i++ {
		if got := backoff.Next(); got != 250*time.Millisecond {
			t.Errorf("Expected a constant 250ms, got %s", got)
		}
	}
}
