// Package resilience provides generic retry loops, exception-to-boolean
// style predicates and error-swallowing guards, all sharing one error
// classification scheme.
//
// Classification order, each step short-circuiting to propagation: errors on
// the unacceptable list (which always includes the built-in
// programmer-error kinds), errors tagged as raised asynchronously from
// another goroutine, errors not on the acceptable list, errors rejected by
// the predicate, and finally an exhausted retry budget. Only the remaining
// case is handled — retried, swallowed or mapped to false.
//
// Basic Usage:
//
//	err := resilience.Retry(resilience.Config{
//		Stopper: resilience.Times(3),
//		Backoff: resilience.NewRandomExponential(time.Second, 30*time.Second, 1.5),
//		Logger:  logger,
//	}, func() error {
//		return client.Reconnect()
//	})
package resilience

import (
	"context"
	"runtime"
	"time"

	"github.com/pkg/errors"

	"github.com/wayneeseguin/treelog/pkg/errs"
	"github.com/wayneeseguin/treelog/pkg/types"
)

// unrecoverableError marks an error that must never be retried or swallowed,
// regardless of the acceptable configuration.
type unrecoverableError struct {
	err error
}

// Error implements the error interface.
func (u *unrecoverableError) Error() string { return u.err.Error() }

// Unwrap exposes the marked error.
func (u *unrecoverableError) Unwrap() error { return u.err }

// Unrecoverable marks err so retry and shield loops propagate it
// immediately. A nil err stays nil.
func Unrecoverable(err error) error {
	if err == nil {
		return nil
	}
	return &unrecoverableError{err: err}
}

// builtinUnacceptable reports whether err is one of the error kinds that are
// never retried no matter what the caller configured: panics surfaced as
// runtime errors, cancellation, and explicitly marked unrecoverable errors.
func builtinUnacceptable(err error) bool {
	var unrecoverable *unrecoverableError
	if errors.As(err, &unrecoverable) {
		return true
	}
	var runtimeErr runtime.Error
	if errors.As(err, &runtimeErr) {
		return true
	}
	return errors.Is(err, context.Canceled)
}

// Classify configures which errors a resilience boundary handles.
type Classify struct {
	// Acceptable lists errors.Is targets that may be handled. Empty means
	// every error is acceptable.
	Acceptable []error

	// Unacceptable lists errors.Is targets that always propagate. The
	// built-in programmer-error kinds are unacceptable regardless of this
	// list.
	Unacceptable []error

	// Pred, when set, is consulted after the lists; returning false
	// propagates the error instead of handling it.
	Pred func(error) bool
}

// matchesAny reports whether err matches any target via errors.Is.
func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// propagate reports whether err must escape the boundary instead of being
// handled, per the shared classification order (budget excluded).
func (c Classify) propagate(err error) bool {
	if builtinUnacceptable(err) || matchesAny(err, c.Unacceptable) {
		return true
	}
	if errs.IsAsync(err) {
		return true
	}
	if len(c.Acceptable) > 0 && !matchesAny(err, c.Acceptable) {
		return true
	}
	if c.Pred != nil && !c.Pred(err) {
		return true
	}
	return false
}

// Config configures a retry loop.
type Config struct {
	Classify

	// Stopper is the retry budget. Required.
	Stopper Stopper

	// Backoff computes the sleep between attempts. Nil means no sleep.
	Backoff Backoff

	// LogLevel is the severity of the per-retry announcements.
	LogLevel types.Level

	// Logger receives the announcements. Nil means silence.
	Logger types.Logger

	// sleep is a test seam; time.Sleep when nil.
	sleep func(time.Duration)
}

func (cfg *Config) logf(format string, args ...interface{}) {
	if cfg.Logger != nil {
		cfg.Logger.Logf(cfg.LogLevel, format, args...)
	}
}

// Retry calls op until it succeeds, an error classifies for propagation, or
// the stop condition expires. The error that propagates is always the last
// one op returned, never a wrapper.
func Retry(cfg Config, op func() error) error {
	if cfg.Stopper == nil {
		panic("resilience: Retry requires a stop condition")
	}
	sleep := cfg.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	for {
		err := op()
		if err == nil {
			return nil
		}
		if cfg.propagate(err) {
			return err
		}
		if cfg.Stopper.Expired() {
			return err
		}

		cfg.logf("Error thrown: %v", err)
		var delay time.Duration
		if cfg.Backoff != nil {
			delay = cfg.Backoff.Next()
		}
		cfg.logf("Retrying... (%s remain) in %s", cfg.Stopper.Remaining(), delay)
		sleep(delay)
	}
}

// RetryValue is Retry for operations that produce a value. On propagation
// the zero value accompanies the error.
func RetryValue[T any](cfg Config, op func() (T, error)) (T, error) {
	var result T
	err := Retry(cfg, func() error {
		var opErr error
		result, opErr = op()
		return opErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// Retrying wraps fn with a retry loop using configuration bound at wrap
// time. Stop conditions and backoff schedules are stateful, so newConfig is
// invoked on every call of the wrapper to give each invocation a fresh
// budget.
func Retrying(newConfig func() Config) func(func() error) func() error {
	return func(fn func() error) func() error {
		return func() error {
			return Retry(newConfig(), fn)
		}
	}
}
