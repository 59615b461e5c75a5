package errs

// asyncError tags an error as having been raised asynchronously from another
// goroutine. Retry and resilience logic re-raise such errors immediately
// instead of retrying or swallowing them, so a cross-goroutine abort is never
// absorbed by a resilience boundary on the receiving side.
type asyncError struct {
	err error
}

// Error implements the error interface.
func (a *asyncError) Error() string { return a.err.Error() }

// Unwrap exposes the tagged error.
func (a *asyncError) Unwrap() error { return a.err }

// MarkAsync tags err as raised asynchronously from another goroutine.
// A nil err stays nil.
func MarkAsync(err error) error {
	if err == nil {
		return nil
	}
	return &asyncError{err: err}
}

// IsAsync reports whether err carries the asynchronous tag anywhere in its
// chain.
func IsAsync(err error) bool {
	for err != nil {
		if _, ok := err.(*asyncError); ok {
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
