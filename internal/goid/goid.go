// Package goid resolves the id of the calling goroutine.
//
// The runtime does not expose goroutine ids on purpose; the registry-style
// state in treelog (per-goroutine context scopes, console suppression) still
// needs a stable key for "the current thread of control", so we parse the id
// out of the first line of the stack trace. The result must only ever be
// used as an opaque map key.
package goid

import (
	"bytes"
	"runtime"
	"strconv"
)

var prefix = []byte("goroutine ")

// ID returns the id of the calling goroutine.
func ID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// First line looks like: "goroutine 18 [running]:"
	b := bytes.TrimPrefix(buf[:n], prefix)
	i := bytes.IndexByte(b, ' ')
	if i < 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(b[:i]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
