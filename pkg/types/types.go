// Package types holds the shared vocabulary of the treelog packages: log
// levels and the augmented record handed from the logger core to sinks and
// formatters. It sits at the bottom of the dependency graph so both the root
// package and pkg/resilience can speak it without importing each other.
package types

import (
	"time"
)

// Level is a log severity.
type Level int

const (
	// LevelDebug is for diagnostic output.
	LevelDebug Level = iota
	// LevelInfo is for routine output.
	LevelInfo
	// LevelNotice sits between info and warning; block open/close
	// announcements are emitted at this level.
	LevelNotice
	// LevelWarn is for recoverable anomalies.
	LevelWarn
	// LevelError is for failures.
	LevelError
)

// String returns the level's conventional upper-case name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelNotice:
		return "NOTICE"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "LOG"
	}
}

// Record is one augmented log event. It is created on the emitting
// goroutine, enriched with the goroutine's flattened context state, handed
// to sinks and discarded.
type Record struct {
	// Level is the record's severity.
	Level Level

	// Message is the formatted message text.
	Message string

	// Time is the record's creation time.
	Time time.Time

	// Name is the emitting logger's name.
	Name string

	// Context is the flattened context-tag string, bracketed and
	// semicolon-joined ("[a;b]"), or empty when no tags are active.
	Context string

	// Indentation is the emitting goroutine's block nesting depth.
	Indentation int

	// Drawing is the tree-drawing prefix derived from Indentation.
	Drawing string

	// Fields carries free-form extra attributes, including the flattened
	// context values.
	Fields map[string]interface{}
}

// Logger is the minimal emitting surface the auxiliary packages log through.
// The root treelog logger implements it; a nil Logger means silence.
type Logger interface {
	// Logf formats and emits a message at the given level.
	Logf(level Level, format string, args ...interface{})
}
