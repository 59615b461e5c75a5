package treelog

import (
	"github.com/wayneeseguin/treelog/pkg/types"
)

const (
	// Log levels, re-exported from pkg/types for callers of this package.
	LevelDebug  = types.LevelDebug
	LevelInfo   = types.LevelInfo
	LevelNotice = types.LevelNotice
	LevelWarn   = types.LevelWarn
	LevelError  = types.LevelError
)

const (
	// defaultTimestampFormat is the console timestamp layout.
	defaultTimestampFormat = "15:04:05.000"

	// clearEOL erases from the cursor to the end of the line on ttys.
	clearEOL = "\x1b[0K"

	// contextSeparator joins the active context tags inside brackets.
	contextSeparator = ";"
)

// Reserved record field names that caller-supplied extras must not overwrite.
const (
	fieldMessage   = "message"
	fieldTimestamp = "timestamp"
)

// Names of the built-in context store entries. The first two live in the
// logger core's store; the silenced counter lives in ThreadControl's own.
const (
	counterIndentation = "indentation"
	stackContext       = "context"
	counterSilenced    = "silenced"
)
