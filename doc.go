// Package treelog augments a host application's logging with goroutine-scoped
// context: indentation depth rendered as tree-drawing glyphs, nested context
// tags merged into every record, and per-goroutine console arbitration
// (soloing and suppression). The companion packages provide the resilience
// side: retry loops with pluggable stop conditions and backoff schedules
// (pkg/resilience) and structured, parameter-carrying errors (pkg/errs).
//
// Key Features:
//
//   - Per-goroutine context tags and indentation, merged into every record
//   - Tree-drawing indented blocks with DONE/FAILED/ABORTED footers
//   - Console soloing (one goroutine at a time) and per-goroutine suppression
//   - Multiple sinks: console, flock-guarded files, NATS, heartbeats
//   - Retry with count/deadline budgets and (randomized) exponential backoff
//   - Structured errors with deterministic multi-line rendering
//
// Basic Usage:
//
//	logger := treelog.New(treelog.Config{
//		Level: treelog.LevelInfo,
//		Sinks: []treelog.Sink{treelog.NewConsoleSink()},
//	})
//
//	_ = logger.Context("copy", func() error {
//		return logger.Indented("Copying files", func() error {
//			logger.Info("%d files to go", 42)
//			return nil
//		})
//	})
//
// Every record emitted inside the block carries the "copy" tag and one level
// of indentation; the block opens and closes with branch glyphs and reports
// its duration.
package treelog
