package treelog

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/wayneeseguin/treelog/pkg/types"
)

// Sink receives augmented records. Console sinks additionally participate
// in per-goroutine arbitration: the logger skips them when the emitting
// goroutine is not allowed to write to the console.
type Sink interface {
	// Emit writes one record.
	Emit(record *types.Record) error

	// Console reports whether this sink writes to the interactive console.
	Console() bool
}

// WriterSink formats records and writes them to an io.Writer.
type WriterSink struct {
	mu        sync.Mutex
	w         io.Writer
	formatter Formatter
	console   bool
	tty       bool
}

// NewWriterSink creates a non-console sink over w. A nil formatter defaults
// to a plain ConsoleFormatter.
func NewWriterSink(w io.Writer, formatter Formatter) *WriterSink {
	if formatter == nil {
		formatter = &ConsoleFormatter{}
	}
	return &WriterSink{w: w, formatter: formatter}
}

// NewConsoleSink creates the interactive console sink on stdout, with
// coloring and carriage-return handling when stdout is a terminal.
func NewConsoleSink() *WriterSink {
	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	return &WriterSink{
		w:         os.Stdout,
		formatter: &ConsoleFormatter{Coloring: tty},
		console:   true,
		tty:       tty,
	}
}

// Emit formats and writes one record.
func (s *WriterSink) Emit(record *types.Record) error {
	out, err := s.formatter.Format(record)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tty {
		// Overwrite any in-place status line left on the terminal.
		if _, err := s.w.Write([]byte("\r")); err != nil {
			return err
		}
		if n := len(out); n > 0 && out[n-1] == '\n' {
			out = append(out[:n-1], []byte(clearEOL+"\n")...)
		}
	}
	_, err = s.w.Write(out)
	return err
}

// Console reports whether the sink is the interactive console.
func (s *WriterSink) Console() bool { return s.console }

// ClampSink caps the severity of everything passing through it before
// handing records to the wrapped sink. Records above the cap are rewritten
// to the cap, not dropped.
type ClampSink struct {
	// Sink is the wrapped sink.
	Sink Sink

	// Max is the severity cap.
	Max types.Level
}

// Emit forwards the record, clamped.
func (s *ClampSink) Emit(record *types.Record) error {
	if record.Level > s.Max {
		clamped := *record
		clamped.Level = s.Max
		record = &clamped
	}
	return s.Sink.Emit(record)
}

// Console forwards the wrapped sink's placement.
func (s *ClampSink) Console() bool { return s.Sink.Console() }

// HeartbeatSink calls a beat function on logging activity, at most once per
// interval. It emits nothing itself; pair it with real sinks to derive an
// application liveness signal from its logging.
type HeartbeatSink struct {
	mu       sync.Mutex
	beat     func(message string, at time.Time)
	interval time.Duration
	last     time.Time
}

// NewHeartbeatSink creates a heartbeat sink calling beat at most once per
// minInterval.
func NewHeartbeatSink(beat func(message string, at time.Time), minInterval time.Duration) *HeartbeatSink {
	return &HeartbeatSink{beat: beat, interval: minInterval}
}

// Emit beats when the interval since the previous beat has passed.
func (s *HeartbeatSink) Emit(record *types.Record) error {
	s.mu.Lock()
	due := record.Time.Sub(s.last) > s.interval
	if due {
		s.last = record.Time
	}
	s.mu.Unlock()
	if due {
		s.beat(record.Message, record.Time)
	}
	return nil
}

// Console reports that heartbeats are not console output.
func (s *HeartbeatSink) Console() bool { return false }
