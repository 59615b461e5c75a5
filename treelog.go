package treelog

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/mattn/go-isatty"

	"github.com/wayneeseguin/treelog/pkg/threadtree"
	"github.com/wayneeseguin/treelog/pkg/types"
)

// Config configures a logger core.
type Config struct {
	// Name is the root logger's name.
	Name string

	// Level is the minimum severity emitted.
	Level types.Level

	// Graphical selects unicode or ASCII tree glyphs. Nil resolves from
	// whether stdout is a terminal.
	Graphical *bool

	// Coloring enables colored output. Nil resolves from whether stdout
	// is a terminal.
	Coloring *bool

	// Indentation is a baseline block depth added to every record.
	Indentation int

	// Context is a baseline set of context tags present on every record.
	Context []string

	// Sinks are the initial output sinks. A logger without sinks is
	// valid and silent.
	Sinks []Sink
}

// core is the shared state behind a family of named loggers: the context
// store, console arbitration, drawing configuration and sinks.
type core struct {
	level int32 // atomic types.Level

	mu    sync.Mutex
	sinks []Sink

	contexts *threadtree.ThreadContexts
	control  *ThreadControl
	graphics graphicsState

	baseIndent int
	baseTags   []string
}

// Logger augments log records with per-goroutine context state before
// handing them to its sinks, and provides the scoped operations (context
// tags, indented blocks, solo, suppression) that drive that state.
type Logger struct {
	name string
	core *core
}

// New creates a logger family's root logger.
func New(config Config) *Logger {
	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	graphical := tty
	if config.Graphical != nil {
		graphical = *config.Graphical
	}
	coloring := tty
	if config.Coloring != nil {
		coloring = *config.Coloring
	}
	glyphs := GraphicsASCII
	if graphical {
		glyphs = GraphicsGraphical
	}

	c := &core{
		level: int32(config.Level),
		sinks: append([]Sink(nil), config.Sinks...),
		contexts: threadtree.New(threadtree.Config{
			Counters: []string{counterIndentation},
			Stacks:   []string{stackContext},
		}),
		control:    NewThreadControl(),
		graphics:   newGraphicsState(glyphs, coloring),
		baseIndent: config.Indentation,
		baseTags:   append([]string(nil), config.Context...),
	}
	return &Logger{name: config.Name, core: c}
}

// Named returns a logger with the given name sharing this logger's core:
// same sinks, same context store, same console arbitration.
func (l *Logger) Named(name string) *Logger {
	return &Logger{name: name, core: l.core}
}

// Name returns the logger's name.
func (l *Logger) Name() string { return l.name }

// SetLevel sets the minimum severity emitted.
func (l *Logger) SetLevel(level types.Level) {
	atomic.StoreInt32(&l.core.level, int32(level))
}

// GetLevel returns the minimum severity emitted.
func (l *Logger) GetLevel() types.Level {
	return types.Level(atomic.LoadInt32(&l.core.level))
}

// AddSink attaches an output sink.
func (l *Logger) AddSink(sink Sink) {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	l.core.sinks = append(l.core.sinks, sink)
}

// Contexts exposes the core's context store for callers that need raw
// scope-entry/exit pairs beyond the scoped helpers.
func (l *Logger) Contexts() *threadtree.ThreadContexts {
	return l.core.contexts
}

// Control exposes the core's console arbitration registry.
func (l *Logger) Control() *ThreadControl {
	return l.core.control
}

// Close closes every sink that supports closing.
func (l *Logger) Close() error {
	l.core.mu.Lock()
	sinks := append([]Sink(nil), l.core.sinks...)
	l.core.mu.Unlock()

	var first error
	for _, sink := range sinks {
		if closer, ok := sink.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// Debug logs at debug severity with printf formatting.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(types.LevelDebug, "", nil, format, args)
}

// Info logs at info severity with printf formatting.
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(types.LevelInfo, "", nil, format, args)
}

// Notice logs at notice severity with printf formatting.
func (l *Logger) Notice(format string, args ...interface{}) {
	l.log(types.LevelNotice, "", nil, format, args)
}

// Warn logs at warning severity with printf formatting.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(types.LevelWarn, "", nil, format, args)
}

// Error logs at error severity with printf formatting.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(types.LevelError, "", nil, format, args)
}

// Logf logs at an explicit severity. It implements the types.Logger
// interface pkg/resilience announces through.
func (l *Logger) Logf(level types.Level, format string, args ...interface{}) {
	l.log(level, "", nil, format, args)
}

// LogWith logs with caller-supplied extra fields merged into the record.
// Extras colliding with reserved or already-set fields panic.
func (l *Logger) LogWith(level types.Level, extra map[string]interface{}, format string, args ...interface{}) {
	l.log(level, "", extra, format, args)
}

// log is the single emission path: level gate, record augmentation on the
// calling goroutine, then sink fan-out under the console arbitration
// verdict.
func (l *Logger) log(level types.Level, drawing string, extra map[string]interface{}, format string, args []interface{}) {
	if level < l.GetLevel() {
		return
	}
	record := l.core.makeRecord(l.name, level, drawing, extra, format, args)
	l.emit(record)
}

func (l *Logger) emit(record *types.Record) {
	l.core.mu.Lock()
	sinks := append([]Sink(nil), l.core.sinks...)
	l.core.mu.Unlock()
	if len(sinks) == 0 {
		return
	}

	allow := l.core.control.Allow()
	for _, sink := range sinks {
		if sink.Console() && !allow {
			continue
		}
		// Sink failures must never propagate into the emitting code path.
		_ = sink.Emit(record)
	}
}
