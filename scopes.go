package treelog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/wayneeseguin/treelog/pkg/threadtree"
	"github.com/wayneeseguin/treelog/pkg/types"
)

// ErrAborted marks a deliberate abort. Indented blocks unwinding with it (or
// with context cancellation) close with an ABORTED footer instead of FAILED.
var ErrAborted = errors.New("aborted")

// ContextOptions configures a Context scope.
type ContextOptions struct {
	// Indent opens an indented block headed by the bracketed tag.
	Indent bool

	// Fields are free-form values pushed alongside the tag; they appear
	// on every record emitted inside the scope.
	Fields map[string]string
}

// Context pushes a context tag for the duration of fn. Every record emitted
// inside — from this goroutine — carries the tag.
func (l *Logger) Context(tag string, fn func() error) error {
	return l.ContextWith(ContextOptions{}, tag, fn)
}

// ContextWith is Context with options.
func (l *Logger) ContextWith(opts ContextOptions, tag string, fn func() error) error {
	stacks := map[string]string{stackContext: tag}
	for key, value := range opts.Fields {
		stacks[key] = value
	}
	scope := l.core.contexts.Enter(threadtree.Scoped{Stacks: stacks})
	defer scope.Exit()

	if opts.Indent {
		return l.Indented("["+tag+"]", fn)
	}
	return fn()
}

// BlockOptions configures an indented block.
type BlockOptions struct {
	// Level is the severity of the open and close announcements.
	// The zero value means LevelNotice.
	Level types.Level

	// NoTiming omits the duration from the footer.
	NoTiming bool

	// NoFooter reduces the footer to its drawing glyph.
	NoFooter bool
}

// Indented opens a visually indented block: a header line with an open
// branch glyph, one extra level of indentation for everything fn logs, and
// a footer line reporting DONE, FAILED or ABORTED with the elapsed time.
// A panic inside fn still closes the block (as FAILED) before propagating.
func (l *Logger) Indented(header string, fn func() error) error {
	return l.IndentedWith(BlockOptions{}, header, fn)
}

// IndentedWith is Indented with options.
func (l *Logger) IndentedWith(opts BlockOptions, header string, fn func() error) error {
	level := opts.Level
	if level == types.LevelDebug {
		level = types.LevelNotice
	}
	glyphs := l.core.graphics.glyphs

	l.log(level, glyphs.IndentOpen, nil, "%s", []interface{}{header})

	scope := l.core.contexts.Enter(threadtree.Scoped{
		Counters: map[string]int{counterIndentation: 1},
	})
	defer scope.Exit()

	start := time.Now()
	footer := func(title, drawing string) {
		if opts.NoFooter {
			l.log(level, drawing, nil, "", nil)
			return
		}
		duration := ""
		if !opts.NoTiming {
			duration = " in " + time.Since(start).Round(time.Millisecond).String()
		}
		l.log(level, drawing, nil, "%s%s (%s)", []interface{}{title, duration, header})
	}

	panicked := true
	var err error
	defer func() {
		switch {
		case panicked:
			footer("FAILED", glyphs.IndentException)
		case err == nil:
			footer("DONE", glyphs.IndentClose)
		case errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled):
			footer("ABORTED", glyphs.IndentException)
		default:
			footer("FAILED", glyphs.IndentException)
		}
	}()

	err = fn()
	panicked = false
	return err
}

// Solo grants the calling goroutine exclusive console output for the
// duration of fn. Solos may be nested across goroutines; the most recent
// one wins.
func (l *Logger) Solo(fn func()) {
	ticket := l.core.control.SoloEnter()
	defer l.core.control.SoloExit(ticket)
	fn()
}

// Suppressed silences the calling goroutine's console output for the
// duration of fn. File and other non-console sinks still receive records.
func (l *Logger) Suppressed(fn func()) {
	scope := l.core.control.SuppressEnter()
	defer scope.Exit()
	fn()
}

// SilentError logs err at error severity but keeps its stack trace down at
// debug severity, for failures that are expected often enough that a full
// trace would be noise.
func (l *Logger) SilentError(message string, err error) {
	l.Error("%s: %v", message, err)
	l.Debug("Traceback:\n%+v", err)
}

// ErrorBox renders err inside a highlighted box: a header line naming the
// error, the rendered body indented one level, and a closing rule. Errors
// providing a Render method (pkg/errs) render structurally; anything else
// prints its Error text.
func (l *Logger) ErrorBox(err error) {
	glyphs := l.core.graphics.glyphs

	header := fmt.Sprintf("%T", err)
	if kinded, ok := err.(interface{ Name() string }); ok {
		header = kinded.Name()
	}
	width := 80 - len(header) - 1
	if width < 1 {
		width = 1
	}
	l.log(types.LevelError, glyphs.IndentOpen, nil, "%s %s", []interface{}{header, strings.Repeat(glyphs.Line, width)})

	scope := l.core.contexts.Enter(threadtree.Scoped{
		Counters: map[string]int{counterIndentation: 1},
	})
	defer scope.Exit()

	text := err.Error()
	if renderer, ok := err.(interface{ Render() string }); ok {
		text = renderer.Render()
	}
	for _, line := range strings.Split(text, "\n") {
		l.log(types.LevelError, "", nil, "%s", []interface{}{line})
	}
	l.log(types.LevelError, glyphs.IndentException, nil, "%s", []interface{}{strings.Repeat(glyphs.DoubleLine, 80)})
}
