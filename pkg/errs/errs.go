// Package errs provides structured errors that carry named parameters and
// render themselves as deterministic multi-line text.
//
// An Error is built from a message template formatted with its parameters at
// construction time. A Kind is a reusable error type defined by name and
// template at runtime, so packages can declare their error vocabulary once
// and raise instances with only the parameters:
//
//	var ErrNotEnoughPeanuts = errs.Make("NotEnoughPeanuts",
//		"You can't have {wanted} peanuts, there are only {available} left")
//
//	err := ErrNotEnoughPeanuts.New(errs.Params{"wanted": 10, "available": 8})
//	errors.Is(err, ErrNotEnoughPeanuts) // true
//	fmt.Println(err.Render())
//
// Stack traces are captured through github.com/pkg/errors so they interleave
// with the rest of an application's wrapped errors.
package errs

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Params holds an error's named parameters.
type Params map[string]interface{}

// Kind is a reusable error type built at runtime from a name and a message
// template. A Kind is itself an error sentinel: errors.Is(err, kind) reports
// whether err is an instance of it.
type Kind struct {
	name     string
	template string
	tip      string
}

// Make defines a new error kind with the given name and message template.
func Make(name, template string) *Kind {
	return &Kind{name: name, template: template}
}

// WithTip attaches a tip template rendered under instances of this kind.
func (k *Kind) WithTip(tip string) *Kind {
	k.tip = tip
	return k
}

// Name returns the kind's name.
func (k *Kind) Name() string { return k.name }

// Error makes a Kind usable as an errors.Is target.
func (k *Kind) Error() string { return k.name }

// New constructs an instance of the kind, formatting its template with the
// given parameters.
func (k *Kind) New(params Params) *Error {
	e := newError(k.template, params)
	e.kind = k
	if k.tip != "" && e.tip == "" {
		e.tip = k.tip
	}
	return e
}

// Convert runs op and re-raises any acceptable error it returns as this
// kind, with the original error preserved as the cause and a stack captured
// at the conversion point. Acceptable errors are those matching any of the
// given errors.Is targets; an empty list accepts every error. Errors that do
// not match — a wrapped cancellation, say — propagate unchanged, as do
// errors that are already instances of this kind.
func (k *Kind) Convert(params Params, acceptable []error, op func() error) error {
	err := op()
	if err == nil {
		return nil
	}
	if errors.Is(err, k) {
		return err
	}
	if len(acceptable) > 0 {
		matched := false
		for _, target := range acceptable {
			if errors.Is(err, target) {
				matched = true
				break
			}
		}
		if !matched {
			return err
		}
	}
	converted := k.New(params)
	converted.cause = err
	converted.stack = captureStack()
	return converted
}

// Error is a structured error: a formatted message plus named parameters, an
// optional context map, an optional cause, an optional stack trace and a
// creation timestamp.
type Error struct {
	message   string
	kind      *Kind
	params    Params
	context   map[string]interface{}
	cause     error
	stack     string
	tip       string
	timestamp time.Time
}

// New constructs a structured error from a message template and parameters.
// The template is formatted immediately; referencing a parameter that was
// not supplied panics, since a malformed error definition is a programming
// error that must not surface only when the error path fires.
func New(template string, params Params) *Error {
	return newError(template, params)
}

func newError(template string, params Params) *Error {
	copied := make(Params, len(params))
	for key, value := range params {
		copied[key] = value
	}
	e := &Error{
		params:    copied,
		timestamp: time.Now(),
	}
	if tip, ok := copied["tip"].(string); ok {
		e.tip = tip
		delete(copied, "tip")
	}
	e.message = expand(template, copied)
	return e
}

// WithParams merges additional parameters into the error and returns it.
// The message is not re-formatted; only the rendered parameter block grows.
func (e *Error) WithParams(params Params) *Error {
	for key, value := range params {
		e.params[key] = value
	}
	return e
}

// WithContext attaches a causal context map rendered after the parameters.
func (e *Error) WithContext(context map[string]interface{}) *Error {
	e.context = context
	return e
}

// WithStack captures the call stack at the point of the call.
func (e *Error) WithStack() *Error {
	e.stack = captureStack()
	return e
}

// Param returns a parameter by name.
func (e *Error) Param(name string) (interface{}, bool) {
	value, ok := e.params[name]
	return value, ok
}

// Message returns the formatted message without the parameter block.
func (e *Error) Message() string { return e.message }

// Name returns the name of the error's kind, or "Error" for kindless
// instances.
func (e *Error) Name() string {
	if e.kind != nil {
		return e.kind.name
	}
	return "Error"
}

// Timestamp returns the error's creation time.
func (e *Error) Timestamp() time.Time { return e.timestamp }

// Error renders the message and parameter block on multiple lines, without
// the stack trace.
func (e *Error) Error() string {
	return e.render(false)
}

// Render produces the full deterministic rendering: message, sorted
// parameters, tip, timestamp, context, stack trace.
func (e *Error) Render() string {
	return e.render(true)
}

// Unwrap exposes the converted cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Is matches instances against their Kind sentinel.
func (e *Error) Is(target error) bool {
	if kind, ok := target.(*Kind); ok {
		return e.kind == kind
	}
	return false
}

func (e *Error) render(withTrace bool) string {
	var b strings.Builder
	if e.message != "" {
		b.WriteString(e.message)
		b.WriteString("\n")
	}

	names := make([]string, 0, len(e.params))
	for name := range e.params {
		if strings.HasPrefix(name, "_") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		writeBlock(&b, name, e.params[name])
	}

	if e.tip != "" {
		writeBlock(&b, "tip", expand(e.tip, e.params))
	}
	if !e.timestamp.IsZero() {
		writeBlock(&b, "timestamp", e.timestamp)
	}

	if len(e.context) > 0 {
		b.WriteString("Context:\n")
		contextNames := make([]string, 0, len(e.context))
		for name := range e.context {
			if strings.HasPrefix(name, "_") || name == "indentation" {
				continue
			}
			contextNames = append(contextNames, name)
		}
		sort.Strings(contextNames)
		for _, name := range contextNames {
			writeBlock(&b, name, e.context[name])
		}
	}

	if withTrace {
		if e.cause != nil {
			writeBlock(&b, "cause", e.cause.Error())
		}
		if e.stack != "" {
			b.WriteString(e.stack)
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// writeBlock renders one "name = value" line, indenting continuation lines
// of multi-line values to align under the value.
func writeBlock(b *strings.Builder, name string, value interface{}) {
	head := fmt.Sprintf("    %s = ", name)
	text := renderValue(value)
	lines := strings.Split(text, "\n")
	b.WriteString(head)
	b.WriteString(lines[0])
	b.WriteString("\n")
	for _, line := range lines[1:] {
		b.WriteString(strings.Repeat(" ", len(head)))
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func renderValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// expand formats a {name}-style template from params. Unknown references
// panic; "{{" and "}}" escape literal braces.
func expand(template string, params Params) string {
	var b strings.Builder
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				panic(fmt.Sprintf("errs: unterminated placeholder in template %q", template))
			}
			name := template[i+1 : i+end]
			value, ok := params[name]
			if !ok {
				panic(fmt.Sprintf("errs: template %q references missing parameter %q", template, name))
			}
			b.WriteString(renderValue(value))
			i += end
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				i++
			}
			b.WriteByte('}')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Annotate merges parameters into err when it is a structured error, or
// wraps it into one otherwise, preserving err as the cause. It is the
// mechanism for attaching named values to errors crossing an unwind path.
func Annotate(err error, params Params) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e.WithParams(params)
	}
	// The foreign message is taken verbatim, not as a template.
	wrapped := &Error{
		message:   err.Error(),
		params:    Params{},
		cause:     err,
		timestamp: time.Now(),
	}
	return wrapped.WithParams(params)
}

// captureStack formats the stack of the caller's caller through pkg/errors,
// so structured errors render the same frame format as the rest of an
// application's wrapped errors.
func captureStack() string {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	carrier := errors.New("")
	tracer, ok := carrier.(stackTracer)
	if !ok {
		return ""
	}
	// Drop the two frames belonging to this package.
	trace := tracer.StackTrace()
	if len(trace) > 2 {
		trace = trace[2:]
	}
	return strings.TrimSpace(fmt.Sprintf("%+v", trace))
}
