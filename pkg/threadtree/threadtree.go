// Package threadtree provides a process-wide store of per-goroutine context
// scopes: named counters that accumulate additively across nested scopes and
// named stacks that accumulate as ordered values.
//
// A single store instance is shared by every goroutine in the process, but
// each goroutine only ever sees its own scopes. The store is the building
// block for log indentation depth (a counter) and nested context tags (a
// stack), and is consumed by the treelog record augmentation on every log
// call.
//
// Basic Usage:
//
//	contexts := threadtree.New(threadtree.Config{
//		Counters: []string{"indentation"},
//		Stacks:   []string{"context"},
//	})
//
//	scope := contexts.Enter(threadtree.Scoped{
//		Counters: map[string]int{"indentation": 1},
//		Stacks:   map[string]string{"context": "copy-files"},
//	})
//	defer scope.Exit()
//
//	depth := contexts.Counter("indentation") // 1
//	tags := contexts.Stack("context")        // ["copy-files"]
package threadtree

import (
	"fmt"
	"sync"

	"github.com/wayneeseguin/treelog/internal/goid"
)

// Config declares the counter and stack names a store resolves.
// Names not declared on either list may still be entered; they behave as
// free-form tag stacks whose flattened value is the most recently pushed one.
type Config struct {
	// Counters are names whose scoped values are integer deltas summed
	// across all active scopes.
	Counters []string

	// Stacks are names whose scoped values are collected in order,
	// outermost first.
	Stacks []string
}

// Scoped holds the values one scope pushes on entry.
type Scoped struct {
	// Counters maps a counter name to the delta this scope contributes.
	Counters map[string]int

	// Stacks maps a stack name to the value this scope pushes.
	Stacks map[string]string
}

// frame is the per-scope record pushed onto a goroutine's private stack.
type frame struct {
	counters map[string]int
	stacks   map[string]string
}

// ThreadContexts is a process-wide registry mapping each live goroutine to
// its private stack of context scopes.
//
// All mutation of one goroutine's scopes happens from that goroutine only, so
// the per-goroutine frame stacks need no locking; the registry itself is a
// sync.Map so unrelated goroutines never block each other.
type ThreadContexts struct {
	counters map[string]bool
	stacks   map[string]bool
	frames   sync.Map // goroutine id -> *frameStack
}

// frameStack is one goroutine's scope stack. Only the owning goroutine
// touches it.
type frameStack struct {
	frames []*frame
}

// New creates a store resolving the declared counter and stack names.
func New(config Config) *ThreadContexts {
	t := &ThreadContexts{
		counters: make(map[string]bool, len(config.Counters)),
		stacks:   make(map[string]bool, len(config.Stacks)),
	}
	for _, name := range config.Counters {
		t.counters[name] = true
	}
	for _, name := range config.Stacks {
		if t.counters[name] {
			panic(fmt.Sprintf("threadtree: %q declared as both counter and stack", name))
		}
		t.stacks[name] = true
	}
	return t
}

// Scope is the opaque handle returned by Enter. Exit pops exactly what the
// matching Enter pushed.
type Scope struct {
	store  *ThreadContexts
	gid    uint64
	frame  *frame
	exited bool
}

// Enter pushes a new scope for the calling goroutine and returns its handle.
// Counter names carry the given deltas; stack names carry the given values.
// Scopes nest and must exit in LIFO order.
func (t *ThreadContexts) Enter(values Scoped) *Scope {
	gid := goid.ID()

	f := &frame{}
	if len(values.Counters) > 0 {
		f.counters = make(map[string]int, len(values.Counters))
		for name, delta := range values.Counters {
			if !t.counters[name] {
				panic(fmt.Sprintf("threadtree: %q is not a declared counter", name))
			}
			f.counters[name] = delta
		}
	}
	if len(values.Stacks) > 0 {
		f.stacks = make(map[string]string, len(values.Stacks))
		for name, value := range values.Stacks {
			if t.counters[name] {
				panic(fmt.Sprintf("threadtree: %q is a counter, not a stack", name))
			}
			f.stacks[name] = value
		}
	}

	fs := t.ownFrames(gid)
	fs.frames = append(fs.frames, f)

	return &Scope{store: t, gid: gid, frame: f}
}

// Exit pops the entries pushed by the matching Enter. It is safe to call
// from a deferred cleanup path even when the enclosed code panicked, but it
// must run on the goroutine that entered, and scopes must exit in strict
// LIFO order; anything else is a programming error and panics.
func (s *Scope) Exit() {
	if s.exited {
		panic("threadtree: scope exited twice")
	}
	gid := goid.ID()
	if gid != s.gid {
		panic(fmt.Sprintf("threadtree: scope entered on goroutine %d, exited on %d", s.gid, gid))
	}

	value, ok := s.store.frames.Load(gid)
	if !ok {
		panic("threadtree: exit without a matching enter")
	}
	fs := value.(*frameStack)
	top := len(fs.frames) - 1
	if top < 0 || fs.frames[top] != s.frame {
		panic("threadtree: scopes must exit in LIFO order")
	}

	fs.frames[top] = nil
	fs.frames = fs.frames[:top]
	s.exited = true

	// Drop the goroutine's record entirely once the outermost scope exits,
	// so nothing leaks across goroutine lifetimes.
	if top == 0 {
		s.store.frames.Delete(gid)
	}
}

// Counter returns the sum of all active deltas for a declared counter on the
// calling goroutine, or 0 when no scope is active.
func (t *ThreadContexts) Counter(name string) int {
	if !t.counters[name] {
		panic(fmt.Sprintf("threadtree: %q is not a declared counter", name))
	}
	total := 0
	for _, f := range t.currentFrames() {
		total += f.counters[name]
	}
	return total
}

// Stack returns the active values for a stack name on the calling goroutine,
// outermost first, or nil when no scope pushed it.
func (t *ThreadContexts) Stack(name string) []string {
	if t.counters[name] {
		panic(fmt.Sprintf("threadtree: %q is a counter, not a stack", name))
	}
	var values []string
	for _, f := range t.currentFrames() {
		if value, ok := f.stacks[name]; ok {
			values = append(values, value)
		}
	}
	return values
}

// Flatten resolves every name with an active value on the calling goroutine:
// declared counters to their sums, declared stacks to their ordered values,
// and free-form names to the innermost value. Declared counters always
// appear, defaulting to 0. The result is what record augmentation merges
// into a log record.
func (t *ThreadContexts) Flatten() map[string]interface{} {
	flat := make(map[string]interface{}, len(t.counters)+len(t.stacks))
	for name := range t.counters {
		flat[name] = 0
	}
	for _, f := range t.currentFrames() {
		for name, delta := range f.counters {
			flat[name] = flat[name].(int) + delta
		}
		for name, value := range f.stacks {
			if t.stacks[name] {
				var values []string
				if prev, ok := flat[name].([]string); ok {
					values = prev
				}
				flat[name] = append(values, value)
			} else {
				// Free-form tag, innermost wins.
				flat[name] = value
			}
		}
	}
	return flat
}

// ownFrames returns the calling goroutine's frame stack, creating it lazily.
func (t *ThreadContexts) ownFrames(gid uint64) *frameStack {
	if value, ok := t.frames.Load(gid); ok {
		return value.(*frameStack)
	}
	fs := &frameStack{}
	t.frames.Store(gid, fs)
	return fs
}

// currentFrames returns the calling goroutine's active frames, outermost
// first, or nil when the goroutine has no scopes.
func (t *ThreadContexts) currentFrames() []*frame {
	value, ok := t.frames.Load(goid.ID())
	if !ok {
		return nil
	}
	return value.(*frameStack).frames
}
