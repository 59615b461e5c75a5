package threadtree

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/wayneeseguin/treelog/internal/goid"
)

func newTestStore() *ThreadContexts {
	return New(Config{
		Counters: []string{"indentation"},
		Stacks:   []string{"context"},
	})
}

// TestEnterExitRoundTrip tests that a full unwind restores the defaults
func TestEnterExitRoundTrip(t *testing.T) {
	contexts := newTestStore()

	outer := contexts.Enter(Scoped{
		Counters: map[string]int{"indentation": 1},
		Stacks:   map[string]string{"context": "outer"},
	})
	inner := contexts.Enter(Scoped{
		Counters: map[string]int{"indentation": 2},
		Stacks:   map[string]string{"context": "inner"},
	})

	if got := contexts.Counter("indentation"); got != 3 {
		t.Errorf("Expected indentation 3, got %d", got)
	}
	tags := contexts.Stack("context")
	if len(tags) != 2 || tags[0] != "outer" || tags[1] != "inner" {
		t.Errorf("Expected [outer inner], got %v", tags)
	}

	inner.Exit()
	if got := contexts.Counter("indentation"); got != 1 {
		t.Errorf("Expected indentation 1 after inner exit, got %d", got)
	}

	outer.Exit()
	if got := contexts.Counter("indentation"); got != 0 {
		t.Errorf("Expected indentation 0 after full unwind, got %d", got)
	}
	if tags := contexts.Stack("context"); len(tags) != 0 {
		t.Errorf("Expected empty context stack after full unwind, got %v", tags)
	}
}

// TestNoLeakAfterUnwind tests that the per-goroutine record is dropped once
// the outermost scope exits
func TestNoLeakAfterUnwind(t *testing.T) {
	contexts := newTestStore()

	scope := contexts.Enter(Scoped{Counters: map[string]int{"indentation": 1}})
	if _, ok := contexts.frames.Load(goid.ID()); !ok {
		t.Fatalf("Expected a registry entry while a scope is active")
	}
	scope.Exit()
	if _, ok := contexts.frames.Load(goid.ID()); ok {
		t.Errorf("Expected the registry entry to be removed after full unwind")
	}
}

// TestGoroutineIsolation tests that concurrent goroutines never observe each
// other's counters or stacks
func TestGoroutineIsolation(t *testing.T) {
	contexts := newTestStore()

	const goroutines = 16
	const rounds = 50

	var wg sync.WaitGroup
	errs := make(chan error, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(n)))
			tag := fmt.Sprintf("goroutine-%d", n)
			for round := 0; round < rounds; round++ {
				depth := 1 + rng.Intn(5)
				scopes := make([]*Scope, 0, depth)
				for d := 0; d < depth; d++ {
					scopes = append(scopes, contexts.Enter(Scoped{
						Counters: map[string]int{"indentation": 1},
						Stacks:   map[string]string{"context": tag},
					}))
					if got := contexts.Counter("indentation"); got != d+1 {
						errs <- fmt.Errorf("goroutine %d: expected indentation %d, got %d", n, d+1, got)
						return
					}
				}
				for _, value := range contexts.Stack("context") {
					if value != tag {
						errs <- fmt.Errorf("goroutine %d: observed foreign tag %q", n, value)
						return
					}
				}
				for d := depth - 1; d >= 0; d-- {
					scopes[d].Exit()
				}
				if got := contexts.Counter("indentation"); got != 0 {
					errs <- fmt.Errorf("goroutine %d: expected indentation 0 after unwind, got %d", n, got)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

// TestExitEnforcesLIFO tests that out-of-order exits panic
func TestExitEnforcesLIFO(t *testing.T) {
	contexts := newTestStore()

	outer := contexts.Enter(Scoped{Counters: map[string]int{"indentation": 1}})
	inner := contexts.Enter(Scoped{Counters: map[string]int{"indentation": 1}})

	func() {
		defer func() {
			if recover() == nil {
				t.Errorf("Expected a panic when exiting out of LIFO order")
			}
		}()
		outer.Exit()
	}()

	inner.Exit()
	outer.Exit()
}

// TestExitTwicePanics tests that a scope cannot exit twice
func TestExitTwicePanics(t *testing.T) {
	contexts := newTestStore()

	scope := contexts.Enter(Scoped{Counters: map[string]int{"indentation": 1}})
	scope.Exit()

	defer func() {
		if recover() == nil {
			t.Errorf("Expected a panic on double exit")
		}
	}()
	scope.Exit()
}

// TestUndeclaredCounterPanics tests that undeclared counter names are rejected
func TestUndeclaredCounterPanics(t *testing.T) {
	contexts := newTestStore()

	defer func() {
		if recover() == nil {
			t.Errorf("Expected a panic for an undeclared counter")
		}
	}()
	contexts.Enter(Scoped{Counters: map[string]int{"bogus": 1}})
}

// TestFlatten tests counter, stack and free-form tag resolution
func TestFlatten(t *testing.T) {
	contexts := newTestStore()

	outer := contexts.Enter(Scoped{
		Counters: map[string]int{"indentation": 1},
		Stacks:   map[string]string{"context": "setup", "host": "alpha"},
	})
	defer outer.Exit()
	inner := contexts.Enter(Scoped{
		Stacks: map[string]string{"context": "copy", "host": "beta"},
	})
	defer inner.Exit()

	flat := contexts.Flatten()
	if flat["indentation"] != 1 {
		t.Errorf("Expected indentation 1, got %v", flat["indentation"])
	}
	tags, ok := flat["context"].([]string)
	if !ok || len(tags) != 2 || tags[0] != "setup" || tags[1] != "copy" {
		t.Errorf("Expected context [setup copy], got %v", flat["context"])
	}
	// Free-form names resolve to the innermost value.
	if flat["host"] != "beta" {
		t.Errorf("Expected host beta, got %v", flat["host"])
	}
}

// TestFlattenDefaults tests resolution with no active scopes
func TestFlattenDefaults(t *testing.T) {
	contexts := newTestStore()

	flat := contexts.Flatten()
	if flat["indentation"] != 0 {
		t.Errorf("Expected default indentation 0, got %v", flat["indentation"])
	}
	if _, ok := flat["context"]; ok {
		t.Errorf("Expected no context entry without active scopes, got %v", flat["context"])
	}
}
