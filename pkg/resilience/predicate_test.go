package resilience

import (
	"errors"
	"fmt"
	"testing"
)

// flakyDevice exercises method binding in predicates.
type flakyDevice struct {
	err error
}

func (d *flakyDevice) Ping() error {
	return d.err
}

// TestPredicate tests the success, acceptable and propagation verdicts
func TestPredicate(t *testing.T) {
	var current error
	pred := NewPredicate(func() error { return current }, Classify{})

	current = nil
	if ok, err := pred.Check(); !ok || err != nil {
		t.Errorf("Expected (true, nil) on success, got (%v, %v)", ok, err)
	}

	current = fmt.Errorf("acceptable failure")
	if ok, err := pred.Check(); ok || err != nil {
		t.Errorf("Expected (false, nil) for an acceptable error, got (%v, %v)", ok, err)
	}

	current = fmt.Errorf("wrapped: %w", fakeRuntimeError{})
	if ok, err := pred.Check(); ok || err == nil {
		t.Errorf("Expected the builtin-unacceptable error to propagate, got (%v, %v)", ok, err)
	}
}

// TestPredicateErrReachesOriginal tests the accessor to the real error
func TestPredicateErrReachesOriginal(t *testing.T) {
	boom := fmt.Errorf("boom")
	pred := NewPredicate(func() error { return boom }, Classify{})

	if ok, err := pred.Check(); ok || err != nil {
		t.Fatalf("Expected (false, nil) from the boolean form, got (%v, %v)", ok, err)
	}
	if err := pred.Err(); err != boom {
		t.Errorf("Expected the original error through Err, got %v", err)
	}
}

// TestPredicateUnacceptablePrecedence tests that unacceptable wins when an
// error matches both lists
func TestPredicateUnacceptablePrecedence(t *testing.T) {
	base := fmt.Errorf("base")
	derived := fmt.Errorf("derived: %w", base)

	pred := NewPredicate(func() error { return derived }, Classify{
		Acceptable:   []error{base},
		Unacceptable: []error{derived},
	})
	if ok, err := pred.Check(); ok || !errors.Is(err, derived) {
		t.Errorf("Expected the unacceptable error to propagate, got (%v, %v)", ok, err)
	}

	// Matching only the acceptable list folds to false.
	pred = NewPredicate(func() error { return base }, Classify{
		Acceptable: []error{base},
	})
	if ok, err := pred.Check(); ok || err != nil {
		t.Errorf("Expected (false, nil), got (%v, %v)", ok, err)
	}
}

// TestPredicateUnlistedPropagates tests that errors outside the acceptable
// list escape the boolean
func TestPredicateUnlistedPropagates(t *testing.T) {
	listed := fmt.Errorf("listed")
	pred := NewPredicate(func() error { return fmt.Errorf("unlisted") }, Classify{
		Acceptable: []error{listed},
	})
	if ok, err := pred.Check(); ok || err == nil {
		t.Errorf("Expected the unlisted error to propagate, got (%v, %v)", ok, err)
	}
}

// TestPredicateFuncBinding tests method-expression binding
func TestPredicateFuncBinding(t *testing.T) {
	pred := NewPredicateFunc((*flakyDevice).Ping, Classify{})

	healthy := &flakyDevice{}
	broken := &flakyDevice{err: fmt.Errorf("no route to device")}

	if ok, err := pred.Check(healthy); !ok || err != nil {
		t.Errorf("Expected (true, nil) for the healthy device, got (%v, %v)", ok, err)
	}
	if ok, err := pred.Check(broken); ok || err != nil {
		t.Errorf("Expected (false, nil) for the broken device, got (%v, %v)", ok, err)
	}

	// Explicit rebinding produces an ordinary bound predicate.
	bound := pred.Bind(broken)
	if ok, err := bound.Check(); ok || err != nil {
		t.Errorf("Expected (false, nil) from the bound predicate, got (%v, %v)", ok, err)
	}
	if err := bound.Err(); err != broken.err {
		t.Errorf("Expected the real error through the bound accessor, got %v", err)
	}
	if err := pred.Err(broken); err != broken.err {
		t.Errorf("Expected the real error through the unbound accessor, got %v", err)
	}
}
