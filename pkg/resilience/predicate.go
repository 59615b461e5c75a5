package resilience

// Predicate adapts an error-returning function into a boolean check: true
// when the function succeeds, false when it fails with an acceptable error.
// Errors that classify for propagation (unacceptable lists, built-in kinds,
// async-tagged) come back through Check's error return instead of being
// folded into the boolean. The original function stays reachable through
// Err for callers that need the real error rather than a verdict.
type Predicate struct {
	fn       func() error
	classify Classify
}

// NewPredicate wraps fn. The classification's Pred field is ignored; only
// the acceptable and unacceptable lists participate.
func NewPredicate(fn func() error, classify Classify) *Predicate {
	return &Predicate{fn: fn, classify: Classify{
		Acceptable:   classify.Acceptable,
		Unacceptable: classify.Unacceptable,
	}}
}

// Check invokes the function. It returns (true, nil) on success,
// (false, nil) when the error is acceptable, and (false, err) when the
// error must propagate.
func (p *Predicate) Check() (bool, error) {
	err := p.fn()
	if err == nil {
		return true, nil
	}
	if p.classify.propagate(err) {
		return false, err
	}
	return false, nil
}

// Err invokes the underlying function directly and returns its real error.
func (p *Predicate) Err() error {
	return p.fn()
}

// PredicateFunc is a Predicate over a function taking one argument, such as
// a method expression. Bind fixes the argument — for a method expression,
// the receiver — producing an ordinary bound Predicate.
type PredicateFunc[T any] struct {
	fn       func(T) error
	classify Classify
}

// NewPredicateFunc wraps a one-argument function or method expression.
func NewPredicateFunc[T any](fn func(T) error, classify Classify) *PredicateFunc[T] {
	return &PredicateFunc[T]{fn: fn, classify: Classify{
		Acceptable:   classify.Acceptable,
		Unacceptable: classify.Unacceptable,
	}}
}

// Check invokes the function with the given argument; semantics match
// Predicate.Check.
func (p *PredicateFunc[T]) Check(arg T) (bool, error) {
	return p.Bind(arg).Check()
}

// Err invokes the underlying function directly with the given argument.
func (p *PredicateFunc[T]) Err(arg T) error {
	return p.fn(arg)
}

// Bind fixes the argument and returns the bound Predicate. Binding a method
// expression to its receiver is the explicit rebinding operation.
func (p *PredicateFunc[T]) Bind(arg T) *Predicate {
	return NewPredicate(func() error { return p.fn(arg) }, p.classify)
}
