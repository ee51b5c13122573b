package pulse

import "sync"

// Future is a single-assignment result that may settle after the emission
// that produced it. Handlers chain futures to flatten async transforms:
// the future travels the handler graph synchronously at propagation time,
// and the settled value (or halt, or error) is observed by each edge's
// continuation when it resolves.
type Future[T any] struct {
	mu   sync.Mutex
	done bool
	val  T
	err  error
	cbs  []func(T, error)
	ch   chan struct{}
}

// NewFuture creates an unresolved future and its resolver. The resolver is
// single-shot: the first call settles the future, later calls are ignored.
func NewFuture[T any]() (*Future[T], func(T, error)) {
	f := &Future[T]{ch: make(chan struct{})}
	return f, f.resolve
}

// Go runs fn on its own goroutine and returns a future settled with its
// result. This is the usual way to hand an async transform to DeriveAsync.
func Go[T any](fn func() (T, error)) *Future[T] {
	f, resolve := NewFuture[T]()
	go func() {
		resolve(fn())
	}()
	return f
}

// Resolved returns a future already settled with v.
func Resolved[T any](v T) *Future[T] {
	f, resolve := NewFuture[T]()
	resolve(v, nil)
	return f
}

// Then registers fn to run when the future settles. If it has already
// settled, fn runs inline. Callbacks run on the resolving goroutine in
// registration order.
func (f *Future[T]) Then(fn func(T, error)) {
	f.mu.Lock()
	if f.done {
		v, err := f.val, f.err
		f.mu.Unlock()
		fn(v, err)
		return
	}
	f.cbs = append(f.cbs, fn)
	f.mu.Unlock()
}

// Result blocks until the future settles and returns its value and error.
// A halted emission surfaces as a HaltError.
func (f *Future[T]) Result() (T, error) {
	<-f.ch
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.val, f.err
}

func (f *Future[T]) resolve(v T, err error) {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return
	}
	f.done = true
	f.val = v
	f.err = err
	cbs := f.cbs
	f.cbs = nil
	f.mu.Unlock()

	close(f.ch)
	for _, cb := range cbs {
		cb(v, err)
	}
}
