package pulse

import (
	"github.com/petal-labs/pulse/scope"
	"github.com/petal-labs/pulse/stream"
)

// Item is one unit on a handler's upstream stream: a settled value, a halt
// marker, or a future still resolving to one of the two.
type Item[E any] struct {
	value E
	halt  *HaltError
	fut   *Future[E]
}

// Value returns the settled value. The second return is false for halt
// markers and pending futures.
func (it Item[E]) Value() (E, bool) {
	return it.value, it.halt == nil && it.fut == nil
}

// Halted returns the halt marker carried by the item, if any.
func (it Item[E]) Halted() (*HaltError, bool) {
	return it.halt, it.halt != nil
}

// Pending returns the future carried by the item, if any.
func (it Item[E]) Pending() (*Future[E], bool) {
	return it.fut, it.fut != nil
}

// Handler is a composable subscription point for events of type E. Deriving
// with a transform yields a downstream handler; the upstream stream is fixed
// at construction and exposed via Source for interop. Subscriptions created
// through a handler are torn down when its owning scope disposes.
type Handler[E any] struct {
	source *stream.Stream[Item[E]]
	sched  *Scheduler
	owner  scope.Owner
}

func newHandler[E any](src *stream.Stream[Item[E]], sched *Scheduler, owner scope.Owner) *Handler[E] {
	return &Handler[E]{source: src, sched: sched, owner: owner}
}

// Source exposes the handler's upstream stream. Items carry settled values,
// halt markers, or pending futures; most callers want Derive or Listen
// instead.
func (h *Handler[E]) Source() *stream.Stream[Item[E]] {
	return h.source
}

// Scheduler returns the scheduler this handler enqueues onto.
func (h *Handler[E]) Scheduler() *Scheduler {
	return h.sched
}

// Derive subscribes transform to h and returns the downstream handler of its
// results. For each emission, transform runs during pure propagation and its
// result is delivered downstream through the pure queue. Returning a
// HaltError suppresses the emission along this edge (logged at info level);
// any other error propagates out of the originating emit. On async edges the
// transform runs when the upstream future resolves, and halt markers pass
// through without invoking it.
func Derive[E, O any](h *Handler[E], transform func(E) (O, error)) *Handler[O] {
	return deriveItems(h, func(v E) (Item[O], error) {
		o, err := transform(v)
		if err != nil {
			return Item[O]{}, err
		}
		return Item[O]{value: o}, nil
	})
}

// DeriveAsync subscribes an async transform to h. The returned future is
// delivered downstream immediately; downstream transforms chain onto it and
// observe the settled value when it resolves. A future settling with a
// HaltError stops propagation along the edge, exactly like a synchronous
// halt but resolved later.
func DeriveAsync[E, O any](h *Handler[E], transform func(E) *Future[O]) *Handler[O] {
	return deriveItems(h, func(v E) (Item[O], error) {
		return Item[O]{fut: transform(v)}, nil
	})
}

// deriveItems is the subscription core shared by Derive, DeriveAsync, and
// the listener derivations. tf maps an upstream value to a downstream item;
// delivery is always enqueued on the pure queue, never run inline.
func deriveItems[E, O any](h *Handler[E], tf func(E) (Item[O], error)) *Handler[O] {
	down := stream.New[Item[O]]()
	sub := h.source.Subscribe(func(it Item[E]) error {
		switch {
		case it.halt != nil:
			// Halt markers pass through; the downstream transform is not invoked.
			marker := it.halt
			h.sched.enqueue(QueuePure, func() error {
				return down.Push(Item[O]{halt: marker})
			})
		case it.fut != nil:
			next := chainItems(h.sched, it.fut, tf)
			h.sched.enqueue(QueuePure, func() error {
				return down.Push(Item[O]{fut: next})
			})
		default:
			out, err := tf(it.value)
			if err != nil {
				if halt, ok := asHalt(err); ok {
					h.sched.log.Info("propagation halted", "reason", halt.Reason)
					return nil
				}
				return err
			}
			h.sched.enqueue(QueuePure, func() error {
				return down.Push(out)
			})
		}
		return nil
	})
	h.sched.log.Debug("handler subscribed", "subscription", sub.ID())
	h.owner.OnTeardown(sub.Unsubscribe)
	return newHandler(down, h.sched, h.owner)
}

// chainItems chains tf onto an unresolved upstream future. Halt markers and
// errors carried by the upstream future pass through without invoking tf; a
// halt returned by tf becomes a settled halt marker on the downstream
// future; a future returned by tf is flattened.
func chainItems[E, O any](s *Scheduler, f *Future[E], tf func(E) (Item[O], error)) *Future[O] {
	next, resolve := NewFuture[O]()
	f.Then(func(v E, err error) {
		var zero O
		if err != nil {
			resolve(zero, err)
			return
		}
		it, err := tf(v)
		if err != nil {
			if halt, ok := asHalt(err); ok {
				s.log.Info("propagation halted", "reason", halt.Reason)
			} else {
				s.log.Error("async transform failed", "error", err)
			}
			resolve(zero, err)
			return
		}
		if fut, ok := it.Pending(); ok {
			fut.Then(resolve)
			return
		}
		resolve(it.value, nil)
	})
	return next
}
