package pulse

import (
	"github.com/petal-labs/pulse/scope"
	"github.com/petal-labs/pulse/stream"
)

// Emitter pushes a value into a root handler. The push is enqueued on the
// pure queue and the queues are flushed before the call returns, so all
// synchronous transforms and effects for the emission have run (or their
// futures are in flight) by then. Synchronous transform and effect errors
// surface as the returned error.
type Emitter[E any] func(E) error

// NewEvent creates a root event: a handler to compose on and the emitter
// that feeds it. Subscriptions made through the handler are registered with
// owner and removed when it disposes; an emitter retained past disposal
// pushes into a stream nobody observes.
func NewEvent[E any](owner scope.Owner, sched *Scheduler) (*Handler[E], Emitter[E]) {
	src := stream.New[Item[E]]()
	h := newHandler(src, sched, owner)
	emit := func(v E) error {
		sched.enqueue(QueuePure, func() error {
			return src.Push(Item[E]{value: v})
		})
		return sched.Flush()
	}
	return h, emit
}
