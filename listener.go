package pulse

// Listen subscribes effect to run after all pure transforms and all mutation
// effects of each emission. Effects run in the order pure propagation
// reaches them: handlers nearer the emitting event before deeper ones, and
// effects on one handler in registration order. On async edges the effect is enqueued when the edge's future
// resolves. An effect error propagates out of the flush that ran it and
// discards the remaining effects of that drain.
func Listen[E any](h *Handler[E], effect func(E) error) {
	listenOn(h, QueueListener, effect)
}

// ListenMutation is Listen for the mutation queue: effects run after pure
// propagation completes but strictly before any listener effect. Use it for
// state writes that listener effects need to observe.
func ListenMutation[E any](h *Handler[E], effect func(E) error) {
	listenOn(h, QueueMutation, effect)
}

// listenOn subscribes a transform that defers effect onto the named queue.
// The common case enqueues during a pure drain and the effect runs later in
// the same flush; enqueues from async resolutions trigger their own flush.
func listenOn[E any](h *Handler[E], queue string, effect func(E) error) {
	deriveItems(h, func(v E) (Item[struct{}], error) {
		h.sched.enqueue(queue, func() error {
			return effect(v)
		})
		h.sched.scheduleFlush()
		return Item[struct{}]{}, nil
	})
}

// ListenSync subscribes an effect that observes each emission at propagation
// time, before any async transform resolves. The effect receives a future:
// already settled for synchronous edges, and otherwise resolving alongside
// the upstream future. A halt on an async edge settles the future with the
// halt error, which the effect can detect with IsHalt; it still learns the
// pipeline stage was reached. A synchronous halt upstream stops the emission
// before it reaches the effect, so the effect is not called.
func ListenSync[E any](h *Handler[E], effect func(*Future[E]) error) {
	sub := h.source.Subscribe(func(it Item[E]) error {
		f := settledFuture(it)
		h.sched.enqueue(QueueListener, func() error {
			return effect(f)
		})
		h.sched.scheduleFlush()
		return nil
	})
	h.owner.OnTeardown(sub.Unsubscribe)
}

// settledFuture wraps an item as a future for sync listeners.
func settledFuture[E any](it Item[E]) *Future[E] {
	f, resolve := NewFuture[E]()
	switch {
	case it.halt != nil:
		var zero E
		resolve(zero, it.halt)
	case it.fut != nil:
		it.fut.Then(resolve)
	default:
		resolve(it.value, nil)
	}
	return f
}
