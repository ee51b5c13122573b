// Package stream provides the multicast primitive backing every event
// handler: a push-based stream that delivers each value synchronously to all
// current subscribers. Subscriptions are cheap, identified, and safe to
// remove at any time; pushes that reach an unsubscribed callback are dropped.
package stream

import (
	"sync"

	"github.com/google/uuid"
)

// Stream is a synchronous multicast stream. Push delivers to every
// subscriber on the calling goroutine, in subscription order.
type Stream[T any] struct {
	mu   sync.Mutex
	subs []*Subscription[T]
}

// Subscription is a handle to one subscriber of a stream.
type Subscription[T any] struct {
	id     string
	stream *Stream[T]
	fn     func(T) error

	mu     sync.Mutex
	closed bool
}

// New creates an empty stream.
func New[T any]() *Stream[T] {
	return &Stream[T]{}
}

// Subscribe registers fn to receive every subsequent push. Returns a
// Subscription that must be unsubscribed when the owner goes away.
func (s *Stream[T]) Subscribe(fn func(T) error) *Subscription[T] {
	sub := &Subscription[T]{
		id:     uuid.NewString(),
		stream: s,
		fn:     fn,
	}
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
	return sub
}

// Push delivers v to all subscribers present when the call starts, in
// subscription order. Delivery stops at the first subscriber error, which is
// returned to the pusher. Subscribers removed mid-delivery are skipped.
func (s *Stream[T]) Push(v T) error {
	s.mu.Lock()
	subs := make([]*Subscription[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		if err := sub.deliver(v); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the current subscriber count.
func (s *Stream[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// ID returns the subscription's unique identifier.
func (sub *Subscription[T]) ID() string {
	return sub.id
}

// Unsubscribe removes the subscription from its stream. Further pushes are
// dropped for this subscriber. Safe to call more than once.
func (sub *Subscription[T]) Unsubscribe() {
	sub.mu.Lock()
	if sub.closed {
		sub.mu.Unlock()
		return
	}
	sub.closed = true
	sub.mu.Unlock()

	s := sub.stream
	s.mu.Lock()
	for i, candidate := range s.subs {
		if candidate == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
}

// deliver invokes the subscriber callback unless the subscription has been
// closed since the push snapshot was taken.
func (sub *Subscription[T]) deliver(v T) error {
	sub.mu.Lock()
	closed := sub.closed
	sub.mu.Unlock()
	if closed {
		return nil
	}
	return sub.fn(v)
}
