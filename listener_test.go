package pulse

import (
	"testing"
	"time"
)

func TestListen(t *testing.T) {
	t.Run("effects follow propagation order across handlers", func(t *testing.T) {
		sc, sched := newTestRig(t)
		on, emit := NewEvent[int](sc, sched)
		onNext := Derive(on, func(n int) (int, error) { return n + 1, nil })
		rec := &recorder{}

		Listen(onNext, func(n int) error { rec.push("next"); return nil })
		Listen(on, func(n int) error { rec.push("root"); return nil })

		if err := emit(1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// The root listener is reached one propagation step earlier than the
		// derived one, so it fires first despite being registered later.
		rec.expect(t, "root", "next")
	})
}

func TestListenMutation(t *testing.T) {
	t.Run("runs before listener effects regardless of registration order", func(t *testing.T) {
		sc, sched := newTestRig(t)
		on, emit := NewEvent[int](sc, sched)
		rec := &recorder{}

		Listen(on, func(n int) error { rec.push("listener"); return nil })
		ListenMutation(on, func(n int) error { rec.push("mutation"); return nil })

		if err := emit(1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rec.expect(t, "mutation", "listener")
	})

	t.Run("listener observes state written by mutation effect", func(t *testing.T) {
		sc, sched := newTestRig(t)
		on, emit := NewEvent[int](sc, sched)
		state := 0
		rec := &recorder{}

		Listen(on, func(n int) error {
			rec.push(state)
			return nil
		})
		ListenMutation(on, func(n int) error {
			state = n
			return nil
		})

		if err := emit(9); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rec.expect(t, 9)
	})
}

func TestListenSync(t *testing.T) {
	t.Run("observes an async stage before it resolves", func(t *testing.T) {
		sc, sched := newTestRig(t)
		on, emit := NewEvent[int](sc, sched)
		onAsync := DeriveAsync(on, func(p int) *Future[int] {
			return Go(func() (int, error) {
				time.Sleep(10 * time.Millisecond)
				return p + 1, nil
			})
		})
		rec := &recorder{}
		Derive(onAsync, func(v int) (int, error) {
			rec.push(v)
			return v, nil
		})
		ListenSync(onAsync, func(f *Future[int]) error {
			rec.push(0)
			f.Then(func(v int, err error) {
				if err == nil {
					rec.push(v + 1)
				}
			})
			return nil
		})

		if err := emit(0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rec.expect(t, 0) // async stage observed, nothing resolved yet

		time.Sleep(50 * time.Millisecond)
		rec.expect(t, 0, 1, 2)
	})

	t.Run("synchronous edges arrive settled", func(t *testing.T) {
		sc, sched := newTestRig(t)
		on, emit := NewEvent[string](sc, sched)
		rec := &recorder{}
		ListenSync(on, func(f *Future[string]) error {
			v, err := f.Result()
			if err != nil {
				return err
			}
			rec.push(v)
			return nil
		})

		if err := emit("hello"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rec.expect(t, "hello")
	})

	t.Run("halted async edges settle with a halt marker", func(t *testing.T) {
		sc, sched := newTestRig(t)
		on, emit := NewEvent[int](sc, sched)
		onAsync := DeriveAsync(on, func(p int) *Future[int] {
			return Go(func() (int, error) {
				return 0, Halt("nope")
			})
		})
		onGated := Derive(onAsync, func(v int) (int, error) { return v, nil })
		rec := &recorder{}
		ListenSync(onGated, func(f *Future[int]) error {
			f.Then(func(v int, err error) {
				if IsHalt(err) {
					rec.push("halted")
				} else if err == nil {
					rec.push(v)
				}
			})
			return nil
		})

		if err := emit(1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
		rec.expect(t, "halted")
	})
}
