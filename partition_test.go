package pulse

import (
	"errors"
	"testing"
)

func TestPartition(t *testing.T) {
	t.Run("exactly one branch fires per emission", func(t *testing.T) {
		sc, sched := newTestRig(t)
		on, emit := NewEvent[int](sc, sched)
		evens, odds := Partition(on, func(n int) (bool, error) {
			return n%2 == 0, nil
		})
		rec := &recorder{}
		Listen(evens, func(n int) error { rec.push("even"); return nil })
		Listen(odds, func(n int) error { rec.push("odd"); return nil })

		for _, n := range []int{1, 2, 3, 4} {
			if err := emit(n); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		rec.expect(t, "odd", "even", "odd", "even")
	})

	t.Run("branches carry the original value", func(t *testing.T) {
		sc, sched := newTestRig(t)
		on, emit := NewEvent[string](sc, sched)
		long, short := Partition(on, func(p string) (bool, error) {
			return len(p) >= 3, nil
		})
		rec := &recorder{}
		Listen(long, func(p string) error { rec.push(p); return nil })
		Listen(short, func(p string) error { rec.push(p + "!"); return nil })

		emit("hello")
		emit("hi")
		rec.expect(t, "hello", "hi!")
	})

	t.Run("predicate error fires neither branch", func(t *testing.T) {
		sc, sched := newTestRig(t)
		on, emit := NewEvent[int](sc, sched)
		wantErr := errors.New("bad predicate")
		a, b := Partition(on, func(n int) (bool, error) {
			return false, wantErr
		})
		rec := &recorder{}
		Listen(a, func(n int) error { rec.push(n); return nil })
		Listen(b, func(n int) error { rec.push(n); return nil })

		if err := emit(1); !errors.Is(err, wantErr) {
			t.Fatalf("expected predicate error out of emit, got %v", err)
		}
		rec.expect(t)
	})

	t.Run("branches compose further", func(t *testing.T) {
		sc, sched := newTestRig(t)
		on, emit := NewEvent[int](sc, sched)
		evens, _ := Partition(on, func(n int) (bool, error) {
			return n%2 == 0, nil
		})
		onHalf := Derive(evens, func(n int) (int, error) { return n / 2, nil })
		rec := &recorder{}
		Listen(onHalf, func(n int) error { rec.push(n); return nil })

		emit(1)
		emit(8)
		rec.expect(t, 4)
	})
}
