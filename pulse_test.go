package pulse

import (
	"log/slog"
	"reflect"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/petal-labs/pulse/scope"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder collects observed values across goroutines.
type recorder struct {
	mu   sync.Mutex
	vals []any
}

func (r *recorder) push(v any) {
	r.mu.Lock()
	r.vals = append(r.vals, v)
	r.mu.Unlock()
}

func (r *recorder) values() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]any, len(r.vals))
	copy(out, r.vals)
	return out
}

func (r *recorder) expect(t *testing.T, want ...any) {
	t.Helper()
	got := r.values()
	if len(want) == 0 {
		if len(got) != 0 {
			t.Errorf("expected no values, got %v", got)
		}
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

// newTestRig returns a fresh scope and a quiet scheduler, with the scope
// disposed at test end.
func newTestRig(t *testing.T) (*scope.Scope, *Scheduler) {
	t.Helper()
	sc := scope.New()
	t.Cleanup(sc.Dispose)
	sched := NewScheduler(SchedulerConfig{
		Logger: slog.New(slog.DiscardHandler),
	})
	return sc, sched
}
