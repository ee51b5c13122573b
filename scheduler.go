package pulse

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Queue names, used in observer callbacks and logs.
const (
	QueuePure     = "pure"
	QueueMutation = "mutation"
	QueueListener = "listener"
)

// task is one unit of scheduled work. A non-nil error aborts the current
// drain and propagates out of Flush (and out of the emit that triggered it).
type task func() error

// QueueObserver receives scheduler activity, e.g. for metrics. All callbacks
// happen outside the scheduler lock and must be safe for concurrent use.
type QueueObserver interface {
	// TaskEnqueued is called after a task lands on the named queue.
	TaskEnqueued(queue string)

	// DrainStarted is called when a drain of the named queue begins.
	DrainStarted(queue string)

	// DrainFinished is called when a drain ends, with the number of tasks run.
	DrainFinished(queue string, tasks int)
}

// QueueDepths is a snapshot of pending work per queue.
type QueueDepths struct {
	Pure     int
	Mutation int
	Listener int
}

// SchedulerConfig configures a Scheduler.
type SchedulerConfig struct {
	// Logger receives halt and diagnostic logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Observer, if set, receives queue activity callbacks.
	Observer QueueObserver
}

// Scheduler orders all work triggered by emissions. It owns three FIFO
// queues drained in a fixed order: pure transform deliveries first, then
// mutation effects, then listener effects. A flush keeps cycling until all
// three queues are empty, so emissions triggered inside effects are fully
// processed in the same pass.
//
// Each queue's drain is guarded by a running flag; a Flush reached from
// inside a drain (a reentrant emit) backs off and leaves the remaining work
// to the outer pass. Queue state is mutex-guarded because async transform
// resolutions enqueue from their own goroutines.
type Scheduler struct {
	log *slog.Logger
	obs QueueObserver
	seq atomic.Uint64

	mu              sync.Mutex
	pure            []task
	mutation        []task
	listener        []task
	pureRunning     bool
	mutationRunning bool
	listenerRunning bool
	deferred        bool
}

// NewScheduler creates a scheduler with the given configuration.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{log: logger, obs: cfg.Observer}
}

// enqueue appends t to the named queue.
func (s *Scheduler) enqueue(queue string, t task) {
	s.mu.Lock()
	switch queue {
	case QueuePure:
		s.pure = append(s.pure, t)
	case QueueMutation:
		s.mutation = append(s.mutation, t)
	case QueueListener:
		s.listener = append(s.listener, t)
	}
	s.mu.Unlock()

	if s.obs != nil {
		s.obs.TaskEnqueued(queue)
	}
}

// Flush drains the queues in order until all are empty: pure to fixpoint,
// then mutation effects, then listener effects. Work enqueued by effects
// (including reentrant emits) is processed before Flush returns. A task
// error aborts the pass and is returned; the scheduler remains usable.
//
// Calling Flush from inside a drain is safe and returns immediately once it
// reaches the queue currently draining; the outer pass finishes the work.
func (s *Scheduler) Flush() error {
	for {
		done, err := s.drainPure()
		if err != nil {
			return err
		}
		if !done {
			return nil
		}
		done, err = s.drainEffects(QueueMutation)
		if err != nil {
			return err
		}
		if !done {
			return nil
		}
		done, err = s.drainEffects(QueueListener)
		if err != nil {
			return err
		}
		if !done {
			return nil
		}

		s.mu.Lock()
		idle := len(s.pure) == 0 && len(s.mutation) == 0 && len(s.listener) == 0 && !s.deferred
		s.deferred = false
		s.mu.Unlock()
		if idle {
			return nil
		}
	}
}

// scheduleFlush requests a drain for work enqueued outside the emit path,
// typically from an async resolution. While any drain is active it only
// marks the work pending; the active pass will pick it up. Otherwise it
// flushes immediately on the calling goroutine.
func (s *Scheduler) scheduleFlush() {
	s.mu.Lock()
	busy := s.pureRunning || s.mutationRunning || s.listenerRunning
	if busy {
		s.deferred = true
	}
	s.mu.Unlock()
	if busy {
		return
	}
	if err := s.Flush(); err != nil {
		s.log.Error("deferred flush failed", "error", err)
	}
}

// drainPure runs pure tasks one at a time until the queue is empty. Tasks
// enqueued during the drain are drained in the same pass. Returns false if
// a drain was already in progress.
func (s *Scheduler) drainPure() (bool, error) {
	s.mu.Lock()
	if s.pureRunning {
		s.mu.Unlock()
		return false, nil
	}
	s.pureRunning = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.pureRunning = false
		s.mu.Unlock()
	}()

	if s.obs != nil {
		s.obs.DrainStarted(QueuePure)
	}
	drain := s.seq.Add(1)
	ran := 0
	for {
		s.mu.Lock()
		if len(s.pure) == 0 {
			s.mu.Unlock()
			break
		}
		t := s.pure[0]
		s.pure = s.pure[1:]
		s.mu.Unlock()

		ran++
		if err := t(); err != nil {
			if s.obs != nil {
				s.obs.DrainFinished(QueuePure, ran)
			}
			return true, err
		}
	}
	if s.obs != nil {
		s.obs.DrainFinished(QueuePure, ran)
	}
	s.log.Debug("pure queue drained", "drain", drain, "tasks", ran)
	return true, nil
}

// drainEffects drains the mutation or listener queue by snapshotting the
// pending tasks, clearing the queue, and running the snapshot; it loops
// while new tasks keep arriving. A task error discards the rest of the
// snapshot. Returns false if a drain was already in progress.
func (s *Scheduler) drainEffects(queue string) (bool, error) {
	s.mu.Lock()
	running, pending := s.effectQueue(queue)
	if *running {
		s.mu.Unlock()
		return false, nil
	}
	*running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		*running = false
		s.mu.Unlock()
	}()

	if s.obs != nil {
		s.obs.DrainStarted(queue)
	}
	drain := s.seq.Add(1)
	ran := 0
	for {
		s.mu.Lock()
		if len(*pending) == 0 {
			s.mu.Unlock()
			break
		}
		batch := *pending
		*pending = nil
		s.mu.Unlock()

		for _, t := range batch {
			ran++
			if err := t(); err != nil {
				if s.obs != nil {
					s.obs.DrainFinished(queue, ran)
				}
				return true, err
			}
		}
	}
	if s.obs != nil {
		s.obs.DrainFinished(queue, ran)
	}
	s.log.Debug("effect queue drained", "queue", queue, "drain", drain, "tasks", ran)
	return true, nil
}

// effectQueue maps a queue name to its running flag and backing slice.
// Callers must hold s.mu.
func (s *Scheduler) effectQueue(queue string) (*bool, *[]task) {
	if queue == QueueMutation {
		return &s.mutationRunning, &s.mutation
	}
	return &s.listenerRunning, &s.listener
}

// Introspect logs and returns the current queue depths.
func (s *Scheduler) Introspect() QueueDepths {
	s.mu.Lock()
	d := QueueDepths{
		Pure:     len(s.pure),
		Mutation: len(s.mutation),
		Listener: len(s.listener),
	}
	s.mu.Unlock()

	s.log.Info("queue depths",
		"pure", d.Pure,
		"mutation", d.Mutation,
		"listener", d.Listener,
	)
	return d
}
