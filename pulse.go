// Package pulse is an event-composition core for fine-grained reactive
// runtimes. Applications declare root events, derive transformed handlers
// from them, split and merge streams, and attach effects — with a scheduler
// that keeps every emission's pure propagation, mutation effects, and
// listener effects in a fixed order across the whole handler graph.
//
// A root event pairs a handler with its emitter:
//
//	sc := scope.New()
//	sched := pulse.NewScheduler(pulse.SchedulerConfig{})
//
//	onMessage, emitMessage := pulse.NewEvent[string](sc, sched)
//	onDecorated := pulse.Derive(onMessage, func(msg string) (string, error) {
//		return "Decorated: " + msg, nil
//	})
//	pulse.Listen(onDecorated, func(msg string) error {
//		fmt.Println(msg)
//		return nil
//	})
//	emitMessage("hello")
//
// Transforms can stop an emission along their edge by returning a halt:
//
//	onValid := pulse.Derive(onMessage, func(msg string) (string, error) {
//		if len(msg) < 3 {
//			return "", pulse.Halt("too short")
//		}
//		return msg, nil
//	})
//
// Async transforms return a Future; the value propagates when it settles,
// and halts survive the async boundary:
//
//	onReply := pulse.DeriveAsync(onMessage, func(msg string) *pulse.Future[string] {
//		return pulse.Go(func() (string, error) {
//			return client.Send(msg)
//		})
//	})
//
// Hierarchical routing is layered on the same primitives by NewTopic, which
// addresses events by string key paths and fans deep emissions out to every
// subscribed ancestor.
//
// Every subscription is registered with the enclosing scope (package scope)
// and removed when it disposes; emitters retained past disposal are safe
// no-ops. The otel subpackage exports scheduler queue activity as
// OpenTelemetry metrics.
package pulse
