package pulse

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/petal-labs/pulse/scope"
)

// Topic errors
var (
	ErrMissingPayload = errors.New("topic emit requires a payload")
	ErrKeyNotString   = errors.New("topic keys must be strings")
)

// Topic overlays hierarchical keyed routing on root events. Each tree node
// is created on demand and, once a subscriber arrives, carries its own
// (handler, emitter) pair; node states only move forward (absent, then
// eventless, then eventful) until the owning scope disposes.
//
// A Topic value is a view rooted at a key path; At returns a deeper view
// over the same tree, so t.At("a").On("b") and t.On("a", "b") address the
// same node.
type Topic struct {
	owner scope.Owner
	sched *Scheduler
	tree  *topicTree
	path  []string
}

// TopicEmitter emits into a topic tree: zero or more string keys followed by
// the payload, e.g. emit("user", "name", "ada") or emit(map[string]any{...}).
type TopicEmitter func(args ...any) error

type topicTree struct {
	mu   sync.Mutex
	root *topicNode
}

type topicNode struct {
	children map[string]*topicNode
	handler  *Handler[any]
	emit     Emitter[any]
}

// NewTopic creates an empty topic tree and returns the root view together
// with its emitter.
func NewTopic(owner scope.Owner, sched *Scheduler) (*Topic, TopicEmitter) {
	t := &Topic{
		owner: owner,
		sched: sched,
		tree:  &topicTree{root: &topicNode{}},
	}
	return t, t.Emit
}

// At returns a view of the same tree rooted keys deeper. Emissions and
// subscriptions through the view are relative to the combined path.
func (t *Topic) At(keys ...string) *Topic {
	return &Topic{
		owner: t.owner,
		sched: t.sched,
		tree:  t.tree,
		path:  joinKeys(t.path, keys),
	}
}

// On returns the handler at the given key path, creating the node and its
// event on first use. Compose on the result with Derive or Listen.
func (t *Topic) On(keys ...string) *Handler[any] {
	full := joinKeys(t.path, keys)

	t.tree.mu.Lock()
	node := t.tree.ensure(full)
	if node.handler == nil {
		node.handler, node.emit = NewEvent[any](t.owner, t.sched)
	}
	h := node.handler
	t.tree.mu.Unlock()
	return h
}

// Emit delivers a payload into the tree. All arguments but the last are
// string keys; the last is the payload.
//
// A map payload fans out: each entry is emitted one level deeper, in sorted
// key order so the sequence is deterministic. A non-map payload at path K is
// delivered to every ancestor holding an event, wrapped to reflect its
// position: emitting 3 at ("b", "c") delivers map[c:3] at "b" and 3 at
// ("b", "c"). Each delivery is a full emission cycle of its node's event.
func (t *Topic) Emit(args ...any) error {
	if len(args) == 0 {
		return ErrMissingPayload
	}
	keys := t.path
	for _, a := range args[:len(args)-1] {
		k, ok := a.(string)
		if !ok {
			return fmt.Errorf("%w: got %T", ErrKeyNotString, a)
		}
		keys = joinKeys(keys, []string{k})
	}
	return t.emitAt(keys, args[len(args)-1])
}

func (t *Topic) emitAt(keys []string, payload any) error {
	if m, ok := payload.(map[string]any); ok {
		ks := make([]string, 0, len(m))
		for k := range m {
			ks = append(ks, k)
		}
		sort.Strings(ks)
		for _, k := range ks {
			if err := t.emitAt(joinKeys(keys, []string{k}), m[k]); err != nil {
				return err
			}
		}
		return nil
	}

	// Deliver at every prefix that has an event, shallowest first, with the
	// payload wrapped to reflect the remaining suffix. Emitters run outside
	// the tree lock since they flush user code.
	type delivery struct {
		emit  Emitter[any]
		value any
	}
	var hops []delivery
	t.tree.mu.Lock()
	t.tree.ensure(keys)
	cur := t.tree.root
	for i := 0; i <= len(keys); i++ {
		if cur.emit != nil {
			hops = append(hops, delivery{cur.emit, wrapPayload(keys[i:], payload)})
		}
		if i < len(keys) {
			cur = cur.children[keys[i]]
		}
	}
	t.tree.mu.Unlock()

	for _, d := range hops {
		if err := d.emit(d.value); err != nil {
			return err
		}
	}
	return nil
}

// ensure walks the path, creating missing nodes. Callers must hold tt.mu.
func (tt *topicTree) ensure(path []string) *topicNode {
	node := tt.root
	for _, k := range path {
		if node.children == nil {
			node.children = make(map[string]*topicNode)
		}
		child, ok := node.children[k]
		if !ok {
			child = &topicNode{}
			node.children[k] = child
		}
		node = child
	}
	return node
}

// wrapPayload nests payload under the suffix keys, innermost last:
// wrapPayload([b c], 3) is map[b:map[c:3]].
func wrapPayload(suffix []string, payload any) any {
	v := payload
	for i := len(suffix) - 1; i >= 0; i-- {
		v = map[string]any{suffix[i]: v}
	}
	return v
}

// joinKeys concatenates two key paths into a fresh slice.
func joinKeys(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
