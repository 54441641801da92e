// Package handler implements short-lived, predicate-filtered subscriptions
// to an event stream, each bounded by a trigger count, a deadline, or both.
package handler

import (
	"context"
	"sync"
	"time"
)

// Registry holds live waiters and offers incoming events to each of them.
type Registry struct {
	mu      sync.Mutex
	waiters map[uint64]waiter
	nextID  uint64
}

// waiter is the type-erased view of a Waiter[T].
type waiter interface {
	offer(ev any)
	expired() bool
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{waiters: make(map[uint64]waiter)}
}

// Call offers ev to every live waiter. Waiters that completed or expired
// are dropped from the registry.
func (r *Registry) Call(ev any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, w := range r.waiters {
		w.offer(ev)
		if w.expired() {
			delete(r.waiters, id)
		}
	}
}

// Prune drops expired waiters without offering an event. Dropping is
// advisory and only bounds memory; Wait works the same either way.
func (r *Registry) Prune() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, w := range r.waiters {
		if w.expired() {
			delete(r.waiters, id)
		}
	}
}

// Length returns the number of registered waiters.
func (r *Registry) Length() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.waiters)
}

func (r *Registry) add(w waiter) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.waiters[r.nextID] = w
	return r.nextID
}

func (r *Registry) remove(id uint64) {
	r.mu.Lock()
	delete(r.waiters, id)
	r.mu.Unlock()
}

// Options bound a waiter's lifetime.
type Options struct {
	// Count retires the waiter after this many matching events. Zero or
	// negative means unbounded.
	Count int
	// Within sets the waiter's deadline, relative to its creation. Zero
	// means no deadline.
	Within time.Duration
	// Collect accumulates matching events for retrieval with Wait. When
	// false, Wait returns immediately with no results.
	Collect bool
}

// Waiter is a single-consumer subscription to events of type T. It is
// created with Add and consumed with Wait.
type Waiter[T any] struct {
	reg *Registry
	id  uint64

	filter   func(T) bool
	deadline time.Time
	collect  bool

	mu        sync.Mutex
	remaining int // -1 = unbounded
	results   []T
	delivered bool

	done chan []T // capacity 1; a waiter delivers at most once
}

// Add registers a new waiter for events of type T on r. filter may be nil
// to accept every event of that type.
func Add[T any](r *Registry, opts Options, filter func(T) bool) *Waiter[T] {
	w := &Waiter[T]{
		reg:       r,
		filter:    filter,
		collect:   opts.Collect,
		remaining: opts.Count,
		done:      make(chan []T, 1),
	}
	if opts.Count <= 0 {
		w.remaining = -1
	}
	if opts.Within > 0 {
		w.deadline = time.Now().Add(opts.Within)
	}

	w.id = r.add(w)
	return w
}

func (w *Waiter[T]) offer(ev any) {
	t, ok := ev.(T)
	if !ok || (w.filter != nil && !w.filter(t)) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.delivered || w.remaining == 0 {
		return
	}

	if w.collect {
		w.results = append(w.results, t)
	}
	if w.remaining > 0 {
		w.remaining--
	}

	if w.remaining == 0 || w.pastDeadline() {
		w.deliverLocked()
	}
}

func (w *Waiter[T]) pastDeadline() bool {
	return !w.deadline.IsZero() && time.Now().After(w.deadline)
}

// deliverLocked pushes the accumulated results through the handoff slot.
// The send never blocks: the channel has capacity 1 and a waiter delivers
// at most once, so an abandoned Wait can't stall the offering side.
func (w *Waiter[T]) deliverLocked() {
	w.delivered = true
	if !w.collect {
		return
	}

	select {
	case w.done <- w.results:
	default:
	}
}

// Expired reports whether the waiter has reached its count or its deadline
// and will match no further events.
func (w *Waiter[T]) Expired() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.delivered || w.remaining == 0 || w.pastDeadline()
}

func (w *Waiter[T]) expired() bool { return w.Expired() }

// Wait blocks until the waiter completes, then returns the collected
// events. When the deadline passes, or ctx is cancelled, it returns
// whatever has been collected so far; for a non-collecting waiter it
// returns nil immediately. The waiter is removed from the registry before
// Wait returns. Waiters are single-consumer: Wait is called at most once.
func (w *Waiter[T]) Wait(ctx context.Context) []T {
	defer w.reg.remove(w.id)

	if !w.collect {
		return nil
	}

	var timeout <-chan time.Time
	if !w.deadline.IsZero() {
		timer := time.NewTimer(time.Until(w.deadline))
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case res := <-w.done:
		return res
	case <-timeout:
	case <-ctx.Done():
	}

	// deadline passed or the caller gave up: stop matching and hand back
	// what we have
	w.mu.Lock()
	w.delivered = true
	res := w.results
	w.mu.Unlock()

	// a concurrent offer may have completed us in the meantime; prefer the
	// delivered slot so the result matches what the offering side saw
	select {
	case delivered := <-w.done:
		return delivered
	default:
	}
	return res
}

// WaitFor blocks until a single event of type T matching filter arrives, or
// ctx is cancelled. ok reports whether an event arrived in time.
func WaitFor[T any](ctx context.Context, r *Registry, filter func(T) bool) (t T, ok bool) {
	res := Add(r, Options{Count: 1, Collect: true}, filter).Wait(ctx)
	if len(res) == 0 {
		return t, false
	}
	return res[0], true
}

// Collect blocks until n events of type T matching filter arrive or within
// elapses, and returns the events collected so far. Fewer than n results is
// a normal outcome, not a failure.
func Collect[T any](ctx context.Context, r *Registry, n int, within time.Duration, filter func(T) bool) []T {
	return Add(r, Options{Count: n, Within: within, Collect: true}, filter).Wait(ctx)
}
