// Package ttl implements a concurrent map whose entries expire after a
// fixed idle lifetime.
package ttl

import (
	"sync"
	"time"
)

// Map is a concurrent map where every entry carries a last-touched
// timestamp. Entries idle for longer than the map's lifetime are treated as
// absent by all reads. A lifetime of 0 disables expiry entirely.
type Map[K comparable, V any] struct {
	lifetime time.Duration

	mu sync.RWMutex
	m  map[K]*entry[V]
}

type entry[V any] struct {
	value   V
	touched time.Time
}

// NewMap returns a new Map with the given entry lifetime.
func NewMap[K comparable, V any](lifetime time.Duration) *Map[K, V] {
	return &Map[K, V]{
		lifetime: lifetime,
		m:        make(map[K]*entry[V]),
	}
}

func (m *Map[K, V]) live(e *entry[V]) bool {
	return m.lifetime <= 0 || time.Since(e.touched) < m.lifetime
}

// Get returns the value at key k. Expired entries are treated as absent.
// Get does not refresh the entry's timestamp.
func (m *Map[K, V]) Get(k K) (v V, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.m[k]
	if !ok || !m.live(e) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set inserts or replaces the value at key k, resetting its timestamp.
func (m *Map[K, V]) Set(k K, v V) {
	m.mu.Lock()
	m.m[k] = &entry[V]{value: v, touched: time.Now()}
	m.mu.Unlock()
}

// Touch resets the timestamp of the entry at key k without changing its
// value. It is a no-op if k is absent or already expired.
func (m *Map[K, V]) Touch(k K) {
	m.mu.Lock()
	if e, ok := m.m[k]; ok && m.live(e) {
		e.touched = time.Now()
	}
	m.mu.Unlock()
}

// Has returns true if a live entry exists at key k.
func (m *Map[K, V]) Has(k K) bool {
	m.mu.RLock()
	e, ok := m.m[k]
	live := ok && m.live(e)
	m.mu.RUnlock()
	return live
}

// Remove removes the entry at key k. It returns true if a live entry
// existed.
func (m *Map[K, V]) Remove(k K) (exists bool) {
	m.mu.Lock()
	e, ok := m.m[k]
	exists = ok && m.live(e)
	delete(m.m, k)
	m.mu.Unlock()
	return exists
}

// Upsert replaces the value at key k with fn(old, ok), where ok reports
// whether a live entry existed. The read and the write happen under a
// single lock, so concurrent Upserts of the same key never lose updates.
func (m *Map[K, V]) Upsert(k K, fn func(old V, ok bool) V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var old V
	e, ok := m.m[k]
	if ok && m.live(e) {
		old = e.value
	} else {
		ok = false
	}
	m.m[k] = &entry[V]{value: fn(old, ok), touched: time.Now()}
}

// Modify applies fn to the live entry at key k, if any, refreshing its
// timestamp. It reports whether an entry was modified. Unlike Upsert,
// Modify never creates an entry.
func (m *Map[K, V]) Modify(k K, fn func(V) V) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.m[k]
	if !ok || !m.live(e) {
		return false
	}
	e.value = fn(e.value)
	e.touched = time.Now()
	return true
}

// Length returns the number of live entries.
func (m *Map[K, V]) Length() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int
	for _, e := range m.m {
		if m.live(e) {
			n++
		}
	}
	return n
}

// Values returns all live values. The returned slice is unordered.
func (m *Map[K, V]) Values() []V {
	m.mu.RLock()
	defer m.mu.RUnlock()

	values := make([]V, 0, len(m.m))
	for _, e := range m.m {
		if m.live(e) {
			values = append(values, e.value)
		}
	}
	return values
}

// Prune drops expired entries and returns how many were dropped. Expiry is
// lazy, so Prune only reclaims memory; it never changes what readers
// observe.
func (m *Map[K, V]) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int
	for k, e := range m.m {
		if !m.live(e) {
			delete(m.m, k)
			n++
		}
	}
	return n
}
