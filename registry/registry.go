// Package registry counts live references to style keys.
//
// A Registry maps each key to a positive use count. An entry exists exactly
// while its count is above zero. The first acquisition of a key that has no
// entry reports it as new so the caller can schedule a rebuild; the registry
// itself never performs one.
//
// All mutation happens under a single mutex and every critical section is an
// O(1) map operation.
package registry

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Registry is a mutex-guarded use counter. The zero value is not usable;
// call New.
type Registry[K comparable] struct {
	mu     sync.Mutex
	counts map[K]int

	// onNew runs outside the lock after a key gains its entry.
	onNew func(K)
}

// New returns an empty registry. onNew, if non-nil, is called after each
// acquisition that created an entry, outside the registry lock.
func New[K comparable](onNew func(K)) *Registry[K] {
	return &Registry[K]{
		counts: make(map[K]int),
		onNew:  onNew,
	}
}

// Acquire increments the count of key and returns a Handle that releases it.
func (r *Registry[K]) Acquire(key K) *Handle[K] {
	r.mu.Lock()
	n := r.counts[key]
	r.counts[key] = n + 1
	r.mu.Unlock()

	if n == 0 && r.onNew != nil {
		r.onNew(key)
	}

	h := &Handle[K]{key: key, state: &handleState[K]{reg: r}}
	// An unreachable handle that was never closed still gives back its use.
	runtime.AddCleanup(h, func(s *handleState[K]) { s.release(key) }, h.state)
	return h
}

// Release decrements the count of key, removing the entry at zero.
// Releasing a key with no entry is a no-op.
func (r *Registry[K]) Release(key K) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.counts[key]
	if !ok {
		return
	}
	if n <= 1 {
		delete(r.counts, key)
		return
	}
	r.counts[key] = n - 1
}

// Count returns the current use count of key.
func (r *Registry[K]) Count(key K) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key]
}

// Len returns the number of keys with a live entry.
func (r *Registry[K]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.counts)
}

// Keys returns a snapshot of the keys with a live entry, in no particular
// order.
func (r *Registry[K]) Keys() []K {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]K, 0, len(r.counts))
	for k := range r.counts {
		keys = append(keys, k)
	}
	return keys
}

// handleState is kept apart from Handle so the cleanup can reference it
// without keeping the Handle reachable.
type handleState[K comparable] struct {
	reg      *Registry[K]
	released atomic.Bool
}

func (s *handleState[K]) release(key K) bool {
	if !s.released.CompareAndSwap(false, true) {
		return false
	}
	s.reg.Release(key)
	return true
}

// Handle holds one use of a key. Close releases it exactly once.
type Handle[K comparable] struct {
	key   K
	state *handleState[K]
}

// Key returns the key the handle holds.
func (h *Handle[K]) Key() K {
	return h.key
}

// Close releases the handle's use. Later calls do nothing and return false.
func (h *Handle[K]) Close() bool {
	return h.state.release(h.key)
}

// Closed reports whether the handle has been released.
func (h *Handle[K]) Closed() bool {
	return h.state.released.Load()
}
