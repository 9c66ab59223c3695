// Package lock implements the scoped_lock(key) primitive from the
// concurrency design: guaranteed release on every exit path, with
// per-key locking so WeightTrainer/IndustryTrainer runs for different
// scopes never block each other but runs for the same scope always
// serialise.
package lock

import "sync"

// Registry hands out one *sync.Mutex per key, created lazily and reused
// for the lifetime of the process.
type Registry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRegistry returns an empty scoped-lock registry.
func NewRegistry() *Registry {
	return &Registry{locks: make(map[string]*sync.Mutex)}
}

func (r *Registry) mutexFor(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.locks[key]
	if !ok {
		m = &sync.Mutex{}
		r.locks[key] = m
	}
	return m
}

// Acquire blocks until the named scope's lock is held and returns a
// release function. Callers must defer the release so it runs on every
// exit path, including cancellation:
//
//	release := reg.Acquire("industry:software")
//	defer release()
func (r *Registry) Acquire(key string) (release func()) {
	m := r.mutexFor(key)
	m.Lock()
	released := false
	return func() {
		if released {
			return
		}
		released = true
		m.Unlock()
	}
}

// TryAcquire attempts to take the scope's lock without blocking. ok is
// false if another holder has it; release is nil in that case.
func (r *Registry) TryAcquire(key string) (release func(), ok bool) {
	m := r.mutexFor(key)
	if !m.TryLock() {
		return nil, false
	}
	released := false
	return func() {
		if released {
			return
		}
		released = true
		m.Unlock()
	}, true
}
