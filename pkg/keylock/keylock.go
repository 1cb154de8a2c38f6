package keylock

import (
	"context"
	"sync"
	"time"
)

// KeyLock provides exclusive locks scoped to a key. Locks for different
// keys are fully independent; callers blocked on the same key are served
// one at a time. Acquisition is bounded by the caller's context or the
// configured default timeout, whichever fires first.
type KeyLock struct {
	mu             sync.Mutex
	locks          map[int64]*entry
	defaultTimeout time.Duration
}

type entry struct {
	ch   chan struct{} // capacity 1, holds a token while unlocked
	refs int
}

func New(defaultTimeout time.Duration) *KeyLock {
	if defaultTimeout <= 0 {
		defaultTimeout = 5 * time.Second
	}
	return &KeyLock{
		locks:          make(map[int64]*entry),
		defaultTimeout: defaultTimeout,
	}
}

// Acquire blocks until the lock for key is held, the context is done, or
// the default timeout elapses. On success the caller must Release exactly
// once.
func (k *KeyLock) Acquire(ctx context.Context, key int64) error {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		e.ch <- struct{}{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	timer := time.NewTimer(k.defaultTimeout)
	defer timer.Stop()

	select {
	case <-e.ch:
		return nil
	case <-ctx.Done():
		k.abandon(key, e)
		return ctx.Err()
	case <-timer.C:
		k.abandon(key, e)
		return context.DeadlineExceeded
	}
}

// Release returns the lock for key. Releasing a key that is not held is a
// programming error and panics, same as sync.Mutex.
func (k *KeyLock) Release(key int64) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		k.mu.Unlock()
		panic("keylock: release of unheld key")
	}
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
		k.mu.Unlock()
		return
	}
	k.mu.Unlock()

	e.ch <- struct{}{}
}

func (k *KeyLock) abandon(key int64, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
}

// Len reports how many keys currently have waiters or holders. Used by
// health reporting and tests.
func (k *KeyLock) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
