package lock

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// writerWeight is the semaphore size. A writer takes all of it, a reader one unit.
const writerWeight = 1 << 20

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

// Local is an in-process Locker with one weighted semaphore per key.
// Waiters are served in FIFO order, so a queued writer is not starved by readers.
type Local struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewLocal creates an in-process locker.
func NewLocal() *Local {
	return &Local{entries: make(map[string]*entry)}
}

// Lock acquires key exclusively.
func (l *Local) Lock(ctx context.Context, key string) (Release, error) {
	return l.acquire(ctx, key, writerWeight)
}

// RLock acquires key shared.
func (l *Local) RLock(ctx context.Context, key string) (Release, error) {
	return l.acquire(ctx, key, 1)
}

func (l *Local) acquire(ctx context.Context, key string, weight int64) (Release, error) {
	e := l.ref(key)
	if err := e.sem.Acquire(ctx, weight); err != nil {
		l.unref(key)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.sem.Release(weight)
			l.unref(key)
		})
	}, nil
}

func (l *Local) ref(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(writerWeight)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Local) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// size returns the number of tracked keys.
func (l *Local) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
