package storage

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// keyedLocks hands out one weight-1 semaphore per key. Entries are dropped once
// no goroutine holds or waits on them, so the map stays proportional to the
// number of in-flight mutations rather than to the number of entities.
type keyedLocks[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*keyLock
}

type keyLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newKeyedLocks[K comparable]() *keyedLocks[K] {
	return &keyedLocks[K]{locks: make(map[K]*keyLock)}
}

// Acquire blocks until the key is free or ctx is done.
func (l *keyedLocks[K]) Acquire(ctx context.Context, key K) (release func(), err error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{sem: semaphore.NewWeighted(1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	if err := kl.sem.Acquire(ctx, 1); err != nil {
		l.drop(key, kl)
		return nil, err
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			kl.sem.Release(1)
			l.drop(key, kl)
		})
	}, nil
}

func (l *keyedLocks[K]) drop(key K, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

func (l *keyedLocks[K]) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
