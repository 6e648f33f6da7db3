package service

import (
	"context"
	"sync"
)

type weekLock struct {
	ch   chan struct{}
	refs int
}

// weekLocks hands out one lock per week id. An entry lives only while some
// run holds or waits for it.
type weekLocks struct {
	mu    sync.Mutex
	locks map[uint]*weekLock
}

func newWeekLocks() *weekLocks {
	return &weekLocks{locks: make(map[uint]*weekLock)}
}

// acquire blocks until the week is free or ctx is done. The returned func
// releases the lock.
func (l *weekLocks) acquire(ctx context.Context, weekID uint) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[weekID]
	if !ok {
		lock = &weekLock{ch: make(chan struct{}, 1)}
		l.locks[weekID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	select {
	case lock.ch <- struct{}{}:
		return func() {
			<-lock.ch
			l.drop(weekID, lock)
		}, nil
	case <-ctx.Done():
		l.drop(weekID, lock)
		return nil, ctx.Err()
	}
}

func (l *weekLocks) drop(weekID uint, lock *weekLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, weekID)
	}
}

func (l *weekLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
