package ordering

import (
	"context"
	"sync"

	"todo-list/internal/errors"
)

// ownerLocks is a keyed lock whose waiters give up when their context ends.
// Entries are removed once no goroutine holds or waits for them.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[string]*ownerLock
}

// ownerLock is a one-slot semaphore.
type ownerLock struct {
	slot chan struct{}
	refs int
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[string]*ownerLock)}
}

// lock waits until the owner's lock is held and returns its release func.
// It returns a timeout error if ctx ends first.
func (l *ownerLocks) lock(ctx context.Context, ownerID string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[ownerID]
	if !ok {
		entry = &ownerLock{slot: make(chan struct{}, 1)}
		l.locks[ownerID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.slot <- struct{}{}:
	case <-ctx.Done():
		l.release(ownerID, entry)
		return nil, errors.FromContextError("lock task list", ctx.Err())
	}

	return func() {
		<-entry.slot
		l.release(ownerID, entry)
	}, nil
}

func (l *ownerLocks) release(ownerID string, entry *ownerLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, ownerID)
	}
}

func (l *ownerLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
