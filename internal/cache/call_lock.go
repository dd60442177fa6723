package cache

import (
	"sync"
)

// CallLocker serializes webhook processing per call control id. Overlapping
// deliveries for the same call (for example two gather.ended events) are
// processed one at a time so call record updates do not interleave;
// deliveries for different calls proceed in parallel.
type CallLocker struct {
	mu    sync.Mutex
	locks map[string]*callLock
}

type callLock struct {
	mu   sync.Mutex
	refs int
}

// NewCallLocker creates an empty call locker
func NewCallLocker() *CallLocker {
	return &CallLocker{locks: make(map[string]*callLock)}
}

// Lock acquires the lock for a call control id, blocking until any holder
// releases it. The returned function releases the lock and must be called
// exactly once.
func (l *CallLocker) Lock(callControlID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[callControlID]
	if !ok {
		lock = &callLock{}
		l.locks[callControlID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, callControlID)
		}
		l.mu.Unlock()
	}
}
