package nasc

import (
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// registryLock serializes registry operations and remembers the goroutine
// holding it, so a callback calling back into the registry fails instead of
// waiting for itself.
type registryLock struct {
	mu    sync.Mutex
	owner atomic.Int64
}

// held reports whether the calling goroutine holds the lock.
func (l *registryLock) held() bool {
	return l.owner.Load() == goid.Get()
}

// lock acquires the lock. It returns ReentrantCallError when the calling
// goroutine holds the lock already.
func (l *registryLock) lock(op string) error {
	if l.held() {
		return &ReentrantCallError{Op: op}
	}
	l.mu.Lock()
	l.owner.Store(goid.Get())
	return nil
}

// mustLock is lock for operations without error result, it panics on re-entry.
func (l *registryLock) mustLock(op string) {
	if err := l.lock(op); err != nil {
		panic(err)
	}
}

func (l *registryLock) unlock() {
	l.owner.Store(0)
	l.mu.Unlock()
}

// read acquires the lock for a read-only operation and returns the function
// releasing it. On the goroutine holding the lock already it acquires
// nothing, the state is read as is.
func (l *registryLock) read() func() {
	if l.held() {
		return func() {}
	}
	l.mu.Lock()
	l.owner.Store(goid.Get())
	return l.unlock
}
