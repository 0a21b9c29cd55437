package service

import (
	"sync"

	"github.com/google/uuid"
)

// jobLocks serializes mutations per job aggregate. Concurrent decisions
// on bids of the same job take the same lock, so at most one accept can
// win; operations on different jobs never contend.
type jobLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*jobLock
}

type jobLock struct {
	sync.Mutex
	refs int
}

func newJobLocks() *jobLocks {
	return &jobLocks{locks: make(map[uuid.UUID]*jobLock)}
}

// lock acquires the lock for the job and returns its release func.
func (l *jobLocks) lock(jobId uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[jobId]
	if !ok {
		entry = &jobLock{}
		l.locks[jobId] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.Lock()

	return func() {
		entry.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, jobId)
		}
		l.mu.Unlock()
	}
}
