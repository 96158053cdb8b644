package booking

import "sync"

// workerLocks serializes the check-and-create sequence per worker so two
// concurrent requests cannot both pass the conflict check for the same
// worker. The storage-level uniqueness index remains as a second guard for
// multi-process deployments.
type workerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newWorkerLocks() *workerLocks {
	return &workerLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for workerID and returns its unlock function.
func (w *workerLocks) acquire(workerID string) func() {
	w.mu.Lock()
	l, ok := w.locks[workerID]
	if !ok {
		l = &sync.Mutex{}
		w.locks[workerID] = l
	}
	w.mu.Unlock()

	l.Lock()
	return l.Unlock
}
