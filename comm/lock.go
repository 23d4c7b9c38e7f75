package comm

import "sync"

// Lock is the coarse lock shared by a graph and everything that paints or
// analyses it. Analyses hold it while they mutate; painters try it and skip
// a frame when it is taken.
type Lock struct {
	mutex sync.Mutex
}

func (l *Lock) Lock() {
	l.mutex.Lock()
}

// TryLock acquires the lock when it is free and reports whether it did.
func (l *Lock) TryLock() bool {
	return l.mutex.TryLock()
}

func (l *Lock) Unlock() {
	l.mutex.Unlock()
}
