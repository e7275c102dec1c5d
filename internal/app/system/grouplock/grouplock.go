// Package grouplock serializes mutations per group. Membership updates
// are read-modify-write cycles over two collections; without a lock two
// concurrent adds to the same group can each read the old role-set and
// overwrite the other's write. Handlers take the group's lock for the
// whole cycle.
package grouplock

import "sync"

// Locker hands out one mutex per key. Entries are reference counted and
// removed when the last holder releases, so the map does not grow with
// the number of groups ever touched.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New returns an empty Locker.
func New() *Locker {
	return &Locker{locks: make(map[string]*entry)}
}

// Lock acquires the mutex for key and returns the release function.
//
//	unlock := locker.Lock(groupID.Hex())
//	defer unlock()
func (l *Locker) Lock(key string) func() {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
