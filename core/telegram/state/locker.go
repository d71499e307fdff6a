package state

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// Locker is a keyed mutex. Entries are reference counted and dropped once
// no goroutine holds or waits for them, so memory stays bounded by the
// number of identities currently in flight.
type Locker struct {
	mu   sync.Mutex
	keys map[int64]*entry
}

// NewLocker returns an empty Locker.
func NewLocker() *Locker {
	return &Locker{keys: make(map[int64]*entry)}
}

// Lock blocks until the key is free and returns the matching unlock func.
func (l *Locker) Lock(key int64) (unlock func()) {
	l.mu.Lock()
	e, ok := l.keys[key]
	if !ok {
		e = &entry{}
		l.keys[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			l.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(l.keys, key)
			}
			l.mu.Unlock()
		})
	}
}

// Len reports how many keys are currently held or awaited.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}
