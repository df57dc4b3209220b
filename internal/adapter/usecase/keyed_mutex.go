package usecase

import "sync"

// keyedMutex serializes work per campaign id. Holding the per-key lock
// across the authorize+record pair prevents two in-flight recordings from
// both observing the same headroom. Entries are reference-counted and
// removed once the last holder releases.
type keyedMutex struct {
	mu   sync.Mutex
	keys map[int64]*keyedLock
}

type keyedLock struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{keys: make(map[int64]*keyedLock)}
}

// Lock acquires the lock for id and returns the matching unlock function.
func (k *keyedMutex) Lock(id int64) (unlock func()) {
	k.mu.Lock()
	l := k.keys[id]
	if l == nil {
		l = &keyedLock{}
		k.keys[id] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.keys, id)
		}
		k.mu.Unlock()
	}
}
