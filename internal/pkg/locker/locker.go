package locker

import "sync"

// Keyed hands out one mutex per key so the read-latest-then-write
// sequence of a clock action is serialized per employee. Two kiosks
// racing on the same PIN cannot both resolve to CLOCK_IN.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[string]*entry)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *Keyed) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// Gate separates normal operations from exclusive ones. Clock commits
// hold it shared; the weekly purge holds it exclusively so it never
// overlaps an in-flight commit.
type Gate struct {
	mu sync.RWMutex
}

func NewGate() *Gate {
	return &Gate{}
}

func (g *Gate) Enter() func() {
	g.mu.RLock()
	return g.mu.RUnlock
}

func (g *Gate) Exclusive() func() {
	g.mu.Lock()
	return g.mu.Unlock
}
