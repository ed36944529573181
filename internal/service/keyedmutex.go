package service

import (
	"sync"

	"github.com/google/uuid"
)

// keyedMutex provides one mutex per auction id so bid resolution and
// settlement for the same auction are strictly serialized while disjoint
// auctions never contend. Entries are not evicted: the live-auction working
// set is bounded by the league schedule, and a stale mutex is just an idle
// struct.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// newKeyedMutex creates an empty keyedMutex.
func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use.
func (k *keyedMutex) Lock(key uuid.UUID) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
}

// Unlock releases the mutex for key. Must follow a Lock for the same key.
func (k *keyedMutex) Unlock(key uuid.UUID) {
	k.mu.Lock()
	m := k.locks[key]
	k.mu.Unlock()

	m.Unlock()
}
