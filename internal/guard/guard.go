// Package guard serializes work per player.
//
// A Guard keeps one weighted semaphore (size 1) per player that currently has
// a holder or a waiter. Entries are reference counted and removed as soon as
// nobody holds or waits on them, so memory stays bounded by active players.
package guard

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

type entry struct {
	sem  *semaphore.Weighted
	refs int // holders + waiters
}

// Guard is a registry of per-player locks. The zero value is not usable; use New.
type Guard struct {
	mu    sync.Mutex
	locks map[string]*entry
}

// New returns an empty Guard.
func New() *Guard {
	return &Guard{locks: make(map[string]*entry)}
}

// Acquire blocks until the caller holds playerID's lock or ctx is done.
// On success the returned release func must be called exactly once.
func (g *Guard) Acquire(ctx context.Context, playerID string) (release func(), err error) {
	g.mu.Lock()
	e, ok := g.locks[playerID]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		g.locks[playerID] = e
	}
	e.refs++
	g.mu.Unlock()

	if err := e.sem.Acquire(ctx, 1); err != nil {
		g.drop(playerID, e)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.sem.Release(1)
			g.drop(playerID, e)
		})
	}, nil
}

// Do runs fn while holding playerID's lock.
func (g *Guard) Do(ctx context.Context, playerID string, fn func() error) error {
	release, err := g.Acquire(ctx, playerID)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

func (g *Guard) drop(playerID string, e *entry) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e.refs--
	if e.refs == 0 && g.locks[playerID] == e {
		delete(g.locks, playerID)
	}
}

// Len reports how many players currently have a lock entry.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.locks)
}
