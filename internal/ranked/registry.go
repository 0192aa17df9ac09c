package ranked

import (
	"sync"

	"github.com/robalobadob/wordl-ranked/internal/game"
	"github.com/robalobadob/wordl-ranked/internal/store"
)

// Registry holds the active casual and ranked sessions, one of each per player.
// The mutex only guards map access; per-player ordering comes from the guard.
type Registry struct {
	mu     sync.RWMutex
	casual map[string]*game.Session
	ranked map[string]*game.Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Reset()
	return r
}

// Reset drops every active session.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.casual = make(map[string]*game.Session)
	r.ranked = make(map[string]*game.Session)
}

func (r *Registry) table(mode game.Mode) map[string]*game.Session {
	if mode == game.ModeRanked {
		return r.ranked
	}
	return r.casual
}

// Get returns the player's session for mode.
func (r *Registry) Get(playerID string, mode game.Mode) (*game.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.table(mode)[playerID]
	return s, ok
}

// Active returns the session a guess from playerID applies to: the ranked
// one if present, otherwise the casual one.
func (r *Registry) Active(playerID string) (*game.Session, bool) {
	if s, ok := r.Get(playerID, game.ModeRanked); ok {
		return s, true
	}
	return r.Get(playerID, game.ModeCasual)
}

// Put stores s as the player's session for its mode.
func (r *Registry) Put(s *game.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table(s.Mode)[s.PlayerID] = s
}

// Remove deletes the player's session for mode if it is still sessionID.
func (r *Registry) Remove(playerID string, mode game.Mode, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.table(mode)
	if s, ok := t[playerID]; ok && s.ID == sessionID {
		delete(t, playerID)
	}
}

// Len returns the number of active sessions for mode.
func (r *Registry) Len(mode game.Mode) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.table(mode))
}

// Snapshot builds the durable view of unfinished ranked sessions, with
// staged replacing (or, if staged is finished, removing) its player's entry.
func (r *Registry) Snapshot(staged *game.Session) store.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(store.Snapshot, len(r.ranked)+1)
	for id, s := range r.ranked {
		if !s.Finished {
			out[id] = activeGame(s)
		}
	}
	if staged != nil && staged.Mode == game.ModeRanked {
		if staged.Finished {
			delete(out, staged.PlayerID)
		} else {
			out[staged.PlayerID] = activeGame(staged)
		}
	}
	return out
}

func activeGame(s *game.Session) store.ActiveGame {
	return store.ActiveGame{ChannelID: s.ChannelID, Guesses: s.GuessCount(), Finished: s.Finished}
}
