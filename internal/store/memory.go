// internal/store/memory.go
//
// In-memory implementation of Store.
// Used in tests and when durability is not required.
//
// Characteristics:
//   - Stats and the active-game snapshot live in maps.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"sync"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex           // guards stats and snapshot
	stats    map[string]PlayerStats // keyed by player ID
	snapshot Snapshot
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{stats: make(map[string]PlayerStats), snapshot: Snapshot{}}
}

func (m *memory) GetOrCreate(ctx context.Context, playerID string) (PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stats[playerID]
	if !ok {
		s = NewPlayerStats(playerID)
		m.stats[playerID] = s
	}
	return s, nil
}

func (m *memory) Save(ctx context.Context, s PlayerStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[s.PlayerID] = s
	return nil
}

// sorted returns every player ordered by elo desc, then player ID.
func (m *memory) sorted() []PlayerStats {
	out := make([]PlayerStats, 0, len(m.stats))
	for _, s := range m.stats {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Elo != out[j].Elo {
			return out[i].Elo > out[j].Elo
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}

func (m *memory) Leaderboard(ctx context.Context, limit int) ([]PlayerStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	all := m.sorted()
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memory) Standing(ctx context.Context, playerID string) (int, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.sorted()
	for i, s := range all {
		if s.PlayerID == playerID {
			return i + 1, len(all), nil
		}
	}
	return 0, len(all), nil
}

func (m *memory) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = copySnapshot(snap)
	return nil
}

func (m *memory) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copySnapshot(m.snapshot), nil
}

func (m *memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = Snapshot{}
	return nil
}

func (m *memory) Close() error { return nil }

func copySnapshot(s Snapshot) Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
