// internal/store/store.go
//
// Persistence interfaces for player ratings and interrupted ranked games.
// Implementations live next to this file:
//   - memory.go: maps behind an RWMutex (tests, development).
//   - sqlite.go: SQLite with embedded migrations (default).
//   - redis.go:  Redis hashes + a sorted set for the leaderboard.

package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a lookup has no row.
var ErrNotFound = errors.New("not found")

// DefaultElo is the rating assigned to a player on first reference.
const DefaultElo = 1000

// DefaultLeaderboardLimit is used when Leaderboard is called with limit <= 0.
const DefaultLeaderboardLimit = 10

// PlayerStats is a player's rating record.
type PlayerStats struct {
	PlayerID string `json:"playerId"`
	Elo      int    `json:"elo"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}

// NewPlayerStats returns the record for a player never seen before.
func NewPlayerStats(playerID string) PlayerStats {
	return PlayerStats{PlayerID: playerID, Elo: DefaultElo}
}

// ActiveGame is the durable part of an unfinished ranked session.
type ActiveGame struct {
	ChannelID string `json:"channelId"`
	Guesses   int    `json:"guesses"`
	Finished  bool   `json:"finished"`
}

// Snapshot maps player ID to that player's unfinished ranked game.
type Snapshot map[string]ActiveGame

// StatsStore persists player ratings.
type StatsStore interface {
	// GetOrCreate returns the player's stats, creating and saving the default
	// record on first reference.
	GetOrCreate(ctx context.Context, playerID string) (PlayerStats, error)

	// Save persists stats, replacing any previous record.
	Save(ctx context.Context, s PlayerStats) error

	// Leaderboard returns up to limit players ordered by elo descending,
	// DefaultLeaderboardLimit when limit <= 0.
	Leaderboard(ctx context.Context, limit int) ([]PlayerStats, error)

	// Standing returns the 1-based leaderboard position of playerID (0 if
	// unknown) and the total number of players.
	Standing(ctx context.Context, playerID string) (position, total int, err error)
}

// SnapshotStore persists the set of unfinished ranked games.
type SnapshotStore interface {
	// SaveSnapshot replaces the stored snapshot with snap.
	SaveSnapshot(ctx context.Context, snap Snapshot) error

	// LoadSnapshot returns the stored snapshot (empty if none).
	LoadSnapshot(ctx context.Context) (Snapshot, error)

	// Clear removes the stored snapshot.
	Clear(ctx context.Context) error
}

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store is a backend that provides both stores.
type Store interface {
	StatsStore
	SnapshotStore
	Close() error
}
