// internal/store/sqlite.go
//
// SQLite implementation of Store.
// Responsibilities:
//   - Opening SQLite with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying embedded migrations (idempotent, recorded in _migrations).
//   - Player stats rows and the active ranked game snapshot table.

package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLite is a Store backed by a single SQLite file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if missing) the database at dsn and migrates it.
func OpenSQLite(dsn string) (*SQLite, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// openDB ensures the parent directory exists and configures busy timeout,
// WAL journaling and foreign keys.
func openDB(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	// One writer keeps snapshot replacement and stats updates from racing on SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// migrate applies embedded migrations in lexical order, skipping those
// already recorded in _migrations.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

func (s *SQLite) GetOrCreate(ctx context.Context, playerID string) (PlayerStats, error) {
	def := NewPlayerStats(playerID)
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO player_stats (player_id, elo, wins, losses, updated_at) VALUES (?,?,?,?,?)`,
		def.PlayerID, def.Elo, def.Wins, def.Losses, now(),
	); err != nil {
		return PlayerStats{}, fmt.Errorf("create stats: %w", err)
	}

	out := PlayerStats{PlayerID: playerID}
	err := s.db.QueryRowContext(ctx,
		`SELECT elo, wins, losses FROM player_stats WHERE player_id=?`, playerID,
	).Scan(&out.Elo, &out.Wins, &out.Losses)
	if errors.Is(err, sql.ErrNoRows) {
		return PlayerStats{}, ErrNotFound
	}
	if err != nil {
		return PlayerStats{}, fmt.Errorf("scan stats: %w", err)
	}
	return out, nil
}

func (s *SQLite) Save(ctx context.Context, st PlayerStats) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO player_stats (player_id, elo, wins, losses, updated_at)
		VALUES (?,?,?,?,?)
		ON CONFLICT(player_id) DO UPDATE SET
			elo = excluded.elo,
			wins = excluded.wins,
			losses = excluded.losses,
			updated_at = excluded.updated_at`,
		st.PlayerID, st.Elo, st.Wins, st.Losses, now(),
	)
	if err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	return nil
}

func (s *SQLite) Leaderboard(ctx context.Context, limit int) ([]PlayerStats, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_id, elo, wins, losses
		FROM player_stats
		ORDER BY elo DESC, player_id ASC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PlayerStats, 0, limit)
	for rows.Next() {
		var r PlayerStats
		if err := rows.Scan(&r.PlayerID, &r.Elo, &r.Wins, &r.Losses); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) Standing(ctx context.Context, playerID string) (int, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM player_stats`).Scan(&total); err != nil {
		return 0, 0, err
	}
	var elo int
	err := s.db.QueryRowContext(ctx, `SELECT elo FROM player_stats WHERE player_id=?`, playerID).Scan(&elo)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, total, nil
	}
	if err != nil {
		return 0, 0, err
	}
	var ahead int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM player_stats WHERE elo > ? OR (elo = ? AND player_id < ?)`,
		elo, elo, playerID,
	).Scan(&ahead); err != nil {
		return 0, 0, err
	}
	return ahead + 1, total, nil
}

// SaveSnapshot replaces the active_ranked_games table inside one transaction.
func (s *SQLite) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM active_ranked_games`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	for playerID, g := range snap {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO active_ranked_games (player_id, channel_id, guesses, finished) VALUES (?,?,?,?)`,
			playerID, g.ChannelID, g.Guesses, g.Finished,
		); err != nil {
			return fmt.Errorf("insert snapshot %s: %w", playerID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT player_id, channel_id, guesses, finished FROM active_ranked_games`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := Snapshot{}
	for rows.Next() {
		var id string
		var g ActiveGame
		if err := rows.Scan(&id, &g.ChannelID, &g.Guesses, &g.Finished); err != nil {
			return nil, err
		}
		out[id] = g
	}
	return out, rows.Err()
}

func (s *SQLite) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM active_ranked_games`)
	return err
}

// Ping verifies database connectivity.
func (s *SQLite) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLite) Close() error { return s.db.Close() }
