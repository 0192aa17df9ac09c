package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// backends returns every Store that can run without external services.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "wordl.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sq.Close() })
	out := map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sq,
	}
	// Redis runs only against a disposable server; its keys are flushed.
	if url := os.Getenv("WORDL_TEST_REDIS_URL"); url != "" {
		rd, err := OpenRedis(context.Background(), url)
		if err != nil {
			t.Fatalf("open redis: %v", err)
		}
		if err := rd.rdb.FlushDB(context.Background()).Err(); err != nil {
			t.Fatalf("flush redis: %v", err)
		}
		t.Cleanup(func() { _ = rd.Close() })
		out["redis"] = rd
	}
	return out
}

func TestPing(t *testing.T) {
	for name, st := range backends(t) {
		p, ok := st.(Pinger)
		if !ok {
			continue
		}
		if err := p.Ping(context.Background()); err != nil {
			t.Errorf("%s ping: %v", name, err)
		}
	}
}

func TestStatsGetOrCreateAndSave(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s, err := st.GetOrCreate(ctx, "p1")
			if err != nil {
				t.Fatal(err)
			}
			if s != NewPlayerStats("p1") {
				t.Fatalf("new stats = %+v", s)
			}
			s.Elo, s.Wins = 1250, 1
			if err := st.Save(ctx, s); err != nil {
				t.Fatal(err)
			}
			got, err := st.GetOrCreate(ctx, "p1")
			if err != nil {
				t.Fatal(err)
			}
			if got != s {
				t.Fatalf("got %+v, want %+v", got, s)
			}
		})
	}
}

func TestLeaderboardAndStanding(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, s := range []PlayerStats{
				{PlayerID: "a", Elo: 900},
				{PlayerID: "b", Elo: 1500, Wins: 3},
				{PlayerID: "c", Elo: 1200, Losses: 1},
			} {
				if err := st.Save(ctx, s); err != nil {
					t.Fatal(err)
				}
			}
			top, err := st.Leaderboard(ctx, 2)
			if err != nil {
				t.Fatal(err)
			}
			if len(top) != 2 || top[0].PlayerID != "b" || top[1].PlayerID != "c" {
				t.Fatalf("top = %+v", top)
			}
			pos, total, err := st.Standing(ctx, "a")
			if err != nil {
				t.Fatal(err)
			}
			if pos != 3 || total != 3 {
				t.Fatalf("standing = %d/%d, want 3/3", pos, total)
			}
			if pos, _, _ := st.Standing(ctx, "nobody"); pos != 0 {
				t.Fatalf("unknown player standing = %d", pos)
			}
		})
	}
}

func TestLeaderboardDefaultLimit(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < DefaultLeaderboardLimit+2; i++ {
				if err := st.Save(ctx, PlayerStats{PlayerID: fmt.Sprintf("p%02d", i), Elo: 1000 + i}); err != nil {
					t.Fatal(err)
				}
			}
			for _, limit := range []int{0, -1} {
				top, err := st.Leaderboard(ctx, limit)
				if err != nil {
					t.Fatal(err)
				}
				if len(top) != DefaultLeaderboardLimit || top[0].PlayerID != "p11" {
					t.Fatalf("limit %d: got %d rows, first %+v", limit, len(top), top[0])
				}
			}
		})
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			snap, err := st.LoadSnapshot(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(snap) != 0 {
				t.Fatalf("fresh snapshot = %v", snap)
			}

			want := Snapshot{"p1": {ChannelID: "c1", Guesses: 3}, "p2": {ChannelID: "c2", Guesses: 0}}
			if err := st.SaveSnapshot(ctx, want); err != nil {
				t.Fatal(err)
			}
			// Replacing drops entries that are no longer present.
			delete(want, "p2")
			if err := st.SaveSnapshot(ctx, want); err != nil {
				t.Fatal(err)
			}
			got, err := st.LoadSnapshot(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 1 || got["p1"] != want["p1"] {
				t.Fatalf("snapshot = %v, want %v", got, want)
			}

			if err := st.Clear(ctx); err != nil {
				t.Fatal(err)
			}
			if got, _ := st.LoadSnapshot(ctx); len(got) != 0 {
				t.Fatalf("after clear = %v", got)
			}
		})
	}
}

func TestSQLiteMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordl.db")
	first, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Save(context.Background(), PlayerStats{PlayerID: "p1", Elo: 1400}); err != nil {
		t.Fatal(err)
	}
	_ = first.Close()

	second, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	s, err := second.GetOrCreate(context.Background(), "p1")
	if err != nil || s.Elo != 1400 {
		t.Fatalf("after reopen: %+v, %v", s, err)
	}
}
