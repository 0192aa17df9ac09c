package ranked

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordl-ranked/internal/elo"
	"github.com/robalobadob/wordl-ranked/internal/game"
	"github.com/robalobadob/wordl-ranked/internal/store"
)

// Compensation is the credit given to a player whose ranked game was cut
// short by a restart.
type Compensation struct {
	PlayerID  string `json:"playerId"`
	ChannelID string `json:"channelId"`
	Guesses   int    `json:"guesses"` // accepted before the restart
	Delta     int    `json:"delta"`
	Elo       int    `json:"elo"` // after the credit
}

// Notifier tells a player about compensation. Failures are logged, never fatal.
type Notifier interface {
	NotifyCompensation(ctx context.Context, c Compensation) error
}

// LogNotifier only writes the compensation to the log.
type LogNotifier struct{}

func (LogNotifier) NotifyCompensation(_ context.Context, c Compensation) error {
	log.Info().
		Str("player", c.PlayerID).
		Str("channel", c.ChannelID).
		Int("delta", c.Delta).
		Int("elo", c.Elo).
		Msg("ranked game interrupted by restart; compensated")
	return nil
}

// Recover settles ranked games that were still running when the process
// stopped. Each one is removed from the snapshot, credited
// elo.Compensation (never negative), and its player notified. Players that
// already have a live ranked session in this process are left alone.
//
// An entry is cleared before its credit is written, so a crash between the
// two loses the credit rather than paying it twice.
//
// Run it once at startup, before serving guesses.
func (s *Service) Recover(ctx context.Context) ([]Compensation, error) {
	pending, err := s.snaps.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if len(pending) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []Compensation
	for _, id := range ids {
		var c *Compensation
		err := s.locks.Do(ctx, id, func() error {
			var err error
			c, err = s.settle(ctx, pending, id)
			return err
		})
		if err != nil {
			return out, err
		}
		if c == nil {
			continue
		}
		out = append(out, *c)
		if err := s.notify.NotifyCompensation(ctx, *c); err != nil {
			log.Warn().Err(err).Str("player", id).Msg("notify compensation")
		}
	}

	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	if len(s.merged(pending)) == 0 {
		if err := s.snaps.Clear(ctx); err != nil {
			return out, fmt.Errorf("clear snapshot: %w", err)
		}
	}
	return out, nil
}

// merged is the snapshot to persist during recovery: live registry entries
// plus loaded entries not yet settled. Callers hold snapMu.
func (s *Service) merged(pending store.Snapshot) store.Snapshot {
	out := s.games.Snapshot(nil)
	for id, g := range pending {
		if _, live := out[id]; !live {
			out[id] = g
		}
	}
	return out
}

// settle clears one loaded entry and credits its player. It returns nil when
// nothing is owed. Callers hold the player's guard lock.
func (s *Service) settle(ctx context.Context, pending store.Snapshot, playerID string) (*Compensation, error) {
	if _, live := s.games.Get(playerID, game.ModeRanked); live {
		return nil, nil
	}
	g := pending[playerID]

	s.snapMu.Lock()
	defer s.snapMu.Unlock()

	delete(pending, playerID)
	if err := s.snaps.SaveSnapshot(ctx, s.merged(pending)); err != nil {
		pending[playerID] = g
		return nil, fmt.Errorf("clear snapshot entry %s: %w", playerID, err)
	}
	if g.Finished {
		return nil, nil
	}

	st, err := s.stats.GetOrCreate(ctx, playerID)
	if err == nil {
		d := elo.Compensation(s.model, st.Elo, g.Guesses)
		st.Elo += d
		if err = s.stats.Save(ctx, st); err == nil {
			return &Compensation{PlayerID: playerID, ChannelID: g.ChannelID, Guesses: g.Guesses, Delta: d, Elo: st.Elo}, nil
		}
	}

	pending[playerID] = g
	err = fmt.Errorf("credit %s: %w", playerID, err)
	if rbErr := s.snaps.SaveSnapshot(context.WithoutCancel(ctx), s.merged(pending)); rbErr != nil {
		err = errors.Join(err, fmt.Errorf("restore snapshot: %w", rbErr))
	}
	return nil, err
}
