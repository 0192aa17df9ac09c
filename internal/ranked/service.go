// Package ranked runs casual and ranked wordl games and keeps player ratings.
//
// A Service owns the shared in-memory state (active sessions, per-player
// locks) and talks to the stats and snapshot stores. Every ranked mutation is
// written to the snapshot store before it is committed in memory, so a guess
// acknowledged to the caller survives a crash.
package ranked

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordl-ranked/internal/elo"
	"github.com/robalobadob/wordl-ranked/internal/game"
	"github.com/robalobadob/wordl-ranked/internal/guard"
	"github.com/robalobadob/wordl-ranked/internal/rank"
	"github.com/robalobadob/wordl-ranked/internal/store"
)

var (
	ErrInvalidGuess        = game.ErrInvalidGuess
	ErrAlreadyInRankedGame = errors.New("already in a ranked game")
	ErrNoActiveGame        = errors.New("no active game")
	ErrInvalidMode         = errors.New("invalid mode")
	ErrInvalidGuessCount   = errors.New("guesses must be between 1 and 6")
)

// Service is the entry point for the command layer.
type Service struct {
	dict   game.Dictionary
	stats  store.StatsStore
	snaps  store.SnapshotStore
	model  elo.Model
	table  rank.Table
	notify Notifier

	games *Registry
	locks *guard.Guard

	// snapMu orders snapshot writes across players. It is held from building
	// the snapshot until the matching registry commit, so a stale map can
	// never overwrite a newer one. Lock order: player guard, then snapMu.
	snapMu sync.Mutex
}

// Option customizes a Service.
type Option func(*Service)

// WithModel replaces the live rating model.
func WithModel(m elo.Model) Option { return func(s *Service) { s.model = m } }

// WithTable replaces the default rank ladder.
func WithTable(t rank.Table) Option { return func(s *Service) { s.table = t } }

// WithNotifier sets who is told about restart compensation.
func WithNotifier(n Notifier) Option { return func(s *Service) { s.notify = n } }

// New wires a Service. Stats and snapshots may be the same backend.
func New(dict game.Dictionary, stats store.StatsStore, snaps store.SnapshotStore, opts ...Option) *Service {
	s := &Service{
		dict:   dict,
		stats:  stats,
		snaps:  snaps,
		model:  elo.Live,
		table:  rank.Default,
		notify: LogNotifier{},
		games:  NewRegistry(),
		locks:  guard.New(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Reset drops all in-memory sessions. Stored stats and snapshots are
// untouched, so a following Recover treats dropped ranked games as
// interrupted.
func (s *Service) Reset() {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	s.games.Reset()
}

// Table returns the rank ladder in use.
func (s *Service) Table() rank.Table { return s.table }

// View is what a player may see of a session. Answer is set only once the
// session is over.
type View struct {
	SessionID  string        `json:"sessionId"`
	Mode       game.Mode     `json:"mode"`
	State      game.State    `json:"state"`
	GuessCount int           `json:"guessCount"`
	Remaining  int           `json:"remaining"`
	Guesses    []game.Guess  `json:"guesses"`
	Keyboard   game.Keyboard `json:"keyboard"`
	Answer     string        `json:"answer,omitempty"`
}

func viewOf(sess *game.Session) View {
	v := View{
		SessionID:  sess.ID,
		Mode:       sess.Mode,
		State:      sess.State,
		GuessCount: sess.GuessCount(),
		Remaining:  game.MaxGuesses - sess.GuessCount(),
		Guesses:    append([]game.Guess(nil), sess.Guesses...),
		Keyboard:   sess.Keyboard,
	}
	if sess.State.Terminal() {
		v.Answer = sess.Answer
	}
	return v
}

// RatingChange reports how a ranked resolution moved a player.
type RatingChange struct {
	Delta  int               `json:"delta"`
	OldElo int               `json:"oldElo"`
	NewElo int               `json:"newElo"`
	Before *rank.Position    `json:"before"`
	After  *rank.Position    `json:"after"`
	Change rank.Change       `json:"change"`
	Stats  store.PlayerStats `json:"stats"`
}

// GuessOutcome is the response to an accepted guess.
type GuessOutcome struct {
	View
	Result game.Result   `json:"result"`
	Rating *RatingChange `json:"rating,omitempty"`
}

// StartGame creates a session for playerID.
//
// A player with an active ranked session cannot start another game of either
// mode. Starting a casual game replaces any previous casual one. channelID is
// kept for ranked sessions so an interrupted player can be told where.
func (s *Service) StartGame(ctx context.Context, playerID string, mode game.Mode, channelID string) (View, error) {
	if !mode.Valid() {
		return View{}, ErrInvalidMode
	}
	release, err := s.locks.Acquire(ctx, playerID)
	if err != nil {
		return View{}, err
	}
	defer release()

	if _, ok := s.games.Get(playerID, game.ModeRanked); ok {
		return View{}, ErrAlreadyInRankedGame
	}

	sess := game.New(playerID, mode, "", s.dict)
	if mode == game.ModeCasual {
		s.games.Put(sess)
		log.Debug().Str("player", playerID).Str("mode", string(mode)).Msg("game started")
		return viewOf(sess), nil
	}

	sess.ChannelID = channelID
	if _, err := s.stats.GetOrCreate(ctx, playerID); err != nil {
		return View{}, fmt.Errorf("load stats: %w", err)
	}
	if err := s.persist(ctx, sess); err != nil {
		log.Error().Err(err).Str("player", playerID).Msg("persist ranked start")
		return View{}, err
	}

	log.Info().Str("player", playerID).Str("channel", channelID).Msg("ranked game started")
	log.Debug().Str("player", playerID).Str("answer", sess.Answer).Msg("ranked answer")
	return viewOf(sess), nil
}

// SubmitGuess applies word to the player's active session (ranked first).
// The player's lock is held until the response, including any durable write,
// is complete.
func (s *Service) SubmitGuess(ctx context.Context, playerID, word string) (*GuessOutcome, error) {
	release, err := s.locks.Acquire(ctx, playerID)
	if err != nil {
		return nil, err
	}
	defer release()

	cur, ok := s.games.Active(playerID)
	if !ok {
		return nil, ErrNoActiveGame
	}

	next := cur.Clone()
	res, err := next.ApplyGuess(word, s.dict)
	if errors.Is(err, game.ErrFinished) {
		return nil, ErrNoActiveGame
	}
	if err != nil {
		return nil, err
	}

	if next.Mode == game.ModeCasual {
		if next.State.Terminal() {
			s.games.Remove(playerID, game.ModeCasual, next.ID)
		} else {
			s.games.Put(next)
		}
		return &GuessOutcome{View: viewOf(next), Result: res}, nil
	}

	if next.State.Terminal() {
		change, err := s.resolve(ctx, next)
		if err != nil {
			return nil, err
		}
		return &GuessOutcome{View: viewOf(next), Result: res, Rating: change}, nil
	}

	if err := s.persist(ctx, next); err != nil {
		log.Error().Err(err).Str("player", playerID).Msg("persist ranked guess")
		return nil, err
	}
	return &GuessOutcome{View: viewOf(next), Result: res}, nil
}

// persist writes the snapshot with staged applied and then commits staged
// to the registry, both under snapMu.
func (s *Service) persist(ctx context.Context, staged *game.Session) error {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	if err := s.snaps.SaveSnapshot(ctx, s.games.Snapshot(staged)); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	s.games.Put(staged)
	return nil
}

// restoreSnapshot rewrites the snapshot from the registry after a failed
// multi-step write. It ignores ctx cancellation so a timed out request
// still puts durable state back.
func (s *Service) restoreSnapshot(ctx context.Context) error {
	if err := s.snaps.SaveSnapshot(context.WithoutCancel(ctx), s.games.Snapshot(nil)); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	return nil
}

// resolve applies the rating result of a won or lost ranked session and
// removes it from the registry. It runs at most once per session: if sess is
// already finished it does nothing and returns a nil change.
//
// The session's snapshot entry is cleared before the rating is credited, so a
// committed rating never coexists with a live unfinished session. If the
// stats write fails the snapshot is rebuilt from the registry, which still
// holds the pre-guess session, and the caller can retry.
func (s *Service) resolve(ctx context.Context, sess *game.Session) (*RatingChange, error) {
	if sess.Finished {
		return nil, nil
	}
	won := sess.State == game.StateWon

	old, err := s.stats.GetOrCreate(ctx, sess.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}

	guesses := sess.GuessCount()
	if !won {
		guesses = elo.LossGuesses
	}
	delta := s.model.Delta(old.Elo, guesses, won)

	updated := old
	updated.Elo += delta
	if won {
		updated.Wins++
	} else {
		updated.Losses++
	}

	s.snapMu.Lock()
	defer s.snapMu.Unlock()

	sess.Finished = true
	if err := s.snaps.SaveSnapshot(ctx, s.games.Snapshot(sess)); err != nil {
		sess.Finished = false
		log.Error().Err(err).Str("player", sess.PlayerID).Msg("persist ranked resolution")
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}
	if err := s.stats.Save(ctx, updated); err != nil {
		sess.Finished = false
		err = fmt.Errorf("save stats: %w", err)
		if rbErr := s.restoreSnapshot(ctx); rbErr != nil {
			err = errors.Join(err, rbErr)
		}
		log.Error().Err(err).Str("player", sess.PlayerID).Msg("persist ranked result")
		return nil, err
	}
	s.games.Remove(sess.PlayerID, game.ModeRanked, sess.ID)

	before, after := s.table.Position(old.Elo), s.table.Position(updated.Elo)
	change := &RatingChange{
		Delta:  delta,
		OldElo: old.Elo,
		NewElo: updated.Elo,
		Before: before,
		After:  after,
		Change: rank.Classify(before, after),
		Stats:  updated,
	}
	log.Info().
		Str("player", sess.PlayerID).
		Bool("won", won).
		Int("guesses", sess.GuessCount()).
		Int("delta", delta).
		Int("elo", updated.Elo).
		Str("change", string(change.Change)).
		Msg("ranked game resolved")
	return change, nil
}

// Profile is a player's stats with their place on the ladder.
type Profile struct {
	Stats    store.PlayerStats `json:"stats"`
	Position *rank.Position    `json:"position"`
	Next     *rank.Tier        `json:"next,omitempty"`
	Progress float64           `json:"progress"`
}

// Stats returns the player's profile, creating default stats on first reference.
func (s *Service) Stats(ctx context.Context, playerID string) (Profile, error) {
	st, err := s.stats.GetOrCreate(ctx, playerID)
	if err != nil {
		return Profile{}, fmt.Errorf("load stats: %w", err)
	}
	p := Profile{
		Stats:    st,
		Position: s.table.Position(st.Elo),
		Progress: s.table.Progress(st.Elo),
	}
	if next, ok := s.table.NextTierAbove(st.Elo); ok {
		p.Next = &next
	}
	return p, nil
}

// RankWithDivision returns the ladder position for elo.
func (s *Service) RankWithDivision(elo int) *rank.Position {
	return s.table.Position(elo)
}

// Simulation previews a ranked result without touching any state.
type Simulation struct {
	Elo     int            `json:"elo"`
	Won     bool           `json:"won"`
	Guesses int            `json:"guesses"`
	Delta   int            `json:"delta"`
	NewElo  int            `json:"newElo"`
	Before  *rank.Position `json:"before"`
	After   *rank.Position `json:"after"`
	Change  rank.Change    `json:"change"`
}

// SimulateDelta computes what a ranked result would do to rating. Wins need
// 1..6 guesses; a loss always counts as elo.LossGuesses.
func (s *Service) SimulateDelta(rating, guesses int, won bool) (Simulation, error) {
	if !won {
		guesses = elo.LossGuesses
	} else if guesses < 1 || guesses > game.MaxGuesses {
		return Simulation{}, ErrInvalidGuessCount
	}
	d := s.model.Delta(rating, guesses, won)
	before, after := s.table.Position(rating), s.table.Position(rating+d)
	return Simulation{
		Elo:     rating,
		Won:     won,
		Guesses: guesses,
		Delta:   d,
		NewElo:  rating + d,
		Before:  before,
		After:   after,
		Change:  rank.Classify(before, after),
	}, nil
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Place    int               `json:"place"`
	Stats    store.PlayerStats `json:"stats"`
	Position *rank.Position    `json:"position"`
}

// Leaderboard is the top of the ladder plus the caller's standing.
type Leaderboard struct {
	Top   []LeaderboardEntry `json:"top"`
	Place int                `json:"place"` // 0 when the caller is unranked
	Total int                `json:"total"`
}

// Leaderboard returns the top limit players and playerID's place.
func (s *Service) Leaderboard(ctx context.Context, playerID string, limit int) (Leaderboard, error) {
	top, err := s.stats.Leaderboard(ctx, limit)
	if err != nil {
		return Leaderboard{}, fmt.Errorf("leaderboard: %w", err)
	}
	lb := Leaderboard{Top: make([]LeaderboardEntry, 0, len(top))}
	for i, st := range top {
		lb.Top = append(lb.Top, LeaderboardEntry{Place: i + 1, Stats: st, Position: s.table.Position(st.Elo)})
	}
	if playerID != "" {
		if lb.Place, lb.Total, err = s.stats.Standing(ctx, playerID); err != nil {
			return Leaderboard{}, fmt.Errorf("standing: %w", err)
		}
	} else if _, lb.Total, err = s.stats.Standing(ctx, ""); err != nil {
		return Leaderboard{}, fmt.Errorf("standing: %w", err)
	}
	return lb, nil
}

// Active returns the view of the player's current session.
func (s *Service) Active(playerID string) (View, error) {
	sess, ok := s.games.Active(playerID)
	if !ok {
		return View{}, ErrNoActiveGame
	}
	return viewOf(sess), nil
}
