// internal/game/types.go
//
// Core type definitions for the wordl game engine.
// Defines:
//   - Mark: per-letter result of a guess (correct/present/absent).
//   - Mode: casual or ranked play.
//   - State: session lifecycle (created → in_progress → won | lost).
//   - Session: state for a single in-progress or finished game.

package game

// Mark represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "correct": letter is in the answer at this position.
//   - "present": letter exists in the answer but in a different position.
//   - "absent":  letter is not (or no longer) available in the answer.
//
// MarkUnknown is only used by the keyboard for letters never guessed.
type Mark string

const (
	MarkUnknown Mark = ""
	MarkAbsent  Mark = "absent"
	MarkPresent Mark = "present"
	MarkCorrect Mark = "correct"
)

// Priority orders marks for keyboard aggregation: unknown < absent < present < correct.
func (m Mark) Priority() int {
	switch m {
	case MarkAbsent:
		return 1
	case MarkPresent:
		return 2
	case MarkCorrect:
		return 3
	default:
		return 0
	}
}

// Result is the ordered per-position evaluation of one guess.
type Result [WordLength]Mark

// Solved reports whether every position is correct.
func (r Result) Solved() bool {
	for _, m := range r {
		if m != MarkCorrect {
			return false
		}
	}
	return true
}

// Mode selects casual or ranked play.
type Mode string

const (
	ModeCasual Mode = "casual"
	ModeRanked Mode = "ranked"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return m == ModeCasual || m == ModeRanked }

// State is the coarse lifecycle state of a session.
type State string

const (
	StateCreated    State = "created"
	StateInProgress State = "in_progress"
	StateWon        State = "won"
	StateLost       State = "lost"
)

// Terminal reports whether no further guesses are accepted.
func (s State) Terminal() bool { return s == StateWon || s == StateLost }

// Guess is one accepted guess with its evaluation.
type Guess struct {
	Word   string `json:"word"`
	Result Result `json:"result"`
}

// Session holds the state of a single wordl game for one player.
type Session struct {
	ID        string   // Unique session identifier.
	PlayerID  string   // Owning player.
	Mode      Mode     // Casual or ranked.
	Answer    string   // The solution word (always lowercase).
	ChannelID string   // Where the ranked game was started; empty for casual.
	Guesses   []Guess  // Accepted guesses, in order.
	Keyboard  Keyboard // Best-known state per letter.
	State     State    // Lifecycle state.
	Finished  bool     // Set exactly once, when the ranked result has been applied.
}

// GuessCount is the number of accepted guesses.
func (s *Session) GuessCount() int { return len(s.Guesses) }

// Clone returns a deep copy so callers can stage a mutation and commit it later.
func (s *Session) Clone() *Session {
	c := *s
	c.Guesses = append([]Guess(nil), s.Guesses...)
	return &c
}
