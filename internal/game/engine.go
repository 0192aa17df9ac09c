// internal/game/engine.go
//
// Core game engine for a single wordl session.
// Responsibilities:
//   - Create new sessions with an answer drawn from a dictionary.
//   - Validate and apply guesses (length, alphabetic, accepted list).
//   - Track state transitions: created → in_progress → won | lost.
//
// Rating bookkeeping is not done here; see the ranked package.
package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MaxGuesses is the number of guesses after which an unsolved session is lost.
const MaxGuesses = 6

var (
	ErrFinished      = errors.New("game finished")
	ErrInvalidGuess  = errors.New("invalid guess")
	ErrNotInWordList = fmt.Errorf("%w: not in word list", ErrInvalidGuess)
)

// Dictionary is the accepted-word collaborator.
type Dictionary interface {
	Contains(word string) bool
	RandomAnswer() string
}

// New constructs a session for playerID. If answer is empty one is drawn from dict.
func New(playerID string, mode Mode, answer string, dict Dictionary) *Session {
	if answer == "" {
		answer = dict.RandomAnswer()
	}
	return &Session{
		ID:       uuid.NewString(),
		PlayerID: playerID,
		Mode:     mode,
		Answer:   strings.ToLower(answer),
		Guesses:  []Guess{},
		State:    StateCreated,
	}
}

// ApplyGuess validates and scores a guess, mutating the session.
//
// Validation rules:
//   - Session must not be in a terminal state.
//   - Guess must be exactly WordLength letters a–z.
//   - Guess must be accepted by dict.
//
// State transitions:
//   - Guess equals the answer → StateWon.
//   - Else if MaxGuesses have been used → StateLost.
//   - Otherwise → StateInProgress.
func (s *Session) ApplyGuess(guess string, dict Dictionary) (Result, error) {
	if s.State.Terminal() {
		return Result{}, ErrFinished
	}
	guess = strings.ToLower(strings.TrimSpace(guess))
	if !IsWord(guess) {
		return Result{}, ErrInvalidGuess
	}
	if !dict.Contains(guess) {
		return Result{}, ErrNotInWordList
	}

	res := Evaluate(guess, s.Answer)
	s.Guesses = append(s.Guesses, Guess{Word: guess, Result: res})
	s.Keyboard.Update(guess, res)

	switch {
	case guess == s.Answer:
		s.State = StateWon
	case len(s.Guesses) >= MaxGuesses:
		s.State = StateLost
	default:
		s.State = StateInProgress
	}
	return res, nil
}
