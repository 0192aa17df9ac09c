// internal/words/words.go
//
// Word list management for the game engine.
//
// Responsibilities:
//   - Load answer and allowed guess lists from configured files or fall back to
//     the embedded defaults in the assets package.
//   - Maintain sets for quick lookups (answers only, answers ∪ guesses).
//   - Supply RandomAnswer, Contains and Stats.
//
// Word Lists:
//   - "answers": curated solutions (exactly 5 lowercase letters).
//   - "allowed": valid guesses (always includes answers).
//
// Load behavior:
//  1. answers and allowed paths both set → read each file.
//  2. only the allowed path set → that file is used for both lists.
//  3. neither set → embedded defaults.

package words

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/robalobadob/wordl-ranked/assets"
)

// ErrNoAnswers is returned when the answer pool ends up empty.
var ErrNoAnswers = errors.New("words: answers list is empty")

// Dictionary holds the answer pool and the accepted-guess set.
// It is read-only after construction and safe for concurrent use.
type Dictionary struct {
	answers    []string
	allowedSet map[string]struct{} // answers ∪ guesses
}

// New builds a dictionary from explicit lists. Answers are always accepted as guesses.
func New(answers, allowed []string) (*Dictionary, error) {
	d := &Dictionary{answers: normalize(answers)}
	d.allowedSet = toSet(d.answers)
	for _, w := range normalize(allowed) {
		d.allowedSet[w] = struct{}{}
	}
	if len(d.answers) == 0 {
		return nil, ErrNoAnswers
	}
	return d, nil
}

// Load reads the lists from answersPath/allowedPath, falling back to the
// embedded defaults when the paths are empty.
func Load(answersPath, allowedPath string) (*Dictionary, error) {
	var ansList, allowList []string
	var err error

	switch {
	case answersPath != "" && allowedPath != "":
		if ansList, err = readWordFile(answersPath); err != nil {
			return nil, err
		}
		if allowList, err = readWordFile(allowedPath); err != nil {
			return nil, err
		}

	case answersPath == "" && allowedPath != "":
		if allowList, err = readWordFile(allowedPath); err != nil {
			return nil, err
		}
		ansList = allowList

	default:
		if ansList, err = assets.AnswersList(); err != nil {
			return nil, fmt.Errorf("embedded answers: %w", err)
		}
		if allowList, err = assets.AllowedList(); err != nil {
			return nil, fmt.Errorf("embedded allowed: %w", err)
		}
	}
	return New(ansList, allowList)
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	out, err := assets.ParseWords(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}

// normalize lowercases and keeps only 5-letter a–z words.
func normalize(list []string) []string {
	out := make([]string, 0, len(list))
	for _, w := range list {
		w = strings.ToLower(strings.TrimSpace(w))
		if len(w) == 5 && isAlpha(w) {
			out = append(out, w)
		}
	}
	return out
}

func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// RandomAnswer returns a uniformly random answer using crypto/rand.
func (d *Dictionary) RandomAnswer() string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(d.answers))))
	if err != nil {
		return d.answers[0]
	}
	return d.answers[n.Int64()]
}

// Contains reports whether w is an accepted guess.
func (d *Dictionary) Contains(w string) bool {
	_, ok := d.allowedSet[strings.ToLower(w)]
	return ok
}

// Stats returns counts of loaded words: (answers, allowed).
func (d *Dictionary) Stats() (answersCount int, allowedCount int) {
	return len(d.answers), len(d.allowedSet)
}
