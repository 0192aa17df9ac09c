// internal/game/keyboard.go
//
// Keyboard aggregates guess results into the best-known mark per letter.
// Marks only ever move upward (absent < present < correct).

package game

import (
	"encoding/json"
	"fmt"
)

// Keyboard holds one Mark per letter a–z. The zero value is all unknown.
type Keyboard [26]Mark

// KeyRows is the QWERTY layout used when presenting the keyboard.
var KeyRows = [3]string{"qwertyuiop", "asdfghjkl", "zxcvbnm"}

// Key is one letter on a presented keyboard row.
type Key struct {
	Letter string `json:"letter"`
	Mark   Mark   `json:"mark"`
}

// Update upgrades each guessed letter to the mark found at its position,
// but only if that mark has strictly higher priority than the current one.
func (k *Keyboard) Update(guess string, res Result) {
	for i := 0; i < len(guess) && i < WordLength; i++ {
		j := idx(guess[i])
		if j < 0 || j >= 26 {
			continue
		}
		if res[i].Priority() > k[j].Priority() {
			k[j] = res[i]
		}
	}
}

// Get returns the mark for a lowercase letter.
func (k *Keyboard) Get(letter byte) Mark {
	j := idx(letter)
	if j < 0 || j >= 26 {
		return MarkUnknown
	}
	return k[j]
}

// Rows exposes the keyboard as QWERTY rows for a presentation layer.
func (k *Keyboard) Rows() [][]Key {
	out := make([][]Key, 0, len(KeyRows))
	for _, row := range KeyRows {
		keys := make([]Key, 0, len(row))
		for i := 0; i < len(row); i++ {
			keys = append(keys, Key{Letter: row[i : i+1], Mark: k.Get(row[i])})
		}
		out = append(out, keys)
	}
	return out
}

// MarshalJSON encodes only letters with a known mark, keyed by letter.
func (k Keyboard) MarshalJSON() ([]byte, error) {
	m := make(map[string]Mark)
	for i, mark := range k {
		if mark != MarkUnknown {
			m[string(rune('a'+i))] = mark
		}
	}
	return json.Marshal(m)
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (k *Keyboard) UnmarshalJSON(b []byte) error {
	var m map[string]Mark
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*k = Keyboard{}
	for letter, mark := range m {
		if len(letter) != 1 || letter[0] < 'a' || letter[0] > 'z' {
			return fmt.Errorf("keyboard: bad letter %q", letter)
		}
		k[letter[0]-'a'] = mark
	}
	return nil
}
