// internal/game/evaluate.go
//
// Letter matching for a single guess against an answer.

package game

// WordLength is the number of letters in every guess and answer.
const WordLength = 5

// Evaluate implements the standard two-pass scoring algorithm.
//
// Pass 1:
//   - Mark exact matches as Correct.
//   - Count remaining (non-correct) answer letters by letter index.
//
// Pass 2:
//   - Left to right over non-correct guess letters: if there is remaining count for
//     that letter, mark Present and decrement the count; otherwise mark Absent.
//
// Inputs must be WordLength lowercase a–z words; the caller validates.
func Evaluate(guess, answer string) Result {
	var res Result

	// Letter frequency for the non-correct positions (a–z).
	var counts [26]int

	for i := 0; i < WordLength; i++ {
		if guess[i] == answer[i] {
			res[i] = MarkCorrect
		} else {
			counts[idx(answer[i])]++
		}
	}

	for i := 0; i < WordLength; i++ {
		if res[i] == MarkCorrect {
			continue
		}
		j := idx(guess[i])
		if j >= 0 && j < 26 && counts[j] > 0 {
			res[i] = MarkPresent
			counts[j]--
		} else {
			res[i] = MarkAbsent
		}
	}
	return res
}

// idx maps a lowercase ASCII letter to 0..25.
func idx(b byte) int { return int(b) - 'a' }

// IsWord reports whether s is exactly WordLength lowercase a–z letters.
func IsWord(s string) bool {
	if len(s) != WordLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}
