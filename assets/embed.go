// Package assets embeds the default word lists so the server runs without
// any word files configured.
package assets

import (
	"bufio"
	"embed"
	"io"
	"strings"
)

//go:embed allowed.txt answers.txt
var FS embed.FS

// ParseWords reads one word per line, skipping blanks and # comments, and
// keeps only five-letter a–z words (lowercased).
func ParseWords(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.ToLower(strings.TrimSpace(sc.Text()))
		if s == "" || strings.HasPrefix(s, "#") || !isWord(s) {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

func isWord(s string) bool {
	if len(s) != 5 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseWords(f)
}

// AnswersList returns the embedded answer pool.
func AnswersList() ([]string, error) {
	return readLines("answers.txt")
}

// AllowedList returns the embedded accepted-guess list.
func AllowedList() ([]string, error) {
	return readLines("allowed.txt")
}
