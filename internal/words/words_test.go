package words

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	d, err := Load("", "")
	if err != nil {
		t.Fatal(err)
	}
	a, g := d.Stats()
	if a == 0 || g < a {
		t.Fatalf("stats = %d answers, %d allowed", a, g)
	}
	for i := 0; i < 20; i++ {
		w := d.RandomAnswer()
		if !slices.Contains(d.answers, w) || !d.Contains(w) {
			t.Fatalf("random answer %q not in lists", w)
		}
	}
	if !d.Contains("CRANE") {
		t.Errorf("Contains should be case-insensitive")
	}
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	answers := filepath.Join(dir, "answers.txt")
	allowed := filepath.Join(dir, "allowed.txt")
	if err := os.WriteFile(answers, []byte("# pool\nCrane\n\nslate\nbad\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(allowed, []byte("tulip\nzesty\nlonger\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := Load(answers, allowed)
	if err != nil {
		t.Fatal(err)
	}
	if a, g := d.Stats(); a != 2 || g != 4 {
		t.Fatalf("stats = %d/%d, want 2/4", a, g)
	}
	if slices.Contains(d.answers, "tulip") || !d.Contains("tulip") || d.Contains("longer") {
		t.Errorf("unexpected membership")
	}

	only, err := Load("", allowed)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(only.answers, "zesty") {
		t.Errorf("allowed-only load should use the allowed list as answers")
	}
}

func TestNewRejectsEmptyPool(t *testing.T) {
	if _, err := New([]string{"toolong", "ab"}, []string{"crane"}); !errors.Is(err, ErrNoAnswers) {
		t.Fatalf("err = %v, want ErrNoAnswers", err)
	}
}
