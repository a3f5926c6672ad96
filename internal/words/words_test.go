package words

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeList(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadEmbedded(t *testing.T) {
	l, err := Load("", "")
	if err != nil {
		t.Fatal(err)
	}
	nAns, nAllowed := l.Stats()
	if nAns == 0 || nAllowed < nAns {
		t.Fatalf("unexpected stats %d %d", nAns, nAllowed)
	}
	for _, w := range l.Answers() {
		if !l.IsAllowed(w) {
			t.Fatalf("answer %q must be allowed", w)
		}
	}
	if !l.IsAnswer(l.RandomAnswer()) {
		t.Fatal("random answer must be an answer")
	}
}

func TestLoadFiles(t *testing.T) {
	ans := writeList(t, "a.txt", "CRANE\nslate\n  toolong\nab1de\n")
	allowed := writeList(t, "b.txt", "house\nmouse\n")

	l, err := Load(ans, allowed)
	if err != nil {
		t.Fatal(err)
	}
	if n, m := l.Stats(); n != 2 || m != 4 {
		t.Fatalf("unexpected stats %d %d", n, m)
	}
	if !l.IsAnswer("crane") || l.IsAnswer("house") || !l.IsAllowed("HOUSE") {
		t.Fatal("list membership is wrong")
	}

	only, err := Load("", allowed)
	if err != nil {
		t.Fatal(err)
	}
	if !only.IsAnswer("mouse") {
		t.Fatal("allowed-only file should also serve as answers")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load("", filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
	empty := writeList(t, "e.txt", "no\n")
	if _, err := Load("", empty); !errors.Is(err, ErrNoAnswers) {
		t.Fatalf("expected ErrNoAnswers, got %v", err)
	}
}
