// internal/words/words.go
//
// Word lists for wordle.
//
// Lists are loaded from files when configured, otherwise from the lists
// embedded in assets:
//   1. answers and allowed paths both set: answers from the first, allowed from the second.
//   2. only the allowed path set: that file serves as both lists.
//   3. neither set: embedded assets/answers.txt and assets/allowed.txt.
//
// Words are normalized to lowercase and anything that is not exactly five
// letters a-z is dropped. The allowed set always includes every answer.

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/robalobadob/arcade/assets"
)

var ErrNoAnswers = errors.New("words: answers list is empty")

// Lists holds the answer list and the allowed-guess set.
type Lists struct {
	answers    []string
	answersSet map[string]struct{}
	allowedSet map[string]struct{}
}

// Load builds Lists from the given files (either may be empty).
func Load(answersPath, allowedPath string) (*Lists, error) {
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
	case allowedPath != "":
		if allowList, err = readWordFile(allowedPath); err != nil {
			return nil, err
		}
		ansList = allowList
	default:
		raw, err := assets.AnswersList()
		if err != nil {
			return nil, fmt.Errorf("embedded answers: %w", err)
		}
		ansList = normalize(raw)
		raw, err = assets.AllowedList()
		if err != nil {
			return nil, fmt.Errorf("embedded allowed: %w", err)
		}
		allowList = normalize(raw)
	}
	return New(ansList, allowList)
}

// New builds Lists from in-memory slices.
func New(answers, allowed []string) (*Lists, error) {
	ans := normalize(answers)
	if len(ans) == 0 {
		return nil, ErrNoAnswers
	}
	l := &Lists{
		answers:    ans,
		answersSet: toSet(ans),
		allowedSet: toSet(ans),
	}
	for _, w := range normalize(allowed) {
		l.allowedSet[w] = struct{}{}
	}
	return l, nil
}

// readWordFile loads one word per line.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return normalize(out), nil
}

func normalize(in []string) []string {
	out := make([]string, 0, len(in))
	for _, line := range in {
		w := strings.TrimSpace(strings.ToLower(line))
		if IsWordShape(w) {
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

// IsWordShape reports whether w is five lowercase ASCII letters.
func IsWordShape(w string) bool {
	if len(w) != 5 {
		return false
	}
	for _, r := range w {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// RandomAnswer picks a uniformly random answer.
func (l *Lists) RandomAnswer() string {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(l.answers))))
	return l.answers[n.Int64()]
}

// Answers returns the canonical answer list. Callers must not modify it.
func (l *Lists) Answers() []string { return l.answers }

// IsAllowed reports whether w is a valid guess.
func (l *Lists) IsAllowed(w string) bool {
	_, ok := l.allowedSet[strings.ToLower(w)]
	return ok
}

// IsAnswer reports whether w is an answer word.
func (l *Lists) IsAnswer(w string) bool {
	_, ok := l.answersSet[strings.ToLower(w)]
	return ok
}

// Stats returns counts of loaded words.
func (l *Lists) Stats() (answersCount int, allowedCount int) {
	return len(l.answers), len(l.allowedSet)
}
