// internal/wordle/engine.go
//
// Game engine for a single wordle session.
//   - New games are 6x5.
//   - Guesses are validated (length, a-z, allowed list) and scored with the
//     two-pass algorithm so repeated letters are counted correctly.
//   - State goes playing -> won | lost.

package wordle

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/robalobadob/arcade/internal/words"
)

const (
	defaultRows = 6
	defaultCols = 5
)

var (
	ErrFinished  = errors.New("game finished")
	ErrInvalid   = errors.New("invalid guess")
	ErrNotInList = errors.New("not in word list")
)

// Dictionary is the subset of words.Lists the engine needs.
type Dictionary interface {
	RandomAnswer() string
	IsAllowed(w string) bool
}

var _ Dictionary = (*words.Lists)(nil)

// New starts a game. An empty answer picks a random one from dict.
func New(dict Dictionary, answer string) *Game {
	if answer == "" {
		answer = dict.RandomAnswer()
	}
	return &Game{
		ID:      uuid.NewString(),
		Answer:  strings.ToLower(answer),
		Rows:    defaultRows,
		Cols:    defaultCols,
		Guesses: []string{},
	}
}

// ApplyGuess validates and scores a guess, mutating the game.
// It returns the marks and the resulting state.
func (g *Game) ApplyGuess(dict Dictionary, guess string) ([]Mark, string, error) {
	if g.Finished {
		return nil, g.State(), ErrFinished
	}
	guess = strings.ToLower(strings.TrimSpace(guess))
	if len(guess) != g.Cols || !isAlpha(guess) {
		return nil, g.State(), ErrInvalid
	}
	if !dict.IsAllowed(guess) {
		return nil, g.State(), ErrNotInList
	}

	marks := Score(g.Answer, guess)
	g.Guesses = append(g.Guesses, guess)

	if AllHit(marks) {
		g.Finished, g.Won = true, true
	} else if len(g.Guesses) >= g.Rows {
		g.Finished = true
	}
	return marks, g.State(), nil
}

// State is playing, won or lost.
func (g *Game) State() string {
	if g.Finished {
		if g.Won {
			return StateWon
		}
		return StateLost
	}
	return StatePlaying
}

// Score marks guess against answer. Both must be lowercase a-z of equal length.
//
// Pass 1 marks exact hits and counts the answer letters left over.
// Pass 2 marks a non-hit letter present only while unused copies remain.
func Score(answer, guess string) []Mark {
	n := len(guess)
	res := make([]Mark, n)
	if len(answer) != n {
		for i := range res {
			res[i] = MarkMiss
		}
		return res
	}

	var counts [26]int
	for i := 0; i < n; i++ {
		if guess[i] == answer[i] {
			res[i] = MarkHit
		} else {
			counts[answer[i]-'a']++
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == MarkHit {
			continue
		}
		j := guess[i] - 'a'
		if counts[j] > 0 {
			res[i] = MarkPresent
			counts[j]--
		} else {
			res[i] = MarkMiss
		}
	}
	return res
}

// AllHit reports whether every mark is a hit.
func AllHit(m []Mark) bool {
	for _, x := range m {
		if x != MarkHit {
			return false
		}
	}
	return len(m) > 0
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
