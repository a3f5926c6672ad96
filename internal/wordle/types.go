// internal/wordle/types.go
//
// Core types for a wordle session.

package wordle

// Mark is the evaluation of a single letter in a guess.
//   - "hit":     right letter, right position.
//   - "present": letter is in the answer elsewhere.
//   - "miss":    letter is not in the answer (or all copies are used up).
type Mark string

const (
	MarkHit     Mark = "hit"
	MarkPresent Mark = "present"
	MarkMiss    Mark = "miss"
)

// Code is the compact form used by the daily endpoints: miss=0, present=1, hit=2.
func (m Mark) Code() int {
	switch m {
	case MarkHit:
		return 2
	case MarkPresent:
		return 1
	default:
		return 0
	}
}

// Codes converts a row of marks to their compact form.
func Codes(marks []Mark) []int {
	out := make([]int, len(marks))
	for i, m := range marks {
		out[i] = m.Code()
	}
	return out
}

// Game holds the state of a single wordle session.
type Game struct {
	ID       string   // session identifier
	Answer   string   // always lowercase
	Rows     int      // max guesses
	Cols     int      // letters per word
	Guesses  []string // lowercased guesses so far
	Finished bool
	Won      bool
}

const (
	StatePlaying = "playing"
	StateWon     = "won"
	StateLost    = "lost"
)
