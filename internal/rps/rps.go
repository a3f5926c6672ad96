// internal/rps/rps.go
//
// Rock-paper-scissors rules.
//   - Room: any number of named players; a round resolves once every player has
//     selected and there are at least two players.
//   - Two players: the winner scores a point and the round is logged.
//   - Three or more players: the round is logged with every choice, no score.
//   - Match: a single player against a random CPU opponent.

package rps

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

var (
	ErrInvalidChoice = errors.New("choice must be rock, paper or scissors")
	ErrUnknownPlayer = errors.New("player is not in this room")
	ErrNameRequired  = errors.New("player name required")
)

// Choice is one of rock, paper, scissors.
type Choice string

const (
	Rock     Choice = "rock"
	Paper    Choice = "paper"
	Scissors Choice = "scissors"
)

var choices = []Choice{Rock, Paper, Scissors}

// ParseChoice normalizes and validates a user choice.
func ParseChoice(s string) (Choice, error) {
	c := Choice(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(choices, c) {
		return "", ErrInvalidChoice
	}
	return c, nil
}

// Beats reports whether a beats b.
func Beats(a, b Choice) bool {
	return (a == Rock && b == Scissors) ||
		(a == Paper && b == Rock) ||
		(a == Scissors && b == Paper)
}

// State is the JSON blob stored in an RPS room.
type State struct {
	Players     []string          `json:"players"`
	Scores      map[string]int    `json:"scores"`
	Selections  map[string]Choice `json:"selections"`
	GameHistory []string          `json:"gameHistory"`
	LastUpdated int64             `json:"lastUpdated"`
}

// NewState opens a room with its creator seated.
func NewState(creator string) (*State, error) {
	if creator == "" {
		return nil, ErrNameRequired
	}
	return &State{
		Players:     []string{creator},
		Scores:      map[string]int{creator: 0},
		Selections:  map[string]Choice{},
		GameHistory: []string{},
	}, nil
}

// Join seats name with a zero score. Joining twice is a no-op.
func (s *State) Join(name string) error {
	if name == "" {
		return ErrNameRequired
	}
	s.ensureMaps()
	if slices.Contains(s.Players, name) {
		return nil
	}
	s.Players = append(s.Players, name)
	s.Scores[name] = 0
	return nil
}

// Select records name's choice. When the round completes it is resolved,
// selections are cleared, and true is returned.
func (s *State) Select(name string, c Choice) (bool, error) {
	if !slices.Contains(choices, c) {
		return false, ErrInvalidChoice
	}
	if !slices.Contains(s.Players, name) {
		return false, ErrUnknownPlayer
	}
	s.ensureMaps()
	s.Selections[name] = c

	if !s.allSelected() {
		return false, nil
	}
	s.resolve()
	s.Selections = map[string]Choice{}
	return true, nil
}

// Leave removes name from the room and logs it. Returns true when the room
// has no players left.
func (s *State) Leave(name string) (bool, error) {
	i := slices.Index(s.Players, name)
	if i < 0 {
		return len(s.Players) == 0, ErrUnknownPlayer
	}
	s.Players = slices.Delete(s.Players, i, i+1)
	delete(s.Scores, name)
	delete(s.Selections, name)
	s.GameHistory = append(s.GameHistory, name+" left the game")
	return len(s.Players) == 0, nil
}

// HasSelected reports whether name is waiting on the rest of the room.
func (s *State) HasSelected(name string) bool {
	_, ok := s.Selections[name]
	return ok
}

func (s *State) allSelected() bool {
	if len(s.Players) < 2 {
		return false
	}
	for _, p := range s.Players {
		if _, ok := s.Selections[p]; !ok {
			return false
		}
	}
	return true
}

func (s *State) resolve() {
	if len(s.Players) == 2 {
		p1, p2 := s.Players[0], s.Players[1]
		c1, c2 := s.Selections[p1], s.Selections[p2]
		var result string
		switch {
		case c1 == c2:
			result = fmt.Sprintf("Tie! Both players selected %s", c1)
		case Beats(c1, c2):
			s.Scores[p1]++
			result = fmt.Sprintf("%s selected %s, %s selected %s: %s wins!", p1, c1, p2, c2, p1)
		default:
			s.Scores[p2]++
			result = fmt.Sprintf("%s selected %s, %s selected %s: %s wins!", p1, c1, p2, c2, p2)
		}
		s.GameHistory = append(s.GameHistory, result)
		return
	}

	parts := make([]string, 0, len(s.Players))
	for _, p := range s.Players {
		parts = append(parts, fmt.Sprintf("%s chose %s", p, s.Selections[p]))
	}
	s.GameHistory = append(s.GameHistory, "Round results: "+strings.Join(parts, ", "))
}

func (s *State) ensureMaps() {
	if s.Scores == nil {
		s.Scores = map[string]int{}
	}
	if s.Selections == nil {
		s.Selections = map[string]Choice{}
	}
}

// Match is a single-player game against the CPU.
type Match struct {
	User      string   `json:"user"`
	UserScore int      `json:"userScore"`
	CPUScore  int      `json:"cpuScore"`
	History   []string `json:"history"`
}

// NewMatch starts a match with zero scores.
func NewMatch(user string) *Match {
	return &Match{User: user, History: []string{}}
}

// Round is the outcome of one Match.Play.
type Round struct {
	User   Choice `json:"user"`
	CPU    Choice `json:"cpu"`
	Result string `json:"result"` // win | lose | tie
	Log    string `json:"log"`
}

// Play resolves one round with the CPU choosing via rng.
func (m *Match) Play(c Choice, rng *rand.Rand) (Round, error) {
	if !slices.Contains(choices, c) {
		return Round{}, ErrInvalidChoice
	}
	cpu := choices[rng.IntN(len(choices))]
	r := Round{User: c, CPU: cpu}
	switch {
	case c == cpu:
		r.Result = "tie"
		r.Log = fmt.Sprintf("Tie! %s and CPU both selected %s", m.User, c)
	case Beats(c, cpu):
		m.UserScore++
		r.Result = "win"
		r.Log = fmt.Sprintf("%s selected %s, CPU selected %s: %s wins!", m.User, c, cpu, m.User)
	default:
		m.CPUScore++
		r.Result = "lose"
		r.Log = fmt.Sprintf("%s selected %s, CPU selected %s: CPU wins!", m.User, c, cpu)
	}
	m.History = append(m.History, r.Log)
	return r, nil
}
