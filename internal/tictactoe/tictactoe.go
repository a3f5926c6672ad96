// internal/tictactoe/tictactoe.go
//
// Rules for two-player tic-tac-toe shared through a room.
// The creator plays X and always moves first; the joiner plays O.
//
// State transitions:
//   waiting  --Join-->  active  --Move (win or full board)-->  finished
//   finished/active --Reset--> active (same players, empty board, X to move)

package tictactoe

import (
	"encoding/json"
	"errors"
)

var (
	ErrRoomFull     = errors.New("room is full")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrInvalidMove  = errors.New("invalid move")
	ErrInvalidRole  = errors.New("role must be X or O")
	ErrNameRequired = errors.New("player name required")
	ErrNameTaken    = errors.New("name already seated")
)

// Mark is the content of one square. The empty mark encodes as JSON null.
type Mark string

const (
	Empty Mark = ""
	X     Mark = "X"
	O     Mark = "O"
)

func (m Mark) MarshalJSON() ([]byte, error) {
	if m == Empty {
		return []byte("null"), nil
	}
	return json.Marshal(string(m))
}

func (m *Mark) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = Empty
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch Mark(s) {
	case Empty, X, O:
		*m = Mark(s)
		return nil
	}
	return ErrInvalidRole
}

// Status of a room.
type Status string

const (
	Waiting  Status = "waiting"
	Active   Status = "active"
	Finished Status = "finished"
)

// State is the JSON blob stored in the room.
type State struct {
	Squares    [9]Mark `json:"squares"`
	IsXNext    bool    `json:"isXNext"`
	Player1    string  `json:"player1"`
	Player2    *string `json:"player2"`
	Status     Status  `json:"status"`
	Winner     Mark    `json:"winner"`
	Moves      []int   `json:"moves"`
	LastUpdate int64   `json:"lastUpdate"`
}

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// NewState starts a room for player1 waiting for an opponent.
func NewState(player1 string) (*State, error) {
	if player1 == "" {
		return nil, ErrNameRequired
	}
	return &State{IsXNext: true, Player1: player1, Status: Waiting, Moves: []int{}}, nil
}

// Join seats player2 as O and activates the game.
func (s *State) Join(player2 string) error {
	if player2 == "" {
		return ErrNameRequired
	}
	if s.Player2 != nil {
		return ErrRoomFull
	}
	// Roles are resolved by name.
	if player2 == s.Player1 {
		return ErrNameTaken
	}
	s.Player2 = &player2
	s.Status = Active
	return nil
}

// Move places role's mark on square (0..8).
func (s *State) Move(square int, role Mark) error {
	if role != X && role != O {
		return ErrInvalidRole
	}
	if (s.IsXNext && role != X) || (!s.IsXNext && role != O) {
		return ErrNotYourTurn
	}
	if s.Status != Active || square < 0 || square > 8 || s.Squares[square] != Empty || Winner(s.Squares) != Empty {
		return ErrInvalidMove
	}

	s.Squares[square] = role
	s.Moves = append(s.Moves, square)
	s.IsXNext = !s.IsXNext

	if w := Winner(s.Squares); w != Empty {
		s.Winner = w
		s.Status = Finished
	} else if IsDraw(s.Squares) {
		s.Status = Finished
	}
	return nil
}

// Reset clears the board and keeps both players seated.
func (s *State) Reset() {
	s.Squares = [9]Mark{}
	s.IsXNext = true
	s.Winner = Empty
	s.Moves = []int{}
	if s.Player2 != nil {
		s.Status = Active
	} else {
		s.Status = Waiting
	}
}

// RoleOf returns the mark played by name, or Empty if name is not seated.
func (s *State) RoleOf(name string) Mark {
	switch {
	case name == s.Player1:
		return X
	case s.Player2 != nil && name == *s.Player2:
		return O
	}
	return Empty
}

// Winner returns the mark holding a full line, or Empty.
func Winner(sq [9]Mark) Mark {
	for _, l := range lines {
		a, b, c := l[0], l[1], l[2]
		if sq[a] != Empty && sq[a] == sq[b] && sq[a] == sq[c] {
			return sq[a]
		}
	}
	return Empty
}

// IsDraw reports a full board with no winner.
func IsDraw(sq [9]Mark) bool {
	for _, m := range sq {
		if m == Empty {
			return false
		}
	}
	return Winner(sq) == Empty
}
