package tictactoe

import (
	"encoding/json"
	"errors"
	"testing"
)

func activeGame(t *testing.T) *State {
	t.Helper()
	s, err := NewState("ann")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Join("bob"); err != nil {
		t.Fatal(err)
	}
	return s
}

func play(t *testing.T, s *State, squares ...int) {
	t.Helper()
	for _, sq := range squares {
		role := O
		if s.IsXNext {
			role = X
		}
		if err := s.Move(sq, role); err != nil {
			t.Fatalf("move %d by %s: %v", sq, role, err)
		}
	}
}

func TestJoin(t *testing.T) {
	s, _ := NewState("ann")
	if s.Status != Waiting || s.Player2 != nil {
		t.Fatalf("unexpected new state %+v", s)
	}
	if err := s.Move(0, X); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("expected invalid move before opponent joins, got %v", err)
	}
	if err := s.Join("ann"); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected name taken for the creator's name, got %v", err)
	}
	if s.Status != Waiting || s.Player2 != nil {
		t.Fatalf("rejected join must not seat anyone: %+v", s)
	}
	if err := s.Join("bob"); err != nil {
		t.Fatal(err)
	}
	if s.Status != Active || *s.Player2 != "bob" {
		t.Fatalf("unexpected joined state %+v", s)
	}
	if err := s.Join("cat"); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected room full, got %v", err)
	}
	if s.RoleOf("ann") != X || s.RoleOf("bob") != O || s.RoleOf("cat") != Empty {
		t.Fatal("unexpected roles")
	}
	if _, err := NewState(""); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected name required, got %v", err)
	}
}

func TestTurnOrder(t *testing.T) {
	s := activeGame(t)
	if err := s.Move(0, O); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected not your turn, got %v", err)
	}
	play(t, s, 4)
	if err := s.Move(0, X); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected not your turn, got %v", err)
	}
	if err := s.Move(4, O); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("expected occupied square rejected, got %v", err)
	}
	if err := s.Move(9, O); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("expected out of range rejected, got %v", err)
	}
	if err := s.Move(1, "Z"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected invalid role, got %v", err)
	}
}

func TestWinLines(t *testing.T) {
	cases := []struct {
		name   string
		moves  []int
		winner Mark
	}{
		{"top row", []int{0, 3, 1, 4, 2}, X},
		{"middle column", []int{0, 1, 3, 4, 8, 7}, O},
		{"diagonal", []int{0, 1, 4, 2, 8}, X},
		{"anti diagonal", []int{0, 2, 1, 4, 3, 6}, O},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := activeGame(t)
			play(t, s, tc.moves...)
			if s.Winner != tc.winner || s.Status != Finished {
				t.Fatalf("expected %s to win, got winner=%q status=%s", tc.winner, s.Winner, s.Status)
			}
			next := X
			if !s.IsXNext {
				next = O
			}
			if err := s.Move(5, next); !errors.Is(err, ErrInvalidMove) {
				t.Fatalf("expected moves rejected after win, got %v", err)
			}
		})
	}
}

func TestDraw(t *testing.T) {
	s := activeGame(t)
	// X O X / X O O / O X X
	play(t, s, 0, 1, 2, 4, 3, 5, 7, 6, 8)
	if s.Winner != Empty || s.Status != Finished || !IsDraw(s.Squares) {
		t.Fatalf("expected draw, got %+v", s)
	}
}

func TestReset(t *testing.T) {
	s := activeGame(t)
	play(t, s, 0, 3, 1, 4, 2)
	s.Reset()
	if s.Status != Active || !s.IsXNext || s.Winner != Empty || len(s.Moves) != 0 {
		t.Fatalf("unexpected reset state %+v", s)
	}
	if s.Player1 != "ann" || *s.Player2 != "bob" {
		t.Fatal("reset must keep players")
	}
	for _, m := range s.Squares {
		if m != Empty {
			t.Fatal("board not cleared")
		}
	}
}

func TestJSONShape(t *testing.T) {
	s, _ := NewState("ann")
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	_ = json.Unmarshal(data, &m)
	if m["player2"] != nil {
		t.Fatalf("expected null player2, got %v", m["player2"])
	}
	sq := m["squares"].([]any)
	if len(sq) != 9 || sq[0] != nil {
		t.Fatalf("expected 9 null squares, got %v", sq)
	}
	if m["isXNext"] != true || m["status"] != "waiting" {
		t.Fatalf("unexpected json %s", data)
	}

	var back State
	if err := json.Unmarshal([]byte(`{"squares":[null,"X",null,null,"O",null,null,null,null],"isXNext":true,"player1":"a","player2":"b","status":"active"}`), &back); err != nil {
		t.Fatal(err)
	}
	if back.Squares[1] != X || back.Squares[4] != O || back.Squares[0] != Empty {
		t.Fatalf("unexpected decoded squares %v", back.Squares)
	}
}
