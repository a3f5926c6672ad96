// internal/multiplayer/tictactoe.go
//
// Tic-tac-toe rooms on top of any room.Store. Every action is a conditional
// read-modify-write, so two players acting at once cannot lose a move.

package multiplayer

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"

	"github.com/robalobadob/arcade/internal/room"
	"github.com/robalobadob/arcade/internal/tictactoe"
)

// ErrNotSeated is returned when an action names a player who is not in the room.
var ErrNotSeated = errors.New("player is not seated in this room")

// TicTacToe runs tic-tac-toe rooms.
type TicTacToe struct {
	store room.Store
	clock clockwork.Clock
}

func NewTicTacToe(store room.Store, clock clockwork.Clock) *TicTacToe {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TicTacToe{store: store, clock: clock}
}

// Create opens a room with player1 as X.
func (g *TicTacToe) Create(ctx context.Context, player1 string) (*tictactoe.State, *room.Room, error) {
	st, err := tictactoe.NewState(player1)
	if err != nil {
		return nil, nil, err
	}
	st.LastUpdate = g.clock.Now().UnixMilli()
	r, err := room.CreateJSON(ctx, g.store, st)
	if err != nil {
		return nil, nil, err
	}
	return st, r, nil
}

// Get loads a room.
func (g *TicTacToe) Get(ctx context.Context, code string) (*tictactoe.State, *room.Room, error) {
	return room.GetJSON[tictactoe.State](ctx, g.store, code)
}

// Join seats player2 as O.
func (g *TicTacToe) Join(ctx context.Context, code, player2 string) (*tictactoe.State, *room.Room, error) {
	return g.mutate(ctx, code, func(s *tictactoe.State) error { return s.Join(player2) })
}

// Move plays square for the seated player.
func (g *TicTacToe) Move(ctx context.Context, code, player string, square int) (*tictactoe.State, *room.Room, error) {
	return g.mutate(ctx, code, func(s *tictactoe.State) error {
		role := s.RoleOf(player)
		if role == tictactoe.Empty {
			return ErrNotSeated
		}
		return s.Move(square, role)
	})
}

// Reset clears the board for another game between the same players.
func (g *TicTacToe) Reset(ctx context.Context, code, player string) (*tictactoe.State, *room.Room, error) {
	return g.mutate(ctx, code, func(s *tictactoe.State) error {
		if s.RoleOf(player) == tictactoe.Empty {
			return ErrNotSeated
		}
		s.Reset()
		return nil
	})
}

func (g *TicTacToe) mutate(ctx context.Context, code string, fn func(*tictactoe.State) error) (*tictactoe.State, *room.Room, error) {
	return room.MutateJSON(ctx, g.store, code, func(s *tictactoe.State) error {
		if err := fn(s); err != nil {
			return err
		}
		s.LastUpdate = g.clock.Now().UnixMilli()
		return nil
	})
}
