// internal/multiplayer/rps.go
//
// Rock-paper-scissors rooms on top of any room.Store.
// The room is deleted when its last player leaves.

package multiplayer

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"

	"github.com/robalobadob/arcade/internal/room"
	"github.com/robalobadob/arcade/internal/rps"
)

// RPS runs rock-paper-scissors rooms.
type RPS struct {
	store room.Store
	clock clockwork.Clock
}

func NewRPS(store room.Store, clock clockwork.Clock) *RPS {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RPS{store: store, clock: clock}
}

// Create opens a room with creator seated.
func (g *RPS) Create(ctx context.Context, creator string) (*rps.State, *room.Room, error) {
	st, err := rps.NewState(creator)
	if err != nil {
		return nil, nil, err
	}
	st.LastUpdated = g.clock.Now().UnixMilli()
	r, err := room.CreateJSON(ctx, g.store, st)
	if err != nil {
		return nil, nil, err
	}
	return st, r, nil
}

// Get loads a room.
func (g *RPS) Get(ctx context.Context, code string) (*rps.State, *room.Room, error) {
	return room.GetJSON[rps.State](ctx, g.store, code)
}

// Join seats name. Joining twice is harmless.
func (g *RPS) Join(ctx context.Context, code, name string) (*rps.State, *room.Room, error) {
	return g.mutate(ctx, code, func(s *rps.State) error { return s.Join(name) })
}

// Select records a choice and reports whether it completed the round.
func (g *RPS) Select(ctx context.Context, code, name string, c rps.Choice) (*rps.State, *room.Room, bool, error) {
	var completed bool
	st, r, err := g.mutate(ctx, code, func(s *rps.State) error {
		var err error
		completed, err = s.Select(name, c)
		return err
	})
	return st, r, completed, err
}

// Leave removes name. When nobody is left the room is deleted and the
// returned room is nil.
func (g *RPS) Leave(ctx context.Context, code, name string) (*rps.State, *room.Room, error) {
	var empty bool
	st, r, err := g.mutate(ctx, code, func(s *rps.State) error {
		var err error
		empty, err = s.Leave(name)
		return err
	})
	if err != nil || !empty {
		return st, r, err
	}
	if err := g.store.Delete(ctx, code); err != nil && !errors.Is(err, room.ErrNotFound) {
		return st, r, err
	}
	return st, nil, nil
}

func (g *RPS) mutate(ctx context.Context, code string, fn func(*rps.State) error) (*rps.State, *room.Room, error) {
	return room.MutateJSON(ctx, g.store, code, func(s *rps.State) error {
		if err := fn(s); err != nil {
			return err
		}
		s.LastUpdated = g.clock.Now().UnixMilli()
		return nil
	})
}
