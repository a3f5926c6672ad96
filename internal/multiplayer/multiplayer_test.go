package multiplayer

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"github.com/robalobadob/arcade/internal/room"
	"github.com/robalobadob/arcade/internal/roomapi"
	"github.com/robalobadob/arcade/internal/roomclient"
	"github.com/robalobadob/arcade/internal/rps"
	"github.com/robalobadob/arcade/internal/tictactoe"
)

// stores returns a local store and a remote one reached over HTTP, so the
// same session code is exercised against both.
func stores(t *testing.T, clock clockwork.Clock) map[string]room.Store {
	t.Helper()
	r := chi.NewRouter()
	r.Mount("/api/rooms", roomapi.New(room.NewMemoryStore(clock), nil).Routes())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return map[string]room.Store{
		"local":  room.NewMemoryStore(clock),
		"remote": roomclient.New(srv.URL, nil),
	}
}

func TestTicTacToeGame(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(1_700_000_000_000))
	for name, store := range stores(t, clock) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			g := NewTicTacToe(store, clock)
			start := clock.Now().UnixMilli()

			st, r, err := g.Create(ctx, "ann")
			if err != nil {
				t.Fatal(err)
			}
			if st.Status != tictactoe.Waiting || st.LastUpdate != start {
				t.Fatalf("unexpected new state %+v", st)
			}
			if _, _, err := g.Move(ctx, r.Code, "ann", 0); !errors.Is(err, tictactoe.ErrInvalidMove) {
				t.Fatalf("move before join: %v", err)
			}

			clock.Advance(time.Second)
			if _, _, err := g.Join(ctx, r.Code, "bob"); err != nil {
				t.Fatal(err)
			}
			if _, _, err := g.Join(ctx, r.Code, "cat"); !errors.Is(err, tictactoe.ErrRoomFull) {
				t.Fatalf("expected room full, got %v", err)
			}
			if _, _, err := g.Move(ctx, r.Code, "cat", 0); !errors.Is(err, ErrNotSeated) {
				t.Fatalf("expected not seated, got %v", err)
			}
			if _, _, err := g.Move(ctx, r.Code, "bob", 0); !errors.Is(err, tictactoe.ErrNotYourTurn) {
				t.Fatalf("expected not your turn, got %v", err)
			}

			moves := []struct {
				who string
				sq  int
			}{{"ann", 0}, {"bob", 3}, {"ann", 1}, {"bob", 4}, {"ann", 2}}
			for _, m := range moves {
				if st, _, err = g.Move(ctx, r.Code, m.who, m.sq); err != nil {
					t.Fatalf("%s->%d: %v", m.who, m.sq, err)
				}
			}
			if st.Winner != tictactoe.X || st.Status != tictactoe.Finished {
				t.Fatalf("expected X to win, got %+v", st)
			}

			got, rm, err := g.Get(ctx, r.Code)
			if err != nil || got.Winner != tictactoe.X || len(got.Moves) != 5 {
				t.Fatalf("reload: %+v %v", got, err)
			}
			if rm.Version != 7 {
				t.Fatalf("expected version 7, got %d", rm.Version)
			}
			if got.LastUpdate != start+1000 {
				t.Fatalf("lastUpdate not refreshed: %d", got.LastUpdate)
			}

			if st, _, err = g.Reset(ctx, r.Code, "bob"); err != nil || st.Status != tictactoe.Active || st.Winner != tictactoe.Empty {
				t.Fatalf("reset: %+v %v", st, err)
			}
		})
	}
}

func TestTicTacToeConcurrentMoves(t *testing.T) {
	ctx := context.Background()
	g := NewTicTacToe(room.NewMemoryStore(nil), nil)
	_, r, _ := g.Create(ctx, "ann")
	_, _, _ = g.Join(ctx, r.Code, "bob")

	// Both players race for the first move; only X may take it.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, who := range []string{"ann", "bob"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, errs[i] = g.Move(ctx, r.Code, who, 4)
		}()
	}
	wg.Wait()
	if errs[0] != nil {
		t.Fatalf("X move failed: %v", errs[0])
	}
	if errs[1] == nil {
		t.Fatal("O must not be able to take the same square")
	}
	st, _, _ := g.Get(ctx, r.Code)
	if st.Squares[4] != tictactoe.X || len(st.Moves) != 1 {
		t.Fatalf("unexpected board %+v", st)
	}
}

func TestRPSGame(t *testing.T) {
	clock := clockwork.NewFakeClock()
	for name, store := range stores(t, clock) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			g := NewRPS(store, clock)

			_, r, err := g.Create(ctx, "ann")
			if err != nil {
				t.Fatal(err)
			}
			if _, _, err := g.Join(ctx, r.Code, "bob"); err != nil {
				t.Fatal(err)
			}

			_, _, done, err := g.Select(ctx, r.Code, "ann", rps.Paper)
			if err != nil || done {
				t.Fatalf("first select: %v %v", done, err)
			}
			st, _, done, err := g.Select(ctx, r.Code, "bob", rps.Rock)
			if err != nil || !done {
				t.Fatalf("second select: %v %v", done, err)
			}
			if st.Scores["ann"] != 1 || st.GameHistory[0] != "ann selected paper, bob selected rock: ann wins!" {
				t.Fatalf("unexpected state %+v", st)
			}
			if _, _, _, err := g.Select(ctx, r.Code, "zed", rps.Rock); !errors.Is(err, rps.ErrUnknownPlayer) {
				t.Fatalf("expected unknown player, got %v", err)
			}

			st, rm, err := g.Leave(ctx, r.Code, "bob")
			if err != nil || rm == nil || st.GameHistory[len(st.GameHistory)-1] != "bob left the game" {
				t.Fatalf("leave: %+v %v %v", st, rm, err)
			}
			_, rm, err = g.Leave(ctx, r.Code, "ann")
			if err != nil || rm != nil {
				t.Fatalf("last leave should delete the room: %v %v", rm, err)
			}
			if _, _, err := g.Get(ctx, r.Code); !errors.Is(err, room.ErrNotFound) {
				t.Fatalf("expected room gone, got %v", err)
			}
		})
	}
}
