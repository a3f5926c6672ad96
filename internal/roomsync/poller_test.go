package roomsync

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/robalobadob/arcade/internal/room"
)

func recv(t *testing.T, ch <-chan *room.Room) *room.Room {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no change delivered")
		return nil
	}
}

func expectNone(t *testing.T, ch <-chan *room.Room) {
	t.Helper()
	select {
	case r := <-ch:
		t.Fatalf("unexpected change v%d", r.Version)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPollerDeliversChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := clockwork.NewFakeClock()
	store := room.NewMemoryStore(clock)
	r, _ := store.Create(ctx, json.RawMessage(`{"n":0}`))

	var fetches atomic.Int32
	p := &Poller{
		Fetch: func(ctx context.Context, code string) (*room.Room, error) {
			fetches.Add(1)
			return store.Get(ctx, code)
		},
		Interval: LocalInterval,
		Clock:    clock,
	}
	changes := make(chan *room.Room, 8)
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, r.Code, func(r *room.Room) { changes <- r }) }()

	if got := recv(t, changes); got.Version != 1 {
		t.Fatalf("expected initial version 1, got %d", got.Version)
	}

	// Unchanged room: a tick fetches but does not call back.
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatal(err)
	}
	clock.Advance(LocalInterval)
	waitFetches(t, &fetches, 2)
	expectNone(t, changes)

	_, _ = store.Update(ctx, r.Code, json.RawMessage(`{"n":1}`), 0)
	clock.Advance(LocalInterval)
	if got := recv(t, changes); got.Version != 2 || string(got.State) != `{"n":1}` {
		t.Fatalf("unexpected change %+v", got)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPollerKeepsGoingAfterErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock := clockwork.NewFakeClock()

	var calls atomic.Int32
	errs := make(chan error, 8)
	p := &Poller{
		Fetch: func(ctx context.Context, code string) (*room.Room, error) {
			if calls.Add(1) == 1 {
				return nil, errors.New("network down")
			}
			return &room.Room{Code: code, Version: 3}, nil
		},
		Interval: RemoteInterval,
		Clock:    clock,
		OnError:  func(code string, err error) { errs <- err },
	}
	changes := make(chan *room.Room, 8)
	go func() { _ = p.Run(ctx, "ABCDEF", func(r *room.Room) { changes <- r }) }()

	select {
	case err := <-errs:
		if err.Error() != "network down" {
			t.Fatalf("unexpected error %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error not reported")
	}

	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatal(err)
	}
	clock.Advance(RemoteInterval)
	if got := recv(t, changes); got.Version != 3 {
		t.Fatalf("unexpected version %d", got.Version)
	}
}

func waitFetches(t *testing.T, n *atomic.Int32, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for n.Load() < want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d fetches, got %d", want, n.Load())
		}
		time.Sleep(time.Millisecond)
	}
}
