package roomclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"github.com/robalobadob/arcade/internal/room"
	"github.com/robalobadob/arcade/internal/roomapi"
)

func newClient(t *testing.T) *Client {
	t.Helper()
	r := chi.NewRouter()
	r.Mount("/api/rooms", roomapi.New(room.NewMemoryStore(clockwork.NewRealClock()), nil).Routes())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", nil)
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	created, err := c.Create(ctx, json.RawMessage(`{"players":["ann"]}`))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !room.ValidCode(created.Code) || created.Version != 1 {
		t.Fatalf("unexpected room %+v", created)
	}

	got, err := c.Get(ctx, created.Code)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got.State) != `{"players":["ann"]}` || got.UpdatedAt.IsZero() {
		t.Fatalf("unexpected state %s %v", got.State, got.UpdatedAt)
	}

	upd, err := c.Update(ctx, created.Code, json.RawMessage(`{"players":["ann","bob"]}`), 1)
	if err != nil || upd.Version != 2 {
		t.Fatalf("update: %+v %v", upd, err)
	}
	if _, err := c.Update(ctx, created.Code, json.RawMessage(`{}`), 1); !errors.Is(err, room.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := c.Update(ctx, created.Code, json.RawMessage(`{}`), 0); err != nil {
		t.Fatalf("unconditional update: %v", err)
	}

	if err := c.Delete(ctx, created.Code); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.Get(ctx, created.Code); !errors.Is(err, room.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := c.Delete(ctx, created.Code); !errors.Is(err, room.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestClientInvalidState(t *testing.T) {
	c := newClient(t)
	if _, err := c.Create(context.Background(), nil); !errors.Is(err, room.ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestClientMutate(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)
	type counter struct{ N int }

	r, err := room.CreateJSON(ctx, c, counter{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, _, err := room.MutateJSON(ctx, c, r.Code, func(s *counter) error { s.N++; return nil }); err != nil {
			t.Fatal(err)
		}
	}
	st, rm, err := room.GetJSON[counter](ctx, c, r.Code)
	if err != nil || st.N != 3 || rm.Version != 4 {
		t.Fatalf("unexpected %+v %+v %v", st, rm, err)
	}
}

func TestClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"store_error"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Get(context.Background(), "ABCDEF")
	if err == nil || errors.Is(err, room.ErrNotFound) {
		t.Fatalf("expected a generic error, got %v", err)
	}
}
