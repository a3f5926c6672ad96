package room

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/jonboulle/clockwork"
)

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dsn, clockwork.NewRealClock())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer s.Close()

	r, err := s.Create(ctx, json.RawMessage(`{"squares":[null]}`))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer s.Delete(ctx, r.Code)

	if _, err := s.Update(ctx, r.Code, json.RawMessage(`{"squares":["X"]}`), 1); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := s.Update(ctx, r.Code, json.RawMessage(`{}`), 1); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	got, err := s.Get(ctx, r.Code)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var st map[string][]any
	if err := json.Unmarshal(got.State, &st); err != nil || st["squares"][0] != "X" {
		t.Fatalf("unexpected state %s (%v)", got.State, err)
	}
	if _, err := s.Get(ctx, "ZZZZZZ"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
