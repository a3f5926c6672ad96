package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

type counter struct{ N int }

func TestSessionsLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewSessions[counter](clockwork.NewFakeClock())

	if err := s.Update(ctx, "x", func(*counter) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_ = s.Save(ctx, "x", &counter{})
	if err := s.Update(ctx, "x", func(c *counter) error { c.N++; return nil }); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	if err := s.Update(ctx, "x", func(*counter) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	var got int
	_ = s.View(ctx, "x", func(c *counter) { got = c.N })
	if got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	s.Delete(ctx, "x")
	if err := s.View(ctx, "x", func(*counter) {}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionsConcurrentUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewSessions[counter](nil)
	_ = s.Save(ctx, "x", &counter{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(ctx, "x", func(c *counter) error { c.N++; return nil })
		}()
	}
	wg.Wait()
	_ = s.View(ctx, "x", func(c *counter) {
		if c.N != 50 {
			t.Errorf("expected 50, got %d", c.N)
		}
	})
}

func TestSessionsDeleteIdle(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	s := NewSessions[counter](clock)

	_ = s.Save(ctx, "old", &counter{})
	clock.Advance(time.Hour)
	_ = s.Save(ctx, "new", &counter{})

	n, err := s.DeleteIdle(ctx, clock.Now().Add(-30*time.Minute))
	if err != nil || n != 1 {
		t.Fatalf("expected 1 removed, got %d %v", n, err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 left, got %d", s.Len())
	}
	if err := s.View(ctx, "new", func(*counter) {}); err != nil {
		t.Fatal(err)
	}
}

func TestSessionsTakeOnce(t *testing.T) {
	ctx := context.Background()
	s := NewSessions[counter](clockwork.NewFakeClock())
	_ = s.Save(ctx, "x", &counter{N: 7})

	bad := errors.New("bad")
	if err := s.Take(ctx, "x", func(*counter) error { return bad }); !errors.Is(err, bad) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatal("a failed take must keep the session")
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		taken int
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Take(ctx, "x", func(c *counter) error { return nil }); err == nil {
				mu.Lock()
				taken++
				mu.Unlock()
			} else if !errors.Is(err, ErrNotFound) {
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()
	if taken != 1 {
		t.Fatalf("expected exactly one take, got %d", taken)
	}
	if s.Len() != 0 {
		t.Fatalf("expected session removed, got %d", s.Len())
	}
}
