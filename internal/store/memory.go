// internal/store/memory.go
//
// In-memory session storage for single-player games (wordle, blackjack,
// rock-paper-scissors against the CPU).
//
// Characteristics:
//   - Values are keyed by session ID and owned by the store; callers mutate
//     them only inside Update, which holds the write lock.
//   - Concurrency-safe via RWMutex.
//   - State is lost when the process restarts.
//   - Idle sessions can be dropped with DeleteIdle (room.Sweeper drives it).

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

var ErrNotFound = errors.New("session not found")

type entry[T any] struct {
	val      *T
	lastSeen time.Time
}

// Sessions is a map-based session store.
type Sessions[T any] struct {
	mu    sync.RWMutex
	items map[string]*entry[T]
	clock clockwork.Clock
}

// NewSessions constructs an empty store.
func NewSessions[T any](clock clockwork.Clock) *Sessions[T] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Sessions[T]{items: make(map[string]*entry[T]), clock: clock}
}

// Save adds or replaces the session.
func (s *Sessions[T]) Save(ctx context.Context, id string, v *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = &entry[T]{val: v, lastSeen: s.clock.Now()}
	return nil
}

// Update runs fn on the stored value under the write lock. An error from fn
// is returned as is.
func (s *Sessions[T]) Update(ctx context.Context, id string, fn func(v *T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok {
		return ErrNotFound
	}
	e.lastSeen = s.clock.Now()
	return fn(e.val)
}

// View runs fn on the stored value under the read lock.
func (s *Sessions[T]) View(ctx context.Context, id string, fn func(v *T)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[id]
	if !ok {
		return ErrNotFound
	}
	fn(e.val)
	return nil
}

// Take runs fn on the stored value and removes the session when fn returns
// nil, all under the write lock, so only one caller can consume an entry.
func (s *Sessions[T]) Take(ctx context.Context, id string, fn func(v *T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok {
		return ErrNotFound
	}
	if err := fn(e.val); err != nil {
		return err
	}
	delete(s.items, id)
	return nil
}

// Delete removes the session. Missing IDs are ignored.
func (s *Sessions[T]) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

// Len is the number of live sessions.
func (s *Sessions[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// DeleteIdle drops sessions not touched since before.
func (s *Sessions[T]) DeleteIdle(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.items {
		if e.lastSeen.Before(before) {
			delete(s.items, id)
			n++
		}
	}
	return n, nil
}
