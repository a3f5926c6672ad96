// internal/room/memory.go
//
// In-memory implementation of room.Store.
// Plays the part the browser's local storage played for single-machine play:
// concurrency-safe via RWMutex, state is lost when the process restarts.

package room

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// MemoryStore is a map-based Store keyed by room code.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	clock clockwork.Clock
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{rooms: make(map[string]*Room), clock: clock}
}

func (m *MemoryStore) Create(ctx context.Context, state json.RawMessage) (*Room, error) {
	if err := checkState(state); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	code := NewCode()
	for m.rooms[code] != nil {
		code = NewCode()
	}
	now := m.clock.Now().UTC()
	r := &Room{Code: code, State: append(json.RawMessage(nil), state...), Version: 1, CreatedAt: now, UpdatedAt: now}
	m.rooms[code] = r
	return clone(r), nil
}

func (m *MemoryStore) Get(ctx context.Context, code string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.rooms[NormalizeCode(code)]; ok {
		return clone(r), nil
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) Update(ctx context.Context, code string, state json.RawMessage, expectedVersion int64) (*Room, error) {
	if err := checkState(state); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[NormalizeCode(code)]
	if !ok {
		return nil, ErrNotFound
	}
	if expectedVersion != 0 && r.Version != expectedVersion {
		return nil, ErrConflict
	}
	r.State = append(json.RawMessage(nil), state...)
	r.Version++
	r.UpdatedAt = m.clock.Now().UTC()
	return clone(r), nil
}

func (m *MemoryStore) Delete(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	code = NormalizeCode(code)
	if _, ok := m.rooms[code]; !ok {
		return ErrNotFound
	}
	delete(m.rooms, code)
	return nil
}

// DeleteIdle drops rooms not updated since before.
func (m *MemoryStore) DeleteIdle(ctx context.Context, before time.Time) (int, error) {
	codes, err := m.ExpireIdle(ctx, before)
	return len(codes), err
}

// ExpireIdle is DeleteIdle that also reports which codes went away.
func (m *MemoryStore) ExpireIdle(ctx context.Context, before time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var codes []string
	for code, r := range m.rooms {
		if r.UpdatedAt.Before(before) {
			delete(m.rooms, code)
			codes = append(codes, code)
		}
	}
	return codes, nil
}
