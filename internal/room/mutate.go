package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// maxMutateAttempts bounds retries when concurrent writers race on a room.
const maxMutateAttempts = 5

// Mutate performs a read-modify-write on a room. fn receives the current
// state and returns the next one; the write is conditional on the version that
// was read, and the whole cycle is retried on ErrConflict. Errors from fn are
// returned unchanged and nothing is written.
func Mutate(ctx context.Context, s Store, code string, fn func(state json.RawMessage) (json.RawMessage, error)) (*Room, error) {
	for attempt := 0; attempt < maxMutateAttempts; attempt++ {
		cur, err := s.Get(ctx, code)
		if err != nil {
			return nil, err
		}
		next, err := fn(cur.State)
		if err != nil {
			return nil, err
		}
		r, err := s.Update(ctx, code, next, cur.Version)
		if errors.Is(err, ErrConflict) {
			continue
		}
		return r, err
	}
	return nil, fmt.Errorf("mutate %s: %w", code, ErrConflict)
}

// MutateJSON is Mutate for callers working with a typed state value.
func MutateJSON[T any](ctx context.Context, s Store, code string, fn func(state *T) error) (*T, *Room, error) {
	var out T
	r, err := Mutate(ctx, s, code, func(raw json.RawMessage) (json.RawMessage, error) {
		var st T
		if err := json.Unmarshal(raw, &st); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		if err := fn(&st); err != nil {
			return nil, err
		}
		out = st
		return json.Marshal(st)
	})
	if err != nil {
		return nil, nil, err
	}
	return &out, r, nil
}

// CreateJSON marshals state and creates a room for it.
func CreateJSON(ctx context.Context, s Store, state any) (*Room, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return s.Create(ctx, raw)
}

// GetJSON loads a room and decodes its state into T.
func GetJSON[T any](ctx context.Context, s Store, code string) (*T, *Room, error) {
	r, err := s.Get(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	var st T
	if err := json.Unmarshal(r.State, &st); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return &st, r, nil
}
