// internal/room/room.go
//
// Generic room store: an opaque JSON blob keyed by a short room code.
// This is the shared state that multiplayer games coordinate through.
//
// Notes:
//   - The store never interprets the blob; game packages own its shape.
//   - Version starts at 1 and increments on every successful update.
//   - Codes are 6 characters from A-Z0-9 and are case-insensitive on lookup.

package room

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("room not found")
	ErrConflict     = errors.New("room version conflict")
	ErrInvalidState = errors.New("room state must be valid json")
)

const (
	codeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Room is one stored game-state blob.
type Room struct {
	Code      string          `json:"roomId"`
	State     json.RawMessage `json:"gameState"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Store persists rooms. Implementations: memory, sqlite, postgres and the
// HTTP client in package roomclient.
type Store interface {
	// Create stores state under a fresh room code.
	Create(ctx context.Context, state json.RawMessage) (*Room, error)

	// Get returns the room or ErrNotFound.
	Get(ctx context.Context, code string) (*Room, error)

	// Update replaces the room state. expectedVersion 0 writes unconditionally;
	// any other value must match the stored version or ErrConflict is returned.
	Update(ctx context.Context, code string, state json.RawMessage, expectedVersion int64) (*Room, error)

	// Delete removes the room or returns ErrNotFound.
	Delete(ctx context.Context, code string) error
}

// Expirer is implemented by stores that can drop idle rooms.
type Expirer interface {
	DeleteIdle(ctx context.Context, before time.Time) (int, error)
}

// NewCode returns a random room code.
func NewCode() string {
	b := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b)
}

// NormalizeCode trims and upper-cases a user-entered code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether code has the shape produced by NewCode.
func ValidCode(code string) bool {
	if len(code) != codeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(codeAlphabet, rune(code[i])) {
			return false
		}
	}
	return true
}

// checkState accepts any JSON value except an absent or null one.
func checkState(state json.RawMessage) error {
	if len(state) == 0 || !json.Valid(state) || string(bytes.TrimSpace(state)) == "null" {
		return ErrInvalidState
	}
	return nil
}

func clone(r *Room) *Room {
	c := *r
	c.State = append(json.RawMessage(nil), r.State...)
	return &c
}
