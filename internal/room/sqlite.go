// internal/room/sqlite.go
//
// SQLite-backed room.Store. Uses the rooms table created by the migrations in
// assets/sql. Timestamps are stored as unix milliseconds.

package room

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mattn/go-sqlite3"
)

// SQLiteStore persists rooms in a SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	clock clockwork.Clock
}

// NewSQLiteStore wraps an open, migrated database handle.
func NewSQLiteStore(db *sql.DB, clock clockwork.Clock) *SQLiteStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SQLiteStore{db: db, clock: clock}
}

func (s *SQLiteStore) Create(ctx context.Context, state json.RawMessage) (*Room, error) {
	if err := checkState(state); err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	for attempt := 0; attempt < 5; attempt++ {
		code := NewCode()
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO rooms (code, state, version, created_at, updated_at) VALUES (?,?,1,?,?)`,
			code, string(state), now.UnixMilli(), now.UnixMilli())
		var se sqlite3.Error
		if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("insert room: %w", err)
		}
		return &Room{Code: code, State: append(json.RawMessage(nil), state...), Version: 1,
			CreatedAt: msTime(now.UnixMilli()), UpdatedAt: msTime(now.UnixMilli())}, nil
	}
	return nil, errors.New("insert room: could not allocate a free code")
}

func (s *SQLiteStore) Get(ctx context.Context, code string) (*Room, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT code, state, version, created_at, updated_at FROM rooms WHERE code=?`, NormalizeCode(code))
	return scanRoom(row)
}

func (s *SQLiteStore) Update(ctx context.Context, code string, state json.RawMessage, expectedVersion int64) (*Room, error) {
	if err := checkState(state); err != nil {
		return nil, err
	}
	code = NormalizeCode(code)
	row := s.db.QueryRowContext(ctx, `
        UPDATE rooms SET state=?, version=version+1, updated_at=?
        WHERE code=? AND (?=0 OR version=?)
        RETURNING code, state, version, created_at, updated_at`,
		string(state), s.clock.Now().UTC().UnixMilli(), code, expectedVersion, expectedVersion)
	r, err := scanRoom(row)
	if errors.Is(err, ErrNotFound) {
		if _, err := s.Get(ctx, code); err != nil {
			return nil, err
		}
		return nil, ErrConflict
	}
	return r, err
}

func (s *SQLiteStore) Delete(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE code=?`, NormalizeCode(code))
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteIdle(ctx context.Context, before time.Time) (int, error) {
	codes, err := s.ExpireIdle(ctx, before)
	return len(codes), err
}

// ExpireIdle deletes rooms not updated since before and returns their codes.
func (s *SQLiteStore) ExpireIdle(ctx context.Context, before time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `DELETE FROM rooms WHERE updated_at < ? RETURNING code`, before.UTC().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("delete idle rooms: %w", err)
	}
	defer rows.Close()
	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan idle room: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// rowScanner is satisfied by *sql.Row and pgx.Row.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*Room, error) {
	var (
		r                Room
		state            string
		created, updated int64
	)
	if err := row.Scan(&r.Code, &state, &r.Version, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan room: %w", err)
	}
	r.State = json.RawMessage(state)
	r.CreatedAt = msTime(created)
	r.UpdatedAt = msTime(updated)
	return &r, nil
}

func msTime(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
