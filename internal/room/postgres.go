// internal/room/postgres.go
//
// Postgres-backed room.Store for multi-instance deployments (ROOM_STORE=postgres).
// The table is created on construction; state is stored as JSONB.

package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS rooms (
    code       TEXT PRIMARY KEY,
    state      JSONB NOT NULL,
    version    BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS rooms_updated_at_idx ON rooms (updated_at);`

// PostgresStore persists rooms through a pgx connection pool.
type PostgresStore struct {
	pool  *pgxpool.Pool
	clock clockwork.Clock
}

// NewPostgresStore connects to dsn and ensures the rooms table exists.
func NewPostgresStore(ctx context.Context, dsn string, clock clockwork.Clock) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create rooms table: %w", err)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PostgresStore{pool: pool, clock: clock}, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() { s.pool.Close() }

func (s *PostgresStore) Create(ctx context.Context, state json.RawMessage) (*Room, error) {
	if err := checkState(state); err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC().UnixMilli()
	for attempt := 0; attempt < 5; attempt++ {
		row := s.pool.QueryRow(ctx, `
            INSERT INTO rooms (code, state, version, created_at, updated_at)
            VALUES ($1, $2, 1, $3, $3)
            RETURNING code, state::text, version, created_at, updated_at`,
			NewCode(), string(state), now)
		r, err := scanPgRoom(row)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("insert room: %w", err)
		}
		return r, nil
	}
	return nil, errors.New("insert room: could not allocate a free code")
}

func (s *PostgresStore) Get(ctx context.Context, code string) (*Room, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT code, state::text, version, created_at, updated_at FROM rooms WHERE code=$1`, NormalizeCode(code))
	return scanPgRoom(row)
}

func (s *PostgresStore) Update(ctx context.Context, code string, state json.RawMessage, expectedVersion int64) (*Room, error) {
	if err := checkState(state); err != nil {
		return nil, err
	}
	code = NormalizeCode(code)
	row := s.pool.QueryRow(ctx, `
        UPDATE rooms SET state=$1, version=version+1, updated_at=$2
        WHERE code=$3 AND ($4::bigint = 0 OR version = $4::bigint)
        RETURNING code, state::text, version, created_at, updated_at`,
		string(state), s.clock.Now().UTC().UnixMilli(), code, expectedVersion)
	r, err := scanPgRoom(row)
	if errors.Is(err, ErrNotFound) {
		if _, err := s.Get(ctx, code); err != nil {
			return nil, err
		}
		return nil, ErrConflict
	}
	return r, err
}

func (s *PostgresStore) Delete(ctx context.Context, code string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM rooms WHERE code=$1`, NormalizeCode(code))
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteIdle(ctx context.Context, before time.Time) (int, error) {
	codes, err := s.ExpireIdle(ctx, before)
	return len(codes), err
}

// ExpireIdle deletes rooms not updated since before and returns their codes.
func (s *PostgresStore) ExpireIdle(ctx context.Context, before time.Time) ([]string, error) {
	rows, err := s.pool.Query(ctx, `DELETE FROM rooms WHERE updated_at < $1 RETURNING code`, before.UTC().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("delete idle rooms: %w", err)
	}
	codes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("delete idle rooms: %w", err)
	}
	return codes, nil
}

func scanPgRoom(row pgx.Row) (*Room, error) {
	r, err := scanRoom(row)
	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}
