// internal/dino/store.go
//
// Verified dino runs and the all-time leaderboard (table dino_runs).

package dino

import (
	"context"
	"database/sql"
	"time"
)

// Run is a verified, recorded run.
type Run struct {
	ID        string    `json:"id"`
	Player    string    `json:"player"`
	Seed      uint64    `json:"seed,string"`
	Score     int       `json:"score"`
	Jumps     int       `json:"jumps"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Insert records a run.
func (s *Store) Insert(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO dino_runs(id, player, seed, score, jumps, created_at)
		 VALUES(?,?,?,?,?,?)`,
		r.ID, r.Player, int64(r.Seed), r.Score, r.Jumps, r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Leaderboard returns the best runs, earliest first on ties.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, player, seed, score, jumps, created_at
		 FROM dino_runs
		 ORDER BY score DESC, created_at ASC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		var (
			r       Run
			seed    int64
			created string
		)
		if err := rows.Scan(&r.ID, &r.Player, &seed, &r.Score, &r.Jumps, &created); err != nil {
			return nil, err
		}
		r.Seed = uint64(seed)
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Best returns a player's top score, or 0 when they have no runs.
func (s *Store) Best(ctx context.Context, player string) (int, error) {
	var best sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(score) FROM dino_runs WHERE player=?`, player,
	).Scan(&best)
	return int(best.Int64), err
}
