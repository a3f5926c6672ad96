// internal/identity/users.go
//
// Accounts and game history in SQLite (tables users and games).
// Guests are tracked by an anonymous id; their games move to the account
// when they sign up or log in.

package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// User matches the users table.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	GamesPlayed  int       `json:"gamesPlayed"`
	Wins         int       `json:"wins"`
	Streak       int       `json:"streak"`
}

// Owner is who a game belongs to: a user or a guest.
type Owner struct {
	UserID string
	AnonID string
}

func (o Owner) clause() (string, any) {
	if o.UserID != "" {
		return "user_id=?", o.UserID
	}
	return "anonymous_id=?", o.AnonID
}

// GameRow is one entry of a user's history.
type GameRow struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Status     string `json:"status"`
	Guesses    int    `json:"guesses"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt,omitempty"`
}

// Users is the account repository.
type Users struct {
	db    *sql.DB
	clock clockwork.Clock
}

func NewUsers(db *sql.DB, clock clockwork.Clock) *Users {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Users{db: db, clock: clock}
}

func (u *Users) now() string { return u.clock.Now().UTC().Format(time.RFC3339) }

// Create validates input, checks uniqueness and inserts a new user.
func (u *Users) Create(ctx context.Context, username, pw string) (*User, error) {
	username = NormalizeUsername(username)
	if err := ValidateSignup(username, pw); err != nil {
		return nil, err
	}
	var exists int
	_ = u.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE lower(username)=lower(?)`, username).Scan(&exists)
	if exists == 1 {
		return nil, ErrUsernameTaken
	}
	h, err := HashPassword(pw)
	if err != nil {
		return nil, err
	}
	now := u.now()
	user := &User{ID: uuid.NewString(), Username: username, PasswordHash: h, CreatedAt: parseTime(now)}
	if _, err := u.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		user.ID, user.Username, user.PasswordHash, now); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// Authenticate checks a username/password pair.
func (u *Users) Authenticate(ctx context.Context, username, pw string) (*User, error) {
	user, err := u.ByUsername(ctx, NormalizeUsername(username))
	if err != nil || !CheckPassword(user.PasswordHash, pw) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (u *Users) ByUsername(ctx context.Context, username string) (*User, error) {
	row := u.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at, games_played, wins, streak
	                                  FROM users WHERE lower(username)=lower(?)`, username)
	return scanUser(row)
}

func (u *Users) ByID(ctx context.Context, id string) (*User, error) {
	row := u.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at, games_played, wins, streak
	                                  FROM users WHERE id=?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created, &u.GamesPlayed, &u.Wins, &u.Streak); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.CreatedAt = parseTime(created)
	return &u, nil
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// StartGame records a new game of kind for owner.
func (u *Users) StartGame(ctx context.Context, id, kind string, o Owner) error {
	var userID, anonID any
	if o.UserID != "" {
		userID = o.UserID
	} else {
		anonID = o.AnonID
	}
	_, err := u.db.ExecContext(ctx,
		`INSERT INTO games (id, kind, user_id, anonymous_id, answer, started_at, status, guesses)
		 VALUES (?,?,?,?,'',?,'playing',0)`, id, kind, userID, anonID, u.now())
	return err
}

// RecordMove bumps the move counter and, when status is final, closes the
// game and updates the user's stats in the same transaction.
func (u *Users) RecordMove(ctx context.Context, id string, o Owner, status string) error {
	clause, arg := o.clause()
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE games SET guesses = guesses + 1 WHERE id=? AND `+clause, id, arg); err != nil {
		return fmt.Errorf("update guesses: %w", err)
	}
	if err := finish(ctx, tx, id, o, status, u.now()); err != nil {
		return err
	}
	return tx.Commit()
}

// FinishGame closes a game without counting a move.
func (u *Users) FinishGame(ctx context.Context, id string, o Owner, status string) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := finish(ctx, tx, id, o, status, u.now()); err != nil {
		return err
	}
	return tx.Commit()
}

func finish(ctx context.Context, tx *sql.Tx, id string, o Owner, status, now string) error {
	if status == "playing" || status == "" {
		return nil
	}
	clause, arg := o.clause()
	res, err := tx.ExecContext(ctx, `UPDATE games SET status=?, finished_at=? WHERE id=? AND status='playing' AND `+clause,
		status, now, id, arg)
	if err != nil {
		return fmt.Errorf("finish game: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 || o.UserID == "" {
		return nil
	}
	return bumpStats(ctx, tx, o.UserID, status == "won")
}

// bumpStats increments games played and updates wins and streak.
func bumpStats(ctx context.Context, tx *sql.Tx, userID string, won bool) error {
	var gp, wins, streak int
	row := tx.QueryRowContext(ctx, `SELECT games_played, wins, streak FROM users WHERE id=?`, userID)
	if err := row.Scan(&gp, &wins, &streak); err != nil {
		return err
	}
	gp++
	if won {
		wins++
		streak++
	} else {
		streak = 0
	}
	_, err := tx.ExecContext(ctx, `UPDATE users SET games_played=?, wins=?, streak=? WHERE id=?`, gp, wins, streak, userID)
	return err
}

// ClaimAnonGames moves a guest's games to a user account.
func (u *Users) ClaimAnonGames(ctx context.Context, anonID, userID string) (int64, error) {
	if anonID == "" || userID == "" {
		return 0, nil
	}
	res, err := u.db.ExecContext(ctx, `UPDATE games SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RecentGames lists a user's latest games, newest first.
func (u *Users) RecentGames(ctx context.Context, userID string, limit int) ([]GameRow, error) {
	rows, err := u.db.QueryContext(ctx, `SELECT id, kind, status, guesses, started_at, COALESCE(finished_at,'')
	                                     FROM games WHERE user_id=? ORDER BY started_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []GameRow{}
	for rows.Next() {
		var g GameRow
		if err := rows.Scan(&g.ID, &g.Kind, &g.Status, &g.Guesses, &g.StartedAt, &g.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
