// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start a daily game (creates or reuses session)
//   - POST /daily/guess       → submit a guess for today's daily game
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// Each player can play once per day (enforced by DB + in-memory session).
// Sessions are held in memory for active play and persisted to DB on win.
// Deterministic word selection is based on date + salt.

package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arcade/internal/daily"
	"github.com/robalobadob/arcade/internal/httpx"
	"github.com/robalobadob/arcade/internal/store"
	"github.com/robalobadob/arcade/internal/wordle"
)

const dailyMaxGuesses = 6

// dailySession holds transient state for an in-progress daily game.
type dailySession struct {
	GameID    string
	UserID    string
	Date      string
	WordIndex int
	Answer    string
	Start     time.Time
	Guesses   int
	Finished  bool
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.handleDailyNew)
		r.Post("/guess", s.handleDailyGuess)
		r.Get("/leaderboard", s.handleDailyLeaderboard)
	})
}

// dateKeyNow returns today's date key, deterministic word index, and answer.
func (s *Server) dateKeyNow() (date string, idx int, answer string) {
	now := s.clock.Now().UTC()
	date = daily.DateKey(now)
	answers := s.words.Answers()
	if len(answers) == 0 {
		return date, 0, ""
	}
	idx = daily.WordIndex(now, s.cfg.DailySalt, len(answers))
	return date, idx, answers[idx]
}

// -----------------------------------------------------------------------------
// /daily/new

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	GameID string `json:"gameId"`
	Date   string `json:"date"`
	Played bool   `json:"played"`
}

// handleDailyNew creates or reuses a daily session for the current date.
// A player with a stored result for today gets Played=true.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	uid := s.playerID(w, r)
	date, idx, answer := s.dateKeyNow()

	played, err := s.daily.AlreadyPlayed(r.Context(), uid, date)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if played {
		httpx.WriteJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
		return
	}

	key := uid + "|" + date
	var existing string
	if err := s.dailyGames.View(r.Context(), key, func(d *dailySession) { existing = d.GameID }); err == nil {
		httpx.WriteJSON(w, http.StatusOK, dailyNewRes{GameID: existing, Date: date})
		return
	}
	sess := &dailySession{
		GameID:    uuid.NewString(),
		UserID:    uid,
		Date:      date,
		WordIndex: idx,
		Answer:    strings.ToLower(answer),
		Start:     s.clock.Now(),
	}
	if err := s.dailyGames.Save(r.Context(), key, sess); err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dailyNewRes{GameID: sess.GameID, Date: date})
}

// -----------------------------------------------------------------------------
// /daily/guess

// dailyGuessReq is the request payload for /daily/guess.
type dailyGuessReq struct {
	GameID string `json:"gameId"`
	Word   string `json:"word"`
}

// dailyGuessRes is the response payload for /daily/guess.
type dailyGuessRes struct {
	Marks   []int  `json:"marks"` // per-letter: 0=miss, 1=present, 2=hit
	State   string `json:"state"` // in_progress | won | lost | locked
	Guesses int    `json:"guesses"`
}

var errNoDailySession = errors.New("no daily session")

// handleDailyGuess validates and applies a guess for today's session.
// A win or the sixth miss finishes the session and stores the result, so the
// day cannot be replayed once the session expires.
func (s *Server) handleDailyGuess(w http.ResponseWriter, r *http.Request) {
	uid := s.playerID(w, r)

	var p dailyGuessReq
	if err := httpx.Decode(r, &p, false); err != nil {
		writeErr(w, r, err)
		return
	}
	p.Word = strings.ToLower(strings.TrimSpace(p.Word))
	if p.GameID == "" || len(p.Word) != 5 {
		httpx.Error(w, http.StatusBadRequest, "invalid")
		return
	}
	if !s.words.IsAllowed(p.Word) {
		httpx.Error(w, http.StatusBadRequest, "not_in_list")
		return
	}

	date, _, _ := s.dateKeyNow()
	var (
		res    dailyGuessRes
		result *daily.Result
	)
	err := s.dailyGames.Update(r.Context(), uid+"|"+date, func(d *dailySession) error {
		if d.GameID != p.GameID {
			return errNoDailySession
		}
		if d.Finished {
			res = dailyGuessRes{Marks: []int{}, State: "locked", Guesses: d.Guesses}
			return nil
		}
		marks := wordle.Score(d.Answer, p.Word)
		d.Guesses++
		res = dailyGuessRes{Marks: wordle.Codes(marks), State: "in_progress", Guesses: d.Guesses}
		switch {
		case wordle.AllHit(marks):
			res.State = "won"
		case d.Guesses >= dailyMaxGuesses:
			res.State = "lost"
		default:
			return nil
		}
		d.Finished = true
		result = &daily.Result{
			UserID:    uid,
			Date:      date,
			WordIndex: d.WordIndex,
			Guesses:   d.Guesses,
			ElapsedMs: int(s.clock.Since(d.Start).Milliseconds()),
			Won:       res.State == "won",
		}
		return nil
	})
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, errNoDailySession):
		httpx.Error(w, http.StatusConflict, "no_session")
		return
	case err != nil:
		writeErr(w, r, err)
		return
	}

	if result != nil {
		if err := s.daily.InsertResult(r.Context(), *result); err != nil {
			log.Warn().Err(err).Str("user", uid).Str("date", date).Msg("insert daily result")
		}
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// dailyLBRes is returned by /daily/leaderboard.
type dailyLBRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleDailyLeaderboard returns the leaderboard for the given date (default today).
func (s *Server) handleDailyLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date, _, _ = s.dateKeyNow()
	}
	rows, err := s.daily.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dailyLBRes{Date: date, Top: rows})
}
