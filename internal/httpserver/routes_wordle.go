// internal/httpserver/routes_wordle.go
//
// Free-play wordle:
//   - POST /game/new   → start a game (random answer; fixed answer outside production)
//   - POST /game/guess → score a guess
//
// Games live in memory; a games row per session keeps the owner's history
// and stats.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arcade/internal/httpx"
	"github.com/robalobadob/arcade/internal/wordle"
	"github.com/robalobadob/arcade/internal/words"
)

func (s *Server) mountWordle(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Post("/game/guess", s.handleGuess)
}

type newGameReq struct {
	Mode   string `json:"mode"`   // "normal" only for now
	Answer string `json:"answer"` // optional fixed answer (testing)
}
type newGameRes struct {
	GameID string `json:"gameId"`
	Rows   int    `json:"rows"`
	Cols   int    `json:"cols"`
}

// handleNewGame creates a game and its owner row.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := httpx.Decode(r, &req, true); err != nil {
		writeErr(w, r, err)
		return
	}
	if req.Answer != "" && (s.cfg.Production() || !words.IsWordShape(req.Answer)) {
		httpx.Error(w, http.StatusBadRequest, "answer_not_allowed")
		return
	}

	g := wordle.New(s.words, req.Answer)
	if err := s.wordleGames.Save(r.Context(), g.ID, g); err != nil {
		writeErr(w, r, err)
		return
	}
	if err := s.users.StartGame(r.Context(), g.ID, "wordle", s.owner(w, r)); err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("insert game row")
	}
	httpx.WriteJSON(w, http.StatusOK, newGameRes{GameID: g.ID, Rows: g.Rows, Cols: g.Cols})
}

type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}
type guessRes struct {
	Marks  []wordle.Mark `json:"marks"`
	State  string        `json:"state"` // playing | won | lost
	Answer string        `json:"answer,omitempty"`
}

// handleGuess applies a guess and records progress (best effort).
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := httpx.Decode(r, &req, false); err != nil {
		writeErr(w, r, err)
		return
	}
	var res guessRes
	err := s.wordleGames.Update(r.Context(), req.GameID, func(g *wordle.Game) error {
		var err error
		res.Marks, res.State, err = g.ApplyGuess(s.words, req.Guess)
		if g.Finished && !g.Won {
			res.Answer = g.Answer
		}
		return err
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}

	if err := s.users.RecordMove(r.Context(), req.GameID, s.owner(w, r), res.State); err != nil {
		log.Warn().Err(err).Str("gameId", req.GameID).Msg("record guess")
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}
