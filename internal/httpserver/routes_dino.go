// internal/httpserver/routes_dino.go
//
// Dino runner leaderboard:
//   - POST /dino/new {name}           → issue a seed for one run
//   - POST /dino/runs {runId, jumps}  → replay the run and record the verified score
//   - GET  /dino/leaderboard?limit=n  → best runs
//
// The client plays the run locally with the issued seed and submits the
// frames it jumped on. The server replays them, so only reachable scores
// are recorded.

package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arcade/internal/dino"
	"github.com/robalobadob/arcade/internal/httpx"
)

// dinoTicket is an issued, not yet submitted run.
type dinoTicket struct {
	Player string
	Seed   uint64
	Issued time.Time
}

func (s *Server) mountDino(r chi.Router) {
	r.Route("/dino", func(r chi.Router) {
		r.Post("/new", s.handleDinoNew)
		r.Post("/runs", s.handleDinoSubmit)
		r.Get("/leaderboard", s.handleDinoLeaderboard)
	})
}

type dinoNewRes struct {
	RunID string `json:"runId"`
	Seed  uint64 `json:"seed,string"`
}

func (s *Server) handleDinoNew(w http.ResponseWriter, r *http.Request) {
	name, ok := s.decodePlayer(w, r)
	if !ok {
		return
	}
	id := uuid.NewString()
	t := &dinoTicket{Player: name, Seed: s.rng().Uint64(), Issued: s.clock.Now()}
	if err := s.dinoSeeds.Save(r.Context(), id, t); err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dinoNewRes{RunID: id, Seed: t.Seed})
}

type dinoSubmitReq struct {
	RunID string `json:"runId"`
	Jumps []int  `json:"jumps"`
	Score *int   `json:"score"` // what the client displayed; informational
}

type dinoSubmitRes struct {
	dino.Result
	Best int `json:"best"`
}

func (s *Server) handleDinoSubmit(w http.ResponseWriter, r *http.Request) {
	var req dinoSubmitReq
	if err := httpx.Decode(r, &req, false); err != nil {
		writeErr(w, r, err)
		return
	}
	// A ticket is good for one accepted submission.
	var (
		t   dinoTicket
		res dino.Result
	)
	err := s.dinoSeeds.Take(r.Context(), req.RunID, func(v *dinoTicket) error {
		var err error
		t = *v
		res, err = dino.Simulate(v.Seed, req.Jumps, s.tun.Dino.MaxFrames)
		return err
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}

	if req.Score != nil && *req.Score != res.Score {
		log.Warn().Str("runId", req.RunID).Int("claimed", *req.Score).Int("verified", res.Score).
			Msg("dino score mismatch")
	}
	run := dino.Run{
		ID:        req.RunID,
		Player:    t.Player,
		Seed:      t.Seed,
		Score:     res.Score,
		Jumps:     res.Jumps,
		CreatedAt: s.clock.Now(),
	}
	if err := s.dinoRuns.Insert(r.Context(), run); err != nil {
		writeErr(w, r, err)
		return
	}
	best, err := s.dinoRuns.Best(r.Context(), t.Player)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, dinoSubmitRes{Result: res, Best: best})
}

func (s *Server) handleDinoLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit > 100 {
		limit = 100
	}
	rows, err := s.dinoRuns.Leaderboard(r.Context(), limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"top": rows})
}
