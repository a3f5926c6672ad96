// internal/httpserver/routes_rps.go
//
// Rock-paper-scissors:
//   - POST /rps/cpu/new  {name}            → start a match against the CPU
//   - POST /rps/cpu/play {matchId, choice} → play one round
//   - POST /rps/rooms    {name}            → open a multiplayer room
//   - GET  /rps/rooms/{roomId}             → current room state
//   - POST /rps/rooms/{roomId}/join|select|leave
//
// The last player leaving deletes the room.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/robalobadob/arcade/internal/httpx"
	"github.com/robalobadob/arcade/internal/rps"
)

func (s *Server) mountRPS(r chi.Router) {
	r.Route("/rps", func(r chi.Router) {
		r.Post("/cpu/new", s.handleRPSMatchNew)
		r.Post("/cpu/play", s.handleRPSMatchPlay)

		r.Post("/rooms", s.handleRPSCreate)
		r.Route("/rooms/{roomId}", func(r chi.Router) {
			r.Get("/", s.handleRPSGet)
			r.Post("/join", s.handleRPSJoin)
			r.Post("/select", s.handleRPSSelect)
			r.Post("/leave", s.handleRPSLeave)
		})
	})
}

// ----------------------------- vs CPU ---------------------------------------

type rpsMatchRes struct {
	MatchID string `json:"matchId"`
	*rps.Match
}

func (s *Server) handleRPSMatchNew(w http.ResponseWriter, r *http.Request) {
	var req playerReq
	if err := httpx.Decode(r, &req, true); err != nil {
		writeErr(w, r, err)
		return
	}
	name, err := s.playerName(r, req.Name)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	id := uuid.NewString()
	m := rps.NewMatch(name)
	if err := s.matches.Save(r.Context(), id, m); err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rpsMatchRes{MatchID: id, Match: m})
}

type rpsPlayReq struct {
	MatchID string `json:"matchId"`
	Choice  string `json:"choice"`
}

type rpsPlayRes struct {
	Round     rps.Round `json:"round"`
	UserScore int       `json:"userScore"`
	CPUScore  int       `json:"cpuScore"`
}

func (s *Server) handleRPSMatchPlay(w http.ResponseWriter, r *http.Request) {
	var req rpsPlayReq
	if err := httpx.Decode(r, &req, false); err != nil {
		writeErr(w, r, err)
		return
	}
	c, err := rps.ParseChoice(req.Choice)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	var res rpsPlayRes
	err = s.matches.Update(r.Context(), req.MatchID, func(m *rps.Match) error {
		round, err := m.Play(c, s.rng())
		if err != nil {
			return err
		}
		res = rpsPlayRes{Round: round, UserScore: m.UserScore, CPUScore: m.CPUScore}
		return nil
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

// ----------------------------- rooms ----------------------------------------

type rpsSelectReq struct {
	Name   string `json:"name"`
	Choice string `json:"choice"`
}

func (s *Server) handleRPSCreate(w http.ResponseWriter, r *http.Request) {
	name, ok := s.decodePlayer(w, r)
	if !ok {
		return
	}
	st, rm, err := s.rpsRooms.Create(r.Context(), name)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeRoom(w, http.StatusCreated, st, rm)
}

func (s *Server) handleRPSGet(w http.ResponseWriter, r *http.Request) {
	st, rm, err := s.rpsRooms.Get(r.Context(), chi.URLParam(r, "roomId"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeRoom(w, http.StatusOK, st, rm)
}

func (s *Server) handleRPSJoin(w http.ResponseWriter, r *http.Request) {
	name, ok := s.decodePlayer(w, r)
	if !ok {
		return
	}
	st, rm, err := s.rpsRooms.Join(r.Context(), chi.URLParam(r, "roomId"), name)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeRoom(w, http.StatusOK, st, rm)
}

func (s *Server) handleRPSSelect(w http.ResponseWriter, r *http.Request) {
	var req rpsSelectReq
	if err := httpx.Decode(r, &req, false); err != nil {
		writeErr(w, r, err)
		return
	}
	name, err := s.playerName(r, req.Name)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	c, err := rps.ParseChoice(req.Choice)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	st, rm, completed, err := s.rpsRooms.Select(r.Context(), chi.URLParam(r, "roomId"), name, c)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, roomRes{
		RoomID:    rm.Code,
		Version:   rm.Version,
		GameState: st,
		Completed: &completed,
	})
}

func (s *Server) handleRPSLeave(w http.ResponseWriter, r *http.Request) {
	name, ok := s.decodePlayer(w, r)
	if !ok {
		return
	}
	code := chi.URLParam(r, "roomId")
	st, rm, err := s.rpsRooms.Leave(r.Context(), code, name)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if rm == nil {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"roomId": code, "deleted": true})
		return
	}
	writeRoom(w, http.StatusOK, st, rm)
}
