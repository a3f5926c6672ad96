// internal/httpserver/routes_tictactoe.go
//
// Two-player tic-tac-toe rooms:
//   - POST /tictactoe/rooms {name}              → open a room, creator plays X
//   - GET  /tictactoe/rooms/{roomId}            → current room state
//   - POST /tictactoe/rooms/{roomId}/join {name}
//   - POST /tictactoe/rooms/{roomId}/move {name, square}
//   - POST /tictactoe/rooms/{roomId}/reset {name}

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/arcade/internal/httpx"
	"github.com/robalobadob/arcade/internal/tictactoe"
)

func (s *Server) mountTicTacToe(r chi.Router) {
	r.Route("/tictactoe/rooms", func(r chi.Router) {
		r.Post("/", s.handleTTTCreate)
		r.Route("/{roomId}", func(r chi.Router) {
			r.Get("/", s.handleTTTGet)
			r.Post("/join", s.handleTTTJoin)
			r.Post("/move", s.handleTTTMove)
			r.Post("/reset", s.handleTTTReset)
		})
	})
}

type tttMoveReq struct {
	Name   string `json:"name"`
	Square *int   `json:"square"`
}

func (s *Server) handleTTTCreate(w http.ResponseWriter, r *http.Request) {
	name, ok := s.decodePlayer(w, r)
	if !ok {
		return
	}
	st, rm, err := s.ttt.Create(r.Context(), name)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeRoom(w, http.StatusCreated, st, rm)
}

func (s *Server) handleTTTGet(w http.ResponseWriter, r *http.Request) {
	st, rm, err := s.ttt.Get(r.Context(), chi.URLParam(r, "roomId"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeRoom(w, http.StatusOK, st, rm)
}

func (s *Server) handleTTTJoin(w http.ResponseWriter, r *http.Request) {
	name, ok := s.decodePlayer(w, r)
	if !ok {
		return
	}
	st, rm, err := s.ttt.Join(r.Context(), chi.URLParam(r, "roomId"), name)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeRoom(w, http.StatusOK, st, rm)
}

func (s *Server) handleTTTMove(w http.ResponseWriter, r *http.Request) {
	var req tttMoveReq
	if err := httpx.Decode(r, &req, false); err != nil {
		writeErr(w, r, err)
		return
	}
	if req.Square == nil {
		writeErr(w, r, tictactoe.ErrInvalidMove)
		return
	}
	name, err := s.playerName(r, req.Name)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	st, rm, err := s.ttt.Move(r.Context(), chi.URLParam(r, "roomId"), name, *req.Square)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeRoom(w, http.StatusOK, st, rm)
}

func (s *Server) handleTTTReset(w http.ResponseWriter, r *http.Request) {
	name, ok := s.decodePlayer(w, r)
	if !ok {
		return
	}
	st, rm, err := s.ttt.Reset(r.Context(), chi.URLParam(r, "roomId"), name)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeRoom(w, http.StatusOK, st, rm)
}
