// internal/httpserver/rooms.go
//
// Shared helpers for the room-backed games.

package httpserver

import (
	"net/http"
	"strings"

	"github.com/robalobadob/arcade/internal/httpx"
	"github.com/robalobadob/arcade/internal/identity"
	"github.com/robalobadob/arcade/internal/room"
)

// playerReq is the body of most room actions.
type playerReq struct {
	Name string `json:"name"`
}

// roomRes is the reply of every room action.
type roomRes struct {
	RoomID    string `json:"roomId"`
	Version   int64  `json:"version"`
	GameState any    `json:"gameState"`
	Completed *bool  `json:"roundCompleted,omitempty"`
}

func writeRoom(w http.ResponseWriter, status int, st any, rm *room.Room) {
	httpx.WriteJSON(w, status, roomRes{RoomID: rm.Code, Version: rm.Version, GameState: st})
}

// playerName validates name; signed-in users default to their username.
func (s *Server) playerName(r *http.Request, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		if me := currentUser(r); me != nil {
			name = me.Username
		}
	}
	return identity.PlayerName(name)
}

// decodePlayer reads a playerReq and resolves the player name, answering the
// request itself on failure.
func (s *Server) decodePlayer(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req playerReq
	if err := httpx.Decode(r, &req, true); err != nil {
		writeErr(w, r, err)
		return "", false
	}
	name, err := s.playerName(r, req.Name)
	if err != nil {
		writeErr(w, r, err)
		return "", false
	}
	return name, true
}
