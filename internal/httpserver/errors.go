// internal/httpserver/errors.go
//
// Maps domain errors to HTTP statuses and {"error":"<code>"} bodies.

package httpserver

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arcade/internal/blackjack"
	"github.com/robalobadob/arcade/internal/dino"
	"github.com/robalobadob/arcade/internal/httpx"
	"github.com/robalobadob/arcade/internal/identity"
	"github.com/robalobadob/arcade/internal/multiplayer"
	"github.com/robalobadob/arcade/internal/room"
	"github.com/robalobadob/arcade/internal/rps"
	"github.com/robalobadob/arcade/internal/store"
	"github.com/robalobadob/arcade/internal/tictactoe"
	"github.com/robalobadob/arcade/internal/wordle"
)

type errMapping struct {
	err    error
	status int
	code   string
}

var errTable = []errMapping{
	{httpx.ErrBadJSON, http.StatusBadRequest, "bad_json"},
	{store.ErrNotFound, http.StatusNotFound, "not_found"},
	{room.ErrNotFound, http.StatusNotFound, "not_found"},
	{room.ErrConflict, http.StatusConflict, "version_conflict"},
	{room.ErrInvalidState, http.StatusBadRequest, "invalid_state"},

	{identity.ErrNameRequired, http.StatusBadRequest, "name_required"},
	{identity.ErrNameTooLong, http.StatusBadRequest, "name_too_long"},
	{identity.ErrNameInvalid, http.StatusBadRequest, "invalid_name"},

	{tictactoe.ErrNameRequired, http.StatusBadRequest, "name_required"},
	{tictactoe.ErrRoomFull, http.StatusConflict, "room_full"},
	{tictactoe.ErrNameTaken, http.StatusConflict, "name_taken"},
	{tictactoe.ErrNotYourTurn, http.StatusConflict, "not_your_turn"},
	{tictactoe.ErrInvalidMove, http.StatusBadRequest, "invalid_move"},
	{tictactoe.ErrInvalidRole, http.StatusBadRequest, "invalid_role"},
	{multiplayer.ErrNotSeated, http.StatusForbidden, "not_seated"},

	{rps.ErrNameRequired, http.StatusBadRequest, "name_required"},
	{rps.ErrInvalidChoice, http.StatusBadRequest, "invalid_choice"},
	{rps.ErrUnknownPlayer, http.StatusForbidden, "unknown_player"},

	{blackjack.ErrInvalidBet, http.StatusBadRequest, "invalid_bet"},
	{blackjack.ErrHandInProgress, http.StatusConflict, "hand_in_progress"},
	{blackjack.ErrNoHand, http.StatusConflict, "no_hand"},
	{blackjack.ErrDeckEmpty, http.StatusConflict, "deck_empty"},

	{wordle.ErrFinished, http.StatusConflict, "finished"},
	{wordle.ErrInvalid, http.StatusBadRequest, "invalid_guess"},
	{wordle.ErrNotInList, http.StatusBadRequest, "not_in_list"},

	{dino.ErrInvalidJumps, http.StatusBadRequest, "invalid_jumps"},
}

// writeErr answers with the mapping for err, or a logged 500.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errTable {
		if errors.Is(err, m.err) {
			httpx.Error(w, m.status, m.code)
			return
		}
	}
	log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	httpx.Error(w, http.StatusInternalServerError, "server_error")
}
