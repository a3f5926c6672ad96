// internal/httpserver/routes_blackjack.go
//
// Blackjack against the house:
//   - POST /blackjack/new  {bet, gameId?} → open a table (or reuse one) and deal
//   - POST /blackjack/hit  {gameId}       → draw a card
//   - POST /blackjack/stay {gameId}       → dealer plays, hand settles
//
// The balance carries over between hands at the same table. Each hand is a
// row in the games table so it shows up in the player's history.

package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arcade/internal/blackjack"
	"github.com/robalobadob/arcade/internal/httpx"
	"github.com/robalobadob/arcade/internal/store"
)

// blackjackTable is a table plus the games row of the current hand.
type blackjackTable struct {
	Game   *blackjack.Game
	HandID string
}

func (s *Server) mountBlackjack(r chi.Router) {
	r.Route("/blackjack", func(r chi.Router) {
		r.Post("/new", s.handleBlackjackNew)
		r.Post("/hit", s.handleBlackjackHit)
		r.Post("/stay", s.handleBlackjackStay)
	})
}

type blackjackNewReq struct {
	Bet    int    `json:"bet"`
	GameID string `json:"gameId"`
}

type tableReq struct {
	GameID string `json:"gameId"`
}

type blackjackRes struct {
	blackjack.View
	Card blackjack.Card `json:"card,omitempty"`
}

// handleBlackjackNew deals a hand. Without a known gameId a fresh table is
// opened with the configured starting balance.
func (s *Server) handleBlackjackNew(w http.ResponseWriter, r *http.Request) {
	var req blackjackNewReq
	if err := httpx.Decode(r, &req, false); err != nil {
		writeErr(w, r, err)
		return
	}

	handID := uuid.NewString()
	deal := func(t *blackjackTable) error {
		if err := t.Game.Deal(req.Bet, s.rng()); err != nil {
			return err
		}
		t.HandID = handID
		return nil
	}

	var view blackjack.View
	err := s.tables.Update(r.Context(), req.GameID, func(t *blackjackTable) error {
		if err := deal(t); err != nil {
			return err
		}
		view = t.Game.View()
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		t := &blackjackTable{Game: blackjack.New(uuid.NewString(),
			s.tun.Blackjack.StartingBalance, s.tun.Blackjack.DealerStandsOn)}
		if err = deal(t); err == nil {
			view = t.Game.View()
			err = s.tables.Save(r.Context(), t.Game.ID, t)
		}
	}
	if err != nil {
		writeErr(w, r, err)
		return
	}

	if err := s.users.StartGame(r.Context(), handID, "blackjack", s.owner(w, r)); err != nil {
		log.Warn().Err(err).Str("gameId", handID).Msg("insert blackjack row")
	}
	httpx.WriteJSON(w, http.StatusOK, blackjackRes{View: view})
}

// handleBlackjackHit draws a card for the player.
func (s *Server) handleBlackjackHit(w http.ResponseWriter, r *http.Request) {
	s.playHand(w, r, func(g *blackjack.Game) (blackjack.Card, error) {
		return g.Hit()
	})
}

// handleBlackjackStay lets the dealer play out the hand.
func (s *Server) handleBlackjackStay(w http.ResponseWriter, r *http.Request) {
	s.playHand(w, r, func(g *blackjack.Game) (blackjack.Card, error) {
		_, err := g.Stay()
		return "", err
	})
}

// playHand applies act to the caller's table and closes the hand's row once
// it settles.
func (s *Server) playHand(w http.ResponseWriter, r *http.Request, act func(*blackjack.Game) (blackjack.Card, error)) {
	var req tableReq
	if err := httpx.Decode(r, &req, false); err != nil {
		writeErr(w, r, err)
		return
	}
	var (
		res     blackjackRes
		handID  string
		settled bool
	)
	err := s.tables.Update(r.Context(), req.GameID, func(t *blackjackTable) error {
		card, err := act(t.Game)
		if err != nil {
			return err
		}
		res = blackjackRes{View: t.Game.View(), Card: card}
		handID, settled = t.HandID, !t.Game.InHand
		return nil
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if settled {
		status := blackjackOutcomeStatus(res.Outcome)
		if err := s.users.FinishGame(r.Context(), handID, s.owner(w, r), status); err != nil {
			log.Warn().Err(err).Str("gameId", handID).Msg("finish blackjack row")
		}
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}
