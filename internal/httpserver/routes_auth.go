// internal/httpserver/routes_auth.go
//
// Account routes:
//   - POST /auth/signup, /auth/login, /auth/logout
//   - GET  /auth/me, /stats/me, /games/mine (require auth)
//
// Signing up or logging in moves the caller's guest games to the account.

package httpserver

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arcade/internal/httpx"
	"github.com/robalobadob/arcade/internal/identity"
)

// credentialsReq is the payload for signup and login.
type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// mountAuthRoutes registers authentication and gated account routes.
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)

	s.r.With(s.requireAuth()).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, currentUser(r))
	})

	s.r.With(s.requireAuth()).Get("/stats/me", func(w http.ResponseWriter, r *http.Request) {
		u, err := s.users.ByID(r.Context(), currentUser(r).ID)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"id":          u.ID,
			"gamesPlayed": u.GamesPlayed,
			"wins":        u.Wins,
			"streak":      u.Streak,
		})
	})

	s.r.With(s.requireAuth()).Get("/games/mine", func(w http.ResponseWriter, r *http.Request) {
		rows, err := s.users.RecentGames(r.Context(), currentUser(r).ID, 50)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, rows)
	})
}

// handleSignup creates a user, sets the auth cookie and claims guest history.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if err := httpx.Decode(r, &body, false); err != nil {
		writeErr(w, r, err)
		return
	}
	u, err := s.users.Create(r.Context(), body.Username, body.Password)
	switch {
	case errors.Is(err, identity.ErrUsernameTaken):
		httpx.Error(w, http.StatusConflict, "username_taken")
		return
	case errors.Is(err, identity.ErrInvalidSignup):
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeErr(w, r, err)
		return
	}
	if !s.signIn(w, r, u) {
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"id": u.ID, "username": u.Username, "createdAt": u.CreatedAt})
}

// handleLogin authenticates, sets the cookie and claims guest history.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if err := httpx.Decode(r, &body, false); err != nil {
		writeErr(w, r, err)
		return
	}
	u, err := s.users.Authenticate(r.Context(), body.Username, body.Password)
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	if !s.signIn(w, r, u) {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"id": u.ID, "username": u.Username})
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	c := s.cookie(s.cfg.CookieName, "")
	c.MaxAge = -1
	http.SetCookie(w, c)
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// signIn issues the token cookie and moves guest games to the account.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, u *identity.User) bool {
	tok, exp, err := s.tokens.Sign(u.ID, u.Username)
	if err != nil {
		writeErr(w, r, err)
		return false
	}
	c := s.cookie(s.cfg.CookieName, tok)
	c.Expires = exp
	http.SetCookie(w, c)

	if anon, err := r.Cookie(anonCookieName); err == nil && anon.Value != "" {
		n, err := s.users.ClaimAnonGames(r.Context(), anon.Value, u.ID)
		if err != nil {
			log.Warn().Err(err).Str("user", u.ID).Msg("claim anon games")
		} else if n > 0 {
			log.Info().Str("user", u.ID).Int64("games", n).Msg("claimed guest games")
		}
	}
	return true
}
