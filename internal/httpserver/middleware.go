// internal/httpserver/middleware.go
//
// Request middleware: access log, CORS, optional and required auth, and the
// anonymous guest cookie.

package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arcade/internal/httpx"
	"github.com/robalobadob/arcade/internal/identity"
)

const anonCookieName = "arcade_anon"

// authUser is placed into request context by the auth middleware.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ctxUserKey is the context key type for storing authUser.
type ctxUserKey struct{}

func currentUser(r *http.Request) *authUser {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	return me
}

// requestLogger writes one line per request once the handler returns.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		ev := log.Info()
		if status >= 500 {
			ev = log.Error()
		}
		ev.Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// corsFor enables credentialed CORS for a single browser origin.
func corsFor(origin string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{origin},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler
}

// bearerOrCookie extracts a token from the Authorization header or auth cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// authenticate resolves the request's token to a live user.
func (s *Server) authenticate(r *http.Request) (*authUser, error) {
	raw := s.bearerOrCookie(r)
	if raw == "" {
		return nil, identity.ErrInvalidToken
	}
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	// The account may have been removed since the token was issued.
	if _, err := s.users.ByID(r.Context(), claims.ID); err != nil {
		return nil, identity.ErrInvalidToken
	}
	return &authUser{ID: claims.ID, Username: claims.Username}, nil
}

// withOptionalAuth decorates requests with the user when a valid token is
// present. It never rejects; guests are allowed.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if me, err := s.authenticate(r); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, me))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth rejects requests without a valid token.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.bearerOrCookie(r) == "" {
				httpx.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			me, err := s.authenticate(r)
			if err != nil {
				httpx.Error(w, http.StatusUnauthorized, "invalid_token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, me)))
		})
	}
}

// cookie builds a cookie with the deployment's security attributes.
func (s *Server) cookie(name, value string) *http.Cookie {
	secure := s.cfg.Production()
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // required for cross-site cookies
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	}
}

// ensureAnonID returns the guest cookie value, setting a new one if needed.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	c := s.cookie(anonCookieName, id)
	c.Expires = s.clock.Now().Add(180 * 24 * time.Hour)
	http.SetCookie(w, c)
	return id
}

// owner identifies who a game row belongs to.
func (s *Server) owner(w http.ResponseWriter, r *http.Request) identity.Owner {
	if me := currentUser(r); me != nil {
		return identity.Owner{UserID: me.ID}
	}
	return identity.Owner{AnonID: s.ensureAnonID(w, r)}
}

// playerID is the stable key for per-player records (user id or guest id).
func (s *Server) playerID(w http.ResponseWriter, r *http.Request) string {
	o := s.owner(w, r)
	if o.UserID != "" {
		return o.UserID
	}
	return o.AnonID
}
