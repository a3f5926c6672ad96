// internal/httpserver/server.go
//
// HTTP server wiring for the arcade backend.
// Responsibilities:
//   - Router + middleware (request IDs, request log, panic recovery, timeouts, JSON, CORS).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Generic room store under /api/rooms (plus websocket watch).
//   - Game endpoints (optional auth): wordle, daily, blackjack, rock-paper-scissors,
//     tic-tac-toe rooms and dino runs.
//   - Account endpoints: /auth/*, /stats/me, /games/mine.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Optional auth decorates requests with the user when a valid token is
//     present; guests get an anonymous cookie instead.

package httpserver

import (
	"database/sql"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"

	"github.com/robalobadob/arcade/internal/blackjack"
	"github.com/robalobadob/arcade/internal/config"
	"github.com/robalobadob/arcade/internal/daily"
	"github.com/robalobadob/arcade/internal/dino"
	"github.com/robalobadob/arcade/internal/httpx"
	"github.com/robalobadob/arcade/internal/hub"
	"github.com/robalobadob/arcade/internal/identity"
	"github.com/robalobadob/arcade/internal/multiplayer"
	"github.com/robalobadob/arcade/internal/notify"
	"github.com/robalobadob/arcade/internal/room"
	"github.com/robalobadob/arcade/internal/roomapi"
	"github.com/robalobadob/arcade/internal/rps"
	"github.com/robalobadob/arcade/internal/store"
	"github.com/robalobadob/arcade/internal/wordle"
	"github.com/robalobadob/arcade/internal/words"
)

// Deps are the collaborators the server is built from.
type Deps struct {
	Config   config.Config
	Tunables config.Tunables
	DB       *sql.DB
	Words    *words.Lists
	Rooms    room.Store
	Hub      *hub.Hub // nil disables room websockets
	Clock    clockwork.Clock
	// RNG returns a source for card shuffles and CPU choices. Defaults to a
	// randomly seeded PCG per call.
	RNG func() *rand.Rand
}

// Server bundles the router and every game's state.
type Server struct {
	r        *chi.Mux
	cfg      config.Config
	tun      config.Tunables
	words    *words.Lists
	clock    clockwork.Clock
	rng      func() *rand.Rand
	users    *identity.Users
	tokens   *identity.Tokens
	rooms    *roomapi.API
	ttt      *multiplayer.TicTacToe
	rpsRooms *multiplayer.RPS
	daily    *daily.Store
	dinoRuns *dino.Store

	wordleGames *store.Sessions[wordle.Game]
	tables      *store.Sessions[blackjackTable]
	matches     *store.Sessions[rps.Match]
	dinoSeeds   *store.Sessions[dinoTicket]
	dailyGames  *store.Sessions[dailySession]
}

// New constructs a Server, installs middleware and registers routes.
func New(d Deps) *Server {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.RNG == nil {
		d.RNG = func() *rand.Rand { return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) }
	}
	s := &Server{
		r:        chi.NewRouter(),
		cfg:      d.Config,
		tun:      d.Tunables,
		words:    d.Words,
		clock:    d.Clock,
		rng:      d.RNG,
		users:    identity.NewUsers(d.DB, d.Clock),
		tokens:   identity.NewTokens(d.Config.JWTSecret, time.Duration(d.Config.JWTExpiresDays)*24*time.Hour, d.Clock),
		rooms:    roomapi.New(d.Rooms, d.Hub),
		ttt:      multiplayer.NewTicTacToe(d.Rooms, d.Clock),
		rpsRooms: multiplayer.NewRPS(d.Rooms, d.Clock),
		daily:    daily.NewStore(d.DB),
		dinoRuns: dino.NewStore(d.DB),

		wordleGames: store.NewSessions[wordle.Game](d.Clock),
		tables:      store.NewSessions[blackjackTable](d.Clock),
		matches:     store.NewSessions[rps.Match](d.Clock),
		dinoSeeds:   store.NewSessions[dinoTicket](d.Clock),
		dailyGames:  store.NewSessions[dailySession](d.Clock),
	}
	if s.tun.Blackjack.StartingBalance == 0 {
		s.tun = config.DefaultTunables()
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                   // one zerolog line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(httpx.JSONContentType)           // default JSON responses
	s.r.Use(corsFor(s.cfg.ClientOrigin))     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"service": "arcade",
			"endpoints": []string{
				"/health", "/api/rooms", "POST /game/new", "POST /game/guess", "/daily/*",
				"/blackjack/*", "/rps/*", "/tictactoe/rooms", "/dino/*", "/auth/*",
			},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		a, g := s.words.Stats()
		httpx.WriteJSON(w, http.StatusOK, map[string]int{"answers": a, "allowed": g})
	})

	// Generic room store: no auth, the room code is the capability.
	s.r.Mount("/api/rooms", s.rooms.Routes())

	// Games: OPTIONAL AUTH (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		s.mountWordle(r)
		s.mountDaily(r)
		s.mountBlackjack(r)
		s.mountRPS(r)
		s.mountTicTacToe(r)
		s.mountDino(r)
	})

	// Accounts
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// NewHub builds the room websocket hub. Upgrades are accepted from the same
// browser origin the CORS layer allows.
func NewHub(broker notify.Broker, cfg config.Config) *hub.Hub {
	hc := hub.DefaultConfig()
	hc.CheckOrigin = hub.AllowOrigins(cfg.ClientOrigin)
	return hub.New(broker, hc)
}

// Handler exposes the router (used by main and tests).
func (s *Server) Handler() http.Handler { return s.r }

// SessionStores lists the in-memory stores that should be swept for idle
// entries, keyed by a label for logs.
func (s *Server) SessionStores() map[string]room.Expirer {
	return map[string]room.Expirer{
		"wordle":    s.wordleGames,
		"blackjack": s.tables,
		"rps":       s.matches,
		"dino":      s.dinoSeeds,
		"daily":     s.dailyGames,
	}
}

// blackjackOutcomeStatus maps a hand outcome to the games table status.
func blackjackOutcomeStatus(o blackjack.Outcome) string {
	switch o {
	case blackjack.OutcomePlayer, blackjack.OutcomeDealerBust:
		return "won"
	case blackjack.OutcomePush:
		return "push"
	default:
		return "lost"
	}
}
