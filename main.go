// main.go
//
// Entry point for the arcade server.
//   - Loads configuration (.env + environment, optional tunables YAML).
//   - Opens SQLite and applies migrations.
//   - Picks the room backend and change broker.
//   - Starts idle sweepers for rooms and in-memory game sessions.
//   - Serves HTTP until interrupted.

package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arcade/assets"
	"github.com/robalobadob/arcade/internal/config"
	"github.com/robalobadob/arcade/internal/database"
	"github.com/robalobadob/arcade/internal/httpserver"
	"github.com/robalobadob/arcade/internal/notify"
	"github.com/robalobadob/arcade/internal/room"
	"github.com/robalobadob/arcade/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	tun, err := config.LoadTunables(cfg.TunablesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("load game tunables")
	}

	lists, err := words.Load(cfg.AnswersFile, cfg.AllowedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}

	db, err := database.OpenMigrated(cfg.DBPath, assets.Migrations())
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	rooms, closeRooms, err := openRoomStore(ctx, cfg, db, clock)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.RoomStore).Msg("open room store")
	}
	defer closeRooms()

	broker, err := openBroker(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect broker")
	}
	defer broker.Close()

	notifying := room.WithNotifier(rooms, broker, clock)
	srv := httpserver.New(httpserver.Deps{
		Config:   cfg,
		Tunables: tun,
		DB:       db,
		Words:    lists,
		Rooms:    notifying,
		Hub:      httpserver.NewHub(broker, cfg),
		Clock:    clock,
	})

	sweepers := []*room.Sweeper{{Name: "rooms", Store: notifying, TTL: cfg.RoomTTL, Interval: cfg.SweepInterval, Clock: clock}}
	for name, st := range srv.SessionStores() {
		sweepers = append(sweepers, &room.Sweeper{Name: name, Store: st, TTL: 2 * time.Hour, Interval: cfg.SweepInterval, Clock: clock})
	}
	for _, sw := range sweepers {
		go sw.Run(ctx)
	}

	httpSrv := &http.Server{Addr: ":" + cfg.Port, Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("port", cfg.Port).Str("rooms", cfg.RoomStore).Bool("nats", cfg.NATSURL != "").Msg("starting arcade server")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

// roomBackend is a Store that can also expire idle rooms.
type roomBackend interface {
	room.Store
	room.Expirer
}

// openRoomStore returns the configured room backend and its closer.
func openRoomStore(ctx context.Context, cfg config.Config, db *sql.DB, clock clockwork.Clock) (roomBackend, func(), error) {
	switch cfg.RoomStore {
	case "sqlite":
		return room.NewSQLiteStore(db, clock), func() {}, nil
	case "postgres":
		pg, err := room.NewPostgresStore(ctx, cfg.PostgresDSN, clock)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	default:
		return room.NewMemoryStore(clock), func() {}, nil
	}
}

// openBroker connects to NATS when configured, else stays in-process.
func openBroker(cfg config.Config) (notify.Broker, error) {
	if cfg.NATSURL == "" {
		return notify.NewLocal(), nil
	}
	nc, err := notify.NewNATS(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	return nc, nil
}
