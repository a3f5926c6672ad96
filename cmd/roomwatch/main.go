// cmd/roomwatch/main.go
//
// roomwatch polls one room and logs every change. The room is read from an
// arcade server, or straight from its SQLite database with -db.
//
//	roomwatch [-server URL | -db PATH] [-interval 1.5s] [-state] ROOMCODE
//
// ARCADE_URL, ROOMWATCH_DB and ROOMWATCH_INTERVAL provide defaults for the
// flags. Without an interval the poll period comes from the game tunables
// (GAMES_CONFIG): rooms.remote_poll_interval for a server,
// rooms.local_poll_interval for a database.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arcade/internal/config"
	"github.com/robalobadob/arcade/internal/database"
	"github.com/robalobadob/arcade/internal/room"
	"github.com/robalobadob/arcade/internal/roomclient"
	"github.com/robalobadob/arcade/internal/roomsync"
)

type watchConfig struct {
	Server       string        `env:"ARCADE_URL" envDefault:"http://localhost:5175"`
	DBPath       string        `env:"ROOMWATCH_DB"`
	Interval     time.Duration `env:"ROOMWATCH_INTERVAL"`
	TunablesFile string        `env:"GAMES_CONFIG"`
}

// pollInterval picks the explicit interval or the tunable for the source.
func (c watchConfig) pollInterval(tun config.Tunables) time.Duration {
	switch {
	case c.Interval > 0:
		return c.Interval
	case c.DBPath != "":
		return tun.Rooms.LocalPollInterval
	default:
		return tun.Rooms.RemotePollInterval
	}
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	var cfg watchConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatal().Err(err).Msg("parse env")
	}
	flag.StringVar(&cfg.Server, "server", cfg.Server, "arcade server base URL")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "read rooms from this SQLite database instead of a server")
	flag.DurationVar(&cfg.Interval, "interval", cfg.Interval, "poll interval (0 uses the game tunables)")
	showState := flag.Bool("state", false, "log the full game state on every change")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] ROOMCODE\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 || !room.ValidCode(room.NormalizeCode(flag.Arg(0))) {
		flag.Usage()
		os.Exit(2)
	}
	code := room.NormalizeCode(flag.Arg(0))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tun, err := config.LoadTunables(cfg.TunablesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("load tunables")
	}
	interval := cfg.pollInterval(tun)

	var (
		store  room.Store = roomclient.New(cfg.Server, nil)
		source            = cfg.Server
	)
	if cfg.DBPath != "" {
		db, err := database.Open(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("db", cfg.DBPath).Msg("open database")
		}
		defer db.Close()
		store, source = room.NewSQLiteStore(db, nil), cfg.DBPath
	}

	p := roomsync.New(store, interval, nil)
	log.Info().Str("source", source).Str("room", code).Dur("interval", interval).Msg("watching")

	_ = p.Run(ctx, code, func(r *room.Room) {
		ev := log.Info().Str("room", r.Code).Int64("version", r.Version).Time("updatedAt", r.UpdatedAt)
		if *showState {
			ev = ev.RawJSON("gameState", r.State)
		}
		ev.Msg("room changed")
	})
	log.Info().Msg("stopped")
}
