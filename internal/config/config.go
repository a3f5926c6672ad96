// internal/config/config.go
//
// Server configuration.
// Responsibilities:
//   - Load an optional .env file (development convenience).
//   - Parse environment variables into Config (caarlos0/env).
//   - Load optional game tunables from a YAML file (GAMES_CONFIG).
//
// Every field has a default, so the server starts with an empty environment.

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/arcade/internal/roomsync"
)

// Config is the process-level configuration read from the environment.
type Config struct {
	Port         string `env:"PORT" envDefault:"5175"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	Env          string `env:"NODE_ENV" envDefault:"development"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	JWTSecret      string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"arcade_token"`

	DBPath    string `env:"DB_PATH" envDefault:"./data/app.db"`
	DailySalt string `env:"DAILY_SALT" envDefault:"local_dev_salt"`

	// Optional wordle word list overrides; the embedded lists are used otherwise.
	AnswersFile string `env:"WORDS_ANSWERS_FILE"`
	AllowedFile string `env:"WORDS_ALLOWED_FILE"`

	// RoomStore selects the room backend: memory | sqlite | postgres.
	RoomStore     string        `env:"ROOM_STORE" envDefault:"memory"`
	PostgresDSN   string        `env:"POSTGRES_DSN"`
	NATSURL       string        `env:"NATS_URL"`
	RoomTTL       time.Duration `env:"ROOM_TTL" envDefault:"24h"`
	SweepInterval time.Duration `env:"ROOM_SWEEP_INTERVAL" envDefault:"10m"`

	TunablesFile string `env:"GAMES_CONFIG"`
}

// Production reports whether cookies should be Secure/SameSite=None.
func (c Config) Production() bool { return c.Env == "production" }

// Load reads .env (if present) and parses the environment into a Config.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.RoomStore {
	case "memory", "sqlite":
	case "postgres":
		if cfg.PostgresDSN == "" {
			return Config{}, errors.New("config: ROOM_STORE=postgres requires POSTGRES_DSN")
		}
	default:
		return Config{}, fmt.Errorf("config: unknown ROOM_STORE %q", cfg.RoomStore)
	}
	return cfg, nil
}

// Tunables are per-game knobs that rarely change between deployments.
type Tunables struct {
	Blackjack struct {
		StartingBalance int `yaml:"starting_balance"`
		DealerStandsOn  int `yaml:"dealer_stands_on"`
	} `yaml:"blackjack"`
	Dino struct {
		MaxFrames int `yaml:"max_frames"`
	} `yaml:"dino"`
	Rooms struct {
		RemotePollInterval time.Duration `yaml:"remote_poll_interval"`
		LocalPollInterval  time.Duration `yaml:"local_poll_interval"`
	} `yaml:"rooms"`
}

// DefaultTunables mirrors the values the games were tuned with.
func DefaultTunables() Tunables {
	var t Tunables
	t.Blackjack.StartingBalance = 500
	t.Blackjack.DealerStandsOn = 17
	t.Dino.MaxFrames = 60 * 60 * 30
	t.Rooms.RemotePollInterval = roomsync.RemoteInterval
	t.Rooms.LocalPollInterval = roomsync.LocalInterval
	return t
}

// LoadTunables overlays the YAML file at path on top of DefaultTunables.
// An empty path returns the defaults.
func LoadTunables(path string) (Tunables, error) {
	t := DefaultTunables()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tunables: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse tunables: %w", err)
	}
	return t, nil
}
