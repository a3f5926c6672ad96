package room

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Sweeper periodically deletes entries that have been idle longer than TTL.
// Name labels the log lines and defaults to "rooms".
type Sweeper struct {
	Name     string
	Store    Expirer
	TTL      time.Duration
	Interval time.Duration
	Clock    clockwork.Clock
}

// Run sweeps until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	clock := s.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	t := clock.NewTicker(s.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.Chan():
			s.SweepOnce(ctx, clock.Now())
		}
	}
}

// SweepOnce deletes entries idle since now-TTL and returns how many went.
func (s *Sweeper) SweepOnce(ctx context.Context, now time.Time) int {
	name := s.Name
	if name == "" {
		name = "rooms"
	}
	n, err := s.Store.DeleteIdle(ctx, now.Add(-s.TTL))
	if err != nil {
		log.Warn().Err(err).Str("store", name).Msg("sweep idle")
		return 0
	}
	if n > 0 {
		log.Info().Str("store", name).Int("removed", n).Dur("ttl", s.TTL).Msg("swept idle")
	}
	return n
}
