// internal/roomsync/poller.go
//
// Polling synchronizer: re-fetches a room on a fixed interval and calls back
// when it changed. Fetch errors are reported and polling carries on, so a
// flaky network only delays updates.

package roomsync

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arcade/internal/room"
)

const (
	// RemoteInterval is the poll period against a remote room service.
	RemoteInterval = 1500 * time.Millisecond
	// LocalInterval is the poll period against an in-process store.
	LocalInterval = time.Second
)

// FetchFunc loads the current room.
type FetchFunc func(ctx context.Context, code string) (*room.Room, error)

// Poller watches one room at a time per Run call.
type Poller struct {
	Fetch    FetchFunc
	Interval time.Duration
	Clock    clockwork.Clock
	// OnError is called for every failed fetch. Defaults to a warning log.
	OnError func(code string, err error)
}

// New polls store.Get every interval.
func New(store room.Store, interval time.Duration, clock clockwork.Clock) *Poller {
	return &Poller{Fetch: store.Get, Interval: interval, Clock: clock}
}

// Run fetches immediately and then on every tick, invoking onChange whenever
// the version or update time differs from the last delivered room. It blocks
// until ctx is cancelled and returns ctx.Err().
func (p *Poller) Run(ctx context.Context, code string, onChange func(*room.Room)) error {
	clock := p.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	interval := p.Interval
	if interval <= 0 {
		interval = RemoteInterval
	}

	var last *room.Room
	poll := func() {
		r, err := p.Fetch(ctx, code)
		if err != nil {
			if ctx.Err() == nil {
				p.reportError(code, err)
			}
			return
		}
		if changed(last, r) {
			last = r
			onChange(r)
		}
	}

	poll()
	t := clock.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.Chan():
			poll()
		}
	}
}

func (p *Poller) reportError(code string, err error) {
	if p.OnError != nil {
		p.OnError(code, err)
		return
	}
	log.Warn().Err(err).Str("room", code).Msg("poll room")
}

func changed(prev, next *room.Room) bool {
	if prev == nil {
		return true
	}
	return prev.Version != next.Version || !prev.UpdatedAt.Equal(next.UpdatedAt)
}
