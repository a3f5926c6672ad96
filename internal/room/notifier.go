package room

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arcade/internal/notify"
)

// Notifying wraps a Store and publishes a notify.Event after every
// successful write. Publish failures are logged; the write still stands.
type Notifying struct {
	Store
	broker notify.Broker
	clock  clockwork.Clock
}

// CodeExpirer is an Expirer that reports which rooms it removed.
type CodeExpirer interface {
	ExpireIdle(ctx context.Context, before time.Time) ([]string, error)
}

// WithNotifier decorates s so writes are announced on b. A nil clock uses
// the real one.
func WithNotifier(s Store, b notify.Broker, clock clockwork.Clock) *Notifying {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Notifying{Store: s, broker: b, clock: clock}
}

func (n *Notifying) Create(ctx context.Context, state json.RawMessage) (*Room, error) {
	r, err := n.Store.Create(ctx, state)
	if err == nil {
		n.publish(ctx, notify.Created, r)
	}
	return r, err
}

func (n *Notifying) Update(ctx context.Context, code string, state json.RawMessage, expectedVersion int64) (*Room, error) {
	r, err := n.Store.Update(ctx, code, state, expectedVersion)
	if err == nil {
		n.publish(ctx, notify.Updated, r)
	}
	return r, err
}

func (n *Notifying) Delete(ctx context.Context, code string) error {
	err := n.Store.Delete(ctx, code)
	if err == nil {
		n.publishDeleted(ctx, NormalizeCode(code))
	}
	return err
}

// DeleteIdle forwards to the wrapped store when it supports expiry. Stores
// that report removed codes get a deleted event per room.
func (n *Notifying) DeleteIdle(ctx context.Context, before time.Time) (int, error) {
	if e, ok := n.Store.(CodeExpirer); ok {
		codes, err := e.ExpireIdle(ctx, before)
		for _, code := range codes {
			n.publishDeleted(ctx, code)
		}
		return len(codes), err
	}
	if e, ok := n.Store.(Expirer); ok {
		return e.DeleteIdle(ctx, before)
	}
	return 0, errors.New("room store does not support expiry")
}

func (n *Notifying) publishDeleted(ctx context.Context, code string) {
	n.publish(ctx, notify.Deleted, &Room{Code: code, UpdatedAt: n.clock.Now().UTC()})
}

func (n *Notifying) publish(ctx context.Context, kind notify.Kind, r *Room) {
	ev := notify.Event{Kind: kind, Code: r.Code, Version: r.Version, State: r.State, At: r.UpdatedAt}
	if err := n.broker.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("room", r.Code).Str("event", string(kind)).Msg("publish room event")
	}
}
