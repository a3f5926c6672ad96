// internal/notify/nats.go
//
// NATS-backed broker so several server instances can share room events.

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// SubjectPrefix is prepended to the room code to form the NATS subject.
const SubjectPrefix = "arcade.rooms."

// NATS is a Broker backed by core NATS publish/subscribe.
type NATS struct {
	nc *nats.Conn
}

// NewNATS connects to url with reconnect handlers that log through zerolog.
func NewNATS(url string) (*NATS, error) {
	opts := []nats.Option{
		nats.Name("arcade-rooms"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATS{nc: nc}, nil
}

// Subject returns the subject used for code.
func Subject(code string) string { return SubjectPrefix + code }

func (n *NATS) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := n.nc.Publish(Subject(ev.Code), data); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Code, err)
	}
	return nil
}

func (n *NATS) Subscribe(code string, fn func(Event)) (func(), error) {
	sub, err := n.nc.Subscribe(Subject(code), func(m *nats.Msg) {
		var ev Event
		if err := json.Unmarshal(m.Data, &ev); err != nil {
			log.Warn().Err(err).Str("subject", m.Subject).Msg("drop malformed room event")
			return
		}
		fn(ev)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", code, err)
	}
	return func() {
		if err := sub.Unsubscribe(); err != nil && err != nats.ErrConnectionClosed {
			log.Debug().Err(err).Str("room", code).Msg("unsubscribe")
		}
	}, nil
}

// Close drains pending messages and closes the connection.
func (n *NATS) Close() error {
	return n.nc.Drain()
}
