// internal/notify/notify.go
//
// Room change notifications.
// A Broker fans out events about one room code to every subscriber of that
// code. The local broker works inside one process; the NATS broker lets several
// server instances share a room store and still push updates to their
// websocket clients.

package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Kind is the type of change.
type Kind string

const (
	Created  Kind = "created"
	Updated  Kind = "updated"
	Deleted  Kind = "deleted"
	// Snapshot is the current room, sent to a watcher when it connects.
	Snapshot Kind = "snapshot"
)

// Event describes a change to one room.
type Event struct {
	Kind    Kind            `json:"type"`
	Code    string          `json:"roomId"`
	Version int64           `json:"version,omitempty"`
	State   json.RawMessage `json:"gameState,omitempty"`
	At      time.Time       `json:"at"`
}

// Broker publishes and subscribes to room events.
type Broker interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe registers fn for events on code. The returned func removes it.
	Subscribe(code string, fn func(Event)) (cancel func(), err error)
	Close() error
}

// Local is an in-process Broker.
type Local struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]func(Event)
}

// NewLocal returns an empty in-process broker.
func NewLocal() *Local {
	return &Local{subs: make(map[string]map[int]func(Event))}
}

func (l *Local) Publish(ctx context.Context, ev Event) error {
	l.mu.RLock()
	fns := make([]func(Event), 0, len(l.subs[ev.Code]))
	for _, fn := range l.subs[ev.Code] {
		fns = append(fns, fn)
	}
	l.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
	return nil
}

func (l *Local) Subscribe(code string, fn func(Event)) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.next
	l.next++
	if l.subs[code] == nil {
		l.subs[code] = make(map[int]func(Event))
	}
	l.subs[code][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.subs[code], id)
			if len(l.subs[code]) == 0 {
				delete(l.subs, code)
			}
		})
	}, nil
}

func (l *Local) Close() error { return nil }

// Subscribers reports how many callbacks are registered for code.
func (l *Local) Subscribers(code string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.subs[code])
}
