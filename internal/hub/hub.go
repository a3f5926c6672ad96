// internal/hub/hub.go
//
// Websocket fan-out of room events.
//
// One broker subscription is held per watched room code, opened with the
// first connection and cancelled with the last. Each connection has a
// buffered send channel drained by its write pump; a connection that cannot
// keep up is dropped rather than slowing the others down.

package hub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arcade/internal/notify"
)

// Config holds websocket tunables.
type Config struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBuffer      int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConfig returns sensible websocket settings.
func DefaultConfig() Config {
	return Config{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBuffer:      64,
	}
}

// AllowOrigins returns a CheckOrigin that accepts requests without an
// Origin header, same-host origins and any of origins. "*" accepts all.
func AllowOrigins(origins ...string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range origins {
			if o == "*" || strings.EqualFold(strings.TrimSuffix(o, "/"), origin) {
				return true
			}
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// Hub tracks watchers per room code.
type Hub struct {
	broker   notify.Broker
	upgrader websocket.Upgrader
	cfg      Config

	mu    sync.Mutex
	rooms map[string]*watchers
}

type watchers struct {
	conns  map[*conn]struct{}
	cancel func()
}

type conn struct {
	id   string
	code string
	ws   *websocket.Conn
	send chan []byte
	hub  *Hub
	once sync.Once
}

// New returns a Hub fed by broker. Zero fields in cfg take their defaults.
func New(broker notify.Broker, cfg Config) *Hub {
	def := DefaultConfig()
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = def.MaxMessageSize
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = def.SendBuffer
	}
	return &Hub{
		broker: broker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     cfg.CheckOrigin,
		},
		cfg:   cfg,
		rooms: make(map[string]*watchers),
	}
}

// Serve upgrades the request and streams events for code. snapshot, when
// non-nil, is sent first.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, code string, snapshot *notify.Event) error {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("upgrade: %w", err)
	}
	c := &conn{
		id:   uuid.NewString(),
		code: code,
		ws:   ws,
		send: make(chan []byte, h.cfg.SendBuffer),
		hub:  h,
	}
	if snapshot != nil {
		if b, err := json.Marshal(snapshot); err == nil {
			c.send <- b
		}
	}
	if err := h.register(c); err != nil {
		ws.Close()
		return err
	}

	go c.writePump()
	go c.readPump()

	log.Info().Str("connection_id", c.id).Str("room", code).Msg("room watcher connected")
	return nil
}

// Watchers reports how many connections are open for code.
func (h *Hub) Watchers(code string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if w := h.rooms[code]; w != nil {
		return len(w.conns)
	}
	return 0
}

func (h *Hub) register(c *conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	w := h.rooms[c.code]
	if w == nil {
		code := c.code
		cancel, err := h.broker.Subscribe(code, func(ev notify.Event) { h.broadcast(code, ev) })
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", code, err)
		}
		w = &watchers{conns: make(map[*conn]struct{}), cancel: cancel}
		h.rooms[code] = w
	}
	w.conns[c] = struct{}{}
	return nil
}

func (h *Hub) unregister(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	w := h.rooms[c.code]
	if w == nil {
		return
	}
	if _, ok := w.conns[c]; !ok {
		return
	}
	delete(w.conns, c)
	close(c.send)
	if len(w.conns) == 0 {
		w.cancel()
		delete(h.rooms, c.code)
	}
	log.Info().Str("connection_id", c.id).Str("room", c.code).Msg("room watcher disconnected")
}

func (h *Hub) broadcast(code string, ev notify.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("marshal room event")
		return
	}

	h.mu.Lock()
	var slow []*conn
	if w := h.rooms[code]; w != nil {
		for c := range w.conns {
			select {
			case c.send <- data:
			default:
				slow = append(slow, c)
			}
		}
	}
	h.mu.Unlock()

	for _, c := range slow {
		log.Warn().Str("connection_id", c.id).Msg("send buffer full, closing watcher")
		c.close()
	}
}

func (c *conn) close() {
	c.once.Do(func() {
		c.hub.unregister(c)
		c.ws.Close()
	})
}

func (c *conn) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug().Err(err).Str("connection_id", c.id).Msg("write to watcher")
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only exists to process pongs and notice the client going away.
func (c *conn) readPump() {
	defer c.close()
	c.ws.SetReadLimit(c.hub.cfg.MaxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.hub.cfg.ReadTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.hub.cfg.ReadTimeout))
	})
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("connection_id", c.id).Msg("watcher closed")
			}
			return
		}
	}
}
