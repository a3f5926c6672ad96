// internal/roomclient/client.go
//
// HTTP client for the room API, implementing room.Store so that game
// sessions can run against a remote room service exactly as they run
// against a local store.
//
// Status mapping:
//   - 404 -> room.ErrNotFound
//   - 409 -> room.ErrConflict
//   - 400 "invalid_state" -> room.ErrInvalidState

package roomclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/robalobadob/arcade/internal/room"
)

const defaultTimeout = 10 * time.Second

// Client talks to a server exposing /api/rooms.
type Client struct {
	base string
	http *http.Client
}

var _ room.Store = (*Client)(nil)

// New returns a client for baseURL (for example "http://localhost:5175").
// A nil hc gets a client with a 10s timeout.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

type createReq struct {
	InitialState json.RawMessage `json:"initialState"`
}

type updateReq struct {
	GameState json.RawMessage `json:"gameState"`
	Version   int64           `json:"version,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) Create(ctx context.Context, state json.RawMessage) (*room.Room, error) {
	var r room.Room
	if err := c.do(ctx, http.MethodPost, "", createReq{InitialState: state}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) Get(ctx context.Context, code string) (*room.Room, error) {
	var r room.Room
	if err := c.do(ctx, http.MethodGet, code, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) Update(ctx context.Context, code string, state json.RawMessage, expectedVersion int64) (*room.Room, error) {
	var r room.Room
	if err := c.do(ctx, http.MethodPut, code, updateReq{GameState: state, Version: expectedVersion}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) Delete(ctx context.Context, code string) error {
	return c.do(ctx, http.MethodDelete, code, nil, nil)
}

func (c *Client) do(ctx context.Context, method, code string, in, out any) error {
	u := c.base + "/api/rooms"
	if code != "" {
		u += "/" + url.PathEscape(room.NormalizeCode(code))
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("roomclient: encode: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("roomclient: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("roomclient: %s %s: %w", method, u, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		var eb errorBody
		_ = json.NewDecoder(io.LimitReader(res.Body, 4096)).Decode(&eb)
		switch {
		case res.StatusCode == http.StatusNotFound:
			return room.ErrNotFound
		case res.StatusCode == http.StatusConflict:
			return room.ErrConflict
		case res.StatusCode == http.StatusBadRequest && eb.Error == "invalid_state":
			return room.ErrInvalidState
		}
		return fmt.Errorf("roomclient: %s %s: status %d %s", method, u, res.StatusCode, eb.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("roomclient: decode: %w", err)
	}
	return nil
}
