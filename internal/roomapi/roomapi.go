// internal/roomapi/roomapi.go
//
// HTTP surface of the generic room store.
//   - POST   /            {"initialState": <json>}          -> 201 room
//   - GET    /{roomId}                                      -> 200 room | 404
//   - PUT    /{roomId}    {"gameState": <json>, "version"?}  -> 200 room | 404 | 409
//   - DELETE /{roomId}                                      -> 204 | 404
//   - GET    /{roomId}/ws                                   -> websocket of room events
//
// Mounted under /api/rooms by the server.

package roomapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arcade/internal/httpx"
	"github.com/robalobadob/arcade/internal/hub"
	"github.com/robalobadob/arcade/internal/notify"
	"github.com/robalobadob/arcade/internal/room"
)

// API serves a room.Store over HTTP. hub may be nil, which disables /ws.
type API struct {
	store room.Store
	hub   *hub.Hub
}

func New(store room.Store, h *hub.Hub) *API {
	return &API{store: store, hub: h}
}

// Routes returns a router to mount under /api/rooms.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", a.handleCreate)
	r.Route("/{roomId}", func(r chi.Router) {
		r.Get("/", a.handleGet)
		r.Put("/", a.handleUpdate)
		r.Delete("/", a.handleDelete)
		r.Get("/ws", a.handleWatch)
	})
	return r
}

type createReq struct {
	InitialState json.RawMessage `json:"initialState"`
}

type updateReq struct {
	GameState json.RawMessage `json:"gameState"`
	Version   int64           `json:"version"`
}

func (a *API) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := httpx.Decode(r, &req, false); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	rm, err := a.store.Create(r.Context(), req.InitialState)
	if err != nil {
		WriteStoreError(w, err)
		return
	}
	log.Info().Str("room", rm.Code).Msg("room created")
	httpx.WriteJSON(w, http.StatusCreated, rm)
}

func (a *API) handleGet(w http.ResponseWriter, r *http.Request) {
	rm, err := a.store.Get(r.Context(), chi.URLParam(r, "roomId"))
	if err != nil {
		WriteStoreError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rm)
}

func (a *API) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateReq
	if err := httpx.Decode(r, &req, false); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	rm, err := a.store.Update(r.Context(), chi.URLParam(r, "roomId"), req.GameState, req.Version)
	if err != nil {
		WriteStoreError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rm)
}

func (a *API) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Delete(r.Context(), chi.URLParam(r, "roomId")); err != nil {
		WriteStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleWatch(w http.ResponseWriter, r *http.Request) {
	if a.hub == nil {
		httpx.Error(w, http.StatusNotImplemented, "watch_disabled")
		return
	}
	rm, err := a.store.Get(r.Context(), chi.URLParam(r, "roomId"))
	if err != nil {
		WriteStoreError(w, err)
		return
	}
	snap := &notify.Event{Kind: notify.Snapshot, Code: rm.Code, Version: rm.Version, State: rm.State, At: rm.UpdatedAt}
	if err := a.hub.Serve(w, r, rm.Code, snap); err != nil {
		// The upgrader has already replied to the client.
		log.Warn().Err(err).Str("room", rm.Code).Msg("room watch")
	}
}

// WriteStoreError maps room errors to HTTP statuses.
func WriteStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, room.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "not_found")
	case errors.Is(err, room.ErrConflict):
		httpx.Error(w, http.StatusConflict, "version_conflict")
	case errors.Is(err, room.ErrInvalidState):
		httpx.Error(w, http.StatusBadRequest, "invalid_state")
	default:
		log.Error().Err(err).Msg("room store")
		httpx.Error(w, http.StatusInternalServerError, "store_error")
	}
}
