package roomapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/robalobadob/arcade/internal/hub"
	"github.com/robalobadob/arcade/internal/notify"
	"github.com/robalobadob/arcade/internal/room"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	broker := notify.NewLocal()
	store := room.WithNotifier(room.NewMemoryStore(clockwork.NewRealClock()), broker, nil)
	r := chi.NewRouter()
	r.Mount("/api/rooms", New(store, hub.New(broker, hub.Config{})).Routes())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, _ := http.NewRequest(method, url, strings.NewReader(body))
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(res.Body).Decode(&out)
	return res, out
}

func TestRoomContract(t *testing.T) {
	srv := newServer(t)
	base := srv.URL + "/api/rooms"

	res, created := do(t, http.MethodPost, base, `{"initialState":{"board":[null,null]}}`)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %v", res.StatusCode, created)
	}
	code, _ := created["roomId"].(string)
	if !room.ValidCode(code) || created["version"].(float64) != 1 {
		t.Fatalf("unexpected create body %v", created)
	}
	if gs, _ := created["gameState"].(map[string]any); gs == nil {
		t.Fatalf("gameState missing: %v", created)
	}

	res, got := do(t, http.MethodGet, base+"/"+strings.ToLower(code), "")
	if res.StatusCode != http.StatusOK || got["roomId"] != code || got["updatedAt"] == nil {
		t.Fatalf("get: %d %v", res.StatusCode, got)
	}

	res, upd := do(t, http.MethodPut, base+"/"+code, `{"gameState":{"board":["X",null]},"version":1}`)
	if res.StatusCode != http.StatusOK || upd["version"].(float64) != 2 {
		t.Fatalf("update: %d %v", res.StatusCode, upd)
	}

	res, body := do(t, http.MethodPut, base+"/"+code, `{"gameState":{},"version":1}`)
	if res.StatusCode != http.StatusConflict || body["error"] != "version_conflict" {
		t.Fatalf("stale update: %d %v", res.StatusCode, body)
	}

	res, _ = do(t, http.MethodPut, base+"/"+code, `{"gameState":{"last":"write"}}`)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("unconditional update: %d", res.StatusCode)
	}

	res, _ = do(t, http.MethodDelete, base+"/"+code, "")
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: %d", res.StatusCode)
	}
	res, body = do(t, http.MethodGet, base+"/"+code, "")
	if res.StatusCode != http.StatusNotFound || body["error"] != "not_found" {
		t.Fatalf("get after delete: %d %v", res.StatusCode, body)
	}
}

func TestRoomBadInput(t *testing.T) {
	srv := newServer(t)
	base := srv.URL + "/api/rooms"

	cases := []struct {
		method, path, body string
		status             int
		code               string
	}{
		{http.MethodPost, "", `not json`, http.StatusBadRequest, "bad_json"},
		{http.MethodPost, "", `{}`, http.StatusBadRequest, "invalid_state"},
		{http.MethodPut, "/NOPE00", `{"gameState":{}}`, http.StatusNotFound, "not_found"},
		{http.MethodDelete, "/NOPE00", ``, http.StatusNotFound, "not_found"},
	}
	for _, tc := range cases {
		res, body := do(t, tc.method, base+tc.path, tc.body)
		if res.StatusCode != tc.status || body["error"] != tc.code {
			t.Errorf("%s %s: got %d %v", tc.method, tc.path, res.StatusCode, body)
		}
	}
}

func TestRoomWatch(t *testing.T) {
	srv := newServer(t)
	base := srv.URL + "/api/rooms"
	_, created := do(t, http.MethodPost, base, `{"initialState":{"n":0}}`)
	code := created["roomId"].(string)

	wsURL := "ws" + strings.TrimPrefix(base, "http") + "/" + code + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	var ev notify.Event
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := ws.ReadJSON(&ev); err != nil || ev.Kind != notify.Snapshot || ev.Version != 1 {
		t.Fatalf("snapshot: %+v %v", ev, err)
	}

	do(t, http.MethodPut, base+"/"+code, `{"gameState":{"n":1}}`)
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := ws.ReadJSON(&ev); err != nil || ev.Kind != notify.Updated || ev.Version != 2 {
		t.Fatalf("update event: %+v %v", ev, err)
	}

	if res, _ := do(t, http.MethodGet, base+"/ZZZZZZ/ws", ""); res.StatusCode != http.StatusNotFound {
		t.Fatalf("watch missing room: %d", res.StatusCode)
	}
}
