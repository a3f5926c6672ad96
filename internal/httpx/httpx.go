// internal/httpx/httpx.go
//
// Small JSON helpers shared by the HTTP handlers.
// Every error body has the shape {"error":"<code>"}.

package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

// maxBody bounds request bodies; game states are small.
const maxBody = 1 << 20

var ErrBadJSON = errors.New("bad_json")

// JSONContentType sets a default JSON Content-Type header on all responses.
func JSONContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("write json response")
	}
}

// Error writes {"error": code}.
func Error(w http.ResponseWriter, status int, code string) {
	WriteJSON(w, status, map[string]string{"error": code})
}

// Decode reads a JSON body into v. An empty body leaves v untouched when
// allowEmpty is set.
func Decode(r *http.Request, v any, allowEmpty bool) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return nil
	}
	return ErrBadJSON
}
