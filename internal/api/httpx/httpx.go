package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/baharkarakas/moviecatalog/internal/apperr"
)

// Envelope keys. User, auth and upload routes answer {"message": ...};
// genre and movie routes answer {"error": ...}.
const (
	KeyMessage = "message"
	KeyError   = "error"
)

// Generic texts for the catch-all handlers.
const (
	MsgNotFound = "API route not found"
	MsgInternal = "Something went wrong!"
)

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{KeyMessage: msg})
}

// Fail maps err to a status through its apperr kind and writes it under key.
// Internal failures are logged with their cause; the client only sees
// fallback (or the error's own client message).
func Fail(w http.ResponseWriter, r *http.Request, key string, err error, fallback string) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "err", err)
	}
	WriteJSON(w, apperr.Status(kind), map[string]string{key: apperr.Message(err, fallback)})
}

// DecodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Validation("Invalid request body")
	}
	return nil
}
