package auth

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// DefaultHeader is used when no header name is configured.
const DefaultHeader = "X-API-Key"

// APIKey returns middleware that enforces API key authentication on every
// request passed to next.
//
// Behaviour:
//   - If key == "", all requests are allowed (pass-through).
//   - Otherwise the key is read from header, or from the api_key query
//     parameter for WebSocket clients that cannot set headers.
//   - A missing, empty, or incorrect key gets 401 with a JSON error body.
func APIKey(header, key string, next http.Handler) http.Handler {
	if key == "" {
		return next
	}
	if header == "" {
		header = DefaultHeader
	}
	want := []byte(key)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := strings.TrimSpace(r.Header.Get(header))
		if got == "" {
			got = r.URL.Query().Get("api_key")
		}
		if got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			slog.Warn("auth: rejected request", "path", r.URL.Path, "remote", r.RemoteAddr)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid api key"}) //nolint:errcheck
			return
		}
		next.ServeHTTP(w, r)
	})
}
