package service

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// publicPaths bypass the API key check.
var publicPaths = map[string]struct{}{
	healthPath: {},
}

type authErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// requireAPIKey admits a request when no key is configured, when the path is
// public, or when the key arrives as "Authorization: Bearer <key>" or as the
// api_key query parameter. Everything else gets a 401 JSON body.
func requireAPIKey(apiKey string, logger *slog.Logger, next http.Handler) http.Handler {
	if apiKey == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := publicPaths[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}
		if bearerMatches(r.Header.Get("Authorization"), apiKey) || keyMatches(r.URL.Query().Get("api_key"), apiKey) {
			next.ServeHTTP(w, r)
			return
		}
		logger.Warn("rejected unauthenticated request", "method", r.Method, "path", r.URL.Path)
		writeJSON(w, http.StatusUnauthorized, authErrorBody{
			Error:   "unauthorized",
			Message: "Invalid or missing API key",
		}, logger)
	})
}

func bearerMatches(header, apiKey string) bool {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return keyMatches(token, apiKey)
}

func keyMatches(candidate, apiKey string) bool {
	if candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(apiKey)) == 1
}

// handleHealth handles GET /health for liveness checks.
func (t *HTTPTransport) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, t.logger)
}

func writeJSON(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("write JSON response", "error", err)
	}
}
