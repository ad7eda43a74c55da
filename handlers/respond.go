package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"reelcache/services/metadata"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a JSON error response
func writeJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// statusForError maps service errors to HTTP status codes. Upstream
// outages surface as 502 so clients can distinguish them from local
// failures.
func statusForError(err error) int {
	switch {
	case errors.Is(err, metadata.ErrIDRequired), errors.Is(err, metadata.ErrInvalidMediaType):
		return http.StatusBadRequest
	case errors.Is(err, metadata.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
