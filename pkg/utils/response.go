package utils

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/pkg/logger"
)

// WriteJSON serializes payload as the response body with the given status.
// Encoding failures are logged rather than surfaced; by the time they can
// happen the status line has already been written.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error().Err(err).Int("status", status).Msg("failed to encode response body")
	}
}

// WriteError writes a {"error": message} body with the given status.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}
