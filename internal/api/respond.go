// Package api holds the caller-facing handlers for connection status,
// disconnect, and publishing, shared across providers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/pysugar/social-nexus/internal/db/models"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteDetail writes an error payload in the {"detail": ...} shape the
// frontend expects.
func WriteDetail(w http.ResponseWriter, status int, detail string) {
	WriteJSON(w, status, map[string]string{"detail": detail})
}

func displayName(provider string) string {
	switch provider {
	case models.ProviderLinkedIn:
		return "LinkedIn"
	case models.ProviderTwitter:
		return "Twitter"
	default:
		return provider
	}
}
