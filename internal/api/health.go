package api

import (
	"net/http"

	"github.com/pysugar/social-nexus/internal/version"
)

// HealthHandler reports liveness and build info.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{
			"message": "social-nexus running",
			"version": version.Version,
		})
	}
}
