package api

import (
	"errors"
	"net/http"

	"github.com/pysugar/social-nexus/internal/auth"
	"github.com/pysugar/social-nexus/internal/db"
	"github.com/pysugar/social-nexus/internal/db/models"
	"gorm.io/gorm"
)

// StatusHandler reports whether the requesting user has the provider
// connected, with the identity fields each provider exposes.
func StatusHandler(gdb *gorm.DB, provider string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cred, err := db.GetCredential(gdb, auth.UserID(r.Context()), provider)
		if errors.Is(err, db.ErrNotConnected) {
			WriteJSON(w, http.StatusOK, map[string]any{"connected": false})
			return
		}
		if err != nil {
			WriteDetail(w, http.StatusInternalServerError, "Failed to read connection status")
			return
		}

		switch provider {
		case models.ProviderTwitter:
			WriteJSON(w, http.StatusOK, map[string]any{
				"connected":   true,
				"screen_name": cred.ScreenName,
			})
		default:
			WriteJSON(w, http.StatusOK, map[string]any{
				"connected":   true,
				"linkedin_id": cred.ProviderAccountID,
			})
		}
	}
}

// DisconnectHandler removes the stored credential for the provider.
// Disconnecting with nothing stored is a reported not-found, never a crash.
func DisconnectHandler(gdb *gorm.DB, provider string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := db.DeleteCredential(gdb, auth.UserID(r.Context()), provider)
		if errors.Is(err, db.ErrNotConnected) {
			WriteDetail(w, http.StatusNotFound,
				"No "+displayName(provider)+" account connected.")
			return
		}
		if err != nil {
			WriteDetail(w, http.StatusInternalServerError, "Failed to disconnect")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{
			"message": displayName(provider) + " account disconnected.",
		})
	}
}
