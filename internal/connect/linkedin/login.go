package linkedin

import (
	"encoding/json"
	"net/http"

	"github.com/pysugar/social-nexus/internal/auth"
	"golang.org/x/oauth2"
)

// LoginHandler returns the LinkedIn authorization URL for the requesting
// user. Nothing is persisted and LinkedIn is not contacted here; prompt=login
// forces re-consent so switching accounts works.
func (c *Connector) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !c.configured() {
			writeError(w, http.StatusInternalServerError, "missing LinkedIn client credentials")
			return
		}

		state, err := c.issuer.IssueState(auth.UserID(r.Context()))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to create login state")
			return
		}

		url := c.oauthConfig().AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "login"))
		writeJSON(w, map[string]string{"auth_url": url})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
