package twitter

import (
	"log"
	"net/http"

	"github.com/pysugar/social-nexus/internal/auth"
	"github.com/pysugar/social-nexus/internal/connect"
)

// LoginHandler requests a temporary request token from Twitter, parks the
// token secret in the pending-handshake store, and returns the authorization
// URL. Only the public request token travels through the redirect.
func (c *Connector) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !c.configured() {
			writeError(w, http.StatusInternalServerError, "missing Twitter consumer credentials")
			return
		}

		conf := c.oauthConfig()
		requestToken, requestSecret, err := conf.RequestToken()
		if err != nil {
			log.Printf("❌ Twitter request token failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Twitter login failed: "+err.Error())
			return
		}

		c.store.Put(requestToken, connect.Handshake{
			Secret: requestSecret,
			UserID: auth.UserID(r.Context()),
		})

		authURL, err := conf.AuthorizationURL(requestToken)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Twitter login failed: "+err.Error())
			return
		}
		writeJSON(w, map[string]string{"auth_url": authURL.String()})
	}
}
