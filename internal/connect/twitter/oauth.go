// Package twitter implements the Twitter/X OAuth1 three-legged flow. Unlike
// LinkedIn's code flow, the request-token secret has to survive the redirect
// round-trip server-side, so a pending handshake is parked in the injected
// store between login initiation and callback.
package twitter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"
	twitterauth "github.com/dghubble/oauth1/twitter"
	"github.com/pysugar/social-nexus/internal/config"
	"github.com/pysugar/social-nexus/internal/connect"
	"gorm.io/gorm"
)

const (
	userLookupURL = "https://api.twitter.com/2/users/me"

	handshakeTimeout = 15 * time.Second

	// Shown when a callback arrives with an unknown, reused, or expired
	// request token. Kept distinct from other handshake failures so the
	// frontend can tell the user to simply retry.
	invalidSessionMessage = "Invalid OAuth session. Please try again."
)

// Connector drives the Twitter connection handshake.
type Connector struct {
	db          *gorm.DB
	store       connect.HandshakeStore
	cfg         config.Twitter
	frontendURL string

	// Endpoints are fields so tests can point the connector at fakes.
	endpoint   oauth1.Endpoint
	userLookup string
}

// NewConnector creates a Twitter connector using the given pending-handshake
// store.
func NewConnector(gdb *gorm.DB, store connect.HandshakeStore, cfg config.Twitter, frontendURL string) *Connector {
	return &Connector{
		db:          gdb,
		store:       store,
		cfg:         cfg,
		frontendURL: frontendURL,
		endpoint:    twitterauth.AuthorizeEndpoint,
		userLookup:  userLookupURL,
	}
}

func (c *Connector) oauthConfig() *oauth1.Config {
	return &oauth1.Config{
		ConsumerKey:    c.cfg.ConsumerKey,
		ConsumerSecret: c.cfg.ConsumerSecret,
		CallbackURL:    c.cfg.CallbackURL,
		Endpoint:       c.endpoint,
	}
}

func (c *Connector) configured() bool {
	return c.cfg.ConsumerKey != "" && c.cfg.ConsumerSecret != ""
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
