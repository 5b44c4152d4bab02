// Package linkedin implements the LinkedIn OAuth2 authorization-code flow.
// No server-side handshake state is kept: the authorization code carries the
// provider session, and the requesting user's identity rides the signed
// state parameter.
package linkedin

import (
	"net/http"
	"time"

	"github.com/pysugar/social-nexus/internal/auth"
	"github.com/pysugar/social-nexus/internal/config"
	"golang.org/x/oauth2"
	linkedinoauth "golang.org/x/oauth2/linkedin"
	"gorm.io/gorm"
)

// Scopes requested from LinkedIn. w_member_social is what allows posting on
// the member's behalf.
var Scopes = []string{"openid", "profile", "w_member_social"}

const (
	userinfoURL = "https://api.linkedin.com/v2/userinfo"

	handshakeTimeout = 15 * time.Second
)

// Error codes delivered to the frontend through the redirect channel.
const (
	errInvalidState = "invalid_state"
	errTokenFailed  = "token_failed"
	errNoUserID     = "no_user_id"
	errSaveFailed   = "save_failed"
)

// Connector drives the LinkedIn connection handshake and materializes a
// stored credential on success.
type Connector struct {
	db          *gorm.DB
	issuer      *auth.Issuer
	cfg         config.LinkedIn
	frontendURL string

	// Endpoints are fields so tests can point the connector at fakes.
	endpoint oauth2.Endpoint
	userinfo string
}

// NewConnector creates a LinkedIn connector backed by the given store.
func NewConnector(gdb *gorm.DB, issuer *auth.Issuer, cfg config.LinkedIn, frontendURL string) *Connector {
	return &Connector{
		db:          gdb,
		issuer:      issuer,
		cfg:         cfg,
		frontendURL: frontendURL,
		endpoint:    linkedinoauth.Endpoint,
		userinfo:    userinfoURL,
	}
}

func (c *Connector) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		RedirectURL:  c.cfg.RedirectURL,
		Scopes:       Scopes,
		Endpoint:     c.endpoint,
	}
}

func (c *Connector) configured() bool {
	return c.cfg.ClientID != "" && c.cfg.ClientSecret != ""
}

func newAPIClient() *http.Client {
	return &http.Client{Timeout: handshakeTimeout}
}
