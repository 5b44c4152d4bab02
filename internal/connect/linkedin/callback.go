package linkedin

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/pysugar/social-nexus/internal/connect"
	"github.com/pysugar/social-nexus/internal/db"
	"github.com/pysugar/social-nexus/internal/db/models"
)

// CallbackHandler completes the authorization-code exchange. All failures are
// reported through the frontend redirect with a distinguishable error code;
// the handler never surfaces a raw HTTP error to the browser.
func (c *Connector) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := c.issuer.ParseState(r.URL.Query().Get("state"))
		if err != nil {
			connect.RedirectError(w, r, c.frontendURL, models.ProviderLinkedIn, errInvalidState)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), handshakeTimeout)
		defer cancel()

		// The redirect URI sent here must match the authorization request byte
		// for byte; both come from the same config value.
		token, err := c.oauthConfig().Exchange(ctx, r.URL.Query().Get("code"))
		if err != nil || token.AccessToken == "" {
			log.Printf("❌ LinkedIn token exchange failed: %v", err)
			connect.RedirectError(w, r, c.frontendURL, models.ProviderLinkedIn, errTokenFailed)
			return
		}

		memberID, err := c.fetchMemberID(ctx, token.AccessToken)
		if err != nil || memberID == "" {
			log.Printf("❌ LinkedIn userinfo fetch failed: %v", err)
			connect.RedirectError(w, r, c.frontendURL, models.ProviderLinkedIn, errNoUserID)
			return
		}

		cred := &models.SocialAccount{
			UserID:            userID,
			Provider:          models.ProviderLinkedIn,
			ProviderAccountID: memberID,
			AccessToken:       token.AccessToken,
		}
		if err := db.UpsertCredential(c.db, cred); err != nil {
			log.Printf("❌ Failed to save LinkedIn credential: %v", err)
			connect.RedirectError(w, r, c.frontendURL, models.ProviderLinkedIn, errSaveFailed)
			return
		}

		log.Printf("🔗 LinkedIn connected for user %s (member %s)", userID, memberID)
		connect.RedirectSuccess(w, r, c.frontendURL, models.ProviderLinkedIn)
	}
}

// fetchMemberID resolves the stable provider account identifier (the OpenID
// `sub` claim) for the freshly issued access token.
func (c *Connector) fetchMemberID(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userinfo, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := newAPIClient().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var userInfo struct {
		Sub string `json:"sub"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return "", err
	}
	return userInfo.Sub, nil
}
