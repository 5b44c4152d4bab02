package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/dghubble/oauth1"
	"github.com/pysugar/social-nexus/internal/connect"
	"github.com/pysugar/social-nexus/internal/db"
	"github.com/pysugar/social-nexus/internal/db/models"
)

// CallbackHandler consumes the pending handshake (at most once), exchanges
// the verifier for a permanent access token/secret, resolves the account
// identity, and stores the credential. All failures go back to the frontend
// through the redirect channel.
func (c *Connector) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestToken := r.URL.Query().Get("oauth_token")
		verifier := r.URL.Query().Get("oauth_verifier")
		if requestToken == "" || verifier == "" {
			connect.RedirectError(w, r, c.frontendURL, models.ProviderTwitter, invalidSessionMessage)
			return
		}

		handshake, ok := c.store.Take(requestToken)
		if !ok {
			// Unknown, expired, or already consumed. A reused verifier must
			// fail here, not at the provider.
			connect.RedirectError(w, r, c.frontendURL, models.ProviderTwitter, invalidSessionMessage)
			return
		}

		conf := c.oauthConfig()
		accessToken, accessSecret, err := conf.AccessToken(requestToken, handshake.Secret, verifier)
		if err != nil {
			log.Printf("❌ Twitter access token exchange failed: %v", err)
			connect.RedirectError(w, r, c.frontendURL, models.ProviderTwitter,
				"Access token exchange failed")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), handshakeTimeout)
		defer cancel()
		accountID, screenName, err := c.fetchIdentity(ctx, accessToken, accessSecret)
		if err != nil {
			log.Printf("❌ Twitter identity lookup failed: %v", err)
			connect.RedirectError(w, r, c.frontendURL, models.ProviderTwitter,
				"Failed to fetch Twitter profile")
			return
		}

		cred := &models.SocialAccount{
			UserID:            handshake.UserID,
			Provider:          models.ProviderTwitter,
			ProviderAccountID: accountID,
			AccessToken:       accessToken,
			AccessSecret:      accessSecret,
			ScreenName:        screenName,
		}
		if err := db.UpsertCredential(c.db, cred); err != nil {
			if errors.Is(err, db.ErrAccountClaimed) {
				connect.RedirectError(w, r, c.frontendURL, models.ProviderTwitter,
					"This Twitter account is already linked to another user")
				return
			}
			log.Printf("❌ Failed to save Twitter credential: %v", err)
			connect.RedirectError(w, r, c.frontendURL, models.ProviderTwitter,
				"Failed to save Twitter account")
			return
		}

		log.Printf("🔗 Twitter connected for user %s (@%s)", handshake.UserID, screenName)
		connect.RedirectSuccess(w, r, c.frontendURL, models.ProviderTwitter)
	}
}

// fetchIdentity resolves the provider account ID and handle using the fresh
// access token. The OAuth1 access-token response itself is not guaranteed to
// carry them, so they are looked up explicitly.
func (c *Connector) fetchIdentity(ctx context.Context, accessToken, accessSecret string) (id, username string, err error) {
	client := c.oauthConfig().Client(oauth1.NoContext, oauth1.NewToken(accessToken, accessSecret))
	client.Timeout = handshakeTimeout

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userLookup, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("user lookup returned status %d", resp.StatusCode)
	}

	var payload struct {
		Data struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", "", err
	}
	if payload.Data.ID == "" {
		return "", "", fmt.Errorf("user lookup response missing account id")
	}
	return payload.Data.ID, payload.Data.Username, nil
}
