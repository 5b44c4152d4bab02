// Package twitter publishes tweets through the v2 API with OAuth1 request
// signing. Image posts are strictly ordered: the v1.1 media upload must
// return an identifier before the tweet call is attempted.
package twitter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/dghubble/oauth1"
	"github.com/pysugar/social-nexus/internal/config"
	"github.com/pysugar/social-nexus/internal/db/models"
	"github.com/pysugar/social-nexus/internal/publish"
	"github.com/pysugar/social-nexus/internal/util"
)

const (
	defaultTweetURL       = "https://api.twitter.com/2/tweets"
	defaultMediaUploadURL = "https://upload.twitter.com/1.1/media/upload.json"

	tierHint = "Twitter Free Tier does not support image uploads. Please post text only or upgrade to Basic tier."
)

// Publisher implements publish.Publisher for Twitter/X.
type Publisher struct {
	cfg config.Twitter

	// test overrides
	tweetURL       string
	mediaUploadURL string
}

// NewPublisher creates a Twitter publisher signing with the app's consumer
// credentials.
func NewPublisher(cfg config.Twitter) *Publisher {
	return &Publisher{
		cfg:            cfg,
		tweetURL:       defaultTweetURL,
		mediaUploadURL: defaultMediaUploadURL,
	}
}

// Provider returns the provider identifier.
func (p *Publisher) Provider() string { return models.ProviderTwitter }

// Publish posts a tweet, uploading media first when an image is attached.
func (p *Publisher) Publish(ctx context.Context, cred *models.SocialAccount, req publish.Request) (json.RawMessage, error) {
	client := p.signedClient(cred)

	var mediaIDs []string
	if len(req.Image) > 0 {
		mediaID, err := p.uploadMedia(ctx, client, req.Image)
		if err != nil {
			return nil, err
		}
		mediaIDs = append(mediaIDs, mediaID)
	}

	return p.createTweet(ctx, client, req.Text, mediaIDs)
}

func (p *Publisher) signedClient(cred *models.SocialAccount) *http.Client {
	conf := oauth1.NewConfig(p.cfg.ConsumerKey, p.cfg.ConsumerSecret)
	client := conf.Client(oauth1.NoContext, oauth1.NewToken(cred.AccessToken, cred.AccessSecret))
	client.Timeout = publish.Timeout
	return client
}

// uploadMedia posts base64-encoded bytes to the v1.1 media endpoint and
// returns the media identifier. An access-tier rejection is surfaced with an
// actionable hint instead of a generic upload failure.
func (p *Publisher) uploadMedia(ctx context.Context, client *http.Client, image []byte) (string, error) {
	form := url.Values{}
	form.Set("media_data", base64.StdEncoding.EncodeToString(image))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.mediaUploadURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("media upload: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		perr := &publish.ProviderError{
			Provider:   models.ProviderTwitter,
			Step:       publish.StepMediaUpload,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
		if resp.StatusCode == http.StatusForbidden ||
			strings.Contains(string(raw), "does not have any credits") {
			perr.Hint = tierHint
		}
		log.Printf("❌ Twitter media upload failed (%d): %s", resp.StatusCode, util.TruncateBytes(raw))
		return "", perr
	}

	var parsed struct {
		MediaIDString string `json:"media_id_string"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse media upload response: %w", err)
	}
	if parsed.MediaIDString == "" {
		return "", &publish.ProviderError{
			Provider:   models.ProviderTwitter,
			Step:       publish.StepMediaUpload,
			StatusCode: resp.StatusCode,
			Body:       "media upload response missing media_id_string: " + util.TruncateBytes(raw),
		}
	}
	return parsed.MediaIDString, nil
}

func (p *Publisher) createTweet(ctx context.Context, client *http.Client, text string, mediaIDs []string) (json.RawMessage, error) {
	payload := map[string]any{"text": text}
	if len(mediaIDs) > 0 {
		payload["media"] = map[string]any{"media_ids": mediaIDs}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tweetURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create tweet: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("❌ Tweet failed (%d): %s", resp.StatusCode, util.TruncateBytes(raw))
		return nil, &publish.ProviderError{
			Provider:   models.ProviderTwitter,
			Step:       publish.StepTweet,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}
	return json.RawMessage(raw), nil
}
