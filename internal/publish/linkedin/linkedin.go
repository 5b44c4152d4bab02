// Package linkedin publishes shares through the LinkedIn UGC API. Text posts
// are a single call; image posts follow the register → upload → compose
// sequence. The sequence is not transactional: a compose failure leaves the
// uploaded asset orphaned on LinkedIn's side, which is reported but not
// cleaned up.
package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/pysugar/social-nexus/internal/db/models"
	"github.com/pysugar/social-nexus/internal/publish"
	"github.com/pysugar/social-nexus/internal/util"
)

const (
	defaultAPIBase = "https://api.linkedin.com/v2"

	restliHeader  = "X-Restli-Protocol-Version"
	restliVersion = "2.0.0"

	feedShareRecipe = "urn:li:digitalmediaRecipe:feedshare-image"
)

// Publisher implements publish.Publisher for LinkedIn.
type Publisher struct {
	apiBase string // test override
	client  *http.Client
}

// NewPublisher creates a LinkedIn publisher.
func NewPublisher() *Publisher {
	return &Publisher{
		apiBase: defaultAPIBase,
		client:  &http.Client{Timeout: publish.Timeout},
	}
}

// Provider returns the provider identifier.
func (p *Publisher) Provider() string { return models.ProviderLinkedIn }

// Publish posts text, optionally with an image, as the connected member.
func (p *Publisher) Publish(ctx context.Context, cred *models.SocialAccount, req publish.Request) (json.RawMessage, error) {
	if len(req.Image) == 0 {
		return p.publishText(ctx, cred, req.Text)
	}
	return p.publishWithImage(ctx, cred, req.Text, req.Image)
}

// shareMedia tags a share as carrying an uploaded image asset. A nil value
// means a text-only share; the union is resolved into wire JSON only here at
// the API boundary.
type shareMedia struct {
	Asset string
}

func sharePayload(memberID, text string, media *shareMedia) map[string]any {
	content := map[string]any{
		"shareCommentary":    map[string]string{"text": text},
		"shareMediaCategory": "NONE",
	}
	if media != nil {
		content["shareMediaCategory"] = "IMAGE"
		content["media"] = []map[string]any{{
			"status": "READY",
			"media":  media.Asset,
		}}
	}
	return map[string]any{
		"author":         "urn:li:person:" + memberID,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": content,
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}
}

func (p *Publisher) publishText(ctx context.Context, cred *models.SocialAccount, text string) (json.RawMessage, error) {
	return p.createShare(ctx, cred, sharePayload(cred.ProviderAccountID, text, nil), "")
}

func (p *Publisher) publishWithImage(ctx context.Context, cred *models.SocialAccount, text string, image []byte) (json.RawMessage, error) {
	uploadURL, asset, err := p.registerUpload(ctx, cred)
	if err != nil {
		return nil, err
	}

	if err := p.uploadImage(ctx, cred, uploadURL, image); err != nil {
		return nil, err
	}

	// No retry and no cleanup past this point: a compose failure orphans the
	// asset and the error says so.
	return p.createShare(ctx, cred,
		sharePayload(cred.ProviderAccountID, text, &shareMedia{Asset: asset}), asset)
}

// registerUpload reserves an asset slot and returns the upload URL plus the
// opaque asset URN.
func (p *Publisher) registerUpload(ctx context.Context, cred *models.SocialAccount) (uploadURL, asset string, err error) {
	body := map[string]any{
		"registerUploadRequest": map[string]any{
			"recipes": []string{feedShareRecipe},
			"owner":   "urn:li:person:" + cred.ProviderAccountID,
			"serviceRelationships": []map[string]string{{
				"relationshipType": "OWNER",
				"identifier":       "urn:li:userGeneratedContent",
			}},
		},
	}

	resp, raw, err := p.doJSON(ctx, cred, http.MethodPost,
		p.apiBase+"/assets?action=registerUpload", body)
	if err != nil {
		return "", "", err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", "", &publish.ProviderError{
			Provider:   models.ProviderLinkedIn,
			Step:       publish.StepRegister,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}

	var parsed struct {
		Value struct {
			Asset           string `json:"asset"`
			UploadMechanism map[string]struct {
				UploadURL string `json:"uploadUrl"`
			} `json:"uploadMechanism"`
		} `json:"value"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", "", fmt.Errorf("parse registerUpload response: %w", err)
	}
	mech := parsed.Value.UploadMechanism["com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"]
	if mech.UploadURL == "" || parsed.Value.Asset == "" {
		return "", "", &publish.ProviderError{
			Provider:   models.ProviderLinkedIn,
			Step:       publish.StepRegister,
			StatusCode: resp.StatusCode,
			Body:       "unexpected registerUpload response shape: " + util.TruncateBytes(raw),
		}
	}
	return mech.UploadURL, parsed.Value.Asset, nil
}

// uploadImage PUTs the raw bytes to the registered upload URL.
func (p *Publisher) uploadImage(ctx context.Context, cred *models.SocialAccount, uploadURL string, image []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(image))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &publish.ProviderError{
			Provider:   models.ProviderLinkedIn,
			Step:       publish.StepUpload,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}
	return nil
}

// createShare posts the share payload. asset is non-empty when media was
// already uploaded, so a failure here can report the orphan.
func (p *Publisher) createShare(ctx context.Context, cred *models.SocialAccount, payload map[string]any, asset string) (json.RawMessage, error) {
	resp, raw, err := p.doJSON(ctx, cred, http.MethodPost, p.apiBase+"/ugcPosts", payload)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated {
		log.Printf("❌ LinkedIn share failed (%d): %s", resp.StatusCode, util.TruncateBytes(raw))
		return nil, &publish.ProviderError{
			Provider:      models.ProviderLinkedIn,
			Step:          publish.StepPost,
			StatusCode:    resp.StatusCode,
			Body:          string(raw),
			OrphanedAsset: asset,
		}
	}
	return json.RawMessage(raw), nil
}

func (p *Publisher) doJSON(ctx context.Context, cred *models.SocialAccount, method, url string, payload any) (*http.Response, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set(restliHeader, restliVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("linkedin api call: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return resp, raw, nil
}
