// Package publish defines the provider-agnostic publishing contract. Each
// provider package implements Publisher with its platform's protocol: a
// single call for text, an upload-then-post sequence for images.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pysugar/social-nexus/internal/db/models"
)

// Timeout bounds every outbound publish call, the binary upload paths
// included, so a slow platform cannot hang a request indefinitely.
const Timeout = 30 * time.Second

// Request is the content to publish. An empty Image means text-only.
type Request struct {
	Text  string
	Image []byte
}

// Publisher posts content to one provider on behalf of a connected account.
type Publisher interface {
	Provider() string
	Publish(ctx context.Context, cred *models.SocialAccount, req Request) (json.RawMessage, error)
}

// Publish step identifiers used in ProviderError.
const (
	StepRegister    = "register"     // LinkedIn asset registration
	StepUpload      = "upload"       // LinkedIn binary upload
	StepPost        = "post"         // LinkedIn share creation
	StepMediaUpload = "media_upload" // Twitter media upload
	StepTweet       = "tweet"        // Twitter tweet creation
)

// ProviderError reports a non-success response from a platform call. It
// carries the raw body for diagnosis and names the step that failed so an
// upload failure is never conflated with a final-post failure.
type ProviderError struct {
	Provider   string
	Step       string
	StatusCode int
	Body       string

	// Hint carries actionable guidance where the failure has a known cause,
	// e.g. an access tier that does not permit media uploads.
	Hint string

	// OrphanedAsset names a media asset that was registered and uploaded
	// before a later step failed. The asset is left behind on the provider
	// side; no compensating cleanup is attempted.
	OrphanedAsset string
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s %s step failed with status %d: %s",
		e.Provider, e.Step, e.StatusCode, e.Body)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	if e.OrphanedAsset != "" {
		msg += fmt.Sprintf(" [media %s uploaded but post was not created]", e.OrphanedAsset)
	}
	return msg
}
