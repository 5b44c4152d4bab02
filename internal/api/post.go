package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/pysugar/social-nexus/internal/auth"
	"github.com/pysugar/social-nexus/internal/db"
	"github.com/pysugar/social-nexus/internal/logging"
	"github.com/pysugar/social-nexus/internal/publish"
	"gorm.io/gorm"
)

// maxImageBytes bounds the uploaded image size (10MB).
const maxImageBytes = 10 << 20

// PostHandler publishes text plus an optional image through the provider's
// publisher. Input is validated and the credential resolved before any
// outbound call is made.
func PostHandler(gdb *gorm.DB, pub publish.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+1<<20)

		text := r.FormValue("text")
		if text == "" {
			WriteDetail(w, http.StatusBadRequest, "Text is required")
			return
		}

		image, ok := readImage(w, r)
		if !ok {
			return
		}

		cred, err := db.GetCredential(gdb, auth.UserID(r.Context()), pub.Provider())
		if errors.Is(err, db.ErrNotConnected) {
			WriteDetail(w, http.StatusNotFound,
				"No "+displayName(pub.Provider())+" account connected. Please connect first.")
			return
		}
		if err != nil {
			WriteDetail(w, http.StatusInternalServerError, "Failed to load credentials")
			return
		}

		resp, err := pub.Publish(r.Context(), cred, publish.Request{Text: text, Image: image})
		if err != nil {
			writePublishError(w, r, err)
			return
		}

		WriteJSON(w, http.StatusOK, map[string]any{
			"message":  "Posted to " + displayName(pub.Provider()) + " successfully!",
			"response": resp,
		})
	}
}

func readImage(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		// attached below
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, true
	default:
		WriteDetail(w, http.StatusBadRequest, "Invalid image upload")
		return nil, false
	}
	defer file.Close()

	if header.Filename == "" {
		return nil, true
	}
	// Read one byte past the limit so an oversize upload is detected and
	// rejected rather than truncated and published.
	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		WriteDetail(w, http.StatusBadRequest, "Failed to read image upload")
		return nil, false
	}
	if len(image) > maxImageBytes {
		WriteDetail(w, http.StatusBadRequest, "Image too large (max 10MB)")
		return nil, false
	}
	return image, true
}

func writePublishError(w http.ResponseWriter, r *http.Request, err error) {
	var perr *publish.ProviderError
	if errors.As(err, &perr) {
		status := perr.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		log.Printf("[%s] publish failed: %v", logging.GetRequestID(r.Context()), perr)
		WriteJSON(w, status, map[string]any{
			"detail":            perr.Error(),
			"step":              perr.Step,
			"provider_status":   perr.StatusCode,
			"provider_response": perr.Body,
		})
		return
	}
	log.Printf("[%s] publish failed: %v", logging.GetRequestID(r.Context()), err)
	WriteDetail(w, http.StatusInternalServerError, "Failed to publish: "+err.Error())
}
