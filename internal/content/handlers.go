package content

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/pysugar/social-nexus/internal/api"
	"github.com/pysugar/social-nexus/internal/logging"
)

type generateTextRequest struct {
	Topic  string `json:"topic"`
	Tone   string `json:"tone"`
	Length string `json:"length"`
}

type generateImageRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateHandler drafts post text from a topic, tone, and length.
func GenerateHandler(client *Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !client.Configured() {
			api.WriteDetail(w, http.StatusServiceUnavailable, "Content generation is not configured")
			return
		}

		var req generateTextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.WriteDetail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		req.Topic = strings.TrimSpace(req.Topic)
		if req.Topic == "" {
			api.WriteDetail(w, http.StatusBadRequest, "Topic is required")
			return
		}
		if req.Tone == "" {
			req.Tone = "professional"
		}
		if req.Length == "" {
			req.Length = "medium"
		}

		text, err := client.GenerateText(r.Context(), req.Topic, req.Tone, req.Length)
		if err != nil {
			log.Printf("[%s] ❌ content generation failed: %v", logging.GetRequestID(r.Context()), err)
			api.WriteDetail(w, http.StatusInternalServerError, "Gemini API error: "+err.Error())
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]string{"generated_text": text})
	}
}

// GenerateImageHandler renders an image for a prompt and returns it base64
// encoded so the frontend can preview and attach it to a post.
func GenerateImageHandler(client *Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !client.Configured() {
			api.WriteDetail(w, http.StatusServiceUnavailable, "Content generation is not configured")
			return
		}

		var req generateImageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.WriteDetail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		req.Prompt = strings.TrimSpace(req.Prompt)
		if req.Prompt == "" {
			api.WriteDetail(w, http.StatusBadRequest, "Prompt is required")
			return
		}

		img, err := client.GenerateImage(r.Context(), req.Prompt)
		if err != nil {
			log.Printf("[%s] ❌ image generation failed: %v", logging.GetRequestID(r.Context()), err)
			api.WriteDetail(w, http.StatusInternalServerError, "Gemini API error: "+err.Error())
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]string{
			"image_base64": base64.StdEncoding.EncodeToString(img.Data),
			"mime_type":    img.MimeType,
		})
	}
}
