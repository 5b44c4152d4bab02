// Package content wraps the Gemini generateContent REST API for drafting
// post text and images.
package content

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pysugar/social-nexus/internal/config"
	"github.com/pysugar/social-nexus/internal/util"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultTimeout = 15 * time.Second
)

const promptTemplate = `You are an expert LinkedIn content writer. Generate a compelling LinkedIn post about the following topic.

Topic: %s
Tone: %s
Length: %s (short = 50-100 words, medium = 100-200 words, long = 200-350 words)

Guidelines:
- Start with a strong hook that grabs attention
- Use short paragraphs and line breaks for readability
- Include relevant emojis sparingly
- Add 3-5 relevant hashtags at the end
- Make it engaging and encourage comments
- Do NOT include any markdown formatting, just plain text
- Write it as ready-to-post content`

// Client calls the Google AI Studio generateContent endpoint with a
// server-side API key.
type Client struct {
	apiKey     string
	textModel  string
	imageModel string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a Client from configuration. baseURL is overridable for
// tests; empty means the public AI Studio host.
func NewClient(cfg config.Gemini, baseURL string) *Client {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	return &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Configured indicates whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

type generateRequest struct {
	Contents         []contentPart     `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type contentPart struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateText drafts a post for the topic in the requested tone and length.
func (c *Client) GenerateText(ctx context.Context, topic, tone, length string) (string, error) {
	prompt := fmt.Sprintf(promptTemplate, topic, tone, length)
	resp, err := c.generate(ctx, c.textModel, generateRequest{
		Contents: []contentPart{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text, nil
			}
		}
	}
	return "", fmt.Errorf("empty response from Gemini API")
}

// Image is a generated image with its media type.
type Image struct {
	Data     []byte
	MimeType string
}

// GenerateImage renders an image for the prompt using the image model.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	resp, err := c.generate(ctx, c.imageModel, generateRequest{
		Contents:         []contentPart{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	})
	if err != nil {
		return nil, err
	}
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData == nil {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("decode generated image: %w", err)
			}
			return &Image{Data: data, MimeType: p.InlineData.MimeType}, nil
		}
	}
	return nil, fmt.Errorf("no image in Gemini API response")
}

func (c *Client) generate(ctx context.Context, model string, payload generateRequest) (*generateResponse, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("gemini client is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini API request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini API error (status %d): %s",
			resp.StatusCode, util.TruncateBytes(raw))
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}
	return &out, nil
}
