// Package gemini provides a multimodal generation adapter using the Google Gemini API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/pagelens/internal/adapters/driven/ai/apierr"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

// Ensure GenerationService implements the interface.
var _ driven.GenerationService = (*GenerationService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 120 * time.Second
)

const providerName = "gemini"

var displayNames = map[string]string{
	"gemini-2.5-flash": "Gemini 2.5 Flash",
	"gemini-2.5-pro":   "Gemini 2.5 Pro",
	"gemini-2.0-flash": "Gemini 2.0 Flash",
}

// Config holds configuration for the Gemini generation service.
type Config struct {
	// APIKey is the Google AI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://generativelanguage.googleapis.com).
	BaseURL string

	// Model is the model to use (default: gemini-2.5-flash).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// GenerationService answers prompts over images using Gemini.
type GenerationService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// NewGenerationService creates a new Gemini generation service.
func NewGenerationService(cfg Config) (*GenerationService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &GenerationService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Generate sends the prompt text followed by each image as inline data.
func (s *GenerationService) Generate(
	ctx context.Context,
	prompt string,
	images []driven.Image,
	opts driven.GenerateOptions,
) (string, error) {
	parts := make([]part, 0, len(images)+1)
	parts = append(parts, part{Text: prompt})
	for _, img := range images {
		parts = append(parts, part{InlineData: &inlineData{
			MIMEType: img.MIMEType,
			Data:     img.Base64(),
		}})
	}

	reqBody := generateRequest{
		Contents: []content{{Role: "user", Parts: parts}},
	}
	if opts.MaxTokens > 0 || opts.Temperature > 0 {
		reqBody.GenerationConfig = &generationConfig{
			MaxOutputTokens: opts.MaxTokens,
			Temperature:     opts.Temperature,
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", s.baseURL, url.PathEscape(s.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if err := apierr.Check(providerName, resp, body); err != nil {
		return "", err
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if genResp.PromptFeedback != nil && genResp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini: prompt blocked: %s", genResp.PromptFeedback.BlockReason)
	}
	if len(genResp.Candidates) == 0 {
		return "", fmt.Errorf("gemini: no candidates returned")
	}

	var result strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		result.WriteString(p.Text)
	}
	return result.String(), nil
}

// ModelName returns the name of the model being used.
func (s *GenerationService) ModelName() string {
	return s.model
}

// DisplayName returns a human-readable model name.
func (s *GenerationService) DisplayName() string {
	if name, ok := displayNames[s.model]; ok {
		return name
	}
	return "Gemini " + s.model
}

// Ping validates the API key by fetching the model description.
func (s *GenerationService) Ping(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/v1beta/models/%s", s.baseURL, url.PathEscape(s.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("gemini: failed to create ping request: %w", err)
	}
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("gemini: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("gemini: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *GenerationService) Close() error {
	return nil
}
