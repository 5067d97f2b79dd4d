// Package cohere provides an embedding service adapter using the Cohere v2 API.
package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/pagelens/internal/adapters/driven/ai/apierr"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.cohere.com"
	DefaultModel   = "embed-v4.0"
	DefaultTimeout = 60 * time.Second
)

const providerName = "cohere"

// Model dimensions for Cohere multimodal embedding models.
var modelDimensions = map[string]int{
	"embed-v4.0": 1536,
}

// Human-readable names reported in answers and stats.
var displayNames = map[string]string{
	"embed-v4.0": "Cohere Embed-4",
}

// Config holds configuration for the Cohere embedding service.
type Config struct {
	// APIKey is the Cohere API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.cohere.com).
	BaseURL string

	// Model is the embedding model to use (default: embed-v4.0).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions requests a specific output dimension. Zero uses the model default.
	Dimensions int
}

// EmbeddingService generates image and text embeddings using Cohere.
type EmbeddingService struct {
	client          *http.Client
	baseURL         string
	apiKey          string
	model           string
	dimensions      int
	requestedOutput int
}

// embedRequest is the Cohere /v2/embed request format.
// Texts and Inputs are mutually exclusive.
type embedRequest struct {
	Model           string       `json:"model"`
	InputType       string       `json:"input_type"`
	EmbeddingTypes  []string     `json:"embedding_types"`
	Texts           []string     `json:"texts,omitempty"`
	Inputs          []embedInput `json:"inputs,omitempty"`
	OutputDimension int          `json:"output_dimension,omitempty"`
}

type embedInput struct {
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// embedResponse is the Cohere /v2/embed response format.
type embedResponse struct {
	ID         string `json:"id"`
	Embeddings struct {
		Float [][]float64 `json:"float"`
	} `json:"embeddings"`
	Message string `json:"message,omitempty"`
}

// NewEmbeddingService creates a new Cohere embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cohere: API key is required")
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

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		var ok bool
		dimensions, ok = modelDimensions[cfg.Model]
		if !ok {
			dimensions = 1536
		}
	}

	return &EmbeddingService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:         cfg.BaseURL,
		apiKey:          cfg.APIKey,
		model:           cfg.Model,
		dimensions:      dimensions,
		requestedOutput: cfg.Dimensions,
	}, nil
}

// inputType maps an embed mode to Cohere's input_type.
func inputType(mode driven.EmbedMode) string {
	if mode == driven.EmbedModeQuery {
		return "search_query"
	}
	return "search_document"
}

// buildRequest sends pure text batches as texts and anything with an image as inputs.
func (s *EmbeddingService) buildRequest(mode driven.EmbedMode, items []driven.ContentItem) embedRequest {
	req := embedRequest{
		Model:           s.model,
		InputType:       inputType(mode),
		EmbeddingTypes:  []string{"float"},
		OutputDimension: s.requestedOutput,
	}

	hasImage := false
	for _, item := range items {
		if item.IsImage() {
			hasImage = true
			break
		}
	}

	if !hasImage {
		req.Texts = make([]string, len(items))
		for i, item := range items {
			req.Texts[i] = item.Text
		}
		return req
	}

	req.Inputs = make([]embedInput, len(items))
	for i, item := range items {
		part := contentPart{Type: "text", Text: item.Text}
		if item.IsImage() {
			part = contentPart{Type: "image_url", ImageURL: &imageURL{URL: item.ImageDataURL}}
		}
		req.Inputs[i] = embedInput{Content: []contentPart{part}}
	}
	return req
}

// Embed returns one vector per item, in input order.
func (s *EmbeddingService) Embed(
	ctx context.Context,
	mode driven.EmbedMode,
	items []driven.ContentItem,
) ([][]float32, error) {
	if len(items) == 0 {
		return nil, nil
	}

	jsonBody, err := json.Marshal(s.buildRequest(mode, items))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/v2/embed",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := apierr.Check(providerName, resp, body); err != nil {
		return nil, err
	}

	var embedResp embedResponse
	if err := json.Unmarshal(body, &embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(embedResp.Embeddings.Float) != len(items) {
		return nil, fmt.Errorf("cohere: expected %d embeddings, got %d",
			len(items), len(embedResp.Embeddings.Float))
	}

	embeddings := make([][]float32, len(items))
	for i, values := range embedResp.Embeddings.Float {
		embedding := make([]float32, len(values))
		for j, v := range values {
			embedding[j] = float32(v)
		}
		embeddings[i] = embedding
	}

	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// DisplayName returns a human-readable model name.
func (s *EmbeddingService) DisplayName() string {
	if name, ok := displayNames[s.model]; ok {
		return name
	}
	return "Cohere " + s.model
}

// Ping validates the API key by listing embed models.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/v1/models?endpoint=embed", http.NoBody)
	if err != nil {
		return fmt.Errorf("cohere: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("cohere: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("cohere: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("cohere: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
