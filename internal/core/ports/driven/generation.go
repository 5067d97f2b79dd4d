package driven

import (
	"context"
	"encoding/base64"
)

// Image is an encoded image attached to a prompt or embedding request.
type Image struct {
	// MIMEType is the image type, e.g. "image/png".
	MIMEType string

	// Data is the encoded image bytes.
	Data []byte
}

// DataURL returns the image as a "data:<mime>;base64,..." URL.
func (i Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Base64 returns the image bytes base64-encoded.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// GenerationService answers a prompt grounded in a list of images.
// This is an optional service - when nil, answers are templated placeholders.
//
// Implementations may include:
//   - Google Gemini (gemini-2.5-flash)
//   - OpenAI (gpt-4o family)
//   - Anthropic (Claude)
//   - Ollama (llava and other local vision models)
type GenerationService interface {
	// Generate sends the prompt followed by the images, in order, and returns
	// the answer text verbatim.
	Generate(ctx context.Context, prompt string, images []Image, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// DisplayName returns a human-readable model name for answers and stats.
	DisplayName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate. Zero uses the provider default.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
