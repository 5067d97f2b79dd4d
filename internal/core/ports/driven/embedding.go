// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbedMode tells the provider whether inputs are stored documents or search queries.
type EmbedMode string

// Embedding modes.
const (
	// EmbedModeDocument embeds content that will be stored in an index.
	EmbedModeDocument EmbedMode = "document"

	// EmbedModeQuery embeds a search query.
	EmbedModeQuery EmbedMode = "query"
)

// ContentItem is one structured input to the embedding provider.
// Exactly one of Text or ImageDataURL is set.
type ContentItem struct {
	// Text is plain text content.
	Text string

	// ImageDataURL is a "data:image/<fmt>;base64,..." URL.
	ImageDataURL string
}

// IsImage reports whether the item carries an image.
func (c ContentItem) IsImage() bool {
	return c.ImageDataURL != ""
}

// TextContent returns a text content item.
func TextContent(text string) ContentItem {
	return ContentItem{Text: text}
}

// ImageContent returns an image content item.
func ImageContent(dataURL string) ContentItem {
	return ContentItem{ImageDataURL: dataURL}
}

// EmbeddingService generates vector embeddings from images and text.
// This is an optional service - when nil, indexing and retrieval run in demo mode.
//
// Implementations may include:
//   - Cohere (embed-v4.0)
type EmbeddingService interface {
	// Embed returns one vector per item, in input order.
	Embed(ctx context.Context, mode EmbedMode, items []ContentItem) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// DisplayName returns a human-readable model name for answers and stats.
	DisplayName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
