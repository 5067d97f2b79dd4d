package domain

import (
	"fmt"
	"strings"
)

// Query bounds.
const (
	// DefaultTopK is the number of items retrieved when a caller does not ask for more.
	DefaultTopK = 1

	// MaxTopK is the largest top_k a caller may request.
	MaxTopK = 5

	// MaxContextImages caps the secondary images attached to a generation request.
	MaxContextImages = 2

	// MaxBatchSize caps the number of queries accepted in one batch.
	MaxBatchSize = 20
)

// Query is a question addressed to one collection.
type Query struct {
	// Text is the question exactly as the user typed it.
	Text string `json:"query"`

	// Collection is the target collection name.
	Collection string `json:"collection_name"`

	// TopK is how many items to retrieve.
	TopK int `json:"top_k"`

	// IncludeContext attaches up to MaxContextImages secondary pages to the prompt.
	IncludeContext bool `json:"include_context"`
}

// NewQuery returns a query with default collection and top_k, context enabled.
func NewQuery(text string) Query {
	return Query{
		Text:           text,
		Collection:     DefaultCollection,
		TopK:           DefaultTopK,
		IncludeContext: true,
	}
}

// Normalise fills unset fields with defaults. Text is left untouched.
func (q Query) Normalise() Query {
	if q.Collection == "" {
		q.Collection = DefaultCollection
	}
	if q.TopK == 0 {
		q.TopK = DefaultTopK
	}
	return q
}

// Validate checks the query is answerable.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: query text is required", ErrInvalidInput)
	}
	if q.TopK < 1 || q.TopK > MaxTopK {
		return fmt.Errorf("%w: top_k must be between 1 and %d, got %d", ErrInvalidInput, MaxTopK, q.TopK)
	}
	return nil
}

// BatchRequest runs several questions against one collection.
type BatchRequest struct {
	Queries    []string `json:"queries" yaml:"queries"`
	Collection string   `json:"collection_name" yaml:"collection_name"`
	TopK       int      `json:"top_k" yaml:"top_k"`
}

// Validate enforces the batch size bounds.
func (b BatchRequest) Validate() error {
	if len(b.Queries) == 0 {
		return fmt.Errorf("%w: Provide at least one query", ErrInvalidInput)
	}
	if len(b.Queries) > MaxBatchSize {
		return fmt.Errorf("%w: Batch size limited to %d queries", ErrInvalidInput, MaxBatchSize)
	}
	if b.TopK != 0 && (b.TopK < 1 || b.TopK > MaxTopK) {
		return fmt.Errorf("%w: top_k must be between 1 and %d, got %d", ErrInvalidInput, MaxTopK, b.TopK)
	}
	return nil
}
