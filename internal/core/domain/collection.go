package domain

import (
	"fmt"
	"path/filepath"
	"time"
)

// DefaultCollection is used when a caller does not name a collection.
const DefaultCollection = "default"

// ItemRef is the stored path of one ingested page or image.
// It is never mutated after ingestion.
type ItemRef string

// Path returns the reference as a filesystem path.
func (r ItemRef) Path() string {
	return string(r)
}

// Filename returns the base name shown to users.
func (r ItemRef) Filename() string {
	return filepath.Base(string(r))
}

// Collection is a named set of indexed pages together with their embeddings.
// A Collection value is treated as immutable once registered; re-ingestion
// builds a new value and swaps it in whole.
type Collection struct {
	// Name is the unique registry key.
	Name string `json:"name"`

	// Items holds one reference per indexed page, in ingestion order.
	Items []ItemRef `json:"items"`

	// Vectors holds one embedding per item. Row i belongs to Items[i].
	Vectors [][]float32 `json:"-"`

	// Dimensions is the length shared by every vector.
	Dimensions int `json:"dimensions"`

	// CreatedAt is when this version of the collection was registered.
	CreatedAt time.Time `json:"created_at"`

	// DocumentCount is the number of input files in the ingestion call.
	DocumentCount int `json:"document_count"`

	// TotalPages is the number of pages and images produced from those files.
	TotalPages int `json:"total_pages"`

	// Dir is the directory holding this version's stored files. Every item
	// lives under it. Empty when the ingestion call stored nothing.
	Dir string `json:"-"`
}

// Len returns the number of indexed items.
func (c *Collection) Len() int {
	return len(c.Items)
}

// IsEmpty reports whether the collection has no indexed items.
func (c *Collection) IsEmpty() bool {
	return len(c.Items) == 0
}

// Validate checks that items and vectors line up and share one dimensionality.
func (c *Collection) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: collection name is required", ErrInvalidInput)
	}
	if len(c.Vectors) != len(c.Items) {
		return fmt.Errorf("%w: collection %q has %d items but %d vectors",
			ErrInvalidInput, c.Name, len(c.Items), len(c.Vectors))
	}
	for i, v := range c.Vectors {
		if len(v) != c.Dimensions {
			return fmt.Errorf("%w: collection %q vector %d has dimension %d, want %d",
				ErrInvalidInput, c.Name, i, len(v), c.Dimensions)
		}
	}
	return nil
}

// SizeEstimateMB approximates the in-memory size of the vectors, assuming
// 1024-dimensional float32 rows.
func (c *Collection) SizeEstimateMB() float64 {
	if len(c.Vectors) == 0 {
		return 0
	}
	return float64(len(c.Vectors)) * 1024 * 4 / (1024 * 1024)
}

// Summary returns the listing record for the collection.
func (c *Collection) Summary() CollectionSummary {
	return CollectionSummary{
		Name:          c.Name,
		DocumentCount: c.DocumentCount,
		TotalPages:    c.TotalPages,
		CreatedAt:     c.CreatedAt,
		SizeEstimate:  c.SizeEstimateMB(),
	}
}

// CollectionSummary is one row of the collection listing.
type CollectionSummary struct {
	Name          string    `json:"name"`
	DocumentCount int       `json:"document_count"`
	TotalPages    int       `json:"total_pages"`
	CreatedAt     time.Time `json:"created_at"`
	SizeEstimate  float64   `json:"size_estimate"`
}
