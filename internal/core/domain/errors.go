package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested collection does not exist or has no documents.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates a provider is missing credentials or settings.
	// It is never fatal: the affected provider runs in demo mode instead.
	ErrConfiguration = errors.New("configuration error")

	// ErrIngestion indicates a file could not be read, copied or rasterized.
	ErrIngestion = errors.New("ingestion failed")

	// ErrProvider indicates an embedding or generation call failed.
	ErrProvider = errors.New("provider error")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable indicates the generation service is not configured.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrProviderUnreachable indicates a provider with credentials failed its
	// connectivity check.
	ErrProviderUnreachable = errors.New("service unreachable")

	// ErrCacheUnavailable indicates the cache backend could not be reached.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// ConfigurationError reports a provider that cannot be used as configured.
type ConfigurationError struct {
	Provider string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// IngestionError aborts a whole ingestion call. Path names the input that failed.
type IngestionError struct {
	Path string
	Err  error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.Path, e.Err)
}

// Is reports whether target is ErrIngestion.
func (e *IngestionError) Is(target error) bool {
	return target == ErrIngestion
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// ProviderError wraps a failed call to an external embedding or generation provider.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

// Is reports whether target is ErrProvider.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NotFoundReason distinguishes the two ways a query can find nothing to search.
type NotFoundReason int

const (
	// CollectionMissing means no collection is registered under the name.
	CollectionMissing NotFoundReason = iota

	// NoDocuments means the collection exists but holds zero indexed items.
	NoDocuments
)

// NotFoundError is returned when a query targets an unknown or empty collection.
type NotFoundError struct {
	Collection string
	Reason     NotFoundReason
}

func (e *NotFoundError) Error() string {
	if e.Reason == NoDocuments {
		return fmt.Sprintf("no documents in collection '%s'", e.Collection)
	}
	return fmt.Sprintf("collection '%s' not found. Upload documents first.", e.Collection)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// RateLimitError is returned by a provider that answered 429.
// RetryAfter is zero when the provider gave no hint.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited, retry after %s", e.Provider, e.RetryAfter)
	}
	return fmt.Sprintf("%s: rate limited", e.Provider)
}

// Is reports whether target is ErrRateLimited.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}
