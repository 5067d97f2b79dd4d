package driving

import (
	"context"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// RAGService indexes documents and answers questions about them.
type RAGService interface {
	// Index ingests the files into a collection, replacing any previous
	// collection of the same name.
	Index(ctx context.Context, paths []string, collection string) (*domain.IndexResult, error)

	// Query answers one question, serving from the cache when possible.
	Query(ctx context.Context, q domain.Query) (*domain.QueryResult, error)

	// BatchQuery answers up to domain.MaxBatchSize questions concurrently.
	// Individual failures are reported in their slot; only request validation
	// errors are returned.
	BatchQuery(ctx context.Context, req domain.BatchRequest) (*domain.BatchResult, error)

	// StreamQuery answers a question as a sequence of progress chunks.
	// The channel is closed after the final chunk.
	StreamQuery(ctx context.Context, q domain.Query) <-chan domain.StreamChunk

	// Benchmark runs the fixed benchmark questions against a collection.
	Benchmark(ctx context.Context, collection string, topK int) (*domain.BenchmarkResult, error)
}

// CollectionService manages registered collections.
type CollectionService interface {
	// List returns a summary of every collection ordered by name.
	List(ctx context.Context) []domain.CollectionSummary

	// Delete removes a collection. It reports false when the name is unknown.
	Delete(ctx context.Context, name string) bool
}

// StatsService reports process health and counters.
type StatsService interface {
	// Stats returns collection, metric and provider information.
	Stats(ctx context.Context) domain.Stats

	// Health returns a liveness summary.
	Health(ctx context.Context) domain.HealthStatus
}
