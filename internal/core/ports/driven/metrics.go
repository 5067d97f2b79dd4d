package driven

import "time"

// Query outcome labels used by MetricsRecorder.
const (
	QueryStatusProcessing = "processing"
	QueryStatusSuccess    = "success"
	QueryStatusFailed     = "failed"
)

// MetricsRecorder exports pipeline measurements to a monitoring system.
// This is an optional port - when nil, a no-op recorder is used.
type MetricsRecorder interface {
	// QueryStatus counts a query in the given status for a collection.
	QueryStatus(collection, status string)

	// ObserveRequestDuration records the wall time of one query request.
	ObserveRequestDuration(d time.Duration)

	// CacheHit counts a query answered from the cache.
	CacheHit()

	// Error counts a failed query.
	Error()

	// EmbeddingsCreated counts document embeddings produced by ingestion.
	EmbeddingsCreated(n int)

	// ObserveSimilarity records the score of a retrieved item.
	ObserveSimilarity(score float64)
}
