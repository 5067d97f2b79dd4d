package services

import (
	"sync"
	"time"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

// MetricsTracker keeps the process-wide query counters.
type MetricsTracker struct {
	mu      sync.Mutex
	metrics domain.PerformanceMetrics
}

// NewMetricsTracker creates an empty tracker.
func NewMetricsTracker() *MetricsTracker {
	return &MetricsTracker{}
}

// RecordQuery counts one query attempt and folds its latency into the running mean.
func (m *MetricsTracker) RecordQuery(latency time.Duration, cacheHit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.TotalQueries++
	if cacheHit {
		m.metrics.CacheHits++
	}
	n := float64(m.metrics.TotalQueries)
	m.metrics.AvgQueryTime = (m.metrics.AvgQueryTime*(n-1) + latency.Seconds()) / n
}

// RecordIngestion adds ingested input files to the document total.
func (m *MetricsTracker) RecordIngestion(documents int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.TotalDocuments += documents
}

// Snapshot returns a copy of the counters.
func (m *MetricsTracker) Snapshot() domain.PerformanceMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics
}

// nopRecorder discards measurements when no exporter is configured.
type nopRecorder struct{}

var _ driven.MetricsRecorder = nopRecorder{}

func (nopRecorder) QueryStatus(string, string)           {}
func (nopRecorder) ObserveRequestDuration(time.Duration) {}
func (nopRecorder) CacheHit()                            {}
func (nopRecorder) Error()                               {}
func (nopRecorder) EmbeddingsCreated(int)                {}
func (nopRecorder) ObserveSimilarity(float64)            {}
