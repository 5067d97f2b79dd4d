// Package prometheus exports pipeline metrics in the Prometheus format.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.MetricsRecorder = (*Recorder)(nil)

var (
	durationBuckets   = []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0}
	similarityBuckets = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
)

// Recorder owns a private registry holding the RAG metrics plus the Go
// runtime and process collectors.
type Recorder struct {
	registry   *prometheus.Registry
	queries    *prometheus.CounterVec
	duration   prometheus.Histogram
	cacheHits  prometheus.Counter
	errors     prometheus.Counter
	embeddings prometheus.Counter
	similarity prometheus.Histogram
}

// NewRecorder creates and registers all metrics.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rag_queries_total",
			Help: "Total RAG queries processed",
		}, []string{"collection", "status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rag_request_duration_seconds",
			Help:    "RAG request processing time",
			Buckets: durationBuckets,
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rag_cache_hits_total",
			Help: "RAG cache hits",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rag_errors_total",
			Help: "RAG processing errors",
		}),
		embeddings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "document_embeddings_created_total",
			Help: "Document embeddings created",
		}),
		similarity: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rag_similarity_scores",
			Help:    "RAG similarity scores distribution",
			Buckets: similarityBuckets,
		}),
	}

	r.registry.MustRegister(
		r.queries, r.duration, r.cacheHits, r.errors, r.embeddings, r.similarity,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry returns the registry the metrics live in.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the metrics in the text exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// QueryStatus counts a query in the given status for a collection.
func (r *Recorder) QueryStatus(collection, status string) {
	r.queries.WithLabelValues(collection, status).Inc()
}

// ObserveRequestDuration records the wall time of one query request.
func (r *Recorder) ObserveRequestDuration(d time.Duration) {
	r.duration.Observe(d.Seconds())
}

// CacheHit counts a query answered from the cache.
func (r *Recorder) CacheHit() {
	r.cacheHits.Inc()
}

// Error counts a failed query.
func (r *Recorder) Error() {
	r.errors.Inc()
}

// EmbeddingsCreated counts document embeddings produced by ingestion.
func (r *Recorder) EmbeddingsCreated(n int) {
	if n > 0 {
		r.embeddings.Add(float64(n))
	}
}

// ObserveSimilarity records the score of a retrieved item.
func (r *Recorder) ObserveSimilarity(score float64) {
	r.similarity.Observe(score)
}
