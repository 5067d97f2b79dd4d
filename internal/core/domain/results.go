package domain

import "time"

// IndexResult is returned by an ingestion call.
type IndexResult struct {
	Collection         string  `json:"collection"`
	DocumentsProcessed int     `json:"documents_processed"`
	TotalPages         int     `json:"total_pages"`
	EmbeddingsCount    int     `json:"embeddings_count"`
	ProcessingTime     float64 `json:"processing_time"`
	CollectionSize     int     `json:"collection_size"`
}

// ContextDocument is one retrieved page listed alongside an answer.
type ContextDocument struct {
	Document   string  `json:"document"`
	Similarity float64 `json:"similarity"`
}

// SystemInfo describes which models produced an answer.
type SystemInfo struct {
	EmbeddingsModel string `json:"embeddings_model"`
	LLMModel        string `json:"llm_model"`
	TopKRetrieved   int    `json:"top_k_retrieved"`
}

// QueryResult is the answer record for one query.
type QueryResult struct {
	Query              string            `json:"query"`
	Answer             string            `json:"answer"`
	SourceDocument     string            `json:"source_document"`
	SimilarityScore    float64           `json:"similarity_score"`
	ContextDocuments   []ContextDocument `json:"context_documents"`
	Collection         string            `json:"collection"`
	ProcessingTime     float64           `json:"processing_time"`
	FromCache          bool              `json:"from_cache"`
	CacheRetrievalTime float64           `json:"cache_retrieval_time,omitempty"`
	SystemInfo         SystemInfo        `json:"system_info"`
}

// BatchItem holds either a result or the error for one query of a batch.
type BatchItem struct {
	*QueryResult
	Error string `json:"error,omitempty"`
}

// Failed reports whether this slot holds an error.
func (b BatchItem) Failed() bool {
	return b.Error != ""
}

// BatchResult is returned by a batch query. Results are in request order.
type BatchResult struct {
	BatchSize           int         `json:"batch_size"`
	Results             []BatchItem `json:"results"`
	TotalProcessingTime float64     `json:"total_processing_time"`
	AvgTimePerQuery     float64     `json:"avg_time_per_query"`
}

// BenchmarkQueries are the fixed questions used by Benchmark.
var BenchmarkQueries = []string{
	"What is the main topic of this document?",
	"Summarize the key points",
	"What are the conclusions?",
	"Find specific data or numbers",
	"Explain the methodology",
}

// BenchmarkRun is the outcome of one benchmark query.
type BenchmarkRun struct {
	Query           string  `json:"query"`
	Success         bool    `json:"success"`
	ResponseTime    float64 `json:"response_time"`
	AnswerLength    int     `json:"answer_length,omitempty"`
	SimilarityScore float64 `json:"similarity_score,omitempty"`
	Error           string  `json:"error,omitempty"`
}

// BenchmarkSummary aggregates a benchmark.
type BenchmarkSummary struct {
	TotalQueries      int     `json:"total_queries"`
	SuccessfulQueries int     `json:"successful_queries"`
	SuccessRate       float64 `json:"success_rate"`
	TotalTime         float64 `json:"total_time"`
	AvgQueryTime      float64 `json:"avg_query_time"`
	QueriesPerSecond  float64 `json:"queries_per_second"`
}

// BenchmarkResult is returned by Benchmark.
type BenchmarkResult struct {
	Collection string           `json:"collection"`
	Summary    BenchmarkSummary `json:"benchmark_summary"`
	Runs       []BenchmarkRun   `json:"detailed_results"`
}

// Stats is the aggregate view returned by the stats operation.
type Stats struct {
	Ready                bool                 `json:"ready"`
	CollectionsCount     int                  `json:"collections_count"`
	TotalDocuments       int                  `json:"total_documents"`
	PerformanceMetrics   PerformanceMetrics   `json:"performance_metrics"`
	CacheHitRate         float64              `json:"cache_hit_rate"`
	ProviderAvailability ProviderAvailability `json:"provider_availability"`
}

// HealthServices reports which collaborators are live.
type HealthServices struct {
	VisionRAG        bool           `json:"vision_rag"`
	Cache            bool           `json:"cache"`
	EmbeddingsAPI    bool           `json:"embeddings_api"`
	LLMAPI           bool           `json:"llm_api"`
	EmbeddingsStatus ProviderStatus `json:"embeddings_status,omitempty"`
	LLMStatus        ProviderStatus `json:"llm_status,omitempty"`
}

// HealthPerformance is the performance block of a health report.
type HealthPerformance struct {
	Uptime          float64 `json:"uptime"`
	TotalRAGQueries int     `json:"total_rag_queries"`
	CacheHitRate    string  `json:"cache_hit_rate"`
}

// HealthStatus is returned by the health operation.
type HealthStatus struct {
	Status      string            `json:"status"`
	Services    HealthServices    `json:"services"`
	Performance HealthPerformance `json:"performance"`
}

// StreamChunk is one event of a streamed query.
type StreamChunk struct {
	ChunkID   int          `json:"chunk_id"`
	Content   string       `json:"content,omitempty"`
	Progress  float64      `json:"progress"`
	Timestamp time.Time    `json:"timestamp"`
	Result    *QueryResult `json:"result,omitempty"`
	Error     string       `json:"error,omitempty"`
}
