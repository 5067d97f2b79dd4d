package cli

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// mockRAGService implements driving.RAGService for testing.
type mockRAGService struct {
	mu sync.Mutex

	indexErr   error
	queryErr   error
	lastPaths  []string
	lastIndex  string
	lastQuery  domain.Query
	lastBatch  domain.BatchRequest
	benchCalls []string
}

func (m *mockRAGService) Index(_ context.Context, paths []string, collection string) (*domain.IndexResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastPaths = paths
	m.lastIndex = collection
	if m.indexErr != nil {
		return nil, m.indexErr
	}
	return &domain.IndexResult{
		Collection:         collection,
		DocumentsProcessed: len(paths),
		TotalPages:         len(paths) * 2,
		EmbeddingsCount:    len(paths) * 2,
		ProcessingTime:     0.5,
		CollectionSize:     len(paths) * 2,
	}, nil
}

func (m *mockRAGService) Query(_ context.Context, q domain.Query) (*domain.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery = q
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return answerFor(q), nil
}

func answerFor(q domain.Query) *domain.QueryResult {
	r := &domain.QueryResult{
		Query:           q.Text,
		Answer:          "Answer to: " + q.Text,
		SourceDocument:  "report_page_1.png",
		SimilarityScore: 0.8,
		Collection:      q.Collection,
		ProcessingTime:  1.25,
		SystemInfo:      domain.SystemInfo{EmbeddingsModel: "demo", LLMModel: "demo", TopKRetrieved: q.TopK},
	}
	if q.IncludeContext {
		r.ContextDocuments = []domain.ContextDocument{
			{Document: "report_page_1.png", Similarity: 0.8},
			{Document: "report_page_2.png", Similarity: 0.4},
		}
	}
	return r
}

func (m *mockRAGService) BatchQuery(_ context.Context, req domain.BatchRequest) (*domain.BatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastBatch = req
	if err := req.Validate(); err != nil {
		return nil, err
	}
	res := &domain.BatchResult{BatchSize: len(req.Queries), TotalProcessingTime: 2, AvgTimePerQuery: 1}
	for _, text := range req.Queries {
		if text == "fail" {
			res.Results = append(res.Results, domain.BatchItem{Error: "provider error"})
			continue
		}
		res.Results = append(res.Results, domain.BatchItem{QueryResult: answerFor(domain.NewQuery(text))})
	}
	return res, nil
}

func (m *mockRAGService) StreamQuery(_ context.Context, q domain.Query) <-chan domain.StreamChunk {
	ch := make(chan domain.StreamChunk, 3)
	ch <- domain.StreamChunk{ChunkID: 0, Content: "Retrieving", Progress: 0.3}
	if m.queryErr != nil {
		ch <- domain.StreamChunk{ChunkID: 1, Error: m.queryErr.Error()}
	} else {
		ch <- domain.StreamChunk{ChunkID: 1, Content: "Generating", Progress: 0.6}
		ch <- domain.StreamChunk{ChunkID: 2, Progress: 1, Result: answerFor(q)}
	}
	close(ch)
	return ch
}

func (m *mockRAGService) Benchmark(_ context.Context, collection string, _ int) (*domain.BenchmarkResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.benchCalls = append(m.benchCalls, collection)
	if collection == "missing" {
		return nil, domain.ErrNotFound
	}
	return &domain.BenchmarkResult{
		Collection: collection,
		Summary: domain.BenchmarkSummary{
			TotalQueries: 2, SuccessfulQueries: 1, SuccessRate: 50, TotalTime: 1, AvgQueryTime: 0.5, QueriesPerSecond: 2,
		},
		Runs: []domain.BenchmarkRun{
			{Query: domain.BenchmarkQueries[0], Success: true, ResponseTime: 0.4},
			{Query: domain.BenchmarkQueries[1], Success: false, ResponseTime: 0.6, Error: "boom"},
		},
	}, nil
}

// mockCollectionService implements driving.CollectionService for testing.
type mockCollectionService struct {
	collections []domain.CollectionSummary
}

func (m *mockCollectionService) List(context.Context) []domain.CollectionSummary {
	return m.collections
}

func (m *mockCollectionService) Delete(_ context.Context, name string) bool {
	for i, c := range m.collections {
		if c.Name == name {
			m.collections = append(m.collections[:i], m.collections[i+1:]...)
			return true
		}
	}
	return false
}

// mockStatsService implements driving.StatsService for testing.
type mockStatsService struct{}

func (mockStatsService) Stats(context.Context) domain.Stats {
	return domain.Stats{
		Ready:            true,
		CollectionsCount: 2,
		TotalDocuments:   5,
		PerformanceMetrics: domain.PerformanceMetrics{
			TotalQueries: 4, CacheHits: 1, AvgQueryTime: 0.75, TotalDocuments: 5,
		},
		CacheHitRate: 25,
		ProviderAvailability: domain.ProviderAvailability{
			Generation: true, GenerationModel: "gemini-2.5-flash", Cache: true,
			Warnings: []string{"COHERE_API_KEY not set"},
		},
	}
}

func (mockStatsService) Health(context.Context) domain.HealthStatus {
	return domain.HealthStatus{
		Status: "healthy",
		Services: domain.HealthServices{
			VisionRAG: true, Cache: true,
			EmbeddingsStatus: domain.ProviderUnconfigured, LLMStatus: domain.ProviderUnreachable,
		},
		Performance: domain.HealthPerformance{Uptime: 42, TotalRAGQueries: 4, CacheHitRate: "25.0%"},
	}
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	values      map[string]string
	validateErr error
}

func newMockSettings() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings(), values: map[string]string{}}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetGenerationProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.Generation = domain.GenerationSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetValue(key, value string) error {
	if key == "bogus" {
		return errors.New("invalid input: unknown setting \"bogus\"")
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"embedding.provider", "cache.backend"}
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error  { return m.validateErr }
func (m *mockSettingsService) ValidateGenerationConfig() error { return m.validateErr }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	rag         *mockRAGService
	collections *mockCollectionService
	settings    *mockSettingsService
}

// setupTestServices installs mocks and resets every flag variable.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	ts := &testServices{
		rag: &mockRAGService{},
		collections: &mockCollectionService{collections: []domain.CollectionSummary{
			{Name: "default", DocumentCount: 1, TotalPages: 3},
			{Name: "reports", DocumentCount: 2, TotalPages: 10, SizeEstimate: 0.04},
		}},
		settings: newMockSettings(),
	}
	SetServices(Services{
		RAG:         ts.rag,
		Collections: ts.collections,
		Stats:       mockStatsService{},
		Settings:    ts.settings,
	})
	resetFlags()

	t.Cleanup(func() {
		SetServices(Services{})
		resetFlags()
		logger.SetVerbose(false)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return ts
}

func resetFlags() {
	verbose = false
	indexCollection, indexWatch, indexJSON = domain.DefaultCollection, false, false
	queryCollection, queryTopK, queryNoContext, queryJSON, queryStream = domain.DefaultCollection, domain.DefaultTopK, false, false, false
	batchFile, batchCollection, batchTopK, batchJSON = "", "", 0, false
	collectionsJSON = false
	statsJSON = false
	benchCollection, benchTopK, benchJSON = domain.DefaultCollection, domain.DefaultTopK, false
	serveAddr = ""
	tuiCollection = ""
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
