package httpapi

import (
	"context"
	"os"
	"sync"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// mockRAGService is a mock implementation of driving.RAGService.
type mockRAGService struct {
	mu sync.Mutex

	indexResult *domain.IndexResult
	indexErr    error
	indexed     map[string][]byte

	queryResult *domain.QueryResult
	queryErr    error
	lastQuery   domain.Query

	batchResult *domain.BatchResult
	batchErr    error
	lastBatch   domain.BatchRequest

	chunks []domain.StreamChunk

	benchResult   *domain.BenchmarkResult
	benchErr      error
	benchCalledAs struct {
		collection string
		topK       int
	}
}

func (m *mockRAGService) Index(_ context.Context, paths []string, collection string) (*domain.IndexResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexed = make(map[string][]byte)
	for _, p := range paths {
		data, _ := os.ReadFile(p)
		m.indexed[p] = data
	}
	if m.indexErr != nil {
		return nil, m.indexErr
	}
	res := *m.indexResult
	res.Collection = collection
	res.DocumentsProcessed = len(paths)
	return &res, nil
}

func (m *mockRAGService) Query(_ context.Context, q domain.Query) (*domain.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery = q
	return m.queryResult, m.queryErr
}

func (m *mockRAGService) BatchQuery(_ context.Context, req domain.BatchRequest) (*domain.BatchResult, error) {
	m.lastBatch = req
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	return m.batchResult, nil
}

func (m *mockRAGService) StreamQuery(_ context.Context, q domain.Query) <-chan domain.StreamChunk {
	m.lastQuery = q
	ch := make(chan domain.StreamChunk, len(m.chunks))
	for _, c := range m.chunks {
		ch <- c
	}
	close(ch)
	return ch
}

func (m *mockRAGService) Benchmark(_ context.Context, collection string, topK int) (*domain.BenchmarkResult, error) {
	m.benchCalledAs.collection = collection
	m.benchCalledAs.topK = topK
	return m.benchResult, m.benchErr
}

// mockCollectionService is a mock implementation of driving.CollectionService.
type mockCollectionService struct {
	summaries []domain.CollectionSummary
	deleted   []string
}

func (m *mockCollectionService) List(_ context.Context) []domain.CollectionSummary {
	return m.summaries
}

func (m *mockCollectionService) Delete(_ context.Context, name string) bool {
	for _, s := range m.summaries {
		if s.Name == name {
			m.deleted = append(m.deleted, name)
			return true
		}
	}
	return false
}

// mockStatsService is a mock implementation of driving.StatsService.
type mockStatsService struct {
	stats  domain.Stats
	health domain.HealthStatus
}

func (m *mockStatsService) Stats(_ context.Context) domain.Stats {
	return m.stats
}

func (m *mockStatsService) Health(_ context.Context) domain.HealthStatus {
	return m.health
}
