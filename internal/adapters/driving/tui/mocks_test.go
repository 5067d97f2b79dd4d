package tui

import (
	"context"
	"sync"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// mockRAGService implements driving.RAGService for testing.
type mockRAGService struct {
	mu        sync.Mutex
	result    *domain.QueryResult
	err       error
	lastQuery domain.Query
}

func (m *mockRAGService) Index(_ context.Context, _ []string, collection string) (*domain.IndexResult, error) {
	return &domain.IndexResult{Collection: collection}, nil
}

func (m *mockRAGService) Query(_ context.Context, q domain.Query) (*domain.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.QueryResult{Query: q.Text, Answer: "answer", Collection: q.Collection}, nil
}

func (m *mockRAGService) BatchQuery(_ context.Context, _ domain.BatchRequest) (*domain.BatchResult, error) {
	return &domain.BatchResult{}, nil
}

func (m *mockRAGService) StreamQuery(_ context.Context, _ domain.Query) <-chan domain.StreamChunk {
	ch := make(chan domain.StreamChunk)
	close(ch)
	return ch
}

func (m *mockRAGService) Benchmark(_ context.Context, collection string, _ int) (*domain.BenchmarkResult, error) {
	return &domain.BenchmarkResult{Collection: collection}, nil
}

// mockCollectionService implements driving.CollectionService for testing.
type mockCollectionService struct {
	mu          sync.Mutex
	collections []domain.CollectionSummary
	deleted     []string
}

func (m *mockCollectionService) List(_ context.Context) []domain.CollectionSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collections
}

func (m *mockCollectionService) Delete(_ context.Context, name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.collections {
		if c.Name == name {
			m.collections = append(m.collections[:i], m.collections[i+1:]...)
			m.deleted = append(m.deleted, name)
			return true
		}
	}
	return false
}

// mockStatsService implements driving.StatsService for testing.
type mockStatsService struct {
	stats domain.Stats
}

func (m *mockStatsService) Stats(_ context.Context) domain.Stats {
	return m.stats
}

func (m *mockStatsService) Health(_ context.Context) domain.HealthStatus {
	return domain.HealthStatus{Status: "healthy"}
}
