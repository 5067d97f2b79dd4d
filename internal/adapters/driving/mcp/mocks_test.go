package mcp

import (
	"context"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// mockRAGService is a mock implementation of driving.RAGService.
type mockRAGService struct {
	result    *domain.QueryResult
	err       error
	lastQuery domain.Query
}

func (m *mockRAGService) Index(_ context.Context, _ []string, _ string) (*domain.IndexResult, error) {
	return nil, m.err
}

func (m *mockRAGService) Query(_ context.Context, q domain.Query) (*domain.QueryResult, error) {
	m.lastQuery = q
	return m.result, m.err
}

func (m *mockRAGService) BatchQuery(_ context.Context, _ domain.BatchRequest) (*domain.BatchResult, error) {
	return nil, m.err
}

func (m *mockRAGService) StreamQuery(_ context.Context, _ domain.Query) <-chan domain.StreamChunk {
	ch := make(chan domain.StreamChunk)
	close(ch)
	return ch
}

func (m *mockRAGService) Benchmark(_ context.Context, _ string, _ int) (*domain.BenchmarkResult, error) {
	return nil, m.err
}

// mockCollectionService is a mock implementation of driving.CollectionService.
type mockCollectionService struct {
	summaries []domain.CollectionSummary
}

func (m *mockCollectionService) List(_ context.Context) []domain.CollectionSummary {
	return m.summaries
}

func (m *mockCollectionService) Delete(_ context.Context, _ string) bool {
	return false
}

// mockStatsService is a mock implementation of driving.StatsService.
type mockStatsService struct {
	stats domain.Stats
}

func (m *mockStatsService) Stats(_ context.Context) domain.Stats {
	return m.stats
}

func (m *mockStatsService) Health(_ context.Context) domain.HealthStatus {
	return domain.HealthStatus{Status: "healthy"}
}
