package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// demoScore is the similarity reported for the placeholder match.
const demoScore = 0.95

// Retriever finds the items most similar to a question.
type Retriever struct {
	embedder driven.EmbeddingService
	pool     *WorkerPool
	metrics  driven.MetricsRecorder
}

// NewRetriever creates a retriever. The embedder is optional (can be nil):
// without it the first item is returned as a placeholder match.
func NewRetriever(embedder driven.EmbeddingService, pool *WorkerPool, metrics driven.MetricsRecorder) *Retriever {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Retriever{
		embedder: embedder,
		pool:     pool,
		metrics:  metrics,
	}
}

// Retrieve returns up to topK items ordered by descending inner product with
// the query embedding. Equal scores keep collection order.
func (r *Retriever) Retrieve(
	ctx context.Context, text string, col *domain.Collection, topK int,
) (domain.RetrievalResult, error) {
	if col.IsEmpty() {
		return domain.RetrievalResult{}, &domain.NotFoundError{Collection: col.Name, Reason: domain.NoDocuments}
	}

	if r.embedder == nil {
		logger.Debug("Demo mode: returning first item of %q", col.Name)
		r.metrics.ObserveSimilarity(demoScore)
		return domain.RetrievalResult{Items: []domain.ScoredItem{
			{Item: col.Items[0], Index: 0, Score: demoScore},
		}}, nil
	}

	query, err := Do(ctx, r.pool, func(ctx context.Context) ([]float32, error) {
		vecs, err := r.embedder.Embed(ctx, driven.EmbedModeQuery, []driven.ContentItem{driven.TextContent(text)})
		if err != nil {
			return nil, err
		}
		if len(vecs) == 0 {
			return nil, fmt.Errorf("empty embedding response")
		}
		return vecs[0], nil
	})
	if err != nil {
		return domain.RetrievalResult{}, &domain.ProviderError{
			Provider: r.embedder.ModelName(), Op: "embed query", Err: err,
		}
	}
	normalize(query)

	ranked := rank(query, col.Vectors, topK)
	items := make([]domain.ScoredItem, len(ranked))
	for i, s := range ranked {
		items[i] = domain.ScoredItem{Item: col.Items[s.index], Index: s.index, Score: s.score}
		r.metrics.ObserveSimilarity(s.score)
	}

	if best, ok := (domain.RetrievalResult{Items: items}).Best(); ok {
		logger.Debug("Best match %s (score %.4f) of %d item(s)", best.Item.Filename(), best.Score, col.Len())
	}
	return domain.RetrievalResult{Items: items}, nil
}

type scored struct {
	index int
	score float64
}

// rank scores every vector against query and keeps the best topK.
func rank(query []float32, vectors [][]float32, topK int) []scored {
	all := make([]scored, len(vectors))
	for i, v := range vectors {
		all[i] = scored{index: i, score: dot(query, v)}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].score > all[j].score
	})

	if topK < 1 {
		topK = 1
	}
	if topK > len(all) {
		topK = len(all)
	}
	return all[:topK]
}
