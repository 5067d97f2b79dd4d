package services

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// DemoDimensions is the vector size used when no embedding provider is configured.
const DemoDimensions = 1024

// IndexedItems pairs the items that were embedded with their vectors.
// Items whose embedding failed are absent from both slices.
type IndexedItems struct {
	Items      []domain.ItemRef
	Vectors    [][]float32
	Dimensions int
}

// Indexer computes document embeddings for ingested items.
type Indexer struct {
	loader   driven.ImageLoader
	embedder driven.EmbeddingService
	pool     *WorkerPool
	metrics  driven.MetricsRecorder
	random   func() float32
}

// NewIndexer creates an indexer. The embedder is optional (can be nil): without
// it vectors are random placeholders.
func NewIndexer(
	loader driven.ImageLoader,
	embedder driven.EmbeddingService,
	pool *WorkerPool,
	metrics driven.MetricsRecorder,
) *Indexer {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Indexer{
		loader:   loader,
		embedder: embedder,
		pool:     pool,
		metrics:  metrics,
		random:   rand.Float32,
	}
}

// Embed returns one unit-length vector per item that could be embedded, in
// input order. Failed items are logged and dropped.
func (x *Indexer) Embed(ctx context.Context, items []domain.ItemRef) (*IndexedItems, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if x.embedder == nil {
		return x.embedDemo(items), nil
	}

	futures := make([]*Future[[]float32], len(items))
	for i, item := range items {
		futures[i] = Submit(ctx, x.pool, func(ctx context.Context) ([]float32, error) {
			return x.embedItem(ctx, item)
		})
	}

	out := &IndexedItems{}
	for i, f := range futures {
		vec, err := f.Wait(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("Skipping %s: %v", items[i].Filename(), err)
			continue
		}
		if out.Dimensions == 0 {
			out.Dimensions = len(vec)
		}
		if len(vec) != out.Dimensions {
			logger.Warn("Skipping %s: embedding has dimension %d, want %d",
				items[i].Filename(), len(vec), out.Dimensions)
			continue
		}
		out.Items = append(out.Items, items[i])
		out.Vectors = append(out.Vectors, normalize(vec))
	}

	x.metrics.EmbeddingsCreated(len(out.Vectors))
	logger.Debug("Embedded %d of %d item(s)", len(out.Vectors), len(items))
	return out, nil
}

func (x *Indexer) embedItem(ctx context.Context, item domain.ItemRef) ([]float32, error) {
	img, err := x.loader.Load(ctx, item.Path())
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}

	vecs, err := x.embedder.Embed(ctx, driven.EmbedModeDocument,
		[]driven.ContentItem{driven.ImageContent(img.DataURL())})
	if err != nil {
		return nil, &domain.ProviderError{Provider: x.embedder.ModelName(), Op: "embed document", Err: err}
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, &domain.ProviderError{
			Provider: x.embedder.ModelName(),
			Op:       "embed document",
			Err:      fmt.Errorf("empty embedding response"),
		}
	}
	return vecs[0], nil
}

func (x *Indexer) embedDemo(items []domain.ItemRef) *IndexedItems {
	out := &IndexedItems{
		Items:      append([]domain.ItemRef(nil), items...),
		Vectors:    make([][]float32, len(items)),
		Dimensions: DemoDimensions,
	}
	for i := range items {
		vec := make([]float32, DemoDimensions)
		for j := range vec {
			vec[j] = x.random()
		}
		out.Vectors[i] = normalize(vec)
	}
	x.metrics.EmbeddingsCreated(len(out.Vectors))
	logger.Debug("Demo mode: generated %d placeholder embedding(s)", len(items))
	return out
}
