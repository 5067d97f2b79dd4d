package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// Ensure RAGService implements the driving interfaces.
var (
	_ driving.RAGService        = (*RAGService)(nil)
	_ driving.CollectionService = (*RAGService)(nil)
	_ driving.StatsService      = (*RAGService)(nil)
)

var errNoCollections = fmt.Errorf("%w: No collections found. Upload documents first.", domain.ErrInvalidInput)

// streamSteps are the progress messages emitted before a streamed answer.
var streamSteps = []string{
	"Analyzing documents...",
	"Finding relevant context...",
	"Generating comprehensive answer...",
	"Final answer based on document analysis",
}

// defaultStreamDelay paces the progress messages of a streamed query.
const defaultStreamDelay = 500 * time.Millisecond

// RAGService ties ingestion, retrieval, generation and caching together.
type RAGService struct {
	ingestor     *Ingestor
	indexer      *Indexer
	retriever    *Retriever
	answerer     *AnswerGenerator
	cache        *QueryCache
	registry     *CollectionRegistry
	tracker      *MetricsTracker
	recorder     driven.MetricsRecorder
	availability domain.ProviderAvailability

	started     time.Time
	now         func() time.Time
	streamDelay time.Duration
}

// NewRAGService creates the pipeline service.
func NewRAGService(
	ingestor *Ingestor,
	indexer *Indexer,
	retriever *Retriever,
	answerer *AnswerGenerator,
	cache *QueryCache,
	registry *CollectionRegistry,
	availability domain.ProviderAvailability,
) *RAGService {
	return &RAGService{
		ingestor:     ingestor,
		indexer:      indexer,
		retriever:    retriever,
		answerer:     answerer,
		cache:        cache,
		registry:     registry,
		tracker:      NewMetricsTracker(),
		recorder:     nopRecorder{},
		availability: availability,
		started:      time.Now(),
		now:          time.Now,
		streamDelay:  defaultStreamDelay,
	}
}

// SetMetricsRecorder sets the exporter that receives pipeline measurements.
func (s *RAGService) SetMetricsRecorder(recorder driven.MetricsRecorder) {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	s.recorder = recorder
}

// Availability returns the provider availability the service was built with.
func (s *RAGService) Availability() domain.ProviderAvailability {
	return s.availability
}

// Index ingests the files, embeds every page and registers the collection.
func (s *RAGService) Index(ctx context.Context, paths []string, collection string) (*domain.IndexResult, error) {
	if collection == "" {
		collection = domain.DefaultCollection
	}
	logger.Section("Index")
	logger.Debug("Collection %q, %d file(s)", collection, len(paths))

	start := s.now()

	ingested, err := s.ingestor.Ingest(ctx, paths, collection)
	if err != nil {
		return nil, err
	}

	indexed, err := s.indexer.Embed(ctx, ingested.Items)
	if err != nil {
		ingested.Discard()
		return nil, fmt.Errorf("embed collection %q: %w", collection, err)
	}

	col := &domain.Collection{
		Name:          collection,
		Items:         indexed.Items,
		Vectors:       indexed.Vectors,
		Dimensions:    indexed.Dimensions,
		CreatedAt:     s.now().UTC(),
		DocumentCount: len(paths),
		TotalPages:    ingested.TotalPages,
		Dir:           ingested.Dir,
	}
	if err := s.registry.Register(col); err != nil {
		ingested.Discard()
		return nil, fmt.Errorf("register collection %q: %w", collection, err)
	}
	s.tracker.RecordIngestion(len(paths))

	logger.Info("Indexed %d page(s) into %q (%d embedding(s))", ingested.TotalPages, collection, len(indexed.Vectors))
	return &domain.IndexResult{
		Collection:         collection,
		DocumentsProcessed: len(paths),
		TotalPages:         ingested.TotalPages,
		EmbeddingsCount:    len(indexed.Vectors),
		ProcessingTime:     s.now().Sub(start).Seconds(),
		CollectionSize:     col.Len(),
	}, nil
}

// Query answers one question, serving from the cache when possible.
func (s *RAGService) Query(ctx context.Context, q domain.Query) (*domain.QueryResult, error) {
	return s.query(ctx, q, true)
}

// query runs the pipeline for a validated query. Every attempt that passes
// validation is counted exactly once, whatever its outcome.
func (s *RAGService) query(ctx context.Context, q domain.Query, useCache bool) (result *domain.QueryResult, err error) {
	q = q.Normalise()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	logger.Section("Query")
	logger.Debug("Query: %q (collection %q, top_k %d)", q.Text, q.Collection, q.TopK)

	start := s.now()
	cacheHit := false
	s.recorder.QueryStatus(q.Collection, driven.QueryStatusProcessing)
	defer func() {
		latency := s.now().Sub(start)
		s.tracker.RecordQuery(latency, cacheHit)
		s.recorder.ObserveRequestDuration(latency)
		switch {
		case err != nil:
			s.recorder.QueryStatus(q.Collection, driven.QueryStatusFailed)
			s.recorder.Error()
		case cacheHit:
			s.recorder.CacheHit()
			s.recorder.QueryStatus(q.Collection, driven.QueryStatusSuccess)
		default:
			s.recorder.QueryStatus(q.Collection, driven.QueryStatusSuccess)
		}
	}()

	fp := domain.Fingerprint(q.Collection, q.Text)
	if useCache {
		if cached, ok := s.cache.Lookup(ctx, fp); ok {
			cacheHit = true
			cached.FromCache = true
			cached.CacheRetrievalTime = s.now().Sub(start).Seconds()
			logger.Debug("Cache hit %s", fp)
			return cached, nil
		}
	}

	col, release, err := s.registry.Acquire(q.Collection)
	defer release()
	if err != nil {
		return nil, err
	}

	retrieved, err := s.retriever.Retrieve(ctx, q.Text, col, q.TopK)
	if err != nil {
		return nil, err
	}
	best, ok := retrieved.Best()
	if !ok {
		return nil, &domain.NotFoundError{Collection: q.Collection, Reason: domain.NoDocuments}
	}

	var extra []domain.ItemRef
	if q.IncludeContext {
		for _, item := range retrieved.Context(domain.MaxContextImages) {
			extra = append(extra, item.Item)
		}
	}

	answer, err := s.answerer.Answer(ctx, q.Text, best.Item, extra)
	if err != nil {
		return nil, err
	}

	docs := make([]domain.ContextDocument, len(retrieved.Items))
	for i, item := range retrieved.Items {
		docs[i] = domain.ContextDocument{Document: item.Item.Filename(), Similarity: item.Score}
	}

	result = &domain.QueryResult{
		Query:            q.Text,
		Answer:           answer,
		SourceDocument:   best.Item.Filename(),
		SimilarityScore:  best.Score,
		ContextDocuments: docs,
		Collection:       q.Collection,
		ProcessingTime:   s.now().Sub(start).Seconds(),
		SystemInfo: domain.SystemInfo{
			EmbeddingsModel: s.availability.EmbeddingModelName(),
			LLMModel:        s.availability.GenerationModelName(),
			TopKRetrieved:   retrieved.Len(),
		},
	}
	if useCache {
		s.cache.Store(ctx, fp, result)
	}
	return result, nil
}

// BatchQuery answers every question of req concurrently. Context images are
// not attached and the cache is bypassed.
func (s *RAGService) BatchQuery(ctx context.Context, req domain.BatchRequest) (*domain.BatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Collection == "" {
		req.Collection = domain.DefaultCollection
	}
	if req.TopK == 0 {
		req.TopK = domain.DefaultTopK
	}

	start := s.now()
	results := make([]domain.BatchItem, len(req.Queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(domain.MaxBatchSize)
	for i, text := range req.Queries {
		g.Go(func() error {
			res, err := s.query(gctx, domain.Query{
				Text:       text,
				Collection: req.Collection,
				TopK:       req.TopK,
			}, false)
			if err != nil {
				results[i] = domain.BatchItem{Error: err.Error()}
				return nil
			}
			results[i] = domain.BatchItem{QueryResult: res}
			return nil
		})
	}
	_ = g.Wait()

	total := s.now().Sub(start).Seconds()
	return &domain.BatchResult{
		BatchSize:           len(req.Queries),
		Results:             results,
		TotalProcessingTime: total,
		AvgTimePerQuery:     total / float64(len(req.Queries)),
	}, nil
}

// StreamQuery answers q while reporting progress. The channel receives the
// progress messages, then a final chunk carrying the result or the error.
func (s *RAGService) StreamQuery(ctx context.Context, q domain.Query) <-chan domain.StreamChunk {
	out := make(chan domain.StreamChunk, len(streamSteps))

	go func() {
		defer close(out)

		type outcome struct {
			res *domain.QueryResult
			err error
		}
		done := make(chan outcome, 1)
		go func() {
			res, err := s.Query(ctx, q)
			done <- outcome{res, err}
		}()

		steps := len(streamSteps)
		for i := 0; i < steps-1; i++ {
			if !s.emit(ctx, out, domain.StreamChunk{
				ChunkID:   i,
				Content:   streamSteps[i],
				Progress:  float64(i+1) / float64(steps),
				Timestamp: s.now().UTC(),
			}) {
				return
			}
			select {
			case <-time.After(s.streamDelay):
			case <-ctx.Done():
				return
			}
		}

		var o outcome
		select {
		case o = <-done:
		case <-ctx.Done():
			return
		}

		final := domain.StreamChunk{
			ChunkID:   steps - 1,
			Content:   streamSteps[steps-1],
			Progress:  1,
			Timestamp: s.now().UTC(),
			Result:    o.res,
		}
		if o.err != nil {
			final.Content = ""
			final.Result = nil
			final.Error = o.err.Error()
		}
		s.emit(ctx, out, final)
	}()

	return out
}

func (s *RAGService) emit(ctx context.Context, out chan<- domain.StreamChunk, chunk domain.StreamChunk) bool {
	select {
	case out <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

// Benchmark runs the fixed benchmark questions one after another. When the
// named collection is absent the first registered collection is used.
func (s *RAGService) Benchmark(ctx context.Context, collection string, topK int) (*domain.BenchmarkResult, error) {
	col, err := s.registry.Resolve(collection)
	if err != nil {
		return nil, err
	}
	if topK == 0 {
		topK = domain.DefaultTopK
	}
	if col.Name != collection {
		logger.Debug("Collection %q not found, benchmarking %q", collection, col.Name)
	}

	start := s.now()
	runs := make([]domain.BenchmarkRun, 0, len(domain.BenchmarkQueries))
	var ok int
	var okTime float64
	for _, text := range domain.BenchmarkQueries {
		qStart := s.now()
		q := domain.NewQuery(text)
		q.Collection = col.Name
		q.TopK = topK

		res, err := s.query(ctx, q, false)
		elapsed := s.now().Sub(qStart).Seconds()
		if err != nil {
			runs = append(runs, domain.BenchmarkRun{Query: text, ResponseTime: elapsed, Error: err.Error()})
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			continue
		}
		ok++
		okTime += elapsed
		runs = append(runs, domain.BenchmarkRun{
			Query:           text,
			Success:         true,
			ResponseTime:    elapsed,
			AnswerLength:    len(res.Answer),
			SimilarityScore: res.SimilarityScore,
		})
	}

	total := s.now().Sub(start).Seconds()
	summary := domain.BenchmarkSummary{
		TotalQueries:      len(domain.BenchmarkQueries),
		SuccessfulQueries: ok,
		SuccessRate:       float64(ok) / float64(len(domain.BenchmarkQueries)) * 100,
		TotalTime:         total,
	}
	if ok > 0 {
		summary.AvgQueryTime = okTime / float64(ok)
	}
	if total > 0 {
		summary.QueriesPerSecond = float64(ok) / total
	}

	return &domain.BenchmarkResult{Collection: col.Name, Summary: summary, Runs: runs}, nil
}

// List returns a summary of every collection ordered by name.
func (s *RAGService) List(_ context.Context) []domain.CollectionSummary {
	return s.registry.Summaries()
}

// Delete removes a collection. Cached answers for it expire on their own.
func (s *RAGService) Delete(_ context.Context, name string) bool {
	deleted := s.registry.Delete(name)
	if deleted {
		logger.Info("Deleted collection %q", name)
	}
	return deleted
}

// Stats returns collection, metric and provider information.
func (s *RAGService) Stats(_ context.Context) domain.Stats {
	perf := s.tracker.Snapshot()
	return domain.Stats{
		Ready:                !s.availability.DemoMode(),
		CollectionsCount:     s.registry.Len(),
		TotalDocuments:       perf.TotalDocuments,
		PerformanceMetrics:   perf,
		CacheHitRate:         perf.CacheHitRate(),
		ProviderAvailability: s.availability.WithStates(),
	}
}

// Health returns a liveness summary.
func (s *RAGService) Health(ctx context.Context) domain.HealthStatus {
	perf := s.tracker.Snapshot()
	return domain.HealthStatus{
		Status: "healthy",
		Services: domain.HealthServices{
			VisionRAG:        true,
			Cache:            s.cache.Ping(ctx),
			EmbeddingsAPI:    s.availability.Embedding,
			LLMAPI:           s.availability.Generation,
			EmbeddingsStatus: s.availability.EmbeddingState(),
			LLMStatus:        s.availability.GenerationState(),
		},
		Performance: domain.HealthPerformance{
			Uptime:          s.now().Sub(s.started).Seconds(),
			TotalRAGQueries: perf.TotalQueries,
			CacheHitRate:    fmt.Sprintf("%.1f%%", perf.CacheHitRate()),
		},
	}
}
