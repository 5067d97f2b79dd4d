// Command pagelens indexes PDFs and images and answers questions about them
// with a multimodal embedding model and a vision LLM.
//
// Build with the version stamped in:
//
//	go build -ldflags "-X github.com/custodia-labs/pagelens/internal/adapters/driving/cli.version=v0.1.0" ./cmd/pagelens
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/custodia-labs/pagelens/internal/adapters/driven/ai"
	"github.com/custodia-labs/pagelens/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pagelens/internal/adapters/driven/imaging"
	"github.com/custodia-labs/pagelens/internal/adapters/driven/metrics/prometheus"
	"github.com/custodia-labs/pagelens/internal/adapters/driven/rasterizer/poppler"
	"github.com/custodia-labs/pagelens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pagelens/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/pagelens/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/cli"
	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/core/services"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// cacheProbeTimeout bounds the startup ping of a remote cache backend.
const cacheProbeTimeout = 3 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := cli.LoadDotEnv(); err != nil {
		logger.Warn("%v", err)
	}

	baseDir, err := file.DefaultDir()
	if err != nil {
		return fmt.Errorf("resolve config directory: %w", err)
	}

	configStore, err := file.NewConfigStore(baseDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	var limiter *ai.RateLimiter
	if settings.Workers.RequestsPerSecond > 0 {
		limiter = ai.NewRateLimiter(settings.Workers.RequestsPerSecond)
	}
	providers := ai.Initialise(ctx, *settings, limiter)
	defer providers.Close()

	cacheStore, closeCache := openCache(ctx, settings.Cache, baseDir)
	defer closeCache()

	availability := providers.Availability
	availability.Cache = cacheStore != nil

	prompts, err := file.NewPromptStore(filepath.Join(baseDir, "prompts"))
	if err != nil {
		return fmt.Errorf("open prompts: %w", err)
	}

	recorder := prometheus.NewRecorder()
	loader := imaging.NewLoader(settings.Ingest.MaxPixels)
	pool := services.NewWorkerPool(settings.Workers.MaxConcurrency, settings.Workers.CallTimeout)

	rag := services.NewRAGService(
		services.NewIngestor(poppler.New(), underBase(baseDir, settings.Ingest.StorageDir), settings.Ingest.DPI),
		services.NewIndexer(loader, providers.EmbeddingService, pool, recorder),
		services.NewRetriever(providers.EmbeddingService, pool, recorder),
		services.NewAnswerGenerator(providers.GenerationService, loader, prompts, pool),
		services.NewQueryCache(cacheStore, settings.Cache.TTL),
		services.NewCollectionRegistry(memory.NewCollectionStore()),
		availability,
	)
	rag.SetMetricsRecorder(recorder)

	cli.SetServices(cli.Services{
		RAG:         rag,
		Collections: rag,
		Stats:       rag,
		Settings:    settingsService,
		Metrics:     recorder.Handler(),
		Server:      settings.Server,
		UploadDir:   filepath.Join(baseDir, "uploads"),
	})

	return cli.Execute(ctx)
}

// openCache builds the configured cache backend. A backend that cannot be
// reached falls back to memory so queries keep working. The returned store is
// nil when caching is disabled.
func openCache(ctx context.Context, cfg domain.CacheSettings, baseDir string) (driven.CacheStore, func()) {
	nop := func() {}
	fallback := func(err error) (driven.CacheStore, func()) {
		logger.Warn("cache backend %s unavailable, using memory: %v", cfg.Backend, err)
		return memory.NewCacheStore(cfg.MaxEntries, cfg.TTL), nop
	}

	switch cfg.Backend {
	case domain.CacheBackendNone:
		logger.Info("query cache disabled")
		return nil, nop

	case domain.CacheBackendSQLite:
		store, err := sqlite.NewStore(underBase(baseDir, cfg.URL))
		if err != nil {
			return fallback(err)
		}
		return store, closer(store)

	case domain.CacheBackendRedis:
		store, err := redis.NewCacheStore(cfg.URL)
		if err != nil {
			return fallback(err)
		}
		probeCtx, cancel := context.WithTimeout(ctx, cacheProbeTimeout)
		defer cancel()
		if err := store.Ping(probeCtx); err != nil {
			_ = store.Close()
			return fallback(err)
		}
		logger.Info("query cache: redis at %s", store.Addr())
		return store, closer(store)

	default:
		return memory.NewCacheStore(cfg.MaxEntries, cfg.TTL), nop
	}
}

func closer(c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.Warn("close cache: %v", err)
		}
	}
}

// underBase resolves a relative directory against the pagelens home.
// An empty dir stays empty so stores apply their own default.
func underBase(baseDir, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(baseDir, dir)
}
