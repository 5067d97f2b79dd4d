package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

var (
	statsJSON bool

	benchCollection string
	benchTopK       int
	benchJSON       bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection, cache and provider statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show service health",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Run the fixed benchmark questions against a collection",
	Long: `Asks five fixed questions in sequence and reports success rate and
latency. Cached answers count, so run it twice to see the cache at work.`,
	Args: cobra.NoArgs,
	RunE: runBenchmark,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	healthCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	benchmarkCmd.Flags().StringVarP(&benchCollection, "collection", "c", domain.DefaultCollection, "collection name")
	benchmarkCmd.Flags().IntVarP(&benchTopK, "top-k", "k", domain.DefaultTopK, "pages to retrieve (1-5)")
	benchmarkCmd.Flags().BoolVar(&benchJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statsCmd, healthCmd, benchmarkCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if statsService == nil {
		return errors.New("stats service not configured")
	}

	stats := statsService.Stats(cmd.Context())
	if statsJSON {
		return printJSON(cmd, stats)
	}

	avail := stats.ProviderAvailability
	m := stats.PerformanceMetrics
	cmd.Println("[Collections]")
	cmd.Printf("  Collections: %d\n", stats.CollectionsCount)
	cmd.Printf("  Documents:   %d\n", stats.TotalDocuments)
	cmd.Println()
	cmd.Println("[Queries]")
	cmd.Printf("  Total:          %d\n", m.TotalQueries)
	cmd.Printf("  Cache hits:     %d (%.1f%%)\n", m.CacheHits, stats.CacheHitRate)
	cmd.Printf("  Avg time:       %.3fs\n", m.AvgQueryTime)
	cmd.Printf("  Docs processed: %d\n", m.TotalDocuments)
	cmd.Println()
	cmd.Println("[Providers]")
	cmd.Printf("  Embeddings: %s\n", withState(avail.EmbeddingModelName(), avail.EmbeddingState()))
	cmd.Printf("  LLM:        %s\n", withState(avail.GenerationModelName(), avail.GenerationState()))
	cmd.Printf("  Cache:      %s\n", onOff(avail.Cache))
	for _, w := range avail.Warnings {
		cmd.Printf("  Warning: %s\n", w)
	}
	return nil
}

func runHealth(cmd *cobra.Command, _ []string) error {
	if statsService == nil {
		return errors.New("stats service not configured")
	}

	health := statsService.Health(cmd.Context())
	if statsJSON {
		return printJSON(cmd, health)
	}

	cmd.Printf("Status: %s\n", health.Status)
	cmd.Printf("  Vision RAG:     %s\n", onOff(health.Services.VisionRAG))
	cmd.Printf("  Cache:          %s\n", onOff(health.Services.Cache))
	cmd.Printf("  Embeddings API: %s\n", withState(onOff(health.Services.EmbeddingsAPI), health.Services.EmbeddingsStatus))
	cmd.Printf("  LLM API:        %s\n", withState(onOff(health.Services.LLMAPI), health.Services.LLMStatus))
	cmd.Printf("Uptime: %.0fs, queries: %d, cache hit rate: %s\n",
		health.Performance.Uptime, health.Performance.TotalRAGQueries, health.Performance.CacheHitRate)
	return nil
}

func runBenchmark(cmd *cobra.Command, _ []string) error {
	if ragService == nil {
		return errRAGNotConfigured
	}

	result, err := ragService.Benchmark(cmd.Context(), benchCollection, benchTopK)
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}
	if benchJSON {
		return printJSON(cmd, result)
	}

	for _, run := range result.Runs {
		mark := "ok  "
		if !run.Success {
			mark = "FAIL"
		}
		cmd.Printf("  %s %-44s %.3fs\n", mark, truncate(run.Query, 44), run.ResponseTime)
		if run.Error != "" {
			cmd.Printf("       %s\n", run.Error)
		}
	}
	s := result.Summary
	cmd.Println()
	cmd.Printf("%d/%d succeeded (%.0f%%) in %.2fs, %.3fs avg, %.2f queries/s\n",
		s.SuccessfulQueries, s.TotalQueries, s.SuccessRate, s.TotalTime, s.AvgQueryTime, s.QueriesPerSecond)
	return nil
}

// withState appends a provider status that explains a fallback.
func withState(label string, state domain.ProviderStatus) string {
	if state == "" || state == domain.ProviderReady {
		return label
	}
	return fmt.Sprintf("%s (%s)", label, state)
}

func onOff(b bool) string {
	if b {
		return "available"
	}
	return "demo"
}
