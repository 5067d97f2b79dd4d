package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

var (
	queryCollection string
	queryTopK       int
	queryNoContext  bool
	queryJSON       bool
	queryStream     bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question about a collection",
	Long: `Retrieves the page most similar to the question and asks a vision LLM to
answer from it. Answers are cached for ten minutes per collection.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

var (
	batchFile       string
	batchCollection string
	batchTopK       int
	batchJSON       bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Answer a batch of questions concurrently",
	Long: `Answers up to 20 questions against one collection. The batch file is
YAML or JSON:

  collection_name: reports
  top_k: 1
  queries:
    - What is the revenue?
    - Who signed the contract?

Use "-" to read the batch from stdin.`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	queryCmd.Flags().StringVarP(&queryCollection, "collection", "c", domain.DefaultCollection, "collection name")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", domain.DefaultTopK, "pages to retrieve (1-5)")
	queryCmd.Flags().BoolVar(&queryNoContext, "no-context", false, "omit the context page list")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output result as JSON")
	queryCmd.Flags().BoolVar(&queryStream, "stream", false, "print progress chunks as they arrive")
	rootCmd.AddCommand(queryCmd)

	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "YAML or JSON batch file")
	batchCmd.Flags().StringVarP(&batchCollection, "collection", "c", "", "override the file's collection")
	batchCmd.Flags().IntVarP(&batchTopK, "top-k", "k", 0, "override the file's top_k")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "output result as JSON")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errRAGNotConfigured
	}

	q := domain.NewQuery(args[0])
	q.Collection = queryCollection
	q.TopK = queryTopK
	q.IncludeContext = !queryNoContext

	if queryStream {
		return streamQuery(cmd, q)
	}

	result, err := ragService.Query(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return printJSON(cmd, result)
	}
	printQueryResult(cmd, result)
	return nil
}

func streamQuery(cmd *cobra.Command, q domain.Query) error {
	var final *domain.QueryResult
	for chunk := range ragService.StreamQuery(cmd.Context(), q) {
		if chunk.Error != "" {
			return fmt.Errorf("query failed: %s", chunk.Error)
		}
		if chunk.Result != nil {
			final = chunk.Result
			continue
		}
		cmd.Printf("[%3.0f%%] %s\n", chunk.Progress*100, chunk.Content)
	}
	if final == nil {
		return errors.New("stream ended without a result")
	}
	cmd.Println()
	if queryJSON {
		return printJSON(cmd, final)
	}
	printQueryResult(cmd, final)
	return nil
}

func printQueryResult(cmd *cobra.Command, r *domain.QueryResult) {
	cmd.Println(r.Answer)
	cmd.Println()
	cmd.Printf("Source: %s (similarity %.3f)\n", r.SourceDocument, r.SimilarityScore)
	for _, doc := range r.ContextDocuments {
		if doc.Document == r.SourceDocument {
			continue
		}
		cmd.Printf("  also: %s (%.3f)\n", doc.Document, doc.Similarity)
	}
	if r.FromCache {
		cmd.Printf("Served from cache in %.3fs\n", r.CacheRetrievalTime)
	} else {
		cmd.Printf("Answered in %.2fs by %s\n", r.ProcessingTime, r.SystemInfo.LLMModel)
	}
}

func runBatch(cmd *cobra.Command, _ []string) error {
	if ragService == nil {
		return errRAGNotConfigured
	}

	req, err := readBatchFile(cmd, batchFile)
	if err != nil {
		return err
	}
	if batchCollection != "" {
		req.Collection = batchCollection
	}
	if batchTopK != 0 {
		req.TopK = batchTopK
	}

	result, err := ragService.BatchQuery(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	if batchJSON {
		return printJSON(cmd, result)
	}

	for i, item := range result.Results {
		question := ""
		if i < len(req.Queries) {
			question = req.Queries[i]
		}
		cmd.Printf("[%d] %s\n", i+1, question)
		if item.Failed() {
			cmd.Printf("    error: %s\n\n", item.Error)
			continue
		}
		cmd.Printf("    %s\n", truncate(strings.ReplaceAll(item.Answer, "\n", " "), 200))
		cmd.Printf("    source: %s (%.3f)\n\n", item.SourceDocument, item.SimilarityScore)
	}
	cmd.Printf("%d queries in %.2fs (%.2fs avg)\n",
		result.BatchSize, result.TotalProcessingTime, result.AvgTimePerQuery)
	return nil
}

// readBatchFile decodes a batch request. JSON files are recognised by
// extension; everything else, including stdin, is parsed as YAML, which also
// accepts JSON.
func readBatchFile(cmd *cobra.Command, path string) (domain.BatchRequest, error) {
	var req domain.BatchRequest

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return req, fmt.Errorf("read batch file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &req)
	} else {
		err = yaml.Unmarshal(data, &req)
	}
	if err != nil {
		return req, fmt.Errorf("%w: parse batch file: %v", domain.ErrInvalidInput, err)
	}
	return req, nil
}
