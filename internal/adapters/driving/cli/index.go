package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/watcher"
	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/logger"
)

var (
	indexCollection string
	indexWatch      bool
	indexJSON       bool
)

var indexCmd = &cobra.Command{
	Use:   "index [paths...]",
	Short: "Index PDFs and images into a collection",
	Long: `Rasterizes every PDF page, copies images, embeds each page and registers
the result as a collection. Indexing a collection name again replaces it.

Supported files: .pdf, .png, .jpg, .jpeg, .gif, .bmp

With --watch a single directory argument is indexed and then re-indexed
whenever a supported file in it changes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVarP(&indexCollection, "collection", "c", domain.DefaultCollection, "collection name")
	indexCmd.Flags().BoolVarP(&indexWatch, "watch", "w", false, "watch a directory and re-index on change")
	indexCmd.Flags().BoolVar(&indexJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if ragService == nil {
		return errRAGNotConfigured
	}

	if indexWatch {
		return runIndexWatch(cmd, args)
	}

	paths, err := expandPaths(args)
	if err != nil {
		return err
	}

	result, err := ragService.Index(cmd.Context(), paths, indexCollection)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	if indexJSON {
		return printJSON(cmd, result)
	}
	printIndexResult(cmd, result)
	return nil
}

func runIndexWatch(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("--watch takes exactly one directory, got %d arguments", len(args))
	}
	info, err := os.Stat(args[0])
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch: %s is not a directory", args[0])
	}

	w := watcher.New(args[0], indexCollection, ragService)
	w.OnIndexed = func(result *domain.IndexResult) {
		printIndexResult(cmd, result)
	}
	cmd.Printf("Watching %s for changes (ctrl+c to stop)\n", args[0])
	return w.Run(cmd.Context())
}

// expandPaths replaces directory arguments with the supported files they contain.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %s does not exist", domain.ErrInvalidInput, arg)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		files, err := watcher.Scan(arg)
		if err != nil {
			return nil, err
		}
		logger.Debug("index: %s expanded to %d files", arg, len(files))
		paths = append(paths, files...)
	}
	return paths, nil
}

func printIndexResult(cmd *cobra.Command, result *domain.IndexResult) {
	cmd.Printf("Indexed collection %q\n", result.Collection)
	cmd.Printf("  Documents:  %d\n", result.DocumentsProcessed)
	cmd.Printf("  Pages:      %d\n", result.TotalPages)
	cmd.Printf("  Embeddings: %d\n", result.EmbeddingsCount)
	cmd.Printf("  Time:       %.2fs\n", result.ProcessingTime)
}
