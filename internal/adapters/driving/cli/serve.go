package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/pagelens/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the RAG operations over HTTP:

  POST   /rag/upload-documents   multipart "files" plus collection_name
  POST   /rag/query              JSON or form: query, collection_name, top_k, include_context
  GET    /rag/query/stream       server-sent progress events
  POST   /rag/batch-query        JSON: queries, collection_name, top_k
  GET    /rag/collections
  DELETE /rag/collections/{name}
  GET    /rag/benchmark
  GET    /health, /stats, /metrics

The listen address defaults to server.addr from settings.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	server, err := httpapi.NewServer(httpapi.Config{
		RAG:            ragService,
		Collections:    collectionService,
		Stats:          statsService,
		Metrics:        metricsHandler,
		AllowedOrigins: serverSettings.AllowedOrigins,
		UploadDir:      uploadDir,
	})
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = serverSettings.Addr
	}
	logger.Info("HTTP API listening on %s", addr)
	fmt.Fprintf(cmd.OutOrStdout(), "pagelens API listening on %s\n", addr)
	return server.Run(cmd.Context(), addr)
}
