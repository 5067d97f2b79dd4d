// Package cli provides the cobra command tree for pagelens.
// It is a driving adapter: commands call core services through driving ports
// injected with SetServices before Execute.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services holds the driving ports and wiring the commands need.
type Services struct {
	RAG         driving.RAGService
	Collections driving.CollectionService
	Stats       driving.StatsService
	Settings    driving.SettingsService

	// Metrics serves the Prometheus exposition on the HTTP API.
	Metrics http.Handler

	// Server configures `pagelens serve`.
	Server domain.ServerSettings

	// UploadDir stages HTTP uploads before indexing.
	UploadDir string
}

var (
	ragService        driving.RAGService
	collectionService driving.CollectionService
	statsService      driving.StatsService
	settingsService   driving.SettingsService
	metricsHandler    http.Handler
	serverSettings    = domain.DefaultAppSettings().Server
	uploadDir         string
)

var verbose bool

var errRAGNotConfigured = errors.New("rag service not configured")

var rootCmd = &cobra.Command{
	Use:   "pagelens",
	Short: "Ask questions about PDFs and images",
	Long: `pagelens indexes PDF pages and images with a multimodal embedding model
and answers questions by retrieving the best matching page and showing it
to a vision-capable LLM.

Without provider API keys it runs in demo mode with placeholder embeddings
and templated answers.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices injects the services used by every command.
func SetServices(s Services) {
	ragService = s.RAG
	collectionService = s.Collections
	statsService = s.Stats
	settingsService = s.Settings
	metricsHandler = s.Metrics
	if s.Server.Addr != "" {
		serverSettings = s.Server
	}
	uploadDir = s.UploadDir
}

// LoadDotEnv loads a .env file from the working directory when present.
// Existing environment variables are never overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// Execute runs the root command. Long-running commands stop when ctx is done.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
