package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, the query cache, ingestion and the HTTP server.

Provider API keys may also come from the environment (COHERE_API_KEY,
GOOGLE_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY) or a .env file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by key. When the value is omitted it is read from
the terminal without echo, which suits API keys.

Run 'pagelens settings keys' for the list of keys.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List recognised setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the embedding and generation providers.`,
	RunE:  runSettingsWizard,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the multimodal embedding provider used to index pages and questions.`,
	RunE:  runSettingsEmbedding,
}

var settingsGenerationCmd = &cobra.Command{
	Use:     "generation",
	Aliases: []string{"llm"},
	Short:   "Configure generation provider",
	Long:    `Configure the vision LLM that answers questions from retrieved pages.`,
	RunE:    runSettingsGeneration,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsGenerationCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println("[Generation]")
	printProvider(cmd, settings.Generation.Provider, settings.Generation.Model,
		settings.Generation.BaseURL, settings.Generation.APIKey, settings.Generation.IsConfigured())
	cmd.Println()

	cmd.Println("[Cache]")
	cmd.Printf("  Backend: %s\n", settings.Cache.Backend)
	if settings.Cache.URL != "" {
		cmd.Printf("  URL: %s\n", settings.Cache.URL)
	}
	cmd.Printf("  TTL: %s\n", settings.Cache.TTL)
	cmd.Printf("  Max entries: %d\n", settings.Cache.MaxEntries)
	cmd.Println()

	cmd.Println("[Ingest]")
	cmd.Printf("  Storage dir: %s\n", settings.Ingest.StorageDir)
	cmd.Printf("  DPI: %d\n", settings.Ingest.DPI)
	cmd.Printf("  Max pixels: %d\n", settings.Ingest.MaxPixels)
	cmd.Println()

	cmd.Println("[Workers]")
	cmd.Printf("  Max concurrency: %d\n", settings.Workers.MaxConcurrency)
	if settings.Workers.CallTimeout > 0 {
		cmd.Printf("  Call timeout: %s\n", settings.Workers.CallTimeout)
	}
	if settings.Workers.RequestsPerSecond > 0 {
		cmd.Printf("  Requests/second: %g\n", settings.Workers.RequestsPerSecond)
	}
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Printf("  Allowed origins: %s\n", strings.Join(settings.Server.AllowedOrigins, ", "))
	cmd.Println()

	if !settings.Embedding.IsConfigured() || !settings.Generation.IsConfigured() {
		cmd.Println("Some providers are not configured; those parts run in demo mode.")
		cmd.Println("Run 'pagelens settings wizard' to configure them.")
	} else {
		cmd.Println("Configuration is complete.")
	}
	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" || provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set, reads %s)\n", provider.APIKeyEnv())
		}
	}
	status := "configured"
	if !configured {
		status = "demo mode"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		cmd.Printf("Enter value for %s: ", key)
		value = readSecret(cmd, bufio.NewReader(cmd.InOrStdin()))
		cmd.Println()
	}

	if err := settingsService.SetValue(key, value); err != nil {
		return err
	}
	if strings.HasSuffix(key, ".api_key") {
		cmd.Printf("Set %s = %s\n", key, maskAPIKey(value))
	} else {
		cmd.Printf("Set %s = %s\n", key, value)
	}
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("pagelens Settings Wizard")
	cmd.Println("========================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: Configure Embedding Provider")
	cmd.Println("------------------------------------")
	if err := configureEmbeddingProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 2: Configure Generation Provider")
	cmd.Println("-------------------------------------")
	if err := configureGenerationProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureEmbeddingProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsGeneration(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureGenerationProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

// providerChoice prompts for a provider, model and API key.
func providerChoice(
	cmd *cobra.Command, reader *bufio.Reader, providers []domain.AIProvider, defaults map[domain.AIProvider]string,
) (provider domain.AIProvider, model, apiKey string) {
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider = providers[idx-1]

	defaultModel := defaults[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model = readLine(reader)
	if model == "" {
		model = defaultModel
	}

	if provider.RequiresAPIKey() {
		cmd.Printf("Enter API key (blank to use %s): ", provider.APIKeyEnv())
		apiKey = readSecret(cmd, reader)
		cmd.Println()
	}
	return provider, model, apiKey
}

//nolint:dupl // Similar to configureGenerationProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	provider, model, apiKey := providerChoice(cmd, reader,
		domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels())

	if err := settingsService.SetEmbeddingProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", provider.Description(), model)
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for generation - intentional for CLI flow clarity
func configureGenerationProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Generation Provider")
	provider, model, apiKey := providerChoice(cmd, reader,
		domain.AllGenerationProviders(), domain.DefaultGenerationModels())

	if err := settingsService.SetGenerationProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure generation provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateGenerationConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("generation configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Generation provider configured: %s (%s)\n\n", provider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readSecret reads a value without echo when the command reads from a
// terminal, falling back to a plain line read.
func readSecret(cmd *cobra.Command, reader *bufio.Reader) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && reader.Buffered() == 0 && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
