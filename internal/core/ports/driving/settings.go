package driving

import "github.com/custodia-labs/pagelens/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with environment overrides applied.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetGenerationProvider configures the generation provider.
	SetGenerationProvider(provider domain.AIProvider, model, apiKey string) error

	// SetValue stores a single configuration key.
	SetValue(key, value string) error

	// Keys returns every recognised configuration key.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateGenerationConfig validates the current generation configuration by pinging the provider.
	ValidateGenerationConfig() error
}
