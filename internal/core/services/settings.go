package services

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider      = "embedding.provider"
	keyEmbedModel         = "embedding.model"
	keyEmbedBaseURL       = "embedding.base_url"
	keyEmbedAPIKey        = "embedding.api_key"
	keyGenProvider        = "generation.provider"
	keyGenModel           = "generation.model"
	keyGenBaseURL         = "generation.base_url"
	keyGenAPIKey          = "generation.api_key"
	keyCacheBackend       = "cache.backend"
	keyCacheURL           = "cache.url"
	keyCacheTTL           = "cache.ttl_seconds"
	keyCacheMaxEntries    = "cache.max_entries"
	keyIngestStorageDir   = "ingest.storage_dir"
	keyIngestDPI          = "ingest.dpi"
	keyIngestMaxPixels    = "ingest.max_pixels"
	keyWorkersConcurrency = "workers.max_concurrency"
	keyProvidersTimeout   = "providers.timeout_seconds"
	keyProvidersRPS       = "providers.requests_per_second"
	keyServerAddr         = "server.addr"
	keyServerOrigins      = "server.allowed_origins"
)

// Environment variables that override stored settings.
const (
	envRedisURL       = "REDIS_URL"
	envAllowedOrigins = "ALLOWED_ORIGINS"
)

// intKeys are stored as integers and floatKeys as floats; every other key
// is a string.
var (
	intKeys = []string{
		keyCacheTTL,
		keyCacheMaxEntries,
		keyIngestDPI,
		keyIngestMaxPixels,
		keyWorkersConcurrency,
		keyProvidersTimeout,
	}
	floatKeys = []string{
		keyProvidersRPS,
	}
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings. Provider API keys, the redis
// URL and the allowed origins may be supplied by the environment.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		Generation: domain.GenerationSettings{
			Provider: s.getProvider(keyGenProvider, defaults.Generation.Provider),
			Model:    s.getString(keyGenModel, defaults.Generation.Model),
			BaseURL:  s.configStore.GetString(keyGenBaseURL),
			APIKey:   s.configStore.GetString(keyGenAPIKey),
		},
		Cache: domain.CacheSettings{
			Backend:    s.getCacheBackend(defaults.Cache.Backend),
			URL:        s.configStore.GetString(keyCacheURL),
			TTL:        s.getSeconds(keyCacheTTL, defaults.Cache.TTL),
			MaxEntries: s.getInt(keyCacheMaxEntries, defaults.Cache.MaxEntries),
		},
		Ingest: domain.IngestSettings{
			StorageDir: s.getString(keyIngestStorageDir, defaults.Ingest.StorageDir),
			DPI:        s.getInt(keyIngestDPI, defaults.Ingest.DPI),
			MaxPixels:  s.getInt(keyIngestMaxPixels, defaults.Ingest.MaxPixels),
		},
		Workers: domain.WorkerSettings{
			MaxConcurrency:    s.getInt(keyWorkersConcurrency, defaults.Workers.MaxConcurrency),
			CallTimeout:       s.getSeconds(keyProvidersTimeout, defaults.Workers.CallTimeout),
			RequestsPerSecond: s.getFloat(keyProvidersRPS, defaults.Workers.RequestsPerSecond),
		},
		Server: domain.ServerSettings{
			Addr:           s.getString(keyServerAddr, defaults.Server.Addr),
			AllowedOrigins: s.getOrigins(defaults.Server.AllowedOrigins),
		},
	}

	s.applyEnv(settings)
	return settings, nil
}

// applyEnv fills unset secrets and endpoints from the environment.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if settings.Embedding.APIKey == "" {
		if env := settings.Embedding.Provider.APIKeyEnv(); env != "" {
			settings.Embedding.APIKey = s.getenv(env)
		}
	}
	if settings.Generation.APIKey == "" {
		if env := settings.Generation.Provider.APIKeyEnv(); env != "" {
			settings.Generation.APIKey = s.getenv(env)
		}
	}

	if url := s.getenv(envRedisURL); url != "" {
		if _, set := s.configStore.Get(keyCacheBackend); !set {
			settings.Cache.Backend = domain.CacheBackendRedis
		}
		if settings.Cache.Backend == domain.CacheBackendRedis && settings.Cache.URL == "" {
			settings.Cache.URL = url
		}
	}

	if origins := s.getenv(envAllowedOrigins); origins != "" {
		settings.Server.AllowedOrigins = splitList(origins)
	}
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyGenProvider, settings.Generation.Provider.String()},
		{keyGenModel, settings.Generation.Model},
		{keyGenBaseURL, settings.Generation.BaseURL},
		{keyCacheBackend, string(settings.Cache.Backend)},
		{keyCacheURL, settings.Cache.URL},
		{keyCacheTTL, int(settings.Cache.TTL / time.Second)},
		{keyCacheMaxEntries, settings.Cache.MaxEntries},
		{keyIngestStorageDir, settings.Ingest.StorageDir},
		{keyIngestDPI, settings.Ingest.DPI},
		{keyIngestMaxPixels, settings.Ingest.MaxPixels},
		{keyWorkersConcurrency, settings.Workers.MaxConcurrency},
		{keyProvidersTimeout, int(settings.Workers.CallTimeout / time.Second)},
		{keyProvidersRPS, settings.Workers.RequestsPerSecond},
		{keyServerAddr, settings.Server.Addr},
		{keyServerOrigins, strings.Join(settings.Server.AllowedOrigins, ",")},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// API keys are only written when present so environment-supplied keys
	// are never copied into the config file.
	if settings.Embedding.APIKey != "" && settings.Embedding.APIKey != s.envKey(settings.Embedding.Provider) {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.Generation.APIKey != "" && settings.Generation.APIKey != s.envKey(settings.Generation.Provider) {
		if err := s.configStore.Set(keyGenAPIKey, settings.Generation.APIKey); err != nil {
			return fmt.Errorf("save generation api_key: %w", err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support image embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.envKey(provider) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.BaseURL = ""
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetGenerationProvider configures the generation provider.
func (s *SettingsService) SetGenerationProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid generation provider: %s", provider)
	}
	if !slices.Contains(domain.AllGenerationProviders(), provider) {
		return fmt.Errorf("provider %s does not support image prompts", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.envKey(provider) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Generation.Provider = provider
	settings.Generation.Model = model
	if model == "" {
		settings.Generation.Model = domain.DefaultGenerationModels()[provider]
	}

	// Local providers need a base URL; cloud providers use their default endpoint.
	if provider.IsLocal() {
		if settings.Generation.BaseURL == "" {
			settings.Generation.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.Generation.BaseURL = ""
	}
	settings.Generation.APIKey = apiKey

	return s.Save(settings)
}

// SetValue stores a single configuration key, converting numeric keys.
func (s *SettingsService) SetValue(key, value string) error {
	if !slices.Contains(s.Keys(), key) {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var stored any = value
	switch {
	case slices.Contains(intKeys, key):
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case slices.Contains(floatKeys, key):
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		stored = f
	case key == keyEmbedProvider || key == keyGenProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, value)
		}
	case key == keyCacheBackend:
		if !domain.CacheBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown cache backend %q", domain.ErrInvalidInput, value)
		}
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every recognised configuration key.
func (s *SettingsService) Keys() []string {
	return []string{
		keyEmbedProvider, keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey,
		keyGenProvider, keyGenModel, keyGenBaseURL, keyGenAPIKey,
		keyCacheBackend, keyCacheURL, keyCacheTTL, keyCacheMaxEntries,
		keyIngestStorageDir, keyIngestDPI, keyIngestMaxPixels,
		keyWorkersConcurrency, keyProvidersTimeout, keyProvidersRPS,
		keyServerAddr, keyServerOrigins,
	}
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateGenerationConfig validates the current generation configuration by pinging the provider.
func (s *SettingsService) ValidateGenerationConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateGeneration(&settings.Generation)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) envKey(provider domain.AIProvider) string {
	if env := provider.APIKeyEnv(); env != "" {
		return s.getenv(env)
	}
	return ""
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getFloat reads a number stored as a TOML float or integer, or as a string.
func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, _ := s.configStore.Get(key)
	var f float64
	switch v := val.(type) {
	case float64:
		f = v
	case int64:
		f = float64(v)
	case int:
		f = float64(v)
	case string:
		f, _ = strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	if f <= 0 {
		return defaultVal
	}
	return f
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return time.Duration(s.configStore.GetInt(key)) * time.Second
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getCacheBackend(defaultVal domain.CacheBackend) domain.CacheBackend {
	backend := domain.CacheBackend(s.configStore.GetString(keyCacheBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getOrigins(defaultVal []string) []string {
	if list := s.configStore.GetStringSlice(keyServerOrigins); len(list) > 0 {
		return list
	}
	if str := s.configStore.GetString(keyServerOrigins); str != "" {
		return splitList(str)
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
