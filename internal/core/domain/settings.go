package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderCohere is the Cohere cloud API (multimodal embeddings).
	AIProviderCohere AIProvider = "cohere"

	// AIProviderGemini is the Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderCohere, AIProviderGemini, AIProviderOpenAI, AIProviderAnthropic, AIProviderOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p != AIProviderOllama
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// SupportsImageEmbeddings returns true if the provider can embed page images.
func (p AIProvider) SupportsImageEmbeddings() bool {
	return p == AIProviderCohere
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderCohere:
		return "Cohere (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	default:
		return unknownDescription
	}
}

// APIKeyEnv returns the environment variable that supplies this provider's key.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderCohere:
		return "COHERE_API_KEY"
	case AIProviderGemini:
		return "GOOGLE_API_KEY"
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey is the provider API key.
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// GenerationSettings holds generation provider configuration.
type GenerationSettings struct {
	// Provider is the generation service provider.
	Provider AIProvider

	// Model is the generation model name.
	Model string

	// BaseURL overrides the provider endpoint (required for Ollama).
	BaseURL string

	// APIKey is the provider API key.
	APIKey string
}

// IsConfigured returns true if the generation provider is set up.
func (g GenerationSettings) IsConfigured() bool {
	if !g.Provider.IsValid() || g.Provider == AIProviderCohere {
		return false
	}
	if g.Provider.RequiresAPIKey() && g.APIKey == "" {
		return false
	}
	return true
}

// CacheBackend selects the query cache store.
type CacheBackend string

// Available cache backends.
const (
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendSQLite CacheBackend = "sqlite"
	CacheBackendRedis  CacheBackend = "redis"
	CacheBackendNone   CacheBackend = "none"
)

// IsValid returns true if the backend is recognised.
func (b CacheBackend) IsValid() bool {
	switch b {
	case CacheBackendMemory, CacheBackendSQLite, CacheBackendRedis, CacheBackendNone:
		return true
	default:
		return false
	}
}

// CacheSettings configures the query cache.
type CacheSettings struct {
	// Backend selects the store.
	Backend CacheBackend

	// URL is the redis URL or sqlite data directory.
	URL string

	// TTL is how long answers stay cached.
	TTL time.Duration

	// MaxEntries bounds the memory backend.
	MaxEntries int
}

// IngestSettings configures document ingestion.
type IngestSettings struct {
	// StorageDir is the root under which collection directories are created.
	StorageDir string

	// DPI is the PDF rasterization resolution.
	DPI int

	// MaxPixels caps the pixel area of images sent to the embedding provider.
	MaxPixels int
}

// WorkerSettings configures the provider call pool.
type WorkerSettings struct {
	// MaxConcurrency bounds in-flight provider calls.
	MaxConcurrency int

	// CallTimeout bounds each provider call. Zero means no timeout.
	CallTimeout time.Duration

	// RequestsPerSecond rate-limits provider calls. Zero disables the limiter.
	RequestsPerSecond float64
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// AllowedOrigins lists CORS origins. "*" allows any.
	AllowedOrigins []string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding  EmbeddingSettings
	Generation GenerationSettings
	Cache      CacheSettings
	Ingest     IngestSettings
	Workers    WorkerSettings
	Server     ServerSettings
}

// Defaults for settings that are not configured.
const (
	DefaultDPI            = 300
	DefaultMaxPixels      = 1568 * 1568
	DefaultStorageDir     = "collections"
	DefaultMaxConcurrency = 4
	DefaultCacheEntries   = 1024
	DefaultServerAddr     = ":8000"
)

// DefaultAppSettings returns settings with sensible defaults.
// Providers are left unconfigured: without keys the pipeline runs in demo mode.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderCohere,
			Model:    DefaultEmbeddingModels()[AIProviderCohere],
		},
		Generation: GenerationSettings{
			Provider: AIProviderGemini,
			Model:    DefaultGenerationModels()[AIProviderGemini],
		},
		Cache: CacheSettings{
			Backend:    CacheBackendMemory,
			TTL:        DefaultCacheTTL,
			MaxEntries: DefaultCacheEntries,
		},
		Ingest: IngestSettings{
			StorageDir: DefaultStorageDir,
			DPI:        DefaultDPI,
			MaxPixels:  DefaultMaxPixels,
		},
		Workers: WorkerSettings{
			MaxConcurrency: DefaultMaxConcurrency,
		},
		Server: ServerSettings{
			Addr:           DefaultServerAddr,
			AllowedOrigins: []string{"*"},
		},
	}
}

// AllEmbeddingProviders returns providers that support page image embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderCohere,
	}
}

// AllGenerationProviders returns providers that accept images in a prompt.
func AllGenerationProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderOllama,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderCohere: "embed-v4.0",
	}
}

// DefaultGenerationModels returns default models for each generation provider.
func DefaultGenerationModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini:    "gemini-2.5-flash",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderOllama:    "llava",
	}
}
